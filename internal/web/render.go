// Package web renders the public document site and the admin editor as
// server-side HTML pages.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"

	"github.com/altconstitution/site/internal/editor"
	"github.com/altconstitution/site/internal/library"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"sub": func(a, b int) int { return a - b },
	"docpath": func(cat, file string) string {
		return "/documents/" + url.PathEscape(cat) + "/" + url.PathEscape(file)
	},
}

var pages = map[string]*template.Template{
	"home":     parse("home.html"),
	"document": parse("document.html"),
	"login":    parse("login.html"),
	"admin":    parse("admin.html"),
	"confirm":  parse("confirm.html"),
	"error":    parse("error.html"),
}

func parse(page string) *template.Template {
	return template.Must(template.New("layout").Funcs(funcs).
		ParseFS(templateFS, "templates/layout.html", "templates/"+page))
}

// view is the data passed to every page. Pages read only the fields they need.
type view struct {
	ContactEmail string

	// Sidebar
	Listings         []library.Listing
	FetchError       string
	SelectedCategory string
	SelectedFile     string

	// Home and Document Viewer
	Index      *library.Document
	IndexError string
	Document   library.Document

	// Login
	Email string
	Next  string
	Error string

	// Admin
	Session    editor.Snapshot
	Categories []string
	Category   string
	File       string

	// Error page
	Status  int
	Title   string
	Message string
}

type renderer struct {
	contact string
	logger  *log.Logger
}

func (rd renderer) render(w http.ResponseWriter, status int, page string, v view) {
	v.ContactEmail = rd.contact

	var buf bytes.Buffer
	if err := pages[page].ExecuteTemplate(&buf, "layout", v); err != nil {
		rd.logger.Error("render page", "page", page, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (rd renderer) fail(w http.ResponseWriter, status int, message string) {
	rd.render(w, status, "error", view{
		Status:  status,
		Title:   http.StatusText(status),
		Message: message,
	})
}

package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/altconstitution/site/internal/auth"
	"github.com/altconstitution/site/internal/category"
	"github.com/altconstitution/site/internal/editor"
	"github.com/altconstitution/site/internal/library"
	"github.com/altconstitution/site/internal/request"
)

// Options configures a Handler.
type Options struct {
	ContactEmail string
}

// Handler serves the HTML pages.
type Handler struct {
	renderer
	library *library.Service
	editor  *editor.Service
	auth    *auth.Service
}

// NewHandler creates a web Handler.
func NewHandler(lib *library.Service, ed *editor.Service, authSvc *auth.Service, opts Options, logger *log.Logger) *Handler {
	return &Handler{
		renderer: renderer{contact: opts.ContactEmail, logger: logger.WithPrefix("web")},
		library:  lib,
		editor:   ed,
		auth:     authSvc,
	}
}

// Routes mounts the pages on r. authGate guards the admin pages.
func (h *Handler) Routes(r chi.Router, authGate func(http.Handler) http.Handler) {
	r.Get("/", h.Home)
	r.Get("/documents/{category}/{file}", h.Document)
	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)

	r.Route("/admin", func(r chi.Router) {
		r.Use(authGate)
		r.Get("/", h.Admin)
		r.Post("/upload", h.Upload)
		r.Post("/delete", h.Delete)
		r.Post("/reorder", h.Reorder)
		r.Post("/save", h.Save)
		r.Post("/retry", h.Retry)
	})
}

// Home renders the category sidebar and the landing document.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	v := h.sidebar(r)
	doc, ok, err := h.library.Index(r.Context())
	switch {
	case err != nil:
		v.IndexError = editor.Message(err)
	case ok:
		v.Index = &doc
	}
	h.render(w, http.StatusOK, "home", v)
}

// Document renders the viewer for one file. The public URL is resolved on
// every request.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	cat, file := request.PathParam(r, "category"), request.PathParam(r, "file")
	doc, err := h.library.Resolve(cat, file)
	switch {
	case errors.Is(err, category.ErrUnknown):
		h.fail(w, http.StatusNotFound, editor.Message(err))
		return
	case err != nil:
		h.fail(w, http.StatusBadRequest, editor.Message(err))
		return
	}

	v := h.sidebar(r)
	v.Document = doc
	v.SelectedCategory, v.SelectedFile = cat, file
	h.render(w, http.StatusOK, "document", v)
}

func (h *Handler) sidebar(r *http.Request) view {
	listings, err := h.library.All(r.Context())
	if err != nil {
		return view{FetchError: editor.Message(err)}
	}
	return view{Listings: listings}
}

// LoginForm renders the sign-in form, or skips it for a signed-in admin.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))
	if _, err := h.auth.CurrentUser(auth.TokenFrom(r)); err == nil {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	h.render(w, http.StatusOK, "login", view{Next: next})
}

// Login checks the submitted credentials and sets the session cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.fail(w, http.StatusBadRequest, "invalid form")
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	next := safeNext(r.PostFormValue("next"))

	token, u, err := h.auth.Login(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		status := http.StatusUnauthorized
		msg := editor.Message(auth.ErrInvalidCredentials)
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Error("login", "email", email, "err", err)
			status, msg = http.StatusInternalServerError, "Sign-in is unavailable, try again later."
		}
		h.render(w, status, "login", view{Email: email, Next: next, Error: msg})
		return
	}

	auth.SetSessionCookie(w, r, token, u.ExpiresAt)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Logout clears the session cookie and drops the admin's editing sessions.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if u, err := h.auth.CurrentUser(auth.TokenFrom(r)); err == nil {
		h.editor.CloseOwner(u.Email)
	}
	auth.ClearSessionCookie(w, r)
	clearEditorCookie(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/admin"
	}
	return next
}

package web

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altconstitution/site/internal/auth"
	"github.com/altconstitution/site/internal/category"
	"github.com/altconstitution/site/internal/document/documenttest"
	"github.com/altconstitution/site/internal/editor"
	"github.com/altconstitution/site/internal/library"
	"github.com/altconstitution/site/internal/logging"
	"github.com/altconstitution/site/internal/middleware"
	"github.com/altconstitution/site/internal/order/ordertest"
	"github.com/altconstitution/site/internal/storage/storagetest"
)

const (
	adminEmail    = "admin@example.org"
	adminPassword = "hunter22"
)

type site struct {
	objects *storagetest.Memory
	orders  *ordertest.Memory
	router  http.Handler
}

func newSite(t *testing.T, keys ...string) *site {
	t.Helper()
	objects := storagetest.NewMemory(keys...)
	orders := ordertest.NewMemory()
	cats := category.MustNew(category.Defaults...)
	lib := library.NewService(objects, orders, cats,
		library.Options{IndexFolder: "Index", Proxy: library.ProxyGoogle}, logging.Discard())
	ed := editor.NewService(lib, objects, orders, cats, editor.Options{MaxUploadBytes: 1 << 20}, logging.Discard())

	hash, err := auth.HashPassword(adminPassword)
	require.NoError(t, err)
	authSvc := auth.NewService(auth.NewStaticDirectory(adminEmail, hash), "test-secret", time.Hour, logging.Discard())

	r := chi.NewRouter()
	NewHandler(lib, ed, authSvc, Options{ContactEmail: "contact@example.org"}, logging.Discard()).
		Routes(r, middleware.RequireSession(authSvc, "/login"))
	return &site{objects: objects, orders: orders, router: r}
}

// browser replays cookies between requests like a user agent would.
type browser struct {
	t       *testing.T
	h       http.Handler
	cookies map[string]*http.Cookie
}

func (s *site) browser(t *testing.T) *browser {
	return &browser{t: t, h: s.router, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.h.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (b *browser) post(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) login() {
	b.t.Helper()
	rec := b.post("/login", url.Values{"email": {adminEmail}, "password": {adminPassword}, "next": {"/admin"}})
	require.Equal(b.t, http.StatusSeeOther, rec.Code)
	require.Contains(b.t, b.cookies, auth.CookieName)
}

func TestHome(t *testing.T) {
	t.Run("sidebar and index", func(t *testing.T) {
		s := newSite(t, "Index/home.pdf", "Explanation/a.pdf", "Explanation/b.pdf", "Listen Up/talk.pdf")
		s.orders.Set("Explanation", "b.pdf", "a.pdf")

		rec := s.browser(t).get("/")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Alternative Constitution")
		assert.Contains(t, body, `href="/documents/Listen%20Up/talk.pdf"`)
		assert.Less(t, strings.Index(body, "/documents/Explanation/b.pdf"), strings.Index(body, "/documents/Explanation/a.pdf"))
		assert.Contains(t, body, `src="https://files.test/Index/home.pdf#toolbar=0"`)
		assert.Contains(t, body, "contact@example.org")
	})

	t.Run("empty index folder", func(t *testing.T) {
		rec := newSite(t).browser(t).get("/")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "No Index Content Available.")
	})

	t.Run("fetch failure shown inline", func(t *testing.T) {
		s := newSite(t, "Explanation/a.pdf")
		s.objects.ListErr = assert.AnError
		rec := s.browser(t).get("/")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Error fetching files")
	})
}

func TestDocumentPage(t *testing.T) {
	s := newSite(t, "Explanation/a.pdf", "Explanation/b.pdf")

	rec := s.browser(t).get("/documents/Explanation/b.pdf")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "https://docs.google.com/gview?url=https%3A%2F%2Ffiles.test%2FExplanation%2Fb.pdf")
	assert.Contains(t, body, `href="/documents/Explanation/b.pdf" class="selected"`)
	assert.Contains(t, body, `<a href="/">Close</a>`)

	rec = s.browser(t).get("/documents/Explanation/Don't%20Panic.pdf")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Don&#39;t Panic.pdf")

	rec = s.browser(t).get("/documents/Unknown/b.pdf")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRequiresLogin(t *testing.T) {
	s := newSite(t)
	b := s.browser(t)

	rec := b.get("/admin")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fadmin", rec.Header().Get("Location"))

	rec = b.post("/login", url.Values{"email": {adminEmail}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
	assert.NotContains(t, b.cookies, auth.CookieName)

	b.login()
	assert.Equal(t, http.StatusOK, b.get("/admin").Code)

	rec = b.post("/logout", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, http.StatusSeeOther, b.get("/admin").Code)
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/admin?category=Explanation", safeNext("/admin?category=Explanation"))
	assert.Equal(t, "/admin", safeNext("https://evil.example"))
	assert.Equal(t, "/admin", safeNext("//evil.example"))
	assert.Equal(t, "/admin", safeNext(""))
}

func TestAdminEditing(t *testing.T) {
	s := newSite(t, "Explanation/a.pdf", "Explanation/b.pdf", "Listen Up/talk.pdf")
	b := s.browser(t)
	b.login()

	rec := b.get("/admin?category=Explanation")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, b.cookies, EditorCookie)
	assert.Contains(t, rec.Body.String(), "<option selected>Explanation</option>")

	t.Run("reorder is not persisted until save", func(t *testing.T) {
		rec := b.post("/admin/reorder", url.Values{"from": {"1"}, "to": {"0"}})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		body := b.get("/admin").Body.String()
		assert.Less(t, strings.Index(body, "b.pdf"), strings.Index(body, "a.pdf"))
		assert.Nil(t, s.orders.Stored("Explanation"))

		b.post("/admin/save", nil)
		assert.Equal(t, []string{"b.pdf", "a.pdf"}, s.orders.Stored("Explanation"))
		assert.Contains(t, b.get("/admin").Body.String(), "File order saved successfully!")
	})

	t.Run("delete asks for confirmation", func(t *testing.T) {
		rec := b.post("/admin/delete", url.Values{"file": {"a.pdf"}})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Are you sure")
		assert.True(t, s.objects.Has("Explanation/a.pdf"))

		rec = b.post("/admin/delete", url.Values{"file": {"a.pdf"}, "confirm": {"yes"}})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.False(t, s.objects.Has("Explanation/a.pdf"))
		assert.Equal(t, []string{"b.pdf"}, s.orders.Stored("Explanation"))
	})

	t.Run("upload", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile(editor.FormField, "c.pdf")
		require.NoError(t, err)
		_, err = part.Write(documenttest.PDF())
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/admin/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		assert.Equal(t, http.StatusSeeOther, b.do(req).Code)

		assert.True(t, s.objects.Has("Explanation/c.pdf"))
		assert.Equal(t, []string{"b.pdf", "c.pdf"}, s.orders.Stored("Explanation"))
		assert.Contains(t, b.get("/admin").Body.String(), "File uploaded successfully.")
	})

	t.Run("switch category", func(t *testing.T) {
		body := b.get("/admin?category=Listen+Up").Body.String()
		assert.Contains(t, body, "talk.pdf")
		assert.NotContains(t, body, "c.pdf")

		assert.Equal(t, http.StatusNotFound, b.get("/admin?category=Nope").Code)
	})

	t.Run("failed load offers retry", func(t *testing.T) {
		s.objects.ListErr = assert.AnError
		b.post("/admin/retry", nil)
		body := b.get("/admin").Body.String()
		assert.Contains(t, body, "Error fetching files")
		assert.Contains(t, body, `action="/admin/retry"`)

		s.objects.ListErr = nil
		b.post("/admin/retry", nil)
		assert.Contains(t, b.get("/admin").Body.String(), "talk.pdf")
	})
}

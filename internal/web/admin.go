package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/altconstitution/site/internal/auth"
	"github.com/altconstitution/site/internal/category"
	"github.com/altconstitution/site/internal/editor"
)

// EditorCookie carries the id of the admin's editing session.
const EditorCookie = "editor_session"

const adminPath = "/admin"

// Admin opens or switches the editing session and renders it.
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	cat := r.URL.Query().Get("category")

	sess, err := h.session(r)
	switch {
	case err != nil:
		sess, err = h.editor.Open(r.Context(), owner(r), cat)
		if err != nil {
			h.adminError(w, err)
			return
		}
		setEditorCookie(w, r, sess.ID())
	case cat != "" && cat != sess.Snapshot().Category:
		if err := sess.SwitchCategory(r.Context(), cat); errors.Is(err, category.ErrUnknown) {
			h.adminError(w, err)
			return
		}
	}

	h.render(w, http.StatusOK, "admin", view{
		Session:    sess.Snapshot(),
		Categories: h.editor.Categories(),
	})
}

// Upload stores the submitted PDF and persists the new order.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(sess *editor.Session) {
		up, err := editor.ReadUpload(w, r, h.editor.MaxUploadBytes())
		if err != nil {
			sess.Fail(err)
			return
		}
		defer up.File.Close()
		_ = sess.Upload(r.Context(), up.Name, up.File, up.Size)
	})
}

// Delete asks for confirmation first, then removes the file and persists
// the new order.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		http.Redirect(w, r, adminPath, http.StatusSeeOther)
		return
	}
	file := r.PostFormValue("file")
	if r.PostFormValue("confirm") != "yes" {
		h.render(w, http.StatusOK, "confirm", view{File: file, Category: sess.Snapshot().Category})
		return
	}
	_ = sess.Delete(r.Context(), file, editor.Always)
	http.Redirect(w, r, adminPath, http.StatusSeeOther)
}

// Reorder moves one file in the working order.
func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(sess *editor.Session) {
		from, errFrom := strconv.Atoi(r.PostFormValue("from"))
		to, errTo := strconv.Atoi(r.PostFormValue("to"))
		if errFrom != nil || errTo != nil {
			sess.Fail(fmt.Errorf("%w: %q to %q", editor.ErrInvalidMove, r.PostFormValue("from"), r.PostFormValue("to")))
			return
		}
		_ = sess.Reorder(from, to)
	})
}

// Save persists the working order.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(sess *editor.Session) {
		_ = sess.SaveOrder(r.Context())
	})
}

// Retry reloads the active category.
func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(sess *editor.Session) {
		_ = sess.Load(r.Context())
	})
}

// act runs fn on the caller's session and redirects back to the editor,
// which shows the outcome. Failures are recorded on the session.
func (h *Handler) act(w http.ResponseWriter, r *http.Request, fn func(*editor.Session)) {
	if sess, err := h.session(r); err == nil {
		fn(sess)
	}
	http.Redirect(w, r, adminPath, http.StatusSeeOther)
}

func (h *Handler) session(r *http.Request) (*editor.Session, error) {
	c, err := r.Cookie(EditorCookie)
	if err != nil {
		return nil, editor.ErrSessionNotFound
	}
	return h.editor.Session(c.Value, owner(r))
}

func (h *Handler) adminError(w http.ResponseWriter, err error) {
	status := editor.StatusFor(err)
	h.fail(w, status, editor.Message(err))
}

func owner(r *http.Request) string {
	if u, ok := auth.UserFrom(r.Context()); ok {
		return u.Email
	}
	return ""
}

func setEditorCookie(w http.ResponseWriter, r *http.Request, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     EditorCookie,
		Value:    id,
		Path:     adminPath,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearEditorCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     EditorCookie,
		Value:    "",
		Path:     adminPath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

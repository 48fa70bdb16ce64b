package editor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/altconstitution/site/internal/auth"
	"github.com/altconstitution/site/internal/category"
	"github.com/altconstitution/site/internal/document"
	"github.com/altconstitution/site/internal/library"
	"github.com/altconstitution/site/internal/request"
	"github.com/altconstitution/site/internal/response"
	"github.com/altconstitution/site/internal/storage"
)

// Handler holds HTTP handlers for the admin editing API.
type Handler struct {
	svc *Service
}

// NewHandler creates a new editor Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type openRequest struct {
	Category string `json:"category" example:"Explanation"`
}

type reorderRequest struct {
	From int `json:"from" example:"2"`
	To   int `json:"to"   example:"0"`
}

// Open godoc
//
//	@Summary		Open an editing session
//	@Description	Loads a category's reconciled order into a new in-memory editing session. A failed load still returns the session (state "failed") so it can be reloaded.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		openRequest	true	"Category"
//	@Success		201		{object}	response.Envelope{data=Snapshot}
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Router			/v1/admin/sessions [post]
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	sess, err := h.svc.Open(r.Context(), owner(r), req.Category)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	response.Created(w, sess.Snapshot())
}

// Get godoc
//
//	@Summary		Get an editing session
//	@Tags			admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	response.Envelope{data=Snapshot}
//	@Failure		404	{object}	response.Envelope
//	@Router			/v1/admin/sessions/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	response.OK(w, sess.Snapshot())
}

// Reload godoc
//
//	@Summary		Reload an editing session
//	@Description	Discards unsaved changes and fetches the category again.
//	@Tags			admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	response.Envelope{data=Snapshot}
//	@Failure		502	{object}	response.Envelope{data=Snapshot}
//	@Router			/v1/admin/sessions/{id}/reload [post]
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respond(w, sess, sess.Load(r.Context()))
}

// SwitchCategory godoc
//
//	@Summary		Switch category
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string		true	"Session ID"
//	@Param			request	body		openRequest	true	"Category"
//	@Success		200		{object}	response.Envelope{data=Snapshot}
//	@Failure		404		{object}	response.Envelope
//	@Router			/v1/admin/sessions/{id}/category [put]
func (h *Handler) SwitchCategory(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req openRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	h.respond(w, sess, sess.SwitchCategory(r.Context(), req.Category))
}

// Upload godoc
//
//	@Summary		Upload a PDF
//	@Description	Stores the file under the session's category, appends it to the order, and saves the order.
//	@Tags			admin
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string	true	"Session ID"
//	@Param			file	formData	file	true	"PDF file"
//	@Success		200		{object}	response.Envelope{data=Snapshot}
//	@Failure		400		{object}	response.Envelope{data=Snapshot}
//	@Failure		409		{object}	response.Envelope{data=Snapshot}
//	@Failure		502		{object}	response.Envelope{data=Snapshot}
//	@Router			/v1/admin/sessions/{id}/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	up, err := ReadUpload(w, r, h.svc.MaxUploadBytes())
	if err != nil {
		writeError(w, err, sess.Snapshot())
		return
	}
	defer up.File.Close()

	h.respond(w, sess, sess.Upload(r.Context(), up.Name, up.File, up.Size))
}

// Delete godoc
//
//	@Summary		Delete a PDF
//	@Description	Removes the file and saves the order. Requires confirm=true.
//	@Tags			admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string	true	"Session ID"
//	@Param			file	path		string	true	"File name"
//	@Param			confirm	query		bool	true	"Confirm the deletion"
//	@Success		200		{object}	response.Envelope{data=Snapshot}
//	@Failure		400		{object}	response.Envelope{data=Snapshot}
//	@Failure		502		{object}	response.Envelope{data=Snapshot}
//	@Router			/v1/admin/sessions/{id}/files/{file} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	err := sess.Delete(r.Context(), request.PathParam(r, "file"), func(string) bool { return confirmed })
	h.respond(w, sess, err)
}

// Reorder godoc
//
//	@Summary		Move a file
//	@Description	Moves one file in the in-memory order. Nothing is saved until /save.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string			true	"Session ID"
//	@Param			request	body		reorderRequest	true	"Indexes"
//	@Success		200		{object}	response.Envelope{data=Snapshot}
//	@Failure		400		{object}	response.Envelope{data=Snapshot}
//	@Router			/v1/admin/sessions/{id}/reorder [post]
func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	h.respond(w, sess, sess.Reorder(req.From, req.To))
}

// Save godoc
//
//	@Summary		Save the order
//	@Description	Writes the in-memory order verbatim for the session's category.
//	@Tags			admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	response.Envelope{data=Snapshot}
//	@Failure		502	{object}	response.Envelope{data=Snapshot}
//	@Router			/v1/admin/sessions/{id}/save [post]
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respond(w, sess, sess.SaveOrder(r.Context()))
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, err := h.svc.Session(request.PathParam(r, "id"), owner(r))
	if err != nil {
		writeError(w, err, nil)
		return nil, false
	}
	return sess, true
}

func (h *Handler) respond(w http.ResponseWriter, sess *Session, err error) {
	if err != nil {
		writeError(w, err, sess.Snapshot())
		return
	}
	response.OK(w, sess.Snapshot())
}

func owner(r *http.Request) string {
	if u, ok := auth.UserFrom(r.Context()); ok {
		return u.Email
	}
	return ""
}

// StatusFor maps an editor error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, category.ErrUnknown):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrAlreadyExists), errors.Is(err, ErrNotReady):
		return http.StatusConflict
	case errors.Is(err, ErrNotConfirmed), errors.Is(err, ErrInvalidMove),
		errors.Is(err, document.ErrInvalidName), errors.Is(err, document.ErrNotPDF):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrUpload), errors.Is(err, ErrDelete), errors.Is(err, ErrPersist),
		errors.Is(err, library.ErrFetch):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error, snap any) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		response.InternalError(w)
		return
	}
	if snap == nil {
		response.Error(w, status, Message(err))
		return
	}
	response.ErrorWithData(w, status, Message(err), snap)
}

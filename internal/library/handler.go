package library

import (
	"errors"
	"net/http"

	"github.com/altconstitution/site/internal/category"
	"github.com/altconstitution/site/internal/request"
	"github.com/altconstitution/site/internal/response"
)

// Handler holds HTTP handlers for the public library endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new library Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Categories godoc
//
//	@Summary		List categories
//	@Tags			library
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=[]string}
//	@Router			/v1/categories [get]
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.svc.Categories())
}

// Files godoc
//
//	@Summary		List a category
//	@Description	Returns the category's files in display order: the saved order, minus deleted files, plus new files at the end.
//	@Tags			library
//	@Produce		json
//	@Param			category	path		string	true	"Category name"
//	@Success		200			{object}	response.Envelope{data=Listing}
//	@Failure		404			{object}	response.Envelope
//	@Failure		502			{object}	response.Envelope
//	@Router			/v1/categories/{category}/files [get]
func (h *Handler) Files(w http.ResponseWriter, r *http.Request) {
	cat := request.PathParam(r, "category")
	files, err := h.svc.Files(r.Context(), cat)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, Listing{Category: cat, Files: files})
}

// All godoc
//
//	@Summary		List every category
//	@Description	Lists all categories concurrently. If any category fails the whole request fails.
//	@Tags			library
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=[]Listing}
//	@Failure		502	{object}	response.Envelope
//	@Router			/v1/library [get]
func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	listings, err := h.svc.All(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, listings)
}

// Document godoc
//
//	@Summary		Resolve a document
//	@Description	Returns the public URL of a file and the URL to embed it with.
//	@Tags			library
//	@Produce		json
//	@Param			category	path		string	true	"Category name"
//	@Param			file		path		string	true	"File name"
//	@Success		200			{object}	response.Envelope{data=Document}
//	@Failure		400			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Router			/v1/categories/{category}/files/{file}/url [get]
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Resolve(request.PathParam(r, "category"), request.PathParam(r, "file"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, doc)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, category.ErrUnknown):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrInvalidFile):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrFetch):
		response.BadGateway(w, ErrFetch.Error())
	default:
		response.InternalError(w)
	}
}

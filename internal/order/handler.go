package order

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/altconstitution/site/internal/category"
	"github.com/altconstitution/site/internal/response"
)

// DocumentStore is a store that can expose and patch its whole document.
type DocumentStore interface {
	Document(ctx context.Context) (Document, error)
	Merge(ctx context.Context, patch Document) (Document, error)
}

// Handler serves the file-backed order document.
type Handler struct {
	store      DocumentStore
	categories *category.Set
	logger     *log.Logger
}

// NewHandler creates a new order Handler.
func NewHandler(store DocumentStore, categories *category.Set, logger *log.Logger) *Handler {
	return &Handler{store: store, categories: categories, logger: logger.WithPrefix("order")}
}

type messageBody struct {
	Message string `json:"message,omitempty" example:"Order updated successfully."`
	Error   string `json:"error,omitempty"`
}

// Get godoc
//
//	@Summary		Read the order document
//	@Description	Returns every category's file order as one JSON object keyed by category.
//	@Tags			order
//	@Produce		json
//	@Success		200	{object}	map[string][]string
//	@Failure		500	{object}	messageBody
//	@Router			/order [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Document(r.Context())
	if err != nil {
		h.logger.Error("read order document", "err", err)
		response.JSON(w, http.StatusInternalServerError, messageBody{Error: "Failed to read order file."})
		return
	}
	response.JSON(w, http.StatusOK, doc)
}

// Post godoc
//
//	@Summary		Merge into the order document
//	@Description	Shallow-merges the body into the stored document: each category present replaces its stored order.
//	@Tags			order
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		map[string][]string	true	"Partial order document"
//	@Success		200		{object}	messageBody
//	@Failure		400		{object}	messageBody
//	@Failure		500		{object}	messageBody
//	@Router			/order [post]
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	var patch Document
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.JSON(w, http.StatusBadRequest, messageBody{Error: "Invalid order document."})
		return
	}
	for c := range patch {
		if err := h.categories.Validate(c); err != nil {
			response.JSON(w, http.StatusBadRequest, messageBody{Error: err.Error()})
			return
		}
	}

	if _, err := h.store.Merge(r.Context(), patch); err != nil {
		h.logger.Error("merge order document", "err", err)
		response.JSON(w, http.StatusInternalServerError, messageBody{Error: "Failed to write to order file."})
		return
	}
	h.logger.Info("order document merged", "categories", len(patch))
	response.JSON(w, http.StatusOK, messageBody{Message: "Order updated successfully."})
}

package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ferrisbrook/cardbinder-backend/internal/domain"
)

type binderService interface {
	AddCard(ctx context.Context, binderID int64, cardID string) (*domain.BinderCard, error)
	SetQuantity(ctx context.Context, binderID int64, cardID string, qty int) (*domain.BinderCard, error)
	RemoveCard(ctx context.Context, binderID int64, cardID string) error
	RemoveCards(ctx context.Context, binderID int64, items []domain.BulkRemoveItem) (int64, error)
	ListCards(ctx context.Context, binderID int64, filter domain.CardFilter, sortBy, direction string) ([]domain.BinderCard, error)
	GetCard(ctx context.Context, binderID int64, cardID string) (*domain.BinderCard, error)
}

// BinderHandler serves the /api/binders endpoints.
type BinderHandler struct {
	log     *slog.Logger
	binders binderService
}

// NewBinderHandler creates a BinderHandler.
func NewBinderHandler(logger *slog.Logger, binders binderService) *BinderHandler {
	return &BinderHandler{
		log:     logger.With("handler", "binders"),
		binders: binders,
	}
}

// Register mounts the binder routes. The literal /cards/bulk pattern is more
// specific than the /cards/{cardId} wildcard, so ServeMux routes bulk
// removals correctly.
func (h *BinderHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/binders/{binderId}/cards", h.listCards)
	mux.HandleFunc("POST /api/binders/{binderId}/cards", h.addCard)
	mux.HandleFunc("DELETE /api/binders/{binderId}/cards/bulk", h.removeCards)
	mux.HandleFunc("GET /api/binders/{binderId}/cards/{cardId}", h.getCard)
	mux.HandleFunc("PATCH /api/binders/{binderId}/cards/{cardId}", h.setQuantity)
	mux.HandleFunc("DELETE /api/binders/{binderId}/cards/{cardId}", h.removeCard)
}

func (h *BinderHandler) listCards(w http.ResponseWriter, r *http.Request) {
	binderID, err := binderIDFromPath(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	q := r.URL.Query()
	filter := domain.CardFilter{
		Query:  q.Get("query"),
		Type:   q.Get("type"),
		Rarity: q.Get("rarity"),
		Set:    q.Get("set"),
	}

	cards, err := h.binders.ListCards(r.Context(), binderID, filter, q.Get("sortBy"), q.Get("direction"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	respondData(w, http.StatusOK, cards)
}

func (h *BinderHandler) addCard(w http.ResponseWriter, r *http.Request) {
	binderID, err := binderIDFromPath(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	var req struct {
		CardID string `json:"cardId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, h.log, domain.NewValidationError("body", "must be valid JSON"))
		return
	}

	card, err := h.binders.AddCard(r.Context(), binderID, req.CardID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	respondData(w, http.StatusCreated, card)
}

func (h *BinderHandler) getCard(w http.ResponseWriter, r *http.Request) {
	binderID, err := binderIDFromPath(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	card, err := h.binders.GetCard(r.Context(), binderID, r.PathValue("cardId"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	respondData(w, http.StatusOK, card)
}

func (h *BinderHandler) setQuantity(w http.ResponseWriter, r *http.Request) {
	binderID, err := binderIDFromPath(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	var req struct {
		Qty *int `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Qty == nil {
		respondError(w, r, h.log, domain.NewValidationError("qty", "required"))
		return
	}

	card, err := h.binders.SetQuantity(r.Context(), binderID, r.PathValue("cardId"), *req.Qty)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	// A nil card means the zero-qty branch removed the entry.
	respondData(w, http.StatusOK, card)
}

func (h *BinderHandler) removeCard(w http.ResponseWriter, r *http.Request) {
	binderID, err := binderIDFromPath(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	if err := h.binders.RemoveCard(r.Context(), binderID, r.PathValue("cardId")); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	respondData(w, http.StatusOK, map[string]bool{"removed": true})
}

func (h *BinderHandler) removeCards(w http.ResponseWriter, r *http.Request) {
	binderID, err := binderIDFromPath(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	var req struct {
		Cards []domain.BulkRemoveItem `json:"cards"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, h.log, domain.NewValidationError("body", "must be valid JSON"))
		return
	}

	removed, err := h.binders.RemoveCards(r.Context(), binderID, req.Cards)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	respondData(w, http.StatusOK, map[string]int64{"removed": removed})
}

// binderIDFromPath parses the {binderId} path segment. A non-numeric value is
// a validation error; range checks live in the service.
func binderIDFromPath(r *http.Request) (int64, error) {
	raw := r.PathValue("binderId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.NewValidationError("binderId", "must be a positive integer")
	}
	return id, nil
}

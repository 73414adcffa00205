package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ferrisbrook/cardbinder-backend/internal/domain"
	catalogsvc "github.com/ferrisbrook/cardbinder-backend/internal/service/catalog"
)

type catalogService interface {
	GetCard(ctx context.Context, cardID string) (*domain.Card, error)
	Search(ctx context.Context, filter domain.CardFilter, limit, offset int) (*catalogsvc.SearchResult, error)
}

// CardHandler serves the /api/cards catalog endpoints.
type CardHandler struct {
	log     *slog.Logger
	catalog catalogService
}

// NewCardHandler creates a CardHandler.
func NewCardHandler(logger *slog.Logger, catalog catalogService) *CardHandler {
	return &CardHandler{
		log:     logger.With("handler", "cards"),
		catalog: catalog,
	}
}

// Register mounts the catalog routes.
func (h *CardHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/cards", h.search)
	mux.HandleFunc("GET /api/cards/{cardId}", h.getCard)
}

func (h *CardHandler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := domain.CardFilter{
		Query:  q.Get("query"),
		Type:   q.Get("type"),
		Rarity: q.Get("rarity"),
		Set:    q.Get("set"),
	}

	// Non-numeric paging values fall back to zero and get clamped below.
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	result, err := h.catalog.Search(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	respondData(w, http.StatusOK, result)
}

func (h *CardHandler) getCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.catalog.GetCard(r.Context(), r.PathValue("cardId"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	respondData(w, http.StatusOK, card)
}

package messages

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/keyboxhn/keybox/internal/domains/messages/models"
	"github.com/keyboxhn/keybox/internal/handlers"
)

type Handler struct {
	svc *Service
}

func NewHandler(db models.DBTX) *Handler {
	repo := NewRepository(db)
	return &Handler{svc: NewService(repo)}
}

func (h *Handler) RegisterMessageRoutes(r chi.Router) {
	r.Get("/", h.listMessages)
}

func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := int32(1)
	if p, err := strconv.ParseInt(query.Get("page"), 10, 32); err == nil {
		page = int32(p)
	}

	pageSize := int32(20)
	if ps, err := strconv.ParseInt(query.Get("page_size"), 10, 32); err == nil {
		pageSize = int32(ps)
	}

	response, err := h.svc.List(r.Context(), ListParams{
		Page:     page,
		PageSize: pageSize,
		Channel:  query.Get("channel"),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to list generated messages")
		handlers.RespondWithError(w, http.StatusInternalServerError, "MESSAGES_LIST_FAILED", "Failed to list messages: "+err.Error())
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, response)
}

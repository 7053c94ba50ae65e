package templates

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/keyboxhn/keybox/internal/cache"
	"github.com/keyboxhn/keybox/internal/domains/customers"
	"github.com/keyboxhn/keybox/internal/domains/templates/models"
	"github.com/keyboxhn/keybox/internal/handlers"
	"github.com/keyboxhn/keybox/internal/queue"
	"github.com/keyboxhn/keybox/internal/render"
)

type Handler struct {
	svc *Service
}

func NewHandler(db models.DBTX, customers CustomerFinder, list *cache.Collection[models.Template], publisher queue.Publisher, settings Settings) *Handler {
	repo := NewRepository(db)
	return &Handler{svc: NewService(repo, customers, list, publisher, settings)}
}

// Service exposes the template service to the bulk generator.
func (h *Handler) Service() *Service {
	return h.svc
}

func (h *Handler) RegisterTemplateRoutes(r chi.Router) {
	r.Get("/", h.listTemplates)
	r.Post("/", h.createTemplate)
	r.Get("/variables", h.listVariables)
	r.Post("/extract", h.extract)
	r.Post("/generate", h.generateAdHoc)
	r.Get("/{id}", h.getTemplate)
	r.Put("/{id}", h.updateTemplate)
	r.Delete("/{id}", h.deleteTemplate)
	r.Post("/{id}/generate", h.generate)
}

func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.svc.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list templates")
		handlers.RespondWithError(w, http.StatusInternalServerError, "TEMPLATES_LIST_FAILED", "Failed to list templates: "+err.Error())
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, templates)
}

func (h *Handler) createTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if !handlers.DecodeJSON(w, r, &req) {
		return
	}

	template, err := h.svc.Create(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err, "TEMPLATE_CREATE_FAILED", "Failed to create template")
		return
	}

	handlers.RespondWithJSON(w, http.StatusCreated, template)
}

func (h *Handler) getTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	template, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "TEMPLATE_GET_FAILED", "Failed to get template")
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, template)
}

func (h *Handler) updateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req TemplateRequest
	if !handlers.DecodeJSON(w, r, &req) {
		return
	}

	template, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		respondWithServiceError(w, err, "TEMPLATE_UPDATE_FAILED", "Failed to update template")
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, template)
}

func (h *Handler) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "TEMPLATE_DELETE_FAILED", "Failed to delete template")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type ExtractRequest struct {
	Body string `json:"body"`
}

type ExtractResponse struct {
	Variables []string `json:"variables"`
}

func (h *Handler) extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if !handlers.DecodeJSON(w, r, &req) {
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, ExtractResponse{Variables: render.Extract(req.Body)})
}

func (h *Handler) listVariables(w http.ResponseWriter, r *http.Request) {
	handlers.RespondWithJSON(w, http.StatusOK, SearchVariables(r.URL.Query().Get("q")))
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req GenerateRequest
	if !handlers.DecodeJSON(w, r, &req) {
		return
	}

	resp, err := h.svc.Generate(r.Context(), id, req)
	if err != nil {
		respondWithServiceError(w, err, "GENERATE_FAILED", "Failed to generate message")
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) generateAdHoc(w http.ResponseWriter, r *http.Request) {
	var req AdHocGenerateRequest
	if !handlers.DecodeJSON(w, r, &req) {
		return
	}

	resp, err := h.svc.GenerateAdHoc(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err, "GENERATE_FAILED", "Failed to generate message")
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, resp)
}

func respondWithServiceError(w http.ResponseWriter, err error, code, message string) {
	var validationErr *handlers.ValidationError
	switch {
	case errors.As(err, &validationErr):
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", validationErr.Error())
	case errors.Is(err, ErrTemplateNotFound):
		handlers.RespondWithError(w, http.StatusNotFound, "TEMPLATE_NOT_FOUND", "Template not found")
	case errors.Is(err, customers.ErrCustomerNotFound):
		handlers.RespondWithError(w, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer not found")
	default:
		log.Error().Err(err).Msg(message)
		handlers.RespondWithError(w, http.StatusInternalServerError, code, message+": "+err.Error())
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_TEMPLATE_ID", "Invalid template ID format")
		return uuid.Nil, false
	}
	return id, true
}

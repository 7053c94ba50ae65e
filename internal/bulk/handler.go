package bulk

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/keyboxhn/keybox/internal/domains/templates"
	"github.com/keyboxhn/keybox/internal/handlers"
	"github.com/keyboxhn/keybox/internal/metrics"
)

// MaxUploadSize caps the size of an uploaded data file.
const MaxUploadSize = 10 << 20

// TemplateGetter loads the template a session renders.
type TemplateGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*templates.TemplateResponse, error)
}

type Handler struct {
	store     Store
	templates TemplateGetter
	now       func() time.Time
}

func NewHandler(store Store, templates TemplateGetter) *Handler {
	return &Handler{
		store:     store,
		templates: templates,
		now:       time.Now,
	}
}

// RegisterUploadRoute mounts the session-creating upload under the
// templates router.
func (h *Handler) RegisterUploadRoute(r chi.Router) {
	r.Post("/{id}/bulk", h.createSession)
}

func (h *Handler) RegisterBulkRoutes(r chi.Router) {
	r.Get("/{sessionID}", h.getSession)
	r.Post("/{sessionID}/upload", h.upload)
	r.Put("/{sessionID}/mapping", h.setMapping)
	r.Post("/{sessionID}/preview", h.preview)
	r.Post("/{sessionID}/generate", h.generateAll)
	r.Post("/{sessionID}/back", h.back)
	r.Get("/{sessionID}/export", h.export)
	r.Delete("/{sessionID}", h.deleteSession)
}

// SessionResponse is the client view of a session. Data rows are not echoed
// back; TotalRows tells how many were read.
type SessionResponse struct {
	ID            string             `json:"id"`
	TemplateID    string             `json:"template_id"`
	TemplateTitle string             `json:"template_title"`
	Variables     []string           `json:"variables"`
	Step          Step               `json:"step"`
	Headers       []string           `json:"headers"`
	TotalRows     int                `json:"total_rows"`
	PhoneColumn   string             `json:"phone_column"`
	Mappings      []Mapping          `json:"mappings"`
	Messages      []GeneratedMessage `json:"messages"`
}

func toSessionResponse(s *Session) SessionResponse {
	headers := []string{}
	if s.File != nil {
		headers = s.File.Headers
	}
	return SessionResponse{
		ID:            s.ID,
		TemplateID:    s.TemplateID,
		TemplateTitle: s.TemplateTitle,
		Variables:     s.Variables,
		Step:          s.Step,
		Headers:       headers,
		TotalRows:     s.TotalRows(),
		PhoneColumn:   s.PhoneColumn,
		Mappings:      s.Mappings,
		Messages:      s.Messages,
	}
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_TEMPLATE_ID", "Invalid template ID format")
		return
	}

	filename, content, ok := readUpload(w, r)
	if !ok {
		return
	}

	template, err := h.templates.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, templates.ErrTemplateNotFound) {
			handlers.RespondWithError(w, http.StatusNotFound, "TEMPLATE_NOT_FOUND", "Template not found")
			return
		}
		log.Error().Err(err).Str("template_id", id.String()).Msg("failed to load template for bulk session")
		handlers.RespondWithError(w, http.StatusInternalServerError, "BULK_CREATE_FAILED", "Failed to load template: "+err.Error())
		return
	}

	session := NewSession(uuid.NewString(), template.ID, template.Title, template.Body)
	uploadErr := session.Upload(filename, content)

	// The session is kept even when the file is rejected so the client can
	// retry the upload step.
	if err := h.store.Save(r.Context(), session); err != nil {
		respondWithError(w, err)
		return
	}
	if uploadErr != nil {
		respondWithError(w, uploadErr)
		return
	}

	log.Info().
		Str("session_id", session.ID).
		Str("template_id", session.TemplateID).
		Int("rows", session.TotalRows()).
		Msg("bulk session created")

	handlers.RespondWithJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.load(w, r)
	if !ok {
		return
	}
	handlers.RespondWithJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	session, ok := h.load(w, r)
	if !ok {
		return
	}

	filename, content, ok := readUpload(w, r)
	if !ok {
		return
	}

	h.apply(w, r, session, func() error {
		return session.Upload(filename, content)
	})
}

type MappingRequest struct {
	PhoneColumn string            `json:"phone_column"`
	Columns     map[string]string `json:"columns"`
}

func (h *Handler) setMapping(w http.ResponseWriter, r *http.Request) {
	session, ok := h.load(w, r)
	if !ok {
		return
	}

	var req MappingRequest
	if !handlers.DecodeJSON(w, r, &req) {
		return
	}

	h.apply(w, r, session, func() error {
		return session.SetMapping(req.PhoneColumn, req.Columns)
	})
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	session, ok := h.load(w, r)
	if !ok {
		return
	}

	h.apply(w, r, session, func() error {
		_, err := session.Preview()
		return err
	})
}

func (h *Handler) generateAll(w http.ResponseWriter, r *http.Request) {
	session, ok := h.load(w, r)
	if !ok {
		return
	}

	h.apply(w, r, session, func() error {
		messages, err := session.GenerateAll()
		if err != nil {
			return err
		}
		metrics.BulkRowsTotal.Add(float64(len(messages)))
		metrics.MessagesGeneratedTotal.WithLabelValues(metrics.FlowBulk).Add(float64(len(messages)))
		log.Info().Str("session_id", session.ID).Int("messages", len(messages)).Msg("bulk messages generated")
		return nil
	})
}

func (h *Handler) back(w http.ResponseWriter, r *http.Request) {
	session, ok := h.load(w, r)
	if !ok {
		return
	}

	h.apply(w, r, session, session.Back)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	session, ok := h.load(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := session.Export(&buf); err != nil {
		respondWithError(w, err)
		return
	}

	filename := ExportFilename(session.TemplateTitle, h.now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Error().Err(err).Str("session_id", session.ID).Msg("failed to write export")
	}
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondWithError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	session, err := h.store.Load(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondWithError(w, err)
		return nil, false
	}
	return session, true
}

// apply runs a transition and stores the session only when it succeeded.
func (h *Handler) apply(w http.ResponseWriter, r *http.Request, session *Session, transition func() error) {
	if err := transition(); err != nil {
		respondWithError(w, err)
		return
	}
	if err := h.store.Save(r.Context(), session); err != nil {
		respondWithError(w, err)
		return
	}
	handlers.RespondWithJSON(w, http.StatusOK, toSessionResponse(session))
}

func readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "A multipart form with a \"file\" field is required: "+err.Error())
		return "", nil, false
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read uploaded file: "+err.Error())
		return "", nil, false
	}
	return header.Filename, content, true
}

func respondWithError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		handlers.RespondWithError(w, http.StatusNotFound, "BULK_SESSION_NOT_FOUND", "Bulk session not found or expired")
	case errors.Is(err, ErrUnsupportedFile), errors.Is(err, ErrNoRows), errors.Is(err, ErrMalformedFile):
		handlers.RespondWithError(w, http.StatusUnprocessableEntity, "INVALID_FILE", err.Error())
	case errors.Is(err, ErrIncompleteMapping), errors.Is(err, ErrUnknownVariable):
		handlers.RespondWithError(w, http.StatusUnprocessableEntity, "INVALID_MAPPING", err.Error())
	case errors.Is(err, ErrInvalidStep), errors.Is(err, ErrNoPreviousStep):
		handlers.RespondWithError(w, http.StatusConflict, "INVALID_BULK_STEP", err.Error())
	default:
		log.Error().Err(err).Msg("bulk session operation failed")
		handlers.RespondWithError(w, http.StatusInternalServerError, "BULK_SESSION_FAILED", "Bulk session operation failed: "+err.Error())
	}
}

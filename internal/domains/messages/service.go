package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/keyboxhn/keybox/internal/domains/messages/models"
	"github.com/keyboxhn/keybox/internal/queue"
)

// ErrInvalidEvent marks an event that can never be recorded.
var ErrInvalidEvent = errors.New("invalid generated message event")

const foreignKeyViolation = "23503"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record stores one generated message. References to customers or templates
// deleted in the meantime are dropped rather than failing the insert.
func (s *Service) Record(ctx context.Context, event queue.GeneratedMessageEvent) (models.GeneratedMessage, error) {
	params, err := toCreateParams(event)
	if err != nil {
		return models.GeneratedMessage{}, err
	}

	msg, err := s.repo.CreateGeneratedMessage(ctx, params)
	if err != nil && isForeignKeyViolation(err) {
		log.Warn().Err(err).Msg("generated message references a deleted record, storing without references")
		params.CustomerID = uuid.NullUUID{}
		params.TemplateID = uuid.NullUUID{}
		msg, err = s.repo.CreateGeneratedMessage(ctx, params)
	}
	return msg, err
}

func toCreateParams(event queue.GeneratedMessageEvent) (models.CreateGeneratedMessageParams, error) {
	if strings.TrimSpace(event.Channel) == "" {
		return models.CreateGeneratedMessageParams{}, fmt.Errorf("%w: channel is required", ErrInvalidEvent)
	}
	customerID, err := parseNullUUID(event.CustomerID)
	if err != nil {
		return models.CreateGeneratedMessageParams{}, fmt.Errorf("%w: customer_id: %v", ErrInvalidEvent, err)
	}
	templateID, err := parseNullUUID(event.TemplateID)
	if err != nil {
		return models.CreateGeneratedMessageParams{}, fmt.Errorf("%w: template_id: %v", ErrInvalidEvent, err)
	}

	createdAt := event.GeneratedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return models.CreateGeneratedMessageParams{
		Channel:    event.Channel,
		CustomerID: customerID,
		TemplateID: templateID,
		Body:       event.Body,
		CreatedAt:  createdAt,
	}, nil
}

func parseNullUUID(s string) (uuid.NullUUID, error) {
	if s == "" {
		return uuid.NullUUID{}, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.NullUUID{}, err
	}
	return uuid.NullUUID{UUID: id, Valid: true}, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == foreignKeyViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == foreignKeyViolation
	}
	return false
}

// Prune deletes history older than retention. A zero retention keeps
// everything.
func (s *Service) Prune(ctx context.Context, retention time.Duration, now time.Time) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	return s.repo.DeleteGeneratedMessagesBefore(ctx, now.Add(-retention))
}

type ListParams struct {
	Page     int32
	PageSize int32
	Channel  string
}

type Pagination struct {
	Page       int32 `json:"page"`
	PageSize   int32 `json:"page_size"`
	TotalCount int64 `json:"total_count"`
	TotalPages int32 `json:"total_pages"`
}

type MessageResponse struct {
	ID         string    `json:"id"`
	Channel    string    `json:"channel"`
	CustomerID *string   `json:"customer_id"`
	TemplateID *string   `json:"template_id"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

type ListResponse struct {
	Data       []MessageResponse `json:"data"`
	Pagination Pagination        `json:"pagination"`
}

func toMessageResponse(m models.GeneratedMessage) MessageResponse {
	resp := MessageResponse{
		ID:        m.ID.String(),
		Channel:   m.Channel,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
	if m.CustomerID.Valid {
		id := m.CustomerID.UUID.String()
		resp.CustomerID = &id
	}
	if m.TemplateID.Valid {
		id := m.TemplateID.UUID.String()
		resp.TemplateID = &id
	}
	return resp
}

// List returns one page of history, newest first.
func (s *Service) List(ctx context.Context, params ListParams) (*ListResponse, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = 20
	}
	if params.PageSize > 100 {
		params.PageSize = 100
	}

	channel := sql.NullString{String: params.Channel, Valid: params.Channel != ""}

	msgs, err := s.repo.ListGeneratedMessages(ctx, models.ListGeneratedMessagesParams{
		Channel: channel,
		Limit:   params.PageSize,
		Offset:  (params.Page - 1) * params.PageSize,
	})
	if err != nil {
		return nil, err
	}

	totalCount, err := s.repo.CountGeneratedMessages(ctx, channel)
	if err != nil {
		return nil, err
	}

	totalPages := int32(0)
	if totalCount > 0 {
		totalPages = int32((totalCount + int64(params.PageSize) - 1) / int64(params.PageSize))
	}

	data := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		data = append(data, toMessageResponse(m))
	}

	return &ListResponse{
		Data: data,
		Pagination: Pagination{
			Page:       params.Page,
			PageSize:   params.PageSize,
			TotalCount: totalCount,
			TotalPages: totalPages,
		},
	}, nil
}

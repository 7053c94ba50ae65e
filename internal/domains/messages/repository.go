package messages

import (
	"context"
	"database/sql"
	"time"

	"github.com/keyboxhn/keybox/internal/domains/messages/models"
)

type Repository interface {
	CreateGeneratedMessage(ctx context.Context, params models.CreateGeneratedMessageParams) (models.GeneratedMessage, error)
	ListGeneratedMessages(ctx context.Context, params models.ListGeneratedMessagesParams) ([]models.GeneratedMessage, error)
	CountGeneratedMessages(ctx context.Context, channel sql.NullString) (int64, error)
	DeleteGeneratedMessagesBefore(ctx context.Context, before time.Time) (int64, error)
}

type repository struct {
	q *models.Queries
}

func NewRepository(db models.DBTX) Repository {
	return &repository{q: models.New(db)}
}

func (r *repository) CreateGeneratedMessage(ctx context.Context, params models.CreateGeneratedMessageParams) (models.GeneratedMessage, error) {
	return r.q.CreateGeneratedMessage(ctx, params)
}

func (r *repository) ListGeneratedMessages(ctx context.Context, params models.ListGeneratedMessagesParams) ([]models.GeneratedMessage, error) {
	return r.q.ListGeneratedMessages(ctx, params)
}

func (r *repository) CountGeneratedMessages(ctx context.Context, channel sql.NullString) (int64, error) {
	return r.q.CountGeneratedMessages(ctx, channel)
}

func (r *repository) DeleteGeneratedMessagesBefore(ctx context.Context, before time.Time) (int64, error) {
	return r.q.DeleteGeneratedMessagesBefore(ctx, before)
}

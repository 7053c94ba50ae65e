package templates

import (
	"context"

	"github.com/google/uuid"

	"github.com/keyboxhn/keybox/internal/domains/templates/models"
)

type Repository interface {
	CreateTemplate(ctx context.Context, template models.CreateTemplateParams) (models.Template, error)
	GetTemplate(ctx context.Context, id uuid.UUID) (models.Template, error)
	ListTemplates(ctx context.Context) ([]models.Template, error)
	CountTemplates(ctx context.Context) (int64, error)
	UpdateTemplate(ctx context.Context, template models.UpdateTemplateParams) (models.Template, error)
	DeleteTemplate(ctx context.Context, id uuid.UUID) (int64, error)
}

type repository struct {
	q *models.Queries
}

func NewRepository(db models.DBTX) Repository {
	return &repository{q: models.New(db)}
}

func (r *repository) CreateTemplate(ctx context.Context, template models.CreateTemplateParams) (models.Template, error) {
	return r.q.CreateTemplate(ctx, template)
}

func (r *repository) GetTemplate(ctx context.Context, id uuid.UUID) (models.Template, error) {
	return r.q.GetTemplate(ctx, id)
}

func (r *repository) ListTemplates(ctx context.Context) ([]models.Template, error) {
	return r.q.ListTemplates(ctx)
}

func (r *repository) CountTemplates(ctx context.Context) (int64, error) {
	return r.q.CountTemplates(ctx)
}

func (r *repository) UpdateTemplate(ctx context.Context, template models.UpdateTemplateParams) (models.Template, error) {
	return r.q.UpdateTemplate(ctx, template)
}

func (r *repository) DeleteTemplate(ctx context.Context, id uuid.UUID) (int64, error) {
	return r.q.DeleteTemplate(ctx, id)
}

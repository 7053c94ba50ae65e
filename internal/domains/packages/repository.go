package packages

import (
	"context"

	"github.com/google/uuid"

	"github.com/keyboxhn/keybox/internal/domains/packages/models"
)

type Repository interface {
	CreatePackage(ctx context.Context, pkg models.CreatePackageParams) (models.Package, error)
	ListPackagesByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Package, error)
}

type repository struct {
	q *models.Queries
}

func NewRepository(db models.DBTX) Repository {
	return &repository{q: models.New(db)}
}

func (r *repository) CreatePackage(ctx context.Context, pkg models.CreatePackageParams) (models.Package, error) {
	return r.q.CreatePackage(ctx, pkg)
}

func (r *repository) ListPackagesByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Package, error) {
	return r.q.ListPackagesByCustomer(ctx, customerID)
}

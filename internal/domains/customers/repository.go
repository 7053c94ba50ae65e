package customers

import (
	"context"

	"github.com/google/uuid"

	"github.com/keyboxhn/keybox/internal/domains/customers/models"
)

type Repository interface {
	CreateCustomer(ctx context.Context, customer models.CreateCustomerParams) (models.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (models.Customer, error)
	GetCustomerByCode(ctx context.Context, code string) (models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	UpdateCustomer(ctx context.Context, customer models.UpdateCustomerParams) (models.Customer, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) (int64, error)
}

type repository struct {
	q *models.Queries
}

func NewRepository(db models.DBTX) Repository {
	return &repository{q: models.New(db)}
}

func (r *repository) CreateCustomer(ctx context.Context, customer models.CreateCustomerParams) (models.Customer, error) {
	return r.q.CreateCustomer(ctx, customer)
}

func (r *repository) GetCustomer(ctx context.Context, id uuid.UUID) (models.Customer, error) {
	return r.q.GetCustomer(ctx, id)
}

func (r *repository) GetCustomerByCode(ctx context.Context, code string) (models.Customer, error) {
	return r.q.GetCustomerByCode(ctx, code)
}

func (r *repository) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return r.q.ListCustomers(ctx)
}

func (r *repository) UpdateCustomer(ctx context.Context, customer models.UpdateCustomerParams) (models.Customer, error) {
	return r.q.UpdateCustomer(ctx, customer)
}

func (r *repository) DeleteCustomer(ctx context.Context, id uuid.UUID) (int64, error) {
	return r.q.DeleteCustomer(ctx, id)
}

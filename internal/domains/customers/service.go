package customers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/keyboxhn/keybox/internal/cache"
	"github.com/keyboxhn/keybox/internal/domains/customers/models"
	"github.com/keyboxhn/keybox/internal/handlers"
)

var (
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrCustomerCodeTaken = errors.New("customer code already in use")
)

const uniqueViolation = "23505"

type Service struct {
	repo Repository
	list *cache.Collection[models.Customer]
}

// NewService wires the repository with an optional list cache; list may be nil.
func NewService(repo Repository, list *cache.Collection[models.Customer]) *Service {
	return &Service{repo: repo, list: list}
}

type CreateCustomerRequest struct {
	CustomerCode string  `json:"customer_code" validate:"notblank,max=50"`
	Name         string  `json:"name" validate:"notblank,max=200"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Phone        *string `json:"phone" validate:"omitempty,max=30"`
}

type UpdateCustomerRequest = CreateCustomerRequest

// normalize trims every field and drops blank optional fields so they are
// validated and stored as absent.
func (r CreateCustomerRequest) normalize() CreateCustomerRequest {
	r.CustomerCode = strings.TrimSpace(r.CustomerCode)
	r.Name = strings.TrimSpace(r.Name)
	r.Email = trimOptional(r.Email)
	r.Phone = trimOptional(r.Phone)
	return r
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (s *Service) List(ctx context.Context, query string) ([]models.Customer, error) {
	all, ok := s.list.Get(ctx)
	if !ok {
		var err error
		all, err = s.repo.ListCustomers(ctx)
		if err != nil {
			return nil, err
		}
		if all == nil {
			all = []models.Customer{}
		}
		s.list.Set(ctx, all)
	}
	return Filter(all, query), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (models.Customer, error) {
	customer, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return models.Customer{}, notFound(err)
	}
	return customer, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (models.Customer, error) {
	customer, err := s.repo.GetCustomerByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return models.Customer{}, notFound(err)
	}
	return customer, nil
}

func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (models.Customer, error) {
	req = req.normalize()
	if err := handlers.Validate(req); err != nil {
		return models.Customer{}, err
	}

	customer, err := s.repo.CreateCustomer(ctx, models.CreateCustomerParams{
		CustomerCode: req.CustomerCode,
		Name:         req.Name,
		Email:        stringToNullString(req.Email),
		Phone:        stringToNullString(req.Phone),
	})
	if err != nil {
		return models.Customer{}, conflict(err)
	}

	s.list.Invalidate(ctx)
	return customer, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (models.Customer, error) {
	req = req.normalize()
	if err := handlers.Validate(req); err != nil {
		return models.Customer{}, err
	}

	customer, err := s.repo.UpdateCustomer(ctx, models.UpdateCustomerParams{
		ID:           id,
		CustomerCode: req.CustomerCode,
		Name:         req.Name,
		Email:        stringToNullString(req.Email),
		Phone:        stringToNullString(req.Phone),
	})
	if err != nil {
		return models.Customer{}, conflict(notFound(err))
	}

	s.list.Invalidate(ctx)
	return customer, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.repo.DeleteCustomer(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCustomerNotFound
	}

	s.list.Invalidate(ctx)
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCustomerNotFound
	}
	return err
}

func conflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrCustomerCodeTaken, pgErr.Detail)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrCustomerCodeTaken, pqErr.Detail)
	}
	return err
}

// stringToNullString maps nil and blank strings to NULL.
func stringToNullString(s *string) sql.NullString {
	if s == nil || strings.TrimSpace(*s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: strings.TrimSpace(*s), Valid: true}
}

package customers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/keyboxhn/keybox/internal/domains/customers/models"
	"github.com/keyboxhn/keybox/internal/handlers"
)

// mockRepository keeps customers in memory and enforces unique codes.
type mockRepository struct {
	customers []models.Customer
	listCalls int
	err       error
}

func (m *mockRepository) CreateCustomer(ctx context.Context, params models.CreateCustomerParams) (models.Customer, error) {
	if m.err != nil {
		return models.Customer{}, m.err
	}
	for _, c := range m.customers {
		if c.CustomerCode == params.CustomerCode {
			return models.Customer{}, &pgconn.PgError{Code: "23505", Detail: "Key (customer_code) already exists."}
		}
	}
	c := models.Customer{
		ID:           uuid.New(),
		CustomerCode: params.CustomerCode,
		Name:         params.Name,
		Email:        params.Email,
		Phone:        params.Phone,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.customers = append(m.customers, c)
	return c, nil
}

func (m *mockRepository) GetCustomer(ctx context.Context, id uuid.UUID) (models.Customer, error) {
	for _, c := range m.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Customer{}, sql.ErrNoRows
}

func (m *mockRepository) GetCustomerByCode(ctx context.Context, code string) (models.Customer, error) {
	for _, c := range m.customers {
		if c.CustomerCode == code {
			return c, nil
		}
	}
	return models.Customer{}, sql.ErrNoRows
}

func (m *mockRepository) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	m.listCalls++
	if m.err != nil {
		return nil, m.err
	}
	return append([]models.Customer(nil), m.customers...), nil
}

func (m *mockRepository) UpdateCustomer(ctx context.Context, params models.UpdateCustomerParams) (models.Customer, error) {
	for i, c := range m.customers {
		if c.ID == params.ID {
			m.customers[i].CustomerCode = params.CustomerCode
			m.customers[i].Name = params.Name
			m.customers[i].Email = params.Email
			m.customers[i].Phone = params.Phone
			return m.customers[i], nil
		}
	}
	return models.Customer{}, sql.ErrNoRows
}

func (m *mockRepository) DeleteCustomer(ctx context.Context, id uuid.UUID) (int64, error) {
	for i, c := range m.customers {
		if c.ID == id {
			m.customers = append(m.customers[:i], m.customers[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

var _ Repository = (*mockRepository)(nil)

func strPtr(s string) *string { return &s }

func TestService_CreateNormalizesOptionalFields(t *testing.T) {
	svc := NewService(&mockRepository{}, nil)

	customer, err := svc.Create(context.Background(), CreateCustomerRequest{
		CustomerCode: " KB001 ",
		Name:         "Carlos Mendoza",
		Email:        strPtr("  "),
		Phone:        strPtr("+504 9999-9999"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if customer.CustomerCode != "KB001" {
		t.Errorf("expected trimmed code, got %q", customer.CustomerCode)
	}
	if customer.Email.Valid {
		t.Errorf("expected blank email to be stored as NULL")
	}
	if !customer.Phone.Valid || customer.Phone.String != "+504 9999-9999" {
		t.Errorf("unexpected phone %v", customer.Phone)
	}
}

func TestService_UpdateNormalizesOptionalFields(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, nil)

	created, err := svc.Create(context.Background(), CreateCustomerRequest{
		CustomerCode: "KB002",
		Name:         "Ana",
		Email:        strPtr("ana@example.com"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(context.Background(), created.ID, UpdateCustomerRequest{
		CustomerCode: "KB002",
		Name:         " Ana López ",
		Email:        strPtr(" \t"),
		Phone:        strPtr(""),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Ana López" {
		t.Errorf("expected trimmed name, got %q", updated.Name)
	}
	if updated.Email.Valid || updated.Phone.Valid {
		t.Errorf("expected blank optional fields to be NULL, got %v %v", updated.Email, updated.Phone)
	}
}

func TestService_CreateRequiresCodeAndName(t *testing.T) {
	svc := NewService(&mockRepository{}, nil)

	_, err := svc.Create(context.Background(), CreateCustomerRequest{CustomerCode: "  ", Email: strPtr("not-an-email")})

	var validationErr *handlers.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	want := map[string]bool{"customer_code": true, "name": true, "email": true}
	for _, f := range validationErr.Fields {
		delete(want, f)
	}
	if len(want) != 0 {
		t.Errorf("missing validation errors for %v (got %v)", want, validationErr.Fields)
	}
}

func TestService_DuplicateCode(t *testing.T) {
	svc := NewService(&mockRepository{}, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateCustomerRequest{CustomerCode: "KB001", Name: "Ana"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.Create(ctx, CreateCustomerRequest{CustomerCode: "KB001", Name: "Luis"})
	if !errors.Is(err, ErrCustomerCodeTaken) {
		t.Fatalf("expected ErrCustomerCodeTaken, got %v", err)
	}
}

func TestService_NotFound(t *testing.T) {
	svc := NewService(&mockRepository{}, nil)
	ctx := context.Background()

	if _, err := svc.GetByCode(ctx, "nope"); !errors.Is(err, ErrCustomerNotFound) {
		t.Errorf("GetByCode: expected ErrCustomerNotFound, got %v", err)
	}
	if _, err := svc.Get(ctx, uuid.New()); !errors.Is(err, ErrCustomerNotFound) {
		t.Errorf("Get: expected ErrCustomerNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, uuid.New()); !errors.Is(err, ErrCustomerNotFound) {
		t.Errorf("Delete: expected ErrCustomerNotFound, got %v", err)
	}
	_, err := svc.Update(ctx, uuid.New(), UpdateCustomerRequest{CustomerCode: "KB9", Name: "X"})
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Errorf("Update: expected ErrCustomerNotFound, got %v", err)
	}
}

func TestFilter_AccentAndCaseInsensitive(t *testing.T) {
	list := []models.Customer{
		{CustomerCode: "KB001", Name: "José Peña"},
		{CustomerCode: "KB002", Name: "Ana López", Email: sql.NullString{String: "ana@keybox.hn", Valid: true}},
		{CustomerCode: "XY100", Name: "Luis"},
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"KB001", "KB002", "XY100"}},
		{"pena", []string{"KB001"}},
		{"JOSE", []string{"KB001"}},
		{"lópez", []string{"KB002"}},
		{"kb", []string{"KB001", "KB002"}},
		{"KEYBOX.HN", []string{"KB002"}},
		{"zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := Filter(list, tt.query)
			codes := make([]string, 0, len(got))
			for _, c := range got {
				codes = append(codes, c.CustomerCode)
			}
			if strings.Join(codes, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Filter(%q) = %v, want %v", tt.query, codes, tt.want)
			}
		})
	}
}

func newTestRouter(repo Repository) http.Handler {
	h := &Handler{svc: NewService(repo, nil)}
	r := chi.NewRouter()
	r.Route("/customers", h.RegisterCustomerRoutes)
	return r
}

func TestHandler_CustomerRoutes(t *testing.T) {
	repo := &mockRepository{}
	router := newTestRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/customers/",
		strings.NewReader(`{"customer_code":"KB001","name":"José Peña","phone":"+504 9999-9999"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/customers/",
		strings.NewReader(`{"customer_code":"KB001","name":"Otro"}`)))
	if rec.Code != http.StatusConflict || !strings.Contains(rec.Body.String(), "CUSTOMER_CODE_TAKEN") {
		t.Fatalf("duplicate: expected 409 CUSTOMER_CODE_TAKEN, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers/by-code/KB001", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"name":"José Peña"`) {
		t.Fatalf("by-code: got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers/?q=pena", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "KB001") {
		t.Fatalf("search: got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers/not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", rec.Code)
	}

	id := repo.customers[0].ID.String()
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/customers/"+id, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers/"+id, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted: expected 404, got %d", rec.Code)
	}
}

func TestHandler_ListPaginates(t *testing.T) {
	repo := &mockRepository{}
	for _, code := range []string{"A", "B", "C"} {
		repo.customers = append(repo.customers, models.Customer{ID: uuid.New(), CustomerCode: code, Name: code})
	}
	router := newTestRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers/?limit=2&offset=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"customer_code":"C"`) || strings.Contains(body, `"customer_code":"A"`) {
		t.Errorf("unexpected page: %s", body)
	}
}

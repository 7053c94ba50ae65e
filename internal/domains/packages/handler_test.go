package packages

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	customersModels "github.com/keyboxhn/keybox/internal/domains/customers/models"
	"github.com/keyboxhn/keybox/internal/handlers"
)

func newTestRouter(store *mockCustomerStore) http.Handler {
	h := &Handler{svc: newTestService(&mockPackageRepo{}, store, nil)}
	r := chi.NewRouter()
	r.Route("/packages", h.RegisterPackageRoutes)
	return r
}

func TestHandler_Notify(t *testing.T) {
	router := newTestRouter(&mockCustomerStore{})

	body := `{
		"customer_code": "KB001",
		"name": "Ana",
		"modalities": ["Marítimo"],
		"quantity": 1,
		"trackings": "1ZXY921A\n92374823US",
		"weight": 2,
		"amount": 300.5
	}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/packages/notifications", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp NotificationResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !strings.Contains(resp.Message, "• 1ZXY921A\n• 92374823US") {
		t.Errorf("Expected bulleted trackings in %q", resp.Message)
	}
	if !strings.Contains(resp.Message, "*L300.5*") {
		t.Errorf("Expected amount in %q", resp.Message)
	}
	if !strings.HasPrefix(resp.WhatsApp, "https://wa.me/?text=") {
		t.Errorf("Expected recipient-less WhatsApp link, got %q", resp.WhatsApp)
	}
	if resp.PersistenceErrors == nil {
		t.Error("Expected persistence_errors to be an empty list")
	}
}

func TestHandler_NotifyErrors(t *testing.T) {
	router := newTestRouter(&mockCustomerStore{})

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"missing fields", `{"customer_code":"KB001"}`, http.StatusUnprocessableEntity, "INCOMPLETE_FIELDS"},
		{"unknown modality", `{"customer_code":"KB001","name":"Ana","modalities":["Aéreo"],"quantity":1,"trackings":["x"],"weight":1,"amount":1}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"bad json", `{"quantity":"two"}`, http.StatusBadRequest, "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/packages/notifications", strings.NewReader(tt.body)))
			if rec.Code != tt.status {
				t.Fatalf("Expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			var resp handlers.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error: %v", err)
			}
			if resp.Error.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, resp.Error.Code)
			}
		})
	}
}

func TestHandler_Lookup(t *testing.T) {
	router := newTestRouter(&mockCustomerStore{customers: []customersModels.Customer{
		{ID: uuid.New(), CustomerCode: "KB001", Name: "Ana López"},
	}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/packages/notifications/lookup?customer_code=KB001", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp LookupResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Name != "Ana López" || resp.Customer.CustomerCode != "KB001" {
		t.Errorf("Unexpected lookup %+v", resp)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/packages/notifications/lookup?customer_code=KB404", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/packages/notifications/lookup", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

package customers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/keyboxhn/keybox/internal/cache"
	"github.com/keyboxhn/keybox/internal/domains/customers/models"
	"github.com/keyboxhn/keybox/internal/handlers"
)

type Handler struct {
	svc *Service
}

func NewHandler(db models.DBTX, list *cache.Collection[models.Customer]) *Handler {
	repo := NewRepository(db)
	return &Handler{svc: NewService(repo, list)}
}

// Service exposes the customer service to the other domains.
func (h *Handler) Service() *Service {
	return h.svc
}

func (h *Handler) RegisterCustomerRoutes(r chi.Router) {
	r.Post("/", h.createCustomer)
	r.Get("/", h.listCustomers)
	r.Get("/by-code/{code}", h.getCustomerByCode)
	r.Get("/{id}", h.getCustomer)
	r.Put("/{id}", h.updateCustomer)
	r.Delete("/{id}", h.deleteCustomer)
}

// CustomerResponse is the API response format for customers
type CustomerResponse struct {
	ID           string  `json:"id"`
	CustomerCode string  `json:"customer_code"`
	Name         string  `json:"name"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func ToCustomerResponse(customer models.Customer) CustomerResponse {
	resp := CustomerResponse{
		ID:           customer.ID.String(),
		CustomerCode: customer.CustomerCode,
		Name:         customer.Name,
		CreatedAt:    customer.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    customer.UpdatedAt.Format(time.RFC3339),
	}

	if customer.Email.Valid {
		resp.Email = &customer.Email.String
	}

	if customer.Phone.Valid {
		resp.Phone = &customer.Phone.String
	}

	return resp
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if !handlers.DecodeJSON(w, r, &req) {
		return
	}

	customer, err := h.svc.Create(r.Context(), req)
	if err != nil {
		h.respondWithServiceError(w, err, "CUSTOMER_CREATE_FAILED", "Failed to create customer")
		return
	}

	handlers.RespondWithJSON(w, http.StatusCreated, ToCustomerResponse(customer))
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 100
	offset := 0

	if v, err := strconv.Atoi(query.Get("limit")); err == nil && v > 0 {
		limit = min(v, 1000)
	}
	if v, err := strconv.Atoi(query.Get("offset")); err == nil && v >= 0 {
		offset = v
	}

	customers, err := h.svc.List(r.Context(), query.Get("q"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to list customers")
		handlers.RespondWithError(w, http.StatusInternalServerError, "CUSTOMERS_LIST_FAILED", "Failed to list customers: "+err.Error())
		return
	}

	if offset > len(customers) {
		offset = len(customers)
	}
	end := min(offset+limit, len(customers))

	response := make([]CustomerResponse, 0, end-offset)
	for _, customer := range customers[offset:end] {
		response = append(response, ToCustomerResponse(customer))
	}

	handlers.RespondWithJSON(w, http.StatusOK, response)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	customer, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, err, "CUSTOMER_GET_FAILED", "Failed to get customer")
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, ToCustomerResponse(customer))
}

func (h *Handler) getCustomerByCode(w http.ResponseWriter, r *http.Request) {
	customer, err := h.svc.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.respondWithServiceError(w, err, "CUSTOMER_GET_FAILED", "Failed to get customer")
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, ToCustomerResponse(customer))
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req UpdateCustomerRequest
	if !handlers.DecodeJSON(w, r, &req) {
		return
	}

	customer, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		h.respondWithServiceError(w, err, "CUSTOMER_UPDATE_FAILED", "Failed to update customer")
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, ToCustomerResponse(customer))
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.respondWithServiceError(w, err, "CUSTOMER_DELETE_FAILED", "Failed to delete customer")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondWithServiceError(w http.ResponseWriter, err error, code, message string) {
	var validationErr *handlers.ValidationError
	switch {
	case errors.As(err, &validationErr):
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", validationErr.Error())
	case errors.Is(err, ErrCustomerNotFound):
		handlers.RespondWithError(w, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer not found")
	case errors.Is(err, ErrCustomerCodeTaken):
		handlers.RespondWithError(w, http.StatusConflict, "CUSTOMER_CODE_TAKEN", "Customer code is already in use")
	default:
		log.Error().Err(err).Msg(message)
		handlers.RespondWithError(w, http.StatusInternalServerError, code, message+": "+err.Error())
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_CUSTOMER_ID", "Invalid customer ID format")
		return uuid.Nil, false
	}
	return id, true
}

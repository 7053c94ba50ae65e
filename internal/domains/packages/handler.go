package packages

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/keyboxhn/keybox/internal/domains/customers"
	"github.com/keyboxhn/keybox/internal/domains/packages/models"
	"github.com/keyboxhn/keybox/internal/handlers"
	"github.com/keyboxhn/keybox/internal/queue"
)

type Handler struct {
	svc *Service
}

func NewHandler(db models.DBTX, customers CustomerStore, publisher queue.Publisher, settings Settings) *Handler {
	repo := NewRepository(db)
	return &Handler{svc: NewService(repo, customers, publisher, settings)}
}

func (h *Handler) RegisterPackageRoutes(r chi.Router) {
	r.Get("/", h.listPackages)
	r.Post("/notifications", h.notify)
	r.Get("/notifications/lookup", h.lookup)
}

type PackageResponse struct {
	ID              string    `json:"id"`
	CustomerID      string    `json:"customer_id"`
	Quantity        int32     `json:"quantity"`
	Modalities      []string  `json:"modalities"`
	TotalWeight     float64   `json:"total_weight"`
	Amount          float64   `json:"amount"`
	Trackings       []string  `json:"trackings"`
	IncludeDelivery bool      `json:"include_delivery"`
	DeliveryZone    *string   `json:"delivery_zone,omitempty"`
	WaitForMore     bool      `json:"wait_for_more"`
	CreatedAt       time.Time `json:"created_at"`
}

func toPackageResponse(p models.Package) PackageResponse {
	resp := PackageResponse{
		ID:              p.ID.String(),
		CustomerID:      p.CustomerID.String(),
		Quantity:        p.Quantity,
		Modalities:      p.Modalities,
		TotalWeight:     p.TotalWeight,
		Amount:          p.Amount,
		Trackings:       p.Trackings,
		IncludeDelivery: p.IncludeDelivery,
		WaitForMore:     p.WaitForMore,
		CreatedAt:       p.CreatedAt,
	}
	if p.DeliveryZone.Valid {
		resp.DeliveryZone = &p.DeliveryZone.String
	}
	return resp
}

func (h *Handler) notify(w http.ResponseWriter, r *http.Request) {
	var req NotificationRequest
	if !handlers.DecodeJSON(w, r, &req) {
		return
	}

	resp, err := h.svc.Notify(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err, "NOTIFICATION_FAILED", "Failed to generate notification")
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, resp)
}

// LookupResponse carries the values used to prefill the notification form.
type LookupResponse struct {
	Customer customers.CustomerResponse `json:"customer"`
	Name     string                     `json:"name"`
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("customer_code"))
	if code == "" {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "customer_code is required")
		return
	}

	customer, err := h.svc.Lookup(r.Context(), code)
	if err != nil {
		respondWithServiceError(w, err, "CUSTOMER_LOOKUP_FAILED", "Failed to look up customer")
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, LookupResponse{
		Customer: customers.ToCustomerResponse(customer),
		Name:     customer.Name,
	})
}

func (h *Handler) listPackages(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("customer_code"))
	if code == "" {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "customer_code is required")
		return
	}

	pkgs, err := h.svc.History(r.Context(), code)
	if err != nil {
		respondWithServiceError(w, err, "PACKAGES_LIST_FAILED", "Failed to list packages")
		return
	}

	resp := make([]PackageResponse, len(pkgs))
	for i, p := range pkgs {
		resp[i] = toPackageResponse(p)
	}
	handlers.RespondWithJSON(w, http.StatusOK, resp)
}

func respondWithServiceError(w http.ResponseWriter, err error, code, message string) {
	var validationErr *handlers.ValidationError
	switch {
	case errors.As(err, &validationErr):
		handlers.RespondWithError(w, http.StatusUnprocessableEntity, "INCOMPLETE_FIELDS", validationErr.Error())
	case errors.Is(err, ErrUnknownModality), errors.Is(err, ErrInvalidChannel):
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, customers.ErrCustomerNotFound):
		handlers.RespondWithError(w, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer not found")
	default:
		log.Error().Err(err).Msg(message)
		handlers.RespondWithError(w, http.StatusInternalServerError, code, message+": "+err.Error())
	}
}

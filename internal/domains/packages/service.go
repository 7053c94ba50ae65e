package packages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/keyboxhn/keybox/internal/domains/customers"
	customersModels "github.com/keyboxhn/keybox/internal/domains/customers/models"
	"github.com/keyboxhn/keybox/internal/domains/packages/models"
	"github.com/keyboxhn/keybox/internal/handlers"
	"github.com/keyboxhn/keybox/internal/links"
	"github.com/keyboxhn/keybox/internal/metrics"
	"github.com/keyboxhn/keybox/internal/queue"
	"github.com/keyboxhn/keybox/internal/render"
)

var (
	ErrUnknownModality = errors.New("unknown shipping modality")
	ErrInvalidChannel  = errors.New("channel must be whatsapp or telegram")
)

// CustomerStore finds and registers customers for the notification flow.
type CustomerStore interface {
	GetByCode(ctx context.Context, code string) (customersModels.Customer, error)
	Create(ctx context.Context, req customers.CreateCustomerRequest) (customersModels.Customer, error)
}

type Settings struct {
	Region      string
	PaymentsURL string
	Now         func() time.Time
}

type Service struct {
	repo      Repository
	customers CustomerStore
	publisher queue.Publisher
	settings  Settings
}

func NewService(repo Repository, customers CustomerStore, publisher queue.Publisher, settings Settings) *Service {
	if settings.Now == nil {
		settings.Now = time.Now
	}
	return &Service{
		repo:      repo,
		customers: customers,
		publisher: publisher,
		settings:  settings,
	}
}

type NotificationRequest struct {
	CustomerCode    string       `json:"customer_code" validate:"notblank"`
	Name            string       `json:"name" validate:"notblank"`
	Modalities      []string     `json:"modalities" validate:"min=1,dive,notblank"`
	Quantity        int          `json:"quantity" validate:"gt=0"`
	Trackings       render.Value `json:"trackings"`
	Weight          float64      `json:"weight" validate:"gt=0"`
	Amount          float64      `json:"amount" validate:"gt=0"`
	IncludeDelivery bool         `json:"include_delivery"`
	DeliveryZone    string       `json:"delivery_zone"`
	WaitForMore     bool         `json:"wait_for_more"`
	Phone           string       `json:"phone"`
	Channel         string       `json:"channel"`
}

type NotificationResponse struct {
	Message string `json:"message"`
	Phone   string `json:"phone,omitempty"`
	links.Set
	CustomerID        string   `json:"customer_id,omitempty"`
	CustomerCreated   bool     `json:"customer_created"`
	PackageID         string   `json:"package_id,omitempty"`
	PersistenceErrors []string `json:"persistence_errors"`
}

// notification is a validated request with its computed fields.
type notification struct {
	req        NotificationRequest
	code       string
	name       string
	modalities []string
	trackings  []string
	zone       string
	channel    string
}

// Notify renders a package notification and then records the customer and
// package. Recording is best-effort: its failures are reported in the
// response and never discard the rendered message.
func (s *Service) Notify(ctx context.Context, req NotificationRequest) (*NotificationResponse, error) {
	n, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	resp := &NotificationResponse{
		Message:           s.compose(n),
		PersistenceErrors: []string{},
	}

	phone := strings.TrimSpace(req.Phone)
	customer, created, err := s.ensureCustomer(ctx, n)
	if err != nil {
		log.Error().Err(err).Str("customer_code", n.code).Msg("failed to record customer for package notification")
		resp.PersistenceErrors = append(resp.PersistenceErrors, "customer: "+err.Error())
	} else {
		resp.CustomerID = customer.ID.String()
		resp.CustomerCreated = created
		if phone == "" && customer.Phone.Valid {
			phone = customer.Phone.String
		}

		pkg, err := s.repo.CreatePackage(ctx, models.CreatePackageParams{
			CustomerID:      customer.ID,
			Quantity:        int32(req.Quantity),
			Modalities:      n.modalities,
			TotalWeight:     req.Weight,
			Amount:          req.Amount,
			Trackings:       n.trackings,
			IncludeDelivery: req.IncludeDelivery,
			DeliveryZone:    sql.NullString{String: n.zone, Valid: req.IncludeDelivery},
			WaitForMore:     req.WaitForMore,
		})
		if err != nil {
			log.Error().Err(err).Str("customer_id", resp.CustomerID).Msg("failed to record package")
			resp.PersistenceErrors = append(resp.PersistenceErrors, "package: "+err.Error())
		} else {
			resp.PackageID = pkg.ID.String()
		}
	}

	resp.Phone = links.WithCountryCode(phone, s.settings.Region)
	resp.Set = links.For(resp.Phone, resp.Message)

	metrics.MessagesGeneratedTotal.WithLabelValues(metrics.FlowNotification).Inc()
	queue.Publish(ctx, s.publisher, queue.GeneratedMessageEvent{
		Channel:     n.channel,
		CustomerID:  resp.CustomerID,
		Body:        resp.Message,
		GeneratedAt: s.settings.Now().UTC(),
	})

	log.Info().
		Str("customer_code", n.code).
		Int("quantity", req.Quantity).
		Int("persistence_errors", len(resp.PersistenceErrors)).
		Msg("package notification generated")

	return resp, nil
}

func (s *Service) prepare(req NotificationRequest) (*notification, error) {
	if err := handlers.Validate(req); err != nil {
		return nil, err
	}

	n := &notification{
		req:       req,
		code:      strings.TrimSpace(req.CustomerCode),
		name:      strings.TrimSpace(req.Name),
		trackings: TrackingLines(req.Trackings),
		channel:   req.Channel,
	}
	if len(n.trackings) == 0 {
		return nil, &handlers.ValidationError{
			Fields:   []string{"trackings"},
			Messages: []string{"trackings must contain at least one tracking number"},
		}
	}

	for _, m := range req.Modalities {
		canonical, ok := CanonicalModality(m)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownModality, m)
		}
		n.modalities = append(n.modalities, canonical)
	}

	switch n.channel {
	case "":
		n.channel = "whatsapp"
	case "whatsapp", "telegram":
	default:
		return nil, ErrInvalidChannel
	}

	if req.IncludeDelivery {
		n.zone = strings.ToUpper(strings.TrimSpace(req.DeliveryZone))
		if n.zone == "" {
			n.zone = DefaultZone
		}
	}
	return n, nil
}

func (s *Service) compose(n *notification) string {
	bindings := render.Bindings{
		"nombre":                 render.Scalar(n.name),
		"cantidad":               render.Scalar(PackageCount(n.req.Quantity)),
		"modalidad":              render.Scalar(JoinModalities(n.modalities)),
		render.TrackingsVariable: render.List(n.trackings...),
		"peso":                   render.Scalar(formatNumber(n.req.Weight)),
		"monto":                  render.Scalar(formatNumber(n.req.Amount)),
		"link_pago":              render.Scalar(s.settings.PaymentsURL),
		"zona":                   render.Scalar(n.zone),
		"precio_domicilio":       render.Scalar(DeliveryPrice(n.zone)),
	}
	return render.Render(notificationBody(n.req.IncludeDelivery, n.req.WaitForMore), bindings)
}

// ensureCustomer returns the customer with the notification's code, creating
// it when no customer has that code yet.
func (s *Service) ensureCustomer(ctx context.Context, n *notification) (customersModels.Customer, bool, error) {
	customer, err := s.customers.GetByCode(ctx, n.code)
	if err == nil {
		return customer, false, nil
	}
	if !errors.Is(err, customers.ErrCustomerNotFound) {
		return customersModels.Customer{}, false, err
	}

	req := customers.CreateCustomerRequest{CustomerCode: n.code, Name: n.name}
	if phone := strings.TrimSpace(n.req.Phone); phone != "" {
		req.Phone = &phone
	}
	customer, err = s.customers.Create(ctx, req)
	if err != nil {
		return customersModels.Customer{}, false, err
	}
	return customer, true, nil
}

// Lookup returns the stored customer used to prefill the notification form.
func (s *Service) Lookup(ctx context.Context, code string) (customersModels.Customer, error) {
	return s.customers.GetByCode(ctx, code)
}

// History lists the packages recorded for a customer code, newest first.
func (s *Service) History(ctx context.Context, code string) ([]models.Package, error) {
	customer, err := s.customers.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	pkgs, err := s.repo.ListPackagesByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	if pkgs == nil {
		pkgs = []models.Package{}
	}
	return pkgs, nil
}

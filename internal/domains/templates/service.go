package templates

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keyboxhn/keybox/internal/cache"
	"github.com/keyboxhn/keybox/internal/domains/customers"
	customersModels "github.com/keyboxhn/keybox/internal/domains/customers/models"
	"github.com/keyboxhn/keybox/internal/domains/templates/models"
	"github.com/keyboxhn/keybox/internal/handlers"
	"github.com/keyboxhn/keybox/internal/links"
	"github.com/keyboxhn/keybox/internal/metrics"
	"github.com/keyboxhn/keybox/internal/queue"
	"github.com/keyboxhn/keybox/internal/render"
)

var ErrTemplateNotFound = errors.New("template not found")

const DefaultChannel = "whatsapp"

// CustomerFinder looks customers up by their KeyBox code.
type CustomerFinder interface {
	GetByCode(ctx context.Context, code string) (customersModels.Customer, error)
}

// Settings carries the values the generator binds to system variables.
type Settings struct {
	Region      string
	Location    *time.Location
	PaymentsURL string
	Now         func() time.Time
}

type Service struct {
	repo      Repository
	customers CustomerFinder
	list      *cache.Collection[models.Template]
	publisher queue.Publisher
	settings  Settings
}

func NewService(repo Repository, customers CustomerFinder, list *cache.Collection[models.Template], publisher queue.Publisher, settings Settings) *Service {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}
	return &Service{
		repo:      repo,
		customers: customers,
		list:      list,
		publisher: publisher,
		settings:  settings,
	}
}

type TemplateRequest struct {
	Title string `json:"title" validate:"notblank,max=200"`
	Body  string `json:"body" validate:"notblank"`
}

type TemplateResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	VariablesUsed []string  `json:"variables_used"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toTemplateResponse(t models.Template) *TemplateResponse {
	variables := t.VariablesUsed
	if variables == nil {
		variables = []string{}
	}
	return &TemplateResponse{
		ID:            t.ID.String(),
		Title:         t.Title,
		Body:          t.Body,
		VariablesUsed: variables,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// List returns every template, newest first.
func (s *Service) List(ctx context.Context) ([]*TemplateResponse, error) {
	all, ok := s.list.Get(ctx)
	if !ok {
		var err error
		all, err = s.repo.ListTemplates(ctx)
		if err != nil {
			return nil, err
		}
		if all == nil {
			all = []models.Template{}
		}
		s.list.Set(ctx, all)
	}

	out := make([]*TemplateResponse, len(all))
	for i, t := range all {
		out[i] = toTemplateResponse(t)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*TemplateResponse, error) {
	t, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return toTemplateResponse(t), nil
}

// Create stores a template. The variables it uses are always derived from
// the body.
func (s *Service) Create(ctx context.Context, req TemplateRequest) (*TemplateResponse, error) {
	if err := handlers.Validate(req); err != nil {
		return nil, err
	}

	t, err := s.repo.CreateTemplate(ctx, models.CreateTemplateParams{
		Title:         strings.TrimSpace(req.Title),
		Body:          req.Body,
		VariablesUsed: render.Extract(req.Body),
	})
	if err != nil {
		return nil, err
	}

	s.list.Invalidate(ctx)
	return toTemplateResponse(t), nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req TemplateRequest) (*TemplateResponse, error) {
	if err := handlers.Validate(req); err != nil {
		return nil, err
	}

	t, err := s.repo.UpdateTemplate(ctx, models.UpdateTemplateParams{
		ID:            id,
		Title:         strings.TrimSpace(req.Title),
		Body:          req.Body,
		VariablesUsed: render.Extract(req.Body),
	})
	if err != nil {
		return nil, notFound(err)
	}

	s.list.Invalidate(ctx)
	return toTemplateResponse(t), nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.repo.DeleteTemplate(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTemplateNotFound
	}

	s.list.Invalidate(ctx)
	return nil
}

type GenerateRequest struct {
	Variables    render.Bindings `json:"variables"`
	Phone        string          `json:"phone"`
	CustomerCode string          `json:"customer_code"`
	Channel      string          `json:"channel" validate:"omitempty,oneof=whatsapp telegram"`
}

type AdHocGenerateRequest struct {
	Body string `json:"body" validate:"notblank"`
	GenerateRequest
}

type GenerateResponse struct {
	Message      string   `json:"message"`
	UsedTemplate string   `json:"used_template"`
	TemplateID   string   `json:"template_id,omitempty"`
	Unresolved   []string `json:"unresolved"`
	Phone        string   `json:"phone,omitempty"`
	links.Set
	Customer *customers.CustomerResponse `json:"customer,omitempty"`
}

// Generate renders a stored template.
func (s *Service) Generate(ctx context.Context, id uuid.UUID, req GenerateRequest) (*GenerateResponse, error) {
	if err := handlers.Validate(req); err != nil {
		return nil, err
	}

	t, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	return s.generate(ctx, t.ID.String(), t.Body, req)
}

// GenerateAdHoc renders a body that has not been saved as a template.
func (s *Service) GenerateAdHoc(ctx context.Context, req AdHocGenerateRequest) (*GenerateResponse, error) {
	if err := handlers.Validate(req); err != nil {
		return nil, err
	}
	return s.generate(ctx, "", req.Body, req.GenerateRequest)
}

func (s *Service) generate(ctx context.Context, templateID, body string, req GenerateRequest) (*GenerateResponse, error) {
	bindings := make(render.Bindings, len(req.Variables)+5)
	for name, v := range req.Variables {
		bindings[name] = v
	}

	phone := strings.TrimSpace(req.Phone)
	resp := &GenerateResponse{UsedTemplate: body, TemplateID: templateID}

	var customerID string
	if code := strings.TrimSpace(req.CustomerCode); code != "" {
		customer, err := s.customers.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		bindDefault(bindings, VariableName, customer.Name)
		bindDefault(bindings, VariableCustomerCode, customer.CustomerCode)
		if customer.Phone.Valid {
			bindDefault(bindings, VariablePhone, customer.Phone.String)
			if phone == "" {
				phone = customer.Phone.String
			}
		}
		customerID = customer.ID.String()
		summary := customers.ToCustomerResponse(customer)
		resp.Customer = &summary
	}

	s.bindSystemVariables(bindings)

	resp.Message = render.Render(body, bindings)
	resp.Unresolved = render.Unresolved(body, bindings)
	resp.Phone = links.WithCountryCode(phone, s.settings.Region)
	resp.Set = links.For(resp.Phone, resp.Message)

	channel := req.Channel
	if channel == "" {
		channel = DefaultChannel
	}

	metrics.MessagesGeneratedTotal.WithLabelValues(metrics.FlowTemplate).Inc()
	queue.Publish(ctx, s.publisher, queue.GeneratedMessageEvent{
		Channel:     channel,
		CustomerID:  customerID,
		TemplateID:  templateID,
		Body:        resp.Message,
		GeneratedAt: s.settings.Now().UTC(),
	})

	return resp, nil
}

func (s *Service) bindSystemVariables(bindings render.Bindings) {
	bindDefault(bindings, VariableDate, s.settings.Now().In(s.settings.Location).Format("2006-01-02"))
	bindDefault(bindings, VariablePaymentLink, s.settings.PaymentsURL)
}

// bindDefault sets name unless the caller already bound a non-empty value.
func bindDefault(bindings render.Bindings, name, value string) {
	if value == "" {
		return
	}
	if v, ok := bindings[name]; ok && !v.IsEmpty() {
		return
	}
	bindings[name] = render.Scalar(value)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTemplateNotFound
	}
	return err
}

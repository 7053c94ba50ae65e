package messages

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/keyboxhn/keybox/internal/domains/messages/models"
	"github.com/keyboxhn/keybox/internal/queue"
)

// mockRepository keeps history in memory, newest first.
type mockRepository struct {
	messages     []models.GeneratedMessage
	createErrs   []error
	deleteBefore time.Time
}

func (m *mockRepository) CreateGeneratedMessage(ctx context.Context, params models.CreateGeneratedMessageParams) (models.GeneratedMessage, error) {
	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]
		if err != nil {
			return models.GeneratedMessage{}, err
		}
	}
	msg := models.GeneratedMessage{
		ID:         uuid.New(),
		Channel:    params.Channel,
		CustomerID: params.CustomerID,
		TemplateID: params.TemplateID,
		Body:       params.Body,
		CreatedAt:  params.CreatedAt,
	}
	m.messages = append([]models.GeneratedMessage{msg}, m.messages...)
	return msg, nil
}

func (m *mockRepository) filtered(channel sql.NullString) []models.GeneratedMessage {
	var out []models.GeneratedMessage
	for _, msg := range m.messages {
		if !channel.Valid || msg.Channel == channel.String {
			out = append(out, msg)
		}
	}
	return out
}

func (m *mockRepository) ListGeneratedMessages(ctx context.Context, params models.ListGeneratedMessagesParams) ([]models.GeneratedMessage, error) {
	all := m.filtered(params.Channel)
	start := min(int(params.Offset), len(all))
	end := min(start+int(params.Limit), len(all))
	return all[start:end], nil
}

func (m *mockRepository) CountGeneratedMessages(ctx context.Context, channel sql.NullString) (int64, error) {
	return int64(len(m.filtered(channel))), nil
}

func (m *mockRepository) DeleteGeneratedMessagesBefore(ctx context.Context, before time.Time) (int64, error) {
	m.deleteBefore = before
	var kept []models.GeneratedMessage
	var n int64
	for _, msg := range m.messages {
		if msg.CreatedAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, msg)
	}
	m.messages = kept
	return n, nil
}

var _ Repository = (*mockRepository)(nil)

func TestService_Record(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo)

	customerID := uuid.New()
	generatedAt := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	msg, err := svc.Record(context.Background(), queue.GeneratedMessageEvent{
		Channel:     "whatsapp",
		CustomerID:  customerID.String(),
		Body:        "Hola Ana",
		GeneratedAt: generatedAt,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !msg.CustomerID.Valid || msg.CustomerID.UUID != customerID {
		t.Errorf("Unexpected customer id %+v", msg.CustomerID)
	}
	if msg.TemplateID.Valid {
		t.Error("Expected no template id")
	}
	if !msg.CreatedAt.Equal(generatedAt) {
		t.Errorf("CreatedAt = %v, want %v", msg.CreatedAt, generatedAt)
	}
}

func TestService_RecordInvalidEvents(t *testing.T) {
	svc := NewService(&mockRepository{})

	events := map[string]queue.GeneratedMessageEvent{
		"missing channel": {Body: "x"},
		"bad customer":    {Channel: "whatsapp", CustomerID: "KB001"},
		"bad template":    {Channel: "telegram", TemplateID: "nope"},
	}
	for name, event := range events {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Record(context.Background(), event); !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("Expected ErrInvalidEvent, got %v", err)
			}
		})
	}
}

func TestService_RecordDropsDanglingReferences(t *testing.T) {
	repo := &mockRepository{createErrs: []error{&pgconn.PgError{Code: "23503"}}}
	svc := NewService(repo)

	msg, err := svc.Record(context.Background(), queue.GeneratedMessageEvent{
		Channel:    "whatsapp",
		TemplateID: uuid.NewString(),
		Body:       "Hola",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if msg.TemplateID.Valid || msg.CustomerID.Valid {
		t.Errorf("Expected references to be dropped, got %+v", msg)
	}
}

func TestService_RecordPropagatesOtherErrors(t *testing.T) {
	repo := &mockRepository{createErrs: []error{errors.New("connection refused")}}
	svc := NewService(repo)

	if _, err := svc.Record(context.Background(), queue.GeneratedMessageEvent{Channel: "whatsapp"}); err == nil {
		t.Fatal("Expected error")
	}
	if len(repo.messages) != 0 {
		t.Error("Expected nothing to be stored")
	}
}

func TestService_Prune(t *testing.T) {
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	repo := &mockRepository{messages: []models.GeneratedMessage{
		{ID: uuid.New(), Channel: "whatsapp", CreatedAt: now.Add(-time.Hour)},
		{ID: uuid.New(), Channel: "whatsapp", CreatedAt: now.Add(-48 * time.Hour)},
	}}
	svc := NewService(repo)

	n, err := svc.Prune(context.Background(), 0, now)
	if err != nil || n != 0 || len(repo.messages) != 2 {
		t.Fatalf("Zero retention must keep everything, got n=%d err=%v", n, err)
	}

	n, err = svc.Prune(context.Background(), 24*time.Hour, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if n != 1 || len(repo.messages) != 1 {
		t.Errorf("Expected one pruned message, got %d (%d left)", n, len(repo.messages))
	}
	if !repo.deleteBefore.Equal(now.Add(-24 * time.Hour)) {
		t.Errorf("Unexpected cutoff %v", repo.deleteBefore)
	}
}

func seed(repo *mockRepository, n int, channel string) {
	for i := 0; i < n; i++ {
		repo.messages = append(repo.messages, models.GeneratedMessage{
			ID:        uuid.New(),
			Channel:   channel,
			Body:      "Hola",
			CreatedAt: time.Now(),
		})
	}
}

func TestService_ListPagination(t *testing.T) {
	repo := &mockRepository{}
	seed(repo, 25, "whatsapp")
	seed(repo, 3, "telegram")
	svc := NewService(repo)

	tests := []struct {
		name      string
		params    ListParams
		wantLen   int
		wantTotal int64
		wantPages int32
		wantSize  int32
	}{
		{"defaults", ListParams{}, 20, 28, 2, 20},
		{"second page", ListParams{Page: 2, PageSize: 20}, 8, 28, 2, 20},
		{"channel filter", ListParams{Channel: "telegram"}, 3, 3, 1, 20},
		{"page size capped", ListParams{PageSize: 500}, 28, 28, 1, 100},
		{"past the end", ListParams{Page: 5, PageSize: 10}, 0, 28, 3, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.List(context.Background(), tt.params)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if len(resp.Data) != tt.wantLen {
				t.Errorf("len(Data) = %d, want %d", len(resp.Data), tt.wantLen)
			}
			if resp.Pagination.TotalCount != tt.wantTotal {
				t.Errorf("TotalCount = %d, want %d", resp.Pagination.TotalCount, tt.wantTotal)
			}
			if resp.Pagination.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", resp.Pagination.TotalPages, tt.wantPages)
			}
			if resp.Pagination.PageSize != tt.wantSize {
				t.Errorf("PageSize = %d, want %d", resp.Pagination.PageSize, tt.wantSize)
			}
		})
	}
}

func TestHandler_ListMessages(t *testing.T) {
	repo := &mockRepository{}
	seed(repo, 3, "whatsapp")
	h := &Handler{svc: NewService(repo)}

	r := chi.NewRouter()
	r.Route("/messages", h.RegisterMessageRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/messages/?page=1&page_size=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp ListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Data) != 2 || resp.Pagination.TotalPages != 2 {
		t.Errorf("Unexpected response %+v", resp)
	}
	if resp.Data[0].CustomerID != nil {
		t.Error("Expected null customer_id")
	}
}

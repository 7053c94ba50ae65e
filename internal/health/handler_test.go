package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeQueue struct {
	err error
}

func (f fakeQueue) Ping() error { return f.err }

func TestHealth_UnhealthyWithoutDatabase(t *testing.T) {
	h := NewHandler(nil, fakeQueue{}, nil)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("Expected unhealthy, got %s", resp.Status)
	}
	if resp.Checks["database"].Status != "unhealthy" {
		t.Errorf("Expected database to be unhealthy, got %+v", resp.Checks["database"])
	}
	if resp.Checks["queue"].Status != "healthy" {
		t.Errorf("Expected queue to be healthy, got %+v", resp.Checks["queue"])
	}
	if resp.Checks["redis"].Status != "disabled" {
		t.Errorf("Expected redis to be disabled, got %+v", resp.Checks["redis"])
	}
}

func TestHealth_QueueFailure(t *testing.T) {
	h := NewHandler(nil, fakeQueue{err: errors.New("channel closed")}, nil)

	check := h.checkQueue()
	if check.Status != "unhealthy" {
		t.Errorf("Expected unhealthy queue, got %+v", check)
	}

	h = NewHandler(nil, nil, nil)
	if check := h.checkQueue(); check.Status != "unhealthy" {
		t.Errorf("Expected unhealthy nil queue, got %+v", check)
	}
}

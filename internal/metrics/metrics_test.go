package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/templates/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(HttpErrorsTotal.WithLabelValues("/templates/{id}", "404", "GET"))

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/templates/"+id, nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d", rec.Code)
		}
	}

	after := testutil.ToFloat64(HttpErrorsTotal.WithLabelValues("/templates/{id}", "404", "GET"))
	if after-before != 3 {
		t.Errorf("expected 3 errors recorded under the route pattern, got %v", after-before)
	}
}

func TestMiddleware_DefaultStatusIsOK(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {})

	before := testutil.ToFloat64(HttpRequestsTotal.WithLabelValues("/ok", "200", "GET"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	after := testutil.ToFloat64(HttpRequestsTotal.WithLabelValues("/ok", "200", "GET"))

	if after-before != 1 {
		t.Errorf("expected one request recorded, got %v", after-before)
	}
}

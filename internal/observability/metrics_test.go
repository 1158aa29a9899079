package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestMetricsHandlerExposesRuntimeCollectors(t *testing.T) {
	body := scrape(t, NewMetrics())

	assert.Contains(t, body, "go_goroutines")
}

func TestMetricsMiddlewareLabelsByRoutePattern(t *testing.T) {
	m := NewMetrics()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/dashboard", func(w http.ResponseWriter, r *http.Request) {})
	r.Get("/dashboard/export.csv", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	r.Get("/static/*", func(w http.ResponseWriter, r *http.Request) {})

	for _, path := range []string{"/dashboard?range=daily", "/dashboard", "/dashboard/export.csv", "/static/css/app.css", "/static/img/favicon.svg"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	body := scrape(t, m)
	for _, want := range []string{
		`shelf_http_requests_total{code="200",route="/dashboard"} 2`,
		`shelf_http_requests_total{code="429",route="/dashboard/export.csv"} 1`,
		`shelf_http_requests_total{code="200",route="/static/*"} 2`,
		`shelf_http_request_duration_seconds_count{route="/dashboard"} 2`,
	} {
		assert.Contains(t, body, want)
	}
	assert.NotContains(t, body, `route="/static/css/app.css"`, "raw paths must not become labels")
}

func TestMetricsMiddlewareWithoutRouter(t *testing.T) {
	m := NewMetrics()
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/anything", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Contains(t, scrape(t, m), `shelf_http_requests_total{code="418",route="unknown"} 1`)
}

func TestMetricsRegistererSharesRegistry(t *testing.T) {
	m := NewMetrics()
	warmed := prometheus.NewCounter(prometheus.CounterOpts{Name: "shelf_test_warmed_total", Help: "test"})
	require.NoError(t, m.Registerer().Register(warmed))
	warmed.Add(3)

	assert.Contains(t, scrape(t, m), "shelf_test_warmed_total 3")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	called := false
	m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
	assert.Equal(t, prometheus.DefaultRegisterer, m.Registerer())
}

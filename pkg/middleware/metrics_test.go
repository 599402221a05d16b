package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMetricsCountsByRoutePattern(t *testing.T) {
	before := testutil.CollectAndCount(httpRequestsTotal)

	r := chi.NewRouter()
	r.Use(PrometheusMetrics("metrics-test"))
	r.Get("/tools", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for range 3 {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tools", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	count := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("metrics-test", "GET", "/tools", "200"))
	assert.Equal(t, float64(3), count)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(httpRequestsTotal), before)
}

func TestPrometheusMetricsRecordsErrorStatus(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics("metrics-test-err"))
	r.Post("/tool_call", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tool_call", nil))

	count := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("metrics-test-err", "POST", "/tool_call", "400"))
	assert.Equal(t, float64(1), count)
}

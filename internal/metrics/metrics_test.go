package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New()
	m.Search("hit")
	m.Search("hit")
	m.OfferCollected("scraping")
	m.AlertChecked("notified")
	m.ObserveRequest(http.MethodGet, "/products/search", 200, 15*time.Millisecond)
	m.ObserveCycle(time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.searches.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.offersCollected.WithLabelValues("scraping")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/products/search", "200")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alerts_checked_total")
	assert.Contains(t, rec.Body.String(), "monitor_cycle_duration_seconds")
}

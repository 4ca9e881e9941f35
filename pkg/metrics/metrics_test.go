package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()
	m.HRRegistered("created")
	m.HRRegistered("created")
	m.HRRegistered("existing")
	m.ObserveMatching("similarity", 200, 30*time.Millisecond)
	m.ObserveMatching("similarity", 0, time.Second)
	m.ObserveHTTP(http.MethodGet, "/job/:jobId", 200, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HRRegistrations.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HRRegistrations.WithLabelValues("existing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MatchingRequests.WithLabelValues("similarity", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/job/:jobId", "200")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.JobCreated()
		m.JobViewed()
		m.Upload("ok")
		m.ObserveHTTP("GET", "", 404, 0)
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.JobCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "trujobs_jobs_created_total 1")
}

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestCounters(t *testing.T) {
	m := New()
	m.AuthAttempt("ok")
	m.AuthAttempt("invalid")
	m.AuthAttempt("invalid")
	m.SessionCheck("no_cookie")
	m.ObserveRequest(http.MethodGet, "/api/articles", 200, 10*time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `afr_auth_attempts_total{result="ok"} 1`)
	assert.Contains(t, body, `afr_auth_attempts_total{result="invalid"} 2`)
	assert.Contains(t, body, `afr_session_checks_total{result="no_cookie"} 1`)
	assert.Contains(t, body, `afr_http_requests_total{method="GET",route="/api/articles",status="200"} 1`)
	assert.Contains(t, body, `afr_http_request_duration_seconds_count{method="GET",route="/api/articles"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AuthAttempt("ok")
		m.SessionCheck("authenticated")
		m.ObserveRequest("GET", "/", 200, time.Millisecond)
	})
}

func TestSeparateRegistries(t *testing.T) {
	a, b := New(), New()
	a.AuthAttempt("ok")
	assert.NotContains(t, scrape(t, b), `afr_auth_attempts_total{result="ok"}`)
}

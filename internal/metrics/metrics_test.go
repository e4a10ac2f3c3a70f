package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/rostercheck/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCompleted(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RunCompleted(120*time.Millisecond, core.DiscrepancySummary{
		WrongCourse:    2,
		NoCourse:       1,
		WithoutDetails: 3,
		Total:          6,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsCompleted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Discrepancies.WithLabelValues("wrong_course")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Discrepancies.WithLabelValues("no_course")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Discrepancies.WithLabelValues("unknown_course")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Discrepancies.WithLabelValues("without_details")))
}

func TestRunFailed(t *testing.T) {
	m := New(nil)

	m.RunFailed(core.KindMissingColumn)
	m.RunFailed(core.KindMissingColumn)
	m.RunFailed(core.FailureBusy)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RunsFailed.WithLabelValues(core.KindMissingColumn)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsFailed.WithLabelValues(core.FailureBusy)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RunCompleted(time.Second, core.DiscrepancySummary{Total: 1})
	m.RunFailed("format")
	m.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
}

func TestHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRequest(http.MethodPost, "/verify", http.StatusOK, 50*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `rostercheck_http_requests_total{method="POST",route="/verify",status="200"} 1`), body)
	assert.True(t, strings.Contains(body, `route="unmatched"`), body)
}

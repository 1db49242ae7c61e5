package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPromRecorderWithRegistry(reg)
	require.NoError(t, err)

	rec.RecordEvent("submit")
	rec.RecordEvent("submit")
	rec.RecordEvent("toggle_battery")
	rec.RecordSubmission(true)
	rec.RecordSubmission(false)
	rec.RecordSubmission(false)
	rec.RecordSinkError()
	rec.SetActiveSessions(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.events.WithLabelValues("submit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.events.WithLabelValues("toggle_battery")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.submissions.WithLabelValues("accepted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.submissions.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.sinkErrors))
	assert.Equal(t, 3.0, testutil.ToFloat64(rec.sessions))
}

func TestPromRecorder_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromRecorderWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromRecorderWithRegistry(reg)
	require.NoError(t, err)

	first.RecordSinkError()
	second.RecordSinkError()
	assert.Equal(t, 2.0, testutil.ToFloat64(first.sinkErrors))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPromRecorderWithRegistry(reg)
	require.NoError(t, err)
	rec.RecordSubmission(true)

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rr.Body)
	assert.Contains(t, string(body), `battery_form_submissions_total{outcome="accepted"} 1`)
}

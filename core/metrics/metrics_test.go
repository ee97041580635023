package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()

	r.ObserveUpdate("text", nil, 10*time.Millisecond)
	r.ObserveUpdate("text", errors.New("boom"), time.Millisecond)
	r.Transition("area_input", "category_field")
	r.Rejected("area_input")
	r.Rejected("area_input")
	r.Submitted("draft", true)
	r.Submitted("draft", false)
	r.HandoffFailed("attachment")
	r.CounterFallback()
	r.StoreFailed()
	r.SendFailed("send", "timeout")

	assert.Equal(t, 1.0, testutil.ToFloat64(r.updates.WithLabelValues("text", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.updates.WithLabelValues("text", "fail")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.rejections.WithLabelValues("area_input")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.submissions.WithLabelValues("draft", "undelivered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.counterFallback))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.storeErrors))
}

func TestRecordersDoNotShareRegistry(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	a.CounterFallback()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.counterFallback))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.counterFallback))
}

func TestHandlerExposesIntakeMetrics(t *testing.T) {
	r := NewRecorder()
	r.Submitted("loads", true)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `intakebot_intake_submissions_total{category="loads",status="delivered"} 1`), body)
}

package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.CompletionRecorded("first", 5)
	m.CompletionRejected("not_assigned")
	m.CompletionCancelled()
	m.RewardRequested()
	m.SetHouseHealth(50)
	m.NotificationSent("push", nil)
	assert.Nil(t, m.Registry())
}

func TestCounters(t *testing.T) {
	m := New()
	m.CompletionRecorded("shared", 3)
	m.CompletionRecorded("shared", 3)
	m.CompletionRejected("already_done_today")
	m.NotificationSent("telegram", errors.New("boom"))
	m.SetHouseHealth(72)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.completions.WithLabelValues("shared")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.coinsAwarded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("already_done_today")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("telegram", "error")))
	assert.Equal(t, 72.0, testutil.ToFloat64(m.houseHealth))
}

func TestHandler(t *testing.T) {
	m := New()
	m.CompletionCancelled()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "choreboard_completions_cancelled_total 1"))
}

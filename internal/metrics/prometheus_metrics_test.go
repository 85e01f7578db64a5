package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"sitetrack/internal/engine/tracking"
)

func TestTrackingMetrics_Record(t *testing.T) {
	m := NewTrackingMetrics("test")

	m.Record(context.Background(), tracking.Outcome{Result: tracking.ResultSent, Duration: 20 * time.Millisecond})
	m.Record(context.Background(), tracking.Outcome{Result: tracking.ResultSent, Duration: 30 * time.Millisecond})
	m.Record(context.Background(), tracking.Outcome{Result: tracking.ResultNoCookie})
	m.RecordDrop()
	m.SetInFlight(3)

	if got := testutil.ToFloat64(m.submissionsTotal.WithLabelValues("sent")); got != 2 {
		t.Errorf("Expected 2 sent, got %v", got)
	}
	if got := testutil.ToFloat64(m.submissionsTotal.WithLabelValues("no_cookie")); got != 1 {
		t.Errorf("Expected 1 no_cookie, got %v", got)
	}
	if got := testutil.ToFloat64(m.droppedTotal); got != 1 {
		t.Errorf("Expected 1 drop, got %v", got)
	}
	if got := testutil.ToFloat64(m.inFlight); got != 3 {
		t.Errorf("Expected in-flight 3, got %v", got)
	}
}

func TestTrackingMetrics_Handler(t *testing.T) {
	m := NewTrackingMetrics("test")
	m.Record(context.Background(), tracking.Outcome{Result: tracking.ResultTransportFailure, Duration: time.Millisecond})

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), `test_tracking_submissions_total{result="transport_failure"} 1`) {
		t.Errorf("Metrics output missing counter:\n%s", body)
	}
}

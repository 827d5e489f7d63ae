package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStreamLifecycle(t *testing.T) {
	before := testutil.ToFloat64(streamSessions)

	StreamStarted("s1")
	if got := testutil.ToFloat64(streamActive); got != 1 {
		t.Errorf("active = %v, want 1", got)
	}
	if got := testutil.ToFloat64(streamSessions) - before; got != 1 {
		t.Errorf("sessions delta = %v, want 1", got)
	}

	ObserveFrame()
	ObserveFrame()
	ObserveBytes(1024)
	SetStreamFPS(29.5)

	m, ok := CurrentStream()
	if !ok {
		t.Fatal("CurrentStream reported idle")
	}
	if m.SessionID != "s1" || m.Frames != 2 || m.Bytes != 1024 || m.FPS != 29.5 {
		t.Errorf("current = %+v", m)
	}

	// A stale stop must not clear the newer session.
	StreamStarted("s2")
	StreamStopped("s1")
	if m, ok := CurrentStream(); !ok || m.SessionID != "s2" {
		t.Errorf("after stale stop current = %+v, %v", m, ok)
	}

	StreamStopped("s2")
	if _, ok := CurrentStream(); ok {
		t.Error("CurrentStream active after stop")
	}
	if got := testutil.ToFloat64(streamActive); got != 0 {
		t.Errorf("active = %v, want 0", got)
	}
}

func TestRecordControlSet(t *testing.T) {
	before := testutil.ToFloat64(controlSets.WithLabelValues("zoom", "success"))
	RecordControlSet("zoom", true)
	RecordControlSet("zoom", false)
	if got := testutil.ToFloat64(controlSets.WithLabelValues("zoom", "success")) - before; got != 1 {
		t.Errorf("success delta = %v, want 1", got)
	}
}

func TestMetricNames(t *testing.T) {
	const want = `
# HELP camctl_stream_start_failures_total Stream sessions that failed to launch
# TYPE camctl_stream_start_failures_total counter
camctl_stream_start_failures_total 1
`
	StreamStartFailed()
	if err := testutil.CollectAndCompare(streamStartFailures, strings.NewReader(want)); err != nil {
		t.Error(err)
	}
}

// Package metrics provides Prometheus metrics for the stream relay and
// camera controls.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	streamActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "camctl",
		Subsystem: "stream",
		Name:      "active",
		Help:      "1 while a stream session is running",
	})

	streamSessions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "camctl",
		Subsystem: "stream",
		Name:      "sessions_total",
		Help:      "Stream sessions started",
	})

	streamStartFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "camctl",
		Subsystem: "stream",
		Name:      "start_failures_total",
		Help:      "Stream sessions that failed to launch",
	})

	streamFrames = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "camctl",
		Subsystem: "stream",
		Name:      "frames_total",
		Help:      "JPEG frames seen on the relay",
	})

	streamBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "camctl",
		Subsystem: "stream",
		Name:      "bytes_total",
		Help:      "Bytes relayed to clients",
	})

	streamFPS = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "camctl",
		Subsystem: "stream",
		Name:      "fps",
		Help:      "Frames relayed per second over the last export interval",
	})

	// Local copy of the current session's counters for the SSE exporter.
	current   StreamMetrics
	currentMu sync.RWMutex
)

// StreamMetrics holds the counters of the active session.
type StreamMetrics struct {
	SessionID string
	Frames    uint64
	Bytes     uint64
	FPS       float64
}

// StreamStarted marks sessionID as the active session.
func StreamStarted(sessionID string) {
	streamActive.Set(1)
	streamSessions.Inc()

	currentMu.Lock()
	current = StreamMetrics{SessionID: sessionID}
	currentMu.Unlock()
}

// StreamStopped clears the active session if it is still sessionID.
func StreamStopped(sessionID string) {
	currentMu.Lock()
	defer currentMu.Unlock()
	if current.SessionID != sessionID {
		return
	}
	current = StreamMetrics{}
	streamActive.Set(0)
	streamFPS.Set(0)
}

// StreamStartFailed counts a launch failure.
func StreamStartFailed() {
	streamStartFailures.Inc()
}

// ObserveFrame counts one extracted frame.
func ObserveFrame() {
	streamFrames.Inc()
	currentMu.Lock()
	current.Frames++
	currentMu.Unlock()
}

// ObserveBytes counts n bytes written to a client.
func ObserveBytes(n int) {
	streamBytes.Add(float64(n))
	currentMu.Lock()
	current.Bytes += uint64(n)
	currentMu.Unlock()
}

// SetStreamFPS records the measured relay frame rate.
func SetStreamFPS(fps float64) {
	streamFPS.Set(fps)
	currentMu.Lock()
	if current.SessionID != "" {
		current.FPS = fps
	}
	currentMu.Unlock()
}

// CurrentStream returns the active session's counters, false when idle.
func CurrentStream() (StreamMetrics, bool) {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current, current.SessionID != ""
}

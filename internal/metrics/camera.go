package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	controlSets = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camctl",
		Subsystem: "camera",
		Name:      "control_sets_total",
		Help:      "Camera control writes by property and result",
	}, []string{"property", "result"})

	presetOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camctl",
		Subsystem: "presets",
		Name:      "operations_total",
		Help:      "Preset saves and loads by result",
	}, []string{"op", "result"})

	deviceEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camctl",
		Subsystem: "camera",
		Name:      "hotplug_events_total",
		Help:      "Video device add/remove events",
	}, []string{"action"})
)

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// RecordControlSet counts one control write.
func RecordControlSet(property string, ok bool) {
	controlSets.WithLabelValues(property, result(ok)).Inc()
}

// RecordPresetOp counts a preset "save" or "load".
func RecordPresetOp(op string, ok bool) {
	presetOps.WithLabelValues(op, result(ok)).Inc()
}

// RecordDeviceEvent counts a hotplug action.
func RecordDeviceEvent(action string) {
	deviceEvents.WithLabelValues(action).Inc()
}

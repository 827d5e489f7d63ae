package events

// Event type identifiers for kelindar/event.
const (
	TypeStreamStarted uint32 = iota + 1
	TypeStreamStopped
	TypeControlChanged
	TypePresetSaved
	TypePresetsReloaded
	TypeDeviceChanged
	TypeLogEntry
	TypeStreamMetrics
)

// Event is the constraint kelindar/event places on payloads.
type Event interface {
	Type() uint32
}

// StreamStartedEvent is published after the stream subprocess is running.
type StreamStartedEvent struct {
	SessionID string `json:"session_id" example:"4f1c2a9e-6b7d-4e8f-9a0b-1c2d3e4f5a6b" doc:"Stream session identifier"`
	Device    string `json:"device" example:"/dev/video0" doc:"Camera device"`
	Width     int    `json:"width" example:"1920" doc:"Frame width"`
	Height    int    `json:"height" example:"1080" doc:"Frame height"`
	FPS       int    `json:"fps" example:"60" doc:"Frame rate"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

func (e StreamStartedEvent) Type() uint32 { return TypeStreamStarted }

// StreamStoppedEvent is published once a session's subprocess is gone.
type StreamStoppedEvent struct {
	SessionID string `json:"session_id" doc:"Stream session identifier"`
	Reason    string `json:"reason" example:"stopped" doc:"stopped, superseded or exited"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

func (e StreamStoppedEvent) Type() uint32 { return TypeStreamStopped }

// ControlChangedEvent is published after a control value was applied.
type ControlChangedEvent struct {
	Property  string `json:"prop" example:"zoom" doc:"Control name"`
	Value     int    `json:"val" example:"150" doc:"Applied value"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

func (e ControlChangedEvent) Type() uint32 { return TypeControlChanged }

// PresetSavedEvent is published after a preset was written to disk.
type PresetSavedEvent struct {
	ID        string `json:"id" example:"A" doc:"Preset identifier"`
	Zoom      int    `json:"zoom" example:"150" doc:"Zoom"`
	Pan       int    `json:"pan" example:"0" doc:"Pan"`
	Tilt      int    `json:"tilt" example:"0" doc:"Tilt"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

func (e PresetSavedEvent) Type() uint32 { return TypePresetSaved }

// PresetsReloadedEvent is published when the presets file changed on disk.
type PresetsReloadedEvent struct {
	Count     int    `json:"count" example:"4" doc:"Number of presets now loaded"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

func (e PresetsReloadedEvent) Type() uint32 { return TypePresetsReloaded }

// DeviceChangedEvent is published on camera hotplug.
type DeviceChangedEvent struct {
	Action    string `json:"action" example:"add" doc:"Kernel action: add or remove"`
	Device    string `json:"device" example:"/dev/video0" doc:"Device node"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

func (e DeviceChangedEvent) Type() uint32 { return TypeDeviceChanged }

// LogEntryEvent carries one log record to SSE clients.
type LogEntryEvent struct {
	Timestamp string         `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Record time"`
	Level     string         `json:"level" example:"info" doc:"Log level"`
	Module    string         `json:"module" example:"stream" doc:"Emitting module"`
	Message   string         `json:"message" doc:"Log message"`
	Attrs     map[string]any `json:"attrs,omitempty" doc:"Structured attributes"`
}

func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }

// StreamMetricsEvent is published periodically while a stream is active.
type StreamMetricsEvent struct {
	SessionID string  `json:"session_id" doc:"Stream session identifier"`
	FPS       float64 `json:"fps" example:"59.8" doc:"Frames relayed per second over the last interval"`
	Frames    uint64  `json:"frames" example:"3600" doc:"Frames relayed in this session"`
	Bytes     uint64  `json:"bytes" example:"104857600" doc:"Bytes relayed in this session"`
	Timestamp string  `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

func (e StreamMetricsEvent) Type() uint32 { return TypeStreamMetrics }

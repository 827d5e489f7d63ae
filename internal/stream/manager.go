// Package stream owns the single live camera stream: one ffmpeg subprocess
// relaying the camera's MJPEG output as a multipart stream.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smazurov/camctl/internal/events"
	"github.com/smazurov/camctl/internal/ffmpeg"
	"github.com/smazurov/camctl/internal/logging"
	"github.com/smazurov/camctl/internal/metrics"
	"github.com/smazurov/camctl/internal/mjpeg"
	"github.com/smazurov/camctl/internal/process"
)

// ErrInvalidParams is returned by Start for an empty device or a
// non-positive size or frame rate.
var ErrInvalidParams = errors.New("invalid stream parameters")

// Reasons carried by StreamStoppedEvent.
const (
	ReasonStopped    = "stopped"
	ReasonSuperseded = "superseded"
	ReasonExited     = "exited"
)

// Session is one running relay.
type Session struct {
	ID        string
	Device    string
	Width     int
	Height    int
	FPS       int
	StartedAt time.Time

	proc       *process.Process
	finishOnce sync.Once
}

// Output is the multipart byte stream produced by ffmpeg.
func (s *Session) Output() io.Reader { return s.proc.Stdout() }

// Done is closed once the subprocess has exited.
func (s *Session) Done() <-chan struct{} { return s.proc.Done() }

// Status describes the stream slot.
type Status struct {
	Active    bool      `json:"active" example:"true" doc:"Whether a stream is running"`
	SessionID string    `json:"session_id,omitempty" doc:"Active session identifier"`
	Device    string    `json:"device,omitempty" example:"/dev/video0" doc:"Camera device"`
	Width     int       `json:"width,omitempty" example:"1920" doc:"Frame width"`
	Height    int       `json:"height,omitempty" example:"1080" doc:"Frame height"`
	FPS       int       `json:"fps,omitempty" example:"60" doc:"Frame rate"`
	StartedAt time.Time `json:"started_at,omitzero" doc:"Session start time"`
}

// Config configures a Manager.
type Config struct {
	// Binary is the ffmpeg executable.
	Binary string
	// Input is the capture backend passed to ffmpeg.
	Input ffmpeg.InputFormat
	// Cache receives every frame seen by Relay. Optional.
	Cache *mjpeg.FrameCache
	// Bus receives stream lifecycle events. Optional.
	Bus *events.Bus
}

// Manager holds at most one Session. Starting a new session terminates the
// previous one before the new subprocess is spawned.
type Manager struct {
	cfg          Config
	logger       logging.Logger
	ffmpegLogger logging.Logger

	startMu sync.Mutex

	mu     sync.Mutex
	active *Session
}

// NewManager creates an idle Manager.
func NewManager(cfg Config, logger logging.Logger) *Manager {
	if cfg.Binary == "" {
		cfg.Binary = "ffmpeg"
	}
	if cfg.Input == "" {
		cfg.Input = ffmpeg.InputV4L2
	}
	return &Manager{
		cfg:          cfg,
		logger:       logger,
		ffmpegLogger: logging.GetLogger("ffmpeg"),
	}
}

// Start launches a relay for device. Any active session is killed and
// reaped first. A launch failure leaves the slot empty.
//
// The old session leaves the slot before it is torn down, which can take
// the process's graceful and kill timeouts. Until the new process is
// installed, Status reports idle and Stop or StopActive find nothing to
// stop; the new session is not affected by them.
func (m *Manager) Start(ctx context.Context, device string, width, height, fps int) (*Session, error) {
	if device == "" || width <= 0 || height <= 0 || fps <= 0 {
		return nil, fmt.Errorf("%w: device=%q %dx%d@%d", ErrInvalidParams, device, width, height, fps)
	}

	m.startMu.Lock()
	defer m.startMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	old := m.active
	m.active = nil
	m.mu.Unlock()

	if old != nil {
		m.logger.Info("Replacing active stream", "old_session", old.ID)
		m.terminate(old, ReasonSuperseded)
	}

	id := uuid.NewString()
	args := ffmpeg.BuildArgs(ffmpeg.Params{
		Binary: m.cfg.Binary,
		Input:  m.cfg.Input,
		Device: device,
		Width:  width,
		Height: height,
		FPS:    fps,
	})
	proc := process.New(id, args, m.logger, process.WithLogParser(m.ffmpegLogger, ffmpeg.ParseLogLevel))
	if err := proc.Start(); err != nil {
		metrics.StreamStartFailed()
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	sess := &Session{
		ID:        id,
		Device:    device,
		Width:     width,
		Height:    height,
		FPS:       fps,
		StartedAt: time.Now(),
		proc:      proc,
	}

	m.mu.Lock()
	m.active = sess
	m.mu.Unlock()

	metrics.StreamStarted(id)
	m.cfg.Bus.Publish(events.StreamStartedEvent{
		SessionID: id,
		Device:    device,
		Width:     width,
		Height:    height,
		FPS:       fps,
		Timestamp: sess.StartedAt.Format(time.RFC3339),
	})
	m.logger.Info("Stream started", "session", id, "device", device, "width", width, "height", height, "fps", fps)

	go m.watch(sess)
	return sess, nil
}

// Stop terminates the active session if its id is id. Stale or unknown ids
// are ignored.
func (m *Manager) Stop(id string) {
	m.mu.Lock()
	sess := m.active
	if sess == nil || sess.ID != id {
		m.mu.Unlock()
		return
	}
	m.active = nil
	m.mu.Unlock()

	m.terminate(sess, ReasonStopped)
}

// StopActive terminates whatever session is active.
func (m *Manager) StopActive() {
	m.mu.Lock()
	sess := m.active
	m.active = nil
	m.mu.Unlock()

	if sess != nil {
		m.terminate(sess, ReasonStopped)
	}
}

// Status reports the slot.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return Status{}
	}
	s := m.active
	return Status{
		Active:    true,
		SessionID: s.ID,
		Device:    s.Device,
		Width:     s.Width,
		Height:    s.Height,
		FPS:       s.FPS,
		StartedAt: s.StartedAt,
	}
}

// ActiveID returns the active session id, or "" when idle.
func (m *Manager) ActiveID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return ""
	}
	return m.active.ID
}

// terminate kills and reaps sess. The caller must already have removed it
// from the slot.
func (m *Manager) terminate(sess *Session, reason string) {
	code := sess.proc.Stop()
	m.logger.Debug("Stream process stopped", "session", sess.ID, "exit_code", code)
	m.finish(sess, reason)
}

// watch clears the slot when the subprocess exits on its own. The stdout
// pipe stays open so a relay can drain what is already buffered.
func (m *Manager) watch(sess *Session) {
	<-sess.proc.Done()

	m.mu.Lock()
	owned := m.active == sess
	if owned {
		m.active = nil
	}
	m.mu.Unlock()

	if owned {
		info := sess.proc.Info()
		m.logger.Warn("Stream process exited", "session", sess.ID, "exit_code", info.ExitCode)
		m.finish(sess, ReasonExited)
	}
}

func (m *Manager) finish(sess *Session, reason string) {
	sess.finishOnce.Do(func() {
		metrics.StreamStopped(sess.ID)
		m.cfg.Bus.Publish(events.StreamStoppedEvent{
			SessionID: sess.ID,
			Reason:    reason,
			Timestamp: time.Now().Format(time.RFC3339),
		})
		m.logger.Info("Stream stopped", "session", sess.ID, "reason", reason)
	})
}

//go:build !windows

package stream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smazurov/camctl/internal/events"
	"github.com/smazurov/camctl/internal/mjpeg"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeFFmpeg writes an executable shell script that ignores its arguments
// and runs body.
func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

const (
	sleepForever = "exec sleep 30"
	twoFrames    = `printf '\377\330one\377\331junk\377\330two\377\331'`
	endless      = `while :; do printf '\377\330frame\377\331'; sleep 0.02; done`
)

func newTestManager(t *testing.T, body string, bus *events.Bus, cache *mjpeg.FrameCache) *Manager {
	t.Helper()
	m := NewManager(Config{Binary: fakeFFmpeg(t, body), Bus: bus, Cache: cache}, discard)
	t.Cleanup(m.StopActive)
	return m
}

func waitClosed(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("timeout waiting for %s", what)
	}
}

func TestStart_InvalidParams(t *testing.T) {
	m := NewManager(Config{Binary: "/nonexistent"}, discard)
	tests := []struct {
		name      string
		device    string
		w, h, fps int
	}{
		{"empty device", "", 1920, 1080, 60},
		{"zero width", "/dev/video0", 0, 1080, 60},
		{"negative height", "/dev/video0", 1920, -1, 60},
		{"zero fps", "/dev/video0", 1920, 1080, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Start(context.Background(), tt.device, tt.w, tt.h, tt.fps)
			if !errors.Is(err, ErrInvalidParams) {
				t.Errorf("err = %v, want ErrInvalidParams", err)
			}
		})
	}
}

func TestStart_LaunchFailure(t *testing.T) {
	m := NewManager(Config{Binary: filepath.Join(t.TempDir(), "missing-ffmpeg")}, discard)
	if _, err := m.Start(context.Background(), "/dev/video0", 1920, 1080, 60); err == nil {
		t.Fatal("expected launch error")
	}
	if m.Status().Active {
		t.Error("slot occupied after failed launch")
	}
}

func TestStart_Status(t *testing.T) {
	m := newTestManager(t, sleepForever, nil, nil)
	sess, err := m.Start(context.Background(), "/dev/video2", 1280, 720, 30)
	if err != nil {
		t.Fatal(err)
	}
	st := m.Status()
	if !st.Active || st.SessionID != sess.ID || st.Device != "/dev/video2" || st.Width != 1280 || st.FPS != 30 {
		t.Errorf("status = %+v", st)
	}
	if m.ActiveID() != sess.ID {
		t.Errorf("ActiveID = %q, want %q", m.ActiveID(), sess.ID)
	}
}

func TestStart_PreemptsPrevious(t *testing.T) {
	bus := events.New()
	stopped := make(chan events.StreamStoppedEvent, 4)
	defer bus.Subscribe(func(e events.StreamStoppedEvent) { stopped <- e })()

	m := newTestManager(t, sleepForever, bus, nil)
	first, err := m.Start(context.Background(), "/dev/video0", 1920, 1080, 60)
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.Start(context.Background(), "/dev/video0", 1920, 1080, 60)
	if err != nil {
		t.Fatal(err)
	}

	// The old process is reaped before Start returns.
	select {
	case <-first.Done():
	default:
		t.Fatal("previous session still running after new Start")
	}
	if first.ID == second.ID {
		t.Error("session ids not unique")
	}
	if got := m.ActiveID(); got != second.ID {
		t.Errorf("active = %q, want %q", got, second.ID)
	}

	select {
	case ev := <-stopped:
		if ev.SessionID != first.ID || ev.Reason != ReasonSuperseded {
			t.Errorf("stop event = %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no stop event for superseded session")
	}
}

func TestStart_SlotEmptyWhileReplacing(t *testing.T) {
	// Ignoring SIGINT makes teardown wait out the graceful timeout.
	m := newTestManager(t, "trap '' INT; while :; do sleep 0.05; done", nil, nil)
	first, err := m.Start(context.Background(), "/dev/video0", 1920, 1080, 60)
	if err != nil {
		t.Fatal(err)
	}

	started := make(chan *Session, 1)
	go func() {
		sess, err := m.Start(context.Background(), "/dev/video0", 1280, 720, 30)
		if err != nil {
			t.Error(err)
		}
		started <- sess
	}()

	time.Sleep(150 * time.Millisecond)
	if st := m.Status(); st.Active {
		t.Errorf("status during replacement = %+v, want idle", st)
	}
	m.StopActive()

	var second *Session
	select {
	case second = <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return")
	}
	if second == nil {
		t.FailNow()
	}
	waitClosed(t, first.Done(), "replaced session")
	if got := m.ActiveID(); got != second.ID {
		t.Errorf("active = %q, want the new session %q", got, second.ID)
	}
}

func TestStop_StaleIDIsNoop(t *testing.T) {
	m := newTestManager(t, sleepForever, nil, nil)
	first, _ := m.Start(context.Background(), "/dev/video0", 1920, 1080, 60)
	second, err := m.Start(context.Background(), "/dev/video0", 1920, 1080, 60)
	if err != nil {
		t.Fatal(err)
	}

	m.Stop(first.ID)
	m.Stop("not-a-session")

	select {
	case <-second.Done():
		t.Fatal("stale Stop killed the active session")
	case <-time.After(50 * time.Millisecond):
	}
	if m.ActiveID() != second.ID {
		t.Error("active session cleared by stale Stop")
	}

	m.Stop(second.ID)
	waitClosed(t, second.Done(), "stopped session")
	if m.Status().Active {
		t.Error("slot still occupied after Stop")
	}
}

func TestStopActive(t *testing.T) {
	m := newTestManager(t, sleepForever, nil, nil)
	sess, _ := m.Start(context.Background(), "/dev/video0", 1920, 1080, 60)
	m.StopActive()
	waitClosed(t, sess.Done(), "session")
	if m.Status().Active {
		t.Error("slot occupied after StopActive")
	}
	m.StopActive()
}

func TestExitClearsSlot(t *testing.T) {
	bus := events.New()
	stopped := make(chan events.StreamStoppedEvent, 1)
	defer bus.Subscribe(func(e events.StreamStoppedEvent) { stopped <- e })()

	m := newTestManager(t, "exit 0", bus, nil)
	sess, err := m.Start(context.Background(), "/dev/video0", 1920, 1080, 60)
	if err != nil {
		t.Fatal(err)
	}
	waitClosed(t, sess.Done(), "process exit")

	select {
	case ev := <-stopped:
		if ev.Reason != ReasonExited {
			t.Errorf("reason = %q, want %q", ev.Reason, ReasonExited)
		}
	case <-time.After(time.Second):
		t.Fatal("no stop event after exit")
	}
	if m.Status().Active {
		t.Error("slot occupied after process exit")
	}
}

func TestRelay_CopiesOutputAndCachesFrames(t *testing.T) {
	cache := mjpeg.NewFrameCache()
	m := newTestManager(t, twoFrames, nil, cache)
	sess, err := m.Start(context.Background(), "/dev/video0", 1920, 1080, 60)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	flushes := 0
	if err := m.Relay(context.Background(), sess, &out, func() { flushes++ }); err != nil {
		t.Fatalf("Relay: %v", err)
	}

	want := "\xff\xd8one\xff\xd9junk\xff\xd8two\xff\xd9"
	if out.String() != want {
		t.Errorf("relayed %q, want %q", out.String(), want)
	}
	if flushes == 0 {
		t.Error("flush never called")
	}
	if cache.Count() != 2 {
		t.Errorf("cache saw %d frames, want 2", cache.Count())
	}
	if frame, _, ok := cache.Latest(0); ok {
		t.Errorf("frame %q still cached after the stream ended", frame)
	}
}

func TestRelay_CachesLatestFrameWhileActive(t *testing.T) {
	cache := mjpeg.NewFrameCache()
	m := newTestManager(t, endless, nil, cache)
	sess, err := m.Start(context.Background(), "/dev/video0", 1920, 1080, 60)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	relayed := make(chan error, 1)
	go func() { relayed <- m.Relay(ctx, sess, io.Discard, nil) }()

	deadline := time.Now().Add(5 * time.Second)
	for {
		if frame, _, ok := cache.Latest(time.Minute); ok {
			if string(frame) != "\xff\xd8frame\xff\xd9" {
				t.Errorf("latest frame = %q", frame)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("no frame cached while streaming")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-relayed:
	case <-time.After(5 * time.Second):
		t.Fatal("Relay did not return after cancel")
	}
	if _, _, ok := cache.Latest(0); ok {
		t.Error("frame still cached after the stream stopped")
	}
}

func TestRelay_CancelStopsSession(t *testing.T) {
	m := newTestManager(t, endless, nil, nil)
	sess, err := m.Start(context.Background(), "/dev/video0", 1920, 1080, 60)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	relayed := make(chan error, 1)
	go func() { relayed <- m.Relay(ctx, sess, io.Discard, nil) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-relayed:
		if err != nil {
			t.Errorf("Relay after cancel = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Relay did not return after cancel")
	}
	waitClosed(t, sess.Done(), "session after cancel")
	if m.Status().Active {
		t.Error("slot occupied after client cancel")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestRelay_WriteFailureStopsSession(t *testing.T) {
	m := newTestManager(t, endless, nil, nil)
	sess, err := m.Start(context.Background(), "/dev/video0", 1920, 1080, 60)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Relay(context.Background(), sess, failingWriter{}, nil); err != nil {
		t.Errorf("Relay = %v, want nil", err)
	}
	waitClosed(t, sess.Done(), "session after write failure")
}

func TestGrab(t *testing.T) {
	m := newTestManager(t, twoFrames, nil, nil)

	frame, err := m.Grab(context.Background(), "/dev/video0", 1920, 1080, 30)
	if err != nil {
		t.Fatal(err)
	}
	if string(frame) != "\xff\xd8one\xff\xd9" {
		t.Errorf("frame = %q", frame)
	}
}

func TestGrab_RefusedWhileStreaming(t *testing.T) {
	m := newTestManager(t, sleepForever, nil, nil)
	if _, err := m.Start(context.Background(), "/dev/video0", 640, 480, 30); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Grab(context.Background(), "/dev/video0", 640, 480, 30); !errors.Is(err, ErrStreamActive) {
		t.Errorf("err = %v, want ErrStreamActive", err)
	}
}

func TestGrab_NoFrame(t *testing.T) {
	m := newTestManager(t, "exit 0", nil, nil)
	if _, err := m.Grab(context.Background(), "/dev/video0", 640, 480, 30); err == nil {
		t.Error("expected error when ffmpeg produced nothing")
	}
}

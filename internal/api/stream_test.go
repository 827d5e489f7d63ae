//go:build !windows

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smazurov/camctl/internal/stream"
)

func TestStreamRelay(t *testing.T) {
	script := filepath.Join(t.TempDir(), "ffmpeg")
	body := "#!/bin/sh\nwhile :; do printf '\\377\\330frame\\377\\331'; sleep 0.02; done\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}

	env := newTestEnv(t, nil)
	env.server.options.Streams = stream.NewManager(stream.Config{Binary: script, Cache: env.frames, Bus: env.bus}, discard)
	t.Cleanup(env.server.options.Streams.StopActive)

	ts := httptest.NewServer(env.server.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/camera/stream?w=640&h=480&fps=30", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "multipart/x-mixed-replace; boundary=ffserver" {
		t.Errorf("Content-Type = %q", ct)
	}

	buf := make([]byte, 64)
	if _, err := io.ReadAtLeast(resp.Body, buf, 14); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf, []byte("\xff\xd8frame\xff\xd9")) {
		t.Errorf("body = %q", buf)
	}

	status := env.server.options.Streams.Status()
	if !status.Active || status.Width != 640 || status.Device != "mock0" {
		t.Errorf("status = %+v", status)
	}

	resp.Body.Close()
	cancel()

	deadline := time.Now().Add(5 * time.Second)
	for env.server.options.Streams.Status().Active {
		if time.Now().After(deadline) {
			t.Fatal("stream still active after client disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if env.frames.Count() == 0 {
		t.Error("no frame passed through the cache")
	}
	// The relay clears the cache after it has released the slot.
	for {
		if _, _, ok := env.frames.Latest(0); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("frame still cached after the stream stopped")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

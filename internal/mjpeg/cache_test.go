package mjpeg

import (
	"testing"
	"time"
)

func TestFrameCache(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewFrameCache()
	c.now = func() time.Time { return now }

	if _, _, ok := c.Latest(0); ok {
		t.Fatal("empty cache returned a frame")
	}

	c.Store([]byte{1})
	c.Store([]byte{2})
	f, at, ok := c.Latest(time.Second)
	if !ok || f[0] != 2 || !at.Equal(now) {
		t.Fatalf("Latest = %v %v %v", f, at, ok)
	}
	if c.Count() != 2 {
		t.Errorf("Count = %d, want 2", c.Count())
	}

	now = now.Add(2 * time.Second)
	if _, _, ok := c.Latest(time.Second); ok {
		t.Error("stale frame returned")
	}
	if _, _, ok := c.Latest(0); !ok {
		t.Error("zero maxAge should skip the age check")
	}

	c.Clear()
	if _, _, ok := c.Latest(0); ok {
		t.Error("frame returned after Clear")
	}
}

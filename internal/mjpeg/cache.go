package mjpeg

import (
	"sync"
	"time"
)

// FrameCache keeps the most recent frame seen on the live stream.
type FrameCache struct {
	mu       sync.RWMutex
	frame    []byte
	captured time.Time
	count    uint64
	now      func() time.Time
}

// NewFrameCache creates an empty FrameCache.
func NewFrameCache() *FrameCache {
	return &FrameCache{now: time.Now}
}

// Store replaces the cached frame. The cache takes ownership of frame.
func (c *FrameCache) Store(frame []byte) {
	c.mu.Lock()
	c.frame = frame
	c.captured = c.now()
	c.count++
	c.mu.Unlock()
}

// Latest returns the cached frame if one exists and it is no older than
// maxAge. A maxAge of zero disables the age check. Callers must not modify
// the returned slice.
func (c *FrameCache) Latest(maxAge time.Duration) ([]byte, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.frame == nil {
		return nil, time.Time{}, false
	}
	if maxAge > 0 && c.now().Sub(c.captured) > maxAge {
		return nil, time.Time{}, false
	}
	return c.frame, c.captured, true
}

// Count returns how many frames have been stored.
func (c *FrameCache) Count() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.count
}

// Clear drops the cached frame, e.g. when the stream stops.
func (c *FrameCache) Clear() {
	c.mu.Lock()
	c.frame = nil
	c.captured = time.Time{}
	c.mu.Unlock()
}

// Package mjpeg slices a byte stream of concatenated JPEG images into
// individual frames by scanning for the SOI (FF D8) and EOI (FF D9) markers.
package mjpeg

import (
	"context"
	"io"
	"iter"
)

const (
	markerPrefix = 0xFF
	markerSOI    = 0xD8
	markerEOI    = 0xD9
)

// ReadChunkSize is the read size used by Frames and the HTTP relay.
const ReadChunkSize = 80 * 1024

// Extractor holds the scan state between chunks, so a marker split across
// two reads is still recognised. The zero value is ready to use. An
// Extractor is not safe for concurrent use.
type Extractor struct {
	inFrame  bool
	lastFF   bool
	buf      []byte
	sizeHint int
}

// ProcessChunk scans chunk and calls emit once per completed frame, in the
// order the end markers appear. The slice passed to emit is owned by the
// callee. Bytes outside a frame are ignored.
func (e *Extractor) ProcessChunk(chunk []byte, emit func(frame []byte)) {
	for _, b := range chunk {
		if e.inFrame {
			e.buf = append(e.buf, b)
			if e.lastFF && b == markerEOI {
				frame := e.buf
				e.sizeHint = len(frame)
				e.buf = nil
				e.inFrame = false
				e.lastFF = false
				emit(frame)
				continue
			}
		} else if e.lastFF && b == markerSOI {
			e.buf = make([]byte, 0, max(e.sizeHint, 4096))
			e.buf = append(e.buf, markerPrefix, markerSOI)
			e.inFrame = true
			e.lastFF = false
			continue
		}
		// FF FF is fill: the second FF can still start a marker.
		e.lastFF = b == markerPrefix
	}
}

// Reset drops any partially accumulated frame.
func (e *Extractor) Reset() {
	e.inFrame = false
	e.lastFF = false
	e.buf = nil
}

// Frames returns a lazy sequence of the complete frames read from r. The
// sequence ends when r returns an error (including io.EOF) or ctx is done;
// a trailing partial frame is discarded. Cancelling ctx does not interrupt
// a blocked Read, so callers should also close r.
func Frames(ctx context.Context, r io.Reader) iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		var ex Extractor
		chunk := make([]byte, ReadChunkSize)
		stopped := false
		emit := func(frame []byte) {
			if !stopped && !yield(frame) {
				stopped = true
			}
		}

		for ctx.Err() == nil {
			n, err := r.Read(chunk)
			if n > 0 {
				ex.ProcessChunk(chunk[:n], emit)
				if stopped {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}
}

// Tap is an io.Writer that feeds everything written to it through an
// Extractor, so it can sit behind an io.TeeReader or io.MultiWriter on a
// relay path without changing the bytes being relayed.
type Tap struct {
	ex      Extractor
	onFrame func([]byte)
}

// NewTap returns a Tap that calls onFrame for every completed frame.
func NewTap(onFrame func([]byte)) *Tap {
	return &Tap{onFrame: onFrame}
}

// Write never fails.
func (t *Tap) Write(p []byte) (int, error) {
	t.ex.ProcessChunk(p, t.onFrame)
	return len(p), nil
}

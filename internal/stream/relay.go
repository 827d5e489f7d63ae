package stream

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/smazurov/camctl/internal/metrics"
	"github.com/smazurov/camctl/internal/mjpeg"
)

// Relay copies sess's output to w chunk by chunk, calling flush after every
// write, until the subprocess ends, the client goes away or ctx is done. The
// session is stopped when Relay returns. Ending for any of those reasons is
// not an error; only an unexpected read failure is returned.
//
// The frame cache is cleared on return unless a newer session already
// holds the slot, so snapshots never see a frame from a stopped stream.
func (m *Manager) Relay(ctx context.Context, sess *Session, w io.Writer, flush func()) error {
	// A blocked pipe read does not observe ctx; stopping the session closes
	// the pipe and unblocks it.
	release := context.AfterFunc(ctx, func() { m.Stop(sess.ID) })
	defer release()
	defer func() {
		m.Stop(sess.ID)
		sess.proc.Stop()
		if m.cfg.Cache != nil && m.ActiveID() == "" {
			m.cfg.Cache.Clear()
		}
	}()

	src := sess.Output()
	if m.cfg.Cache != nil {
		cache := m.cfg.Cache
		src = io.TeeReader(src, mjpeg.NewTap(func(frame []byte) {
			cache.Store(frame)
			metrics.ObserveFrame()
		}))
	}

	buf := make([]byte, mjpeg.ReadChunkSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				m.logger.Debug("Stream client write failed", "session", sess.ID, "error", werr)
				return nil
			}
			metrics.ObserveBytes(n)
			if flush != nil {
				flush()
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

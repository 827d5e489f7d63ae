package events

import (
	"sync"
	"sync/atomic"

	"github.com/kelindar/event"
)

// Feed merges events of several types into one buffered channel, for
// select-based consumers such as SSE handlers. A slow consumer loses
// events instead of blocking publishers; losses are counted.
type Feed struct {
	// C delivers the forwarded events.
	C <-chan any

	ch      chan any
	dropped atomic.Uint64

	mu     sync.Mutex
	unsubs []func()
	closed bool
}

// NewFeed creates a Feed that buffers up to size events.
func NewFeed(size int) *Feed {
	ch := make(chan any, size)
	return &Feed{C: ch, ch: ch}
}

// Forward subscribes f to events of type T on bus. A nil bus or a closed
// feed is a no-op.
func Forward[T Event](bus *Bus, f *Feed) {
	if bus == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.unsubs = append(f.unsubs, event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case f.ch <- e:
		default:
			f.dropped.Add(1)
		}
	}))
}

// Dropped returns how many events did not fit in the buffer.
func (f *Feed) Dropped() uint64 {
	return f.dropped.Load()
}

// Close removes every subscription. C is left open so a pending receive
// does not see a zero value.
func (f *Feed) Close() {
	f.mu.Lock()
	unsubs := f.unsubs
	f.unsubs = nil
	f.closed = true
	f.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

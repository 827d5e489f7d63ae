package logging

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

// Entry is one log record kept in History.
type Entry struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Module  string         `json:"module"`
	Message string         `json:"message"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// History keeps the most recent log records in a fixed-size ring so the
// API can show what happened before a client connected.
type History struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool
	notify  func(Entry)
}

// NewHistory creates a History holding up to size entries.
func NewHistory(size int) *History {
	return &History{entries: make([]Entry, size)}
}

// OnEntry registers a callback invoked for every appended entry.
func (h *History) OnEntry(fn func(Entry)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notify = fn
}

// Append adds an entry, dropping the oldest when full.
func (h *History) Append(e Entry) {
	h.mu.Lock()
	h.entries[h.next] = e
	h.next = (h.next + 1) % len(h.entries)
	if h.next == 0 {
		h.full = true
	}
	notify := h.notify
	h.mu.Unlock()

	if notify != nil {
		notify(e)
	}
}

// Entries returns the stored entries oldest first.
func (h *History) Entries() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.full {
		return slices.Clone(h.entries[:h.next])
	}
	out := make([]Entry, 0, len(h.entries))
	out = append(out, h.entries[h.next:]...)
	return append(out, h.entries[:h.next]...)
}

// Handler returns a slog.Handler that appends to h.
func (h *History) Handler(level slog.Leveler) slog.Handler {
	return &historyHandler{history: h, level: level, module: "app"}
}

type historyHandler struct {
	history *History
	level   slog.Leveler
	module  string
	attrs   map[string]any
	groups  []string
}

func (h *historyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *historyHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := maps.Clone(h.attrs)
	if attrs == nil {
		attrs = make(map[string]any)
	}
	r.Attrs(func(a slog.Attr) bool {
		flatten(attrs, h.groups, a)
		return true
	})
	if len(attrs) == 0 {
		attrs = nil
	}

	h.history.Append(Entry{
		Time:    r.Time,
		Level:   strings.ToLower(r.Level.String()),
		Module:  h.module,
		Message: r.Message,
		Attrs:   attrs,
	})
	return nil
}

func (h *historyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = maps.Clone(h.attrs)
	if c.attrs == nil {
		c.attrs = make(map[string]any)
	}
	for _, a := range attrs {
		if a.Key == "module" && len(h.groups) == 0 {
			c.module = a.Value.String()
			continue
		}
		flatten(c.attrs, h.groups, a)
	}
	return &c
}

func (h *historyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.groups = append(slices.Clone(h.groups), name)
	return &c
}

func flatten(dst map[string]any, groups []string, a slog.Attr) {
	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}

	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		nested := append(slices.Clone(groups), a.Key)
		for _, ga := range v.Group() {
			flatten(dst, nested, ga)
		}
	case slog.KindTime:
		dst[key] = v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		dst[key] = v.Duration().String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			dst[key] = err.Error()
		} else {
			dst[key] = v.Any()
		}
	default:
		dst[key] = v.Any()
	}
}

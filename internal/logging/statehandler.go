package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// AttrFunc returns attributes describing the plugin's current state, such
// as the territory the player is in. It is called once per record and must
// not log.
type AttrFunc func() []slog.Attr

// stateHandler appends the attributes of the installed AttrFunc to every
// record before passing it on. The function is read at log time, so it can
// be installed after Setup.
type stateHandler struct {
	inner slog.Handler
	state *atomic.Pointer[AttrFunc]
}

func newStateHandler(inner slog.Handler, state *atomic.Pointer[AttrFunc]) *stateHandler {
	return &stateHandler{inner: inner, state: state}
}

func (h *stateHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *stateHandler) Handle(ctx context.Context, r slog.Record) error {
	if fn := h.state.Load(); fn != nil {
		if attrs := (*fn)(); len(attrs) > 0 {
			r = r.Clone()
			r.AddAttrs(attrs...)
		}
	}
	return h.inner.Handle(ctx, r)
}

func (h *stateHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return newStateHandler(h.inner.WithAttrs(attrs), h.state)
}

func (h *stateHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return newStateHandler(h.inner.WithGroup(name), h.state)
}

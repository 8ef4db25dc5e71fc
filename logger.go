package retroframe

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// discard drops every record. Enabled reports false, so OnNewFrame never
// builds attributes unless a logger was installed.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }

var (
	silent = slog.New(discard{})
	active atomic.Pointer[slog.Logger]
)

func init() { active.Store(silent) }

// SetLogger installs l for the Uploader and the backends under
// retroframe/backend. Passing nil silences logging again, which is also the
// initial state.
//
// Records emitted:
//   - Uploader, debug: pixel format fallback, storage reallocation
//   - Uploader, warn: allocation and upload failures
//   - backend/native, debug: HAL texture creation
//   - backend/native, warn: sampler creation failure
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	active.Store(l)
}

// Logger returns the logger installed by SetLogger.
func Logger() *slog.Logger { return active.Load() }

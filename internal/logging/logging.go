// Shared slog setup for the simulator and its commands.
package logging

import (
	"context"
	"log/slog"
	"os"
)

// New builds the process-wide logger: slog with a text handler on STDOUT.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

type ctxKey struct{}

// NewContext threads l through ctx so the run loop and tick handlers can
// pick it up without plumbing a logger parameter everywhere.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger carried by ctx, falling back to
// slog.Default() when none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

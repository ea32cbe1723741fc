package service

import (
	"context"

	"github.com/rs/zerolog"
)

// bestEffortFunc is an operation whose failure must never reach the caller.
type bestEffortFunc func(ctx context.Context) error

// runBestEffort executes fn and logs a failure instead of returning it.
func runBestEffort(ctx context.Context, log zerolog.Logger, name string, fn bestEffortFunc) {
	if err := fn(ctx); err != nil {
		log.Warn().Err(err).Str("operation", name).Msg("best-effort operation failed")
	}
}

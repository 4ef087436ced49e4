package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/teamsense-lab/argus/pkg/utils/logging"
)

// Close closes an io.Closer, logging the error instead of returning
// it. Meant for deferred cleanup of response bodies and log files,
// where the caller has no error path left. Nil closers are ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.Any("error", err))
	}
}

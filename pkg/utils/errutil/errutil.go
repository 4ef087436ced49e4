package errutil

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/teamsense-lab/argus/pkg/utils/logging"
)

var sentryEnabled bool

// InitSentry configures the Sentry client. When dsn is empty, error
// reporting stays disabled and Handle/HandleHTTP only log.
func InitSentry(dsn, env string) error {
	if dsn == "" {
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env,
	}); err != nil {
		return goerr.Wrap(err, "failed to initialize sentry")
	}

	sentryEnabled = true
	return nil
}

// FlushSentry flushes buffered events before process exit
func FlushSentry() {
	if sentryEnabled {
		sentry.Flush(2 * time.Second)
	}
}

func capture(err error) {
	if sentryEnabled {
		sentry.CaptureException(err)
	}
}

// Handle logs the error with a message and returns it for the caller.
// This function ensures that all errors, especially 5xx errors, are properly logged.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	capture(err)

	return err
}

// HandleHTTP logs the error and writes an appropriate HTTP error response.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error("HTTP error",
			"status", statusCode,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error("HTTP error",
			"status", statusCode,
			"error", err.Error(),
		)
	}

	if statusCode >= http.StatusInternalServerError {
		capture(err)
	}

	http.Error(w, err.Error(), statusCode)
}

package utils

import (
	"context"
	"errors"
	"fmt"

	"github.com/getsentry/sentry-go"
)

// LogAndReportSentryError logs the error with its stack and sends it to sentry, tagged with the user of the
// context. Canceled contexts are only logged.
func LogAndReportSentryError(ctx context.Context, err error) {
	logger := LoggerFromContext(ctx)
	logger.ErrorContext(ctx, fmt.Sprintf("%+v", err))

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		logger.DebugContext(ctx, fmt.Sprintf("Deadline exceeded or context canceled: %v", err))
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		if creds, ok := CredentialsFromCtx(ctx); ok {
			scope.SetUser(sentry.User{ID: string(creds.UserId)})
			scope.SetTag("role", creds.Role.String())
		}
		hub.CaptureException(err)
	})
}

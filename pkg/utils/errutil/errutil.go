package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/utils/logging"
)

// Handle logs err with its goerr values and stack, forwards it to Sentry when a
// client is bound, and returns err unchanged so callers can keep propagating it.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logging.From(ctx).Error(msg, errAttrs(err)...)
	report(ctx, err)

	return err
}

// HandleHTTP logs err and writes a JSON error body with statusCode. Client
// errors are logged at warn level and are not reported.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	attrs := append([]any{"status", statusCode}, errAttrs(err)...)
	if statusCode >= http.StatusInternalServerError {
		logging.From(ctx).Error("HTTP error", attrs...)
		report(ctx, err)
	} else {
		logging.From(ctx).Warn("HTTP error", attrs...)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func errAttrs(err error) []any {
	var ge *goerr.Error
	if errors.As(err, &ge) {
		return []any{
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		}
	}
	return []any{"error", err.Error()}
}

func report(ctx context.Context, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}

	eventID := hub.CaptureException(err)
	if eventID != nil {
		logging.From(ctx).Debug("error reported", slog.Any("sentry_event_id", *eventID))
	}
}

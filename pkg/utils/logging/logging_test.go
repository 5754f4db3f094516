package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/unihelpdesk/helpdesk/pkg/utils/logging"
)

type requester struct {
	Name  string
	Email string `masq:"secret"`
}

func TestNew_RedactsSecretFields(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON, false)

	logger.Info("ticket created", "requester", requester{Name: "Maria", Email: "maria@example.com"})

	out := buf.String()
	gt.Bool(t, strings.Contains(out, "Maria")).True()
	gt.Bool(t, strings.Contains(out, "maria@example.com")).False()
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelWarn, logging.FormatJSON, false)

	logger.Info("hidden")
	logger.Warn("shown")

	gt.Bool(t, strings.Contains(buf.String(), "hidden")).False()
	gt.Bool(t, strings.Contains(buf.String(), "shown")).True()
}

func TestFrom_FallsBackToDefault(t *testing.T) {
	gt.Value(t, logging.From(context.Background())).Equal(logging.Default())

	custom := slog.New(slog.DiscardHandler)
	ctx := logging.With(context.Background(), custom)
	gt.Value(t, logging.From(ctx)).Equal(custom)
}

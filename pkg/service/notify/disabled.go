package notify

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/domain/interfaces"
)

// ErrNotConfigured is returned by Disabled for every message
var ErrNotConfigured = goerr.New("notification channel is not configured")

// Disabled is used when no mail relay is configured. Every Notify fails, so
// receipts honestly report that no confirmation went out.
type Disabled struct{}

var _ interfaces.Notifier = Disabled{}

func (Disabled) Notify(ctx context.Context, address, subject, body string) error {
	return ErrNotConfigured
}

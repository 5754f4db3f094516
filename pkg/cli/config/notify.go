package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/domain/interfaces"
	"github.com/unihelpdesk/helpdesk/pkg/service/notify"
	"github.com/unihelpdesk/helpdesk/pkg/service/slack"
	"github.com/unihelpdesk/helpdesk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// SMTP holds the requester confirmation relay settings
type SMTP struct {
	host     string
	port     int
	username string
	password string
	from     string
	timeout  time.Duration
}

func (x *SMTP) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "smtp-host",
			Usage:       "SMTP relay host (confirmation mail disabled when empty)",
			Category:    "Notification",
			Sources:     cli.EnvVars("HELPDESK_SMTP_HOST"),
			Destination: &x.host,
		},
		&cli.IntFlag{
			Name:        "smtp-port",
			Usage:       "SMTP relay port (STARTTLS)",
			Category:    "Notification",
			Value:       notify.DefaultSMTPPort,
			Sources:     cli.EnvVars("HELPDESK_SMTP_PORT"),
			Destination: &x.port,
		},
		&cli.StringFlag{
			Name:        "smtp-username",
			Usage:       "SMTP username",
			Category:    "Notification",
			Sources:     cli.EnvVars("HELPDESK_SMTP_USERNAME"),
			Destination: &x.username,
		},
		&cli.StringFlag{
			Name:        "smtp-password",
			Usage:       "SMTP password",
			Category:    "Notification",
			Sources:     cli.EnvVars("HELPDESK_SMTP_PASSWORD"),
			Destination: &x.password,
		},
		&cli.StringFlag{
			Name:        "smtp-from",
			Usage:       "Sender address (defaults to the SMTP username)",
			Category:    "Notification",
			Sources:     cli.EnvVars("HELPDESK_SMTP_FROM"),
			Destination: &x.from,
		},
		&cli.DurationFlag{
			Name:        "smtp-timeout",
			Usage:       "Upper bound on sending one confirmation",
			Category:    "Notification",
			Value:       10 * time.Second,
			Sources:     cli.EnvVars("HELPDESK_SMTP_TIMEOUT"),
			Destination: &x.timeout,
		},
	}
}

func (x SMTP) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("host", x.host),
		slog.Int("port", x.port),
		slog.String("from", x.from),
		slog.Int("password.len", len(x.password)),
	)
}

func (x *SMTP) Timeout() time.Duration {
	return x.timeout
}

// Configure returns the SMTP notifier, or a disabled one when no host is set
func (x *SMTP) Configure() (interfaces.Notifier, error) {
	if x.host == "" {
		logging.Default().Warn("SMTP not configured, ticket confirmations will not be sent")
		return notify.Disabled{}, nil
	}

	opts := []notify.Option{
		notify.WithPort(x.port),
		notify.WithTimeout(x.timeout),
	}
	if x.username != "" {
		opts = append(opts, notify.WithAuth(x.username, x.password))
	}
	if x.from != "" {
		opts = append(opts, notify.WithFrom(x.from))
	}

	n, err := notify.NewSMTP(x.host, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure SMTP notifier")
	}
	return n, nil
}

// Slack holds the staff alert settings
type Slack struct {
	botToken  string
	channelID string
	baseURL   string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token for new ticket alerts",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("HELPDESK_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Channel receiving new ticket alerts",
			Category:    "Slack",
			Destination: &x.channelID,
			Sources:     cli.EnvVars("HELPDESK_SLACK_CHANNEL_ID"),
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Public base URL, used for links in alerts (e.g., https://helpdesk.example.edu)",
			Destination: &x.baseURL,
			Sources:     cli.EnvVars("HELPDESK_BASE_URL"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("channel_id", x.channelID),
	)
}

// IsConfigured checks if Slack alerting is enabled
func (x *Slack) IsConfigured() bool {
	return x.botToken != "" && x.channelID != ""
}

// Configure returns the staff alerter, or nil when Slack is not configured
func (x *Slack) Configure() (interfaces.StaffAlerter, error) {
	if !x.IsConfigured() {
		return nil, nil
	}

	var opts []slack.Option
	if x.baseURL != "" {
		opts = append(opts, slack.WithBaseURL(x.baseURL))
	}

	alerter, err := slack.New(x.botToken, x.channelID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure slack alerter")
	}
	return alerter, nil
}

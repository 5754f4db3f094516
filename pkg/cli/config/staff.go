package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"
)

// Staff holds the shared secret guarding the staff API
type Staff struct {
	secret string
}

func (x *Staff) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "staff-secret",
			Usage:       "Shared secret for the staff API (staff API disabled when empty)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("HELPDESK_STAFF_SECRET"),
			Destination: &x.secret,
		},
	}
}

func (x Staff) LogValue() slog.Value {
	return slog.GroupValue(slog.Bool("enabled", x.secret != ""))
}

func (x *Staff) Secret() string {
	return x.secret
}

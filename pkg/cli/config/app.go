package config

import (
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
	"github.com/unihelpdesk/helpdesk/pkg/domain/types"
	"github.com/unihelpdesk/helpdesk/pkg/service/notify"
	"github.com/urfave/cli/v3"
)

// AppConfig is the static help desk configuration file
type AppConfig struct {
	Categories []string `toml:"categories"`
	Roles      []string `toml:"roles"`
	Mail       Mail     `toml:"mail"`
}

// Mail holds the requester confirmation templates
type Mail struct {
	Subject string `toml:"subject"`
	Body    string `toml:"body"`
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if err := a.Taxonomy().Validate(); err != nil {
		return goerr.Wrap(ErrInvalidConfig, "invalid taxonomy", goerr.V("cause", err.Error()))
	}
	if _, err := notify.NewTemplates(a.Mail.Subject, a.Mail.Body); err != nil {
		return goerr.Wrap(ErrInvalidConfig, "invalid mail template", goerr.V("cause", err.Error()))
	}
	return nil
}

// Taxonomy converts the configured lists. Empty lists fall back to the defaults.
func (a *AppConfig) Taxonomy() *model.Taxonomy {
	def := model.DefaultTaxonomy()
	tax := &model.Taxonomy{Categories: def.Categories, Roles: def.Roles}

	if len(a.Categories) > 0 {
		tax.Categories = make([]types.Category, len(a.Categories))
		for i, c := range a.Categories {
			tax.Categories[i] = types.Category(c)
		}
	}
	if len(a.Roles) > 0 {
		tax.Roles = make([]types.Role, len(a.Roles))
		for i, r := range a.Roles {
			tax.Roles[i] = types.Role(r)
		}
	}
	return tax
}

// Templates parses the mail templates
func (a *AppConfig) Templates() (*notify.Templates, error) {
	return notify.NewTemplates(a.Mail.Subject, a.Mail.Body)
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// App holds the --config flag
type App struct {
	path string
}

func (x *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the TOML file with categories, roles and mail templates",
			Sources:     cli.EnvVars("HELPDESK_CONFIG"),
			Destination: &x.path,
		},
	}
}

func (x App) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", x.path))
}

// Configure loads the file, or returns the built-in defaults when no path is set
func (x *App) Configure() (*AppConfig, error) {
	if x.path == "" {
		return &AppConfig{}, nil
	}
	return LoadAppConfiguration(x.path)
}

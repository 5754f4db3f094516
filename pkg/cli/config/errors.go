package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidConfig    = goerr.New("invalid configuration")
	ErrInvalidBackend   = goerr.New("invalid repository backend")
	ErrMissingProjectID = goerr.New("firestore project ID is required")
	ErrInvalidLogLevel  = goerr.New("invalid log level")
	ErrInvalidLogFormat = goerr.New("invalid log format")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	BackendKey    = "backend"
	LevelKey      = "level"
	FormatKey     = "format"
)

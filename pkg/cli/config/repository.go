package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/domain/interfaces"
	"github.com/unihelpdesk/helpdesk/pkg/repository/firestore"
	"github.com/unihelpdesk/helpdesk/pkg/repository/memory"
	"github.com/unihelpdesk/helpdesk/pkg/repository/sqlite"
	"github.com/unihelpdesk/helpdesk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend          string
	sqlitePath       string
	projectID        string
	databaseID       string
	collectionPrefix string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (sqlite, firestore or memory)",
			Category:    "Repository",
			Value:       "sqlite",
			Sources:     cli.EnvVars("HELPDESK_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Usage:       "SQLite database file",
			Category:    "Repository",
			Value:       "helpdesk.db",
			Sources:     cli.EnvVars("HELPDESK_SQLITE_PATH"),
			Destination: &r.sqlitePath,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("HELPDESK_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("HELPDESK_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix for Firestore collection names",
			Category:    "Repository",
			Sources:     cli.EnvVars("HELPDESK_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
	}
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("sqlite_path", r.sqlitePath),
		slog.String("project_id", r.projectID),
		slog.String("database_id", r.databaseID),
	)
}

// ProjectID returns the Firestore project ID
func (r *Repository) ProjectID() string {
	return r.projectID
}

// DatabaseID returns the Firestore database ID
func (r *Repository) DatabaseID() string {
	return r.databaseID
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case "sqlite":
		repo, err := sqlite.New(ctx, r.sqlitePath, sqlite.WithLogger(logging.Default()))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize sqlite repository", goerr.V("path", r.sqlitePath))
		}
		logging.Default().Info("Using SQLite repository", "path", r.sqlitePath)
		return repo, nil

	case "firestore":
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrMissingProjectID, "firestore-project-id is required when using firestore backend")
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID, firestore.WithCollectionPrefix(r.collectionPrefix))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case "memory":
		logging.Default().Warn("Using in-memory repository, tickets are lost on exit")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "unsupported repository backend", goerr.V(BackendKey, r.backend))
	}
}

package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/domain/interfaces"
	"github.com/unihelpdesk/helpdesk/pkg/service/embedding"
	"github.com/unihelpdesk/helpdesk/pkg/service/knowledge"
	"github.com/unihelpdesk/helpdesk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Knowledge holds the knowledge source and embedding cache flags
type Knowledge struct {
	source         string
	bootstrap      bool
	cacheDir       string
	cacheTTL       time.Duration
	reloadInterval time.Duration
	concurrency    int
}

func (x *Knowledge) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "knowledge-source",
			Usage:       "Question/answer sheet (.xlsx or .csv), local path or gs://bucket/object",
			Category:    "Knowledge",
			Value:       "knowledge.xlsx",
			Sources:     cli.EnvVars("HELPDESK_KNOWLEDGE_SOURCE"),
			Destination: &x.source,
		},
		&cli.BoolFlag{
			Name:        "knowledge-bootstrap",
			Usage:       "Create a sample sheet when the local knowledge file does not exist",
			Category:    "Knowledge",
			Sources:     cli.EnvVars("HELPDESK_KNOWLEDGE_BOOTSTRAP"),
			Destination: &x.bootstrap,
		},
		&cli.StringFlag{
			Name:        "embedding-cache-dir",
			Usage:       "Directory for the persistent embedding cache (in-memory when empty)",
			Category:    "Knowledge",
			Sources:     cli.EnvVars("HELPDESK_EMBEDDING_CACHE_DIR"),
			Destination: &x.cacheDir,
		},
		&cli.DurationFlag{
			Name:        "embedding-cache-ttl",
			Usage:       "How long cached embeddings are kept",
			Category:    "Knowledge",
			Value:       embedding.DefaultCacheTTL,
			Sources:     cli.EnvVars("HELPDESK_EMBEDDING_CACHE_TTL"),
			Destination: &x.cacheTTL,
		},
		&cli.DurationFlag{
			Name:        "knowledge-reload-interval",
			Usage:       "Rebuild the knowledge index periodically (0 disables)",
			Category:    "Knowledge",
			Sources:     cli.EnvVars("HELPDESK_KNOWLEDGE_RELOAD_INTERVAL"),
			Destination: &x.reloadInterval,
		},
		&cli.IntFlag{
			Name:        "knowledge-build-concurrency",
			Usage:       "Parallel embedding requests while building the index",
			Category:    "Knowledge",
			Value:       8,
			Sources:     cli.EnvVars("HELPDESK_KNOWLEDGE_BUILD_CONCURRENCY"),
			Destination: &x.concurrency,
		},
	}
}

func (x Knowledge) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("source", x.source),
		slog.Bool("bootstrap", x.bootstrap),
		slog.String("cache_dir", x.cacheDir),
		slog.Duration("reload_interval", x.reloadInterval),
	)
}

func (x *Knowledge) ReloadInterval() time.Duration {
	return x.reloadInterval
}

func (x *Knowledge) Concurrency() int {
	return x.concurrency
}

// Source opens the configured knowledge source, creating the sample sheet
// first when bootstrapping is enabled.
func (x *Knowledge) Source() (interfaces.KnowledgeSource, error) {
	if x.source == "" {
		return nil, goerr.New("knowledge source is required")
	}

	if x.bootstrap && !strings.HasPrefix(x.source, "gs://") {
		created, err := knowledge.EnsureSample(x.source)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create sample knowledge sheet", goerr.V("path", x.source))
		}
		if created {
			logging.Default().Warn("Created sample knowledge sheet, fill it in and reload", "path", x.source)
		}
	}

	src, err := knowledge.New(x.source)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure knowledge source", goerr.V("source", x.source))
	}
	return src, nil
}

// Cache opens the embedding cache. The returned function closes it.
func (x *Knowledge) Cache() (*embedding.BadgerCache, func(), error) {
	cache, err := embedding.OpenBadgerCache(x.cacheDir, x.cacheTTL)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to open embedding cache", goerr.V("dir", x.cacheDir))
	}
	closer := func() {
		if err := cache.Close(); err != nil {
			logging.Default().Error("failed to close embedding cache", "error", err.Error())
		}
	}
	return cache, closer, nil
}

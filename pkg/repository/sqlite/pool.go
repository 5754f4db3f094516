package sqlite

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/m-mizutani/goerr/v2"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// poolConfig holds the parameters for opening a connection pool
type poolConfig struct {
	// Path of the database file; created if absent. The parent directory must exist.
	Path string
	// PoolSize defaults to max(runtime.NumCPU(), 4). SQLite serializes
	// writers regardless, extra connections only serve concurrent readers.
	PoolSize int
	Logger   *slog.Logger
}

// pool is a fixed-size set of connections sharing the same pragmas.
// Each goroutine must take its own connection and put it back.
type pool struct {
	inner  *sqlitex.Pool
	logger *slog.Logger
	path   string
}

func openPool(cfg poolConfig) (*pool, error) {
	if cfg.Path == "" {
		return nil, goerr.New("sqlite path is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	size := cfg.PoolSize
	if size <= 0 {
		size = max(runtime.NumCPU(), 4)
	}

	inner, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize:    size,
		PrepareConn: prepareConn,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite pool", goerr.V("path", cfg.Path))
	}

	logger.Info("sqlite pool opened", "path", cfg.Path, "pool_size", size)

	return &pool{
		inner:  inner,
		logger: logger,
		path:   cfg.Path,
	}, nil
}

func (p *pool) take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := p.inner.Take(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to take sqlite connection")
	}
	return conn, nil
}

func (p *pool) put(conn *sqlite.Conn) {
	p.inner.Put(conn)
}

func (p *pool) close() error {
	if err := p.inner.Close(); err != nil {
		return goerr.Wrap(err, "failed to close sqlite pool", goerr.V("path", p.path))
	}
	p.logger.Info("sqlite pool closed", "path", p.path)
	return nil
}

// prepareConn runs once per connection on first use.
// WAL keeps readers from blocking the single writer.
func prepareConn(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA cache_size=-8192",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return goerr.Wrap(err, "failed to apply pragma", goerr.V("pragma", pragma))
		}
	}
	return nil
}

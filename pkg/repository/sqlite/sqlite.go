package sqlite

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/domain/interfaces"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schema = `
CREATE TABLE IF NOT EXISTS tickets (
	id         TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	category   TEXT NOT NULL,
	role       TEXT NOT NULL,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	issue      TEXT NOT NULL,
	status     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS tickets_created_at ON tickets (created_at, id);
`

// SQLite stores tickets in a single database file
type SQLite struct {
	pool   *pool
	ticket *ticketRepository
}

var _ interfaces.Repository = &SQLite{}

type Option func(*options)

type options struct {
	poolSize int
	logger   *slog.Logger
}

// WithPoolSize overrides the number of pooled connections
func WithPoolSize(n int) Option {
	return func(o *options) {
		o.poolSize = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New opens (creating if needed) the database at path and applies the schema
func New(ctx context.Context, path string, opts ...Option) (*SQLite, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	p, err := openPool(poolConfig{Path: path, PoolSize: o.poolSize, Logger: o.logger})
	if err != nil {
		return nil, err
	}

	if err := migrate(ctx, p); err != nil {
		_ = p.close()
		return nil, err
	}

	return &SQLite{
		pool:   p,
		ticket: newTicketRepository(p),
	}, nil
}

func migrate(ctx context.Context, p *pool) error {
	conn, err := p.take(ctx)
	if err != nil {
		return err
	}
	defer p.put(conn)

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return goerr.Wrap(err, "failed to apply schema")
	}
	return nil
}

func (s *SQLite) Ticket() interfaces.TicketRepository {
	return s.ticket
}

func (s *SQLite) Close() error {
	return s.pool.close()
}

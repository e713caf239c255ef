package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Client owns the pooled connection to the Postgres operation store.
type Client struct {
	db     *sql.DB
	logger *log.Logger
}

// ClientOption configures a Client at construction time.
type ClientOption func(*Client)

// WithLogger overrides the client's logger.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// Config holds the connection-pool settings for a Client.
type Config struct {
	DatabaseURL     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

// NewClient opens a pooled connection to the operation store and verifies
// it is reachable before returning.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("store: database URL cannot be empty")
	}

	c := &Client{logger: log.New(log.Writer(), "[Store] ", log.LstdFlags)}
	for _, opt := range opts {
		opt(c)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	c.db = db

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}

	c.logger.Printf("connected to operation store (max_conns=%d)", cfg.MaxOpenConns)
	return c, nil
}

// DB returns the underlying *sql.DB for use by repositories in this package.
func (c *Client) DB() *sql.DB { return c.db }

// Close releases the connection pool.
func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Ping verifies the connection is alive.
func (c *Client) Ping(ctx context.Context) error { return c.db.PingContext(ctx) }

type migration struct {
	version string
	sql     string
}

// MigrateUp applies all pending embedded migrations in order, tracked in a
// schema_migrations table, each inside its own transaction.
func (c *Client) MigrateUp(ctx context.Context) error {
	c.logger.Println("running migrations...")

	migrations, err := c.loadMigrations()
	if err != nil {
		return errors.Wrap(err, "store: load migrations")
	}

	applied, err := c.appliedMigrations(ctx)
	if err != nil {
		if !strings.Contains(err.Error(), "does not exist") {
			return fmt.Errorf("store: read applied migrations: %w", err)
		}
		applied = map[string]bool{}
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		c.logger.Printf("applying %s", m.version)
		if err := c.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("store: apply migration %s: %w", m.version, err)
		}
	}

	c.logger.Println("migrations complete")
	return nil
}

func (c *Client) loadMigrations() ([]migration, error) {
	var out []migration
	err := fs.WalkDir(migrationsFS, "migrations", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".sql") {
			return nil
		}
		content, err := migrationsFS.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "read embedded migration %s", path)
		}
		out = append(out, migration{
			version: strings.TrimSuffix(d.Name(), ".sql"),
			sql:     string(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

func (c *Client) appliedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := map[string]bool{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func (c *Client) applyMigration(ctx context.Context, m migration) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return err
	}
	return tx.Commit()
}

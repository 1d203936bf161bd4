// Package mssql wraps the go-mssqldb driver with the connection and query
// helpers the post-install phases need: bounded connect retries for a freshly
// started service, per-call timeouts, and database-scoped batch execution.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	// Registers the "sqlserver" driver.
	_ "github.com/microsoft/go-mssqldb"

	"github.com/sqlsweden/sqlZetup/internal/credentials"
	"github.com/sqlsweden/sqlZetup/internal/logger"
)

// Config describes one engine connection.
type Config struct {
	Host string
	Port int
	// Instance routes the connection through the SQL Browser service for a
	// named instance whose static port is not pinned yet. When set, Port is
	// ignored.
	Instance string
	Username string
	Password credentials.Secret

	// ConnectAttempts bounds the initial connect retry budget. A freshly
	// restarted service may refuse connections for a few seconds; anything
	// beyond this budget is a real failure. Defaults to 5.
	ConnectAttempts int
	// ConnectBackoff is the initial delay between attempts, doubled each
	// retry. Defaults to 2s.
	ConnectBackoff time.Duration
	// QueryTimeout bounds every statement. Defaults to 5m; tempdb moves can
	// be slow on first run.
	QueryTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 && c.Instance == "" {
		c.Port = 1433
	}
	if c.ConnectAttempts == 0 {
		c.ConnectAttempts = 5
	}
	if c.ConnectBackoff == 0 {
		c.ConnectBackoff = 2 * time.Second
	}
	if c.QueryTimeout == 0 {
		c.QueryTimeout = 5 * time.Minute
	}
}

// BuildDSN renders the sqlserver:// connection URL for the configuration.
func BuildDSN(cfg Config) string {
	cfg.applyDefaults()

	query := url.Values{}
	query.Set("database", "master")
	query.Set("app name", "sqlZetup")
	query.Set("encrypt", "true")
	query.Set("TrustServerCertificate", "true")

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.Username, cfg.Password.Value()),
		Host:     cfg.Host,
		RawQuery: query.Encode(),
	}
	if cfg.Instance != "" {
		u.Path = cfg.Instance
	} else {
		u.Host = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	}
	return u.String()
}

// Client is an open engine connection.
type Client struct {
	db  *sql.DB
	cfg Config
	log *logger.Logger
}

// Connect opens a connection and verifies it with a bounded retry budget.
func Connect(ctx context.Context, cfg Config, log *logger.Logger) (*Client, error) {
	cfg.applyDefaults()

	db, err := sql.Open("sqlserver", BuildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open connection: %w", err)
	}
	db.SetMaxOpenConns(1)

	ping := func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	}
	if err := withRetry(ctx, cfg.ConnectAttempts, cfg.ConnectBackoff, log, ping); err != nil {
		db.Close()
		target := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
		if cfg.Instance != "" {
			target = fmt.Sprintf(`%s\%s`, cfg.Host, cfg.Instance)
		}
		return nil, fmt.Errorf("engine not reachable at %s: %w", target, err)
	}

	return &Client{db: db, cfg: cfg, log: log}, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.db.Close()
}

// Exec runs a statement batch against the named database.
func (c *Client) Exec(ctx context.Context, database, batch string) error {
	execCtx, cancel := context.WithTimeout(ctx, c.cfg.QueryTimeout)
	defer cancel()

	_, err := c.db.ExecContext(execCtx, scopeToDatabase(database, batch))
	if err != nil {
		return fmt.Errorf("execute against %s: %w", database, err)
	}
	return nil
}

// QueryString runs a query expected to return a single string column in a
// single row. The second return reports whether a non-NULL row came back.
func (c *Client) QueryString(ctx context.Context, database, query string) (string, bool, error) {
	queryCtx, cancel := context.WithTimeout(ctx, c.cfg.QueryTimeout)
	defer cancel()

	var value sql.NullString
	err := c.db.QueryRowContext(queryCtx, scopeToDatabase(database, query)).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query against %s: %w", database, err)
	}
	return value.String, value.Valid, nil
}

// QueryInt runs a query expected to return a single integer value.
func (c *Client) QueryInt(ctx context.Context, database, query string) (int64, error) {
	queryCtx, cancel := context.WithTimeout(ctx, c.cfg.QueryTimeout)
	defer cancel()

	var value int64
	if err := c.db.QueryRowContext(queryCtx, scopeToDatabase(database, query)).Scan(&value); err != nil {
		return 0, fmt.Errorf("query against %s: %w", database, err)
	}
	return value, nil
}

// scopeToDatabase prefixes the batch with a USE statement. Scripts from the
// manifest run verbatim in their target database; the bracket quoting guards
// database names with spaces.
func scopeToDatabase(database, batch string) string {
	if database == "" || strings.EqualFold(database, "master") {
		return batch
	}
	return fmt.Sprintf("USE [%s];\n%s", strings.ReplaceAll(database, "]", "]]"), batch)
}

// withRetry runs fn up to attempts times with doubling backoff. The budget is
// deliberately small; unattended runs must fail rather than loop.
func withRetry(ctx context.Context, attempts int, backoff time.Duration, log *logger.Logger, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		log.WithFields(map[string]any{"attempt": attempt, "backoff": backoff.String()}).
			Warn(fmt.Sprintf("engine connection attempt failed: %v", lastErr))

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
	return lastErr
}

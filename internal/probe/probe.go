// Package probe verifies a finished installation by checking that the
// maintenance-script phase left its command-log table behind and that the
// engine answers with the expected sentinel.
package probe

import (
	"context"
	"fmt"
	"strings"

	"github.com/sqlsweden/sqlZetup/internal/logger"
	zetuperrors "github.com/sqlsweden/sqlZetup/pkg/errors"
)

// Sentinel values the probe query returns.
const (
	Sentinel        = "Table exists"
	SentinelMissing = "Table does not exist"
)

// Defaults match the command-log table the maintenance scripts install.
const (
	DefaultDatabase = "master"
	DefaultTable    = "dbo.CommandLog"
)

// Querier runs a scalar query. *mssql.Client satisfies it.
type Querier interface {
	QueryString(ctx context.Context, database, query string) (string, bool, error)
}

// Prober runs the verification check.
type Prober struct {
	q   Querier
	log *logger.Logger

	// Database and Table select the object the probe asserts on.
	Database string
	Table    string
}

func NewProber(q Querier, log *logger.Logger) *Prober {
	return &Prober{q: q, log: log, Database: DefaultDatabase, Table: DefaultTable}
}

func (p *Prober) query() string {
	return fmt.Sprintf(
		`SELECT CASE WHEN OBJECT_ID(N'%s', N'U') IS NOT NULL THEN N'%s' ELSE N'%s' END;`,
		p.Table, Sentinel, SentinelMissing)
}

// Verify asserts the probed table exists. Success requires the trimmed result
// to match Sentinel exactly; a missing table, an empty result set, a NULL, or
// any other value fails verification.
func (p *Prober) Verify(ctx context.Context) error {
	got, valid, err := p.q.QueryString(ctx, p.Database, p.query())
	if err != nil {
		return zetuperrors.NewVerificationError(Sentinel, "", err)
	}
	if !valid {
		return zetuperrors.NewVerificationError(Sentinel, "<no rows>", nil)
	}

	got = strings.TrimSpace(got)
	if got != Sentinel {
		return zetuperrors.NewVerificationError(Sentinel, got, nil)
	}

	p.log.WithFields(map[string]any{
		"database": p.Database,
		"table":    p.Table,
	}).Debug("verification probe succeeded")
	return nil
}

package scripts

import (
	"context"
	"fmt"
	"os"

	"github.com/sqlsweden/sqlZetup/internal/logger"
	zetuperrors "github.com/sqlsweden/sqlZetup/pkg/errors"
)

// Executor runs one T-SQL batch in the named database. *mssql.Client
// satisfies it.
type Executor interface {
	Exec(ctx context.Context, database, batch string) error
}

// Runner executes manifest entries strictly in order. Each script file is
// submitted as a single batch; the first failure aborts the remainder.
type Runner struct {
	exec Executor
	log  *logger.Logger
}

func NewRunner(exec Executor, log *logger.Logger) *Runner {
	return &Runner{exec: exec, log: log}
}

// Run pre-flights the whole manifest, then executes every entry in order.
// Returns the number of scripts that completed.
func (r *Runner) Run(ctx context.Context, entries []Entry) (int, error) {
	if err := Preflight(entries); err != nil {
		return 0, err
	}

	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return i, zetuperrors.NewExecutionError("scripts", err)
		}

		body, err := os.ReadFile(e.Path)
		if err != nil {
			return i, zetuperrors.NewExecutionError("scripts",
				fmt.Errorf("reading %s: %w", e.File, err))
		}

		r.log.WithFields(map[string]any{
			"script":   e.File,
			"database": e.Database,
		}).Info("running maintenance script")

		if err := r.exec.Exec(ctx, e.Database, string(body)); err != nil {
			return i, zetuperrors.NewExecutionError("scripts",
				fmt.Errorf("script %s against %s: %w", e.File, e.Database, err))
		}
	}

	return len(entries), nil
}

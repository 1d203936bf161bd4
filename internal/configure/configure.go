// Package configure applies the post-install instance configuration as an
// ordered sequence of T-SQL operations against the freshly installed engine.
package configure

import (
	"context"
	"fmt"

	"github.com/sqlsweden/sqlZetup/internal/logger"
	zetuperrors "github.com/sqlsweden/sqlZetup/pkg/errors"
)

// Executor runs one T-SQL batch. *mssql.Client satisfies it.
type Executor interface {
	Exec(ctx context.Context, database, batch string) error
}

// Result records the outcome of a single operation.
type Result struct {
	ID       string
	Name     string
	Advisory bool
	Err      error
}

// Configurator walks the operation sequence against one instance.
type Configurator struct {
	exec Executor
	log  *logger.Logger
}

func NewConfigurator(exec Executor, log *logger.Logger) *Configurator {
	return &Configurator{exec: exec, log: log}
}

// Apply runs every operation in order. A critical failure stops the sequence
// and returns an ExecutionError; advisory failures are recorded and the walk
// continues. The returned results cover every operation attempted.
func (c *Configurator) Apply(ctx context.Context, ops []Operation) ([]Result, error) {
	results := make([]Result, 0, len(ops))

	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return results, zetuperrors.NewExecutionError(op.ID, err)
		}

		c.log.WithFields(map[string]any{
			"operation": op.ID,
			"advisory":  op.Advisory,
		}).Debug("applying configuration operation")

		err := c.exec.Exec(ctx, op.Database, op.Batch)
		results = append(results, Result{ID: op.ID, Name: op.Name, Advisory: op.Advisory, Err: err})

		if err == nil {
			continue
		}
		if op.Advisory {
			c.log.Warn(fmt.Sprintf("advisory configuration %q failed: %v", op.ID, err))
			continue
		}
		return results, zetuperrors.NewExecutionError(op.ID, err)
	}

	return results, nil
}

// Warnings filters the advisory failures out of a result set.
func Warnings(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Err != nil && r.Advisory {
			out = append(out, r)
		}
	}
	return out
}

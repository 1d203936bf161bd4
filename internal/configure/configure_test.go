package configure

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	zetuperrors "github.com/sqlsweden/sqlZetup/pkg/errors"
)

type call struct {
	database string
	batch    string
}

type fakeExecutor struct {
	calls   []call
	failIDs map[string]error
	ops     []Operation
}

func (f *fakeExecutor) Exec(ctx context.Context, database, batch string) error {
	f.calls = append(f.calls, call{database: database, batch: batch})
	for _, op := range f.ops {
		if op.Batch == batch {
			if err, ok := f.failIDs[op.ID]; ok {
				return err
			}
		}
	}
	return nil
}

func testParams() Params {
	return Params{
		Port:                 1433,
		Cores:                4,
		TempDBFiles:          4,
		TempDBDataDir:        `T:\SQLTempDB`,
		TempDBDataFileSizeMB: 1024,
		TempDBLogFileSizeMB:  512,
	}
}

func TestOperationsOrderAndPolicy(t *testing.T) {
	t.Parallel()

	ops := Operations(testParams())

	var ids []string
	for _, op := range ops {
		ids = append(ids, op.ID)
	}
	require.Equal(t, []string{
		"advanced_options",
		"cost_threshold",
		"recovery_interval",
		"trace_flag_3226",
		"max_server_memory",
		"max_degree_of_parallelism",
		"power_plan",
		"errorlog_retention",
		"system_db_filegrowth",
		"job_history_retention",
		"tcp_port",
		"tempdb_geometry",
	}, ids)

	byID := make(map[string]Operation, len(ops))
	for _, op := range ops {
		byID[op.ID] = op
	}
	require.False(t, byID["advanced_options"].Advisory)
	require.False(t, byID["max_server_memory"].Advisory)
	require.False(t, byID["tcp_port"].Advisory)
	require.False(t, byID["tempdb_geometry"].Advisory)
	require.True(t, byID["power_plan"].Advisory)
	require.True(t, byID["cost_threshold"].Advisory)
}

func TestOperationBatches(t *testing.T) {
	t.Parallel()

	ops := Operations(testParams())
	byID := make(map[string]Operation, len(ops))
	for _, op := range ops {
		byID[op.ID] = op
	}

	require.Contains(t, byID["tcp_port"].Batch, "N'TcpPort', REG_SZ, N'1433'")
	require.Contains(t, byID["tcp_port"].Batch, "TcpDynamicPorts")
	require.Contains(t, byID["max_degree_of_parallelism"].Batch, "'max degree of parallelism', 4")
	require.Equal(t, "msdb", byID["job_history_retention"].Database)

	geo := byID["tempdb_geometry"].Batch
	require.Contains(t, geo, "NAME = N'tempdev', SIZE = 1024MB")
	require.Contains(t, geo, "NAME = N'templog', SIZE = 512MB")
	require.Contains(t, geo, "N'temp2'")
	require.Contains(t, geo, "N'temp4'")
	require.NotContains(t, geo, "N'temp5'")
	require.Contains(t, geo, `T:\SQLTempDB\temp2.ndf`)
}

func TestMaxDOPClamp(t *testing.T) {
	t.Parallel()

	require.Equal(t, 1, maxDOP(0))
	require.Equal(t, 1, maxDOP(1))
	require.Equal(t, 6, maxDOP(6))
	require.Equal(t, 8, maxDOP(32))
}

func TestApplyRunsEverythingInOrder(t *testing.T) {
	t.Parallel()

	ops := Operations(testParams())
	exec := &fakeExecutor{ops: ops}
	cfg := NewConfigurator(exec, nil)

	results, err := cfg.Apply(context.Background(), ops)
	require.NoError(t, err)
	require.Len(t, results, len(ops))
	require.Len(t, exec.calls, len(ops))
	require.Empty(t, Warnings(results))
	require.Equal(t, ops[0].Batch, exec.calls[0].batch)
}

func TestApplyAdvisoryFailureContinues(t *testing.T) {
	t.Parallel()

	ops := Operations(testParams())
	exec := &fakeExecutor{
		ops:     ops,
		failIDs: map[string]error{"power_plan": errors.New("xp_cmdshell is disabled")},
	}
	cfg := NewConfigurator(exec, nil)

	results, err := cfg.Apply(context.Background(), ops)
	require.NoError(t, err)
	require.Len(t, results, len(ops))

	warns := Warnings(results)
	require.Len(t, warns, 1)
	require.Equal(t, "power_plan", warns[0].ID)
	require.ErrorContains(t, warns[0].Err, "xp_cmdshell")
}

func TestApplyCriticalFailureAborts(t *testing.T) {
	t.Parallel()

	ops := Operations(testParams())
	exec := &fakeExecutor{
		ops:     ops,
		failIDs: map[string]error{"tcp_port": errors.New("access denied")},
	}
	cfg := NewConfigurator(exec, nil)

	results, err := cfg.Apply(context.Background(), ops)
	require.Error(t, err)

	var execErr *zetuperrors.ExecutionError
	require.ErrorAs(t, err, &execErr)
	require.Equal(t, "tcp_port", execErr.StepID)

	// tempdb_geometry comes after tcp_port and must not have run.
	last := results[len(results)-1]
	require.Equal(t, "tcp_port", last.ID)
	for _, c := range exec.calls {
		require.NotContains(t, c.batch, "tempdev")
	}
}

func TestApplyHonoursContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ops := Operations(testParams())
	exec := &fakeExecutor{ops: ops}
	cfg := NewConfigurator(exec, nil)

	results, err := cfg.Apply(ctx, ops)
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, results)
	require.Empty(t, exec.calls)
}

func TestSystemDatabaseGrowthCoversAllThree(t *testing.T) {
	t.Parallel()

	batch := systemDatabaseGrowthBatch()
	for _, name := range []string{"master", "msdb", "model", "mastlog", "MSDBData", "modellog"} {
		require.True(t, strings.Contains(batch, name), "missing %s", name)
	}
}

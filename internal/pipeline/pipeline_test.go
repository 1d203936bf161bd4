package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sqlsweden/sqlZetup/internal/logger"
	"github.com/sqlsweden/sqlZetup/internal/model"
	zetuperrors "github.com/sqlsweden/sqlZetup/pkg/errors"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Options{Level: "disabled"})
	require.NoError(t, err)
	return log
}

func TestExecuteRunsStepsInOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mkStep := func(id string) Step {
		return Step{ID: id, Name: id, Run: func(ctx context.Context) error {
			order = append(order, id)
			return nil
		}}
	}

	p := New(testLogger(t))
	summary, err := p.Execute(context.Background(), []Step{
		mkStep("validate_volumes"), mkStep("install_engine"), mkStep("configure_engine"),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"validate_volumes", "install_engine", "configure_engine"}, order)
	require.Len(t, summary.Results, 3)
	require.False(t, summary.Failed())
}

func TestExecuteCriticalFailureAborts(t *testing.T) {
	t.Parallel()

	ran := map[string]bool{}
	p := New(testLogger(t))
	steps := []Step{
		{ID: "first", Name: "first", Run: func(ctx context.Context) error {
			ran["first"] = true
			return nil
		}},
		{ID: "boom", Name: "boom", Run: func(ctx context.Context) error {
			return errors.New("setup exited with code 1")
		}},
		{ID: "after", Name: "after", Run: func(ctx context.Context) error {
			ran["after"] = true
			return nil
		}},
	}

	summary, err := p.Execute(context.Background(), steps)
	require.Error(t, err)

	var execErr *zetuperrors.ExecutionError
	require.True(t, errors.As(err, &execErr))
	require.Equal(t, "boom", execErr.StepID)

	require.True(t, ran["first"])
	require.False(t, ran["after"], "steps after a critical failure must not run")
	require.Len(t, summary.Results, 2)
	require.True(t, summary.Failed())
}

func TestExecuteAdvisoryFailureContinues(t *testing.T) {
	t.Parallel()

	ran := false
	p := New(testLogger(t))
	steps := []Step{
		{ID: "power_plan", Name: "power plan", Criticality: Advisory, Run: func(ctx context.Context) error {
			return errors.New("host does not expose power plans")
		}},
		{ID: "after", Name: "after", Run: func(ctx context.Context) error {
			ran = true
			return nil
		}},
	}

	summary, err := p.Execute(context.Background(), steps)
	require.NoError(t, err)
	require.True(t, ran)
	require.Equal(t, model.StatusWarning, summary.Results[0].Status)
	require.Len(t, summary.Warnings(), 1)
	require.False(t, summary.Failed())
}

func TestExecuteNothingToDoIsSuccess(t *testing.T) {
	t.Parallel()

	p := New(testLogger(t))
	summary, err := p.Execute(context.Background(), []Step{
		{ID: "install_ssms", Name: "install SSMS", Run: func(ctx context.Context) error {
			return ErrNothingToDo
		}},
	})
	require.NoError(t, err)
	require.Equal(t, model.StatusSuccess, summary.Results[0].Status)
	require.Contains(t, summary.Results[0].Message, "already satisfied")
}

func TestExecuteCleanupRunsOnFailure(t *testing.T) {
	t.Parallel()

	var cleaned []string
	p := New(testLogger(t))
	p.OnCleanup(func() { cleaned = append(cleaned, "first") })
	p.OnCleanup(func() { cleaned = append(cleaned, "second") })

	_, err := p.Execute(context.Background(), []Step{
		{ID: "boom", Name: "boom", Run: func(ctx context.Context) error {
			return errors.New("mid-run failure")
		}},
	})
	require.Error(t, err)
	// Reverse registration order, and on the failure path too.
	require.Equal(t, []string{"second", "first"}, cleaned)
}

func TestExecuteStepTimeout(t *testing.T) {
	t.Parallel()

	p := New(testLogger(t))
	steps := []Step{
		{ID: "hang", Name: "hang", Timeout: 20 * time.Millisecond, Run: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}},
	}

	summary, err := p.Execute(context.Background(), steps)
	require.Error(t, err)
	require.Equal(t, model.StatusFailed, summary.Results[0].Status)
	require.ErrorIs(t, summary.Results[0].Error, context.DeadlineExceeded)
}

func TestExecuteContextCancelledBeforeStep(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(testLogger(t))
	_, err := p.Execute(ctx, []Step{
		{ID: "never", Name: "never", Run: func(ctx context.Context) error { return nil }},
	})
	require.Error(t, err)
}

func TestExecuteNotifierSeesRunningAndFinal(t *testing.T) {
	t.Parallel()

	var statuses []string
	p := New(testLogger(t), WithNotifier(func(res model.StepResult) {
		statuses = append(statuses, res.Status)
	}))

	_, err := p.Execute(context.Background(), []Step{
		{ID: "ok", Name: "ok", Run: func(ctx context.Context) error { return nil }},
	})
	require.NoError(t, err)
	require.Equal(t, []string{model.StatusRunning, model.StatusSuccess}, statuses)
}

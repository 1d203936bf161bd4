package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sqlsweden/sqlZetup/internal/logger"
	"github.com/sqlsweden/sqlZetup/internal/model"
	zetuperrors "github.com/sqlsweden/sqlZetup/pkg/errors"
)

// ErrNothingToDo is returned by a step that found its work already done
// (for example the companion tool is already installed). The step is recorded
// as a success and the run continues.
var ErrNothingToDo = errors.New("nothing to do")

// Criticality determines what a step failure does to the run.
type Criticality int

const (
	// Critical failures abort the run immediately.
	Critical Criticality = iota
	// Advisory failures are logged as warnings and the run continues.
	Advisory
)

// Step is one unit of the installation procedure. Steps run strictly in
// order; there is no parallelism anywhere in this pipeline.
type Step struct {
	ID          string
	Name        string
	Criticality Criticality
	// Timeout bounds the step; zero means the pipeline default applies.
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Notifier receives step results as they are produced, for progress display.
type Notifier func(model.StepResult)

// Pipeline executes an ordered list of steps with fail-fast semantics and
// guaranteed cleanup on every exit path.
type Pipeline struct {
	log            *logger.Logger
	defaultTimeout time.Duration
	notify         Notifier
	cleanups       []func()
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDefaultTimeout sets the per-step timeout applied when a step does not
// declare its own. An unattended run that hangs has no recovery path, so the
// default is never unbounded.
func WithDefaultTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.defaultTimeout = d }
}

// WithNotifier registers a callback invoked for every step state change.
func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) { p.notify = n }
}

// New creates a Pipeline.
func New(log *logger.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		log:            log,
		defaultTimeout: 30 * time.Minute,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OnCleanup registers a function that runs when Execute returns, regardless
// of how the run terminated. Cleanups run in reverse registration order.
func (p *Pipeline) OnCleanup(fn func()) {
	if fn != nil {
		p.cleanups = append(p.cleanups, fn)
	}
}

// Execute runs the steps in order. The first critical failure aborts the run;
// advisory failures are recorded as warnings. The returned summary always
// contains a result for every step that started.
func (p *Pipeline) Execute(ctx context.Context, steps []Step) (*model.RunSummary, error) {
	defer func() {
		for i := len(p.cleanups) - 1; i >= 0; i-- {
			p.cleanups[i]()
		}
	}()

	summary := &model.RunSummary{}
	start := time.Now()
	defer func() { summary.Duration = time.Since(start) }()

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return summary, zetuperrors.NewExecutionError(step.ID, err)
		}

		res := p.runStep(ctx, step)
		summary.Results = append(summary.Results, res)

		if res.Status == model.StatusFailed {
			return summary, zetuperrors.NewExecutionError(step.ID, res.Error)
		}
	}

	return summary, nil
}

func (p *Pipeline) runStep(ctx context.Context, step Step) model.StepResult {
	stepCtx := ctx
	timeout := step.Timeout
	if timeout == 0 {
		timeout = p.defaultTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	p.emit(model.StepResult{StepID: step.ID, Status: model.StatusRunning, Timestamp: time.Now()})
	p.log.WithStep(step.ID).Debug("step started")

	started := time.Now()
	err := step.Run(stepCtx)
	elapsed := time.Since(started)

	res := model.StepResult{
		StepID:    step.ID,
		Duration:  elapsed,
		Timestamp: time.Now(),
	}

	switch {
	case err == nil:
		res.Status = model.StatusSuccess
		res.Message = fmt.Sprintf("%s completed", step.Name)
		p.log.WithStep(step.ID).Info("step completed")
	case errors.Is(err, ErrNothingToDo):
		res.Status = model.StatusSuccess
		res.Message = fmt.Sprintf("%s: already satisfied", step.Name)
		p.log.WithStep(step.ID).Info("step already satisfied")
	case step.Criticality == Advisory:
		res.Status = model.StatusWarning
		res.Message = err.Error()
		res.Error = err
		p.log.WithStep(step.ID).Warn(fmt.Sprintf("advisory step failed: %v", err))
	default:
		res.Status = model.StatusFailed
		res.Message = err.Error()
		res.Error = err
		p.log.WithStep(step.ID).Error(err, "step failed")
	}

	p.emit(res)
	return res
}

func (p *Pipeline) emit(res model.StepResult) {
	if p.notify != nil {
		p.notify(res)
	}
}

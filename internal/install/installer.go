// Package install drives the unattended SQL Server setup process.
package install

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sqlsweden/sqlZetup/internal/logger"
	"github.com/sqlsweden/sqlZetup/internal/model"
	zetuperrors "github.com/sqlsweden/sqlZetup/pkg/errors"
)

// Windows installers signal a pending reboot with this exit code.
const exitCodeRebootRequired = 3010

// Runner launches the setup process and captures its output streams.
type Runner interface {
	Run(ctx context.Context, exe string, args []string) (Output, error)
}

// Output is the captured result of a setup invocation.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ExecRunner runs the setup process through os/exec.
type ExecRunner struct{}

// Run launches exe with args, blocking until exit or context cancellation.
func (ExecRunner) Run(ctx context.Context, exe string, args []string) (Output, error) {
	cmd := exec.CommandContext(ctx, exe, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	if err != nil {
		return out, err
	}
	return out, nil
}

// Installer invokes the external setup program and interprets its outcome.
type Installer struct {
	runner Runner
	log    *logger.Logger
}

// NewInstaller creates an Installer.
func NewInstaller(runner Runner, log *logger.Logger) *Installer {
	return &Installer{runner: runner, log: log}
}

// Install runs setup with the assembled arguments. A launch failure or a
// nonzero exit (other than the reboot-pending code) is fatal; on success the
// captured output is classified into the reboot tri-state.
func (i *Installer) Install(ctx context.Context, setupPath string, args *Arguments) (model.RebootStatus, error) {
	i.log.WithFields(map[string]any{
		"setup": setupPath,
		"args":  strings.Join(args.Redacted(), " "),
	}).Debug("launching setup")

	out, err := i.runner.Run(ctx, setupPath, args.Build())
	if err != nil {
		return model.RebootUnknown, zetuperrors.NewExecutionError("install_engine",
			fmt.Errorf("setup process failed to run: %w", err))
	}

	switch out.ExitCode {
	case 0:
		// fall through to output classification
	case exitCodeRebootRequired:
		i.log.Warn("setup requested a reboot (exit code 3010)")
		return model.RebootRequired, nil
	default:
		return model.RebootUnknown, zetuperrors.NewExecutionError("install_engine",
			fmt.Errorf("setup exited with code %d: %s", out.ExitCode, tail(out.Stderr, 400)))
	}

	return ClassifyReboot(out.Stdout + "\n" + out.Stderr), nil
}

// ClassifyReboot turns the setup output into the reboot tri-state. Setup
// always prints a completion summary, so empty output cannot be classified
// and is reported as unknown; the pipeline treats unknown as reboot-required.
func ClassifyReboot(output string) model.RebootStatus {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return model.RebootUnknown
	}

	lowered := strings.ToLower(trimmed)
	if strings.Contains(lowered, "reboot") || strings.Contains(lowered, "restart required") {
		return model.RebootRequired
	}
	return model.NoReboot
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

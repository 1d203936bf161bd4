package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/sqlsweden/sqlZetup/internal/config"
	"github.com/sqlsweden/sqlZetup/internal/model"
	"github.com/sqlsweden/sqlZetup/internal/tui"
)

// postInstallStepIDs is the phase that needs a reachable engine; it is what
// "sqlzetup configure" replays after a reboot.
var postInstallStepIDs = []string{
	"connect_engine",
	"configure_instance",
	"sync_scripts",
	"run_scripts",
	"verify_install",
	"install_ssms",
}

// installStepIDs pre-seeds the TUI so pending steps are visible up front.
var installStepIDs = append([]string{
	"validate_environment",
	"validate_volumes",
	"locate_media",
	"install_engine",
}, postInstallStepIDs...)

// progressDisplay routes step results either into the Bubble Tea program or,
// when no terminal is attached, onto plain output lines.
type progressDisplay struct {
	program *tea.Program
	done    chan struct{}
	out     io.Writer
}

func newProgressDisplay(req config.Request, out io.Writer, stepIDs []string) *progressDisplay {
	d := &progressDisplay{out: out}
	if req.NonInteractive || !term.IsTerminal(int(os.Stdout.Fd())) {
		return d
	}

	d.program = tea.NewProgram(tui.NewModel(req.InstanceName, stepIDs))
	d.done = make(chan struct{})
	go func() {
		defer close(d.done)
		_, _ = d.program.Run()
	}()
	return d
}

func (d *progressDisplay) notify(res model.StepResult) {
	if d.program != nil {
		d.program.Send(tui.StepUpdateMsg{Result: res})
		return
	}
	if res.Status == model.StatusRunning {
		return
	}
	fmt.Fprintf(d.out, " %s %s\n", tui.StatusIcon(res.Status), res.StepID)
}

// confirm asks a yes/no question on the terminal, suspending the TUI for the
// duration of the prompt.
func (d *progressDisplay) confirm(prompt string) (bool, error) {
	if d.program != nil {
		if err := d.program.ReleaseTerminal(); err != nil {
			return false, err
		}
		defer d.program.RestoreTerminal() //nolint:errcheck
	}

	fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// finish delivers the final summary and waits for the TUI to shut down so
// the report prints onto a restored terminal.
func (d *progressDisplay) finish(summary model.RunSummary) {
	if d.program == nil {
		return
	}
	d.program.Send(tui.DoneMsg{Summary: summary})
	<-d.done
	d.program = nil
}

func (d *progressDisplay) close() {
	if d.program == nil {
		return
	}
	d.program.Quit()
	<-d.done
	d.program = nil
}

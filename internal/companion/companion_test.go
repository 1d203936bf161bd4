package companion

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sqlsweden/sqlZetup/internal/install"
	"github.com/sqlsweden/sqlZetup/internal/model"
	zetuperrors "github.com/sqlsweden/sqlZetup/pkg/errors"
)

type fakeDetector struct {
	found   bool
	version string
	err     error
}

func (f fakeDetector) Installed() (bool, string, error) {
	return f.found, f.version, f.err
}

type fakeRunner struct {
	exe      string
	args     []string
	output   install.Output
	err      error
	launched bool
}

func (f *fakeRunner) Run(ctx context.Context, exe string, args []string) (install.Output, error) {
	f.launched = true
	f.exe = exe
	f.args = args
	return f.output, f.err
}

type fakeFileInfo struct{ name string }

func (f fakeFileInfo) Name() string       { return f.name }
func (f fakeFileInfo) Size() int64        { return 0 }
func (f fakeFileInfo) Mode() fs.FileMode  { return 0 }
func (f fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (f fakeFileInfo) IsDir() bool        { return false }
func (f fakeFileInfo) Sys() any           { return nil }

func newTestInstaller(detect Detector, runner install.Runner) *Installer {
	inst := NewInstaller(detect, runner, nil)
	inst.stat = func(path string) (os.FileInfo, error) {
		return fakeFileInfo{name: path}, nil
	}
	return inst
}

func TestInstallSilentFlags(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	inst := newTestInstaller(fakeDetector{}, runner)

	reboot, err := inst.Install(context.Background(), `C:\media\SSMS-Setup.exe`)
	require.NoError(t, err)
	require.Equal(t, model.NoReboot, reboot)
	require.Equal(t, `C:\media\SSMS-Setup.exe`, runner.exe)
	require.Equal(t, []string{"/Install", "/Quiet", "/Norestart"}, runner.args)
}

func TestInstallSkipsWhenAlreadyPresent(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	inst := newTestInstaller(fakeDetector{found: true, version: "20.2"}, runner)

	_, err := inst.Install(context.Background(), `C:\media\SSMS-Setup.exe`)
	require.ErrorIs(t, err, ErrAlreadyInstalled)
	require.Contains(t, err.Error(), "20.2")
	require.False(t, runner.launched, "installer must not run when already present")
}

func TestInstallMissingInstaller(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	inst := NewInstaller(fakeDetector{}, runner, nil)
	inst.stat = func(string) (os.FileInfo, error) { return nil, os.ErrNotExist }

	_, err := inst.Install(context.Background(), `C:\media\SSMS-Setup.exe`)

	var preErr *zetuperrors.PreconditionError
	require.ErrorAs(t, err, &preErr)
	require.Equal(t, "ssms_installer", preErr.Check)
	require.False(t, runner.launched)
}

func TestInstallRebootPendingExitCode(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{output: install.Output{ExitCode: 3010}}
	inst := newTestInstaller(fakeDetector{}, runner)

	reboot, err := inst.Install(context.Background(), `C:\media\SSMS-Setup.exe`)
	require.NoError(t, err)
	require.Equal(t, model.RebootRequired, reboot)
}

func TestInstallFailureExitCode(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{output: install.Output{ExitCode: 1603}}
	inst := newTestInstaller(fakeDetector{}, runner)

	_, err := inst.Install(context.Background(), `C:\media\SSMS-Setup.exe`)

	var execErr *zetuperrors.ExecutionError
	require.ErrorAs(t, err, &execErr)
	require.Contains(t, err.Error(), "1603")
}

func TestInstallDetectorFailure(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	inst := newTestInstaller(fakeDetector{err: errors.New("registry unavailable")}, runner)

	_, err := inst.Install(context.Background(), `C:\media\SSMS-Setup.exe`)
	require.ErrorContains(t, err, "registry unavailable")
	require.False(t, runner.launched)
}

// Package companion installs SQL Server Management Studio alongside the
// engine when requested, skipping hosts that already have it.
package companion

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sqlsweden/sqlZetup/internal/install"
	"github.com/sqlsweden/sqlZetup/internal/logger"
	"github.com/sqlsweden/sqlZetup/internal/model"
	zetuperrors "github.com/sqlsweden/sqlZetup/pkg/errors"
)

// DisplayNamePrefix matches the uninstall-registry display name of every
// SSMS release.
const DisplayNamePrefix = "SQL Server Management Studio"

// ErrAlreadyInstalled reports that SSMS is present and nothing was done.
var ErrAlreadyInstalled = errors.New("management studio is already installed")

// Detector checks the host for an existing SSMS installation and reports the
// installed version when found.
type Detector interface {
	Installed() (found bool, version string, err error)
}

// Installer runs the SSMS setup program silently.
type Installer struct {
	detect Detector
	runner install.Runner
	log    *logger.Logger

	stat func(string) (os.FileInfo, error)
}

func NewInstaller(detect Detector, runner install.Runner, log *logger.Logger) *Installer {
	return &Installer{
		detect: detect,
		runner: runner,
		log:    log,
		stat:   os.Stat,
	}
}

// Install checks for an existing installation, then launches the installer
// with the silent flags. Exit code 3010 means installed but reboot pending.
func (i *Installer) Install(ctx context.Context, installerPath string) (model.RebootStatus, error) {
	found, version, err := i.detect.Installed()
	if err != nil {
		return model.RebootUnknown, zetuperrors.NewExecutionError("install_ssms",
			fmt.Errorf("detecting existing installation: %w", err))
	}
	if found {
		i.log.WithFields(map[string]any{"version": version}).Info("management studio already present")
		return model.NoReboot, fmt.Errorf("%w (version %s)", ErrAlreadyInstalled, version)
	}

	if _, err := i.stat(installerPath); err != nil {
		return model.RebootUnknown, zetuperrors.NewPreconditionError("ssms_installer",
			fmt.Sprintf("installer %q is not accessible", installerPath), err)
	}

	i.log.WithFields(map[string]any{"installer": installerPath}).Info("installing management studio")

	out, err := i.runner.Run(ctx, installerPath, []string{"/Install", "/Quiet", "/Norestart"})
	if err != nil {
		return model.RebootUnknown, zetuperrors.NewExecutionError("install_ssms",
			fmt.Errorf("installer failed to run: %w", err))
	}

	switch out.ExitCode {
	case 0:
		return model.NoReboot, nil
	case 3010:
		return model.RebootRequired, nil
	default:
		return model.RebootUnknown, zetuperrors.NewExecutionError("install_ssms",
			fmt.Errorf("installer exited with code %d", out.ExitCode))
	}
}

// Package volume validates the storage layout before setup runs: every
// target directory must live on a non-system volume formatted with a 64 KiB
// allocation unit size.
package volume

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/sqlsweden/sqlZetup/internal/logger"
	zetuperrors "github.com/sqlsweden/sqlZetup/pkg/errors"
)

// RequiredAllocationUnit is the allocation unit size (bytes) SQL Server data
// volumes are expected to use.
const RequiredAllocationUnit int64 = 65536

// Inspector answers questions about the host that require OS facilities.
// The Windows implementation uses WMI; tests inject fakes.
type Inspector interface {
	// SystemDrive returns the OS volume, e.g. "C:".
	SystemDrive() (string, error)
	// AllocationUnitSize returns the block size of the volume with the given
	// drive letter, e.g. "E:".
	AllocationUnitSize(drive string) (int64, error)
	// IsElevated reports whether the process runs with administrator rights.
	IsElevated() (bool, error)
	// IsDomainJoined reports whether the machine is a domain member.
	IsDomainJoined() (bool, error)
}

// Confirmer resolves an interactive yes/no decision. Non-interactive runs
// never call it; policy decides instead.
type Confirmer func(prompt string) (bool, error)

// Policy controls the non-interactive reaction to an allocation unit
// mismatch.
type Policy struct {
	// AllocUnitFailFast aborts on mismatch; otherwise mismatches are warned
	// about and the run continues.
	AllocUnitFailFast bool
	NonInteractive    bool
}

// Validator checks the environment and the storage volumes for one run.
type Validator struct {
	inspector Inspector
	confirm   Confirmer
	log       *logger.Logger
	policy    Policy

	stat  func(string) (os.FileInfo, error)
	mkdir func(string) error
}

// NewValidator creates a Validator.
func NewValidator(inspector Inspector, confirm Confirmer, log *logger.Logger, policy Policy) *Validator {
	return &Validator{
		inspector: inspector,
		confirm:   confirm,
		log:       log,
		policy:    policy,
		stat:      os.Stat,
		mkdir:     func(dir string) error { return os.MkdirAll(dir, 0o755) },
	}
}

var driveLetterPattern = regexp.MustCompile(`^([A-Za-z]):`)

// DriveLetter extracts the drive letter ("E:") from a Windows path. Paths
// without one (UNC shares, relative paths) are rejected: every storage
// directory must name a local volume.
func DriveLetter(path string) (string, error) {
	matches := driveLetterPattern.FindStringSubmatch(path)
	if matches == nil {
		return "", fmt.Errorf("path %q has no drive letter", path)
	}
	return strings.ToUpper(matches[1]) + ":", nil
}

// CheckEnvironment verifies administrator rights and domain membership.
func (v *Validator) CheckEnvironment() error {
	elevated, err := v.inspector.IsElevated()
	if err != nil {
		return zetuperrors.NewPreconditionError("privileges", "cannot determine elevation", err)
	}
	if !elevated {
		return zetuperrors.NewPreconditionError("privileges",
			"administrator rights are required for an unattended install", nil)
	}

	joined, err := v.inspector.IsDomainJoined()
	if err != nil {
		return zetuperrors.NewPreconditionError("domain", "cannot determine domain membership", err)
	}
	if !joined {
		return zetuperrors.NewPreconditionError("domain",
			"machine is not joined to a domain", nil)
	}

	return nil
}

// CheckDirs validates every storage directory: the path exists (created after
// confirmation when missing), is not on the system drive, and its volume uses
// the required allocation unit size. System-drive usage is always a hard
// abort; an allocation unit mismatch follows the policy.
func (v *Validator) CheckDirs(dirs []string) error {
	systemDrive, err := v.inspector.SystemDrive()
	if err != nil {
		return zetuperrors.NewPreconditionError("system-drive", "cannot determine system drive", err)
	}
	systemDrive = strings.ToUpper(systemDrive)

	seen := map[string]bool{}
	for _, dir := range dirs {
		drive, err := DriveLetter(dir)
		if err != nil {
			return zetuperrors.NewPreconditionError("storage-path", err.Error(), err)
		}

		if drive == systemDrive {
			return zetuperrors.NewPreconditionError("system-drive",
				fmt.Sprintf("%s is on the system volume %s", dir, systemDrive), nil)
		}

		if err := v.ensureDir(dir); err != nil {
			return err
		}

		if seen[drive] {
			continue
		}
		seen[drive] = true

		if err := v.checkAllocationUnit(drive); err != nil {
			return err
		}
	}

	return nil
}

func (v *Validator) ensureDir(dir string) error {
	info, err := v.stat(dir)
	if err == nil {
		if !info.IsDir() {
			return zetuperrors.NewPreconditionError("storage-path",
				fmt.Sprintf("%s exists but is not a directory", dir), nil)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return zetuperrors.NewPreconditionError("storage-path",
			fmt.Sprintf("cannot stat %s", dir), err)
	}

	if !v.policy.NonInteractive {
		ok, err := v.confirm(fmt.Sprintf("Directory %s does not exist. Create it?", dir))
		if err != nil {
			return zetuperrors.NewPreconditionError("storage-path", "directory confirmation failed", err)
		}
		if !ok {
			return zetuperrors.NewPreconditionError("storage-path",
				fmt.Sprintf("%s does not exist and creation was declined", dir), nil)
		}
	}

	if err := v.mkdir(dir); err != nil {
		return zetuperrors.NewPreconditionError("storage-path",
			fmt.Sprintf("cannot create %s", dir), err)
	}
	v.log.WithFields(map[string]any{"dir": dir}).Info("created storage directory")
	return nil
}

func (v *Validator) checkAllocationUnit(drive string) error {
	size, err := v.inspector.AllocationUnitSize(drive)
	if err != nil {
		return zetuperrors.NewPreconditionError("allocation-unit",
			fmt.Sprintf("cannot query volume %s", drive), err)
	}
	if size == RequiredAllocationUnit {
		return nil
	}

	msg := fmt.Sprintf("volume %s uses a %d byte allocation unit, expected %d",
		drive, size, RequiredAllocationUnit)

	if v.policy.NonInteractive {
		if v.policy.AllocUnitFailFast {
			return zetuperrors.NewPreconditionError("allocation-unit", msg, nil)
		}
		v.log.Warn(msg)
		return nil
	}

	ok, err := v.confirm(msg + ". Continue anyway?")
	if err != nil {
		return zetuperrors.NewPreconditionError("allocation-unit", "confirmation failed", err)
	}
	if !ok {
		return zetuperrors.NewPreconditionError("allocation-unit", msg, nil)
	}
	v.log.Warn(msg + " (operator accepted)")
	return nil
}

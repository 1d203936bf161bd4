//go:build windows

package media

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// diskImageMounter drives the OS disk-image facilities through PowerShell.
// Mount/dismount are consumed as black boxes; only the resulting drive letter
// is interpreted.
type diskImageMounter struct{}

// NewMounter returns the platform Mounter.
func NewMounter() Mounter {
	return &diskImageMounter{}
}

func (m *diskImageMounter) Mount(ctx context.Context, imagePath string) (string, error) {
	// -Access ReadOnly keeps the medium immutable for the whole run.
	script := fmt.Sprintf(
		`(Mount-DiskImage -ImagePath %q -Access ReadOnly -PassThru | Get-Volume).DriveLetter`,
		imagePath)

	out, err := exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", script).Output()
	if err != nil {
		return "", fmt.Errorf("Mount-DiskImage failed: %w", err)
	}

	letter := strings.TrimSpace(string(out))
	if len(letter) != 1 {
		return "", fmt.Errorf("unexpected drive letter %q from Mount-DiskImage", letter)
	}
	return strings.ToUpper(letter) + ":", nil
}

func (m *diskImageMounter) Dismount(ctx context.Context, imagePath string) error {
	script := fmt.Sprintf(`Dismount-DiskImage -ImagePath %q | Out-Null`, imagePath)
	if err := exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", script).Run(); err != nil {
		return fmt.Errorf("Dismount-DiskImage failed: %w", err)
	}
	return nil
}

//go:build !windows

package media

import (
	"context"
	"fmt"
)

type stubMounter struct{}

// NewMounter returns the platform Mounter.
func NewMounter() Mounter {
	return &stubMounter{}
}

func (*stubMounter) Mount(ctx context.Context, imagePath string) (string, error) {
	return "", fmt.Errorf("disk image mounting is only available on Windows")
}

func (*stubMounter) Dismount(ctx context.Context, imagePath string) error {
	return fmt.Errorf("disk image mounting is only available on Windows")
}

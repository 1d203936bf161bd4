//go:build !windows

package volume

import "fmt"

// stubInspector stands in on non-Windows platforms, where volume inspection
// is not available.
type stubInspector struct{}

// NewInspector returns the platform inspector.
func NewInspector() Inspector {
	return &stubInspector{}
}

func (*stubInspector) SystemDrive() (string, error) {
	return "", fmt.Errorf("volume inspection is only available on Windows")
}

func (*stubInspector) AllocationUnitSize(drive string) (int64, error) {
	return 0, fmt.Errorf("volume inspection is only available on Windows")
}

func (*stubInspector) IsElevated() (bool, error) {
	return false, fmt.Errorf("volume inspection is only available on Windows")
}

func (*stubInspector) IsDomainJoined() (bool, error) {
	return false, fmt.Errorf("volume inspection is only available on Windows")
}

//go:build !windows

package companion

import "errors"

// RegistryDetector finds SSMS through the Windows uninstall registry.
type RegistryDetector struct{}

// Installed is only available on Windows.
func (RegistryDetector) Installed() (bool, string, error) {
	return false, "", errors.New("registry detection is only available on Windows")
}

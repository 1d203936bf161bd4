//go:build windows

package companion

import (
	"strings"

	"golang.org/x/sys/windows/registry"
)

// uninstallHives are the registry paths that list installed software; the
// WOW6432Node hive covers 32-bit installers on 64-bit Windows.
var uninstallHives = []string{
	`SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`,
	`SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`,
}

// RegistryDetector finds SSMS through the Windows uninstall registry.
type RegistryDetector struct{}

// Installed scans both uninstall hives for a display name starting with
// DisplayNamePrefix.
func (RegistryDetector) Installed() (bool, string, error) {
	for _, hive := range uninstallHives {
		found, version, err := scanHive(hive)
		if err != nil {
			return false, "", err
		}
		if found {
			return true, version, nil
		}
	}
	return false, "", nil
}

func scanHive(path string) (bool, string, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, path, registry.READ)
	if err == registry.ErrNotExist {
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}
	defer key.Close()

	names, err := key.ReadSubKeyNames(-1)
	if err != nil {
		return false, "", err
	}

	for _, name := range names {
		sub, err := registry.OpenKey(key, name, registry.QUERY_VALUE)
		if err != nil {
			continue
		}

		display, _, err := sub.GetStringValue("DisplayName")
		if err != nil {
			sub.Close()
			continue
		}
		if strings.HasPrefix(display, DisplayNamePrefix) {
			version, _, _ := sub.GetStringValue("DisplayVersion")
			sub.Close()
			return true, version, nil
		}
		sub.Close()
	}

	return false, "", nil
}

//go:build windows

package volume

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"golang.org/x/sys/windows"
)

// WMIInspector answers volume and environment questions through WMI and the
// Windows token APIs.
type WMIInspector struct{}

// NewInspector returns the platform inspector.
func NewInspector() Inspector {
	return &WMIInspector{}
}

// SystemDrive returns the OS volume from the environment, e.g. "C:".
func (i *WMIInspector) SystemDrive() (string, error) {
	drive := os.Getenv("SystemDrive")
	if drive == "" {
		return "", fmt.Errorf("SystemDrive environment variable is not set")
	}
	return strings.ToUpper(drive), nil
}

// IsElevated reports whether the current token carries administrator rights.
func (i *WMIInspector) IsElevated() (bool, error) {
	return windows.GetCurrentProcessToken().IsElevated(), nil
}

// IsDomainJoined queries Win32_ComputerSystem.PartOfDomain.
func (i *WMIInspector) IsDomainJoined() (bool, error) {
	var joined bool
	err := i.withWMI(func(service *ole.IDispatch) error {
		resultRaw, err := oleutil.CallMethod(service, "ExecQuery",
			"SELECT PartOfDomain FROM Win32_ComputerSystem")
		if err != nil {
			return fmt.Errorf("WMI query failed: %w", err)
		}
		result := resultRaw.ToIDispatch()
		defer result.Release()

		itemRaw, err := oleutil.CallMethod(result, "ItemIndex", 0)
		if err != nil {
			return fmt.Errorf("no Win32_ComputerSystem instance: %w", err)
		}
		item := itemRaw.ToIDispatch()
		defer item.Release()

		partVar, err := oleutil.GetProperty(item, "PartOfDomain")
		if err != nil {
			return fmt.Errorf("PartOfDomain not readable: %w", err)
		}
		joined = partVar.Value() == true
		return nil
	})
	return joined, err
}

// AllocationUnitSize queries Win32_Volume.BlockSize for the given drive
// letter, e.g. "E:".
func (i *WMIInspector) AllocationUnitSize(drive string) (int64, error) {
	var size int64
	err := i.withWMI(func(service *ole.IDispatch) error {
		query := fmt.Sprintf("SELECT BlockSize FROM Win32_Volume WHERE DriveLetter = '%s'", drive)
		resultRaw, err := oleutil.CallMethod(service, "ExecQuery", query)
		if err != nil {
			return fmt.Errorf("WMI query failed: %w", err)
		}
		result := resultRaw.ToIDispatch()
		defer result.Release()

		countVar, err := oleutil.GetProperty(result, "Count")
		if err != nil {
			return fmt.Errorf("cannot read result count: %w", err)
		}
		if int(countVar.Val) == 0 {
			return fmt.Errorf("no volume with drive letter %s", drive)
		}

		itemRaw, err := oleutil.CallMethod(result, "ItemIndex", 0)
		if err != nil {
			return fmt.Errorf("cannot read volume: %w", err)
		}
		item := itemRaw.ToIDispatch()
		defer item.Release()

		blockVar, err := oleutil.GetProperty(item, "BlockSize")
		if err != nil {
			return fmt.Errorf("BlockSize not readable: %w", err)
		}

		switch v := blockVar.Value().(type) {
		case int32:
			size = int64(v)
		case int64:
			size = v
		case uint32:
			size = int64(v)
		case uint64:
			size = int64(v)
		case string:
			// Win32_Volume reports BlockSize as uint64, which OLE often
			// surfaces as a string.
			if _, err := fmt.Sscanf(v, "%d", &size); err != nil {
				return fmt.Errorf("unexpected BlockSize value %q", v)
			}
		default:
			return fmt.Errorf("unexpected BlockSize type %T", v)
		}
		return nil
	})
	return size, err
}

// withWMI connects to root\cimv2 and invokes fn with the service object.
func (i *WMIInspector) withWMI(fn func(service *ole.IDispatch) error) error {
	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		// Error code 1 is S_FALSE: COM was already initialized on this thread.
		oleErr, ok := err.(*ole.OleError)
		if !ok || oleErr.Code() != 1 {
			return fmt.Errorf("COM initialization failed: %w", err)
		}
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("WbemScripting.SWbemLocator")
	if err != nil {
		return fmt.Errorf("failed to create WMI locator: %w", err)
	}
	defer unknown.Release()

	wmi, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return fmt.Errorf("failed to query WMI interface: %w", err)
	}
	defer wmi.Release()

	serviceRaw, err := oleutil.CallMethod(wmi, "ConnectServer", "", `root\cimv2`)
	if err != nil {
		return fmt.Errorf("failed to connect to WMI: %w", err)
	}
	service := serviceRaw.ToIDispatch()
	defer service.Release()

	return fn(service)
}

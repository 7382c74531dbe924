//go:build windows

package module

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"sigscan/memory"
	"sigscan/memory/memory_map"
)

// moduleLocator resolves modules with GetModuleHandleEx and GetModuleInformation
type moduleLocator struct{}

// DefaultLocator returns the module locator of the current platform
func DefaultLocator() Locator {
	return moduleLocator{}
}

func (moduleLocator) Locate(name string) (Info, error) {
	// A nil name is the main executable
	var namePtr *uint16
	if name != "" {
		p, err := windows.UTF16PtrFromString(name)
		if err != nil {
			return Info{}, fmt.Errorf("invalid module name %q: %w", name, err)
		}
		namePtr = p
	}

	var handle windows.Handle
	if err := windows.GetModuleHandleEx(windows.GET_MODULE_HANDLE_EX_FLAG_UNCHANGED_REFCOUNT, namePtr, &handle); err != nil {
		return Info{}, fmt.Errorf("%w: %s: %v", ErrModuleNotFound, name, err)
	}

	var mi windows.ModuleInfo
	if err := windows.GetModuleInformation(windows.CurrentProcess(), handle, &mi, uint32(unsafe.Sizeof(mi))); err != nil {
		return Info{}, fmt.Errorf("GetModuleInformation failed for %s: %w", name, err)
	}

	if mi.BaseOfDll == 0 || mi.SizeOfImage == 0 {
		return Info{}, fmt.Errorf("%w: %s: empty module information", ErrModuleNotFound, name)
	}

	base := uint64(mi.BaseOfDll)
	end := base + uint64(mi.SizeOfImage)

	mm, err := memory_map.Query(base, end)
	if err != nil {
		return Info{}, fmt.Errorf("VirtualQuery failed for %s: %w", name, err)
	}

	return Info{
		Name:   name,
		Handle: uintptr(handle),
		Base:   memory.Address(base),
		Size:   memory.Size(mi.SizeOfImage),
		Spans:  memory_map.ReadableSpans(mm, base, end),
	}, nil
}

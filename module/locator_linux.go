//go:build linux

package module

import (
	"fmt"
	"os"

	"sigscan/memory/memory_map"
)

// mapsLocator finds modules in /proc/self/maps. Linux has no module handle,
// so Handle is set to the image base.
type mapsLocator struct{}

// DefaultLocator returns the module locator of the current platform
func DefaultLocator() Locator {
	return mapsLocator{}
}

func (mapsLocator) Locate(name string) (Info, error) {
	mm, err := memory_map.ReadSelf()
	if err != nil {
		return Info{}, fmt.Errorf("failed to read memory map: %w", err)
	}

	// An empty name is the main executable
	lookup := name
	if lookup == "" {
		exe, err := os.Executable()
		if err != nil {
			return Info{}, fmt.Errorf("%w: main executable: %v", ErrModuleNotFound, err)
		}
		lookup = exe
	}

	info, err := locateInMap(mm, lookup)
	if err != nil {
		return Info{}, err
	}
	info.Name = name
	return info, nil
}

package module

import (
	"fmt"
	"path/filepath"

	"sigscan/memory"
	"sigscan/memory/memory_map"
)

// Info is what a Locator knows about one loaded module
type Info struct {
	Name   string
	Handle uintptr        // OS handle; equals Base where the OS has no separate handle
	Base   memory.Address // Lowest address of the image
	Size   memory.Size    // Image size in bytes
	Spans  []memory.Region
}

// Locator finds a loaded module of the current process by name
type Locator interface {
	Locate(name string) (Info, error)
}

// LocatorFunc adapts a function to the Locator interface
type LocatorFunc func(name string) (Info, error)

func (f LocatorFunc) Locate(name string) (Info, error) {
	return f(name)
}

// locateInMap builds the Info of the file mapped as name. name matches either
// the full mapping path or its base name. The image spans from the lowest
// mapping of the file to the end of its highest one; Spans holds the readable
// parts of that range.
func locateInMap(mm []memory_map.MemoryMapItem, name string) (Info, error) {
	var path string
	var lo, hi uint64
	found := false

	for _, item := range mm {
		if item.Path == "" {
			continue
		}
		if item.Path != name && filepath.Base(item.Path) != name {
			continue
		}

		// The first file matching by base name wins; other files of the same name are skipped
		if found && item.Path != path {
			continue
		}

		if !found {
			path = item.Path
			lo, hi = item.Address, item.End()
			found = true
			continue
		}

		lo = min(lo, item.Address)
		hi = max(hi, item.End())
	}

	if !found {
		return Info{}, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}

	return Info{
		Name:   name,
		Handle: uintptr(lo),
		Base:   memory.Address(lo),
		Size:   memory.Size(hi - lo),
		Spans:  memory_map.ReadableSpans(mm, lo, hi),
	}, nil
}

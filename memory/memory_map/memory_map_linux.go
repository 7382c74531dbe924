//go:build linux

package memory_map

import (
	"os"
)

// ReadSelf reads and parses the memory map of the current process from /proc/self/maps
func ReadSelf() ([]MemoryMapItem, error) {
	file, err := os.Open("/proc/self/maps")
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

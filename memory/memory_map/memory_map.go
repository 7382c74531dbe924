package memory_map

import (
	"fmt"
	"sort"

	"sigscan/memory"
)

// MemoryMapItem represents a memory region in the current process's address space
type MemoryMapItem struct {
	Address uint64 // The starting address of the memory region
	Size    uint   // The size of the memory region in bytes
	Perms   string // Permissions (e.g., "r-xp" for read, execute, private)
	Path    string // Backing file, empty for anonymous mappings
}

// String returns a string representation of the memory map item
func (mmItem MemoryMapItem) String() string {
	return fmt.Sprintf("Address: %x, Size: %d, Perms: %s, Path: %s", mmItem.Address, mmItem.Size, mmItem.Perms, mmItem.Path)
}

func (mmItem MemoryMapItem) End() uint64 {
	return mmItem.Address + uint64(mmItem.Size)
}

func (mmItem MemoryMapItem) IsReadable() bool {
	return len(mmItem.Perms) > 0 && mmItem.Perms[0] == 'r'
}

func (mmItem MemoryMapItem) IsWritable() bool {
	return len(mmItem.Perms) > 1 && mmItem.Perms[1] == 'w'
}

func (mmItem MemoryMapItem) IsExecutable() bool {
	return len(mmItem.Perms) > 2 && mmItem.Perms[2] == 'x'
}

func (mmItem MemoryMapItem) Region() memory.Region {
	return memory.Region{Base: memory.Address(mmItem.Address), Size: memory.Size(mmItem.Size)}
}

// Sort orders the map by address, which FindRegion requires
func Sort(memoryMap []MemoryMapItem) {
	sort.Slice(memoryMap, func(i, j int) bool {
		return memoryMap[i].Address < memoryMap[j].Address
	})
}

// FindRegion returns the item containing addr. The map must be sorted.
func FindRegion(addr uint64, memoryMap []MemoryMapItem) *MemoryMapItem {
	i := sort.Search(len(memoryMap), func(i int) bool {
		return memoryMap[i].End() > addr
	})
	if i < len(memoryMap) && memoryMap[i].Address <= addr {
		return &memoryMap[i]
	}

	return nil
}

// ReadableSpans returns the readable parts of [start, end), merging adjacent
// readable items. The map must be sorted.
func ReadableSpans(memoryMap []MemoryMapItem, start, end uint64) []memory.Region {
	var spans []memory.Region

	for _, item := range memoryMap {
		if !item.IsReadable() || item.End() <= start || item.Address >= end {
			continue
		}

		lo := max(item.Address, start)
		hi := min(item.End(), end)

		if n := len(spans); n > 0 && spans[n-1].End() == memory.Address(lo) {
			spans[n-1].Size += memory.Size(hi - lo)
			continue
		}

		spans = append(spans, memory.Region{Base: memory.Address(lo), Size: memory.Size(hi - lo)})
	}

	return spans
}

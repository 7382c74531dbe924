package memory

import (
	"fmt"
	"sort"
)

// Address represents an absolute address in the current process
type Address uint64

func (a Address) ToString() string {
	return fmt.Sprintf("0x%X", uint64(a))
}

// Add offsets the address by a signed displacement
func (a Address) Add(offset int64) Address {
	return Address(int64(a) + offset)
}

// Size represents the size of a memory region
type Size uint

func (s Size) ToString() string {
	return fmt.Sprintf("%d bytes", uint(s))
}

// Region is a half-open address range [Base, Base+Size) that is known to be valid
type Region struct {
	Base Address
	Size Size
}

// NewRegion returns the region spanning [start, end)
func NewRegion(start, end Address) (Region, error) {
	if start > end {
		return Region{}, fmt.Errorf("%w: start %s is past end %s", ErrInvalidRange, start.ToString(), end.ToString())
	}
	return Region{Base: start, Size: Size(end - start)}, nil
}

// End returns the first address past the region
func (r Region) End() Address {
	return r.Base + Address(r.Size)
}

// Contains reports whether addr lies inside the region
func (r Region) Contains(addr Address) bool {
	return addr >= r.Base && addr < r.End()
}

// ContainsRange reports whether [addr, addr+size) lies inside the region
func (r Region) ContainsRange(addr Address, size Size) bool {
	if addr < r.Base || addr > r.End() {
		return false
	}
	return uint64(size) <= uint64(r.End()-addr)
}

// Check returns ErrOutOfRange when [addr, addr+size) is not inside the region
func (r Region) Check(addr Address, size Size) error {
	if !r.ContainsRange(addr, size) {
		return fmt.Errorf("%w: %s+%d outside [%s, %s)", ErrOutOfRange, addr.ToString(), size, r.Base.ToString(), r.End().ToString())
	}
	return nil
}

func (r Region) String() string {
	return fmt.Sprintf("[%s, %s)", r.Base.ToString(), r.End().ToString())
}

// MergeRegions returns a sorted copy of regions with overlapping and adjacent
// regions joined. Empty regions are dropped.
func MergeRegions(regions []Region) []Region {
	sorted := make([]Region, 0, len(regions))
	for _, r := range regions {
		if r.Size > 0 {
			sorted = append(sorted, r)
		}
	}

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Base < sorted[j].Base
	})

	var merged []Region
	for _, r := range sorted {
		if n := len(merged); n > 0 && r.Base <= merged[n-1].End() {
			if r.End() > merged[n-1].End() {
				merged[n-1].Size = Size(r.End() - merged[n-1].Base)
			}
			continue
		}
		merged = append(merged, r)
	}

	return merged
}

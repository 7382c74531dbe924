package memory

import (
	"unsafe"
)

// Direct reads process-local memory by dereferencing the address itself.
// A read of an unmapped address faults the process; prefer Self unless the
// range is known to be mapped.
type Direct struct{}

var _ Reader = Direct{}

func (Direct) ReadMemory(addr Address, size Size) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	if addr == 0 {
		return nil, ErrInvalidPointer
	}

	src := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), int(size))
	buf := make([]byte, size)
	copy(buf, src)
	return buf, nil
}

// AddressOf returns the address of the first byte of data
func AddressOf(data []byte) Address {
	if len(data) == 0 {
		return 0
	}
	return Address(uintptr(unsafe.Pointer(&data[0])))
}

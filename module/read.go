package module

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"
	"unsafe"

	"golang.org/x/exp/constraints"

	"sigscan/memory"
)

var _ memory.Reader = (*Module)(nil)

// Number is any fixed-width value Read can decode
type Number interface {
	constraints.Integer | constraints.Float
}

// stringReadChunk is how many bytes ReadString requests at a time
const stringReadChunk = 256

// Address returns Handle+offset, the address typed reads at offset use. The
// arithmetic is relative to the OS handle, not Base; the two are equal for
// every locator in this package.
func (m *Module) Address(offset int32) memory.Address {
	return memory.Address(m.handle).Add(int64(offset))
}

// Read reads a T at Handle+offset in native byte order. The value must lie
// entirely inside the image.
func Read[T Number](m *Module, offset int32) (T, error) {
	var value T
	size := memory.Size(unsafe.Sizeof(value))
	addr := m.Address(offset)

	if err := m.Region().Check(addr, size); err != nil {
		return value, err
	}

	data, err := m.reader.ReadMemory(addr, size)
	if err != nil {
		return value, fmt.Errorf("failed to read %s at %s: %w", size.ToString(), addr.ToString(), err)
	}

	copy(unsafe.Slice((*byte)(unsafe.Pointer(&value)), size), data)
	return value, nil
}

// Ptr returns a pointer to the T at Handle+offset. Writes through the pointer
// modify process memory directly, so it is only meaningful for modules of the
// current process whose page at that address is writable.
func Ptr[T any](m *Module, offset int32) (*T, error) {
	var zero T
	addr := m.Address(offset)

	if err := m.Region().Check(addr, memory.Size(unsafe.Sizeof(zero))); err != nil {
		return nil, err
	}

	return (*T)(unsafe.Pointer(uintptr(addr))), nil
}

// ReadString reads a NUL terminated UTF-8 string at Handle+offset. The read
// stops at the end of the image or after the configured maximum length,
// whichever comes first.
func (m *Module) ReadString(offset int32) (string, error) {
	addr := m.Address(offset)
	image := m.Region()

	if !image.Contains(addr) {
		return "", fmt.Errorf("%w: string at %s outside %s", memory.ErrOutOfRange, addr.ToString(), image)
	}

	limit := uint64(image.End() - addr)
	if uint64(m.maxStringLength) < limit {
		limit = uint64(m.maxStringLength)
	}

	var buf []byte
	for uint64(len(buf)) < limit {
		n := min(uint64(stringReadChunk), limit-uint64(len(buf)))
		chunkAddr := addr + memory.Address(len(buf))

		data, err := m.reader.ReadMemory(chunkAddr, memory.Size(n))
		if err != nil {
			return "", fmt.Errorf("failed to read string at %s: %w", chunkAddr.ToString(), err)
		}

		if i := bytes.IndexByte(data, 0); i >= 0 {
			buf = append(buf, data[:i]...)
			if !utf8.Valid(buf) {
				return "", &DecodeError{Address: addr, Length: len(buf)}
			}
			return string(buf), nil
		}

		buf = append(buf, data...)
	}

	return "", fmt.Errorf("%w: no terminator within %d bytes at %s", ErrUnterminatedString, limit, addr.ToString())
}

// ReadPointer reads a pointer-sized little-endian value at an absolute address inside the image
func (m *Module) ReadPointer(addr memory.Address) (uint64, error) {
	size := memory.Size(m.pointerSize)

	if err := m.Region().Check(addr, size); err != nil {
		return 0, err
	}

	data, err := m.reader.ReadMemory(addr, size)
	if err != nil {
		return 0, fmt.Errorf("failed to read pointer at %s: %w", addr.ToString(), err)
	}

	if m.pointerSize == 4 {
		return uint64(binary.LittleEndian.Uint32(data)), nil
	}
	return binary.LittleEndian.Uint64(data), nil
}

// readInt32 reads a little-endian signed 32-bit value at an absolute address inside the image
func (m *Module) readInt32(addr memory.Address) (int32, error) {
	if err := m.Region().Check(addr, 4); err != nil {
		return 0, err
	}

	data, err := m.reader.ReadMemory(addr, 4)
	if err != nil {
		return 0, fmt.Errorf("failed to read displacement at %s: %w", addr.ToString(), err)
	}

	return int32(binary.LittleEndian.Uint32(data)), nil
}

// ReadMemory reads raw bytes at an absolute address inside the image, making
// the descriptor itself a memory.Reader confined to its image
func (m *Module) ReadMemory(addr memory.Address, size memory.Size) ([]byte, error) {
	if err := m.Region().Check(addr, size); err != nil {
		return nil, err
	}
	return m.reader.ReadMemory(addr, size)
}

// Package memory provides the address-space abstraction the scanner reads through
package memory

import "errors"

var (
	// ErrAddressNotMapped is returned when a memory address is not found within any mapped region.
	ErrAddressNotMapped = errors.New("address not mapped")

	// ErrOutOfRange is returned when a read would leave the region it is bounded by.
	ErrOutOfRange = errors.New("address out of range")

	// ErrInvalidRange is returned for ranges whose start lies past their end.
	ErrInvalidRange = errors.New("invalid range")

	ErrInvalidPointer = errors.New("invalid pointer read")
)

// Reader is the memory accessor the scanner and module descriptor read through
type Reader interface {
	// ReadMemory reads size bytes at addr. The returned slice must not be retained
	// by the caller past the next call unless the implementation documents otherwise.
	ReadMemory(addr Address, size Size) ([]byte, error)
}

// ReaderFunc adapts a function to the Reader interface
type ReaderFunc func(addr Address, size Size) ([]byte, error)

func (f ReaderFunc) ReadMemory(addr Address, size Size) ([]byte, error) {
	return f(addr, size)
}

package module

import (
	"errors"
	"fmt"

	"sigscan/memory"
)

var (
	// ErrModuleNotFound is returned when the locator has no module by the requested name.
	ErrModuleNotFound = errors.New("module not found")

	// ErrUnsupportedPlatform is returned by the default locator where no module table is available.
	ErrUnsupportedPlatform = errors.New("module lookup not supported on this platform")

	// ErrDecode is returned when string bytes are not valid UTF-8.
	ErrDecode = errors.New("invalid utf-8 string")

	// ErrUnterminatedString is returned when no NUL byte is found before the read limit.
	ErrUnterminatedString = errors.New("unterminated string")
)

// DecodeError reports where an undecodable string was read from
type DecodeError struct {
	Address memory.Address
	Length  int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid utf-8 string of %d bytes at %s", e.Length, e.Address.ToString())
}

func (e *DecodeError) Unwrap() error {
	return ErrDecode
}

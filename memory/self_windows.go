//go:build windows

package memory

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// selfReader reads the current process through ReadProcessMemory so that
// unmapped addresses fail instead of faulting
type selfReader struct {
	handle windows.Handle
}

// Self returns a page-fault-safe Reader for the current process
func Self() Reader {
	return &selfReader{handle: windows.CurrentProcess()}
}

func (s *selfReader) ReadMemory(addr Address, size Size) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}

	buf := make([]byte, size)
	var bytesRead uintptr
	err := windows.ReadProcessMemory(s.handle, uintptr(addr), &buf[0], uintptr(size), &bytesRead)
	if err != nil {
		return nil, fmt.Errorf("ReadProcessMemory at %s failed: %w", addr.ToString(), err)
	}

	if bytesRead != uintptr(size) {
		return nil, fmt.Errorf("read incomplete: expected %d, got %d", size, bytesRead)
	}

	return buf, nil
}

//go:build linux

package memory

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// selfReader reads the current process through process_vm_readv so that
// unmapped addresses fail with EFAULT instead of faulting
type selfReader struct {
	pid int
}

// Self returns a page-fault-safe Reader for the current process
func Self() Reader {
	return &selfReader{pid: os.Getpid()}
}

func (s *selfReader) ReadMemory(addr Address, size Size) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	return processVMReadv(s.pid, addr, size)
}

func processVMReadv(pid int, remoteAddr Address, bytesToRead Size) ([]byte, error) {
	localBuf := make([]byte, bytesToRead)

	localIov := unix.Iovec{
		Base: &localBuf[0],
	}
	localIov.SetLen(int(bytesToRead))

	remoteIov := unix.RemoteIovec{
		Base: uintptr(remoteAddr),
		Len:  int(bytesToRead),
	}

	n, _, errno := unix.Syscall6(
		unix.SYS_PROCESS_VM_READV,
		uintptr(pid),
		uintptr(unsafe.Pointer(&localIov)),
		uintptr(1),
		uintptr(unsafe.Pointer(&remoteIov)),
		uintptr(1),
		uintptr(0),
	)

	if errno != 0 {
		if errno == unix.EFAULT {
			return nil, fmt.Errorf("%w: %s", ErrAddressNotMapped, remoteAddr.ToString())
		}
		return nil, fmt.Errorf("process_vm_readv failed: %s (errno: %d)", errno.Error(), errno)
	}

	if int(n) != int(bytesToRead) {
		return localBuf[:n], fmt.Errorf("partial read at %s: %d of %d bytes", remoteAddr.ToString(), n, bytesToRead)
	}

	return localBuf, nil
}

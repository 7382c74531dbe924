//go:build !linux && !windows

package memory

// Self returns a Reader for the current process. No fault-safe accessor is
// available on this platform, so reads go straight to memory.
func Self() Reader {
	return Direct{}
}

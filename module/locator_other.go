//go:build !linux && !windows

package module

import "fmt"

type unsupportedLocator struct{}

// DefaultLocator returns the module locator of the current platform
func DefaultLocator() Locator {
	return unsupportedLocator{}
}

func (unsupportedLocator) Locate(name string) (Info, error) {
	return Info{}, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, name)
}

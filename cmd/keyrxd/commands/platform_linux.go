//go:build linux

package commands

import (
	"io"

	"github.com/keyrx/keyrx/pkg/platform"
	"github.com/keyrx/keyrx/pkg/platform/linuxevdev"
)

// newNativeAdapter opens the real evdev/uinput adapter.
func newNativeAdapter() (platform.Adapter, io.Closer, error) {
	a, err := linuxevdev.New()
	if err != nil {
		return nil, nil, err
	}
	return a, a, nil
}

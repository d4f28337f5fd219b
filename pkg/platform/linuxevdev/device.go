//go:build linux

package linuxevdev

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/keyrx/keyrx/pkg/platform"
)

// inputDevice wraps one opened /dev/input/eventN node.
type inputDevice struct {
	path string
	file *os.File
}

func openInputDevice(path string) (*inputDevice, error) {
	f, err := os.OpenFile(filepath.Clean(path), os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("linuxevdev: open %s: %w", path, err)
	}
	return &inputDevice{path: path, file: f}, nil
}

// identity issues EVIOCGID to read the kernel's bus/vendor/product/
// version quadruple and folds it into a platform.DeviceIdentity. Serial
// is left empty: evdev exposes no per-device serial ioctl, only the
// USB-layer one this package does not open a second fd for.
func (d *inputDevice) identity() (platform.DeviceIdentity, error) {
	var id inputID
	if err := ioctl(d.file.Fd(), evIOCGID, &id); err != nil {
		return platform.DeviceIdentity{}, fmt.Errorf("linuxevdev: EVIOCGID %s: %w", d.path, err)
	}
	return platform.DeviceIdentity{
		VendorID:  id.Vendor,
		ProductID: id.Product,
		Path:      d.path,
	}, nil
}

// grab requests (or releases) exclusive access so other consumers of
// the raw device (including the X/Wayland input stack) stop seeing
// events this adapter already remapped.
func (d *inputDevice) grab(on bool) error {
	var v int32
	if on {
		v = 1
	}
	return ioctl(d.file.Fd(), evIOCGRAB, &v)
}

// readLoop blocks reading fixed-size raw kernel events until the file
// is closed, calling onKey for each EV_KEY transition. Runs on its own
// goroutine per spec.md §4.3 ("if the OS API is callback-based the
// adapter owns the thread"); onKey must only enqueue and return.
func (d *inputDevice) readLoop(onKey func(code uint16, value int32)) error {
	buf := make([]byte, 24) // sizeof(struct input_event) on 64-bit ABI
	for {
		if _, err := readFull(d.file, buf); err != nil {
			return err
		}
		var ev rawEvent
		ev.Sec = int64(binary.LittleEndian.Uint64(buf[0:8]))
		ev.Usec = int64(binary.LittleEndian.Uint64(buf[8:16]))
		ev.Type = binary.LittleEndian.Uint16(buf[16:18])
		ev.Code = binary.LittleEndian.Uint16(buf[18:20])
		ev.Value = int32(binary.LittleEndian.Uint32(buf[20:24]))

		if ev.Type != evKey {
			continue
		}
		onKey(ev.Code, ev.Value)
	}
}

func readFull(f *os.File, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := f.Read(buf[n:])
		if err != nil {
			return n, err
		}
		n += m
	}
	return n, nil
}

func (d *inputDevice) close() error {
	return d.file.Close()
}

func listEventDevicePaths() ([]string, error) {
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return nil, fmt.Errorf("linuxevdev: glob /dev/input: %w", err)
	}
	return paths, nil
}

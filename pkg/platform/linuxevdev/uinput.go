//go:build linux

package linuxevdev

import (
	"encoding/binary"
	"fmt"
	"os"
)

// uinputDevice owns the virtual output device created through
// /dev/uinput: every synthetic key keyrx injects is written here, then
// the real input stack sees it exactly as if a physical keyboard had
// produced it.
type uinputDevice struct {
	file *os.File
}

func openUinput() (*uinputDevice, error) {
	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY|os.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("linuxevdev: open /dev/uinput: %w", err)
	}

	if err := ioctl[int](f.Fd(), uiSetEvBit, ptr(int(evKey))); err != nil {
		f.Close()
		return nil, fmt.Errorf("linuxevdev: UI_SET_EVBIT EV_KEY: %w", err)
	}
	for code := range toLinux {
		if err := ioctl[int](f.Fd(), uiSetKeyBit, ptr(int(code))); err != nil {
			f.Close()
			return nil, fmt.Errorf("linuxevdev: UI_SET_KEYBIT %d: %w", code, err)
		}
	}

	var setup uinputSetup
	setup.ID = inputID{Bustype: 0x03, Vendor: 0x1d6b, Product: 0x0101, Version: 1}
	copy(setup.Name[:], "keyrx virtual keyboard")
	if err := ioctl(f.Fd(), uiDevCreate, &setup); err != nil {
		f.Close()
		return nil, fmt.Errorf("linuxevdev: UI_DEV_SETUP/CREATE: %w", err)
	}

	return &uinputDevice{file: f}, nil
}

func ptr[T any](v T) *T { return &v }

// writeKey emits an EV_KEY event for code/value followed by a
// SYN_REPORT, the minimal sequence the kernel input core requires to
// treat the key transition as a complete report.
func (u *uinputDevice) writeKey(code uint16, value int32) error {
	if err := u.writeRaw(evKey, code, value); err != nil {
		return err
	}
	return u.writeRaw(evSyn, synReport, 0)
}

func (u *uinputDevice) writeRaw(evType, code uint16, value int32) error {
	buf := make([]byte, 24)
	// Sec/Usec (buf[0:16]) left zero: the kernel timestamps uinput
	// events itself on ingestion.
	binary.LittleEndian.PutUint16(buf[16:18], evType)
	binary.LittleEndian.PutUint16(buf[18:20], code)
	binary.LittleEndian.PutUint32(buf[20:24], uint32(value))
	_, err := u.file.Write(buf)
	return err
}

func (u *uinputDevice) close() error {
	_ = ioctl[int](u.file.Fd(), uiDevDestroy, nil)
	return u.file.Close()
}

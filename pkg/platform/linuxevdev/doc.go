// Package linuxevdev is the reference OS-specific platform.Adapter:
// it reads raw key events from /dev/input/eventN via evdev and injects
// synthetic events through a virtual /dev/uinput device. It is built
// only on linux; every other platform's build relies on pkg/platform/sim
// (via --test-mode) until a native adapter is written.
package linuxevdev

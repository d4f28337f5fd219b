package linuxevdev

import "github.com/keyrx/keyrx/pkg/keycode"

// Linux KEY_* constants (linux/input-event-codes.h) this adapter
// translates. Not exhaustive — covers the same catalog subset
// pkg/keycode documents names for.
const (
	linuxKeyEsc        = 1
	linuxKey1          = 2
	linuxKey2          = 3
	linuxKey3          = 4
	linuxKey4          = 5
	linuxKey5          = 6
	linuxKey6          = 7
	linuxKey7          = 8
	linuxKey8          = 9
	linuxKey9          = 10
	linuxKey0          = 11
	linuxKeyQ          = 16
	linuxKeyW          = 17
	linuxKeyE          = 18
	linuxKeyR          = 19
	linuxKeyT          = 20
	linuxKeyY          = 21
	linuxKeyU          = 22
	linuxKeyI          = 23
	linuxKeyO          = 24
	linuxKeyP          = 25
	linuxKeyEnter      = 28
	linuxKeyLeftCtrl   = 29
	linuxKeyA          = 30
	linuxKeyS          = 31
	linuxKeyD          = 32
	linuxKeyF          = 33
	linuxKeyG          = 34
	linuxKeyH          = 35
	linuxKeyJ          = 36
	linuxKeyK          = 37
	linuxKeyL          = 38
	linuxKeyLeftShift  = 42
	linuxKeyZ          = 44
	linuxKeyX          = 45
	linuxKeyC          = 46
	linuxKeyV          = 47
	linuxKeyB          = 48
	linuxKeyN          = 49
	linuxKeyM          = 50
	linuxKeyRightShift = 54
	linuxKeyLeftAlt    = 56
	linuxKeySpace      = 57
	linuxKeyCapsLock   = 58
	linuxKeyF1         = 59
	linuxKeyF2         = 60
	linuxKeyF3         = 61
	linuxKeyF4         = 62
	linuxKeyF5         = 63
	linuxKeyF6         = 64
	linuxKeyF7         = 65
	linuxKeyF8         = 66
	linuxKeyF9         = 67
	linuxKeyF10        = 68
	linuxKeyF11        = 87
	linuxKeyF12        = 88
	linuxKeyRightCtrl  = 97
	linuxKeyRightAlt   = 100
	linuxKeyHome       = 102
	linuxKeyUp         = 103
	linuxKeyPageUp     = 104
	linuxKeyLeft       = 105
	linuxKeyRight      = 106
	linuxKeyEnd        = 107
	linuxKeyDown       = 108
	linuxKeyPageDown   = 109
	linuxKeyInsert     = 110
	linuxKeyDelete     = 111
	linuxKeyLeftMeta   = 125
	linuxKeyRightMeta  = 126
	linuxKeyVolumeDown = 114
	linuxKeyMute       = 113
	linuxKeyVolumeUp   = 115
	linuxKeyPlayPause  = 164
	linuxKeyBackspace  = 14
	linuxKeyTab        = 15
)

var fromLinux = map[uint16]keycode.Code{
	linuxKeyEsc:        keycode.Escape,
	linuxKey1:          keycode.Digit1,
	linuxKey2:          keycode.Digit2,
	linuxKey3:          keycode.Digit3,
	linuxKey4:          keycode.Digit4,
	linuxKey5:          keycode.Digit5,
	linuxKey6:          keycode.Digit6,
	linuxKey7:          keycode.Digit7,
	linuxKey8:          keycode.Digit8,
	linuxKey9:          keycode.Digit9,
	linuxKey0:          keycode.Digit0,
	linuxKeyQ:          keycode.Q,
	linuxKeyW:          keycode.W,
	linuxKeyE:          keycode.E,
	linuxKeyR:          keycode.R,
	linuxKeyT:          keycode.T,
	linuxKeyY:          keycode.Y,
	linuxKeyU:          keycode.U,
	linuxKeyI:          keycode.I,
	linuxKeyO:          keycode.O,
	linuxKeyP:          keycode.P,
	linuxKeyEnter:      keycode.Enter,
	linuxKeyLeftCtrl:   keycode.LeftCtrl,
	linuxKeyA:          keycode.A,
	linuxKeyS:          keycode.S,
	linuxKeyD:          keycode.D,
	linuxKeyF:          keycode.F,
	linuxKeyG:          keycode.G,
	linuxKeyH:          keycode.H,
	linuxKeyJ:          keycode.J,
	linuxKeyK:          keycode.K,
	linuxKeyL:          keycode.L,
	linuxKeyLeftShift:  keycode.LeftShift,
	linuxKeyZ:          keycode.Z,
	linuxKeyX:          keycode.X,
	linuxKeyC:          keycode.C,
	linuxKeyV:          keycode.V,
	linuxKeyB:          keycode.B,
	linuxKeyN:          keycode.N,
	linuxKeyM:          keycode.M,
	linuxKeyRightShift: keycode.RightShift,
	linuxKeyLeftAlt:    keycode.LeftAlt,
	linuxKeySpace:      keycode.Space,
	linuxKeyCapsLock:   keycode.CapsLock,
	linuxKeyF1:         keycode.F1,
	linuxKeyF2:         keycode.F2,
	linuxKeyF3:         keycode.F3,
	linuxKeyF4:         keycode.F4,
	linuxKeyF5:         keycode.F5,
	linuxKeyF6:         keycode.F6,
	linuxKeyF7:         keycode.F7,
	linuxKeyF8:         keycode.F8,
	linuxKeyF9:         keycode.F9,
	linuxKeyF10:        keycode.F10,
	linuxKeyF11:        keycode.F11,
	linuxKeyF12:        keycode.F12,
	linuxKeyRightCtrl:  keycode.RightCtrl,
	linuxKeyRightAlt:   keycode.RightAlt,
	linuxKeyHome:       keycode.Home,
	linuxKeyUp:         keycode.Up,
	linuxKeyPageUp:     keycode.PageUp,
	linuxKeyLeft:       keycode.Left,
	linuxKeyRight:      keycode.Right,
	linuxKeyEnd:        keycode.End,
	linuxKeyDown:       keycode.Down,
	linuxKeyPageDown:   keycode.PageDown,
	linuxKeyInsert:     keycode.Insert,
	linuxKeyDelete:     keycode.Delete,
	linuxKeyLeftMeta:   keycode.LeftMeta,
	linuxKeyRightMeta:  keycode.RightMeta,
	linuxKeyVolumeDown: keycode.VolumeDown,
	linuxKeyMute:       keycode.MediaMute,
	linuxKeyVolumeUp:   keycode.VolumeUp,
	linuxKeyPlayPause:  keycode.MediaPlayPause,
	linuxKeyBackspace:  keycode.Backspace,
	linuxKeyTab:        keycode.Tab,
}

var toLinux = func() map[keycode.Code]uint16 {
	m := make(map[keycode.Code]uint16, len(fromLinux))
	for k, v := range fromLinux {
		m[v] = k
	}
	return m
}()

// translateFromLinux maps a raw evdev key code to a keyrx Code. ok is
// false for codes outside the catalog subset above; callers should
// drop the event rather than guess.
func translateFromLinux(code uint16) (keycode.Code, bool) {
	c, ok := fromLinux[code]
	return c, ok
}

// translateToLinux maps a keyrx Code back to its evdev KEY_* code for
// uinput injection.
func translateToLinux(c keycode.Code) (uint16, bool) {
	l, ok := toLinux[c]
	return l, ok
}

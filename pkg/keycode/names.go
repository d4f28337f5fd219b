package keycode

import "fmt"

var physicalNames = map[Code]string{
	A: "A", B: "B", C: "C", D: "D", E: "E", F: "F", G: "G", H: "H",
	I: "I", J: "J", K: "K", L: "L", M: "M", N: "N", O: "O", P: "P",
	Q: "Q", R: "R", S: "S", T: "T", U: "U", V: "V", W: "W", X: "X",
	Y: "Y", Z: "Z",
	Digit0: "Digit0", Digit1: "Digit1", Digit2: "Digit2", Digit3: "Digit3",
	Digit4: "Digit4", Digit5: "Digit5", Digit6: "Digit6", Digit7: "Digit7",
	Digit8: "Digit8", Digit9: "Digit9",
	Escape:    "Escape",
	Tab:       "Tab",
	CapsLock:  "CapsLock",
	LeftShift: "LeftShift", RightShift: "RightShift",
	LeftCtrl: "LeftCtrl", RightCtrl: "RightCtrl",
	LeftAlt: "LeftAlt", RightAlt: "RightAlt",
	LeftMeta: "LeftMeta", RightMeta: "RightMeta",
	Space: "Space", Enter: "Enter", Backspace: "Backspace",
	Left: "Left", Right: "Right", Up: "Up", Down: "Down",
	Home: "Home", End: "End", PageUp: "PageUp", PageDown: "PageDown",
	Delete: "Delete", Insert: "Insert",
	F1: "F1", F2: "F2", F3: "F3", F4: "F4", F5: "F5", F6: "F6",
	F7: "F7", F8: "F8", F9: "F9", F10: "F10", F11: "F11", F12: "F12",
	VolumeUp: "VolumeUp", VolumeDown: "VolumeDown",
	MediaMute: "MediaMute", MediaPlayPause: "MediaPlayPause",
}

// ParseName returns the Code for a catalog name ("A", "LeftCtrl", ...)
// or MD_/LK_ alias syntax ("MD_00".."MD_FF", "LK_00".."LK_FF"): the
// inverse of Code.String for those names. "Ext:"-prefixed names are
// not parsed.
func ParseName(name string) (Code, bool) {
	for code, n := range physicalNames {
		if n == name {
			return code, true
		}
	}
	if len(name) == 5 && (name[:3] == "MD_" || name[:3] == "LK_") {
		var n uint8
		if _, err := fmt.Sscanf(name[3:], "%02X", &n); err == nil {
			if name[:3] == "MD_" {
				return Modifier(n), true
			}
			return Lock(n), true
		}
	}
	return None, false
}

package app

import (
	"fmt"

	"dvtm-go/internal/input"
)

// namedCSI maps the handful of cursor-key CSI sequences the default key
// bindings reference by name (scrollback's Up/Down) to dispatcher key
// tokens. Anything else falls through to raw pass-through.
var namedCSI = map[string]string{
	"\x1b[A":  "Up",
	"\x1b[B":  "Down",
	"\x1b[C":  "Right",
	"\x1b[D":  "Left",
	"\x1b[H":  "Home",
	"\x1b[F":  "End",
	"\x1b[3~": "Delete",
	"\x1b[5~": "PageUp",
	"\x1b[6~": "PageDown",
}

func namedControl(b byte) string {
	switch b {
	case 0x09:
		return "Tab"
	case 0x0d:
		return "Return"
	case 0x7f:
		return "Backspace"
	}
	if b >= 1 && b <= 26 {
		return "C-" + string(rune('a'+b-1))
	}
	return fmt.Sprintf("C-%02x", b)
}

// utf8LeadLen returns the total byte length of the UTF-8 rune starting
// with lead byte b.
func utf8LeadLen(b byte) int {
	switch {
	case b&0x80 == 0:
		return 1
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	default:
		return 1
	}
}

// decodeX10Mouse decodes the legacy X10 mouse report format: a button
// byte and 0-based column/row each offset by 33. Only the low two button
// bits are kept; modifier bits are dropped.
func decodeX10Mouse(b [3]byte) input.MouseEvent {
	return input.MouseEvent{
		Button: int(b[0]&0x03) + 1,
		X:      int(b[1]) - 33,
		Y:      int(b[2]) - 33,
	}
}

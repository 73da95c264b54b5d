// Package sanitize strips terminal control sequences from text that will
// be relayed into a tmux pane, so a malicious or careless reply can never
// inject escape sequences into the agent's terminal.
package sanitize

import "strings"

const esc = 0x1B

// StripControl removes the ESC byte, any CSI/OSC/DCS/APC sequence it
// introduces, and every control byte other than \n and \t. Applied after
// tag parsing and before relay.
func StripControl(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == esc {
			i += skipEscapeSequence(runes[i+1:])
			continue
		}
		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if r < 0x20 || r == 0x7F {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// skipEscapeSequence returns the number of runes following an ESC byte
// that belong to the escape sequence it introduces, so the caller's index
// can skip past all of them.
func skipEscapeSequence(rest []rune) int {
	if len(rest) == 0 {
		return 0
	}

	switch rest[0] {
	case '[': // CSI: ESC [ ... final byte in 0x40-0x7E
		for i := 1; i < len(rest); i++ {
			if rest[i] >= 0x40 && rest[i] <= 0x7E {
				return i + 1
			}
		}
		return len(rest)
	case ']', 'P', '_': // OSC, DCS, APC: terminated by BEL or ST (ESC \)
		for i := 1; i < len(rest); i++ {
			if rest[i] == 0x07 {
				return i + 1
			}
			if rest[i] == esc && i+1 < len(rest) && rest[i+1] == '\\' {
				return i + 2
			}
		}
		return len(rest)
	default:
		// Not a CSI/OSC/DCS/APC introducer: only the ESC byte itself is
		// dropped, and the rune after it is kept.
		return 0
	}
}

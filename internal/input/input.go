// Package input implements chord recognition against the configured key
// binding table, with a pass-through path that forwards raw bytes
// (including whole escape sequences) to the focused or, in broadcast
// mode, every visible client.
package input

import (
	"dvtm-go/internal/config"
)

// MaxKeys is the maximum chord length a binding may specify.
const MaxKeys = 3

// MouseSentinel is a synthetic key token reserved for mouse events; it is
// never a real binding's first key. The stdin decoder in internal/app
// does not emit it: it returns decoded mouse events separately.
const MouseSentinel = "\x00mouse\x00"

// MatchResult is the outcome of feeding one key token to the Dispatcher.
type MatchResult int

const (
	// NoMatch means no configured binding's prefix matches the current
	// chord at all; the caller should fall through to pass-through and
	// the dispatcher has already reset its chord buffer.
	NoMatch MatchResult = iota
	// Pending means some binding's prefix matches but the chord is not
	// yet complete; wait for more keys.
	Pending
	// Matched means the chord buffer now exactly equals a binding's key
	// sequence; Feed returns that binding and the chord buffer has been
	// reset.
	Matched
)

// Dispatcher holds the fixed-size chord buffer and the binding table it
// is matched against.
type Dispatcher struct {
	bindings []config.KeyBinding
	chord    []string
}

// NewDispatcher returns a Dispatcher bound to the given key bindings.
func NewDispatcher(bindings []config.KeyBinding) *Dispatcher {
	return &Dispatcher{bindings: bindings}
}

// Feed appends key to the chord buffer and resolves it against the
// binding table. On NoMatch or Matched the buffer is reset; on Pending
// it is retained for the next Feed call.
func (d *Dispatcher) Feed(key string) (MatchResult, *config.KeyBinding) {
	if len(d.chord) >= MaxKeys {
		d.chord = nil
	}
	d.chord = append(d.chord, key)

	var anyPrefix bool
	var exact *config.KeyBinding
	for i := range d.bindings {
		kb := &d.bindings[i]
		if len(kb.Keys) < len(d.chord) {
			continue
		}
		if !prefixEqual(kb.Keys, d.chord) {
			continue
		}
		anyPrefix = true
		if len(kb.Keys) == len(d.chord) {
			exact = kb
		}
	}

	switch {
	case exact != nil:
		d.chord = nil
		return Matched, exact
	case anyPrefix:
		return Pending, nil
	default:
		d.chord = nil
		return NoMatch, nil
	}
}

// Reset clears the chord buffer, e.g. after a successful pass-through.
func (d *Dispatcher) Reset() { d.chord = nil }

func prefixEqual(full, prefix []string) bool {
	for i, k := range prefix {
		if full[i] != k {
			return false
		}
	}
	return true
}

// MouseEvent is a decoded mouse report: the button number (modifiers are
// not carried) and the 0-based terminal cell it targets.
type MouseEvent struct {
	Button int
	X, Y   int
}

// ResolveMouse returns every mouse binding whose Button matches ev, in
// binding-table order, per spec.md §4.7 ("ALL matching bindings fire").
func ResolveMouse(ev MouseEvent, bindings []config.MouseBinding) []config.MouseBinding {
	var matches []config.MouseBinding
	for _, mb := range bindings {
		if mb.Button == ev.Button {
			matches = append(matches, mb)
		}
	}
	return matches
}

// ByteSource supplies the next already-available byte without blocking;
// ok is false when no further byte is currently available.
type ByteSource func() (b byte, ok bool)

// EscapeSequence is the result of buffering bytes following a lone ESC.
type EscapeSequence struct {
	// Bytes is the literal sequence to write to the VT, always starting
	// with 0x1B.
	Bytes []byte
	// Keycode is always nil as returned by CollectEscapeSequence: a
	// ByteSource yields raw bytes only, so draining never stops at a
	// separately delivered keycode.
	Keycode *byte
}

// maxEscapeExtra is "up to 7 additional bytes" per spec.md §4.3.
const maxEscapeExtra = 7

// CollectEscapeSequence implements the pass-through ESC-buffering rule:
// starting from a lone ESC, drain up to 7 more already-available bytes
// non-blockingly into one buffer so the sequence is delivered to the VT
// atomically, stopping early if the source runs dry.
func CollectEscapeSequence(next ByteSource) EscapeSequence {
	seq := EscapeSequence{Bytes: []byte{0x1B}}
	for i := 0; i < maxEscapeExtra; i++ {
		b, ok := next()
		if !ok {
			break
		}
		seq.Bytes = append(seq.Bytes, b)
	}
	return seq
}

// Package statusbar implements the optional status line: text read from
// a status FIFO, tag indicators, the current layout symbol, and a
// right-aligned text region truncated to a grapheme-aware display width.
package statusbar

import (
	"strings"

	"github.com/rivo/uniseg"

	"dvtm-go/internal/layout"
)

// Position is where the bar is drawn, or OFF.
type Position int

const (
	Top Position = iota
	Bottom
	Off
)

const maxText = 511

// TagAttr is the precedence-ordered attribute a tag indicator is drawn
// with: SEL beats URGENT beats OCCUPIED beats NORMAL.
type TagAttr int

const (
	AttrNormal TagAttr = iota
	AttrOccupied
	AttrUrgent
	AttrSelected
)

// TagState is one configured tag's drawing state, computed by the caller
// from ClientList before Render is invoked.
type TagState struct {
	Name string
	Attr TagAttr
}

// Bar owns the status text buffer and position/autohide state. Fd is
// the status FIFO descriptor, or -1 when none is open.
type Bar struct {
	Fd       int
	Pos      Position
	LastPos  Position
	Autohide bool
	text     []byte
}

// New returns a Bar with no FIFO attached, positioned at pos.
func New(pos Position) *Bar {
	lastPos := pos
	if lastPos == Off {
		lastPos = Top
	}
	return &Bar{Fd: -1, Pos: pos, LastPos: lastPos}
}

// Toggle flips Off<->LastPos, dvtm's togglebar.
func (b *Bar) Toggle() {
	if b.Pos == Off {
		b.Pos = b.LastPos
	} else {
		b.LastPos = b.Pos
		b.Pos = Off
	}
}

// TogglePos cycles Top<->Bottom. When the bar is currently Off, per the
// REDESIGN FLAG resolving the Open Question in dvtm.c's togglebarpos
// (which silently dropped the BAR_OFF case), toggling position while
// off also flips LastPos so the bar reappears on the opposite side the
// next time it is turned back on, instead of doing nothing.
func (b *Bar) TogglePos() {
	switch b.Pos {
	case Top:
		b.Pos = Bottom
		b.LastPos = Bottom
	case Bottom:
		b.Pos = Top
		b.LastPos = Top
	case Off:
		if b.LastPos == Top {
			b.LastPos = Bottom
		} else {
			b.LastPos = Top
		}
	}
}

// Hidden reports whether the bar is currently not drawn, applying
// autohide (hidden when fd is absent and visibleClients <= 1).
func (b *Bar) Hidden(visibleClients int) bool {
	if b.Pos == Off {
		return true
	}
	if b.Fd == -1 && b.Autohide && visibleClients <= 1 {
		return true
	}
	return false
}

// Feed handles one FIFO read: strip trailing newlines, retain only the
// last complete line, truncate to maxText.
func (b *Bar) Feed(data []byte) {
	s := strings.TrimRight(string(data), "\n")
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	}
	if len(s) > maxText {
		s = s[:maxText]
	}
	b.text = []byte(s)
}

// SetError records a read failure's message as the bar text and marks
// the fd as closed (Fd = -1), matching dvtm.c's strerror-into-bar-text
// behavior. The descriptor itself is not closed here.
func (b *Bar) SetError(msg string) {
	b.text = []byte(msg)
	b.Fd = -1
}

// Text returns the current status text.
func (b *Bar) Text() string { return string(b.text) }

// Render composes the full bar line: tag indicators, layout symbol (with
// broadcast highlight), and the right-aligned text truncated to fit.
// width is the total screen width in display columns.
func Render(tags []TagState, layoutSym string, broadcast bool, text string, width int) string {
	var left strings.Builder
	for _, ts := range tags {
		left.WriteString(tagGlyph(ts))
	}
	left.WriteByte(' ')
	if broadcast {
		left.WriteString("*" + layoutSym + "*")
	} else {
		left.WriteString(layoutSym)
	}

	leftWidth := uniseg.StringWidth(left.String())
	avail := width - leftWidth - 2
	right := truncateToWidth(text, avail)

	var out strings.Builder
	out.WriteString(left.String())
	pad := width - leftWidth - uniseg.StringWidth(right)
	if pad < 1 {
		pad = 1
	}
	out.WriteString(strings.Repeat(" ", pad))
	out.WriteString(right)
	return out.String()
}

func tagGlyph(ts TagState) string {
	switch ts.Attr {
	case AttrSelected:
		return "[" + ts.Name + "]"
	case AttrUrgent:
		return "!" + ts.Name + "!"
	case AttrOccupied:
		return "+" + ts.Name
	default:
		return " " + ts.Name
	}
}

// truncateToWidth returns the longest trailing substring of s whose
// display width (grapheme-cluster aware) fits within width columns.
func truncateToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return s
	}
	gr := uniseg.NewGraphemes(s)
	var clusters []string
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}
	w := 0
	start := len(clusters)
	for start > 0 {
		cw := uniseg.StringWidth(clusters[start-1])
		if w+cw > width {
			break
		}
		w += cw
		start--
	}
	return strings.Join(clusters[start:], "")
}

// Symbol returns the glyph for a layout kind (delegated to layout.Kind
// for a single source of truth).
func Symbol(k layout.Kind) string { return k.Symbol() }

// Package layout computes per-client geometry for the four tiling
// arrangements the multiplexer supports: tile (vertical master stack),
// bstack (horizontal master), grid and fullscreen. Each function is a
// pure transform from the visible client list and a work area to a set
// of (x,y,w,h) rectangles; none of them touch the client list or do any
// drawing.
package layout

// Rect is a client's on-screen rectangle in cell coordinates.
type Rect struct {
	X, Y, W, H int
}

// Kind names one of the four layouts.
type Kind int

const (
	Tile Kind = iota
	BStack
	Grid
	Fullscreen
)

// Symbol returns the status-bar glyph dvtm used for each layout.
func (k Kind) Symbol() string {
	switch k {
	case Tile:
		return "[]="
	case BStack:
		return "TTT"
	case Grid:
		return "+++"
	case Fullscreen:
		return "[ ]"
	default:
		return "???"
	}
}

// Area is the work area a layout arranges clients within: full screen
// minus the status bar and minus the minimized-client strip, if either
// is reserved.
type Area struct {
	X, Y, W, H int
}

// Minimized describes the bottom strip reserved for minimized clients.
// It is never present under Fullscreen.
type Minimized struct {
	Count int
}

// ReserveMinimizedStrip returns the work area with one row removed from
// the bottom for the minimized strip, plus the strip's own rect, when
// count > 0 and kind != Fullscreen. Otherwise it returns area unchanged
// and an empty strip.
func ReserveMinimizedStrip(area Area, kind Kind, count int) (work Area, strip Area, hasStrip bool) {
	if count <= 0 || kind == Fullscreen || area.H <= 1 {
		return area, Area{}, false
	}
	work = Area{X: area.X, Y: area.Y, W: area.W, H: area.H - 1}
	strip = Area{X: area.X, Y: area.Y + area.H - 1, W: area.W, H: 1}
	return work, strip, true
}

// MinimizedStripRects divides strip.W evenly among count tiles, left to
// right, the last absorbing any remainder.
func MinimizedStripRects(strip Area, count int) []Rect {
	if count <= 0 {
		return nil
	}
	rects := make([]Rect, count)
	w := strip.W / count
	x := strip.X
	for i := 0; i < count; i++ {
		rw := w
		if i == count-1 {
			rw = strip.X + strip.W - x
		}
		rects[i] = Rect{X: x, Y: strip.Y, W: rw, H: strip.H}
		x += rw
	}
	return rects
}

// Arrange computes rectangles for n visible, non-minimized clients under
// the given layout, work area, master count and master fraction. The
// returned slice has exactly n entries, in the same order the clients
// were passed conceptually (index i corresponds to the i-th visible
// client in spatial order).
func Arrange(kind Kind, area Area, n int, nmaster int, mfact float64) []Rect {
	if n == 0 {
		return nil
	}
	switch kind {
	case Fullscreen:
		return fullscreen(area, n)
	case BStack:
		return bstack(area, n, nmaster, mfact)
	case Grid:
		return grid(area, n)
	default:
		return tile(area, n, nmaster, mfact)
	}
}

// fullscreen gives every client the full work area; only sel is drawn,
// a decision the renderer makes, not this function.
func fullscreen(area Area, n int) []Rect {
	rects := make([]Rect, n)
	for i := range rects {
		rects[i] = Rect{X: area.X, Y: area.Y, W: area.W, H: area.H}
	}
	return rects
}

// tile: the first nmaster clients share a left column of width
// floor(waw*mfact); the rest stack vertically in the right column. Each
// column's clients split its height evenly, the last absorbing the
// remainder. With nmaster >= n there is no stack column at all.
func tile(area Area, n, nmaster int, mfact float64) []Rect {
	rects := make([]Rect, n)
	mcount := nmaster
	if mcount > n {
		mcount = n
	}
	scount := n - mcount

	mw := area.W
	if scount > 0 {
		mw = int(float64(area.W) * mfact)
	}
	sw := area.W - mw

	splitColumn(rects[:mcount], area.X, area.Y, mw, area.H)
	if scount > 0 {
		splitColumn(rects[mcount:], area.X+mw, area.Y, sw, area.H)
	}
	return rects
}

// bstack: like tile but master band on top of height floor(wah*mfact),
// stack below; each band splits horizontally instead of vertically.
func bstack(area Area, n, nmaster int, mfact float64) []Rect {
	rects := make([]Rect, n)
	mcount := nmaster
	if mcount > n {
		mcount = n
	}
	scount := n - mcount

	mh := area.H
	if scount > 0 {
		mh = int(float64(area.H) * mfact)
	}
	sh := area.H - mh

	splitRow(rects[:mcount], area.X, area.Y, area.W, mh)
	if scount > 0 {
		splitRow(rects[mcount:], area.X, area.Y+mh, area.W, sh)
	}
	return rects
}

// splitColumn divides h evenly among len(rects) clients stacked
// vertically at (x,y) with width w, the last absorbing the remainder.
func splitColumn(rects []Rect, x, y, w, h int) {
	n := len(rects)
	if n == 0 {
		return
	}
	each := h / n
	cy := y
	for i := range rects {
		rh := each
		if i == n-1 {
			rh = y + h - cy
		}
		rects[i] = Rect{X: x, Y: cy, W: w, H: rh}
		cy += rh
	}
}

// splitRow divides w evenly among len(rects) clients side by side at
// (x,y) with height h, the last absorbing the remainder.
func splitRow(rects []Rect, x, y, w, h int) {
	n := len(rects)
	if n == 0 {
		return
	}
	each := w / n
	cx := x
	for i := range rects {
		rw := each
		if i == n-1 {
			rw = x + w - cx
		}
		rects[i] = Rect{X: cx, Y: y, W: rw, H: h}
		cx += rw
	}
}

// grid: ceil(sqrt(n)) columns by ceil(n/cols) rows, left to right, top
// to bottom; the last row absorbs any column-count remainder.
func grid(area Area, n int) []Rect {
	cols := ceilSqrt(n)
	rows := ceilDiv(n, cols)

	rects := make([]Rect, n)
	rowH := area.H / rows
	idx := 0
	for r := 0; r < rows; r++ {
		remaining := n - idx
		colsInRow := cols
		if remaining < cols {
			colsInRow = remaining
		}
		y := area.Y + r*rowH
		h := rowH
		if r == rows-1 {
			h = area.Y + area.H - y
		}
		colW := area.W / colsInRow
		x := area.X
		for c := 0; c < colsInRow; c++ {
			w := colW
			if c == colsInRow-1 {
				w = area.X + area.W - x
			}
			rects[idx] = Rect{X: x, Y: y, W: w, H: h}
			x += w
			idx++
		}
	}
	return rects
}

func ceilDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

func ceilSqrt(n int) int {
	if n <= 0 {
		return 0
	}
	c := 1
	for c*c < n {
		c++
	}
	return c
}

// SupportsMasterControls reports whether setmfact/incnmaster do
// anything under kind; both are no-ops under Fullscreen and Grid.
func SupportsMasterControls(kind Kind) bool {
	return kind == Tile || kind == BStack
}

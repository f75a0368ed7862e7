// Package render draws client borders/titles and manages the color
// pipeline: 256-color fallback detection, RGB quantization for
// configured color rules, and pair allocation/caching.
package render

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"

	"dvtm-go/internal/client"
	"dvtm-go/internal/config"
)

// Attr is a border/title drawing attribute, chosen by precedence.
type Attr int

const (
	AttrNormal Attr = iota
	AttrSelected
	AttrUrgent
)

// BorderAttr picks c's border attribute: urgent (only while not
// selected) beats selected beats normal. broadcast is
// runinall mode; minimized clients never get the "selected" highlight
// even while runinall is on.
func BorderAttr(c *client.Client, isSel, broadcast bool) Attr {
	switch {
	case c.Urgent && !isSel:
		return AttrUrgent
	case isSel || (broadcast && !c.Minimized):
		return AttrSelected
	default:
		return AttrNormal
	}
}

// DrawBorder renders the one-row title bar dvtm.c paints across the top
// of a client's window: "[title | #order]" starting at column 2.
func DrawBorder(c *client.Client, width int) string {
	label := fmt.Sprintf("[%s | #%d]", c.Title(), c.Order)
	if len(label) > width-2 {
		if width-2 > 0 {
			label = label[:width-2]
		} else {
			label = ""
		}
	}
	var b strings.Builder
	b.WriteByte(' ')
	b.WriteString(label)
	pad := width - 1 - len(label)
	if pad > 0 {
		b.WriteString(strings.Repeat("─", pad)) // horizontal rule, U+2500
	}
	return b.String()
}

// Palette resolves configured color rules to color-pair indices,
// quantizing RGB hex strings to the xterm-256 palette when the real
// terminal lacks true-color support, mirroring dvtm.c's COLORS==256
// fallback check.
type Palette struct {
	profile termenv.Profile
	pairs   map[string]int
	next    int
}

// NewPalette detects the output's color profile via termenv.
func NewPalette() *Palette {
	return &Palette{
		profile: termenv.EnvColorProfile(),
		pairs:   make(map[string]int),
	}
}

// Reserve returns a stable index for the (fg,bg) pair, allocating a new
// one on first use (vt_color_reserve analogue); repeated calls with the
// same pair return the cached index.
func (p *Palette) Reserve(fg, bg string) int {
	key := fg + "/" + bg
	if idx, ok := p.pairs[key]; ok {
		return idx
	}
	idx := p.next
	p.next++
	p.pairs[key] = idx
	return idx
}

// Render returns the ANSI SGR sequence for fg/bg/bold, quantizing true
// color down to the xterm-256 palette when the detected profile is not
// TrueColor.
func (p *Palette) Render(fg, bg string, bold bool) string {
	var b strings.Builder
	if bold {
		b.WriteString("\x1b[1m")
	}
	if fg != "" {
		b.WriteString(p.colorSeq(fg, true))
	}
	if bg != "" {
		b.WriteString(p.colorSeq(bg, false))
	}
	return b.String()
}

func (p *Palette) colorSeq(hex string, foreground bool) string {
	col := p.quantize(hex)
	return "\x1b[" + col.Sequence(!foreground) + "m"
}

// quantize maps a hex color to the best representable termenv.Color for
// the detected profile, using go-colorful's perceptual distance when
// snapping to the 256-color cube.
func (p *Palette) quantize(hex string) termenv.Color {
	if p.profile == termenv.TrueColor {
		return p.profile.Color(hex)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return p.profile.Color(hex)
	}
	best := nearestANSI256(c)
	return p.profile.Color(fmt.Sprintf("%d", best))
}

// nearestANSI256 returns the xterm-256 index whose RGB value is
// perceptually closest to c among the 216-color cube plus grayscale ramp.
func nearestANSI256(c colorful.Color) int {
	bestIdx := 16
	bestDist := -1.0
	steps := []uint8{0, 95, 135, 175, 215, 255}
	idx := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				cand := colorful.Color{
					R: float64(steps[r]) / 255,
					G: float64(steps[g]) / 255,
					B: float64(steps[b]) / 255,
				}
				d := c.DistanceLab(cand)
				if bestDist < 0 || d < bestDist {
					bestDist = d
					bestIdx = idx
				}
				idx++
			}
		}
	}
	for i := 0; i < 24; i++ {
		level := uint8(8 + i*10)
		cand := colorful.Color{R: float64(level) / 255, G: float64(level) / 255, B: float64(level) / 255}
		d := c.DistanceLab(cand)
		if d < bestDist {
			bestDist = d
			bestIdx = 232 + i
		}
	}
	return bestIdx
}

// MatchColorRule returns the first configured rule whose substring
// appears in title, re-evaluated by the caller on every title change.
func MatchColorRule(title string, rules []config.ColorRule) (config.ColorRule, bool) {
	for _, r := range rules {
		if strings.Contains(title, r.Substr) {
			return r, true
		}
	}
	return config.ColorRule{}, false
}

// Package command implements the closed set of named commands invocable
// from a key binding, a mouse binding, or a line read from the command
// FIFO. Each command is a pure function of an App (the bundled,
// by-reference global state Design Note 2 calls for) and an argument
// list of at most MaxArgs strings.
package command

import (
	"fmt"
	"strconv"
	"strings"

	"dvtm-go/internal/client"
	"dvtm-go/internal/layout"
)

// MaxArgs is the maximum number of arguments a command accepts from any
// source; excess FIFO arguments are ignored.
const MaxArgs = 8

// Screen bundles the process-wide layout parameters dvtm.c keeps as
// globals: terminal size, master count/fraction, scrollback depth, and
// the pending-resize flag the event loop checks each tick.
type Screen struct {
	W, H       int
	History    int
	NMaster    int
	MFact      float64
	NeedResize bool
	Layout     layout.Kind
	RunInAll   bool

	// DefaultNMaster/DefaultMFact are the configured values incnmaster
	// and setmfact reset to when invoked with no argument.
	DefaultNMaster int
	DefaultMFact   float64
}

// ClampMFact restricts mfact to [0.1, 0.9], the data-model invariant.
func ClampMFact(v float64) float64 {
	if v < 0.1 {
		return 0.1
	}
	if v > 0.9 {
		return 0.9
	}
	return v
}

// Tagset is the double-buffered view-selector: Views[Sel] is the current
// tagset, Views[Sel^1] the previous one; Toggle flips Sel.
type Tagset struct {
	Views [2]uint32
	Sel   int
}

// Current returns the currently viewed tag bitmask.
func (t *Tagset) Current() uint32 { return t.Views[t.Sel] }

// Toggle swaps which of the two buffered tagsets is current (the
// viewprevtag command).
func (t *Tagset) Toggle() { t.Sel ^= 1 }

// SetCurrent assigns the currently-viewed tagset, mirroring the previous
// value into the other slot first so Toggle can restore it.
func (t *Tagset) SetCurrent(mask uint32) {
	t.Views[t.Sel^1] = t.Views[t.Sel]
	t.Views[t.Sel] = mask
}

// App is the interface commands are dispatched against; internal/app's
// event-loop type implements it. Keeping this as an interface (rather
// than importing internal/app directly) avoids a package cycle between
// the registry and the loop that drives it.
type App interface {
	Clients() *client.List
	Screen() *Screen
	Tagset() *Tagset

	CreateClient(cmd, title, cwd string) error
	KillClient(c *client.Client)

	FocusByOrder(n int)
	FocusByID(id client.ID)
	FocusDirection(dir Direction)

	Zoom()
	ToggleMinimize(c *client.Client)

	SetLayout(k layout.Kind)

	ToggleBar()
	ToggleBarPos()
	ToggleMouse()

	ScrollbackClient(c *client.Client, lines int)

	EnterCopyMode(cmd string, seed []byte) error
	Paste()

	SendKeys(c *client.Client, data []byte)

	Redraw()
	Quit()

	RunStartup(actions [][]string)
}

// Direction is a directional focus move.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// Func is one command's implementation.
type Func func(a App, args []string) error

// Registry maps command names to implementations.
type Registry struct {
	cmds map[string]Func
}

// NewRegistry builds the closed set of core commands.
func NewRegistry() *Registry {
	r := &Registry{cmds: make(map[string]Func)}
	r.register()
	return r
}

// Lookup returns the Func for name, or nil if name is not a known
// command (FIFO lines naming unknown commands are silently skipped per
// spec.md §7).
func (r *Registry) Lookup(name string) Func { return r.cmds[name] }

// Invoke looks up and runs name with args, returning an error only if
// name is unknown (callers from the FIFO should treat that as a no-op,
// not surface it to the user).
func (r *Registry) Invoke(a App, name string, args []string) error {
	fn := r.Lookup(name)
	if fn == nil {
		return fmt.Errorf("unknown command %q", name)
	}
	if len(args) > MaxArgs {
		args = args[:MaxArgs]
	}
	return fn(a, args)
}

func (r *Registry) register() {
	r.cmds["create"] = cmdCreate
	r.cmds["killclient"] = cmdKillClient
	r.cmds["focusn"] = cmdFocusN
	r.cmds["focusid"] = cmdFocusID
	r.cmds["focusnext"] = cmdFocusNext
	r.cmds["focusprev"] = cmdFocusPrev
	r.cmds["focusup"] = cmdFocusUp
	r.cmds["focusdown"] = cmdFocusDown
	r.cmds["focusleft"] = cmdFocusLeft
	r.cmds["focusright"] = cmdFocusRight
	r.cmds["focuslast"] = cmdFocusLast
	r.cmds["focusnextnm"] = cmdFocusNextNM
	r.cmds["focusprevnm"] = cmdFocusPrevNM
	r.cmds["zoom"] = cmdZoom
	r.cmds["toggleminimize"] = cmdToggleMinimize
	r.cmds["setlayout"] = cmdSetLayout
	r.cmds["incnmaster"] = cmdIncNMaster
	r.cmds["setmfact"] = cmdSetMFact
	r.cmds["tag"] = cmdTag
	r.cmds["tagid"] = cmdTagID
	r.cmds["toggletag"] = cmdToggleTag
	r.cmds["toggleview"] = cmdToggleView
	r.cmds["view"] = cmdView
	r.cmds["viewprevtag"] = cmdViewPrevTag
	r.cmds["togglebar"] = cmdToggleBar
	r.cmds["togglebarpos"] = cmdToggleBarPos
	r.cmds["togglemouse"] = cmdToggleMouse
	r.cmds["togglerunall"] = cmdToggleRunAll
	r.cmds["scrollback"] = cmdScrollback
	r.cmds["copymode"] = cmdCopyMode
	r.cmds["paste"] = cmdPaste
	r.cmds["send"] = cmdSend
	r.cmds["redraw"] = cmdRedraw
	r.cmds["quit"] = cmdQuit
	r.cmds["mouse_focus"] = cmdMouseFocus
	r.cmds["mouse_fullscreen"] = cmdMouseFullscreen
	r.cmds["mouse_minimize"] = cmdMouseMinimize
	r.cmds["mouse_zoom"] = cmdMouseZoom
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func cmdCreate(a App, args []string) error {
	cmd := arg(args, 0)
	title := arg(args, 1)
	cwd := arg(args, 2)
	return a.CreateClient(cmd, title, cwd)
}

func cmdKillClient(a App, args []string) error {
	c := a.Clients().Sel
	if c != nil {
		a.KillClient(c)
	}
	return nil
}

func cmdFocusN(a App, args []string) error {
	n, err := strconv.Atoi(arg(args, 0))
	if err != nil {
		return nil
	}
	a.FocusByOrder(n)
	return nil
}

func cmdFocusID(a App, args []string) error {
	n, err := strconv.Atoi(arg(args, 0))
	if err != nil {
		return nil
	}
	a.FocusByID(client.ID(n))
	return nil
}

func cmdFocusNext(a App, args []string) error {
	l := a.Clients()
	if l.Sel == nil {
		return nil
	}
	n := l.NextVisible(l.Sel.NextInList())
	if n == nil {
		n = l.NextVisible(l.Head)
	}
	l.Focus(n)
	return nil
}

func cmdFocusPrev(a App, args []string) error {
	l := a.Clients()
	if l.Sel == nil {
		return nil
	}
	p := prevVisible(l, l.Sel)
	l.Focus(p)
	return nil
}

// prevVisible returns the visible client immediately before from in
// spatial order, wrapping to the last visible client if from is first.
func prevVisible(l *client.List, from *client.Client) *client.Client {
	var prev, last *client.Client
	l.WalkVisible(func(c *client.Client) {
		if c == from && prev == nil {
			prev = last
		}
		last = c
	})
	if prev == nil {
		prev = last // from was first visible client (or not found): wrap to last
	}
	return prev
}

func cmdFocusUp(a App, args []string) error    { a.FocusDirection(DirUp); return nil }
func cmdFocusDown(a App, args []string) error  { a.FocusDirection(DirDown); return nil }
func cmdFocusLeft(a App, args []string) error  { a.FocusDirection(DirLeft); return nil }
func cmdFocusRight(a App, args []string) error { a.FocusDirection(DirRight); return nil }

func cmdFocusLast(a App, args []string) error {
	l := a.Clients()
	if l.LastSel != nil && l.IsVisible(l.LastSel) {
		l.Focus(l.LastSel)
	}
	return nil
}

func cmdFocusNextNM(a App, args []string) error {
	l := a.Clients()
	if l.Sel == nil {
		return nil
	}
	c := l.Sel.NextInList()
	for c != nil {
		if l.IsVisible(c) && !c.Minimized {
			l.Focus(c)
			return nil
		}
		c = c.NextInList()
	}
	return nil
}

func cmdFocusPrevNM(a App, args []string) error {
	l := a.Clients()
	if l.Sel == nil {
		return nil
	}
	c := l.Sel.PrevInList()
	for c != nil {
		if l.IsVisible(c) && !c.Minimized {
			l.Focus(c)
			return nil
		}
		c = c.PrevInList()
	}
	return nil
}

func cmdZoom(a App, args []string) error { a.Zoom(); return nil }

func cmdToggleMinimize(a App, args []string) error {
	c := a.Clients().Sel
	if c != nil {
		a.ToggleMinimize(c)
	}
	return nil
}

func cmdSetLayout(a App, args []string) error {
	switch arg(args, 0) {
	case "tile":
		a.SetLayout(layout.Tile)
	case "bstack":
		a.SetLayout(layout.BStack)
	case "grid":
		a.SetLayout(layout.Grid)
	case "fullscreen":
		a.SetLayout(layout.Fullscreen)
	}
	return nil
}

// cmdIncNMaster: the resolved Open Question. dvtm.c's incnmaster reads
// `if (args[0]) screen.nmaster = defaultnmaster; else screen.nmaster +=
// atoi(args[0]);` -- backwards, since a present argument is the one
// meant to supply the delta. Here an absent argument resets to the
// configured default, one with a leading +/- sign is applied as a
// relative delta and an unsigned one sets nmaster directly, matching
// setmfact's convention. Like setmfact, it is a no-op under layouts
// without a master area.
func cmdIncNMaster(a App, args []string) error {
	s := a.Screen()
	if !layout.SupportsMasterControls(s.Layout) {
		return nil
	}
	v := arg(args, 0)
	if v == "" {
		s.NMaster = s.DefaultNMaster
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	if strings.HasPrefix(v, "+") || strings.HasPrefix(v, "-") {
		s.NMaster += n
	} else {
		s.NMaster = n
	}
	if s.NMaster < 1 {
		s.NMaster = 1
	}
	return nil
}

func cmdSetMFact(a App, args []string) error {
	s := a.Screen()
	if !layout.SupportsMasterControls(s.Layout) {
		return nil
	}
	v := arg(args, 0)
	if v == "" {
		s.MFact = s.DefaultMFact
		return nil
	}
	if strings.HasPrefix(v, "+") || strings.HasPrefix(v, "-") {
		delta, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		s.MFact = ClampMFact(s.MFact + delta)
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	s.MFact = ClampMFact(f)
	return nil
}

func cmdTag(a App, args []string) error {
	c := a.Clients().Sel
	if c == nil {
		return nil
	}
	n, err := strconv.Atoi(arg(args, 0))
	if err != nil || n < 0 || n > 31 {
		return nil
	}
	c.Tags = 1 << uint(n)
	return nil
}

func cmdTagID(a App, args []string) error {
	c := a.Clients().Sel
	if c == nil {
		return nil
	}
	n, err := strconv.Atoi(arg(args, 0))
	if err != nil || n < 0 || n > 31 {
		return nil
	}
	c.Tags = 1 << uint(n)
	return nil
}

func cmdToggleTag(a App, args []string) error {
	c := a.Clients().Sel
	if c == nil {
		return nil
	}
	n, err := strconv.Atoi(arg(args, 0))
	if err != nil || n < 0 || n > 31 {
		return nil
	}
	bit := uint32(1) << uint(n)
	newTags := c.Tags ^ bit
	if newTags != 0 {
		c.Tags = newTags
	}
	return nil
}

func cmdToggleView(a App, args []string) error {
	n, err := strconv.Atoi(arg(args, 0))
	if err != nil || n < 0 || n > 31 {
		return nil
	}
	ts := a.Tagset()
	bit := uint32(1) << uint(n)
	newMask := ts.Current() ^ bit
	if newMask != 0 {
		ts.SetCurrent(newMask)
		a.Clients().CurrentTags = newMask
	}
	return nil
}

func cmdView(a App, args []string) error {
	n, err := strconv.Atoi(arg(args, 0))
	if err != nil || n < 0 || n > 31 {
		return nil
	}
	ts := a.Tagset()
	bit := uint32(1) << uint(n)
	ts.SetCurrent(bit)
	a.Clients().CurrentTags = bit
	return nil
}

func cmdViewPrevTag(a App, args []string) error {
	ts := a.Tagset()
	ts.Toggle()
	a.Clients().CurrentTags = ts.Current()
	return nil
}

func cmdToggleBar(a App, args []string) error    { a.ToggleBar(); return nil }
func cmdToggleBarPos(a App, args []string) error { a.ToggleBarPos(); return nil }
func cmdToggleMouse(a App, args []string) error  { a.ToggleMouse(); return nil }

func cmdToggleRunAll(a App, args []string) error {
	s := a.Screen()
	s.RunInAll = !s.RunInAll
	return nil
}

func cmdScrollback(a App, args []string) error {
	c := a.Clients().Sel
	if c == nil {
		return nil
	}
	div := -2
	if v := arg(args, 0); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n != 0 {
			div = n
		}
	}
	lines := c.H / div
	a.ScrollbackClient(c, lines)
	return nil
}

func cmdCopyMode(a App, args []string) error {
	return a.EnterCopyMode(arg(args, 0), nil)
}

func cmdPaste(a App, args []string) error { a.Paste(); return nil }

func cmdSend(a App, args []string) error {
	c := a.Clients().Sel
	if c == nil || len(args) == 0 {
		return nil
	}
	a.SendKeys(c, []byte(strings.Join(args, " ")))
	return nil
}

func cmdRedraw(a App, args []string) error { a.Redraw(); return nil }
func cmdQuit(a App, args []string) error   { a.Quit(); return nil }

func cmdMouseFocus(a App, args []string) error {
	if c := a.Clients().Sel; c != nil {
		a.Clients().Focus(c)
	}
	return nil
}

func cmdMouseFullscreen(a App, args []string) error {
	a.SetLayout(layout.Fullscreen)
	return nil
}

func cmdMouseMinimize(a App, args []string) error {
	if c := a.Clients().Sel; c != nil {
		a.ToggleMinimize(c)
	}
	return nil
}

func cmdMouseZoom(a App, args []string) error { a.Zoom(); return nil }

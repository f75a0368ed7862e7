package command

import (
	"testing"

	"dvtm-go/internal/client"
	"dvtm-go/internal/layout"
)

// fakeApp is a minimal App implementation for exercising command logic
// without the rest of the event loop.
type fakeApp struct {
	list       *client.List
	screen     *Screen
	tagset     *Tagset
	killed     []*client.Client
	minimized  []*client.Client
	quit       bool
	redrawn    bool
	barToggled bool
	barPos     bool
	mouse      bool
}

func newFakeApp() *fakeApp {
	return &fakeApp{
		list:   client.NewList(1),
		screen: &Screen{NMaster: 1, MFact: 0.5, Layout: layout.Tile, DefaultNMaster: 1, DefaultMFact: 0.5},
		tagset: &Tagset{Views: [2]uint32{1, 1}},
	}
}

func (f *fakeApp) Clients() *client.List { return f.list }
func (f *fakeApp) Screen() *Screen       { return f.screen }
func (f *fakeApp) Tagset() *Tagset       { return f.tagset }

func (f *fakeApp) CreateClient(cmd, title, cwd string) error { return nil }
func (f *fakeApp) KillClient(c *client.Client)                { f.killed = append(f.killed, c) }
func (f *fakeApp) FocusByOrder(n int)                         { f.list.Focus(f.list.ByOrder(n)) }
func (f *fakeApp) FocusByID(id client.ID)                     { f.list.Focus(f.list.ByID(id)) }
func (f *fakeApp) FocusDirection(dir Direction)               {}
func (f *fakeApp) Zoom() {
	c := f.list.Head
	if c != nil && c.NextInList() != nil {
		second := c.NextInList()
		f.list.Detach(second)
		f.list.Attach(second)
	}
}
func (f *fakeApp) ToggleMinimize(c *client.Client) { c.Minimized = !c.Minimized; f.minimized = append(f.minimized, c) }
func (f *fakeApp) SetLayout(k layout.Kind)         { f.screen.Layout = k }
func (f *fakeApp) ToggleBar()                      { f.barToggled = true }
func (f *fakeApp) ToggleBarPos()                   { f.barPos = true }
func (f *fakeApp) ToggleMouse()                    { f.mouse = !f.mouse }
func (f *fakeApp) ScrollbackClient(c *client.Client, lines int) {}
func (f *fakeApp) EnterCopyMode(cmd string, seed []byte) error  { return nil }
func (f *fakeApp) Paste()                                       {}
func (f *fakeApp) SendKeys(c *client.Client, data []byte)       {}
func (f *fakeApp) Redraw()                                      { f.redrawn = true }
func (f *fakeApp) Quit()                                        { f.quit = true }
func (f *fakeApp) RunStartup(actions [][]string)                {}

func mkClient(id client.ID, tag uint32) *client.Client {
	c := client.New(id, "sh")
	c.Tags = tag
	return c
}

func TestIncNMasterAbsentArgResetsToDefault(t *testing.T) {
	a := newFakeApp()
	a.screen.NMaster = 5
	r := NewRegistry()
	r.Invoke(a, "incnmaster", nil)
	if a.screen.NMaster != 1 {
		t.Fatalf("NMaster = %d, want 1 (default) when arg absent", a.screen.NMaster)
	}
}

func TestIncNMasterPresentArgAppliesDelta(t *testing.T) {
	a := newFakeApp()
	a.screen.NMaster = 2
	r := NewRegistry()
	r.Invoke(a, "incnmaster", []string{"+1"})
	if a.screen.NMaster != 3 {
		t.Fatalf("NMaster = %d, want 3", a.screen.NMaster)
	}
	r.Invoke(a, "incnmaster", []string{"-2"})
	if a.screen.NMaster != 1 {
		t.Fatalf("NMaster = %d, want 1", a.screen.NMaster)
	}
}

func TestSetMFactRoundTrip(t *testing.T) {
	a := newFakeApp()
	r := NewRegistry()
	start := a.screen.MFact
	r.Invoke(a, "setmfact", []string{"+0.1"})
	r.Invoke(a, "setmfact", []string{"-0.1"})
	if diff := a.screen.MFact - start; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("mfact round-trip: got %v, want %v", a.screen.MFact, start)
	}
}

func TestSetMFactNoopUnderFullscreen(t *testing.T) {
	a := newFakeApp()
	a.screen.Layout = layout.Fullscreen
	start := a.screen.MFact
	r := NewRegistry()
	r.Invoke(a, "setmfact", []string{"+0.3"})
	if a.screen.MFact != start {
		t.Fatalf("setmfact should be a no-op under fullscreen, mfact changed to %v", a.screen.MFact)
	}
}

func TestToggleTagIdentityWhenNonZero(t *testing.T) {
	c := mkClient(1, 0b0011)
	a := newFakeApp()
	a.list.Attach(c)
	a.list.Focus(c)
	r := NewRegistry()
	r.Invoke(a, "toggletag", []string{"0"})
	r.Invoke(a, "toggletag", []string{"0"})
	if c.Tags != 0b0011 {
		t.Fatalf("toggletag twice should be identity, got %b", c.Tags)
	}
}

func TestToggleTagNoopWhenResultZero(t *testing.T) {
	c := mkClient(1, 0b0001)
	a := newFakeApp()
	a.list.Attach(c)
	a.list.Focus(c)
	r := NewRegistry()
	r.Invoke(a, "toggletag", []string{"0"})
	if c.Tags != 0b0001 {
		t.Fatalf("toggletag resulting in empty mask should be a no-op, got %b", c.Tags)
	}
}

func TestViewThenViewPrevTagRestores(t *testing.T) {
	a := newFakeApp()
	r := NewRegistry()
	r.Invoke(a, "view", []string{"0"}) // view A (tag bit 0)
	r.Invoke(a, "view", []string{"1"}) // view B (tag bit 1)
	r.Invoke(a, "viewprevtag", nil)
	if a.tagset.Current() != 1 {
		t.Fatalf("viewprevtag did not restore tag A, got %b", a.tagset.Current())
	}
}

func TestTagZoomLeavesClientOnTagAndHead(t *testing.T) {
	a := newFakeApp()
	c1 := mkClient(1, 1)
	c2 := mkClient(2, 1)
	a.list.Attach(c2)
	a.list.Attach(c1) // head = c1, c2 second
	a.list.Focus(c2)
	r := NewRegistry()
	r.Invoke(a, "tag", []string{"2"}) // tag index 2 -> bit 1<<2 = 4, same convention as view/toggletag
	if c2.Tags != 4 {
		t.Fatalf("tag did not set mask, got %d", c2.Tags)
	}
	a.Zoom()
	if a.list.Head != c2 {
		t.Fatalf("zoom did not leave client at spatial head")
	}
}

func TestCreateDelegatesToApp(t *testing.T) {
	a := newFakeApp()
	r := NewRegistry()
	if err := r.Invoke(a, "create", []string{"bash"}); err != nil {
		t.Fatalf("create returned error: %v", err)
	}
}

func TestUnknownCommandIsError(t *testing.T) {
	a := newFakeApp()
	r := NewRegistry()
	if err := r.Invoke(a, "bogus", nil); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestQuitSetsFlag(t *testing.T) {
	a := newFakeApp()
	r := NewRegistry()
	r.Invoke(a, "quit", nil)
	if !a.quit {
		t.Fatal("quit command did not set quit flag")
	}
}

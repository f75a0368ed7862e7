package app

import (
	"testing"

	"dvtm-go/internal/client"
	"dvtm-go/internal/command"
	"dvtm-go/internal/config"
	"dvtm-go/internal/layout"
	"dvtm-go/internal/statusbar"
)

func newTestApp(w, h int) *App {
	return &App{
		cfg:     config.Default(),
		clients: client.NewList(1),
		screen:  &command.Screen{W: w, H: h, NMaster: 1, MFact: 0.5, Layout: layout.Tile},
		tagset:  &command.Tagset{Views: [2]uint32{1, 1}},
		bar:     statusbar.New(statusbar.Off),
	}
}

func attachTestClient(a *App, id client.ID) *client.Client {
	c := client.New(id, "test")
	c.Tags = a.tagset.Current()
	a.clients.Attach(c)
	a.clients.AttachStack(c)
	return c
}

func TestFdSetBasics(t *testing.T) {
	var s fdSet
	s.zero()
	if s.isSet(5) {
		t.Fatal("fresh set should have no bits set")
	}
	s.set(5)
	s.set(70)
	if !s.isSet(5) || !s.isSet(70) {
		t.Fatal("expected fds 5 and 70 set")
	}
	if s.isSet(6) {
		t.Fatal("fd 6 should not be set")
	}
}

func TestNamedControl(t *testing.T) {
	cases := map[byte]string{
		0x07: "C-g",
		0x09: "Tab",
		0x0d: "Return",
		0x7f: "Backspace",
		0x01: "C-a",
	}
	for b, want := range cases {
		if got := namedControl(b); got != want {
			t.Errorf("namedControl(%#x) = %q, want %q", b, got, want)
		}
	}
}

func TestUTF8LeadLen(t *testing.T) {
	cases := []struct {
		b    byte
		want int
	}{
		{0x41, 1},
		{0xC2, 2},
		{0xE2, 3},
		{0xF0, 4},
	}
	for _, c := range cases {
		if got := utf8LeadLen(c.b); got != c.want {
			t.Errorf("utf8LeadLen(%#x) = %d, want %d", c.b, got, c.want)
		}
	}
}

func TestDecodeX10Mouse(t *testing.T) {
	ev := decodeX10Mouse([3]byte{' ' + 0, 33 + 5, 33 + 10})
	if ev.Button != 1 {
		t.Errorf("Button = %d, want 1", ev.Button)
	}
	if ev.X != 5 || ev.Y != 10 {
		t.Errorf("X,Y = %d,%d want 5,10", ev.X, ev.Y)
	}
}

func TestRearrangeTileTwoClients(t *testing.T) {
	a := newTestApp(80, 24)
	c1 := attachTestClient(a, 1)
	c2 := attachTestClient(a, 2)
	a.clients.Focus(c1)

	a.rearrange()

	if c1.W == 0 || c2.W == 0 {
		t.Fatal("expected both clients to receive non-zero width")
	}
	if c1.X == c2.X {
		t.Fatal("expected master and stack clients at different X offsets")
	}
	if c1.X != 0 && c2.X != 0 {
		t.Error("expected one client to start at X=0 (the master column)")
	}
}

func TestHitTestFindsContainingClient(t *testing.T) {
	a := newTestApp(80, 24)
	c := attachTestClient(a, 1)
	a.clients.Focus(c)
	a.rearrange()

	found := a.hitTest(c.X, c.Y)
	if found != c {
		t.Fatalf("hitTest(%d,%d) = %v, want %v", c.X, c.Y, found, c)
	}
	if out := a.hitTest(c.X+c.W+100, c.Y); out != nil {
		t.Fatalf("hitTest far outside any client = %v, want nil", out)
	}
}

func TestToggleMinimizeOrdering(t *testing.T) {
	a := newTestApp(80, 24)
	c1 := attachTestClient(a, 1)
	c2 := attachTestClient(a, 2)
	c3 := attachTestClient(a, 3)
	a.clients.Focus(c1)

	a.ToggleMinimize(c2)
	if !c2.Minimized {
		t.Fatal("expected c2 minimized")
	}

	var order []client.ID
	a.clients.Walk(func(c *client.Client) { order = append(order, c.ID) })
	if len(order) != 3 || order[len(order)-1] != c2.ID {
		t.Fatalf("expected minimized client last, got order %v", order)
	}
	_ = c3

	a.ToggleMinimize(c2)
	if c2.Minimized {
		t.Fatal("expected c2 restored")
	}
}

func TestFocusDirectionFallsBackWhenNoTargetInRect(t *testing.T) {
	a := newTestApp(80, 24)
	c1 := attachTestClient(a, 1)
	c2 := attachTestClient(a, 2)
	a.clients.Focus(c1)
	a.rearrange()

	a.FocusDirection(command.DirRight)
	if a.clients.Sel != c2 && a.clients.Sel != c1 {
		t.Fatalf("focus landed on unexpected client %v", a.clients.Sel)
	}
}

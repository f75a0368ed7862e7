package statusbar

import "testing"

func TestFeedRetainsLastLineOnly(t *testing.T) {
	b := New(Top)
	b.Feed([]byte("first\nsecond\nthird\n"))
	if b.Text() != "third" {
		t.Fatalf("Text() = %q, want %q", b.Text(), "third")
	}
}

func TestFeedTruncatesToMax(t *testing.T) {
	b := New(Top)
	long := make([]byte, maxText+50)
	for i := range long {
		long[i] = 'x'
	}
	b.Feed(long)
	if len(b.Text()) != maxText {
		t.Fatalf("Text() length = %d, want %d", len(b.Text()), maxText)
	}
}

func TestToggleRestoresLastPos(t *testing.T) {
	b := New(Bottom)
	b.Toggle()
	if b.Pos != Off {
		t.Fatalf("Pos = %v, want Off", b.Pos)
	}
	if b.LastPos != Bottom {
		t.Fatalf("LastPos = %v, want Bottom", b.LastPos)
	}
	b.Toggle()
	if b.Pos != Bottom {
		t.Fatalf("Pos = %v, want Bottom after re-toggle", b.Pos)
	}
}

func TestTogglePosWhileOffFlipsLastPos(t *testing.T) {
	b := New(Top)
	b.Toggle() // now Off, LastPos=Top
	b.TogglePos()
	if b.LastPos != Bottom {
		t.Fatalf("LastPos = %v, want Bottom after TogglePos while off", b.LastPos)
	}
	b.Toggle() // turn back on
	if b.Pos != Bottom {
		t.Fatalf("Pos = %v, want Bottom", b.Pos)
	}
}

func TestHiddenWhenOff(t *testing.T) {
	b := New(Off)
	if !b.Hidden(3) {
		t.Fatal("bar with Pos=Off must be hidden")
	}
}

func TestHiddenAutohideSingleClient(t *testing.T) {
	b := New(Top)
	b.Autohide = true
	if !b.Hidden(1) {
		t.Fatal("autohide bar with 1 visible client should be hidden")
	}
	if b.Hidden(2) {
		t.Fatal("autohide bar with 2 visible clients should be shown")
	}
}

func TestSetErrorClosesFifo(t *testing.T) {
	b := New(Top)
	b.Fd = 7
	b.SetError("no such device")
	if b.Fd != -1 {
		t.Fatal("SetError should close the fd")
	}
	if b.Text() != "no such device" {
		t.Fatalf("Text() = %q", b.Text())
	}
}

func TestTruncateToWidthKeepsTrailingRunes(t *testing.T) {
	got := truncateToWidth("hello world", 5)
	if got != "world" {
		t.Fatalf("truncateToWidth = %q, want %q", got, "world")
	}
}

func TestRenderIncludesTagsAndLayout(t *testing.T) {
	tags := []TagState{{Name: "1", Attr: AttrSelected}, {Name: "2", Attr: AttrNormal}}
	out := Render(tags, "[]=", false, "status", 40)
	if len(out) == 0 {
		t.Fatal("Render returned empty string")
	}
}

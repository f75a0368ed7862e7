package input

import (
	"testing"

	"dvtm-go/internal/config"
)

func bindings() []config.KeyBinding {
	return []config.KeyBinding{
		{Keys: []string{"C-g", "c"}, Command: "create"},
		{Keys: []string{"C-g", "C-g", "x"}, Command: "deep"},
		{Keys: []string{"C-g", "j"}, Command: "focusnext"},
	}
}

func TestFeedExactMatch(t *testing.T) {
	d := NewDispatcher(bindings())
	res, _ := d.Feed("C-g")
	if res != Pending {
		t.Fatalf("first key: got %v, want Pending", res)
	}
	res, kb := d.Feed("c")
	if res != Matched || kb.Command != "create" {
		t.Fatalf("second key: got %v %+v, want Matched/create", res, kb)
	}
}

func TestFeedNoMatchResetsChord(t *testing.T) {
	d := NewDispatcher(bindings())
	d.Feed("C-g")
	res, _ := d.Feed("z") // no binding has C-g,z
	if res != NoMatch {
		t.Fatalf("got %v, want NoMatch", res)
	}
	// chord buffer should have reset; feeding "c" alone should not
	// match the two-key "C-g","c" binding.
	res, _ = d.Feed("c")
	if res != NoMatch {
		t.Fatalf("after reset, got %v, want NoMatch (chord starts fresh)", res)
	}
}

func TestFeedThreeKeyChord(t *testing.T) {
	d := NewDispatcher(bindings())
	d.Feed("C-g")
	res, _ := d.Feed("C-g")
	if res != Pending {
		t.Fatalf("got %v, want Pending after 2 keys of a 3-key chord", res)
	}
	res, kb := d.Feed("x")
	if res != Matched || kb.Command != "deep" {
		t.Fatalf("got %v %+v, want Matched/deep", res, kb)
	}
}

func TestResolveMouseAllMatchingFire(t *testing.T) {
	bs := []config.MouseBinding{
		{Button: 1, Command: "mouse_focus"},
		{Button: 1, Command: "mouse_fullscreen"},
		{Button: 2, Command: "mouse_zoom"},
	}
	matches := ResolveMouse(MouseEvent{Button: 1}, bs)
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Command != "mouse_focus" || matches[1].Command != "mouse_fullscreen" {
		t.Fatalf("matches out of binding-table order: %+v", matches)
	}
}

func TestCollectEscapeSequenceStopsAtSourceExhaustion(t *testing.T) {
	data := []byte{'[', 'A'}
	i := 0
	next := func() (byte, bool) {
		if i >= len(data) {
			return 0, false
		}
		b := data[i]
		i++
		return b, true
	}
	seq := CollectEscapeSequence(next)
	want := []byte{0x1B, '[', 'A'}
	if len(seq.Bytes) != len(want) {
		t.Fatalf("got %v, want %v", seq.Bytes, want)
	}
	for idx := range want {
		if seq.Bytes[idx] != want[idx] {
			t.Fatalf("got %v, want %v", seq.Bytes, want)
		}
	}
}

func TestCollectEscapeSequenceCapsAtSevenExtraBytes(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}
	i := 0
	next := func() (byte, bool) {
		if i >= len(data) {
			return 0, false
		}
		b := data[i]
		i++
		return b, true
	}
	seq := CollectEscapeSequence(next)
	if len(seq.Bytes) != 1+maxEscapeExtra {
		t.Fatalf("got %d bytes, want %d (ESC + 7)", len(seq.Bytes), 1+maxEscapeExtra)
	}
}

package render

import (
	"testing"

	"dvtm-go/internal/client"
	"dvtm-go/internal/config"
)

func TestBorderAttrPrecedence(t *testing.T) {
	c := client.New(1, "sh")
	c.Urgent = true
	if got := BorderAttr(c, false, false); got != AttrUrgent {
		t.Fatalf("urgent non-selected = %v, want AttrUrgent", got)
	}
	if got := BorderAttr(c, true, false); got != AttrSelected {
		t.Fatalf("selected (even if urgent) = %v, want AttrSelected", got)
	}
	c.Urgent = false
	if got := BorderAttr(c, false, false); got != AttrNormal {
		t.Fatalf("plain client = %v, want AttrNormal", got)
	}
}

func TestBorderAttrBroadcastSkipsMinimized(t *testing.T) {
	c := client.New(1, "sh")
	c.Minimized = true
	if got := BorderAttr(c, false, true); got == AttrSelected {
		t.Fatal("minimized client under broadcast should not get selected highlight")
	}
}

func TestDrawBorderIncludesTitleAndOrder(t *testing.T) {
	c := client.New(1, "sh")
	c.SetTitle("bash")
	c.Order = 2
	out := DrawBorder(c, 40)
	if !contains(out, "[bash | #2]") {
		t.Fatalf("border %q missing title/order label", out)
	}
}

func TestDrawBorderTruncatesToWidth(t *testing.T) {
	c := client.New(1, "sh")
	c.SetTitle("a very very long title that will not fit")
	c.Order = 1
	out := DrawBorder(c, 10)
	if len([]rune(out)) > 10+1 {
		t.Fatalf("border exceeds width budget: %q", out)
	}
}

func TestReserveCachesSamePair(t *testing.T) {
	p := NewPalette()
	a := p.Reserve("#ff0000", "#000000")
	b := p.Reserve("#ff0000", "#000000")
	if a != b {
		t.Fatalf("Reserve should cache repeated pairs: %d != %d", a, b)
	}
	c := p.Reserve("#00ff00", "#000000")
	if c == a {
		t.Fatal("distinct pairs should get distinct indices")
	}
}

func TestMatchColorRuleSubstring(t *testing.T) {
	rules := []config.ColorRule{
		{Substr: "vim", FG: "#ffffff"},
		{Substr: "bash", FG: "#00ff00"},
	}
	rule, ok := MatchColorRule("bash -l", rules)
	if !ok || rule.Substr != "bash" {
		t.Fatalf("got %+v, %v", rule, ok)
	}
	_, ok = MatchColorRule("zsh", rules)
	if ok {
		t.Fatal("expected no match for zsh")
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

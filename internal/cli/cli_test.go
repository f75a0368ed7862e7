package cli

import "testing"

func TestNormalizeMod(t *testing.T) {
	cases := map[string]string{
		"^g": "C-g",
		"^X": "C-x",
		"F2": "F2",
	}
	for in, want := range cases {
		if got := normalizeMod(in); got != want {
			t.Errorf("normalizeMod(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClamp(t *testing.T) {
	cases := []struct{ n, lo, hi, want int }{
		{10, 50, 1000, 50},
		{2000, 50, 1000, 1000},
		{100, 50, 1000, 100},
	}
	for _, c := range cases {
		if got := clamp(c.n, c.lo, c.hi); got != c.want {
			t.Errorf("clamp(%d,%d,%d) = %d, want %d", c.n, c.lo, c.hi, got, c.want)
		}
	}
}

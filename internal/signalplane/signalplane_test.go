package signalplane

import "testing"

func TestSelfPipeNotifyAndDrain(t *testing.T) {
	p, err := NewSelfPipe()
	if err != nil {
		t.Fatal(err)
	}
	defer p.r.Close()
	defer p.w.Close()

	p.Notify()
	p.Notify()
	p.Notify()

	buf := make([]byte, 1)
	n, err := p.r.Read(buf)
	if err != nil || n != 1 {
		t.Fatalf("expected at least one byte readable, got n=%d err=%v", n, err)
	}
	p.Drain()
}

func TestBacktracePathIncludesInstanceID(t *testing.T) {
	p := backtracePath("abc-123")
	if len(p) == 0 {
		t.Fatal("empty backtrace path")
	}
	if !contains(p, "abc-123") {
		t.Fatalf("path %q missing instance id", p)
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

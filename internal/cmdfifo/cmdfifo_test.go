package cmdfifo

import "testing"

func TestParseLineBareArgs(t *testing.T) {
	l, err := ParseLine("create bash /tmp\n")
	if err != nil {
		t.Fatal(err)
	}
	if l.Command != "create" || len(l.Args) != 2 || l.Args[0] != "bash" || l.Args[1] != "/tmp" {
		t.Fatalf("got %+v", l)
	}
}

func TestParseLineDoubleQuoted(t *testing.T) {
	l, err := ParseLine(`send "hello world"`)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Args) != 1 || l.Args[0] != "hello world" {
		t.Fatalf("got %+v", l)
	}
}

func TestParseLineSingleQuoted(t *testing.T) {
	l, err := ParseLine(`send 'hi there'`)
	if err != nil {
		t.Fatal(err)
	}
	if l.Args[0] != "hi there" {
		t.Fatalf("got %q", l.Args[0])
	}
}

func TestParseLineEscapeCollapse(t *testing.T) {
	l, err := ParseLine(`send "a\"b\\c"`)
	if err != nil {
		t.Fatal(err)
	}
	if l.Args[0] != `a"b\c` {
		t.Fatalf("got %q", l.Args[0])
	}
}

func TestParseLineTagSimple(t *testing.T) {
	l, err := ParseLine("tag 2\n")
	if err != nil {
		t.Fatal(err)
	}
	if l.Command != "tag" || l.Args[0] != "2" {
		t.Fatalf("got %+v", l)
	}
}

func TestParseLineEmptyIsError(t *testing.T) {
	if _, err := ParseLine("   \n"); err == nil {
		t.Fatal("expected error for empty/whitespace-only line")
	}
}

func TestParseLineExcessArgsIgnored(t *testing.T) {
	l, err := ParseLine("send a b c d e f g h i j")
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Args) != maxArgs {
		t.Fatalf("got %d args, want %d (capped)", len(l.Args), maxArgs)
	}
}

func TestParseLineMixedQuotesAndBare(t *testing.T) {
	l, err := ParseLine(`create 'my shell' "a title" /tmp/x`)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"my shell", "a title", "/tmp/x"}
	for i, w := range want {
		if l.Args[i] != w {
			t.Fatalf("arg[%d] = %q, want %q", i, l.Args[i], w)
		}
	}
}

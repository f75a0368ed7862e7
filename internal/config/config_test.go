package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultHasEightTags(t *testing.T) {
	c := Default()
	if len(c.Tags) != 8 {
		t.Fatalf("got %d tags, want 8", len(c.Tags))
	}
	if c.Tags[0].Bit != 1 || c.Tags[7].Bit != 1<<7 {
		t.Fatalf("tag bits not a dense 0..7 bitmask: %+v", c.Tags)
	}
}

func TestDefaultMasterAndFact(t *testing.T) {
	c := Default()
	if c.NMaster != 1 {
		t.Fatalf("NMaster = %d, want 1", c.NMaster)
	}
	if c.MFact != 0.5 {
		t.Fatalf("MFact = %v, want 0.5", c.MFact)
	}
}

func TestReplaceModKey(t *testing.T) {
	c := Default()
	c.ReplaceModKey("C-a")
	for _, kb := range c.Keys {
		if kb.Keys[0] == modPlaceholder {
			t.Fatalf("binding %+v still has placeholder mod key", kb)
		}
	}
}

func TestLoadMissingPathReturnsDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if len(c.Tags) != 8 {
		t.Fatalf("expected default tag set, got %d tags", len(c.Tags))
	}
}

func TestLoadOverlaysKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dvtm.yaml")
	yamlBody := "keys:\n  - keys: [\"C-g\", \"x\"]\n    command: killclient\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(c.Keys) != 1 || c.Keys[0].Command != "killclient" {
		t.Fatalf("overlay keys not applied: %+v", c.Keys)
	}
	// Tags should remain at default since overlay didn't specify any.
	if len(c.Tags) != 8 {
		t.Fatalf("expected default tags preserved, got %d", len(c.Tags))
	}
}

func TestTagBitByName(t *testing.T) {
	c := Default()
	if c.TagBitByName("1") != 1 {
		t.Fatalf("TagBitByName(1) = %d, want 1", c.TagBitByName("1"))
	}
	if c.TagBitByName("nope") != 0 {
		t.Fatal("unknown tag name should return 0")
	}
}

func TestAllTagsMask(t *testing.T) {
	c := Default()
	if c.AllTagsMask() != 0xFF {
		t.Fatalf("AllTagsMask = %x, want 0xff", c.AllTagsMask())
	}
}

func TestLoadOverlaysStartupScalarLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dvtm.yaml")
	yamlBody := "startup:\n  - \"nvim -R notes.txt\"\n  - \"htop\"\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(c.Startup) != 2 {
		t.Fatalf("expected 2 startup actions, got %d", len(c.Startup))
	}
	if c.Startup[0].Command != "nvim" || len(c.Startup[0].Args) != 2 || c.Startup[0].Args[0] != "-R" || c.Startup[0].Args[1] != "notes.txt" {
		t.Fatalf("startup[0] not tokenized correctly: %+v", c.Startup[0])
	}
	if c.Startup[1].Command != "htop" || len(c.Startup[1].Args) != 0 {
		t.Fatalf("startup[1] not tokenized correctly: %+v", c.Startup[1])
	}
}

func TestCopyEditorArgvEmptyWhenUnset(t *testing.T) {
	c := Default()
	argv, err := c.CopyEditorArgv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if argv != nil {
		t.Fatalf("expected nil argv when unset, got %v", argv)
	}
}

func TestCopyEditorArgvTokenizes(t *testing.T) {
	c := Default()
	c.CopyModeEditor = "vim -R -"
	argv, err := c.CopyEditorArgv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"vim", "-R", "-"}
	if len(argv) != len(want) {
		t.Fatalf("argv = %v, want %v", argv, want)
	}
	for i := range want {
		if argv[i] != want[i] {
			t.Fatalf("argv = %v, want %v", argv, want)
		}
	}
}

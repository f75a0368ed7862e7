// Package config is the compile-time configuration object spec.md treats
// as an external collaborator: tags, keybindings, mouse bindings, layout
// set, color rules and startup actions. Unlike dvtm.c's config.h, values
// live in a Go struct with dvtm-equivalent defaults, optionally overridden
// by a YAML file (mirroring the teacher's own YAML-based config loading).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"

	"dvtm-go/internal/layout"
)

// Tag names a single virtual desktop bit.
type Tag struct {
	Name string `yaml:"name"`
	Bit  uint32 `yaml:"-"`
}

// KeyBinding maps a chord (1..MAX_KEYS keys) to a command invocation.
type KeyBinding struct {
	Keys    []string `yaml:"keys"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// MouseBinding maps a button number to a command invocation.
type MouseBinding struct {
	Button  int      `yaml:"button"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// ColorRule selects an attribute/color pair for clients whose title
// contains a substring, re-evaluated on every title change.
type ColorRule struct {
	Substr string `yaml:"match"`
	FG     string `yaml:"fg"`
	BG     string `yaml:"bg"`
	Bold   bool   `yaml:"bold"`
}

// StartupAction is one (command, args) pair run at launch. In YAML it
// may be written either as a {command, args} mapping or, more
// conveniently, as a single shell-like string ("nvim notes.txt") that is
// tokenized into Command/Args with shlex, mirroring how the teacher
// tokenizes operator-supplied command lines.
type StartupAction struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// UnmarshalYAML accepts either a mapping (decoded normally) or a scalar
// command line (split with shlex.Split).
func (s *StartupAction) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var line string
		if err := value.Decode(&line); err != nil {
			return err
		}
		fields, err := shlex.Split(line)
		if err != nil {
			return fmt.Errorf("parse startup line %q: %w", line, err)
		}
		if len(fields) == 0 {
			return fmt.Errorf("empty startup line")
		}
		s.Command, s.Args = fields[0], fields[1:]
		return nil
	}
	type plain StartupAction
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*s = StartupAction(p)
	return nil
}

// Config is the fully-resolved configuration object.
type Config struct {
	Tags    []Tag   `yaml:"tags"`
	Layouts []layout.Kind `yaml:"-"`

	Keys   []KeyBinding   `yaml:"keys"`
	Mouse  []MouseBinding `yaml:"mouse"`
	Colors []ColorRule    `yaml:"colors"`

	Startup []StartupAction `yaml:"startup"`

	NMaster    int     `yaml:"nmaster"`
	MFact      float64 `yaml:"mfact"`
	Scrollback int     `yaml:"scrollback"`
	MouseEnabled bool  `yaml:"mouse_enabled"`
	BarAutohide  bool  `yaml:"bar_autohide"`
	EscDelayMS   int   `yaml:"esc_delay_ms"`

	// CopyModeEditor, if set, is a shell-like command line ("vim -R -")
	// used to launch the copy-mode editor instead of $EDITOR/vi.
	CopyModeEditor string `yaml:"copymode_editor"`

	StatusFifo string `yaml:"-"`
	CmdFifo    string `yaml:"-"`
	Title      string `yaml:"-"`
}

// CopyEditorArgv tokenizes CopyModeEditor into argv, or returns nil if
// unset (caller falls back to $EDITOR).
func (c *Config) CopyEditorArgv() ([]string, error) {
	if c.CopyModeEditor == "" {
		return nil, nil
	}
	return shlex.Split(c.CopyModeEditor)
}

// DefaultTagNames mirrors dvtm.c's default eight-tag set ("1".."8").
var DefaultTagNames = []string{"1", "2", "3", "4", "5", "6", "7", "8"}

// Default returns dvtm-equivalent defaults: tile/bstack/grid/fullscreen
// cycle, nmaster=1, mfact=0.5, an eight-tag set, and the stock Ctrl-g
// prefix bindings.
func Default() *Config {
	c := &Config{
		Layouts:      []layout.Kind{layout.Tile, layout.BStack, layout.Grid, layout.Fullscreen},
		NMaster:      1,
		MFact:        0.5,
		Scrollback:   1000,
		MouseEnabled: false,
		BarAutohide:  false,
		EscDelayMS:   100,
	}
	for i, n := range DefaultTagNames {
		c.Tags = append(c.Tags, Tag{Name: n, Bit: 1 << uint(i)})
	}
	c.Keys = defaultKeyBindings()
	c.Mouse = defaultMouseBindings()
	return c
}

// modPlaceholder is the configurable chord prefix, CTRL('g') by default. -m MOD
// on the CLI replaces every binding whose first key equals this
// placeholder.
const modPlaceholder = "C-g"

func defaultKeyBindings() []KeyBinding {
	keys := []KeyBinding{
		{Keys: []string{modPlaceholder, "c"}, Command: "create"},
		{Keys: []string{modPlaceholder, "C-c"}, Command: "killclient"},
		{Keys: []string{modPlaceholder, "Tab"}, Command: "focuslast"},
		{Keys: []string{modPlaceholder, "j"}, Command: "focusnext"},
		{Keys: []string{modPlaceholder, "k"}, Command: "focusprev"},
		{Keys: []string{modPlaceholder, "J"}, Command: "focusdown"},
		{Keys: []string{modPlaceholder, "K"}, Command: "focusup"},
		{Keys: []string{modPlaceholder, "H"}, Command: "focusleft"},
		{Keys: []string{modPlaceholder, "L"}, Command: "focusright"},
		{Keys: []string{modPlaceholder, "Return"}, Command: "zoom"},
		{Keys: []string{modPlaceholder, "m"}, Command: "toggleminimize"},
		{Keys: []string{modPlaceholder, "t"}, Command: "setlayout", Args: []string{"tile"}},
		{Keys: []string{modPlaceholder, "b"}, Command: "setlayout", Args: []string{"bstack"}},
		{Keys: []string{modPlaceholder, "g"}, Command: "setlayout", Args: []string{"grid"}},
		{Keys: []string{modPlaceholder, "f"}, Command: "setlayout", Args: []string{"fullscreen"}},
		{Keys: []string{modPlaceholder, "i"}, Command: "incnmaster", Args: []string{"+1"}},
		{Keys: []string{modPlaceholder, "d"}, Command: "incnmaster", Args: []string{"-1"}},
		{Keys: []string{modPlaceholder, "h"}, Command: "setmfact", Args: []string{"-0.05"}},
		{Keys: []string{modPlaceholder, "l"}, Command: "setmfact", Args: []string{"+0.05"}},
		{Keys: []string{modPlaceholder, "B"}, Command: "togglebar"},
		{Keys: []string{modPlaceholder, "p"}, Command: "togglebarpos"},
		{Keys: []string{modPlaceholder, "M"}, Command: "togglemouse"},
		{Keys: []string{modPlaceholder, "r"}, Command: "togglerunall"},
		{Keys: []string{modPlaceholder, "Up"}, Command: "scrollback", Args: []string{"-2"}},
		{Keys: []string{modPlaceholder, "Down"}, Command: "scrollback", Args: []string{"2"}},
		{Keys: []string{modPlaceholder, "e"}, Command: "copymode", Args: []string{"editor"}},
		{Keys: []string{modPlaceholder, "space"}, Command: "copymode", Args: []string{"pager"}},
		{Keys: []string{modPlaceholder, "y"}, Command: "paste"},
		{Keys: []string{modPlaceholder, "C-l"}, Command: "redraw"},
		{Keys: []string{modPlaceholder, "C-q"}, Command: "quit"},
	}
	return append(keys, tagKeyBindings()...)
}

// tagKeyBindings is dvtm.c's TAGKEYS macro expanded for DefaultTagNames:
// MOD+digit views a tag, MOD+C-digit toggles it into the current view,
// and MOD+<shifted digit> sends the selected client to it -- a plain
// terminal byte stream carries a shifted digit as its shifted-symbol
// byte (e.g. Shift-2 arrives as '@'), so that symbol stands in for the
// X11 ShiftMask combo dvtm.c binds directly.
func tagKeyBindings() []KeyBinding {
	shifted := []string{"!", "@", "#", "$", "%", "^", "&", "*"}
	var keys []KeyBinding
	for i := range DefaultTagNames {
		if i >= 9 {
			break // digit keys only go to 9
		}
		idx := strconv.Itoa(i)
		digit := strconv.Itoa(i + 1)
		keys = append(keys,
			KeyBinding{Keys: []string{modPlaceholder, digit}, Command: "view", Args: []string{idx}},
			KeyBinding{Keys: []string{modPlaceholder, "C-" + digit}, Command: "toggleview", Args: []string{idx}},
		)
		if i < len(shifted) {
			keys = append(keys, KeyBinding{Keys: []string{modPlaceholder, shifted[i]}, Command: "tag", Args: []string{idx}})
		}
	}
	return keys
}

func defaultMouseBindings() []MouseBinding {
	return []MouseBinding{
		{Button: 1, Command: "mouse_focus"},
		{Button: 1, Command: "mouse_fullscreen"}, // double click, resolved by input layer
		{Button: 2, Command: "mouse_zoom"},
		{Button: 3, Command: "mouse_minimize"},
	}
}

// ReplaceModKey substitutes every binding whose first key equals the MOD
// placeholder with newMod, the "-m MOD" CLI flag's effect.
func (c *Config) ReplaceModKey(newMod string) {
	for i := range c.Keys {
		if len(c.Keys[i].Keys) > 0 && c.Keys[i].Keys[0] == modPlaceholder {
			c.Keys[i].Keys[0] = newMod
		}
	}
}

// LocatePath resolves the YAML config file path: $DVTM_CONFIG if set,
// else ~/.config/dvtm/dvtm.yaml if it exists, else "" (use defaults).
func LocatePath() string {
	if p := os.Getenv("DVTM_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(home, ".config", "dvtm", "dvtm.yaml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// Load starts from Default() and merges in the YAML file at path, if
// non-empty. Fields absent from the file keep their default values.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(overlay.Tags) > 0 {
		c.Tags = nil
		for i, t := range overlay.Tags {
			c.Tags = append(c.Tags, Tag{Name: t.Name, Bit: 1 << uint(i)})
		}
	}
	if len(overlay.Keys) > 0 {
		c.Keys = overlay.Keys
	}
	if len(overlay.Mouse) > 0 {
		c.Mouse = overlay.Mouse
	}
	if len(overlay.Colors) > 0 {
		c.Colors = overlay.Colors
	}
	if len(overlay.Startup) > 0 {
		c.Startup = overlay.Startup
	}
	if overlay.NMaster > 0 {
		c.NMaster = overlay.NMaster
	}
	if overlay.MFact > 0 {
		c.MFact = overlay.MFact
	}
	if overlay.Scrollback > 0 {
		c.Scrollback = overlay.Scrollback
	}
	if overlay.MouseEnabled {
		c.MouseEnabled = true
	}
	if overlay.BarAutohide {
		c.BarAutohide = true
	}
	if overlay.EscDelayMS > 0 {
		c.EscDelayMS = overlay.EscDelayMS
	}
	if overlay.CopyModeEditor != "" {
		c.CopyModeEditor = overlay.CopyModeEditor
	}
	return c, nil
}

// TagBitByName returns the bitmask for a configured tag name, or 0.
func (c *Config) TagBitByName(name string) uint32 {
	for _, t := range c.Tags {
		if t.Name == name {
			return t.Bit
		}
	}
	return 0
}

// AllTagsMask returns the bitmask covering every configured tag.
func (c *Config) AllTagsMask() uint32 {
	var m uint32
	for _, t := range c.Tags {
		m |= t.Bit
	}
	return m
}

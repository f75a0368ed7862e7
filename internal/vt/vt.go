// Package vt adapts the vito/midterm virtual terminal library and
// creack/pty to the handle shape the multiplexer core expects: a screen
// buffer with scrollback, a title callback, an urgent (bell) callback and
// a cursor-visibility query, forked over a PTY.
//
// midterm itself does not expose title tracking, bell notification or
// cursor-visibility as public fields, so this package watches the raw
// child-output byte stream for the handful of escape sequences the core
// cares about (OSC 0/1/2 title, BEL, DECTCEM) before handing the bytes to
// midterm for cell-level interpretation.
package vt

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/creack/pty"
	"github.com/vito/midterm"
)

// TitleHandler is invoked whenever the child sets a new window title.
type TitleHandler func(title string)

// UrgentHandler is invoked whenever the child rings the bell.
type UrgentHandler func()

// VT owns one child process's PTY, its midterm screen buffer (which copy
// mode reads through ContentGet) and a scrollback offset counter.
type VT struct {
	mu sync.Mutex

	Term *midterm.Terminal // live screen, sized to the client's content area
	Ptm  *os.File
	Cmd  *exec.Cmd
	Pid  int

	rows, cols    int
	cursorVisible bool
	title         string

	scrollback    int // configured history depth; 0 disables scrolling
	scrollOffset  int // rows currently scrolled back from the live tail

	OnTitle  TitleHandler
	OnUrgent UrgentHandler

	// pending holds a partially-scanned escape sequence carried over
	// between Write calls so sequences split across PTY reads are not
	// missed.
	pending []byte
}

// New allocates a VT sized rows×cols. The child process is not started
// until Spawn is called.
func New(rows, cols, scrollback int) *VT {
	return &VT{
		Term:          midterm.NewTerminal(rows, cols),
		rows:          rows,
		cols:          cols,
		cursorVisible: true,
		scrollback:    scrollback,
	}
}

// Scroll moves the scrollback offset by delta rows (positive scrolls
// back toward history, negative scrolls toward the live tail), clamped
// to [0, scrollback]. It returns the resulting offset.
func (v *VT) Scroll(delta int) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrollOffset += delta
	if v.scrollOffset < 0 {
		v.scrollOffset = 0
	}
	if v.scrollOffset > v.scrollback {
		v.scrollOffset = v.scrollback
	}
	return v.scrollOffset
}

// ScrollOffset reports the current scrollback offset.
func (v *VT) ScrollOffset() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scrollOffset
}

// Spawn forks path with argv under a PTY sized to the VT's current
// dimensions. cwd may be empty (inherit). env entries are appended to the
// child's environment (and override inherited values with the same key).
// If toChild/fromChild are non-nil, the child's stdin/stdout are replaced
// by the given pipe ends instead of the PTY (used by copy mode).
func (v *VT) Spawn(path string, argv []string, cwd string, env []string, toChild, fromChild *os.File) (int, error) {
	cmd := exec.Command(path)
	cmd.Args = argv
	if cwd != "" {
		cmd.Dir = cwd
	}
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	if toChild != nil {
		cmd.Stdin = toChild
	}
	if fromChild != nil {
		cmd.Stdout = fromChild
		cmd.Stderr = fromChild
	}

	ptm, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(v.rows), Cols: uint16(v.cols)})
	if err != nil {
		return 0, fmt.Errorf("forkpty: %w", err)
	}
	v.Ptm = ptm
	v.Cmd = cmd
	v.Pid = cmd.Process.Pid
	return v.Pid, nil
}

// PTYFile returns the PTY master, or nil if the VT has not been spawned.
// It is set even when the child's stdio is remapped to pipes, as in copy
// mode.
func (v *VT) PTYFile() *os.File { return v.Ptm }

// Fd returns the PTY master file descriptor for use in a readiness wait,
// or -1 if there is none.
func (v *VT) Fd() int {
	if v.Ptm == nil {
		return -1
	}
	return int(v.Ptm.Fd())
}

// Read services one readiness notification: read available bytes from the
// PTY and feed them to the screen buffer. Returns io.EOF-class errors
// unchanged so the caller can treat them as child death.
func (v *VT) Read() error {
	buf := make([]byte, 8192)
	n, err := v.Ptm.Read(buf)
	if n > 0 {
		v.Write(buf[:n])
	}
	return err
}

// Write feeds raw child-output bytes through the escape scanner and into
// the midterm screen buffer. Exported so copy mode can also replay
// buffered scrollback through the same path.
func (v *VT) Write(p []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scan(p)
	v.Term.Write(p)
}

// scan watches for OSC title sequences, BEL and DECTCEM cursor show/hide
// so the core can answer CursorVisible/Title without reaching into
// midterm internals it doesn't expose.
func (v *VT) scan(p []byte) {
	if len(v.pending) > 0 {
		p = append(v.pending, p...)
		v.pending = nil
	}
	for i := 0; i < len(p); i++ {
		b := p[i]
		switch {
		case b == 0x07: // BEL
			if v.OnUrgent != nil {
				v.OnUrgent()
			}
		case b == 0x1B && i+1 == len(p): // ESC split from the rest of its sequence
			v.pending = []byte{0x1B}
			return
		case b == 0x1B && i+1 < len(p) && p[i+1] == ']': // OSC
			end, title, ok := parseOSCTitle(p[i:])
			if !ok {
				v.pending = append([]byte(nil), p[i:]...)
				return
			}
			if title != "" || end > 2 {
				v.title = title
				if v.OnTitle != nil {
					v.OnTitle(title)
				}
			}
			i += end - 1
		case b == 0x1B && i+1 < len(p) && p[i+1] == '[': // CSI
			end, show, hide, ok := parseCSICursor(p[i:])
			if !ok {
				v.pending = append([]byte(nil), p[i:]...)
				return
			}
			if show {
				v.cursorVisible = true
			} else if hide {
				v.cursorVisible = false
			}
			i += end - 1
		}
	}
}

// parseOSCTitle recognizes "ESC ] {0,1,2} ; TEXT (BEL|ESC \\)" and returns
// the number of bytes consumed and the title text. ok is false if the
// sequence is not yet complete (caller should buffer and retry).
func parseOSCTitle(p []byte) (consumed int, title string, ok bool) {
	// p[0]==ESC p[1]==']'
	i := 2
	start := i
	for i < len(p) && p[i] != ';' {
		i++
	}
	if i >= len(p) {
		return 0, "", false
	}
	kind := string(p[start:i])
	if kind != "0" && kind != "1" && kind != "2" {
		// Not a title OSC we track; skip to terminator.
		return scanOSCEnd(p)
	}
	i++ // skip ';'
	textStart := i
	for i < len(p) {
		if p[i] == 0x07 {
			return i + 1, string(p[textStart:i]), true
		}
		if p[i] == 0x1B && i+1 < len(p) && p[i+1] == '\\' {
			return i + 2, string(p[textStart:i]), true
		}
		i++
	}
	return 0, "", false
}

func scanOSCEnd(p []byte) (int, string, bool) {
	for i := 2; i < len(p); i++ {
		if p[i] == 0x07 {
			return i + 1, "", true
		}
		if p[i] == 0x1B && i+1 < len(p) && p[i+1] == '\\' {
			return i + 2, "", true
		}
	}
	return 0, "", false
}

// parseCSICursor recognizes "ESC [ ? 25 h" (show) / "ESC [ ? 25 l" (hide).
// Any other CSI sequence is consumed and ignored.
func parseCSICursor(p []byte) (consumed int, show, hide bool, ok bool) {
	i := 2 // past ESC [
	for i < len(p) && p[i] >= 0x30 && p[i] <= 0x3F {
		i++
	}
	for i < len(p) && p[i] >= 0x20 && p[i] <= 0x2F {
		i++
	}
	if i >= len(p) {
		return 0, false, false, false
	}
	final := p[i]
	params := string(p[2:i])
	if params == "?25" && final == 'h' {
		return i + 1, true, false, true
	}
	if params == "?25" && final == 'l' {
		return i + 1, false, true, true
	}
	return i + 1, false, false, true
}

// CursorVisible reports whether the child last requested DECTCEM show.
func (v *VT) CursorVisible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cursorVisible
}

// Title returns the last OSC-set window title.
func (v *VT) Title() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.title
}

// Resize changes the VT's dimensions and propagates them to the PTY.
func (v *VT) Resize(rows, cols int) {
	v.mu.Lock()
	v.rows, v.cols = rows, cols
	v.Term.Resize(rows, cols)
	v.mu.Unlock()
	if v.Ptm != nil {
		pty.Setsize(v.Ptm, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	}
}

// Dirty is a no-op (the analogue of vt_dirty()): the renderer repaints
// every visible client from Content on each tick, so there is no cached
// state here to invalidate.
func (v *VT) Dirty() {}

// ContentGet renders the current screen content as a plain (colored=false)
// or ANSI-annotated (colored=true) byte slice, analogous to dvtm's
// vt_content_get. Used by copy mode to pipe scrollback into a pager.
func (v *VT) ContentGet(colored bool) []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	var buf bytes.Buffer
	var lastFormat midterm.Format
	for row := 0; row < len(v.Term.Content); row++ {
		line := v.Term.Content[row]
		if !colored {
			buf.WriteString(strings.TrimRight(string(line), " "))
			buf.WriteByte('\n')
			continue
		}
		var pos int
		for region := range v.Term.Format.Regions(row) {
			f := region.F
			if f != lastFormat {
				buf.WriteString("\033[0m")
				buf.WriteString(f.Render())
				lastFormat = f
			}
			end := pos + region.Size
			if pos < len(line) {
				ce := end
				if ce > len(line) {
					ce = len(line)
				}
				buf.WriteString(string(line[pos:ce]))
			}
			pos = end
		}
		buf.WriteString("\033[0m\n")
	}
	return buf.Bytes()
}

// ContentStart returns the first row of content still holding text,
// analogous to dvtm's vt_content_start (used to seed the pager's initial
// line number).
func (v *VT) ContentStart() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	for row, line := range v.Term.Content {
		if len(strings.TrimRight(string(line), " ")) > 0 {
			return row
		}
	}
	return 0
}

// Destroy releases the PTY and waits for the child in the background so
// the event loop never blocks on process exit.
func (v *VT) Destroy() {
	if v.Ptm != nil {
		v.Ptm.Close()
	}
	if v.Cmd != nil && v.Cmd.Process != nil {
		go v.Cmd.Wait()
	}
}

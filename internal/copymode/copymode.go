// Package copymode implements the pager/editor bridge: spawning a child
// on a tile's scrollback and collecting its output into a process-wide
// register, optionally also publishing the selection to the host
// clipboard via OSC 52.
package copymode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/aymanbagabas/go-osc52/v2"

	"dvtm-go/internal/vt"
)

// Kind selects which child copymode spawns.
type Kind int

const (
	Pager Kind = iota
	Editor
)

// ParseKind maps the command-registry argument string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "pager":
		return Pager, nil
	case "editor":
		return Editor, nil
	default:
		return 0, fmt.Errorf("copymode: unknown kind %q", s)
	}
}

// Register is the process-wide copy buffer. It grows by doubling
// capacity, matching dvtm.c's realloc policy; Go's allocator cannot fail
// the way C's can (it panics instead), so the "reset to empty on
// realloc failure" branch in the original has no analogue here (see
// DESIGN.md) — Append simply never fails.
type Register struct {
	buf []byte
}

// NewRegister returns an empty register pre-sized to scrollback lines
// worth of bytes (an estimate; it grows as needed regardless).
func NewRegister(initialCapacity int) *Register {
	return &Register{buf: make([]byte, 0, initialCapacity)}
}

// Append adds data to the register, doubling capacity when the current
// one is exceeded (rather than growing to the exact new size) to match
// the teacher's amortized-growth texture.
func (r *Register) Append(data []byte) {
	need := len(r.buf) + len(data)
	if need > cap(r.buf) {
		newCap := cap(r.buf)
		if newCap == 0 {
			newCap = 64
		}
		for newCap < need {
			newCap *= 2
		}
		grown := make([]byte, len(r.buf), newCap)
		copy(grown, r.buf)
		r.buf = grown
	}
	r.buf = append(r.buf, data...)
}

// Reset empties the register without releasing its backing array.
func (r *Register) Reset() { r.buf = r.buf[:0] }

// Bytes returns the register's current contents.
func (r *Register) Bytes() []byte { return r.buf }

// Len reports the number of bytes currently held.
func (r *Register) Len() int { return len(r.buf) }

// Session is one live copy-mode invocation: the editor VT, the pipes
// feeding it scrollback and reading its selection back, and the kind
// that was spawned.
type Session struct {
	Kind   Kind
	Editor *vt.VT

	to   *os.File // write end feeding the child's stdin
	from *os.File // read end of the child's stdout, nil for Pager
}

// Start spawns shellCmd[0] (a pager or editor command) sized rows×cols,
// pipes content into its stdin (tolerating short writes the way a
// direct write loop would), and, for Editor, wires up a pipe to read the
// selection back once the child exits. content is the scrollback dump
// from vt.ContentGet; seed, if non-empty, is written to the editor's PTY
// after spawn (used to pre-fill an editor's command line).
func Start(shellCmd []string, rows, cols int, kind Kind, content, seed []byte) (*Session, error) {
	toR, toW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("copymode: pipe: %w", err)
	}

	var fromR, fromW *os.File
	if kind == Editor {
		fromR, fromW, err = os.Pipe()
		if err != nil {
			toR.Close()
			toW.Close()
			return nil, fmt.Errorf("copymode: pipe: %w", err)
		}
	}

	editor := vt.New(rows, cols, 0)
	if _, err := editor.Spawn(shellCmd[0], shellCmd, "", nil, toR, fromW); err != nil {
		toR.Close()
		toW.Close()
		if fromR != nil {
			fromR.Close()
			fromW.Close()
		}
		return nil, fmt.Errorf("copymode: spawn %s: %w", shellCmd[0], err)
	}
	toR.Close() // child's end; we keep toW
	if fromW != nil {
		fromW.Close() // child's end; we keep fromR
	}

	if err := writeAllRetry(toW, content); err != nil {
		return nil, fmt.Errorf("copymode: write scrollback: %w", err)
	}
	toW.Close()

	if len(seed) > 0 && editor.Ptm != nil {
		editor.Ptm.Write(seed)
	}

	return &Session{Kind: kind, Editor: editor, to: toW, from: fromR}, nil
}

// writeAllRetry writes all of data, retrying on the short-write/EINTR/
// EAGAIN conditions spec.md §4.5 calls for.
func writeAllRetry(w io.Writer, data []byte) error {
	for len(data) > 0 {
		n, err := w.Write(data)
		if n > 0 {
			data = data[n:]
		}
		if err != nil {
			if isRetryable(err) {
				continue
			}
			return err
		}
	}
	return nil
}

func isRetryable(err error) bool {
	// os.File surfaces EINTR/EAGAIN as PathError-wrapped syscall errors;
	// Go's runtime retries most of these internally already, so this is
	// a defensive fallback rather than the primary retry mechanism.
	return errors.Is(err, syscall.EINTR) || errors.Is(err, syscall.EAGAIN)
}

// Drain reads the editor's selection back (only valid for Editor
// sessions) into reg once the child has exited, per spec.md §4.5's
// "drain from into the register" step.
func (s *Session) Drain(reg *Register) error {
	if s.from == nil {
		return nil
	}
	buf := make([]byte, 4096)
	for {
		n, err := s.from.Read(buf)
		if n > 0 {
			reg.Append(buf[:n])
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// Close releases the session's remaining pipe end and destroys the
// editor VT.
func (s *Session) Close() {
	if s.from != nil {
		s.from.Close()
	}
	s.Editor.Destroy()
}

// PublishClipboard emits an OSC 52 sequence carrying data to the real
// controlling terminal, giving the register a host-clipboard mirror.
func PublishClipboard(w io.Writer, data []byte) {
	osc52.New(string(data)).WriteTo(w)
}

// Package cmdfifo opens the named pipes used for command and status
// input and parses the command FIFO's line grammar: whitespace-skipped
// tokens, optionally quoted with a one-level backslash-escape collapse
// distinct from POSIX shlex quoting.
package cmdfifo

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
)

const maxLineLen = 511

// Fifo wraps an opened named pipe and its advisory lock file, which
// guards against a second dvtm process racing on the same path.
type Fifo struct {
	Path string
	File *os.File
	lock *flock.Flock
}

// Open creates path as a FIFO if it does not already exist, opens it
// O_RDONLY|O_NONBLOCK, and takes a non-blocking advisory lock on
// "<path>.lock" so a second process started against the same path fails
// fast instead of silently racing reads against this one.
func Open(path string) (*Fifo, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := syscall.Mkfifo(path, 0o600); err != nil {
			return nil, fmt.Errorf("mkfifo %s: %w", path, err)
		}
	}

	lk := flock.New(path + ".lock")
	locked, err := lk.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("fifo %s is already in use by another dvtm process", path)
	}

	f, err := os.OpenFile(path, os.O_RDONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		lk.Unlock()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Fifo{Path: path, File: f, lock: lk}, nil
}

// Fd returns the underlying file descriptor for use in a readiness wait.
func (f *Fifo) Fd() int { return int(f.File.Fd()) }

// Read services one readiness notification, returning up to maxLineLen
// freshly read bytes.
func (f *Fifo) Read() ([]byte, error) {
	buf := make([]byte, maxLineLen)
	n, err := f.File.Read(buf)
	return buf[:n], err
}

// Close releases the pipe and its lock file.
func (f *Fifo) Close() error {
	f.lock.Unlock()
	return f.File.Close()
}

// Line is one parsed command-FIFO line: a command name and up to 8
// arguments.
type Line struct {
	Command string
	Args    []string
}

const maxArgs = 8

// ParseLine parses one newline-terminated (or EOF-terminated) command
// line per spec.md §4.6/§6: WS CMD (WS ARG)* WS?. An ARG is an unquoted
// token, a "..." string, or a '...' string; inside quotes, \\, \" and \'
// each collapse to the single escaped character. Unrecognized escapes
// are passed through literally. At most maxArgs arguments are kept;
// anything further on the line is ignored.
func ParseLine(line string) (Line, error) {
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	p := &parser{s: line}
	p.skipWS()
	cmd := p.token()
	if cmd == "" {
		return Line{}, fmt.Errorf("empty command line")
	}
	var args []string
	for {
		p.skipWS()
		if p.eof() {
			break
		}
		a := p.token()
		if len(args) < maxArgs {
			args = append(args, a)
		}
	}
	return Line{Command: cmd, Args: args}, nil
}

type parser struct {
	s   string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.s) }

func (p *parser) skipWS() {
	for !p.eof() && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t') {
		p.pos++
	}
}

// token reads one unquoted word or one quoted string starting at the
// current position.
func (p *parser) token() string {
	if p.eof() {
		return ""
	}
	switch p.s[p.pos] {
	case '"':
		return p.quoted('"')
	case '\'':
		return p.quoted('\'')
	default:
		return p.bareword()
	}
}

func (p *parser) bareword() string {
	start := p.pos
	for !p.eof() && p.s[p.pos] != ' ' && p.s[p.pos] != '\t' {
		p.pos++
	}
	return p.s[start:p.pos]
}

func (p *parser) quoted(q byte) string {
	p.pos++ // opening quote
	var b strings.Builder
	for !p.eof() {
		c := p.s[p.pos]
		if c == '\\' && p.pos+1 < len(p.s) {
			next := p.s[p.pos+1]
			if next == '\\' || next == '"' || next == '\'' {
				b.WriteByte(next)
				p.pos += 2
				continue
			}
		}
		if c == q {
			p.pos++
			break
		}
		b.WriteByte(c)
		p.pos++
	}
	return b.String()
}

// Package signalplane implements the self-pipe trick for delivering
// SIGWINCH/SIGCHLD into the event loop's readiness wait, orderly
// shutdown on SIGTERM, ignoring SIGPIPE, and a best-effort crash
// backtrace on fatal signals.
package signalplane

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/google/uuid"
)

// SelfPipe is a non-blocking pipe whose write end a signal handler can
// safely write one byte to, and whose read end the event loop polls
// alongside its other file descriptors.
type SelfPipe struct {
	r, w *os.File
}

// NewSelfPipe allocates a pipe and marks the write end non-blocking so
// a signal handler's write never stalls.
func NewSelfPipe() (*SelfPipe, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("signalplane: pipe: %w", err)
	}
	if err := syscall.SetNonblock(int(w.Fd()), true); err != nil {
		r.Close()
		w.Close()
		return nil, fmt.Errorf("signalplane: set nonblock: %w", err)
	}
	return &SelfPipe{r: r, w: w}, nil
}

// Fd returns the read end, for inclusion in the readiness wait.
func (p *SelfPipe) Fd() int { return int(p.r.Fd()) }

// Notify writes one byte, waking the event loop. Safe to call from a
// goroutine servicing signal.Notify (Go delivers signals to a runtime
// goroutine, not a true async-signal-safe handler, so unlike dvtm.c this
// need not itself be async-signal-safe — but it is kept to the same
// one-byte-write shape for fidelity to the self-pipe idiom).
func (p *SelfPipe) Notify() { p.w.Write([]byte{1}) }

// Drain reads every currently queued byte without blocking, as the
// event loop does each tick before handling the signal it represents.
func (p *SelfPipe) Drain() {
	// Fd() puts the descriptor back into blocking mode, so set it
	// non-blocking again and read with raw syscalls until EAGAIN.
	fd := int(p.r.Fd())
	if err := syscall.SetNonblock(fd, true); err != nil {
		return
	}
	buf := make([]byte, 64)
	for {
		n, err := syscall.Read(fd, buf)
		if n <= 0 || err != nil {
			return
		}
	}
}

// Plane owns the self-pipes for SIGWINCH and SIGCHLD, and the raw
// os/signal channels for SIGTERM/SIGPIPE/the crash set.
type Plane struct {
	Winch *SelfPipe
	Chld  *SelfPipe

	termCh chan os.Signal

	InstanceID string
}

// Start arms signal handling: SIGPIPE is ignored process-wide (dvtm.c
// does the same so a dead client's broken pipe never kills the
// process); SIGWINCH/SIGCHLD forward into their self-pipes; SIGTERM is
// queued on a channel the event loop polls (TermRequested) once per
// tick, after its readiness wait returns, so SIGTERM alone does not wake
// the wait; the crash set installs a best-effort backtrace writer.
func Start() (*Plane, error) {
	winch, err := NewSelfPipe()
	if err != nil {
		return nil, err
	}
	chld, err := NewSelfPipe()
	if err != nil {
		return nil, err
	}

	signal.Ignore(syscall.SIGPIPE)

	winchCh := make(chan os.Signal, 1)
	signal.Notify(winchCh, syscall.SIGWINCH)
	go func() {
		for range winchCh {
			winch.Notify()
		}
	}()

	chldCh := make(chan os.Signal, 1)
	signal.Notify(chldCh, syscall.SIGCHLD)
	go func() {
		for range chldCh {
			chld.Notify()
		}
	}()

	termCh := make(chan os.Signal, 1)
	signal.Notify(termCh, syscall.SIGTERM)

	p := &Plane{
		Winch:      winch,
		Chld:       chld,
		termCh:     termCh,
		InstanceID: uuid.NewString(),
	}
	installCrashHandler(p.InstanceID)
	return p, nil
}

// TermRequested reports, without blocking, whether SIGTERM has arrived.
func (p *Plane) TermRequested() bool {
	select {
	case <-p.termCh:
		return true
	default:
		return false
	}
}

// backtracePath is $TMPDIR/dvtm.backtrace.<instance id>, disambiguating
// concurrent dvtm processes per SPEC_FULL.md §4.15.
func backtracePath(instanceID string) string {
	tmp := os.Getenv("TMPDIR")
	if tmp == "" {
		tmp = "/tmp"
	}
	return filepath.Join(tmp, fmt.Sprintf("dvtm.backtrace.%s", instanceID))
}

// installCrashHandler arranges for SIGSEGV/SIGILL/SIGFPE/SIGABRT/
// SIGBUS to write a best-effort stack trace before the process dies.
// Go's runtime does not support resuming execution after a real
// SIGSEGV the way dvtm.c's handler (which restores the terminal and
// _exits) does; the closest safe analogue is debug.SetCrashOutput,
// which redirects the runtime's own fatal-crash report to a file. This
// is a deliberate, documented departure from the original's raw
// async-signal-safe writes (see DESIGN.md, internal/app) —
// Go offers no API to perform arbitrary work inside a real signal
// handler safely.
func installCrashHandler(instanceID string) {
	path := backtracePath(instanceID)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	_ = debug.SetCrashOutput(f, debug.CrashOptions{})
}

// Close releases the self-pipes' file descriptors.
func (p *Plane) Close() {
	p.Winch.r.Close()
	p.Winch.w.Close()
	p.Chld.r.Close()
	p.Chld.w.Close()
}

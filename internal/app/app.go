// Package app is the event loop: the single-threaded, readiness-driven
// tick that multiplexes stdin, the command/status FIFOs, the signal
// self-pipes and every client's PTY, and the concrete App that
// implements internal/command's App interface against the rest of the
// package tree (client, layout, statusbar, input, copymode, render,
// signalplane, config).
package app

import (
	"bytes"
	"fmt"
	"math/bits"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"dvtm-go/internal/client"
	"dvtm-go/internal/cmdfifo"
	"dvtm-go/internal/command"
	"dvtm-go/internal/config"
	"dvtm-go/internal/copymode"
	"dvtm-go/internal/input"
	"dvtm-go/internal/layout"
	"dvtm-go/internal/render"
	"dvtm-go/internal/signalplane"
	"dvtm-go/internal/statusbar"
	"dvtm-go/internal/version"
	"dvtm-go/internal/vt"
)

// App bundles the process-wide state dvtm.c keeps as globals: the
// client list, the layout/tagset parameters, the status bar, the
// command registry and input dispatcher, the signal plane, the open
// FIFOs, the copy-mode register and its live sessions.
type App struct {
	cfg *config.Config

	clients    *client.List
	screen     *command.Screen
	tagset     *command.Tagset
	bar        *statusbar.Bar
	registry   *command.Registry
	dispatcher *input.Dispatcher
	palette    *render.Palette
	signals    *signalplane.Plane

	cmdFifo    *cmdfifo.Fifo
	statusFifo *cmdfifo.Fifo

	register *copymode.Register
	sessions map[client.ID]*copymode.Session

	shell      string
	title      string
	mouseEnabled bool
	escDelayMS int

	nextID uint32

	stdinFd  int
	oldState *term.State

	running bool
}

// New constructs an App from a resolved configuration, the chosen login
// shell, and a static outer-terminal title (empty means "follow the
// focused client's title").
func New(cfg *config.Config, shell, outerTitle string) (*App, error) {
	plane, err := signalplane.Start()
	if err != nil {
		return nil, fmt.Errorf("app: start signal plane: %w", err)
	}

	tagMask := uint32(1)
	if len(cfg.Tags) > 0 {
		tagMask = cfg.Tags[0].Bit
	}

	a := &App{
		cfg:        cfg,
		clients:    client.NewList(tagMask),
		screen: &command.Screen{
			NMaster: cfg.NMaster, MFact: cfg.MFact, History: cfg.Scrollback,
			Layout: cfg.Layouts[0], NeedResize: true,
			DefaultNMaster: cfg.NMaster, DefaultMFact: cfg.MFact,
		},
		tagset:     &command.Tagset{Views: [2]uint32{tagMask, tagMask}},
		bar:        statusbar.New(statusbar.Top),
		registry:   command.NewRegistry(),
		dispatcher: input.NewDispatcher(cfg.Keys),
		palette:    render.NewPalette(),
		signals:    plane,
		register:   copymode.NewRegister(cfg.Scrollback),
		sessions:   make(map[client.ID]*copymode.Session),
		shell:      shell,
		title:      outerTitle,
		mouseEnabled: cfg.MouseEnabled,
		escDelayMS: cfg.EscDelayMS,
		stdinFd:    int(os.Stdin.Fd()),
	}
	a.bar.Autohide = cfg.BarAutohide
	a.clients.OnFocus = a.onFocus

	if cfg.CmdFifo != "" {
		f, err := cmdfifo.Open(cfg.CmdFifo)
		if err != nil {
			plane.Close()
			return nil, err
		}
		a.cmdFifo = f
		os.Setenv("DVTM_CMD_FIFO", cfg.CmdFifo)
	}
	if cfg.StatusFifo != "" {
		f, err := cmdfifo.Open(cfg.StatusFifo)
		if err != nil {
			plane.Close()
			return nil, err
		}
		a.statusFifo = f
		a.bar.Fd = f.Fd()
	}

	if err := syscall.SetNonblock(a.stdinFd, true); err != nil {
		plane.Close()
		return nil, fmt.Errorf("app: set stdin nonblocking: %w", err)
	}

	os.Setenv("DVTM", version.Version)
	os.Setenv("DVTM_INSTANCE_ID", plane.InstanceID)
	if outerTitle != "" {
		a.writeOuterTitle(outerTitle)
	}

	return a, nil
}

// Bootstrap queries the real terminal size, runs any configured startup
// actions, spawns one tile per positional command-line argument, and
// falls back to a single default shell tile if nothing else created one.
func (a *App) Bootstrap(cmds []string) error {
	a.handleResize()

	if len(a.cfg.Startup) > 0 {
		acts := make([][]string, 0, len(a.cfg.Startup))
		for _, s := range a.cfg.Startup {
			acts = append(acts, append([]string{s.Command}, s.Args...))
		}
		a.RunStartup(acts)
	}

	for _, cmdStr := range cmds {
		if err := a.CreateClient(cmdStr, "", ""); err != nil {
			fmt.Fprintf(os.Stderr, "dvtm: %v\n", err)
		}
	}

	if a.clients.Head == nil {
		if err := a.CreateClient("", "", ""); err != nil {
			return err
		}
	}
	return nil
}

// Run enters the readiness-driven event loop and blocks until a quit
// command or SIGTERM sets running to false.
func (a *App) Run() error {
	oldState, err := term.MakeRaw(a.stdinFd)
	if err != nil {
		return fmt.Errorf("app: enter raw mode: %w", err)
	}
	a.oldState = oldState
	a.running = true
	defer a.cleanup()

	for a.running {
		if a.screen.NeedResize {
			a.handleResize()
		}
		a.reapDead()

		a.refreshOutput()
		rset, ready, err := a.wait()
		if err != nil {
			return fmt.Errorf("app: select: %w", err)
		}

		if rset.isSet(a.stdinFd) {
			a.serviceStdin()
			if ready == 1 {
				continue
			}
		}

		if rset.isSet(a.signals.Winch.Fd()) {
			a.signals.Winch.Drain()
			a.screen.NeedResize = true
		}
		if rset.isSet(a.signals.Chld.Fd()) {
			a.signals.Chld.Drain()
			a.reapZombies()
		}

		if a.cmdFifo != nil && rset.isSet(a.cmdFifo.Fd()) {
			a.serviceCmdFifo()
		}
		if a.statusFifo != nil && rset.isSet(a.statusFifo.Fd()) {
			a.serviceStatusFifo()
		}

		a.clients.Walk(func(c *client.Client) {
			if c.Term == nil {
				return
			}
			fd := c.Term.Fd()
			if fd < 0 || !rset.isSet(fd) {
				return
			}
			if err := c.Term.Read(); err != nil {
				a.markDead(c)
			}
		})

		a.redrawAll()

		if a.signals.TermRequested() {
			a.running = false
		}
	}
	return nil
}

// wait assembles the read-set fresh on every attempt (select's result is
// unspecified on EINTR, so a stale set from a prior attempt cannot be
// reused) and blocks until at least one descriptor is ready.
func (a *App) wait() (*fdSet, int, error) {
	for {
		rset, maxFd := a.buildReadSet()
		n, err := unix.Select(maxFd+1, &rset.FdSet, nil, nil, nil)
		if err == nil {
			return rset, n, nil
		}
		if err == syscall.EINTR {
			continue
		}
		return nil, 0, err
	}
}

func (a *App) buildReadSet() (*fdSet, int) {
	var rset fdSet
	rset.zero()
	maxFd := a.stdinFd
	rset.set(a.stdinFd)

	add := func(fd int) {
		rset.set(fd)
		if fd > maxFd {
			maxFd = fd
		}
	}
	add(a.signals.Winch.Fd())
	add(a.signals.Chld.Fd())
	if a.cmdFifo != nil {
		add(a.cmdFifo.Fd())
	}
	if a.statusFifo != nil {
		add(a.statusFifo.Fd())
	}
	a.clients.Walk(func(c *client.Client) {
		if c.Term == nil {
			return
		}
		if fd := c.Term.Fd(); fd >= 0 {
			add(fd)
		}
	})
	return &rset, maxFd
}

func (a *App) cleanup() {
	a.clients.Walk(func(c *client.Client) {
		if c.PID > 0 {
			syscall.Kill(-c.PID, syscall.SIGKILL)
		}
	})
	if a.cmdFifo != nil {
		a.cmdFifo.Close()
	}
	if a.statusFifo != nil {
		a.statusFifo.Close()
	}
	a.signals.Close()
	if a.oldState != nil {
		term.Restore(a.stdinFd, a.oldState)
	}
}

func (a *App) onFocus(prev, cur *client.Client) {
	if cur != nil && a.title == "" {
		a.writeOuterTitle(cur.Title())
	}
}

// writeOuterTitle sets the real controlling terminal's window title via
// OSC 0, skipped under the Linux console (TERM=linux) which ignores it
// and can misrender the escape as visible text.
func (a *App) writeOuterTitle(title string) {
	if os.Getenv("TERM") == "linux" {
		return
	}
	fmt.Fprintf(os.Stdout, "\x1b]0;%s\x07", title)
}

// command.App interface implementation.

func (a *App) Clients() *client.List     { return a.clients }
func (a *App) Screen() *command.Screen   { return a.screen }
func (a *App) Tagset() *command.Tagset   { return a.tagset }

func (a *App) CreateClient(cmdStr, title, cwd string) error {
	a.nextID++
	id := client.ID(a.nextID)

	launchCmd := cmdStr
	if launchCmd == "" {
		launchCmd = a.shell
	}
	c := client.New(id, launchCmd)
	if title != "" {
		c.SetTitle(title)
	}

	rows := a.screen.H - 1
	if rows < 1 {
		rows = 24
	}
	cols := a.screen.W
	if cols < 1 {
		cols = 80
	}
	v := vt.New(rows, cols, a.screen.History)

	var path string
	var argv []string
	if cmdStr == "" {
		path, argv = a.shell, []string{a.shell}
	} else {
		path, argv = a.shell, []string{a.shell, "-c", cmdStr}
	}
	env := []string{"DVTM_WINDOW_ID=" + strconv.Itoa(int(id))}

	pid, err := v.Spawn(path, argv, cwd, env, nil, nil)
	if err != nil {
		debugf("spawn %q failed: %v", cmdStr, err)
		return fmt.Errorf("app: create client: %w", err)
	}
	c.PID = pid
	c.Tags = a.tagset.Current()
	c.App = v
	c.Term = v
	v.OnUrgent = func() { c.Urgent = true }
	v.OnTitle = func(t string) {
		c.SetTitle(t)
		if a.clients.Sel == c {
			a.onFocus(nil, c)
		}
	}

	a.clients.Attach(c)
	a.clients.AttachStack(c)
	a.clients.Focus(c)
	a.rearrange()
	return nil
}

func (a *App) KillClient(c *client.Client) {
	if c.PID > 0 {
		syscall.Kill(-c.PID, syscall.SIGKILL)
	}
	a.destroyClient(c)
}

// destroyClient tears down c and implements the destroy-time lifecycle
// rule: if c was the last client and its launch command was the login
// shell with a non-empty startup list configured, the process exits;
// otherwise a fresh default client replaces it.
func (a *App) destroyClient(c *client.Client) {
	if sess, ok := a.sessions[c.ID]; ok {
		sess.Close()
		delete(a.sessions, c.ID)
	}
	if c.App != nil {
		c.App.Destroy()
	}
	if c.Editor != nil {
		c.Editor.Destroy()
	}
	a.clients.Detach(c)
	a.clients.DetachStack(c)
	if a.clients.Sel == c {
		a.clients.Focus(nil)
	}
	if a.clients.Head == nil {
		if c.Cmd == a.shell && len(a.cfg.Startup) > 0 {
			a.running = false
			return
		}
		a.CreateClient("", "", "")
	}
	a.rearrange()
}

func (a *App) FocusByOrder(n int) {
	if c := a.clients.ByOrder(n); c != nil {
		a.clients.Focus(c)
	}
}

func (a *App) FocusByID(id client.ID) {
	if c := a.clients.ByID(id); c != nil && a.clients.IsVisible(c) {
		a.clients.Focus(c)
	}
}

func (a *App) FocusDirection(dir command.Direction) {
	sel := a.clients.Sel
	if sel == nil {
		return
	}
	var x, y int
	switch dir {
	case command.DirUp:
		x, y = sel.X+1, sel.Y-1
	case command.DirDown:
		x, y = sel.X+1, sel.Y+sel.H
	case command.DirLeft:
		x, y = sel.X-1, sel.Y
	case command.DirRight:
		x, y = sel.X+sel.W, sel.Y
	}
	if target := a.hitTest(x, y); target != nil {
		a.clients.Focus(target)
		return
	}
	a.focusFallback(dir)
}

// focusFallback is focusprev/focusnext over the spatial order, used when
// a directional probe lands outside every visible client's rectangle.
func (a *App) focusFallback(dir command.Direction) {
	l := a.clients
	if l.Sel == nil {
		return
	}
	if dir == command.DirUp || dir == command.DirLeft {
		var prev, last *client.Client
		l.WalkVisible(func(c *client.Client) {
			if c == l.Sel && prev == nil {
				prev = last
			}
			last = c
		})
		if prev == nil {
			prev = last
		}
		l.Focus(prev)
		return
	}
	n := l.NextVisible(l.Sel.NextInList())
	if n == nil {
		n = l.NextVisible(l.Head)
	}
	l.Focus(n)
}

func (a *App) hitTest(x, y int) *client.Client {
	var found *client.Client
	a.clients.WalkVisible(func(c *client.Client) {
		if c.Minimized {
			return
		}
		if x >= c.X && x < c.X+c.W && y >= c.Y && y < c.Y+c.H {
			found = c
		}
	})
	return found
}

func (a *App) Zoom() {
	l := a.clients
	sel := l.Sel
	if sel == nil {
		return
	}
	if sel == l.Head {
		if next := sel.NextInList(); next != nil {
			l.Detach(sel)
			l.AttachAfter(sel, next)
		}
	} else {
		l.Detach(sel)
		l.Attach(sel)
	}
	l.Focus(sel)
	a.rearrange()
}

// ToggleMinimize maintains the ordering rule that non-minimized clients
// precede minimized ones: a newly minimized client moves to immediately
// before the first already-minimized client (promoting its successor to
// master for free, since Detach already updates Head when c was head);
// unminimizing moves it back to the spatial head.
func (a *App) ToggleMinimize(c *client.Client) {
	l := a.clients
	c.Minimized = !c.Minimized
	l.Detach(c)
	if c.Minimized {
		var last *client.Client
		for cur := l.Head; cur != nil; cur = cur.NextInList() {
			if cur.Minimized {
				break
			}
			last = cur
		}
		if last == nil {
			l.Attach(c)
		} else {
			l.AttachAfter(c, last)
		}
	} else {
		l.Attach(c)
	}
	if l.Sel == nil {
		l.Focus(nil)
	}
	a.rearrange()
}

func (a *App) SetLayout(k layout.Kind) {
	a.screen.Layout = k
	a.rearrange()
}

func (a *App) ToggleBar() {
	a.bar.Toggle()
	a.rearrange()
}

func (a *App) ToggleBarPos() {
	a.bar.TogglePos()
	a.rearrange()
}

func (a *App) ToggleMouse() { a.mouseEnabled = !a.mouseEnabled }

// ScrollbackClient scrolls c by lines: negative scrolls back into
// history (the Up binding), positive toward the live tail. vt.Scroll
// uses the opposite sign, hence the negation.
func (a *App) ScrollbackClient(c *client.Client, lines int) {
	if c != nil && c.Term != nil {
		c.Term.Scroll(-lines)
	}
}

func (a *App) EnterCopyMode(cmdStr string, seed []byte) error {
	c := a.clients.Sel
	if c == nil || c.InCopyMode() {
		return nil
	}
	kind, err := copymode.ParseKind(cmdStr)
	if err != nil {
		return err
	}
	rows := c.H
	if c.HasTitleLine {
		rows--
	}
	if rows < 1 {
		rows = 1
	}
	if kind == copymode.Editor {
		// Drain appends rather than overwrites; clear the previous
		// selection so it isn't pasted back alongside this one.
		a.register.Reset()
	}
	content := c.App.ContentGet(kind == copymode.Pager)
	argv := a.copyModeCommand(kind)
	if kind == copymode.Pager {
		// Seed the pager at the first non-blank row instead of the top
		// of a mostly-empty scrollback buffer.
		argv = append(append([]string{}, argv...), fmt.Sprintf("+%dg", c.App.ContentStart()+1))
	}
	sess, err := copymode.Start(argv, rows, c.W, kind, content, seed)
	if err != nil {
		return err
	}
	a.sessions[c.ID] = sess
	c.EnterCopyMode(sess.Editor)
	a.rearrange()
	return nil
}

func (a *App) copyModeCommand(kind copymode.Kind) []string {
	if kind == copymode.Pager {
		return []string{"less", "-R"}
	}
	if argv, err := a.cfg.CopyEditorArgv(); err == nil && len(argv) > 0 {
		return argv
	}
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	return []string{editor}
}

func (a *App) Paste() {
	c := a.clients.Sel
	if c == nil || a.register.Len() == 0 {
		return
	}
	a.SendKeys(c, a.register.Bytes())
}

func (a *App) SendKeys(c *client.Client, data []byte) {
	if c == nil || c.Term == nil || c.Term.PTYFile() == nil {
		return
	}
	c.Term.PTYFile().Write(data)
}

// Redraw calls Dirty on every live VT. Dirty is a no-op and content is
// rewritten from scratch every tick regardless, so the redraw command
// changes nothing beyond the repaint the next tick does anyway.
func (a *App) Redraw() {
	a.clients.Walk(func(c *client.Client) {
		if c.App != nil {
			c.App.Dirty()
		}
		if c.Editor != nil {
			c.Editor.Dirty()
		}
	})
}

func (a *App) Quit() { a.running = false }

func (a *App) RunStartup(actions [][]string) {
	for _, act := range actions {
		if len(act) == 0 {
			continue
		}
		a.registry.Invoke(a, act[0], act[1:])
	}
}

// reap, resize and rearrange.

func (a *App) reapDead() {
	var dead []*client.Client
	a.clients.Walk(func(c *client.Client) {
		if c.EditorDied {
			if sess, ok := a.sessions[c.ID]; ok {
				sess.Drain(a.register)
				copymode.PublishClipboard(os.Stdout, a.register.Bytes())
				sess.Close()
				delete(a.sessions, c.ID)
			}
			c.ExitCopyMode()
			c.EditorDied = false
			a.rearrange()
		}
		if c.Died {
			dead = append(dead, c)
		}
	})
	for _, c := range dead {
		debugf("reaping client %d (pid %d)", c.ID, c.PID)
		a.destroyClient(c)
	}
}

func (a *App) reapZombies() {
	for {
		var ws syscall.WaitStatus
		pid, err := syscall.Wait4(-1, &ws, syscall.WNOHANG, nil)
		if pid <= 0 || err != nil {
			return
		}
		a.clients.Walk(func(c *client.Client) {
			if c.App != nil && c.App.Pid == pid {
				c.Died = true
			}
			if c.Editor != nil && c.Editor.Pid == pid {
				c.EditorDied = true
			}
		})
	}
}

func (a *App) markDead(c *client.Client) {
	if c.InCopyMode() {
		c.EditorDied = true
	} else {
		c.Died = true
	}
}

func (a *App) handleResize() {
	if ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ); err == nil {
		a.screen.W = int(ws.Col)
		a.screen.H = int(ws.Row)
	}
	a.screen.NeedResize = false
	a.rearrange()
}

// rearrange recomputes the status bar position, reserves the minimized
// strip, and runs the layout engine over the remaining work area,
// propagating the resulting rectangles to every client's geometry and
// its VT's size.
func (a *App) rearrange() {
	n := a.clients.CountVisible()
	area := layout.Area{X: 0, Y: 0, W: a.screen.W, H: a.screen.H}
	if !a.bar.Hidden(n) {
		if a.bar.Pos == statusbar.Bottom {
			area.H--
		} else {
			area.Y++
			area.H--
		}
	}

	minimizedCount := 0
	a.clients.WalkVisible(func(c *client.Client) {
		if c.Minimized {
			minimizedCount++
		}
	})
	work, strip, hasStrip := layout.ReserveMinimizedStrip(area, a.screen.Layout, minimizedCount)

	hasTitleLine := !a.bar.Hidden(n) || n > 1
	rects := layout.Arrange(a.screen.Layout, work, n-minimizedCount, a.screen.NMaster, a.screen.MFact)
	i := 0
	a.clients.WalkVisible(func(c *client.Client) {
		if c.Minimized {
			return
		}
		r := rects[i]
		i++
		c.X, c.Y, c.W, c.H = r.X, r.Y, r.W, r.H
		c.HasTitleLine = hasTitleLine
		rows := c.H
		if c.HasTitleLine {
			rows--
		}
		if rows < 1 {
			rows = 1
		}
		if c.App != nil {
			c.App.Resize(rows, c.W)
		}
		if c.Editor != nil {
			c.Editor.Resize(rows, c.W)
		}
	})

	if hasStrip {
		mrects := layout.MinimizedStripRects(strip, minimizedCount)
		j := 0
		a.clients.WalkVisible(func(c *client.Client) {
			if !c.Minimized {
				return
			}
			r := mrects[j]
			j++
			c.X, c.Y, c.W, c.H = r.X, r.Y, r.W, r.H
			c.HasTitleLine = false
		})
	}
}

// stdin servicing and pass-through.

func (a *App) serviceStdin() {
	key, raw, mouseEv, ok := a.readKey()
	if !ok {
		return
	}
	if mouseEv != nil {
		a.handleMouse(*mouseEv)
		return
	}
	switch res, binding := a.dispatcher.Feed(key); res {
	case input.Matched:
		a.registry.Invoke(a, binding.Command, binding.Args)
	case input.Pending:
	default:
		a.passThrough(raw)
	}
}

func (a *App) passThrough(raw []byte) {
	if len(raw) == 0 {
		return
	}
	if a.screen.RunInAll {
		a.clients.WalkVisible(func(c *client.Client) {
			if c.Term != nil && c.Term.PTYFile() != nil {
				c.Term.PTYFile().Write(raw)
			}
		})
		return
	}
	if c := a.clients.Sel; c != nil && c.Term != nil && c.Term.PTYFile() != nil {
		c.Term.PTYFile().Write(raw)
	}
}

func (a *App) handleMouse(ev input.MouseEvent) {
	if !a.mouseEnabled {
		return
	}
	if c := a.hitTest(ev.X, ev.Y); c != nil {
		a.clients.Focus(c)
	}
	for _, mb := range input.ResolveMouse(ev, a.cfg.Mouse) {
		a.registry.Invoke(a, mb.Command, mb.Args)
	}
}

// readKey reads one decoded input unit: a dispatcher key token plus the
// raw bytes to use for pass-through, or a decoded mouse event.
func (a *App) readKey() (key string, raw []byte, mouseEv *input.MouseEvent, ok bool) {
	b := a.tryReadByte()
	if b == nil {
		return "", nil, nil, false
	}
	switch {
	case *b == 0x1b:
		return a.readEscape()
	case *b < 0x20 || *b == 0x7f:
		return namedControl(*b), []byte{*b}, nil, true
	case *b == ' ':
		return "space", []byte{*b}, nil, true
	case *b < 0x80:
		return string(*b), []byte{*b}, nil, true
	default:
		n := utf8LeadLen(*b)
		buf := []byte{*b}
		for i := 1; i < n; i++ {
			nb := a.tryReadByte()
			if nb == nil {
				break
			}
			buf = append(buf, *nb)
		}
		return string(buf), buf, nil, true
	}
}

// readEscape implements the pass-through ESC-buffering rule: sleep for
// the configured escape delay to give a multi-byte sequence time to
// arrive, then drain up to 7 more already-available bytes atomically.
// X10 mouse reports ("ESC [ M" + 3 bytes) and the handful of named CSI
// sequences bound by default key bindings (arrows) are recognized;
// anything else passes through as a raw escape sequence.
func (a *App) readEscape() (key string, raw []byte, mouseEv *input.MouseEvent, ok bool) {
	if a.escDelayMS > 0 {
		time.Sleep(time.Duration(a.escDelayMS) * time.Millisecond)
	}
	seq := input.CollectEscapeSequence(func() (byte, bool) {
		b := a.tryReadByte()
		if b == nil {
			return 0, false
		}
		return *b, true
	}).Bytes

	if len(seq) == 1 {
		return "Escape", seq, nil, true
	}
	if len(seq) >= 6 && seq[1] == '[' && seq[2] == 'M' {
		ev := decodeX10Mouse([3]byte{seq[3], seq[4], seq[5]})
		return "", nil, &ev, true
	}
	if name, ok := namedCSI[string(seq)]; ok {
		return name, seq, nil, true
	}
	return "", seq, nil, true
}

func (a *App) tryReadByte() *byte {
	var b [1]byte
	n, err := syscall.Read(a.stdinFd, b[:])
	if n <= 0 || err != nil {
		return nil
	}
	return &b[0]
}

// cmd/status FIFO servicing.

func (a *App) serviceCmdFifo() {
	data, err := a.cmdFifo.Read()
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		l, err := cmdfifo.ParseLine(line)
		if err != nil {
			continue
		}
		args := l.Args
		if preset := a.presetArgs(l.Command); preset != nil {
			args = preset
		}
		args, ok := a.resolveTagArg(l.Command, args)
		if !ok {
			continue
		}
		a.registry.Invoke(a, l.Command, args)
	}
}

// tagCommands name arguments as a configured tag, either by its
// bit-index (as every in-process key binding supplies it) or, from the
// FIFO, by its configured name.
var tagCommands = map[string]bool{"view": true, "tag": true, "toggletag": true, "toggleview": true}

// resolveTagArg normalizes a tag command's first argument to the bit
// index the command package expects, accepting a configured tag name
// (via cfg.TagBitByName) as well as a numeric index, and rejects any
// index outside the configured tag set (cfg.AllTagsMask) rather than
// letting an orphan tag bit that never appears in the status bar slip
// through.
func (a *App) resolveTagArg(cmd string, args []string) ([]string, bool) {
	if !tagCommands[cmd] || len(args) == 0 {
		return args, true
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		bit := a.cfg.TagBitByName(args[0])
		if bit == 0 {
			return nil, false
		}
		n = bits.TrailingZeros32(bit)
	}
	if n < 0 || n > 31 || uint32(1)<<uint(n)&a.cfg.AllTagsMask() == 0 {
		return nil, false
	}
	out := append([]string{}, args...)
	out[0] = strconv.Itoa(n)
	return out, true
}

// presetArgs returns a configured key binding's baked-in arguments for
// cmd if one exists, per spec's "preconfigured arguments shadow FIFO
// arguments" rule.
func (a *App) presetArgs(cmd string) []string {
	for _, kb := range a.cfg.Keys {
		if kb.Command == cmd && len(kb.Args) > 0 {
			return kb.Args
		}
	}
	return nil
}

func (a *App) serviceStatusFifo() {
	data, err := a.statusFifo.Read()
	if err != nil {
		a.bar.SetError(err.Error())
		return
	}
	a.bar.Feed(data)
}

// rendering.

// refreshOutput is a no-op: drawClient/drawBar write directly through
// unbuffered os.Stdout syscalls, so there is no separate buffer to
// flush. Kept as an explicit step for parity with the event loop's
// documented tick ordering.
func (a *App) refreshOutput() {}

func (a *App) redrawAll() {
	n := a.clients.CountVisible()
	if !a.bar.Hidden(n) {
		a.drawBar()
	}
	fullscreen := a.screen.Layout == layout.Fullscreen
	sel := a.clients.Sel
	a.clients.WalkVisible(func(c *client.Client) {
		if c == sel || (fullscreen && c != sel) {
			return
		}
		a.drawClient(c, false)
	})
	if sel != nil {
		a.drawClient(sel, true)
	}
	a.positionCursor(sel)
}

func (a *App) drawClient(c *client.Client, isSel bool) {
	if c.Term == nil {
		return
	}
	attr := render.BorderAttr(c, isSel, a.screen.RunInAll)
	sgr := a.borderSGR(c, attr)

	y := c.Y
	if c.HasTitleLine {
		fmt.Fprintf(os.Stdout, "\x1b[%d;%dH%s%s\x1b[0m", y+1, c.X+1, sgr, render.DrawBorder(c, c.W))
		y++
	}
	rows := c.H
	if c.HasTitleLine {
		rows--
	}
	lines := bytes.Split(c.Term.ContentGet(true), []byte("\n"))
	for i := 0; i < rows && i < len(lines); i++ {
		fmt.Fprintf(os.Stdout, "\x1b[%d;%dH%s", y+i+1, c.X+1, lines[i])
	}
}

// borderSGR resolves the SGR prefix for c's border: a configured color
// rule matched against the title takes the fg/bg it names, and urgent or
// selected state (in that precedence) forces bold on top of it.
func (a *App) borderSGR(c *client.Client, attr render.Attr) string {
	rule, matched := render.MatchColorRule(c.Title(), a.cfg.Colors)
	bold := attr == render.AttrSelected || attr == render.AttrUrgent
	if !matched {
		if bold {
			return "\x1b[1m"
		}
		return ""
	}
	a.palette.Reserve(rule.FG, rule.BG)
	return a.palette.Render(rule.FG, rule.BG, bold || rule.Bold)
}

func (a *App) drawBar() {
	tagStates := make([]statusbar.TagState, 0, len(a.cfg.Tags))
	for _, t := range a.cfg.Tags {
		var occupied, urgent bool
		a.clients.Walk(func(c *client.Client) {
			if c.Tags&t.Bit != 0 {
				occupied = true
				if c.Urgent {
					urgent = true
				}
			}
		})
		attr := statusbar.AttrNormal
		switch {
		case a.tagset.Current()&t.Bit != 0:
			attr = statusbar.AttrSelected
		case urgent:
			attr = statusbar.AttrUrgent
		case occupied:
			attr = statusbar.AttrOccupied
		}
		tagStates = append(tagStates, statusbar.TagState{Name: t.Name, Attr: attr})
	}
	row := 1
	if a.bar.Pos == statusbar.Bottom {
		row = a.screen.H
	}
	text := a.bar.Text()
	if sel := a.clients.Sel; sel != nil && sel.Term != nil {
		if off := sel.Term.ScrollOffset(); off > 0 {
			text = fmt.Sprintf("[scroll -%d] %s", off, text)
		}
	}
	line := statusbar.Render(tagStates, statusbar.Symbol(a.screen.Layout), a.screen.RunInAll, text, a.screen.W)
	fmt.Fprintf(os.Stdout, "\x1b[%d;1H%s", row, line)
}

func (a *App) positionCursor(sel *client.Client) {
	if sel != nil && sel.Term != nil && sel.Term.CursorVisible() && !sel.Minimized {
		fmt.Fprint(os.Stdout, "\x1b[?25h")
		return
	}
	fmt.Fprint(os.Stdout, "\x1b[?25l")
}

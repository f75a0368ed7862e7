// Package client implements the Client and ClientList data model: one PTY-
// backed tile per child process, arranged in a doubly linked spatial list
// with a separate MRU focus stack.
package client

import (
	"dvtm-go/internal/vt"
)

// ID uniquely identifies a Client for the lifetime of the process. Never
// reused.
type ID uint32

// Client is one tile: a PTY-backed child process, its VT handle, and the
// bookkeeping the layout engine and renderer need.
type Client struct {
	ID    ID
	Order int // 1-based position among visible clients, dense
	PID   int

	Tags uint32

	title string // last OSC title, <=255 bytes
	Cmd   string // command string the client was launched with

	X, Y, W, H int
	HasTitleLine bool

	Minimized bool
	Urgent    bool
	Died      bool
	EditorDied bool

	App    *vt.VT // the user's process
	Editor *vt.VT // non-nil only while in copy mode
	Term   *vt.VT // alias: Editor when in copy mode, else App

	// spatial list
	next, prev *Client
	// focus (MRU) stack
	snext *Client
}

const maxTitle = 255

// SetTitle truncates to the 255-byte limit the data model specifies.
func (c *Client) SetTitle(t string) {
	if len(t) > maxTitle {
		t = t[:maxTitle]
	}
	c.title = t
}

// Title returns the client's current title.
func (c *Client) Title() string { return c.title }

// New allocates a client. Geometry and VT are set by the caller (List
// owns attach-time wiring); New only establishes identity.
func New(id ID, cmd string) *Client {
	return &Client{ID: id, Cmd: cmd}
}

// NextInList returns the next client in spatial order, or nil.
func (c *Client) NextInList() *Client { return c.next }

// PrevInList returns the previous client in spatial order, or nil.
func (c *Client) PrevInList() *Client { return c.prev }

// InCopyMode reports whether term currently points at the editor VT.
func (c *Client) InCopyMode() bool { return c.Editor != nil && c.Term == c.Editor }

// EnterCopyMode switches Term to the editor VT.
func (c *Client) EnterCopyMode(editor *vt.VT) {
	c.Editor = editor
	c.Term = editor
}

// ExitCopyMode switches Term back to App and clears Editor.
func (c *Client) ExitCopyMode() {
	c.Editor = nil
	c.Term = c.App
}

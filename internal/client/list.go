package client

// List owns the spatial (tiling order) doubly linked list, the MRU focus
// stack, and the currently selected client. It does not know about
// layouts or rendering; LayoutEngine and Renderer consume it read-only
// except through the mutators below.
type List struct {
	Head *Client // spatial list head
	stack *Client // focus stack head (MRU)

	Sel     *Client
	LastSel *Client

	// CurrentTags is the bitmask of tags currently viewed. A client is
	// visible iff Tags&CurrentTags != 0.
	CurrentTags uint32

	// OnFocus, if set, is called whenever Sel changes (used to drive the
	// outer-terminal title escape).
	OnFocus func(prev, cur *Client)
}

// NewList returns an empty client list viewing the given initial tagset.
func NewList(initialTags uint32) *List {
	return &List{CurrentTags: initialTags}
}

// IsVisible reports whether c's tags intersect the currently viewed set.
func (l *List) IsVisible(c *Client) bool {
	return c != nil && c.Tags&l.CurrentTags != 0
}

// NextVisible returns the first visible client at or after c, walking the
// spatial list.
func (l *List) NextVisible(c *Client) *Client {
	for ; c != nil && !l.IsVisible(c); c = c.next {
	}
	return c
}

// Attach prepends c to the spatial list head and renumbers order.
func (l *List) Attach(c *Client) {
	if l.Head != nil {
		l.Head.prev = c
	}
	c.next = l.Head
	c.prev = nil
	l.Head = c
	l.renumber()
}

// AttachAfter inserts c immediately after a in the spatial list (a==nil
// means "at the tail") and renumbers the affected tail.
func (l *List) AttachAfter(c, a *Client) {
	if c == a {
		return
	}
	if a == nil {
		for a = l.Head; a != nil && a.next != nil; a = a.next {
		}
	}
	if a == nil {
		// empty list
		l.Head = c
		c.next, c.prev = nil, nil
		l.renumber()
		return
	}
	if a.next != nil {
		a.next.prev = c
	}
	c.next = a.next
	c.prev = a
	a.next = c
	l.renumber()
}

// Detach removes c from the spatial list.
func (l *List) Detach(c *Client) {
	if c.prev != nil {
		c.prev.next = c.next
	}
	if c.next != nil {
		c.next.prev = c.prev
	}
	if c == l.Head {
		l.Head = c.next
	}
	c.next, c.prev = nil, nil
	l.renumber()
}

// renumber assigns dense 1-based Order values to every visible client in
// spatial order.
func (l *List) renumber() {
	o := 1
	for c := l.NextVisible(l.Head); c != nil; c = l.NextVisible(c.next) {
		c.Order = o
		o++
	}
}

// AttachStack pushes c onto the top of the MRU focus stack.
func (l *List) AttachStack(c *Client) {
	c.snext = l.stack
	l.stack = c
}

// DetachStack removes c from the MRU focus stack, wherever it is.
func (l *List) DetachStack(c *Client) {
	pp := &l.stack
	for *pp != nil && *pp != c {
		pp = &(*pp).snext
	}
	if *pp != nil {
		*pp = c.snext
	}
	c.snext = nil
}

// Focus selects c. c == nil means "top visible client on the focus
// stack". Clears urgency on the previously selected client and invokes
// OnFocus so callers can update the outer-terminal title.
func (l *List) Focus(c *Client) {
	if c == nil {
		for s := l.stack; s != nil; s = s.snext {
			if l.IsVisible(s) {
				c = s
				break
			}
		}
	}
	if l.Sel == c {
		return
	}
	l.LastSel = l.Sel
	if l.LastSel != nil {
		l.LastSel.Urgent = false
	}
	l.Sel = c
	if c != nil {
		l.DetachStack(c)
		l.AttachStack(c)
		c.Urgent = false
	}
	if l.OnFocus != nil {
		l.OnFocus(l.LastSel, c)
	}
}

// Walk invokes fn for every client in spatial order (including
// non-visible ones), analogous to iterating dvtm's `clients` list.
func (l *List) Walk(fn func(*Client)) {
	for c := l.Head; c != nil; c = c.next {
		fn(c)
	}
}

// WalkVisible invokes fn for every visible client in spatial order.
func (l *List) WalkVisible(fn func(*Client)) {
	for c := l.NextVisible(l.Head); c != nil; c = l.NextVisible(c.next) {
		fn(c)
	}
}

// CountVisible returns the number of currently visible clients.
func (l *List) CountVisible() int {
	n := 0
	l.WalkVisible(func(*Client) { n++ })
	return n
}

// CountVisibleNonMinimized returns the number of visible, non-minimized
// clients.
func (l *List) CountVisibleNonMinimized() int {
	n := 0
	l.WalkVisible(func(c *Client) {
		if !c.Minimized {
			n++
		}
	})
	return n
}

// ByOrder returns the visible client with the given 1-based order, or nil.
func (l *List) ByOrder(order int) *Client {
	var found *Client
	l.WalkVisible(func(c *Client) {
		if c.Order == order {
			found = c
		}
	})
	return found
}

// ByID returns the client (visible or not) with the given id, or nil.
func (l *List) ByID(id ID) *Client {
	for c := l.Head; c != nil; c = c.next {
		if c.ID == id {
			return c
		}
	}
	return nil
}

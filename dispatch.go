package flick

// ============================================================================
// Touch Dispatch
// ============================================================================

// Dispatcher turns raw pointer input into touch lifecycles over an
// Element tree: down events walk the tree front to back, moves and ups go
// to the grab owner, and wheel events become transient touches.
//
// The Dispatcher is a convenience; hosts with their own routing can drive
// Element handlers directly.
type Dispatcher struct {
	root    Element
	nextID  int64
	touches map[int64]*Touch
}

// NewDispatcher returns a dispatcher over root.
func NewDispatcher(root Element) *Dispatcher {
	return &Dispatcher{
		root:    root,
		touches: make(map[int64]*Touch),
	}
}

// Begin starts a touch at (x, y), delivers the down event and returns the
// touch for subsequent Move/End calls.
func (d *Dispatcher) Begin(x, y float64) *Touch {
	d.nextID++
	t := NewTouch(d.nextID, x, y)
	d.touches[t.ID] = t
	if d.root != nil {
		d.root.OnTouchDown(t)
	}
	return t
}

// Move advances the touch to (x, y). Grabbed touches go straight to their
// grab owner.
func (d *Dispatcher) Move(t *Touch, x, y float64) {
	if t == nil {
		return
	}
	t.Move(x, y)
	if gc := t.GrabCurrent(); gc != nil {
		gc.OnTouchMove(t)
		return
	}
	if d.root != nil {
		d.root.OnTouchMove(t)
	}
}

// End finishes the touch at (x, y). Every element still holding a grab
// receives the up event with itself as the grab owner, matching what it
// saw for moves; ungrabbed touches take the tree path.
func (d *Dispatcher) End(t *Touch, x, y float64) {
	if t == nil {
		return
	}
	t.Move(x, y)
	targets := t.GrabList()
	if len(targets) == 0 {
		if d.root != nil {
			d.root.OnTouchUp(t)
		}
	} else {
		for _, el := range targets {
			t.setGrabCurrent(el)
			el.OnTouchUp(t)
		}
		t.clearGrabs()
	}
	delete(d.touches, t.ID)
}

// WheelEvent dispatches one wheel notch at (x, y) as a transient touch.
func (d *Dispatcher) WheelEvent(x, y float64, dir WheelDirection) bool {
	d.nextID++
	t := NewWheelTouch(d.nextID, x, y, dir)
	if d.root == nil {
		return false
	}
	return d.root.OnTouchDown(t)
}

// ActiveTouches returns how many touches are between down and up.
func (d *Dispatcher) ActiveTouches() int {
	return len(d.touches)
}

// ============================================================================
// Group
// ============================================================================

// Group is a plain container: a bounds rectangle with child elements.
// Touch events forward to children front to back (last child first) and
// stop at the first one that consumes them.
type Group struct {
	bounds   Bounds
	children []Element
}

// NewGroup returns a container with the given bounds.
func NewGroup(b Bounds) *Group {
	return &Group{bounds: b}
}

// Add appends a child on top of its siblings.
func (g *Group) Add(el Element) {
	g.children = append(g.children, el)
}

// Children returns the child list back to front.
func (g *Group) Children() []Element {
	return g.children
}

// Bounds returns the container rectangle.
func (g *Group) Bounds() Bounds { return g.bounds }

// SetBounds repositions the container. Children are not moved; layout is
// the host's concern.
func (g *Group) SetBounds(b Bounds) { g.bounds = b }

func (g *Group) OnTouchDown(t *Touch) bool {
	if !g.bounds.Contains(t.X, t.Y) {
		return false
	}
	for i := len(g.children) - 1; i >= 0; i-- {
		if g.children[i].OnTouchDown(t) {
			return true
		}
	}
	return false
}

func (g *Group) OnTouchMove(t *Touch) bool {
	if !g.bounds.Contains(t.X, t.Y) {
		return false
	}
	for i := len(g.children) - 1; i >= 0; i-- {
		if g.children[i].OnTouchMove(t) {
			return true
		}
	}
	return false
}

func (g *Group) OnTouchUp(t *Touch) bool {
	if !g.bounds.Contains(t.X, t.Y) {
		return false
	}
	for i := len(g.children) - 1; i >= 0; i-- {
		if g.children[i].OnTouchUp(t) {
			return true
		}
	}
	return false
}

package flick

// ============================================================================
// Geometry
// ============================================================================

// Bounds is an axis-aligned rectangle in window coordinates, top-left
// origin, y growing downward.
type Bounds struct {
	X, Y, Width, Height float64
}

// Contains reports whether the window point (x, y) lies inside the bounds.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// LocalPoint converts a window point to coordinates relative to the
// bounds origin.
func (b Bounds) LocalPoint(x, y float64) (float64, float64) {
	return x - b.X, y - b.Y
}

// Right returns the x coordinate of the right edge.
func (b Bounds) Right() float64 { return b.X + b.Width }

// Bottom returns the y coordinate of the bottom edge.
func (b Bounds) Bottom() float64 { return b.Y + b.Height }

// ============================================================================
// Widget Tree Boundary
// ============================================================================

// Element is the minimal surface a widget must expose to participate in
// touch dispatch. Handlers return true when the element consumed the event.
type Element interface {
	Bounds() Bounds
	OnTouchDown(t *Touch) bool
	OnTouchMove(t *Touch) bool
	OnTouchUp(t *Touch) bool
}

// Container is an Element with children. ScrollViews walk containers when
// searching their content subtree for a nested ScrollView under a touch.
type Container interface {
	Element
	Children() []Element
}

// ============================================================================
// Touch
// ============================================================================

// TouchSource distinguishes pointer contacts from synthesized wheel
// touches. Wheel touches are transient: they never grab and never become a
// ScrollView's active touch.
type TouchSource uint8

const (
	SourcePointer TouchSource = iota
	SourceWheel
)

// WheelDirection is the scroll direction carried by a wheel touch.
type WheelDirection uint8

const (
	WheelNone WheelDirection = iota
	WheelUp
	WheelDown
	WheelLeft
	WheelRight
)

// Touch is one pointer contact tracked from down to up. Position fields
// are window coordinates.
//
// Per-ScrollView gesture state lives in a typed map keyed by the widget
// pointer, so state for one view can never collide with another's and is
// garbage collected with the touch.
type Touch struct {
	ID int64

	X, Y   float64 // current position
	DX, DY float64 // delta since the previous move
	OX, OY float64 // origin, the down position

	Source TouchSource
	Wheel  WheelDirection

	grabCurrent Element
	grabList    []Element

	states  map[*ScrollView]*gestureState
	avoided map[*ScrollView]bool
	claimed map[*ScrollView]bool
	nested  *NestedContext

	// Bar hit flags and per-move axis guards, written by the owning
	// ScrollView during initialization and movement.
	inBarX, inBarY     bool
	handledX, handledY bool

	canDefocus bool
}

// NewTouch returns a pointer touch at the down position (x, y).
func NewTouch(id int64, x, y float64) *Touch {
	return &Touch{
		ID:         id,
		X:          x,
		Y:          y,
		OX:         x,
		OY:         y,
		states:     make(map[*ScrollView]*gestureState),
		avoided:    make(map[*ScrollView]bool),
		claimed:    make(map[*ScrollView]bool),
		canDefocus: true,
	}
}

// NewWheelTouch returns a transient wheel touch at (x, y).
func NewWheelTouch(id int64, x, y float64, dir WheelDirection) *Touch {
	t := NewTouch(id, x, y)
	t.Source = SourceWheel
	t.Wheel = dir
	return t
}

// IsWheel reports whether the touch was synthesized from a wheel event.
func (t *Touch) IsWheel() bool {
	return t.Source == SourceWheel
}

// Move updates the position and per-move deltas.
func (t *Touch) Move(x, y float64) {
	t.DX = x - t.X
	t.DY = y - t.Y
	t.X = x
	t.Y = y
}

// CanDefocus reports whether the embedding focus system may treat this
// touch as a defocusing click. Any scroll movement clears it.
func (t *Touch) CanDefocus() bool {
	return t.canDefocus
}

// ============================================================================
// Grab Management
// ============================================================================

// Grab routes subsequent move and up events for this touch to el. A grab
// does not stack: the most recent grab wins, but every grabbed element is
// remembered for up-event delivery.
func (t *Touch) Grab(el Element) {
	t.grabCurrent = el
	for _, g := range t.grabList {
		if g == el {
			return
		}
	}
	t.grabList = append(t.grabList, el)
}

// Ungrab releases el. If el holds the current grab, the touch becomes
// ungrabbed.
func (t *Touch) Ungrab(el Element) {
	if t.grabCurrent == el {
		t.grabCurrent = nil
	}
	for i, g := range t.grabList {
		if g == el {
			t.grabList = append(t.grabList[:i], t.grabList[i+1:]...)
			return
		}
	}
}

// GrabCurrent returns the element currently routed this touch, or nil.
func (t *Touch) GrabCurrent() Element {
	return t.grabCurrent
}

// GrabList returns a copy of every element that grabbed the touch and has
// not ungrabbed.
func (t *Touch) GrabList() []Element {
	out := make([]Element, len(t.grabList))
	copy(out, t.grabList)
	return out
}

func (t *Touch) setGrabCurrent(el Element) {
	t.grabCurrent = el
}

func (t *Touch) clearGrabs() {
	t.grabCurrent = nil
	t.grabList = t.grabList[:0]
}

// ============================================================================
// Per-ScrollView State
// ============================================================================

func (t *Touch) stateFor(sv *ScrollView) *gestureState {
	return t.states[sv]
}

func (t *Touch) setState(sv *ScrollView, st *gestureState) {
	t.states[sv] = st
}

func (t *Touch) clearState(sv *ScrollView) {
	delete(t.states, sv)
}

func (t *Touch) hasAnyState() bool {
	return len(t.states) > 0
}

// hasActiveState reports whether any ScrollView still has a live gesture
// on this touch.
func (t *Touch) hasActiveState() bool {
	for _, st := range t.states {
		if st.mode != ModeStopped {
			return true
		}
	}
	return false
}

func (t *Touch) markAvoided(sv *ScrollView) {
	t.avoided[sv] = true
}

func (t *Touch) isAvoided(sv *ScrollView) bool {
	return t.avoided[sv]
}

// markClaimed records that sv handed this touch to a child after the
// gesture timeout; sv must not re-initialize scrolling for it.
func (t *Touch) markClaimed(sv *ScrollView) {
	t.claimed[sv] = true
}

func (t *Touch) isClaimed(sv *ScrollView) bool {
	return t.claimed[sv]
}

// Nested returns the touch's nested coordination context, if a down event
// landed on a nested ScrollView pair.
func (t *Touch) Nested() *NestedContext {
	return t.nested
}

func (t *Touch) resetAxisHandled() {
	t.handledX = false
	t.handledY = false
}

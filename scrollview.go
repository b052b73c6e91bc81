package flick

import (
	"math"
	"time"
)

// ============================================================================
// ScrollView Options
// ============================================================================

// ScrollType selects which interactions move the viewport.
type ScrollType uint8

const (
	// ScrollContent scrolls by dragging the content itself.
	ScrollContent ScrollType = 1 << iota
	// ScrollBars scrolls through the scrollbar handles and tracks.
	ScrollBars
)

// BarPositionX places the horizontal scrollbar track.
type BarPositionX uint8

const (
	BarBottom BarPositionX = iota
	BarTop
)

// BarPositionY places the vertical scrollbar track.
type BarPositionY uint8

const (
	BarRight BarPositionY = iota
	BarLeft
)

// Options configures a ScrollView. The zero value scrolls nothing; start
// from DefaultOptions.
type Options struct {
	DoScrollX bool
	DoScrollY bool

	// ScrollDistance is the movement in pixels that turns an undecided
	// touch into a scroll gesture.
	ScrollDistance float64
	// ScrollTimeout is how long an undecided touch may rest before it
	// is re-dispatched to children as a click.
	ScrollTimeout time.Duration
	// ScrollWheelDistance is the distance one wheel notch scrolls.
	ScrollWheelDistance float64

	// ParallelDelegation enables boundary handoff to an outer view when
	// both views of a nested pair scroll the same axis.
	ParallelDelegation bool
	// SlowDeviceSupport delays the gesture timeout until at least three
	// frames have rendered since the touch went down.
	SlowDeviceSupport bool
	// AlwaysOverscroll lets content smaller than the viewport overscroll.
	AlwaysOverscroll bool
	// SmoothScrollEnd, when positive, converts wheel notches into
	// velocity instead of position jumps.
	SmoothScrollEnd float64

	ScrollType ScrollType
	BarWidth   float64
	BarMargin  float64
	BarPosX    BarPositionX
	BarPosY    BarPositionY

	// NewEffect builds the per-axis physics effect. Nil selects
	// NewDampedScrollEffect.
	NewEffect func(*Clock) Effect
}

// DefaultOptions returns the stock configuration: both axes, 20px scroll
// distance, 55ms timeout, content-only scrolling with damped overscroll.
func DefaultOptions() Options {
	return Options{
		DoScrollX:           true,
		DoScrollY:           true,
		ScrollDistance:      20,
		ScrollTimeout:       55 * time.Millisecond,
		ScrollWheelDistance: 20,
		ParallelDelegation:  true,
		ScrollType:          ScrollContent,
		BarWidth:            2,
	}
}

// ============================================================================
// ScrollView
// ============================================================================

// ScrollView clips a single content element and scrolls it through touch
// drags, scrollbar interaction and wheel events. Positions are normalized:
// scroll_x and scroll_y run 0..1 with 0 at the left/top edge, and may
// exceed that range while overscrolled.
//
// A ScrollView is an Element; the host delivers touches through OnTouch*
// (normally via a Dispatcher) and drives time through the shared Clock.
type ScrollView struct {
	clock  *Clock
	bounds Bounds

	content  Element
	contentW float64
	contentH float64

	scrollX float64
	scrollY float64

	doScrollX          bool
	doScrollY          bool
	scrollDistance     float64
	scrollTimeout      time.Duration
	wheelDistance      float64
	parallelDelegation bool
	slowDeviceSupport  bool
	alwaysOverscroll   bool
	smoothScrollEnd    float64
	scrollType         ScrollType
	barWidth           float64
	barMargin          float64
	barPosX            BarPositionX
	barPosY            BarPositionY
	disabled           bool

	effectX Effect
	effectY Effect

	touch        *Touch // the touch this view is actively tracking
	nestedActive *Touch // the touch coordinating a nested pair under us

	timeoutEv  *ClockEvent
	velocityEv *ClockEvent
	positionEv *ClockEvent
	clickEv    *ClockEvent
	tweenEv    *ClockEvent

	stableX, stableY float64
	haveStable       bool
	stableFrames     int

	tween *scrollTween

	// OnScrollStart fires when a scroll interaction begins, OnScrollMove
	// on every scroll position change from any source, OnScrollStop when
	// motion has fully settled.
	OnScrollStart func()
	OnScrollMove  func()
	OnScrollStop  func()
}

// stopVelocityEpsilon is the speed under which coasting counts as ended
// for stop detection.
const stopVelocityEpsilon = 0.1

// stablePositionFrames is how many consecutive unchanged frames the
// settle phase requires before on-scroll-stop fires.
const stablePositionFrames = 3

// NewScrollView returns a ScrollView driven by clock.
func NewScrollView(clock *Clock, opts Options) *ScrollView {
	if opts.NewEffect == nil {
		opts.NewEffect = func(c *Clock) Effect { return NewDampedScrollEffect(c) }
	}
	sv := &ScrollView{
		clock:              clock,
		doScrollX:          opts.DoScrollX,
		doScrollY:          opts.DoScrollY,
		scrollDistance:     opts.ScrollDistance,
		scrollTimeout:      opts.ScrollTimeout,
		wheelDistance:      opts.ScrollWheelDistance,
		parallelDelegation: opts.ParallelDelegation,
		slowDeviceSupport:  opts.SlowDeviceSupport,
		alwaysOverscroll:   opts.AlwaysOverscroll,
		smoothScrollEnd:    opts.SmoothScrollEnd,
		scrollType:         opts.ScrollType,
		barWidth:           opts.BarWidth,
		barMargin:          opts.BarMargin,
		barPosX:            opts.BarPosX,
		barPosY:            opts.BarPosY,
	}
	if sv.doScrollX {
		sv.effectX = opts.NewEffect(clock)
		sv.effectX.SetOnScroll(sv.applyEffectX)
	}
	if sv.doScrollY {
		sv.effectY = opts.NewEffect(clock)
		sv.effectY.SetOnScroll(sv.applyEffectY)
	}
	return sv
}

// ============================================================================
// Geometry and Position
// ============================================================================

// Bounds returns the viewport rectangle in window coordinates.
func (sv *ScrollView) Bounds() Bounds { return sv.bounds }

// SetBounds positions the viewport. Effects are re-bounded to the new
// scrollable range.
func (sv *ScrollView) SetBounds(b Bounds) {
	sv.bounds = b
	sv.updateEffectBounds()
}

// Content returns the scrolled element.
func (sv *ScrollView) Content() Element { return sv.content }

// SetContent installs the scrolled element. If no content size was given
// yet it is taken from the element's bounds.
func (sv *ScrollView) SetContent(el Element) {
	sv.content = el
	if el != nil && sv.contentW == 0 && sv.contentH == 0 {
		b := el.Bounds()
		sv.contentW = b.Width
		sv.contentH = b.Height
	}
	sv.updateEffectBounds()
}

// SetContentSize sets the full size of the scrolled content in pixels.
func (sv *ScrollView) SetContentSize(w, h float64) {
	sv.contentW = w
	sv.contentH = h
	sv.updateEffectBounds()
}

// ScrollX returns the normalized horizontal position, 0 at the left edge.
func (sv *ScrollView) ScrollX() float64 { return sv.scrollX }

// ScrollY returns the normalized vertical position, 0 at the top edge.
func (sv *ScrollView) ScrollY() float64 { return sv.scrollY }

// SetScrollX moves the viewport horizontally without animation.
func (sv *ScrollView) SetScrollX(v float64) {
	sv.setScrollX(v)
	sv.updateEffectXBounds()
}

// SetScrollY moves the viewport vertically without animation.
func (sv *ScrollView) SetScrollY(v float64) {
	sv.setScrollY(v)
	sv.updateEffectYBounds()
}

// SetDisabled toggles all touch interaction.
func (sv *ScrollView) SetDisabled(d bool) { sv.disabled = d }

// ContentOffset returns the pixel offset of the content origin relative
// to the viewport origin; renderers subtract it when drawing content.
func (sv *ScrollView) ContentOffset() (x, y float64) {
	return sv.scrollX * sv.maxScrollX(), sv.scrollY * sv.maxScrollY()
}

func (sv *ScrollView) maxScrollX() float64 {
	return math.Max(0, sv.contentW-sv.bounds.Width)
}

func (sv *ScrollView) maxScrollY() float64 {
	return math.Max(0, sv.contentH-sv.bounds.Height)
}

func (sv *ScrollView) widthScrollable() bool {
	return (sv.alwaysOverscroll && sv.doScrollX) || sv.contentW > sv.bounds.Width
}

func (sv *ScrollView) heightScrollable() bool {
	return (sv.alwaysOverscroll && sv.doScrollY) || sv.contentH > sv.bounds.Height
}

func (sv *ScrollView) setScrollX(v float64) {
	if v == sv.scrollX {
		return
	}
	sv.scrollX = v
	sv.dispatchScrollMove()
}

func (sv *ScrollView) setScrollY(v float64) {
	if v == sv.scrollY {
		return
	}
	sv.scrollY = v
	sv.dispatchScrollMove()
}

// ============================================================================
// Effect Binding
// ============================================================================

// The effect value is the negated content offset in pixels: value 0 is the
// top/left rest position, value -maxScroll the bottom/right one. Values
// outside [-maxScroll, 0] are overscroll.

func (sv *ScrollView) applyEffectX(value float64) {
	maxS := sv.maxScrollX()
	if maxS <= 0 {
		return
	}
	sv.setScrollX(-value / maxS)
}

func (sv *ScrollView) applyEffectY(value float64) {
	maxS := sv.maxScrollY()
	if maxS <= 0 {
		return
	}
	sv.setScrollY(-value / maxS)
}

func (sv *ScrollView) updateEffectBounds() {
	sv.updateEffectXBounds()
	sv.updateEffectYBounds()
}

func (sv *ScrollView) updateEffectXBounds() {
	if sv.effectX == nil {
		return
	}
	maxS := sv.maxScrollX()
	sv.effectX.SetBounds(-maxS, 0)
	sv.effectX.SetValue(-sv.scrollX * maxS)
}

func (sv *ScrollView) updateEffectYBounds() {
	if sv.effectY == nil {
		return
	}
	maxS := sv.maxScrollY()
	sv.effectY.SetBounds(-maxS, 0)
	sv.effectY.SetValue(-sv.scrollY * maxS)
}

func (sv *ScrollView) initializeScrollEffects(t *Touch, inBar bool) {
	if inBar {
		return
	}
	if sv.doScrollX && sv.effectX != nil {
		sv.updateEffectXBounds()
		sv.effectX.Start(t.X)
	}
	if sv.doScrollY && sv.effectY != nil {
		sv.updateEffectYBounds()
		sv.effectY.Start(t.Y)
	}
}

func (sv *ScrollView) stopEffects(t *Touch, notInBar bool) {
	if !notInBar {
		return
	}
	// ErrNoSamples means the touch never moved on that axis; there is
	// nothing to coast, which is fine at the end of a gesture.
	if sv.doScrollX && sv.effectX != nil {
		_ = sv.effectX.Stop(t.X)
	}
	if sv.doScrollY && sv.effectY != nil {
		_ = sv.effectY.Stop(t.Y)
	}
}

// ============================================================================
// Scrollbars
// ============================================================================

// hbar returns the normalized position and length of the horizontal
// scrollbar handle within its track.
func (sv *ScrollView) hbar() (pos, size float64) {
	if sv.contentW <= 0 || sv.contentW <= sv.bounds.Width || sv.bounds.Width <= 0 {
		return 0, 1
	}
	size = clamp01(sv.bounds.Width / sv.contentW)
	pos = (1 - size) * clamp01(sv.scrollX)
	return pos, size
}

// vbar is the vertical counterpart of hbar; position is measured from the
// top of the track.
func (sv *ScrollView) vbar() (pos, size float64) {
	if sv.contentH <= 0 || sv.contentH <= sv.bounds.Height || sv.bounds.Height <= 0 {
		return 0, 1
	}
	size = clamp01(sv.bounds.Height / sv.contentH)
	pos = (1 - size) * clamp01(sv.scrollY)
	return pos, size
}

// HBarHandle returns the window rectangle of the horizontal handle, for
// renderers.
func (sv *ScrollView) HBarHandle() Bounds {
	pos, size := sv.hbar()
	y := sv.bounds.Bottom() - sv.barWidth
	if sv.barPosX == BarTop {
		y = sv.bounds.Y
	}
	return Bounds{
		X:      sv.bounds.X + pos*sv.bounds.Width,
		Y:      y,
		Width:  size * sv.bounds.Width,
		Height: sv.barWidth,
	}
}

// VBarHandle returns the window rectangle of the vertical handle.
func (sv *ScrollView) VBarHandle() Bounds {
	pos, size := sv.vbar()
	x := sv.bounds.Right() - sv.barWidth
	if sv.barPosY == BarLeft {
		x = sv.bounds.X
	}
	return Bounds{
		X:      x,
		Y:      sv.bounds.Y + pos*sv.bounds.Height,
		Width:  sv.barWidth,
		Height: size * sv.bounds.Height,
	}
}

// checkScrollBounds reports whether the touch lies on the horizontal or
// vertical scrollbar track.
func (sv *ScrollView) checkScrollBounds(t *Touch) (inBarX, inBarY bool) {
	if sv.scrollType&ScrollBars == 0 {
		return false, false
	}
	hit := sv.barWidth + sv.barMargin
	if sv.doScrollX && sv.widthScrollable() {
		var d float64
		if sv.barPosX == BarBottom {
			d = sv.bounds.Bottom() - t.Y
		} else {
			d = t.Y - sv.bounds.Y
		}
		inBarX = d >= 0 && d <= hit
	}
	if sv.doScrollY && sv.heightScrollable() {
		var d float64
		if sv.barPosY == BarRight {
			d = sv.bounds.Right() - t.X
		} else {
			d = t.X - sv.bounds.X
		}
		inBarY = d >= 0 && d <= hit
	}
	return inBarX, inBarY
}

// scrollBarJump moves the handle under a track touch that landed outside
// the handle itself.
func (sv *ScrollView) scrollBarJump(t *Touch, inBarX, inBarY bool) {
	if inBarX {
		h := sv.HBarHandle()
		if (t.X < h.X || t.X > h.X+h.Width) && sv.bounds.Width > 0 {
			sv.setScrollX(clamp01((t.X - sv.bounds.X) / sv.bounds.Width))
			if sv.effectX != nil {
				sv.effectX.SetVelocity(0)
			}
			sv.updateEffectXBounds()
		}
	}
	if inBarY {
		h := sv.VBarHandle()
		if (t.Y < h.Y || t.Y > h.Y+h.Height) && sv.bounds.Height > 0 {
			sv.setScrollY(clamp01((t.Y - sv.bounds.Y) / sv.bounds.Height))
			if sv.effectY != nil {
				sv.effectY.SetVelocity(0)
			}
			sv.updateEffectYBounds()
		}
	}
}

// ============================================================================
// Mouse Wheel
// ============================================================================

// handleMouseWheel routes one wheel notch. Wheel touches never grab and
// never become the active touch; each event is routed independently.
func (sv *ScrollView) handleMouseWheel(t *Touch, inBarX, inBarY bool) bool {
	dir := t.Wheel
	if dir == WheelNone {
		return false
	}
	vertical := dir == WheelUp || dir == WheelDown

	var e Effect
	switch {
	case vertical && sv.doScrollY && sv.heightScrollable():
		// Hovering the horizontal bar redirects vertical notches to the
		// horizontal axis.
		if inBarX && sv.effectX != nil {
			e = sv.effectX
		} else {
			e = sv.effectY
		}
	case !vertical && sv.doScrollX && sv.widthScrollable():
		if inBarY && sv.effectY != nil {
			e = sv.effectY
		} else {
			e = sv.effectX
		}
	}
	if e == nil {
		return false
	}
	sv.dispatchScrollStart()
	sv.applyWheelScroll(e, dir)
	e.TriggerVelocityUpdate()
	return true
}

func (sv *ScrollView) applyWheelScroll(e Effect, dir WheelDirection) {
	m := sv.wheelDistance
	// Top-left origin: wheel down and wheel right advance the scroll
	// position, which lowers the effect value.
	advance := dir == WheelDown || dir == WheelRight
	if sv.smoothScrollEnd > 0 {
		if advance {
			e.SetVelocity(e.Velocity() - m*sv.smoothScrollEnd)
		} else {
			e.SetVelocity(e.Velocity() + m*sv.smoothScrollEnd)
		}
		return
	}
	min, max := e.ValueBounds()
	if advance {
		v := e.Value() - m
		if !sv.alwaysOverscroll {
			v = math.Max(v, min)
		}
		e.SetValue(v)
	} else {
		v := e.Value() + m
		if !sv.alwaysOverscroll {
			v = math.Min(v, max)
		}
		e.SetValue(v)
	}
}

// ============================================================================
// Touch Lifecycle
// ============================================================================

// OnTouchDown claims touches over the viewport. When the touch also lands
// over a nested ScrollView inside the content, the pair is classified once
// and the inner view is initialized first.
func (sv *ScrollView) OnTouchDown(t *Touch) bool {
	if !sv.bounds.Contains(t.X, t.Y) {
		return false
	}
	// One coordinated gesture at a time across the nested pair.
	if sv.nestedActive != nil && sv.nestedActive != t && !t.IsWheel() {
		return true
	}

	// Bar touches are a direct manipulation of this view, even when a
	// nested inner lies under the pointer.
	if !t.IsWheel() {
		if inBarX, inBarY := sv.checkScrollBounds(t); inBarX || inBarY {
			if sv.scrollInitialize(t) {
				t.Grab(sv)
				return true
			}
			return false
		}
	}

	if inner := sv.findNestedAt(t); inner != nil {
		cfg, axes := classifyNested(sv, inner)
		t.nested = &NestedContext{
			Outer:  sv,
			Inner:  inner,
			Mode:   NestedInner,
			Config: cfg,
			Axes:   axes,
		}
		if inner.scrollInitialize(t) {
			if !t.IsWheel() {
				sv.nestedActive = t
				t.Grab(sv)
			}
			return true
		}
		// The inner view passed (wheel on an axis it cannot scroll,
		// disabled, already tracking): try this view.
		t.nested.Mode = NestedOuter
		if sv.scrollInitialize(t) {
			if !t.IsWheel() {
				sv.nestedActive = t
				t.Grab(sv)
			}
			return true
		}
		t.nested = nil
		return false
	}

	if sv.scrollInitialize(t) {
		if !t.IsWheel() {
			t.Grab(sv)
		}
		return true
	}
	return false
}

// findNestedAt locates a ScrollView in the content subtree under the
// touch. Children that do not collide with the touch are not descended
// into.
func (sv *ScrollView) findNestedAt(t *Touch) *ScrollView {
	if sv.content == nil {
		return nil
	}
	return findScrollViewAt(sv.content, t.X, t.Y)
}

func findScrollViewAt(el Element, x, y float64) *ScrollView {
	if inner, ok := el.(*ScrollView); ok {
		if inner.Bounds().Contains(x, y) && !inner.disabled {
			return inner
		}
		return nil
	}
	if !el.Bounds().Contains(x, y) {
		return nil
	}
	if c, ok := el.(Container); ok {
		for _, child := range c.Children() {
			if found := findScrollViewAt(child, x, y); found != nil {
				return found
			}
		}
	}
	return nil
}

// scrollInitialize sets up gesture tracking for a fresh touch. The return
// value says whether this view took the touch.
func (sv *ScrollView) scrollInitialize(t *Touch) bool {
	if t.isClaimed(sv) {
		return false
	}
	isNestedInner := t.nested != nil && t.nested.Inner == sv
	if !sv.bounds.Contains(t.X, t.Y) && !isNestedInner {
		t.markAvoided(sv)
		return false
	}
	if sv.disabled {
		// Swallow the touch so nothing behind a disabled view reacts.
		return true
	}
	if sv.touch != nil && !t.IsWheel() {
		// Single-touch policy: a second finger passes through.
		return false
	}
	if !sv.doScrollX && !sv.doScrollY {
		return sv.simulateTouchDown(t)
	}
	if sv.content == nil {
		return true
	}
	sv.cancelScrollTween()

	inBarX, inBarY := sv.checkScrollBounds(t)
	t.inBarX, t.inBarY = inBarX, inBarY
	inBar := inBarX || inBarY

	if t.IsWheel() {
		if sv.handleMouseWheel(t, inBarX, inBarY) {
			t.markAvoided(sv)
			sv.startStopDetection()
			return true
		}
		return false
	}

	if sv.scrollType&ScrollContent == 0 && !inBar {
		// Bars-only interaction: content touches go to children.
		return sv.simulateTouchDown(t)
	}

	if inBar {
		sv.dispatchScrollStart()
		sv.scrollBarJump(t, inBarX, inBarY)
	}

	sv.touch = t
	t.setState(sv, &gestureState{
		mode:         ModeUnknown,
		scrollAction: inBar,
		frames:       sv.clock.Frames(),
		canDefocus:   true,
	})
	sv.initializeScrollEffects(t, inBar)
	sv.setupBoundaryDelegation(t, inBar)
	if !inBar {
		if sv.timeoutEv != nil {
			sv.timeoutEv.Cancel()
		}
		sv.timeoutEv = sv.clock.ScheduleOnce(sv.changeTouchMode, sv.scrollTimeout)
	}
	return true
}

// OnTouchMove routes moves for touches this view grabbed; everything else
// is forwarded to colliding content.
func (sv *ScrollView) OnTouchMove(t *Touch) bool {
	if t.GrabCurrent() == Element(sv) {
		t.resetAxisHandled()
		if n := t.nested; n != nil && n.Outer == sv {
			return sv.nestedMove(t, n)
		}
		if t.stateFor(sv) == nil && !t.hasAnyState() {
			// The grab survived a state teardown; rebuild tracking so
			// the gesture keeps working instead of going dead.
			if !sv.scrollInitialize(t) {
				return false
			}
		}
		return sv.scrollUpdate(t)
	}
	if sv.bounds.Contains(t.X, t.Y) && sv.content != nil && !t.hasActiveState() {
		return sv.content.OnTouchMove(t)
	}
	return false
}

// nestedMove coordinates a move between the pair: inner first, and on
// rejection the remainder of the gesture is delegated here.
func (sv *ScrollView) nestedMove(t *Touch, n *NestedContext) bool {
	if n.Mode == NestedInner {
		inner := n.Inner
		if inner == nil || t.isClaimed(inner) {
			return false
		}
		if inner.scrollUpdate(t) {
			return true
		}
		return sv.delegateToOuter(t, inner)
	}
	t.resetAxisHandled()
	return sv.scrollUpdate(t)
}

// delegateToOuter makes this view the gesture owner. The handoff is
// one-way: the nested mode never returns to inner for this touch.
func (sv *ScrollView) delegateToOuter(t *Touch, inner *ScrollView) bool {
	n := t.nested
	n.Mode = NestedOuter

	if inner != nil {
		if inner.timeoutEv != nil {
			inner.timeoutEv.Cancel()
			inner.timeoutEv = nil
		}
		// Discard the inner's drag history so the handed-off movement is
		// never replayed, then let its spring pull any overscroll back to
		// the edge while the outer carries on.
		if inner.effectX != nil {
			inner.effectX.Cancel()
			inner.effectX.TriggerVelocityUpdate()
		}
		if inner.effectY != nil {
			inner.effectY.Cancel()
			inner.effectY.TriggerVelocityUpdate()
		}
		if st := t.stateFor(inner); st != nil && st.mode == ModeUnknown {
			st.mode = ModeStopped
		}
		inner.touch = nil
	}

	if t.stateFor(sv) == nil {
		t.setState(sv, &gestureState{
			mode:       ModeScroll,
			frames:     sv.clock.Frames(),
			canDefocus: true,
		})
		sv.touch = t
		sv.initializeScrollEffects(t, false)
		sv.dispatchScrollStart()
	}
	t.resetAxisHandled()
	return sv.scrollUpdate(t)
}

// scrollUpdate advances the gesture state machine for one move event.
// A false return means the gesture is not (or no longer) this view's.
func (sv *ScrollView) scrollUpdate(t *Touch) bool {
	st := t.stateFor(sv)
	if st == nil || st.mode == ModeStopped {
		return false
	}

	if n := t.nested; n != nil && n.Inner == sv && n.Mode == NestedInner && st.mode == ModeScroll {
		// Delegation is only judged on a committed scroll; an undecided
		// touch can still turn out to be a tap.
		if sv.checkNestedDelegation(t) {
			return false
		}
	}

	if st.mode == ModeUnknown {
		if !sv.detectScrollIntent(t, st) {
			return false
		}
		if st.mode != ModeScroll {
			// Still undecided; the touch is consumed but nothing moves.
			return true
		}
	}

	handled := false
	if sv.processAxisX(t) {
		handled = true
	}
	if sv.processAxisY(t) {
		handled = true
	}
	if handled {
		st.canDefocus = false
		t.canDefocus = false
	}
	return handled
}

func (sv *ScrollView) processAxisX(t *Touch) bool {
	if t.handledX || !sv.doScrollX || sv.effectX == nil {
		return false
	}
	if t.inBarX {
		_, size := sv.hbar()
		track := sv.bounds.Width * (1 - size)
		if size != 1 && track > 0 {
			sv.setScrollX(clamp01(sv.scrollX + t.DX/track))
			sv.updateEffectXBounds()
		}
	} else {
		sv.effectX.Update(t.X)
	}
	t.handledX = true
	return true
}

func (sv *ScrollView) processAxisY(t *Touch) bool {
	if t.handledY || !sv.doScrollY || sv.effectY == nil {
		return false
	}
	if t.inBarY {
		_, size := sv.vbar()
		track := sv.bounds.Height * (1 - size)
		if size != 1 && track > 0 {
			sv.setScrollY(clamp01(sv.scrollY + t.DY/track))
			sv.updateEffectYBounds()
		}
	} else {
		sv.effectY.Update(t.Y)
	}
	t.handledY = true
	return true
}

// OnTouchUp finalizes the gesture. For a nested pair the outer view owns
// the grab and finalizes both views.
func (sv *ScrollView) OnTouchUp(t *Touch) bool {
	if t.GrabCurrent() != Element(sv) {
		// After a timeout handoff the touch is no longer ours but the
		// child that received the simulated down still needs the up.
		if sv.bounds.Contains(t.X, t.Y) && sv.content != nil && !t.hasActiveState() {
			return sv.content.OnTouchUp(t)
		}
		return false
	}

	if n := t.nested; n != nil && n.Outer == sv {
		handled := false
		if n.Inner != nil && t.stateFor(n.Inner) != nil {
			if n.Inner.scrollFinalize(t) {
				handled = true
			}
		}
		if t.stateFor(sv) != nil {
			if sv.scrollFinalize(t) {
				handled = true
			}
		}
		sv.nestedActive = nil
		t.Ungrab(sv)
		return handled
	}

	handled := sv.scrollFinalize(t)
	t.Ungrab(sv)
	return handled
}

// scrollFinalize tears down gesture tracking at touch up: coasting starts,
// stop detection is armed, and an undecided touch completes its click
// passthrough.
func (sv *ScrollView) scrollFinalize(t *Touch) bool {
	if sv.timeoutEv != nil {
		sv.timeoutEv.Cancel()
		sv.timeoutEv = nil
	}
	if t.isAvoided(sv) {
		return false
	}
	st := t.stateFor(sv)
	if st == nil {
		if sv.touch == t {
			sv.touch = nil
		}
		return false
	}
	if sv.touch == t {
		sv.touch = nil
	}

	notInBar := !t.inBarX && !t.inBarY
	sv.stopEffects(t, notInBar)

	switch {
	case st.mode == ModeScroll || st.scrollAction:
		sv.startStopDetection()
	case st.mode == ModeUnknown:
		// Never proved to be a scroll: children get a complete click.
		sv.simulateTouchDown(t)
		sv.scheduleSyntheticUp(t)
	}
	st.mode = ModeStopped
	if !st.canDefocus {
		t.canDefocus = false
	}
	sv.updateEffectBounds()
	return true
}

// ============================================================================
// Stop Detection
// ============================================================================

// Stop detection runs in two stages after a gesture ends: poll velocity at
// 60Hz until coasting dies down, then require the scroll position to hold
// still for three consecutive frames before firing on-scroll-stop.

func (sv *ScrollView) startStopDetection() {
	if sv.velocityEv != nil {
		sv.velocityEv.Cancel()
	}
	if sv.positionEv != nil {
		sv.positionEv.Cancel()
		sv.positionEv = nil
	}
	sv.haveStable = false
	sv.stableFrames = 0
	sv.velocityEv = sv.clock.ScheduleInterval(sv.checkVelocityForStop, time.Second/60)
}

func (sv *ScrollView) checkVelocityForStop(time.Duration) {
	var vx, vy float64
	if sv.effectX != nil {
		vx = sv.effectX.Velocity()
	}
	if sv.effectY != nil {
		vy = sv.effectY.Velocity()
	}
	if abs(vx) > stopVelocityEpsilon || abs(vy) > stopVelocityEpsilon {
		return
	}
	sv.velocityEv.Cancel()
	sv.velocityEv = nil
	sv.positionEv = sv.clock.ScheduleInterval(sv.checkPositionStable, 0)
}

func (sv *ScrollView) checkPositionStable(time.Duration) {
	x, y := sv.scrollX, sv.scrollY
	if sv.haveStable && x == sv.stableX && y == sv.stableY {
		sv.stableFrames++
		if sv.stableFrames >= stablePositionFrames {
			sv.positionEv.Cancel()
			sv.positionEv = nil
			sv.dispatchScrollStop()
		}
		return
	}
	sv.haveStable = true
	sv.stableX = x
	sv.stableY = y
	sv.stableFrames = 0
}

// ============================================================================
// Event Surface
// ============================================================================

func (sv *ScrollView) dispatchScrollStart() {
	if sv.OnScrollStart != nil {
		sv.OnScrollStart()
	}
}

func (sv *ScrollView) dispatchScrollMove() {
	if sv.OnScrollMove != nil {
		sv.OnScrollMove()
	}
}

func (sv *ScrollView) dispatchScrollStop() {
	if sv.OnScrollStop != nil {
		sv.OnScrollStop()
	}
}

// Detach cancels every scheduled callback and pending motion. Call it
// before removing the view from the tree.
func (sv *ScrollView) Detach() {
	for _, ev := range []*ClockEvent{sv.timeoutEv, sv.velocityEv, sv.positionEv, sv.clickEv, sv.tweenEv} {
		ev.Cancel()
	}
	sv.timeoutEv = nil
	sv.velocityEv = nil
	sv.positionEv = nil
	sv.clickEv = nil
	sv.tweenEv = nil
	sv.tween = nil
	if sv.effectX != nil {
		sv.effectX.Cancel()
	}
	if sv.effectY != nil {
		sv.effectY.Cancel()
	}
	sv.touch = nil
	sv.nestedActive = nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

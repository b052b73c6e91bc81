package flick

import "time"

// ============================================================================
// Gesture State Machine
// ============================================================================

// ScrollMode is the per-touch gesture phase of one ScrollView.
type ScrollMode uint8

const (
	// ModeUnknown: the touch went down but has not yet proven to be a
	// scroll. Movement accumulates against the distance threshold while
	// the timeout counts down toward a click passthrough.
	ModeUnknown ScrollMode = iota
	// ModeScroll: the touch is a scroll gesture; moves feed the effects.
	ModeScroll
	// ModeStopped: terminal. The gesture ended or was handed off.
	ModeStopped
)

// gestureState is one ScrollView's private record for one touch.
type gestureState struct {
	mode         ScrollMode
	dx, dy       float64 // accumulated absolute movement
	scrollAction bool    // true when the touch began on a scrollbar
	frames       uint64  // clock frame count at touch down
	canDefocus   bool
}

// syntheticUpDelay is how long a click passthrough waits before delivering
// the synthetic up event, giving child widgets a visible pressed state.
const syntheticUpDelay = 200 * time.Millisecond

// detectScrollIntent accumulates movement while the mode is Unknown and
// decides whether the touch becomes a scroll. It returns false when the
// gesture is not ours: movement dominated by an axis this view cannot
// scroll, but a nested partner can, yields immediately.
func (sv *ScrollView) detectScrollIntent(t *Touch, st *gestureState) bool {
	if !sv.doScrollX && !sv.doScrollY {
		// Nothing to scroll; hand the touch to children right away.
		sv.changeTouchMode(0)
		return false
	}

	st.dx += abs(t.DX)
	st.dy += abs(t.DY)

	if n := t.nested; n != nil && n.Inner == sv && n.Outer != nil {
		if st.dx > sv.scrollDistance && !sv.doScrollX && n.Outer.doScrollX && st.dx > st.dy {
			return false
		}
		if st.dy > sv.scrollDistance && !sv.doScrollY && n.Outer.doScrollY && st.dy > st.dx {
			return false
		}
	}

	crossedX := sv.doScrollX && st.dx > sv.scrollDistance
	crossedY := sv.doScrollY && st.dy > sv.scrollDistance
	if crossedX || crossedY {
		if sv.timeoutEv != nil {
			sv.timeoutEv.Cancel()
			sv.timeoutEv = nil
		}
		st.mode = ModeScroll
		if !st.scrollAction {
			sv.dispatchScrollStart()
		}
	}
	return true
}

// changeTouchMode fires when the gesture timeout expires with the mode
// still Unknown: the touch was a click, not a scroll, and is re-dispatched
// to the content as a fresh down event.
func (sv *ScrollView) changeTouchMode(dt time.Duration) {
	t := sv.touch
	if t == nil {
		return
	}
	st := t.stateFor(sv)
	if st == nil {
		sv.touch = nil
		return
	}
	if st.mode != ModeUnknown || st.scrollAction {
		return
	}
	// Slow devices can deliver the timeout before the first frames have
	// rendered; give movement a chance to arrive.
	if sv.slowDeviceSupport && sv.clock.Frames()-st.frames < 3 {
		sv.timeoutEv = sv.clock.ScheduleOnce(sv.changeTouchMode, 0)
		return
	}

	if sv.doScrollX && sv.effectX != nil {
		sv.effectX.Cancel()
	}
	if sv.doScrollY && sv.effectY != nil {
		sv.effectY.Cancel()
	}
	st.mode = ModeStopped
	t.Ungrab(sv)
	sv.touch = nil
	if sv.simulateTouchDown(t) {
		// A child consumed the down event and owns the touch now. The
		// claimed flag keeps this view from re-initializing if the
		// touch wanders back over it.
		t.clearState(sv)
		t.markClaimed(sv)
	}
}

// simulateTouchDown re-dispatches the touch to the content subtree as a
// down event, temporarily stepping aside from any grab this view's nested
// outer partner holds so children can claim the touch.
func (sv *ScrollView) simulateTouchDown(t *Touch) bool {
	if sv.content == nil {
		return false
	}
	// The replayed down lands where the touch began, not where it has
	// drifted since.
	curX, curY := t.X, t.Y
	t.X, t.Y = t.OX, t.OY
	var regrab Element
	if n := t.nested; n != nil && n.Outer != nil && t.GrabCurrent() == Element(n.Outer) {
		t.Ungrab(n.Outer)
		regrab = n.Outer
	}
	consumed := sv.content.OnTouchDown(t)
	if regrab != nil && t.GrabCurrent() == nil {
		t.Grab(regrab)
	}
	t.X, t.Y = curX, curY
	return consumed
}

// pendingClick captures what a deferred synthetic up needs: the finished
// touch and the content element that received the simulated down. The grab
// list is read at delivery time, after this view has already ungrabbed.
type pendingClick struct {
	touch   *Touch
	content Element
}

// scheduleSyntheticUp arranges the second half of a click passthrough:
// after the down was re-dispatched, the matching up follows shortly so
// children observe a complete click.
func (sv *ScrollView) scheduleSyntheticUp(t *Touch) {
	if sv.clickEv != nil {
		sv.clickEv.Cancel()
	}
	pc := &pendingClick{touch: t, content: sv.content}
	sv.clickEv = sv.clock.ScheduleOnce(func(time.Duration) {
		sv.clickEv = nil
		pc.deliver()
	}, syntheticUpDelay)
}

func (pc *pendingClick) deliver() {
	t := pc.touch
	if pc.content != nil {
		pc.content.OnTouchUp(t)
	}
	for _, el := range t.GrabList() {
		t.setGrabCurrent(el)
		el.OnTouchUp(t)
		t.Ungrab(el)
	}
	t.setGrabCurrent(nil)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

package flick

import "math"

// ============================================================================
// Nested ScrollView Coordination
// ============================================================================

// Axis identifies a scroll axis.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
)

// NestedMode says which view of a nested pair currently owns the touch.
type NestedMode uint8

const (
	// NestedInner routes gesture processing to the inner view first.
	NestedInner NestedMode = iota
	// NestedOuter means the inner view rejected or delegated the
	// gesture and the outer view owns it.
	NestedOuter
)

// ConfigType classifies how the axes of a nested pair relate.
type ConfigType uint8

const (
	// ConfigOrthogonal: no shared axis. Delegation is decided by which
	// axis dominates the movement.
	ConfigOrthogonal ConfigType = iota
	// ConfigParallel: views share an axis and neither has an exclusive
	// one. Delegation happens at the inner view's boundary.
	ConfigParallel
	// ConfigMixed: a shared axis plus at least one exclusive axis.
	ConfigMixed
)

// DelegationMode is the boundary handoff state machine for parallel and
// mixed configurations. It only ever moves forward: StartAtBoundary
// resolves to Unlocked or Locked on the first committed move, and both
// outcomes hold for the life of the touch.
type DelegationMode uint8

const (
	// DelegationUnlocked: the touch began away from the inner view's
	// boundary. The gesture belongs to the inner view for its whole
	// life and never delegates; the inner overscrolls at its edge.
	DelegationUnlocked DelegationMode = iota
	// DelegationStartAtBoundary: the touch began at a boundary; the
	// first movement decides whether the outer view takes over.
	DelegationStartAtBoundary
	// DelegationLocked: the gesture belongs to the outer view until the
	// touch ends.
	DelegationLocked
)

// boundaryThreshold is the normalized distance from 0 or 1 within which a
// scroll position counts as "at the boundary".
const boundaryThreshold = 0.05

// orthogonalDominance is the ratio by which movement along the outer
// view's exclusive axis must exceed the inner's before an orthogonal pair
// delegates.
const orthogonalDominance = 2.0

// AxisConfig partitions the axes of a nested pair by ownership.
type AxisConfig struct {
	Shared         []Axis
	OuterExclusive []Axis
	InnerExclusive []Axis
}

// NestedContext is the shared coordination record for one touch that went
// down inside a nested ScrollView pair. The views are referenced, not
// owned: the context lives and dies with the touch.
type NestedContext struct {
	Outer *ScrollView
	Inner *ScrollView

	Mode       NestedMode
	Config     ConfigType
	Axes       AxisConfig
	Delegation DelegationMode
}

// classifyNested derives the configuration type and axis partition of a
// nested pair from the enabled axes of each view. Classification happens
// once, at touch down.
func classifyNested(outer, inner *ScrollView) (ConfigType, AxisConfig) {
	var ac AxisConfig
	for _, axis := range []Axis{AxisX, AxisY} {
		o := outer.axisEnabled(axis)
		i := inner.axisEnabled(axis)
		switch {
		case o && i:
			ac.Shared = append(ac.Shared, axis)
		case o:
			ac.OuterExclusive = append(ac.OuterExclusive, axis)
		case i:
			ac.InnerExclusive = append(ac.InnerExclusive, axis)
		}
	}
	switch {
	case len(ac.Shared) == 0:
		return ConfigOrthogonal, ac
	case len(ac.OuterExclusive) == 0 && len(ac.InnerExclusive) == 0:
		return ConfigParallel, ac
	default:
		return ConfigMixed, ac
	}
}

func (sv *ScrollView) axisEnabled(axis Axis) bool {
	if axis == AxisX {
		return sv.doScrollX
	}
	return sv.doScrollY
}

// scrollPos returns the normalized scroll position for axis.
func (sv *ScrollView) scrollPos(axis Axis) float64 {
	if axis == AxisX {
		return sv.scrollX
	}
	return sv.scrollY
}

// atBoundary reports whether the view sits within the boundary threshold
// of either end of axis.
func (sv *ScrollView) atBoundary(axis Axis) bool {
	pos := sv.scrollPos(axis)
	return pos <= boundaryThreshold || pos >= 1.0-boundaryThreshold
}

// scrollingBeyondBoundary reports whether the touch movement pushes axis
// past the boundary the view already sits at. With a top-left origin,
// dragging the finger up (negative dy) at the bottom edge, or down at the
// top edge, is "beyond". Likewise left at the right edge and right at the
// left edge.
func (sv *ScrollView) scrollingBeyondBoundary(axis Axis, t *Touch) bool {
	pos := sv.scrollPos(axis)
	var d float64
	if axis == AxisX {
		d = t.DX
	} else {
		d = t.DY
	}
	if pos >= 1.0-boundaryThreshold && d < 0 {
		return true
	}
	if pos <= boundaryThreshold && d > 0 {
		return true
	}
	return false
}

// setupBoundaryDelegation primes the delegation state machine at touch
// down. Bar touches are a direct manipulation of this view and never
// delegate.
func (sv *ScrollView) setupBoundaryDelegation(t *Touch, inBar bool) {
	n := t.nested
	if n == nil || n.Inner != sv {
		return
	}
	if n.Config == ConfigOrthogonal {
		return
	}
	if inBar {
		n.Delegation = DelegationUnlocked
		return
	}
	for _, axis := range n.Axes.Shared {
		if sv.atBoundary(axis) {
			n.Delegation = DelegationStartAtBoundary
			return
		}
	}
	n.Delegation = DelegationUnlocked
}

// checkNestedDelegation is consulted by the inner view on every move while
// it owns the gesture. A true result hands the touch to the outer view.
func (sv *ScrollView) checkNestedDelegation(t *Touch) bool {
	n := t.nested
	if n == nil || n.Inner != sv || n.Mode != NestedInner {
		return false
	}
	if t.inBarX || t.inBarY {
		return false
	}
	switch n.Config {
	case ConfigOrthogonal:
		return sv.shouldDelegateOrthogonal(t)
	case ConfigParallel:
		return sv.shouldDelegateParallel(t)
	default:
		return sv.shouldDelegateMixed(t)
	}
}

// shouldDelegateOrthogonal delegates when the movement clearly follows the
// outer view's exclusive axis: at least twice the movement of the inner
// view's axis in this event.
func (sv *ScrollView) shouldDelegateOrthogonal(t *Touch) bool {
	n := t.nested
	var outerMove, innerMove float64
	for _, axis := range n.Axes.OuterExclusive {
		outerMove += math.Abs(axisDelta(axis, t))
	}
	for _, axis := range n.Axes.InnerExclusive {
		innerMove += math.Abs(axisDelta(axis, t))
	}
	return outerMove > innerMove*orthogonalDominance
}

// shouldDelegateParallel runs the boundary state machine on the shared
// axes. This also serves mixed pairs when the dominant axis is shared,
// so the parallel-delegation flag is honored here.
func (sv *ScrollView) shouldDelegateParallel(t *Touch) bool {
	n := t.nested
	if n.Outer != nil && !n.Outer.parallelDelegation {
		return false
	}
	switch n.Delegation {
	case DelegationLocked:
		return true
	case DelegationStartAtBoundary:
		// The first committed movement decides: pushing beyond the
		// starting boundary locks the gesture to the outer view,
		// anything else settles the machine into Unlocked.
		for _, axis := range n.Axes.Shared {
			if sv.atBoundary(axis) && sv.scrollingBeyondBoundary(axis, t) {
				n.Delegation = DelegationLocked
				return true
			}
		}
		n.Delegation = DelegationUnlocked
		return false
	default:
		// Unlocked is permanent: a gesture that began mid-content stays
		// with the inner view even after it runs out of room.
		return false
	}
}

// shouldDelegateMixed judges total movement since the touch origin, not
// the per-event delta, so a shaky start cannot flip the decision. Nothing
// is decided before total movement reaches the scroll distance threshold.
func (sv *ScrollView) shouldDelegateMixed(t *Touch) bool {
	n := t.nested
	if n.Delegation == DelegationLocked {
		return true
	}
	totalX := t.X - t.OX
	totalY := t.Y - t.OY
	if math.Abs(totalX) < sv.scrollDistance && math.Abs(totalY) < sv.scrollDistance {
		return false
	}
	dominant := AxisX
	if math.Abs(totalY) > math.Abs(totalX) {
		dominant = AxisY
	}
	// Movement along an axis only the outer view can scroll always
	// delegates.
	for _, axis := range n.Axes.OuterExclusive {
		if axis == dominant {
			return true
		}
	}
	for _, axis := range n.Axes.InnerExclusive {
		if axis == dominant {
			return false
		}
	}
	// Dominant axis is shared: fall back to the boundary machine.
	return sv.shouldDelegateParallel(t)
}

func axisDelta(axis Axis, t *Touch) float64 {
	if axis == AxisX {
		return t.DX
	}
	return t.DY
}

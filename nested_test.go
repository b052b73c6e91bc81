package flick

import (
	"testing"
	"time"
)

// nestedPair builds an outer viewport containing an inner ScrollView at
// {20,20,160,160} with 160x800 content. The outer axes come from outerOpts.
func nestedPair(clock *Clock, outerOpts, innerOpts Options) (outer, inner *ScrollView) {
	outer = NewScrollView(clock, outerOpts)
	outer.SetBounds(Bounds{X: 0, Y: 0, Width: 200, Height: 200})

	inner = NewScrollView(clock, innerOpts)
	inner.SetBounds(Bounds{X: 20, Y: 20, Width: 160, Height: 160})
	inner.SetContent(&recordingContent{bounds: Bounds{X: 20, Y: 20, Width: 160, Height: 800}})

	group := NewGroup(Bounds{X: 0, Y: 0, Width: 400, Height: 1000})
	group.Add(inner)
	outer.SetContent(group)
	return outer, inner
}

func verticalOpts() Options {
	opts := DefaultOptions()
	opts.DoScrollX = false
	return opts
}

func horizontalOpts() Options {
	opts := DefaultOptions()
	opts.DoScrollY = false
	return opts
}

func TestNestedClassification(t *testing.T) {
	clock := NewClock()
	tests := []struct {
		name       string
		outer      Options
		inner      Options
		wantConfig ConfigType
	}{
		{"orthogonal", horizontalOpts(), verticalOpts(), ConfigOrthogonal},
		{"parallel", verticalOpts(), verticalOpts(), ConfigParallel},
		{"mixed", DefaultOptions(), verticalOpts(), ConfigMixed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outer, inner := nestedPair(clock, tt.outer, tt.inner)
			cfg, _ := classifyNested(outer, inner)
			if cfg != tt.wantConfig {
				t.Errorf("config = %v, want %v", cfg, tt.wantConfig)
			}
		})
	}
}

func TestNestedTouchDownBuildsContext(t *testing.T) {
	clock := NewClock()
	outer, inner := nestedPair(clock, verticalOpts(), verticalOpts())
	d := NewDispatcher(outer)

	touch := d.Begin(100, 100)
	n := touch.Nested()
	if n == nil {
		t.Fatal("no nested context for a touch over the inner view")
	}
	if n.Outer != outer || n.Inner != inner {
		t.Error("context references the wrong views")
	}
	if n.Mode != NestedInner {
		t.Errorf("initial mode = %v, want inner", n.Mode)
	}
	if touch.GrabCurrent() != Element(outer) {
		t.Error("outer view does not hold the grab")
	}
	d.End(touch, 100, 100)
}

func TestNestedTouchOutsideInnerIsStandalone(t *testing.T) {
	clock := NewClock()
	outer, _ := nestedPair(clock, verticalOpts(), verticalOpts())
	d := NewDispatcher(outer)

	touch := d.Begin(100, 190) // below the inner view
	if touch.Nested() != nil {
		t.Error("nested context built for a touch outside the inner view")
	}
	clock.Tick(frame)
	d.Move(touch, 100, 150)
	if outer.ScrollY() <= 0 {
		t.Errorf("outer did not scroll standalone: %v", outer.ScrollY())
	}
	d.End(touch, 100, 150)
}

func TestOrthogonalCrossAxisDelegatesToOuter(t *testing.T) {
	clock := NewClock()
	outer, inner := nestedPair(clock, horizontalOpts(), verticalOpts())
	d := NewDispatcher(outer)

	touch := d.Begin(100, 100)
	clock.Tick(frame)
	d.Move(touch, 70, 98) // horizontal: the inner view cannot use this
	clock.Tick(frame)
	d.Move(touch, 40, 96)

	if touch.Nested().Mode != NestedOuter {
		t.Fatal("horizontal drag did not delegate to the outer view")
	}
	if inner.ScrollY() != 0 {
		t.Errorf("inner scrolled on a delegated gesture: %v", inner.ScrollY())
	}
	if outer.ScrollX() <= 0 {
		t.Errorf("outer scrollX = %v, want > 0", outer.ScrollX())
	}
	d.End(touch, 40, 96)
}

func TestOrthogonalOwnAxisScrollsInner(t *testing.T) {
	clock := NewClock()
	outer, inner := nestedPair(clock, horizontalOpts(), verticalOpts())
	d := NewDispatcher(outer)

	touch := d.Begin(100, 150)
	clock.Tick(frame)
	d.Move(touch, 100, 120)
	clock.Tick(frame)
	d.Move(touch, 100, 90)

	if touch.Nested().Mode != NestedInner {
		t.Fatal("vertical drag left the inner view")
	}
	if inner.ScrollY() <= 0 {
		t.Errorf("inner scrollY = %v, want > 0", inner.ScrollY())
	}
	if outer.ScrollX() != 0 {
		t.Errorf("outer moved on the inner's gesture: %v", outer.ScrollX())
	}
	d.End(touch, 100, 90)
}

func TestParallelBoundaryStartLocks(t *testing.T) {
	clock := NewClock()
	outer, inner := nestedPair(clock, verticalOpts(), verticalOpts())
	inner.SetScrollY(1) // start at the bottom boundary
	d := NewDispatcher(outer)

	touch := d.Begin(100, 100)
	if touch.Nested().Delegation != DelegationStartAtBoundary {
		t.Fatalf("delegation = %v at boundary start, want StartAtBoundary", touch.Nested().Delegation)
	}
	clock.Tick(frame)
	d.Move(touch, 100, 75) // crosses the distance threshold
	clock.Tick(frame)
	d.Move(touch, 100, 70) // dragging up at the bottom edge: beyond
	if touch.Nested().Delegation != DelegationLocked {
		t.Fatalf("delegation = %v after beyond-boundary move, want Locked", touch.Nested().Delegation)
	}
	if touch.Nested().Mode != NestedOuter {
		t.Fatal("locked gesture not owned by the outer view")
	}

	innerPos := inner.ScrollY() // nudged past its edge before the lock
	clock.Tick(frame)
	d.Move(touch, 100, 40)
	if outer.ScrollY() <= 0 {
		t.Errorf("outer scrollY = %v, want > 0", outer.ScrollY())
	}
	if inner.ScrollY() > innerPos {
		t.Errorf("inner followed the finger while locked: %v -> %v", innerPos, inner.ScrollY())
	}

	// Locked is terminal: reversing direction keeps the outer view.
	clock.Tick(frame)
	d.Move(touch, 100, 120)
	if touch.Nested().Mode != NestedOuter || touch.Nested().Delegation != DelegationLocked {
		t.Error("delegation lock released mid-gesture")
	}
	d.End(touch, 100, 120)

	// The overscroll picked up before the handoff springs back to the edge.
	for i := 0; i < 120; i++ {
		clock.Tick(frame)
	}
	if inner.ScrollY() != 1 {
		t.Errorf("inner did not settle back to its edge: %v", inner.ScrollY())
	}
}

func TestParallelBoundaryStartReleasesInward(t *testing.T) {
	clock := NewClock()
	outer, inner := nestedPair(clock, verticalOpts(), verticalOpts())
	inner.SetScrollY(1)
	d := NewDispatcher(outer)

	touch := d.Begin(100, 100)
	clock.Tick(frame)
	d.Move(touch, 100, 125) // inward past the threshold: commits to the inner
	clock.Tick(frame)
	d.Move(touch, 100, 130)
	n := touch.Nested()
	if n.Delegation != DelegationUnlocked {
		t.Fatalf("delegation = %v after inward move, want Unlocked", n.Delegation)
	}
	if n.Mode != NestedInner {
		t.Fatal("inward move lost inner ownership")
	}
	clock.Tick(frame)
	d.Move(touch, 100, 160)
	if inner.ScrollY() >= 1 {
		t.Errorf("inner did not scroll back up: %v", inner.ScrollY())
	}
	if outer.ScrollY() != 0 {
		t.Errorf("outer moved: %v", outer.ScrollY())
	}
	d.End(touch, 100, 160)
}

func TestParallelMidContentNeverDelegates(t *testing.T) {
	clock := NewClock()
	outer, inner := nestedPair(clock, verticalOpts(), verticalOpts())
	inner.SetScrollY(0.5)
	d := NewDispatcher(outer)

	touch := d.Begin(100, 100)
	if touch.Nested().Delegation != DelegationUnlocked {
		t.Fatalf("mid-content start: delegation = %v, want Unlocked", touch.Nested().Delegation)
	}

	// Drag upward far past the inner view's remaining room.
	y := 100.0
	for i := 0; i < 60; i++ {
		clock.Tick(10 * time.Millisecond)
		y -= 10
		d.Move(touch, 100, y)
	}

	// The gesture began away from the boundary, so it stays with the
	// inner view for its whole life; the edge overscrolls.
	if touch.Nested().Mode != NestedInner {
		t.Fatal("mid-content gesture delegated to the outer view")
	}
	if touch.Nested().Delegation != DelegationUnlocked {
		t.Errorf("delegation = %v, want Unlocked for the whole gesture", touch.Nested().Delegation)
	}
	if inner.ScrollY() <= 1 {
		t.Errorf("inner scrollY = %v, want overscroll past 1", inner.ScrollY())
	}
	if outer.ScrollY() != 0 {
		t.Errorf("outer moved on a mid-content gesture: %v", outer.ScrollY())
	}
	d.End(touch, 100, y)
}

func TestParallelJitterAtBoundaryStaysTap(t *testing.T) {
	clock := NewClock()
	outer, inner := nestedPair(clock, verticalOpts(), verticalOpts())
	inner.SetScrollY(1)
	var outerStarted, innerStarted bool
	outer.OnScrollStart = func() { outerStarted = true }
	inner.OnScrollStart = func() { innerStarted = true }
	d := NewDispatcher(outer)

	touch := d.Begin(100, 100)
	clock.Tick(10 * time.Millisecond)
	d.Move(touch, 100, 99) // 1px beyond the bottom edge: still a tap

	if outerStarted || innerStarted {
		t.Errorf("scroll started for 1px movement: outer=%v inner=%v", outerStarted, innerStarted)
	}
	if touch.Nested().Mode != NestedInner {
		t.Error("sub-threshold jitter delegated to the outer view")
	}
	if outer.ScrollY() != 0 || inner.ScrollY() != 1 {
		t.Errorf("sub-threshold jitter scrolled: outer=%v inner=%v", outer.ScrollY(), inner.ScrollY())
	}
	d.End(touch, 100, 99)
}

func TestMixedDelegationDisabledSharedAxisStaysInner(t *testing.T) {
	clock := NewClock()
	outerOpts := DefaultOptions()
	outerOpts.ParallelDelegation = false
	outer, inner := nestedPair(clock, outerOpts, verticalOpts())
	inner.SetScrollY(1)
	d := NewDispatcher(outer)

	touch := d.Begin(100, 100)
	clock.Tick(frame)
	d.Move(touch, 100, 75) // shared-axis drag past the threshold, beyond the edge
	clock.Tick(frame)
	d.Move(touch, 100, 50)

	if touch.Nested().Mode != NestedInner {
		t.Fatal("shared-axis boundary delegated with parallel delegation disabled")
	}
	if inner.ScrollY() <= 1 {
		t.Errorf("inner scrollY = %v, want overscroll past 1", inner.ScrollY())
	}
	if outer.ScrollY() != 0 {
		t.Errorf("outer moved: %v", outer.ScrollY())
	}
	d.End(touch, 100, 50)
}

func TestParallelDelegationDisabledOverscrollsInner(t *testing.T) {
	clock := NewClock()
	outerOpts := verticalOpts()
	outerOpts.ParallelDelegation = false
	outer, inner := nestedPair(clock, outerOpts, verticalOpts())
	inner.SetScrollY(1)
	d := NewDispatcher(outer)

	touch := d.Begin(100, 100)
	clock.Tick(frame)
	d.Move(touch, 100, 70)
	clock.Tick(frame)
	d.Move(touch, 100, 40)

	if touch.Nested().Mode != NestedInner {
		t.Fatal("delegation happened with parallel delegation disabled")
	}
	if inner.ScrollY() <= 1 {
		t.Errorf("inner scrollY = %v, want overscroll past 1", inner.ScrollY())
	}
	if outer.ScrollY() != 0 {
		t.Errorf("outer moved: %v", outer.ScrollY())
	}
	d.End(touch, 100, 40)
}

func TestMixedOuterExclusiveAxisDelegates(t *testing.T) {
	clock := NewClock()
	outer, inner := nestedPair(clock, DefaultOptions(), verticalOpts())
	d := NewDispatcher(outer)

	touch := d.Begin(100, 100)
	clock.Tick(frame)
	d.Move(touch, 70, 98) // 30px horizontal, 2px vertical
	if touch.Nested().Mode != NestedOuter {
		t.Fatal("dominant outer-exclusive movement did not delegate")
	}
	clock.Tick(frame)
	d.Move(touch, 40, 96)
	if outer.ScrollX() <= 0 {
		t.Errorf("outer scrollX = %v, want > 0", outer.ScrollX())
	}
	if inner.ScrollY() != 0 {
		t.Errorf("inner moved: %v", inner.ScrollY())
	}
	d.End(touch, 40, 96)
}

func TestMixedSharedAxisStaysInnerMidContent(t *testing.T) {
	clock := NewClock()
	outer, inner := nestedPair(clock, DefaultOptions(), verticalOpts())
	inner.SetScrollY(0.5)
	d := NewDispatcher(outer)

	touch := d.Begin(100, 100)
	clock.Tick(frame)
	d.Move(touch, 98, 70) // 2px horizontal, 30px vertical
	clock.Tick(frame)
	d.Move(touch, 96, 40)

	if touch.Nested().Mode != NestedInner {
		t.Fatal("shared-axis movement mid-content should stay with the inner view")
	}
	if inner.ScrollY() <= 0.5 {
		t.Errorf("inner scrollY = %v, want > 0.5", inner.ScrollY())
	}
	if outer.ScrollX() != 0 || outer.ScrollY() != 0 {
		t.Errorf("outer moved: %v, %v", outer.ScrollX(), outer.ScrollY())
	}
	d.End(touch, 96, 40)
}

func TestMixedUndecidedBelowThreshold(t *testing.T) {
	clock := NewClock()
	outer, inner := nestedPair(clock, DefaultOptions(), verticalOpts())
	d := NewDispatcher(outer)

	touch := d.Begin(100, 100)
	clock.Tick(10 * time.Millisecond)
	d.Move(touch, 92, 95) // total movement below scroll distance
	if touch.Nested().Mode != NestedInner {
		t.Error("delegation decided before the distance threshold")
	}
	if outer.ScrollX() != 0 || inner.ScrollY() != 0 {
		t.Error("movement below threshold scrolled something")
	}
	d.End(touch, 92, 95)
}

func TestNestedWheelRoutesPerEvent(t *testing.T) {
	clock := NewClock()
	outer, inner := nestedPair(clock, horizontalOpts(), verticalOpts())
	d := NewDispatcher(outer)

	// Vertical wheel over the inner view: inner handles it.
	if !d.WheelEvent(100, 100, WheelDown) {
		t.Fatal("vertical wheel not handled")
	}
	if inner.ScrollY() <= 0 {
		t.Errorf("inner scrollY = %v, want > 0", inner.ScrollY())
	}
	if outer.ScrollX() != 0 {
		t.Errorf("outer moved on the inner's wheel: %v", outer.ScrollX())
	}

	// Horizontal wheel over the inner view: the inner cannot scroll X,
	// so the event routes to the outer view.
	if !d.WheelEvent(100, 100, WheelRight) {
		t.Fatal("horizontal wheel not handled")
	}
	if outer.ScrollX() <= 0 {
		t.Errorf("outer scrollX = %v, want > 0", outer.ScrollX())
	}
}

func TestNestedSecondTouchIgnoredWhileActive(t *testing.T) {
	clock := NewClock()
	outer, inner := nestedPair(clock, verticalOpts(), verticalOpts())
	d := NewDispatcher(outer)

	t1 := d.Begin(100, 150)
	clock.Tick(frame)
	d.Move(t1, 100, 110)
	pos := inner.ScrollY()

	t2 := d.Begin(100, 60)
	clock.Tick(frame)
	d.Move(t2, 100, 30)
	if inner.ScrollY() != pos || outer.ScrollY() != 0 {
		t.Error("second touch moved a nested view")
	}
	d.End(t2, 100, 30)
	d.End(t1, 100, 110)
}

func TestNestedUpFinalizesBothViews(t *testing.T) {
	clock := NewClock()
	outer, inner := nestedPair(clock, verticalOpts(), verticalOpts())
	inner.SetScrollY(1)
	var outerStopped bool
	outer.OnScrollStop = func() { outerStopped = true }
	d := NewDispatcher(outer)

	touch := d.Begin(100, 100)
	clock.Tick(frame)
	d.Move(touch, 100, 75) // crosses the threshold
	clock.Tick(frame)
	d.Move(touch, 100, 60) // beyond the bottom edge: locks to outer
	clock.Tick(frame)
	d.Move(touch, 100, 40)
	d.End(touch, 100, 40)

	if touch.GrabCurrent() != nil {
		t.Error("grab not released at up")
	}
	settle(t, clock, &outerStopped)
	if outer.nestedActive != nil {
		t.Error("nested gesture still marked active after up")
	}
}

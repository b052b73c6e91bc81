package flick

import (
	"errors"
	"math"
	"time"
)

// ============================================================================
// Kinetic Effect Core
// ============================================================================

// ErrNoSamples is returned by Effect.Stop when the drag history is empty,
// which happens when a touch ends before any movement was recorded.
// Callers finishing a gesture may ignore it; the effect is left halted.
var ErrNoSamples = errors.New("flick: effect history is empty")

const (
	defaultFriction    = 0.05
	defaultMinDistance = 0.1
	defaultMinVelocity = 0.5
	// Velocity integration is normalized to a reference frame time so
	// friction behaves the same at any tick rate.
	stdFrameTime = 0.017
	// Samples older than this window are discarded when computing the
	// release velocity.
	velocityWindow = 10.0 / 60.0
	maxHistory     = 5

	// Drag resistance divisor while overscrolled: the further past the
	// boundary, the less each pixel of finger travel moves the content.
	overscrollResistance = 200.0
)

type kineticSample struct {
	t   time.Duration
	val float64
}

// Effect integrates one axis of scroll motion: manual drag while a touch
// is down, then friction/spring driven coasting after release. Values are
// content offsets; bounds clamp the resting range and everything outside
// them is overscroll.
type Effect interface {
	// Start begins a manual drag at the pointer coordinate pos.
	Start(pos float64)
	// Update advances a manual drag to pos.
	Update(pos float64)
	// Stop ends the manual drag at pos, computes the release velocity
	// from recent history and begins coasting. Returns ErrNoSamples if
	// nothing was recorded.
	Stop(pos float64) error
	// Cancel stops any pending motion without altering the value.
	Cancel()
	// Halt zeroes velocity and overscroll and cancels pending motion.
	Halt()

	Value() float64
	SetValue(v float64)
	Velocity() float64
	SetVelocity(v float64)
	Overscroll() float64
	SetBounds(min, max float64)
	ValueBounds() (min, max float64)
	IsManual() bool

	// TriggerVelocityUpdate (re)starts the coasting loop on the next
	// clock tick.
	TriggerVelocityUpdate()
	// SetOnScroll registers the observer notified whenever the effect
	// value changes, from any source.
	SetOnScroll(fn func(value float64))
}

// kineticBase carries the state shared by every effect: value, velocity,
// drag history, bounds and the self-rescheduling coasting loop. Concrete
// effects plug in their per-frame step and drag resistance.
type kineticBase struct {
	clock *Clock

	friction    float64
	minDistance float64
	minVelocity float64

	value      float64
	velocity   float64
	overscroll float64
	min, max   float64
	hasBounds  bool

	manual  bool
	history []kineticSample

	onScroll func(float64)
	moveEv   *ClockEvent

	// step advances coasting by dt seconds and reports whether motion
	// continues. applyDrag scales a manual drag distance, typically to
	// resist movement while overscrolled.
	step      func(dt float64) bool
	applyDrag func(distance float64) float64
}

func newKineticBase(clock *Clock) kineticBase {
	return kineticBase{
		clock:       clock,
		friction:    defaultFriction,
		minDistance: defaultMinDistance,
		minVelocity: defaultMinVelocity,
		applyDrag:   func(d float64) float64 { return d },
	}
}

func (k *kineticBase) Value() float64      { return k.value }
func (k *kineticBase) Velocity() float64   { return k.velocity }
func (k *kineticBase) Overscroll() float64 { return k.overscroll }
func (k *kineticBase) IsManual() bool      { return k.manual }

func (k *kineticBase) SetVelocity(v float64) { k.velocity = v }

func (k *kineticBase) SetValue(v float64) {
	k.value = v
	k.valueChanged()
}

// SetBounds sets the resting range. A min greater than max is normalized
// by swapping, so callers may pass bounds in either order.
func (k *kineticBase) SetBounds(min, max float64) {
	if min > max {
		min, max = max, min
	}
	k.min = min
	k.max = max
	k.hasBounds = true
	k.refreshOverscroll()
}

func (k *kineticBase) SetOnScroll(fn func(float64)) {
	k.onScroll = fn
}

// ValueBounds returns the normalized resting range.
func (k *kineticBase) ValueBounds() (float64, float64) {
	return k.min, k.max
}

func (k *kineticBase) refreshOverscroll() {
	if !k.hasBounds {
		k.overscroll = 0
		return
	}
	switch {
	case k.value < k.min:
		k.overscroll = k.value - k.min
	case k.value > k.max:
		k.overscroll = k.value - k.max
	default:
		k.overscroll = 0
	}
}

func (k *kineticBase) valueChanged() {
	k.refreshOverscroll()
	if k.onScroll != nil {
		k.onScroll(k.value)
	}
}

// nearestBoundary returns the bound closest to the current value.
func (k *kineticBase) nearestBoundary() float64 {
	if math.Abs(k.value-k.min) < math.Abs(k.value-k.max) {
		return k.min
	}
	return k.max
}

func (k *kineticBase) record(pos float64) {
	k.history = append(k.history, kineticSample{t: k.clock.Now(), val: pos})
	if len(k.history) > maxHistory {
		k.history = k.history[len(k.history)-maxHistory:]
	}
}

// Start begins a manual drag at pos.
func (k *kineticBase) Start(pos float64) {
	k.manual = true
	k.velocity = 0
	if k.moveEv != nil {
		k.moveEv.Cancel()
		k.moveEv = nil
	}
	k.history = k.history[:0]
	k.record(pos)
}

// Update advances a manual drag to pos, applying the distance travelled
// since the last sample. An Update with no prior Start self-heals into one.
func (k *kineticBase) Update(pos float64) {
	if !k.manual || len(k.history) == 0 {
		k.Start(pos)
		return
	}
	last := k.history[len(k.history)-1]
	k.applyDistance(pos - last.val)
	k.record(pos)
}

// Stop ends a manual drag and derives the release velocity from samples
// within the velocity window.
func (k *kineticBase) Stop(pos float64) error {
	k.manual = false
	if len(k.history) == 0 {
		return ErrNoSamples
	}
	last := k.history[len(k.history)-1]
	k.applyDistance(pos - last.val)

	newest := k.clock.Now()
	oldest := k.history[0]
	for _, s := range k.history {
		if (newest - s.t).Seconds() <= velocityWindow {
			oldest = s
			break
		}
	}
	dt := (newest - oldest.t).Seconds()
	if dt > 0 {
		k.velocity = (pos - oldest.val) / dt
	} else {
		k.velocity = 0
	}
	k.history = k.history[:0]
	k.TriggerVelocityUpdate()
	return nil
}

// Cancel stops pending motion without touching value or velocity. The
// drag history is discarded so a later Stop cannot replay stale samples.
func (k *kineticBase) Cancel() {
	k.manual = false
	k.history = k.history[:0]
	if k.moveEv != nil {
		k.moveEv.Cancel()
		k.moveEv = nil
	}
}

// Halt brings the effect to a dead stop at its current value.
func (k *kineticBase) Halt() {
	k.velocity = 0
	k.overscroll = 0
	k.Cancel()
}

func (k *kineticBase) applyDistance(distance float64) {
	distance = k.applyDrag(distance)
	if math.Abs(distance) < k.minDistance {
		k.velocity = 0
	}
	k.value += distance
	k.valueChanged()
}

// TriggerVelocityUpdate (re)arms the coasting loop. Safe to call while the
// loop is already running; the pending step is replaced.
func (k *kineticBase) TriggerVelocityUpdate() {
	if k.moveEv != nil {
		k.moveEv.Cancel()
	}
	k.moveEv = k.clock.ScheduleOnce(k.velocityTick, 0)
}

func (k *kineticBase) velocityTick(dt time.Duration) {
	if k.manual {
		return
	}
	if k.step(dt.Seconds()) {
		k.moveEv = k.clock.ScheduleOnce(k.velocityTick, 0)
	} else {
		k.moveEv = nil
	}
}

// frictionDecay applies exponential friction normalized to the reference
// frame time.
func (k *kineticBase) frictionDecay(dt float64) float64 {
	return k.velocity * k.friction * dt / stdFrameTime
}

// ============================================================================
// Damped Scroll Effect
// ============================================================================

// DampedScrollEffect coasts with friction inside the bounds and, once past
// a boundary, layers edge damping and a linear spring restoring force on
// top. This is the default effect for content scrolling.
type DampedScrollEffect struct {
	kineticBase

	// EdgeDamping scales the extra velocity bleed applied while
	// overscrolled.
	EdgeDamping float64
	// SpringConstant scales the restoring pull toward the boundary.
	SpringConstant float64
	// MinOverscroll is the settle threshold: smaller overscroll snaps
	// straight to the boundary.
	MinOverscroll float64
}

// NewDampedScrollEffect returns a damped effect driven by clock.
func NewDampedScrollEffect(clock *Clock) *DampedScrollEffect {
	e := &DampedScrollEffect{
		kineticBase:    newKineticBase(clock),
		EdgeDamping:    0.25,
		SpringConstant: 2.0,
		MinOverscroll:  0.5,
	}
	e.step = e.stepCoast
	e.applyDrag = e.dragResistance
	return e
}

func (e *DampedScrollEffect) dragResistance(distance float64) float64 {
	os := math.Abs(e.overscroll)
	if os > e.MinOverscroll {
		distance /= 1.0 + os/overscrollResistance
	}
	return distance
}

func (e *DampedScrollEffect) stepCoast(dt float64) bool {
	if math.Abs(e.velocity) <= e.minVelocity && e.overscroll == 0 {
		e.velocity = 0
		return false
	}
	total := e.frictionDecay(dt)
	os := math.Abs(e.overscroll)
	if os > e.MinOverscroll {
		total += e.velocity * e.EdgeDamping
		total += e.overscroll * e.SpringConstant
	} else if e.overscroll != 0 {
		// Close enough: land exactly on the boundary. Residual velocity
		// at this range would only bleed back into the interior, so
		// motion ends here.
		e.SetValue(e.nearestBoundary())
		e.velocity = 0
		return false
	}
	e.velocity -= total

	returning := e.overscroll
	e.applyDistance(e.velocity * dt)
	// The spring return must terminate at the boundary, never swing
	// through into the opposite overscroll.
	if returning > 0 && e.value <= e.max {
		e.SetValue(e.max)
		e.velocity = 0
		return false
	}
	if returning < 0 && e.value >= e.min {
		e.SetValue(e.min)
		e.velocity = 0
		return false
	}
	return true
}

// ============================================================================
// Rubber Band Scroll Effect
// ============================================================================

// RubberBandScrollEffect replaces the linear spring with a critically
// damped one: damping coefficient 2*sqrt(stiffness*mass), so the return
// from overscroll approaches the boundary asymptotically and by
// construction never overshoots.
type RubberBandScrollEffect struct {
	kineticBase

	// RubberBandCoeff scales manual drag distance while overscrolled.
	RubberBandCoeff float64
	// SpringStiffness and SpringMass parameterize the return spring.
	SpringStiffness float64
	SpringMass      float64
	// MinOverscroll is the settle threshold.
	MinOverscroll float64
}

// NewRubberBandScrollEffect returns a critically damped effect driven by
// clock.
func NewRubberBandScrollEffect(clock *Clock) *RubberBandScrollEffect {
	e := &RubberBandScrollEffect{
		kineticBase:     newKineticBase(clock),
		RubberBandCoeff: 0.55,
		SpringStiffness: 100.0,
		SpringMass:      1.0,
		MinOverscroll:   0.5,
	}
	e.step = e.stepCoast
	e.applyDrag = e.dragResistance
	return e
}

func (e *RubberBandScrollEffect) criticalDamping() float64 {
	return 2.0 * math.Sqrt(e.SpringStiffness*e.SpringMass)
}

func (e *RubberBandScrollEffect) dragResistance(distance float64) float64 {
	os := math.Abs(e.overscroll)
	if os > e.MinOverscroll {
		distance *= e.RubberBandCoeff / (1.0 + os/overscrollResistance)
	}
	return distance
}

func (e *RubberBandScrollEffect) stepCoast(dt float64) bool {
	if math.Abs(e.velocity) <= e.minVelocity && e.overscroll == 0 {
		e.velocity = 0
		return false
	}
	e.velocity -= e.frictionDecay(dt)
	os := math.Abs(e.overscroll)
	if os > e.MinOverscroll {
		accel := (-e.SpringStiffness*e.overscroll - e.criticalDamping()*e.velocity) / e.SpringMass
		e.velocity += accel * dt
	} else if e.overscroll != 0 {
		// The spring brought us within the settle threshold. A
		// critically damped return carries no energy through the
		// boundary, so the residual velocity dies here too.
		e.SetValue(e.nearestBoundary())
		e.velocity = 0
		return false
	}

	returning := e.overscroll
	e.applyDistance(e.velocity * dt)
	// Discrete integration of the critically damped spring can still
	// step across the boundary; pin it there to preserve the
	// no-overshoot guarantee.
	if returning > 0 && e.value <= e.max {
		e.SetValue(e.max)
		e.velocity = 0
		return false
	}
	if returning < 0 && e.value >= e.min {
		e.SetValue(e.min)
		e.velocity = 0
		return false
	}
	return true
}

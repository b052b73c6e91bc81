package flick

import "time"

// ============================================================================
// Clock - Frame-Driven Scheduler
// ============================================================================

// ClockCallback runs when a scheduled event fires. dt is the time elapsed
// since the event was scheduled (or since its previous firing, for
// interval events).
type ClockCallback func(dt time.Duration)

// ClockEvent is a handle to a scheduled callback. Cancel may be called at
// any time, including from inside a callback.
type ClockEvent struct {
	callback  ClockCallback
	due       time.Duration
	last      time.Duration
	interval  time.Duration
	repeating bool
	cancelled bool
}

// Cancel prevents any future firing of the event. Cancelling an already
// fired or cancelled event is a no-op.
func (e *ClockEvent) Cancel() {
	if e != nil {
		e.cancelled = true
	}
}

// Cancelled reports whether the event has been cancelled.
func (e *ClockEvent) Cancelled() bool {
	return e == nil || e.cancelled
}

// Clock is a cooperative scheduler driven by the host's frame loop. It is
// not safe for concurrent use; all scheduling and ticking must happen on
// the same goroutine that delivers input events.
type Clock struct {
	now    time.Duration
	frames uint64
	events []*ClockEvent
	queued []*ClockEvent // scheduled during Tick, armed for the next frame
	inTick bool
}

// NewClock returns a clock at time zero with no scheduled events.
func NewClock() *Clock {
	return &Clock{}
}

// Now returns the accumulated synthetic time.
func (c *Clock) Now() time.Duration {
	return c.now
}

// Frames returns the number of completed ticks.
func (c *Clock) Frames() uint64 {
	return c.frames
}

// ScheduleOnce arranges for fn to run once after delay. A negative delay
// fires on the next tick.
func (c *Clock) ScheduleOnce(fn ClockCallback, delay time.Duration) *ClockEvent {
	if delay < 0 {
		delay = 0
	}
	ev := &ClockEvent{
		callback: fn,
		due:      c.now + delay,
		last:     c.now,
	}
	c.add(ev)
	return ev
}

// ScheduleInterval arranges for fn to run every period until cancelled.
// A non-positive period fires on every tick.
func (c *Clock) ScheduleInterval(fn ClockCallback, period time.Duration) *ClockEvent {
	if period < 0 {
		period = 0
	}
	ev := &ClockEvent{
		callback:  fn,
		due:       c.now + period,
		last:      c.now,
		interval:  period,
		repeating: true,
	}
	c.add(ev)
	return ev
}

func (c *Clock) add(ev *ClockEvent) {
	if c.inTick {
		// Events scheduled from inside a callback must not fire within
		// the same tick, even with a zero delay.
		c.queued = append(c.queued, ev)
		return
	}
	c.events = append(c.events, ev)
}

// Tick advances the clock by dt and fires every due event. Events that a
// callback schedules during the tick are deferred to the following tick.
func (c *Clock) Tick(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	c.now += dt
	c.frames++

	c.inTick = true
	kept := c.events[:0]
	for _, ev := range c.events {
		if ev.cancelled {
			continue
		}
		if ev.due > c.now {
			kept = append(kept, ev)
			continue
		}
		elapsed := c.now - ev.last
		ev.last = c.now
		ev.callback(elapsed)
		if ev.repeating && !ev.cancelled {
			ev.due = c.now + ev.interval
			kept = append(kept, ev)
		}
	}
	c.events = kept
	c.inTick = false

	if len(c.queued) > 0 {
		c.events = append(c.events, c.queued...)
		c.queued = c.queued[:0]
	}
}

package flick

import (
	"testing"
	"time"
)

func TestClockScheduleOnce(t *testing.T) {
	c := NewClock()
	var fired int
	var gotDT time.Duration
	c.ScheduleOnce(func(dt time.Duration) {
		fired++
		gotDT = dt
	}, 50*time.Millisecond)

	c.Tick(20 * time.Millisecond)
	if fired != 0 {
		t.Fatalf("event fired before due: %d", fired)
	}
	c.Tick(40 * time.Millisecond)
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
	if gotDT != 60*time.Millisecond {
		t.Errorf("dt = %v, want 60ms", gotDT)
	}
	c.Tick(100 * time.Millisecond)
	if fired != 1 {
		t.Errorf("one-shot fired again: %d", fired)
	}
}

func TestClockCancel(t *testing.T) {
	c := NewClock()
	var fired int
	ev := c.ScheduleOnce(func(time.Duration) { fired++ }, 10*time.Millisecond)
	ev.Cancel()
	c.Tick(50 * time.Millisecond)
	if fired != 0 {
		t.Fatalf("cancelled event fired %d times", fired)
	}
	if !ev.Cancelled() {
		t.Error("Cancelled() = false after Cancel")
	}
}

func TestClockInterval(t *testing.T) {
	c := NewClock()
	var fired int
	ev := c.ScheduleInterval(func(time.Duration) { fired++ }, 30*time.Millisecond)

	c.Tick(30 * time.Millisecond)
	c.Tick(30 * time.Millisecond)
	c.Tick(30 * time.Millisecond)
	if fired != 3 {
		t.Fatalf("fired = %d, want 3", fired)
	}
	ev.Cancel()
	c.Tick(30 * time.Millisecond)
	if fired != 3 {
		t.Errorf("interval fired after cancel: %d", fired)
	}
}

func TestClockZeroIntervalFiresEveryTick(t *testing.T) {
	c := NewClock()
	var fired int
	c.ScheduleInterval(func(time.Duration) { fired++ }, 0)
	for i := 0; i < 5; i++ {
		c.Tick(16 * time.Millisecond)
	}
	if fired != 5 {
		t.Fatalf("fired = %d, want 5", fired)
	}
}

func TestClockScheduleDuringTickDefers(t *testing.T) {
	c := NewClock()
	var inner int
	c.ScheduleOnce(func(time.Duration) {
		c.ScheduleOnce(func(time.Duration) { inner++ }, 0)
	}, 0)

	c.Tick(16 * time.Millisecond)
	if inner != 0 {
		t.Fatal("nested event fired within the same tick")
	}
	c.Tick(16 * time.Millisecond)
	if inner != 1 {
		t.Fatalf("inner = %d, want 1", inner)
	}
}

func TestClockCancelFromCallback(t *testing.T) {
	c := NewClock()
	var fired int
	var ev *ClockEvent
	ev = c.ScheduleInterval(func(time.Duration) {
		fired++
		ev.Cancel()
	}, 0)
	c.Tick(16 * time.Millisecond)
	c.Tick(16 * time.Millisecond)
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
}

func TestClockFramesAndNow(t *testing.T) {
	c := NewClock()
	c.Tick(10 * time.Millisecond)
	c.Tick(15 * time.Millisecond)
	if c.Frames() != 2 {
		t.Errorf("Frames() = %d, want 2", c.Frames())
	}
	if c.Now() != 25*time.Millisecond {
		t.Errorf("Now() = %v, want 25ms", c.Now())
	}
}

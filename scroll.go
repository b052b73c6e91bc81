package flick

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ============================================================================
// Animated Scrolling
// ============================================================================

// defaultScrollToDuration is used when ScrollToPosition gets a
// non-positive duration.
const defaultScrollToDuration = 200 * time.Millisecond

type scrollTween struct {
	x *gween.Tween
	y *gween.Tween
}

// ScrollToPosition animates the normalized scroll position to (x, y) over
// d. Any coasting or overscroll motion is halted first; a nil easing
// selects ease.OutQuad. Starting a touch gesture cancels the animation.
func (sv *ScrollView) ScrollToPosition(x, y float64, d time.Duration, easing ease.TweenFunc) {
	if easing == nil {
		easing = ease.OutQuad
	}
	if d <= 0 {
		d = defaultScrollToDuration
	}
	if sv.effectX != nil {
		sv.effectX.Halt()
	}
	if sv.effectY != nil {
		sv.effectY.Halt()
	}
	tw := &scrollTween{}
	dur := float32(d.Seconds())
	if sv.doScrollX {
		tw.x = gween.New(float32(sv.scrollX), float32(clamp01(x)), dur, easing)
	}
	if sv.doScrollY {
		tw.y = gween.New(float32(sv.scrollY), float32(clamp01(y)), dur, easing)
	}
	sv.tween = tw
	if sv.tweenEv != nil {
		sv.tweenEv.Cancel()
	}
	sv.tweenEv = sv.clock.ScheduleInterval(sv.stepScrollTween, 0)
}

// ScrollToElement animates just far enough that el's bounds sit inside
// the viewport with the given padding. Element bounds are read as
// currently laid out; axes that cannot scroll are left alone.
func (sv *ScrollView) ScrollToElement(el Element, padding float64, d time.Duration, easing ease.TweenFunc) {
	if el == nil {
		return
	}
	b := el.Bounds()
	tx, ty := sv.scrollX, sv.scrollY
	if maxS := sv.maxScrollX(); maxS > 0 && sv.doScrollX {
		if b.X < sv.bounds.X+padding {
			tx -= (sv.bounds.X + padding - b.X) / maxS
		} else if b.Right() > sv.bounds.Right()-padding {
			tx += (b.Right() - (sv.bounds.Right() - padding)) / maxS
		}
	}
	if maxS := sv.maxScrollY(); maxS > 0 && sv.doScrollY {
		if b.Y < sv.bounds.Y+padding {
			ty -= (sv.bounds.Y + padding - b.Y) / maxS
		} else if b.Bottom() > sv.bounds.Bottom()-padding {
			ty += (b.Bottom() - (sv.bounds.Bottom() - padding)) / maxS
		}
	}
	sv.ScrollToPosition(clamp01(tx), clamp01(ty), d, easing)
}

func (sv *ScrollView) stepScrollTween(dt time.Duration) {
	tw := sv.tween
	if tw == nil {
		sv.cancelScrollTween()
		return
	}
	step := float32(dt.Seconds())
	done := true
	if tw.x != nil {
		v, finished := tw.x.Update(step)
		sv.setScrollX(float64(v))
		if !finished {
			done = false
		}
	}
	if tw.y != nil {
		v, finished := tw.y.Update(step)
		sv.setScrollY(float64(v))
		if !finished {
			done = false
		}
	}
	if done {
		sv.cancelScrollTween()
		sv.updateEffectBounds()
		sv.startStopDetection()
	}
}

func (sv *ScrollView) cancelScrollTween() {
	if sv.tweenEv != nil {
		sv.tweenEv.Cancel()
		sv.tweenEv = nil
	}
	sv.tween = nil
}

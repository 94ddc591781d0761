package fade

// HalfLife is the duration in ms of one half of a crossfade (out or in).
const HalfLife = 500

// Timer is the signed crossfade counter shared by light layers and audio.
//
//	ms > 0  fading out toward the swap point
//	ms == 0 idle
//	ms < 0  fading back in after the swap
type Timer struct {
	ms int
}

// MS returns the raw counter.
func (t *Timer) MS() int { return t.ms }

// Active reports whether a fade is in progress.
func (t *Timer) Active() bool { return t.ms != 0 }

// FadingOut reports whether the timer is counting down to a swap.
func (t *Timer) FadingOut() bool { return t.ms > 0 }

// Retrigger starts a fade-out unless one is already running. A fade-in in
// progress is turned around from max(1, HalfLife+ms), so retriggering late in
// a fade-in gives a shorter fade-out.
func (t *Timer) Retrigger() {
	if t.ms > 0 {
		return
	}
	t.ms = max(1, HalfLife+t.ms)
}

// FadeIn puts the timer at the start of a fade-in.
func (t *Timer) FadeIn() { t.ms = -HalfLife }

// Reset makes the timer idle.
func (t *Timer) Reset() { t.ms = 0 }

// Advance moves the timer by dt ms. It returns true on the tick the fade-out
// reaches zero; the caller swaps its content and the timer continues as a
// fade-in from -HalfLife.
func (t *Timer) Advance(dt int) (swap bool) {
	dt = ClampDT(dt)
	switch {
	case t.ms > 0:
		t.ms = max(0, t.ms-dt)
		if t.ms == 0 {
			t.ms = -HalfLife
			return true
		}
	case t.ms < 0:
		t.ms = min(0, t.ms+dt)
	}
	return false
}

// Level maps the counter to a 0..1 intensity: timer/HalfLife while fading
// out, 1+timer/HalfLife while fading in, 1 when idle. On the swap tick the
// counter is already -HalfLife, so Level returns 0.
func (t *Timer) Level() float64 {
	if t.ms > 0 {
		return float64(t.ms) / HalfLife
	}
	return 1 + float64(t.ms)/HalfLife
}

// ClampDT clamps negative elapsed time to zero.
func ClampDT(dt int) int {
	if dt < 0 {
		return 0
	}
	return dt
}

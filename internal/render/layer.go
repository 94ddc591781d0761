package render

import (
	"fmt"

	"github.com/coreman2200/funtimes-qotd/internal/fade"
)

const noProgram = -1

// Layer is one animated light program with its own crossfade timer and
// per-pixel phase clocks. A program swap flashes the layer to white and back
// so the jump between programs is never visible.
type Layer struct {
	reg *Registry

	current int
	pending int
	timer   fade.Timer

	phase      []int
	brightness float64
	swaps      int
}

func newLayer(reg *Registry, pixels int) *Layer {
	return &Layer{
		reg:        reg,
		current:    noProgram,
		pending:    noProgram,
		phase:      make([]int, pixels),
		brightness: 1,
	}
}

// TransitionTo requests program id. The first request assigns immediately;
// repeating the current program is a no-op; anything else becomes the
// pending program and starts (or keeps) a fade-out. A new target issued
// mid-fade replaces the pending one.
func (l *Layer) TransitionTo(id int) error {
	if _, ok := l.reg.Get(id); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownProgram, id)
	}
	if l.current == noProgram {
		l.swapTo(id)
		return nil
	}
	if id == l.current {
		return nil
	}
	l.pending = id
	l.timer.Retrigger()
	return nil
}

// Update advances the phase clocks and the crossfade by dt ms.
func (l *Layer) Update(dt int) {
	dt = fade.ClampDT(dt)
	if l.current == noProgram {
		return
	}
	prog, _ := l.reg.Get(l.current)
	for i := range l.phase {
		l.phase[i] = wrap(l.phase[i]+dt, prog.CycleMS)
	}
	if l.timer.Active() {
		if l.timer.Advance(dt) {
			l.swapTo(l.pending)
		}
		l.brightness = l.timer.Level()
	}
}

// Render writes the layer's colors, white-blended by brightness, into dst.
func (l *Layer) Render(dst []Color) {
	prog, ok := l.reg.Get(l.current)
	if !ok {
		return
	}
	for i := range dst {
		dst[i] = prog.Sample(l.phase[i])
	}
	Whiten(dst, l.brightness)
}

func (l *Layer) swapTo(id int) {
	prog, _ := l.reg.Get(id)
	l.current = id
	l.pending = noProgram
	for i := range l.phase {
		l.phase[i] = prog.Seed(i)
	}
	l.swaps++
}

// Program returns the active program id.
func (l *Layer) Program() (int, bool) { return l.current, l.current != noProgram }

// Pending returns the program waiting for the fade-out to finish.
func (l *Layer) Pending() (int, bool) { return l.pending, l.pending != noProgram }

func (l *Layer) Brightness() float64 { return l.brightness }

func (l *Layer) Fading() bool { return l.timer.Active() }

// TimerMS exposes the signed crossfade counter.
func (l *Layer) TimerMS() int { return l.timer.MS() }

// Phase returns pixel i's position in the current cycle.
func (l *Layer) Phase(i int) int { return l.phase[i] }

// Swaps counts program assignments, including the first.
func (l *Layer) Swaps() int { return l.swaps }

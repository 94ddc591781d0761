package render

import (
	"errors"
	"fmt"

	"github.com/coreman2200/funtimes-qotd/internal/fade"
)

// Layer indices. The installation has exactly two light groups.
const (
	Background = iota
	Foreground
	layerCount
)

// ErrNotReady is returned by Update before both layers have a program.
var ErrNotReady = errors.New("engine: layers have no program yet")

// Engine owns the two light layers and the activation field. Each Update
// renders both layers, blends them by activation and writes one frame to the
// driver.
type Engine struct {
	reg *Registry
	drv Driver

	layers [layerCount]*Layer
	act    *Activation

	// framebuffers
	bufs [layerCount][]Color
	mix  []Color
	out  []Pixel

	post Limiter

	frames uint64
}

// NewEngine allocates buffers for pixels LEDs. drv may be nil for headless use.
func NewEngine(reg *Registry, pixels int, drv Driver) (*Engine, error) {
	if reg == nil || reg.Len() == 0 {
		return nil, errors.New("engine: no programs registered")
	}
	if pixels <= 0 {
		return nil, fmt.Errorf("engine: invalid pixel count %d", pixels)
	}
	e := &Engine{
		reg: reg,
		drv: drv,
		act: NewActivation(pixels),
		mix: make([]Color, pixels),
		out: make([]Pixel, pixels),
	}
	for k := range e.layers {
		e.layers[k] = newLayer(reg, pixels)
		e.bufs[k] = make([]Color, pixels)
	}
	return e, nil
}

// TransitionTo requests a (background, foreground) program pair. Both ids
// are checked before either layer changes.
func (e *Engine) TransitionTo(bg, fg int) error {
	ids := [layerCount]int{Background: bg, Foreground: fg}
	for _, id := range ids {
		if _, ok := e.reg.Get(id); !ok {
			return fmt.Errorf("%w: %d", ErrUnknownProgram, id)
		}
	}
	for k, id := range ids {
		if err := e.layers[k].TransitionTo(id); err != nil {
			return err
		}
	}
	return nil
}

// Ready reports whether every layer has a program.
func (e *Engine) Ready() bool {
	for _, l := range e.layers {
		if _, ok := l.Program(); !ok {
			return false
		}
	}
	return true
}

// Update advances the engine by dt ms toward the given activation targets
// and writes the resulting frame.
func (e *Engine) Update(dt int, targets []bool) error {
	if !e.Ready() {
		return ErrNotReady
	}
	if len(targets) != e.act.Len() {
		return fmt.Errorf("engine: %d activation targets for %d pixels", len(targets), e.act.Len())
	}
	dt = fade.ClampDT(dt)

	for _, l := range e.layers {
		l.Update(dt)
	}
	if err := e.act.Update(dt, targets); err != nil {
		return err
	}

	for k, l := range e.layers {
		l.Render(e.bufs[k])
	}
	Blend(e.mix, e.bufs[Background], e.bufs[Foreground], e.act.Weights())
	if e.post.Enabled() {
		e.post.Apply(e.mix)
	}
	Quantize(e.out, e.mix)
	e.frames++

	if e.drv != nil {
		if err := e.drv.Write(e.out); err != nil {
			return fmt.Errorf("engine: write frame %d: %w", e.frames, err)
		}
	}
	return nil
}

// Blank writes an all-black frame, used to clear the strip on exit.
func (e *Engine) Blank() error {
	if e.drv == nil {
		return nil
	}
	return e.drv.Write(make([]Pixel, len(e.out)))
}

// SetPost installs the power limiter stage.
func (e *Engine) SetPost(l Limiter) { e.post = l }

// Layer returns layer k (Background or Foreground).
func (e *Engine) Layer(k int) *Layer { return e.layers[k] }

// Layers returns all layers in blend order.
func (e *Engine) Layers() []*Layer { return e.layers[:] }

func (e *Engine) Activation() *Activation { return e.act }

// Frame is the last rendered frame. It is reused on the next Update.
func (e *Engine) Frame() []Pixel { return e.out }

func (e *Engine) Frames() uint64 { return e.frames }

func (e *Engine) Pixels() int { return len(e.out) }

package render

import (
	"fmt"

	"github.com/coreman2200/funtimes-qotd/internal/fade"
)

// RampMS is the time a pixel's activation takes to travel fully 0->1 or 1->0.
const RampMS = 500

// Activation is the per-pixel blend weight between the background and
// foreground layers, ramped linearly toward boolean occupancy targets.
type Activation struct {
	value []float64
}

func NewActivation(pixels int) *Activation {
	return &Activation{value: make([]float64, pixels)}
}

// Update ramps every pixel toward its target. targets must have one entry
// per pixel; on mismatch nothing changes.
func (a *Activation) Update(dt int, targets []bool) error {
	if len(targets) != len(a.value) {
		return fmt.Errorf("activation targets: got %d, want %d", len(targets), len(a.value))
	}
	step := float64(fade.ClampDT(dt)) / RampMS
	for i, on := range targets {
		v := a.value[i]
		if on {
			v += step
		} else {
			v -= step
		}
		a.value[i] = clamp01(v)
	}
	return nil
}

func (a *Activation) Value(i int) float64 { return a.value[i] }

func (a *Activation) Len() int { return len(a.value) }

// Weights is the live weight slice, read-only for callers.
func (a *Activation) Weights() []float64 { return a.value }

package tests

import "github.com/coreman2200/funtimes-qotd/internal/render"

// Kind names a strip test pattern.
type Kind string

const (
	None       Kind = ""
	IndexSweep Kind = "index_sweep"
	RGBTest    Kind = "rgb_channels"
	SeatGroups Kind = "seat_groups"
)

// DefaultHoldMS is how long each step of a pattern stays lit.
const DefaultHoldMS = 100

func Valid(k Kind) bool {
	switch k {
	case IndexSweep, RGBTest, SeatGroups:
		return true
	}
	return false
}

type Plan struct {
	Kind   Kind
	HoldMS int
	// Groups lists the pixels of each seat for SeatGroups.
	Groups [][]int
}

// Runner steps through one installation test pattern. It replaces the show
// output while it runs.
type Runner struct {
	plan    Plan
	elapsed int
}

func NewRunner(plan Plan) *Runner {
	if plan.HoldMS <= 0 {
		plan.HoldMS = DefaultHoldMS
	}
	return &Runner{plan: plan}
}

func (r *Runner) Kind() Kind { return r.plan.Kind }

// Step advances by dt ms and fills frame; returns false when complete.
func (r *Runner) Step(dt int, frame []render.Pixel) bool {
	if dt > 0 {
		r.elapsed += dt
	}
	step := r.elapsed / r.plan.HoldMS
	n := len(frame)
	for i := range frame {
		frame[i] = render.Pixel{}
	}

	switch r.plan.Kind {
	case IndexSweep:
		if step >= n {
			return false
		}
		frame[step] = render.Pixel{R: 255, G: 255, B: 255}
	case RGBTest:
		if step >= 3 {
			return false
		}
		p := render.Pixel{}
		switch step {
		case 0:
			p.R = 255
		case 1:
			p.G = 255
		case 2:
			p.B = 255
		}
		for i := range frame {
			frame[i] = p
		}
	case SeatGroups:
		if step >= len(r.plan.Groups) {
			return false
		}
		for _, px := range r.plan.Groups[step] {
			if px >= 0 && px < n {
				frame[px] = render.Pixel{G: 255, B: 255} // cyan
			}
		}
	default:
		return false
	}
	return true
}

package render

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidProgram is returned when a Program fails registration checks.
	ErrInvalidProgram = errors.New("invalid program")
	// ErrUnknownProgram is returned for ids that were never registered.
	ErrUnknownProgram = errors.New("unknown program")
)

// Color is a linear RGB value on the 0..255 scale. Intermediate results may
// leave that range; quantization clamps.
type Color struct{ R, G, B float64 }

// White is the color layers flash through during a program swap.
var White = Color{R: 255, G: 255, B: 255}

// Pixel is one quantized strip pixel.
type Pixel struct{ R, G, B uint8 }

// Driver is the pixel-strip output sink.
type Driver interface {
	Write(frame []Pixel) error
}

// Registry holds the static set of color programs, addressed by index.
type Registry struct{ programs []Program }

// NewRegistry validates and registers programs in order; program i gets id i.
func NewRegistry(programs ...Program) (*Registry, error) {
	r := &Registry{}
	for _, p := range programs {
		if _, err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register validates p and returns its id.
func (r *Registry) Register(p Program) (int, error) {
	if err := p.Validate(); err != nil {
		return -1, fmt.Errorf("program %d: %w", len(r.programs), err)
	}
	// palettes are copied so callers cannot mutate a registered program
	p.Palette = append([]Color(nil), p.Palette...)
	r.programs = append(r.programs, p)
	return len(r.programs) - 1, nil
}

func (r *Registry) Get(id int) (Program, bool) {
	if r == nil || id < 0 || id >= len(r.programs) {
		return Program{}, false
	}
	return r.programs[id], true
}

func (r *Registry) Len() int { return len(r.programs) }

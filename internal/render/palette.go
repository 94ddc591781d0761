package render

import "fmt"

// Program is an animated color cycle: the palette is swept once every
// CycleMS, and pixel i starts i*OffsetMS into the cycle.
type Program struct {
	Name     string
	Palette  []Color
	CycleMS  int
	OffsetMS int
}

func (p Program) Validate() error {
	if len(p.Palette) == 0 {
		return fmt.Errorf("%w: empty palette", ErrInvalidProgram)
	}
	if p.CycleMS <= 0 {
		return fmt.Errorf("%w: cycle_ms must be positive, got %d", ErrInvalidProgram, p.CycleMS)
	}
	return nil
}

// Sample returns the palette color at phase t (ms). t is wrapped into
// [0, CycleMS) first, so Sample is periodic in CycleMS.
func (p Program) Sample(t int) Color {
	n := len(p.Palette)
	if n == 1 {
		return p.Palette[0]
	}
	scaled := wrap(t, p.CycleMS) * n
	idx := (scaled / p.CycleMS) % n
	frac := float64(scaled%p.CycleMS) / float64(p.CycleMS)
	return Lerp(p.Palette[idx], p.Palette[(idx+1)%n], frac)
}

// Seed is the phase pixel i starts at after a program swap.
func (p Program) Seed(i int) int {
	return wrap(i*p.OffsetMS, p.CycleMS)
}

// Lerp interpolates a toward b per channel.
func Lerp(a, b Color, f float64) Color {
	return Color{
		R: a.R*(1-f) + b.R*f,
		G: a.G*(1-f) + b.G*f,
		B: a.B*(1-f) + b.B*f,
	}
}

func wrap(t, m int) int {
	t %= m
	if t < 0 {
		t += m
	}
	return t
}

package seats

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// Sensors reads one presence sensor per seat. The sensors pull their line
// low while someone is sitting.
type Sensors struct {
	pins   []gpio.PinIn
	groups [][]int

	targets  []bool
	occupied []bool
}

// Reading is one poll of all seats.
type Reading struct {
	// Seated is the number of occupied seats.
	Seated int
	// Targets has one entry per pixel; true on the pixels of occupied seats.
	Targets []bool
	// Occupied has one entry per seat.
	Occupied []bool
}

// New wires pins to seats; groups[i] lists the strip pixels lit by seat i.
func New(pins []gpio.PinIn, groups [][]int, pixels int) (*Sensors, error) {
	if len(pins) != len(groups) {
		return nil, fmt.Errorf("seats: %d pins for %d seat groups", len(pins), len(groups))
	}
	for i, g := range groups {
		for _, px := range g {
			if px < 0 || px >= pixels {
				return nil, fmt.Errorf("seats: seat %d pixel %d outside strip of %d", i, px, pixels)
			}
		}
	}
	for i, p := range pins {
		if p == nil {
			return nil, fmt.Errorf("seats: seat %d has no pin", i)
		}
		if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("seats: configure %s: %w", p, err)
		}
	}
	return &Sensors{
		pins:     pins,
		groups:   groups,
		targets:  make([]bool, pixels),
		occupied: make([]bool, len(pins)),
	}, nil
}

// Open looks pins up by name in the periph GPIO registry ("GPIO5", "5", ...).
// host.Init must have run first.
func Open(names []string, groups [][]int, pixels int) (*Sensors, error) {
	pins := make([]gpio.PinIn, len(names))
	for i, n := range names {
		p := gpioreg.ByName(n)
		if p == nil {
			return nil, errors.New("seats: no GPIO pin named " + n)
		}
		pins[i] = p
	}
	return New(pins, groups, pixels)
}

// Check polls every seat. The returned slices are reused by the next Check.
func (s *Sensors) Check() Reading {
	for i := range s.targets {
		s.targets[i] = false
	}
	seated := 0
	for i, p := range s.pins {
		on := p.Read() == gpio.Low
		s.occupied[i] = on
		if !on {
			continue
		}
		seated++
		for _, px := range s.groups[i] {
			s.targets[px] = true
		}
	}
	return Reading{Seated: seated, Targets: s.targets, Occupied: s.occupied}
}

// Len is the number of seats.
func (s *Sensors) Len() int { return len(s.pins) }

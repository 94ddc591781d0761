package led

import (
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-qotd/internal/render"
)

// Sim is a headless driver. It keeps the last frame and logs a compact
// summary (first pixel and average) every Every frames.
type Sim struct {
	Every int
	Count int
	Last  []render.Pixel
}

func NewSim() *Sim { return &Sim{Every: 60} }

func (d *Sim) Write(frame []render.Pixel) error {
	d.Count++
	d.Last = append(d.Last[:0], frame...)
	if d.Every <= 0 || d.Count%d.Every != 0 || len(frame) == 0 {
		return nil
	}
	var r, g, b int
	for _, p := range frame {
		r += int(p.R)
		g += int(p.G)
		b += int(p.B)
	}
	n := len(frame)
	log.Debug().
		Int("frame", d.Count).
		Ints("avg", []int{r / n, g / n, b / n}).
		Ints("first", []int{int(frame[0].R), int(frame[0].G), int(frame[0].B)}).
		Msg("sim frame")
	return nil
}

func (d *Sim) Close() error { return nil }

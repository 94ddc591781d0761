package led

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"

	"github.com/coreman2200/funtimes-qotd/internal/render"
)

// DefaultFreq drives WS2812 pixels over SPI with the 3-bit NRZ encoding.
const DefaultFreq = 2500 * physic.KiloHertz

// Strip writes engine frames to a periph display.Drawer: an nrzled device on
// SPI, or the console screen when no SPI port is available. Pixels past the
// end of a frame stay black.
type Strip struct {
	drawer display.Drawer
	port   io.Closer // nil when the strip does not own its port
	img    *image.NRGBA
}

func NewStrip(d display.Drawer, count int) *Strip {
	img := image.NewNRGBA(image.Rect(0, 0, count, 1))
	for x := 0; x < count; x++ {
		img.SetNRGBA(x, 0, color.NRGBA{A: 255})
	}
	return &Strip{drawer: d, img: img}
}

// Open finds the SPI port by name ("" for the first one) and builds an
// nrzled strip of count pixels. Without a port it falls back to printing the
// strip on the console and reports hw=false.
func Open(port string, count int, freq physic.Frequency) (s *Strip, hw bool, err error) {
	if count <= 0 {
		return nil, false, fmt.Errorf("invalid LED count: %d", count)
	}
	if freq <= 0 {
		freq = DefaultFreq
	}
	p, err := spireg.Open(port)
	if err != nil {
		log.Warn().Err(err).Str("port", port).Msg("no SPI port; printing the strip at the console")
		return NewStrip(screen.New(count), count), false, nil
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{NumPixels: count, Channels: 3, Freq: freq})
	if err != nil {
		_ = p.Close()
		return nil, false, fmt.Errorf("nrzled: %w", err)
	}
	if err := d.Halt(); err != nil {
		_ = p.Close()
		return nil, false, fmt.Errorf("nrzled halt: %w", err)
	}
	s = NewStrip(d, count)
	s.port = p
	return s, true, nil
}

func (s *Strip) Write(frame []render.Pixel) error {
	n := s.img.Rect.Dx()
	if len(frame) > n {
		return fmt.Errorf("frame of %d pixels on a %d pixel strip", len(frame), n)
	}
	for x, p := range frame {
		s.img.SetNRGBA(x, 0, color.NRGBA{R: p.R, G: p.G, B: p.B, A: 255})
	}
	return s.drawer.Draw(s.drawer.Bounds(), s.img, image.Point{})
}

// Len is the physical pixel count.
func (s *Strip) Len() int { return s.img.Rect.Dx() }

// Close turns every pixel off and releases the port.
func (s *Strip) Close() error {
	if s.drawer == nil {
		return errors.New("strip closed")
	}
	err := s.drawer.Halt()
	return errors.Join(err, s.Release())
}

// Release gives up the port without writing, so the pixels keep showing the
// last frame.
func (s *Strip) Release() error {
	if s.drawer == nil {
		return errors.New("strip closed")
	}
	s.drawer = nil
	if s.port == nil {
		return nil
	}
	p := s.port
	s.port = nil
	return p.Close()
}

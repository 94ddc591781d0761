package app

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-qotd/internal/config"
	"github.com/coreman2200/funtimes-qotd/internal/render"
	"github.com/coreman2200/funtimes-qotd/internal/seats"
	"github.com/coreman2200/funtimes-qotd/internal/tests"
	"github.com/coreman2200/funtimes-qotd/internal/ws"
)

type fakeStrip struct {
	frames int
	last   []render.Pixel
}

func (d *fakeStrip) Write(frame []render.Pixel) error {
	d.frames++
	d.last = append(d.last[:0], frame...)
	return nil
}

type fakeSink struct {
	played []string
	volume float64
	err    error
	closed bool
}

func (s *fakeSink) Play(path string) error {
	s.played = append(s.played, path)
	return nil
}

func (s *fakeSink) SetVolume(v float64) error {
	s.volume = v
	return s.err
}

func (s *fakeSink) Close() error {
	s.closed = true
	return nil
}

type fakeSeats struct {
	seated  int
	targets []bool
}

func (s *fakeSeats) Check() seats.Reading {
	return seats.Reading{Seated: s.seated, Targets: s.targets}
}

type rig struct {
	core  *Core
	strip *fakeStrip
	sink  *fakeSink
	seats *fakeSeats
}

func newRig(t *testing.T) rig {
	t.Helper()
	cfg := config.Default()
	r := rig{
		strip: &fakeStrip{},
		sink:  &fakeSink{},
		seats: &fakeSeats{targets: make([]bool, cfg.Strip.Lit)},
	}
	c, err := InitCore(cfg, Hardware{Strip: r.strip, Sink: r.sink, Seats: r.seats}, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	r.core = c
	return r
}

func TestInitCoreNeedsHardware(t *testing.T) {
	_, err := InitCore(config.Default(), Hardware{}, nil)
	assert.Error(t, err)
}

func TestFirstTickStartsIdleScene(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.core.Tick(16))

	assert.Equal(t, []string{"cv1.ogg"}, r.sink.played)
	assert.Equal(t, 1.0, r.sink.volume)
	assert.Equal(t, 1, r.strip.frames)
	assert.Len(t, r.strip.last, r.core.Cfg.Strip.Lit)

	bg, _ := r.core.Eng.Layer(render.Background).Program()
	fg, _ := r.core.Eng.Layer(render.Foreground).Program()
	assert.Equal(t, [2]int{6, 1}, [2]int{bg, fg})

	st := r.core.State.Status()
	assert.Equal(t, uint64(1), st.FrameID)
	assert.Equal(t, "Waiting for 2 more players to join...", st.Prompt)
}

func TestCommandsAreDrainedByTick(t *testing.T) {
	r := newRig(t)
	r.seats.seated = 2
	require.NoError(t, r.core.Tick(16))
	assert.Equal(t, 2, r.core.State.Status().Seated)

	require.True(t, r.core.State.Enqueue(ws.Control{Cmd: ws.CmdNext}))
	assert.False(t, r.core.Game.Playing())
	require.NoError(t, r.core.Tick(16))
	assert.True(t, r.core.Game.Playing())
	assert.Equal(t, r.core.Game.Text(), r.core.State.Status().Prompt)

	require.True(t, r.core.State.Enqueue(ws.Control{Cmd: ws.CmdClear}))
	require.NoError(t, r.core.Tick(16))
	assert.False(t, r.core.Game.Playing())
	assert.Equal(t, "Press to start new game!", r.core.State.Status().Prompt)
}

func TestSeatTestPatternPausesShow(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.core.Tick(16))
	frames := r.core.Eng.Frames()

	require.True(t, r.core.State.Enqueue(ws.Control{Cmd: ws.CmdTest, Test: tests.SeatGroups}))
	require.NoError(t, r.core.Tick(0))
	assert.Equal(t, frames, r.core.Eng.Frames(), "engine must not render while a test runs")

	cyan := render.Pixel{G: 255, B: 255}
	for _, px := range r.core.Cfg.Seats.Groups[0] {
		assert.Equal(t, cyan, r.strip.last[px])
	}
	assert.Equal(t, render.Pixel{}, r.strip.last[r.core.Cfg.Seats.Groups[1][0]])

	for i := 0; i < len(r.core.Cfg.Seats.Groups); i++ {
		require.NoError(t, r.core.Tick(tests.DefaultHoldMS))
	}
	assert.Equal(t, frames+1, r.core.Eng.Frames())
}

func TestSinkErrorStopsTick(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.core.Tick(16))
	boom := errors.New("device lost")
	r.sink.err = boom
	assert.ErrorIs(t, r.core.Tick(16), boom)
}

func TestCloseBlanksAndReleasesSink(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.core.Tick(16))
	require.NoError(t, r.core.Close(true))
	assert.True(t, r.sink.closed)
	assert.Equal(t, make([]render.Pixel, r.core.Cfg.Strip.Lit), r.strip.last)
}

func TestFrameClockCarriesRemainder(t *testing.T) {
	t0 := time.Unix(0, 0)
	clk := newFrameClock(t0)
	frame := 16700 * time.Microsecond

	total := 0
	for i := 1; i <= 3; i++ {
		total += clk.elapsed(t0.Add(time.Duration(i) * frame))
	}
	assert.Equal(t, 50, total)
	assert.Equal(t, 0, clk.elapsed(t0))
}

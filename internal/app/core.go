package app

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-qotd/internal/audio"
	"github.com/coreman2200/funtimes-qotd/internal/config"
	diag "github.com/coreman2200/funtimes-qotd/internal/diagnostics"
	"github.com/coreman2200/funtimes-qotd/internal/render"
	"github.com/coreman2200/funtimes-qotd/internal/show"
	"github.com/coreman2200/funtimes-qotd/internal/tests"
	"github.com/coreman2200/funtimes-qotd/internal/ws"
)

// Core is everything the tick loop drives.
type Core struct {
	Cfg   *config.Config
	Eng   *render.Engine
	Sound *audio.Crossfader
	Game  *show.Game
	State *ws.State

	sink audio.Sink

	test      *tests.Runner
	testFrame []render.Pixel
}

// Hardware is the outside world: LED output, speaker, seat sensors and any
// extra prompt displays.
type Hardware struct {
	Strip    render.Driver
	Sink     audio.Sink
	Seats    show.Seats
	Prompter show.Prompter
	Debug    bool
}

// InitCore builds the engine, crossfader and game from cfg. Frames go
// through the preview state to hw.Strip.
func InitCore(cfg *config.Config, hw Hardware, rng *rand.Rand) (*Core, error) {
	if hw.Sink == nil || hw.Seats == nil {
		return nil, fmt.Errorf("app: hardware needs a sink and seats")
	}
	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	state := ws.NewState(cfg.Strip.Lit, hw.Strip)
	eng, err := render.NewEngine(reg, cfg.Strip.Lit, state)
	if err != nil {
		return nil, err
	}
	eng.SetPost(cfg.Limiter())

	xf, err := audio.NewCrossfader(hw.Sink, cfg.Audio.Tracks)
	if err != nil {
		return nil, err
	}

	prompters := show.Prompters{show.LogPrompter{}, state}
	if hw.Prompter != nil {
		prompters = append(prompters, hw.Prompter)
	}
	game := show.New(show.Options{
		PlayersNeeded: cfg.PlayersNeeded,
		RoundSize:     cfg.RoundSize,
		Scenes:        cfg.Scenes,
		Questions:     cfg.Questions,
		Debug:         hw.Debug,
	}, eng, xf, hw.Seats, prompters, rng)

	return &Core{
		Cfg:       cfg,
		Eng:       eng,
		Sound:     xf,
		Game:      game,
		State:     state,
		sink:      hw.Sink,
		testFrame: make([]render.Pixel, cfg.Strip.Lit),
	}, nil
}

// Tick applies queued control commands, then advances the game by dt ms.
// While a test pattern runs it owns the strip and the show is paused.
func (c *Core) Tick(dt int) error {
	if err := c.drainCommands(); err != nil {
		return err
	}
	if c.test != nil {
		if c.test.Step(dt, c.testFrame) {
			return c.State.Write(c.testFrame)
		}
		c.State.Push(diag.Diagnostic{Severity: diag.Info, Code: diag.CodeTestDone, Summary: "Test complete", Detail: string(c.test.Kind())})
		c.test = nil
	}
	if err := c.Game.Update(dt); err != nil {
		return err
	}
	c.State.SetSeated(c.Game.Seated())
	return nil
}

func (c *Core) drainCommands() error {
	for {
		select {
		case cmd := <-c.State.Commands():
			switch cmd.Cmd {
			case ws.CmdNext:
				if err := c.Game.Next(); err != nil {
					return err
				}
			case ws.CmdClear:
				c.test = nil
				c.Game.Abort()
			case ws.CmdTest:
				c.test = tests.NewRunner(tests.Plan{Kind: cmd.Test, Groups: c.Cfg.Seats.Groups})
				c.State.Push(diag.Diagnostic{Severity: diag.Info, Code: diag.CodeTestRunning, Summary: "Running test", Detail: string(cmd.Test)})
			}
		default:
			return nil
		}
	}
}

// Run ticks at fps until ctx is done. Any tick error stops the loop and is
// returned.
func (c *Core) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	clk := newFrameClock(time.Now())
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if err := c.Tick(clk.elapsed(now)); err != nil {
				return err
			}
		}
	}
}

// Close optionally blanks the strip, then releases the sink.
func (c *Core) Close(blank bool) error {
	if blank {
		if err := c.Eng.Blank(); err != nil {
			log.Warn().Err(err).Msg("blank strip")
		}
	}
	if cl, ok := c.sink.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}

// frameClock turns wall time into whole-millisecond steps and carries the
// sub-millisecond remainder into the next step.
type frameClock struct {
	prev time.Time
}

func newFrameClock(start time.Time) *frameClock { return &frameClock{prev: start} }

func (f *frameClock) elapsed(now time.Time) int {
	dt := int(now.Sub(f.prev) / time.Millisecond)
	if dt < 0 {
		f.prev = now
		return 0
	}
	f.prev = f.prev.Add(time.Duration(dt) * time.Millisecond)
	return dt
}

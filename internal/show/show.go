package show

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-qotd/internal/config"
	"github.com/coreman2200/funtimes-qotd/internal/seats"
)

// Lights is the light engine as seen by the orchestrator.
type Lights interface {
	TransitionTo(bg, fg int) error
	Update(dt int, targets []bool) error
}

// Sound is the soundtrack crossfader.
type Sound interface {
	TransitionTo(track int) error
	Update(dt int) error
}

// Seats polls the seat sensors.
type Seats interface {
	Check() seats.Reading
}

// Prompter shows one line of text to the room.
type Prompter interface {
	Prompt(text string) error
}

type Options struct {
	PlayersNeeded int
	RoundSize     int
	Scenes        []config.IdleScene
	Questions     []config.Question
	// Debug prompts the raw seat states instead of the waiting message.
	Debug bool
}

// Game picks what the room looks and sounds like. Between rounds the scene
// follows the number of seated people; Next starts a round of questions and
// steps through it.
type Game struct {
	opts     Options
	lights   Lights
	sound    Sound
	seats    Seats
	prompter Prompter
	rng      *rand.Rand

	round   []config.Question
	index   int
	playing bool

	seated int
	text   string
}

// New wires the orchestrator. A nil rng is seeded from the clock.
func New(opts Options, l Lights, s Sound, st Seats, p Prompter, rng *rand.Rand) *Game {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Game{opts: opts, lights: l, sound: s, seats: st, prompter: p, rng: rng}
}

// Next is the "button press": it starts a round when enough people are
// seated, shows the next question, and after the last question ends the
// round.
func (g *Game) Next() error {
	if !g.playing {
		if g.seated < g.opts.PlayersNeeded {
			return nil
		}
		g.start()
	}
	if g.index >= len(g.round) {
		g.playing = false
		log.Info().Msg("round finished")
		return nil
	}
	q := g.round[g.index]
	g.index++
	if err := g.apply(q.Scene); err != nil {
		return err
	}
	log.Info().Int("question", g.index).Str("text", q.Text).Msg("next question")
	return g.prompt(q.Text)
}

func (g *Game) start() {
	n := min(g.opts.RoundSize, len(g.opts.Questions))
	g.round = g.round[:0]
	for _, i := range g.rng.Perm(len(g.opts.Questions))[:n] {
		g.round = append(g.round, g.opts.Questions[i])
	}
	g.index = 0
	g.playing = true
	log.Info().Int("seated", g.seated).Int("questions", n).Msg("round started")
}

// Abort ends the running round; the next Update returns to the idle scene.
func (g *Game) Abort() {
	if !g.playing {
		return
	}
	g.playing = false
	log.Info().Int("question", g.index).Msg("round abandoned")
}

// Update polls the seats, keeps the idle scene in step with them when no
// round is running, then ticks lights and sound by dt ms.
func (g *Game) Update(dt int) error {
	r := g.seats.Check()
	if r.Seated != g.seated {
		log.Debug().Int("seated", r.Seated).Msg("occupancy changed")
	}
	g.seated = r.Seated

	if !g.playing {
		if err := g.apply(g.IdleScene(r.Seated)); err != nil {
			return err
		}
		if err := g.prompt(g.idleText(r)); err != nil {
			return err
		}
	}
	if err := g.lights.Update(dt, r.Targets); err != nil {
		return err
	}
	return g.sound.Update(dt)
}

// IdleScene is the scene for seated people outside a round.
func (g *Game) IdleScene(seated int) config.Scene {
	for _, s := range g.opts.Scenes {
		if s.Below == 0 || seated < s.Below {
			return s.Scene
		}
	}
	return config.Scene{}
}

func (g *Game) idleText(r seats.Reading) string {
	switch {
	case g.opts.Debug:
		return fmt.Sprint(r.Occupied)
	case r.Seated >= g.opts.PlayersNeeded:
		return "Press to start new game!"
	default:
		return fmt.Sprintf("Waiting for %d more players to join...", g.opts.PlayersNeeded-r.Seated)
	}
}

func (g *Game) apply(s config.Scene) error {
	if err := g.sound.TransitionTo(s.Track); err != nil {
		return err
	}
	return g.lights.TransitionTo(s.Background, s.Foreground)
}

// prompt skips text that is already showing.
func (g *Game) prompt(text string) error {
	if text == g.text {
		return nil
	}
	g.text = text
	if g.prompter == nil {
		return nil
	}
	return g.prompter.Prompt(text)
}

// Playing reports whether a round is running.
func (g *Game) Playing() bool { return g.playing }

func (g *Game) Seated() int { return g.seated }

// Text is the line currently shown.
func (g *Game) Text() string { return g.text }

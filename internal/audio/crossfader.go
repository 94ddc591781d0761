package audio

import (
	"errors"
	"fmt"

	"github.com/coreman2200/funtimes-qotd/internal/fade"
)

// ErrUnknownTrack is returned for track ids outside the registry.
var ErrUnknownTrack = errors.New("unknown track")

// Sink is the single physical audio output.
type Sink interface {
	// Play stops whatever is playing and starts path looping from the top.
	Play(path string) error
	// SetVolume applies a level in [0,1].
	SetVolume(v float64) error
}

const noTrack = -1

// Crossfader switches the soundtrack through silence: fade the current track
// out, hard-swap to the pending one at zero volume, fade it in. There is only
// one output, so the two tracks never overlap.
type Crossfader struct {
	sink   Sink
	tracks []string

	current int
	pending int
	timer   fade.Timer
	volume  float64
}

// NewCrossfader takes the static track registry; track id i plays tracks[i].
func NewCrossfader(sink Sink, tracks []string) (*Crossfader, error) {
	if sink == nil {
		return nil, errors.New("audio: nil sink")
	}
	for i, t := range tracks {
		if t == "" {
			return nil, fmt.Errorf("audio: track %d has no path", i)
		}
	}
	return &Crossfader{
		sink:    sink,
		tracks:  append([]string(nil), tracks...),
		current: noTrack,
		pending: noTrack,
	}, nil
}

// TransitionTo requests track id. With nothing playing the track starts at
// once at full volume; otherwise it is queued behind a fade-out. During a
// fade-out the last request wins, even when it names the playing track.
func (c *Crossfader) TransitionTo(id int) error {
	if id < 0 || id >= len(c.tracks) {
		return fmt.Errorf("%w: %d", ErrUnknownTrack, id)
	}
	if c.pending != noTrack {
		// the fade-out is already running; the latest request plays at the swap
		c.pending = id
		return nil
	}
	if id == c.current {
		return nil
	}
	if c.current == noTrack {
		if err := c.sink.Play(c.tracks[id]); err != nil {
			return fmt.Errorf("audio: play %s: %w", c.tracks[id], err)
		}
		c.current = id
		c.timer.Reset()
		return c.setVolume(1)
	}
	c.pending = id
	c.timer.Retrigger()
	return nil
}

// Update advances the fade by dt ms and pushes the volume to the sink.
func (c *Crossfader) Update(dt int) error {
	if c.current == noTrack {
		return nil
	}
	if c.timer.Active() && c.timer.Advance(dt) {
		if err := c.sink.Play(c.tracks[c.pending]); err != nil {
			return fmt.Errorf("audio: play %s: %w", c.tracks[c.pending], err)
		}
		c.current = c.pending
		c.pending = noTrack
	}
	return c.setVolume(c.timer.Level())
}

func (c *Crossfader) setVolume(v float64) error {
	c.volume = v
	if err := c.sink.SetVolume(v); err != nil {
		return fmt.Errorf("audio: set volume: %w", err)
	}
	return nil
}

// Track returns the playing track id.
func (c *Crossfader) Track() (int, bool) { return c.current, c.current != noTrack }

// Pending returns the track queued behind the fade-out.
func (c *Crossfader) Pending() (int, bool) { return c.pending, c.pending != noTrack }

func (c *Crossfader) Volume() float64 { return c.volume }

func (c *Crossfader) Fading() bool { return c.timer.Active() }

// TimerMS exposes the signed crossfade counter.
func (c *Crossfader) TimerMS() int { return c.timer.MS() }

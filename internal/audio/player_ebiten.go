//go:build cgo

package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"github.com/rs/zerolog/log"
)

var (
	audioContextOnce sync.Once
	audioContext     *audio.Context
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*audio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = audio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// Player is the ebiten-backed Sink. Tracks are decoded from disk and looped
// forever; Play always restarts from the beginning.
type Player struct {
	ctx *audio.Context
	dir string

	mu     sync.Mutex
	player *audio.Player
	file   *os.File
	volume float64
}

// NewPlayer opens the shared audio context. Relative track paths resolve
// against dir.
func NewPlayer(sampleRate int, dir string) (*Player, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	return &Player{ctx: ctx, dir: dir, volume: 1}, nil
}

func (p *Player) Play(path string) error {
	if !filepath.IsAbs(path) && p.dir != "" {
		path = filepath.Join(p.dir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	stream, length, err := p.decode(path, f)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("decode %s: %w", path, err)
	}
	pl, err := p.ctx.NewPlayer(audio.NewInfiniteLoop(stream, length))
	if err != nil {
		_ = f.Close()
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	pl.SetVolume(p.volume)
	pl.Play()
	p.player, p.file = pl, f
	log.Debug().Str("track", path).Msg("audio: playing")
	return nil
}

func (p *Player) decode(path string, f *os.File) (io.ReadSeeker, int64, error) {
	sr := p.ctx.SampleRate()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		s, err := wav.DecodeWithSampleRate(sr, f)
		if err != nil {
			return nil, 0, err
		}
		return s, s.Length(), nil
	default:
		s, err := vorbis.DecodeWithSampleRate(sr, f)
		if err != nil {
			return nil, 0, err
		}
		return s, s.Length(), nil
	}
}

func (p *Player) SetVolume(v float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = v
	if p.player != nil {
		p.player.SetVolume(v)
	}
	return nil
}

// Close stops playback and releases the open track.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}

func (p *Player) closeLocked() error {
	var err error
	if p.player != nil {
		p.player.Pause()
		err = p.player.Close()
		p.player = nil
	}
	if p.file != nil {
		if cerr := p.file.Close(); err == nil {
			err = cerr
		}
		p.file = nil
	}
	return err
}

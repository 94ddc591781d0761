//go:build !cgo

package audio

import "errors"

type Player struct{}

func NewPlayer(sampleRate int, dir string) (*Player, error) {
	return nil, errors.New("audio output requires a cgo build")
}

func (p *Player) Play(path string) error    { return errors.New("audio output requires a cgo build") }
func (p *Player) SetVolume(v float64) error { return nil }
func (p *Player) Close() error              { return nil }

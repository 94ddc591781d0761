package audio

import "github.com/rs/zerolog/log"

// Silent is a Sink for installs without a speaker. It only logs track changes.
type Silent struct {
	Track  string
	Volume float64
}

func (s *Silent) Play(path string) error {
	s.Track = path
	log.Info().Str("track", path).Msg("audio: silent sink playing")
	return nil
}

func (s *Silent) SetVolume(v float64) error {
	s.Volume = v
	return nil
}

func (s *Silent) Close() error { return nil }

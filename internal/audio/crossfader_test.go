package audio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	played  []string
	volumes []float64
	err     error
}

func (s *fakeSink) Play(path string) error {
	if s.err != nil {
		return s.err
	}
	s.played = append(s.played, path)
	return nil
}

func (s *fakeSink) SetVolume(v float64) error {
	s.volumes = append(s.volumes, v)
	return nil
}

func (s *fakeSink) lastVolume() float64 { return s.volumes[len(s.volumes)-1] }

var tracks = []string{"bg1.ogg", "cv1.ogg", "cv2.ogg"}

func newTestCrossfader(t *testing.T) (*Crossfader, *fakeSink) {
	t.Helper()
	sink := &fakeSink{}
	c, err := NewCrossfader(sink, tracks)
	require.NoError(t, err)
	return c, sink
}

func step(t *testing.T, c *Crossfader, total, dt int) {
	t.Helper()
	for ; total > 0; total -= dt {
		require.NoError(t, c.Update(min(dt, total)))
	}
}

func TestColdStartPlaysAtFullVolume(t *testing.T) {
	c, sink := newTestCrossfader(t)
	require.NoError(t, c.TransitionTo(1))

	assert.Equal(t, []string{"cv1.ogg"}, sink.played)
	assert.Equal(t, 1.0, sink.lastVolume())
	assert.False(t, c.Fading())

	step(t, c, 300, 16)
	for _, v := range sink.volumes {
		assert.Equal(t, 1.0, v)
	}
}

func TestSameTrackIsNoop(t *testing.T) {
	c, sink := newTestCrossfader(t)
	require.NoError(t, c.TransitionTo(0))
	require.NoError(t, c.TransitionTo(0))
	assert.Len(t, sink.played, 1)
	assert.False(t, c.Fading())
}

func TestCrossfadeThroughSilence(t *testing.T) {
	c, sink := newTestCrossfader(t)
	require.NoError(t, c.TransitionTo(0))
	require.NoError(t, c.TransitionTo(2))
	assert.Equal(t, 500, c.TimerMS())

	step(t, c, 250, 50)
	assert.InDelta(t, 0.5, sink.lastVolume(), 1e-9)
	assert.Len(t, sink.played, 1)

	step(t, c, 250, 50)
	assert.Equal(t, []string{"bg1.ogg", "cv2.ogg"}, sink.played)
	assert.Equal(t, 0.0, sink.lastVolume())
	id, _ := c.Track()
	assert.Equal(t, 2, id)

	step(t, c, 250, 50)
	assert.InDelta(t, 0.5, sink.lastVolume(), 1e-9)
	step(t, c, 250, 50)
	assert.Equal(t, 1.0, sink.lastVolume())
	assert.False(t, c.Fading())
}

func TestRetargetDuringFadeOut(t *testing.T) {
	c, sink := newTestCrossfader(t)
	require.NoError(t, c.TransitionTo(0))
	require.NoError(t, c.TransitionTo(1))
	step(t, c, 100, 20)
	require.NoError(t, c.TransitionTo(2))
	assert.Equal(t, 400, c.TimerMS())

	step(t, c, 1000, 20)
	assert.Equal(t, []string{"bg1.ogg", "cv2.ogg"}, sink.played)
}

func TestReturnToPlayingTrackDuringFadeOut(t *testing.T) {
	c, sink := newTestCrossfader(t)
	require.NoError(t, c.TransitionTo(0))
	require.NoError(t, c.TransitionTo(1))
	step(t, c, 100, 20)
	require.NoError(t, c.TransitionTo(0))
	pending, ok := c.Pending()
	assert.True(t, ok)
	assert.Equal(t, 0, pending)

	step(t, c, 1000, 20)
	track, _ := c.Track()
	assert.Equal(t, 0, track)
	assert.Equal(t, []string{"bg1.ogg", "bg1.ogg"}, sink.played)
	assert.Equal(t, 1.0, sink.lastVolume())
}

func TestRetriggerDuringFadeIn(t *testing.T) {
	c, _ := newTestCrossfader(t)
	require.NoError(t, c.TransitionTo(0))
	require.NoError(t, c.TransitionTo(1))
	step(t, c, 600, 100)
	assert.Equal(t, -400, c.TimerMS())

	require.NoError(t, c.TransitionTo(2))
	assert.Equal(t, 100, c.TimerMS())
}

func TestUnknownTrack(t *testing.T) {
	c, sink := newTestCrossfader(t)
	assert.ErrorIs(t, c.TransitionTo(3), ErrUnknownTrack)
	assert.ErrorIs(t, c.TransitionTo(-1), ErrUnknownTrack)
	assert.Empty(t, sink.played)
}

func TestSinkErrorPropagates(t *testing.T) {
	c, sink := newTestCrossfader(t)
	require.NoError(t, c.TransitionTo(0))
	require.NoError(t, c.TransitionTo(1))
	boom := errors.New("device gone")
	sink.err = boom
	step(t, c, 400, 100)
	assert.ErrorIs(t, c.Update(100), boom)
}

func TestNewCrossfaderValidation(t *testing.T) {
	_, err := NewCrossfader(nil, tracks)
	assert.Error(t, err)
	_, err = NewCrossfader(&fakeSink{}, []string{"a.ogg", ""})
	assert.Error(t, err)
}

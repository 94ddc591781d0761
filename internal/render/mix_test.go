package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlendWeights(t *testing.T) {
	a := []Color{red, red, red}
	b := []Color{blue, blue, blue}
	dst := make([]Color, 3)
	Blend(dst, a, b, []float64{0, 0.5, 1})

	assert.Equal(t, red, dst[0])
	assert.InDelta(t, 127.5, dst[1].R, 1e-9)
	assert.InDelta(t, 127.5, dst[1].B, 1e-9)
	assert.Equal(t, blue, dst[2])
}

func TestWhiten(t *testing.T) {
	buf := []Color{red}
	Whiten(buf, 1)
	assert.Equal(t, red, buf[0])

	Whiten(buf, 0.5)
	assert.Equal(t, Color{R: 255, G: 127.5, B: 127.5}, buf[0])

	Whiten(buf, 0)
	assert.Equal(t, White, buf[0])
}

func TestQuantizeClamps(t *testing.T) {
	dst := make([]Pixel, 3)
	Quantize(dst, []Color{{R: -3, G: 300, B: 254.9}, {R: 0.99}, {R: 255, G: 128.5, B: 1}})
	assert.Equal(t, Pixel{R: 0, G: 255, B: 254}, dst[0])
	assert.Equal(t, Pixel{}, dst[1])
	assert.Equal(t, Pixel{R: 255, G: 128, B: 1}, dst[2])
}

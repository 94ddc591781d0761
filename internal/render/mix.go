package render

// Blend mixes two framebuffers per pixel: dst[i] = a[i]*(1-w[i]) + b[i]*w[i].
// Channels are linear; no gamma assumed.
func Blend(dst, a, b []Color, w []float64) {
	for i := range dst {
		bf := w[i]
		af := 1 - bf
		dst[i].R = a[i].R*af + b[i].R*bf
		dst[i].G = a[i].G*af + b[i].G*bf
		dst[i].B = a[i].B*af + b[i].B*bf
	}
}

// Whiten pulls every pixel toward White; level 1 leaves buf unchanged and
// level 0 is pure white.
func Whiten(buf []Color, level float64) {
	if level >= 1 {
		return
	}
	wf := 255 * (1 - level)
	for i := range buf {
		buf[i].R = buf[i].R*level + wf
		buf[i].G = buf[i].G*level + wf
		buf[i].B = buf[i].B*level + wf
	}
}

// Quantize truncates each channel toward zero and clamps it to 0..255.
func Quantize(dst []Pixel, src []Color) {
	for i := range src {
		dst[i] = Pixel{R: to8(src[i].R), G: to8(src[i].G), B: to8(src[i].B)}
	}
}

func to8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

package render

// Limiter is an optional post stage that keeps the strip inside its power
// supply. The zero value does nothing.
//
//   - WhiteCap: per-LED cap on R+G+B (0..765 scale); 0 disables
//   - ChanMA: mA drawn by one channel at full scale (WS2812 ≈ 20)
//   - BudgetMA: global current budget; 0 disables
type Limiter struct {
	WhiteCap float64
	ChanMA   float64
	BudgetMA float64
}

// Enabled reports whether Apply can change a frame.
func (l Limiter) Enabled() bool { return l.WhiteCap > 0 || l.BudgetMA > 0 }

// Apply runs the per-LED white cap, then scales the whole frame so the
// estimated current stays under BudgetMA.
func (l Limiter) Apply(buf []Color) {
	if l.WhiteCap > 0 {
		for i := range buf {
			s := buf[i].R + buf[i].G + buf[i].B
			if s > l.WhiteCap && s > 0 {
				scale(buf[i:i+1], l.WhiteCap/s)
			}
		}
	}

	if l.BudgetMA <= 0 {
		return
	}
	chanMA := l.ChanMA
	if chanMA <= 0 {
		chanMA = 20
	}
	var total float64
	for i := range buf {
		total += (buf[i].R + buf[i].G + buf[i].B) / 255 * chanMA
	}
	if total <= l.BudgetMA {
		return
	}
	scale(buf, l.BudgetMA/total)
}

func scale(buf []Color, s float64) {
	if s >= 1 {
		return
	}
	for i := range buf {
		buf[i].R *= s
		buf[i].G *= s
		buf[i].B *= s
	}
}

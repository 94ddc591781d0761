package layout

// Installation geometry: a single strip wrapped around a ring of seats. Each
// group owns one marker pixel at the start of the strip plus a run of
// GroupRun pixels further along.
const (
	StripPixels = 200
	LitPixels   = 193
	Groups      = 7
	GroupRun    = 14
	runStart    = Groups
	centerGroup = 3
)

type Layout struct {
	StripPixels int
	LitPixels   int
	Groups      [][]int
	// Seats lists, per seat sensor, the index of its group.
	Seats []int
}

// Default is the layout of the installed ring: seven groups, the center one
// reserved for the background.
func Default() Layout {
	l := Layout{StripPixels: StripPixels, LitPixels: LitPixels}
	for g := 0; g < Groups; g++ {
		l.Groups = append(l.Groups, Group(g))
		if g != centerGroup {
			l.Seats = append(l.Seats, g)
		}
	}
	return l
}

// Group returns the pixels of group g.
func Group(g int) []int {
	px := []int{Groups - 1 - g}
	start := g*GroupRun + runStart
	for i := start; i < start+GroupRun; i++ {
		px = append(px, i)
	}
	return px
}

// SeatPixels returns the pixel list of each seat in sensor order.
func (l Layout) SeatPixels() [][]int {
	out := make([][]int, 0, len(l.Seats))
	for _, g := range l.Seats {
		out = append(out, l.Groups[g])
	}
	return out
}

// Count is the number of pixels the engine renders.
func (l Layout) Count() int { return l.LitPixels }

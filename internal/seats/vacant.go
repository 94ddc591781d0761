package seats

// Vacant stands in for the sensors on machines without GPIO: nobody is ever
// seated.
type Vacant struct {
	targets []bool
}

func NewVacant(pixels int) *Vacant { return &Vacant{targets: make([]bool, pixels)} }

func (v *Vacant) Check() Reading { return Reading{Targets: v.targets} }

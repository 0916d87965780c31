package nn

import (
	"fmt"
	"math"
)

// Activator is a layer's non-linearity. Deactivate takes the activation's own
// output y and returns the derivative at the input that produced it, so the
// raw weighted sums never need to be kept.
type Activator interface {
	Activate(sum float64) float64
	Deactivate(y float64) float64
	fmt.Stringer
}

var ActivatorLookup = map[string]Activator{
	"sigmoid": Sigmoid{},
}

type Sigmoid struct{}

func (s Sigmoid) Activate(sum float64) float64 {
	return 1.0 / (1.0 + math.Exp(-sum))
}

func (s Sigmoid) Deactivate(y float64) float64 {
	return y * (1 - y)
}

func (s Sigmoid) String() string {
	return "sigmoid"
}

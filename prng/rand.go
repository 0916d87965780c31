// Package prng is a small seeded random source used for weight
// initialisation and for sampling training data.
//
// It is a Park–Miller "minimal standard" Lehmer generator: the whole state is
// one integer and every draw advances it once, so two sources created with the
// same seed and asked the same questions return the same numbers.
package prng

const (
	modulus    = 2147483647 // 2^31 - 1
	multiplier = 16807
)

// Rand is not safe for concurrent use.
type Rand struct {
	state int64
}

// New returns a source seeded with seed. Any seed is accepted; it is folded
// into the generator's valid state range [1, modulus-1].
func New(seed int64) *Rand {
	s := seed % modulus
	if s < 0 {
		s += modulus
	}
	if s == 0 {
		s = modulus - 1
	}
	return &Rand{state: s}
}

// State returns the current internal state.
func (r *Rand) State() int64 {
	return r.state
}

// Float64 returns a value in [0, 1).
func (r *Rand) Float64() float64 {
	r.state = r.state * multiplier % modulus
	return float64(r.state-1) / (modulus - 1)
}

// Next returns a value uniformly distributed in [min, max).
// Reversed bounds are swapped; equal bounds return min.
func (r *Rand) Next(min, max float64) float64 {
	if min > max {
		min, max = max, min
	}
	return min + r.Float64()*(max-min)
}

// Intn returns a value in [0, n). It panics if n <= 0.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		panic("prng: invalid argument to Intn")
	}
	i := int(r.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Shuffle pseudo-randomizes the order of n elements using Fisher–Yates.
func (r *Rand) Shuffle(n int, swap func(i, j int)) {
	if n < 0 {
		panic("prng: invalid argument to Shuffle")
	}
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		swap(i, j)
	}
}

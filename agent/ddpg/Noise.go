package ddpg

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// OUNoise implements an Ornstein-Uhlenbeck process for temporally
// correlated exploration noise in continuous action spaces.
type OUNoise struct {
	mu    float64
	theta float64
	sigma float64

	state []float64
	rng   distuv.Normal
}

// NewOUNoise returns a new Ornstein-Uhlenbeck process generating noise
// vectors of the given size
func NewOUNoise(size int, mu, theta, sigma float64, seed uint64) *OUNoise {
	noise := &OUNoise{
		mu:    mu,
		theta: theta,
		sigma: sigma,
		state: make([]float64, size),
		rng: distuv.Normal{
			Mu:    0.0,
			Sigma: 1.0,
			Src:   rand.NewSource(seed),
		},
	}
	noise.Reset()

	return noise
}

// Reset resets the internal state of the process to the mean mu
func (o *OUNoise) Reset() {
	for i := range o.state {
		o.state[i] = o.mu
	}
}

// Sample updates the internal state of the process and returns it as a
// noise sample
func (o *OUNoise) Sample() []float64 {
	for i, x := range o.state {
		dx := o.theta*(o.mu-x) + o.sigma*o.rng.Rand()
		o.state[i] = x + dx
	}

	sample := make([]float64, len(o.state))
	copy(sample, o.state)
	return sample
}

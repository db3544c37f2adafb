package expreplay

import (
	"golang.org/x/exp/rand"
)

// Selector implements functionality for choosing the indices at which
// data should be sampled from an experience replay buffer
type Selector interface {
	// choose selects the indices at which data should be sampled from
	// the experience replay buffer
	choose(c *cache) []int

	// BatchSize returns the number of elements that will be selected
	BatchSize() int
}

// uniformSelector is a Selector which selects data from an experience
// replay buffer uniformly randomly, without replacement within a
// single batch
type uniformSelector struct {
	samples int
	rng     *rand.Rand
}

// NewUniformSelector returns a new Selector which selects data
// uniformly randomly from an experience replay buffer
func NewUniformSelector(samples int, seed uint64) Selector {
	source := rand.NewSource(seed)
	rng := rand.New(source)

	return &uniformSelector{samples: samples, rng: rng}
}

// BatchSize gets the number of samples in a batch drawn from the buffer
func (u *uniformSelector) BatchSize() int {
	return u.samples
}

// choose selects a number of distinct indices at which to draw data
// from the buffer. A partial Fisher-Yates shuffle over the occupied
// indices avoids materializing a full permutation of the buffer.
func (u *uniformSelector) choose(c *cache) []int {
	n := c.Capacity()
	selected := make([]int, u.BatchSize())
	swapped := make(map[int]int, u.BatchSize())

	for i := 0; i < u.BatchSize(); i++ {
		j := i + u.rng.Intn(n-i)

		vi, ok := swapped[i]
		if !ok {
			vi = i
		}
		vj, ok := swapped[j]
		if !ok {
			vj = j
		}

		selected[i] = vj
		swapped[j] = vi
	}

	return selected
}

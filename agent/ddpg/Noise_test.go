package ddpg

import (
	"math"
	"testing"
)

func TestOUNoiseSampleSize(t *testing.T) {
	noise := NewOUNoise(4, 0.0, 0.15, 0.2, 14)

	sample := noise.Sample()
	if len(sample) != 4 {
		t.Errorf("wrong sample size \n\twant(%v) \n\thave(%v)", 4,
			len(sample))
	}
}

// With zero volatility the process stays at its mean
func TestOUNoiseZeroSigma(t *testing.T) {
	mu := 0.5
	noise := NewOUNoise(3, mu, 0.15, 0.0, 14)

	for i := 0; i < 20; i++ {
		for j, v := range noise.Sample() {
			if v != mu {
				t.Fatalf("noiseless process drifted from mean at sample "+
					"%v component %v \n\twant(%v) \n\thave(%v)", i, j, mu, v)
			}
		}
	}
}

// Two processes with the same seed generate identical noise
func TestOUNoiseDeterministic(t *testing.T) {
	a := NewOUNoise(2, 0.0, 0.15, 0.2, 14)
	b := NewOUNoise(2, 0.0, 0.15, 0.2, 14)

	for i := 0; i < 50; i++ {
		sampleA := a.Sample()
		sampleB := b.Sample()
		for j := range sampleA {
			if sampleA[j] != sampleB[j] {
				t.Fatalf("same-seed processes diverged at sample %v", i)
			}
		}
	}
}

// Samples mutate a copy of the internal state, not the returned slice
func TestOUNoiseSampleIsCopy(t *testing.T) {
	noise := NewOUNoise(2, 0.0, 0.15, 0.2, 14)

	first := noise.Sample()
	saved := make([]float64, len(first))
	copy(saved, first)

	noise.Sample()
	for i := range first {
		if first[i] != saved[i] {
			t.Fatal("a later Sample() modified a previously returned sample")
		}
	}
}

// Resetting returns the process to its mean: the next noiseless
// sample equals mu exactly
func TestOUNoiseReset(t *testing.T) {
	mu := -0.25
	noise := NewOUNoise(2, mu, 0.15, 0.2, 14)

	// Wander away from the mean
	for i := 0; i < 10; i++ {
		noise.Sample()
	}

	noise.Reset()
	noise.sigma = 0

	for _, v := range noise.Sample() {
		if math.Abs(v-mu) > 1e-15 {
			t.Errorf("reset process did not return to its mean "+
				"\n\twant(%v) \n\thave(%v)", mu, v)
		}
	}
}

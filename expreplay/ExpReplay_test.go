package expreplay

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	ts "github.com/Taxuspt/udacity-reinforcement-learning-collab/timestep"
)

const (
	testFeatureSize int = 2
	testActionSize  int = 1
)

// testTransition returns a transition whose every field is derived
// from id so that sampled batches can be traced back to the Add that
// stored them
func testTransition(id float64) ts.Transition {
	return ts.Transition{
		State:     mat.NewVecDense(testFeatureSize, []float64{id, id + 1}),
		Action:    mat.NewVecDense(testActionSize, []float64{-id}),
		Reward:    id,
		Discount:  0.99,
		NextState: mat.NewVecDense(testFeatureSize, []float64{id + 2, id + 3}),
	}
}

func newTestBuffer(t *testing.T, minCapacity, maxCapacity,
	batchSize int) ExperienceReplayer {
	c := Config{
		MaxReplayCapacity: maxCapacity,
		MinReplayCapacity: minCapacity,
		SampleSize:        batchSize,
		Seed:              14,
	}
	buffer, err := c.Create(testFeatureSize, testActionSize)
	if err != nil {
		t.Fatalf("could not create replay buffer: %v", err)
	}
	return buffer
}

func TestCapacityNeverExceedsMax(t *testing.T) {
	buffer := newTestBuffer(t, 1, 8, 1)

	for i := 0; i < 30; i++ {
		if err := buffer.Add(testTransition(float64(i))); err != nil {
			t.Fatalf("could not add transition %v: %v", i, err)
		}
		if buffer.Capacity() > buffer.MaxCapacity() {
			t.Fatalf("capacity %v exceeds maximum %v after %v adds",
				buffer.Capacity(), buffer.MaxCapacity(), i+1)
		}
	}
	if buffer.Capacity() != buffer.MaxCapacity() {
		t.Errorf("over-filled buffer should be full \n\twant(%v) "+
			"\n\thave(%v)", buffer.MaxCapacity(), buffer.Capacity())
	}
}

// When the buffer has overflowed, only the most recently added
// transitions remain available for sampling
func TestOldestTransitionsEvicted(t *testing.T) {
	maxCapacity := 4
	buffer := newTestBuffer(t, maxCapacity, maxCapacity, maxCapacity)

	for i := 0; i < 2*maxCapacity; i++ {
		if err := buffer.Add(testTransition(float64(i))); err != nil {
			t.Fatalf("could not add transition %v: %v", i, err)
		}
	}

	// Batch size equals capacity and sampling is without replacement,
	// so one sample drains the entire buffer
	_, _, rewards, _, _, err := buffer.Sample()
	if err != nil {
		t.Fatalf("could not sample: %v", err)
	}

	seen := make(map[float64]bool)
	for _, r := range rewards {
		if r < float64(maxCapacity) {
			t.Errorf("sampled evicted transition with reward %v", r)
		}
		seen[r] = true
	}
	if len(seen) != maxCapacity {
		t.Errorf("expected the %v most recent transitions \n\thave(%v)",
			maxCapacity, len(seen))
	}
}

func TestSampleBatchSize(t *testing.T) {
	batchSize := 3
	buffer := newTestBuffer(t, batchSize, 16, batchSize)

	for i := 0; i < 10; i++ {
		if err := buffer.Add(testTransition(float64(i))); err != nil {
			t.Fatalf("could not add transition %v: %v", i, err)
		}
	}

	states, actions, rewards, discounts, nextStates, err := buffer.Sample()
	if err != nil {
		t.Fatalf("could not sample: %v", err)
	}

	if len(states) != batchSize*testFeatureSize {
		t.Errorf("wrong state batch length \n\twant(%v) \n\thave(%v)",
			batchSize*testFeatureSize, len(states))
	}
	if len(nextStates) != batchSize*testFeatureSize {
		t.Errorf("wrong next state batch length \n\twant(%v) \n\thave(%v)",
			batchSize*testFeatureSize, len(nextStates))
	}
	if len(actions) != batchSize*testActionSize {
		t.Errorf("wrong action batch length \n\twant(%v) \n\thave(%v)",
			batchSize*testActionSize, len(actions))
	}
	if len(rewards) != batchSize || len(discounts) != batchSize {
		t.Errorf("wrong reward/discount batch length \n\twant(%v) "+
			"\n\thave(%v, %v)", batchSize, len(rewards), len(discounts))
	}
}

// A minibatch never contains the same stored transition twice
func TestSampleWithoutReplacement(t *testing.T) {
	batchSize := 8
	buffer := newTestBuffer(t, batchSize, 8, batchSize)

	for i := 0; i < batchSize; i++ {
		if err := buffer.Add(testTransition(float64(i))); err != nil {
			t.Fatalf("could not add transition %v: %v", i, err)
		}
	}

	for trial := 0; trial < 10; trial++ {
		_, _, rewards, _, _, err := buffer.Sample()
		if err != nil {
			t.Fatalf("could not sample: %v", err)
		}

		seen := make(map[float64]bool)
		for _, r := range rewards {
			if seen[r] {
				t.Fatalf("transition with reward %v sampled twice in one "+
					"minibatch", r)
			}
			seen[r] = true
		}
	}
}

func TestSampleEmptyBuffer(t *testing.T) {
	buffer := newTestBuffer(t, 1, 8, 1)

	_, _, _, _, _, err := buffer.Sample()
	if err == nil {
		t.Fatal("sampling an empty buffer should fail")
	}
	if !IsEmptyBuffer(err) {
		t.Errorf("expected an empty buffer error \n\thave(%v)", err)
	}
}

func TestSampleInsufficientSamples(t *testing.T) {
	batchSize := 4
	buffer := newTestBuffer(t, batchSize, 8, batchSize)

	for i := 0; i < batchSize-1; i++ {
		if err := buffer.Add(testTransition(float64(i))); err != nil {
			t.Fatalf("could not add transition %v: %v", i, err)
		}
	}

	_, _, _, _, _, err := buffer.Sample()
	if err == nil {
		t.Fatal("sampling an under-filled buffer should fail")
	}
	if !IsInsufficientSamples(err) {
		t.Errorf("expected an insufficient samples error \n\thave(%v)", err)
	}
	if IsEmptyBuffer(err) {
		t.Errorf("buffer with %v samples is not empty", batchSize-1)
	}
}

func TestAddValidatesDimensions(t *testing.T) {
	buffer := newTestBuffer(t, 1, 8, 1)

	badState := ts.Transition{
		State:     mat.NewVecDense(testFeatureSize+1, nil),
		Action:    mat.NewVecDense(testActionSize, nil),
		NextState: mat.NewVecDense(testFeatureSize+1, nil),
	}
	if err := buffer.Add(badState); err == nil {
		t.Error("adding a transition with the wrong feature size should fail")
	}

	badAction := ts.Transition{
		State:     mat.NewVecDense(testFeatureSize, nil),
		Action:    mat.NewVecDense(testActionSize+1, nil),
		NextState: mat.NewVecDense(testFeatureSize, nil),
	}
	if err := buffer.Add(badAction); err == nil {
		t.Error("adding a transition with the wrong action size should fail")
	}
}

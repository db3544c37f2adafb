package trackers

import (
	"math"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	ts "github.com/Taxuspt/udacity-reinforcement-learning-collab/timestep"
)

// episode feeds a tracker one two-player episode whose players
// accumulate the given returns
func episode(tracker Tracker, returns [2]float64, length int) {
	for step := 0; step < length; step++ {
		stepType := ts.Mid
		if step == length-1 {
			stepType = ts.Last
		}

		steps := make([]ts.TimeStep, 2)
		for i := range steps {
			steps[i] = ts.New(stepType, returns[i]/float64(length), 1.0,
				mat.NewVecDense(1, nil), step+1)
		}
		tracker.Track(steps)
	}
}

func TestScoreTracksMaxOverPlayers(t *testing.T) {
	tracker := NewScore(filepath.Join(t.TempDir(), "scores.bin"))

	episode(tracker, [2]float64{1.0, 4.0}, 4)
	episode(tracker, [2]float64{2.0, -1.0}, 2)

	scores := tracker.Scores()
	if len(scores) != 2 {
		t.Fatalf("wrong number of episode scores \n\twant(%v) \n\thave(%v)",
			2, len(scores))
	}
	if math.Abs(scores[0]-4.0) > 1e-12 {
		t.Errorf("wrong first episode score \n\twant(%v) \n\thave(%v)", 4.0,
			scores[0])
	}
	if math.Abs(scores[1]-2.0) > 1e-12 {
		t.Errorf("wrong second episode score \n\twant(%v) \n\thave(%v)", 2.0,
			scores[1])
	}
}

func TestScoreSaveLoadRoundTrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "scores.bin")
	tracker := NewScore(filename)

	episode(tracker, [2]float64{1.0, 3.0}, 2)
	episode(tracker, [2]float64{0.5, 0.25}, 4)
	tracker.Save()

	loaded, err := LoadData(filename)
	if err != nil {
		t.Fatalf("could not load tracked data: %v", err)
	}

	scores := tracker.Scores()
	if len(loaded) != len(scores) {
		t.Fatalf("wrong number of loaded scores \n\twant(%v) \n\thave(%v)",
			len(scores), len(loaded))
	}
	for i := range scores {
		if loaded[i] != scores[i] {
			t.Errorf("loaded score %v differs \n\twant(%v) \n\thave(%v)", i,
				scores[i], loaded[i])
		}
	}
}

func TestMovingAverageWindow(t *testing.T) {
	tracker := NewMovingAverage(2, filepath.Join(t.TempDir(), "avg.bin"))

	episode(tracker, [2]float64{1.0, 0.0}, 2) // score 1
	episode(tracker, [2]float64{3.0, 0.0}, 2) // score 3
	episode(tracker, [2]float64{5.0, 0.0}, 2) // score 5

	averages := tracker.Averages()
	if len(averages) != 3 {
		t.Fatalf("wrong number of averages \n\twant(%v) \n\thave(%v)", 3,
			len(averages))
	}

	// Averages over a window of 2: [1], [1 3], [3 5]
	want := []float64{1.0, 2.0, 4.0}
	for i := range want {
		if math.Abs(averages[i]-want[i]) > 1e-12 {
			t.Errorf("wrong average %v \n\twant(%v) \n\thave(%v)", i,
				want[i], averages[i])
		}
	}
}

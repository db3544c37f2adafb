package trackers

import (
	"encoding/gob"
	"log"
	"os"

	ts "github.com/Taxuspt/udacity-reinforcement-learning-collab/timestep"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/utils/floatutils"
)

// MovingAverage tracks and saves the sliding-window average of the
// episodic score in a multi-agent experiment. After each completed
// episode, the average of the last window episode scores (or of all
// scores, while fewer than window episodes have completed) is
// recorded.
type MovingAverage struct {
	window         int
	currentReturns []float64
	episodeScores  []float64
	averages       []float64
	filename       string
}

// NewMovingAverage creates and returns a new *MovingAverage Tracker
// with the given window size that saves its data at filename
func NewMovingAverage(window int, filename string) *MovingAverage {
	return &MovingAverage{window: window, filename: filename}
}

// Track tracks the rewards seen on an environmental step, one TimeStep
// per player
func (m *MovingAverage) Track(steps []ts.TimeStep) {
	if m.currentReturns == nil {
		m.currentReturns = make([]float64, len(steps))
	}

	for i := range steps {
		m.currentReturns[i] += steps[i].Reward
	}

	if steps[0].Last() {
		m.episodeScores = append(m.episodeScores,
			floatutils.Max(m.currentReturns...))
		m.currentReturns = nil

		start := len(m.episodeScores) - m.window
		if start < 0 {
			start = 0
		}
		m.averages = append(m.averages,
			floatutils.Mean(m.episodeScores[start:]...))
	}
}

// Averages returns the moving averages recorded so far, one per
// completed episode
func (m *MovingAverage) Averages() []float64 {
	return m.averages
}

// Save saves the data tracked by the MovingAverage Tracker to disk
func (m *MovingAverage) Save() {
	file, err := os.Create(m.filename)
	if err != nil {
		log.Fatalf("could not open save file: %v", err)
	}
	defer file.Close()

	en := gob.NewEncoder(file)
	if err = en.Encode(m.averages); err != nil {
		log.Fatalf("could not encode moving average data: %v", err)
	}
}

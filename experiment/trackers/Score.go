package trackers

import (
	"encoding/gob"
	"log"
	"os"

	ts "github.com/Taxuspt/udacity-reinforcement-learning-collab/timestep"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/utils/floatutils"
)

// Score tracks and saves the episodic score in a multi-agent
// experiment. For each environmental step, this Tracker accumulates
// every player's reward separately; when an episode ends, the episode
// score is recorded as the maximum return over players.
//
// Note: An episode must finish for this Tracker to record its score.
// If the last episode in an experiment does not finish, that episode's
// score will not be saved.
type Score struct {
	currentReturns []float64
	episodeScores  []float64
	filename       string
}

// NewScore creates and returns a new *Score Tracker that saves its
// data at filename
func NewScore(filename string) *Score {
	return &Score{filename: filename}
}

// Track tracks the rewards seen on an environmental step, one TimeStep
// per player. When the step is the last in an episode, the maximum
// return over players is cached as that episode's score and tracking
// begins for a new episode.
func (s *Score) Track(steps []ts.TimeStep) {
	if s.currentReturns == nil {
		s.currentReturns = make([]float64, len(steps))
	}

	for i := range steps {
		s.currentReturns[i] += steps[i].Reward
	}

	if steps[0].Last() {
		s.episodeScores = append(s.episodeScores,
			floatutils.Max(s.currentReturns...))
		s.currentReturns = nil
	}
}

// Scores returns the episode scores recorded so far
func (s *Score) Scores() []float64 {
	return s.episodeScores
}

// Save saves the data tracked by the Score Tracker to disk
func (s *Score) Save() {
	file, err := os.Create(s.filename)
	if err != nil {
		log.Fatalf("could not open save file: %v", err)
	}
	defer file.Close()

	en := gob.NewEncoder(file)
	if err = en.Encode(s.episodeScores); err != nil {
		log.Fatalf("could not encode episode score data: %v", err)
	}
}

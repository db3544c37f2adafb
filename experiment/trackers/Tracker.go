// Package trackers implements functionality for tracking and saving
// data generated during an experiment
package trackers

import (
	"encoding/gob"
	"fmt"
	"os"

	ts "github.com/Taxuspt/udacity-reinforcement-learning-collab/timestep"
)

// Tracker tracks experiment data and saves it to disk. Experiments
// send every environmental step to each registered Tracker through
// Track(); the Tracker decides which data it caches. On a multi-agent
// environment, one TimeStep per player is sent for each environmental
// step.
type Tracker interface {
	Track(steps []ts.TimeStep)
	Save()
}

// LoadData loads the []float64 data saved by a Tracker at filename
func LoadData(filename string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loaddata: could not open data file: %v", err)
	}
	defer file.Close()

	var data []float64
	dec := gob.NewDecoder(file)
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("loaddata: could not decode data: %v", err)
	}

	return data, nil
}

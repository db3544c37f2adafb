// Package experiment implements functionality for running an experiment
package experiment

import (
	ts "github.com/Taxuspt/udacity-reinforcement-learning-collab/timestep"

	"github.com/Taxuspt/udacity-reinforcement-learning-collab/experiment/trackers"
)

// Interface Experiment outlines structs that can run experiments.
// Experiments track environment TimeSteps, caching data about each
// TimeStep in RAM to be later saved to disk. The Save() function
// takes all cached data and saves it to disk, usually after the
// experiment has been run. The Run() method runs episodes until some
// ending condition is reached. The RunEpisode() function runs a
// single episode and returns its score.
//
// In order to save data, Experiments use Trackers. Trackers determine
// which data generated during the experiment is saved. Experiments
// send every environmental step to each Tracker using the Tracker's
// Track() method. The Tracker then determines which data it caches
// and saves. New Trackers can be registered with an Experiment
// through the constructor or through an Experiment's Register()
// function.
type Experiment interface {
	Run() error
	RunEpisode() (float64, error)

	// Save all tracked data to disk
	Save()

	// Adds a new trackers.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t trackers.Tracker)

	// Tracks the current timesteps by sending them to Trackers
	track([]ts.TimeStep)
}

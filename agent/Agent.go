// Package agent defines an agent interface
package agent

import (
	"gonum.org/v1/gonum/mat"

	"github.com/Taxuspt/udacity-reinforcement-learning-collab/timestep"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns weights, and a
// Policy which chooses actions in each state. The Policy chooses which
// actions are taken, and the Learner uses these actions to update the
// Policy.
//
// A single Agent may drive every player in a multi-agent environment
// (self-play). In that case the Agent observes one timestep per player
// on every environmental step and stores each player's transition.
type Agent interface {
	Learner
	Policy
}

// Learner implements a learning algorithm that defines how weights are
// updated.
type Learner interface {
	// Step performs a single update to the learner
	Step() error

	// Observe records that each player's action led to some timestep
	Observe(actions []*mat.VecDense, nextSteps []timestep.TimeStep) error

	// ObserveFirst records the first timesteps in an episode, one per
	// player
	ObserveFirst(steps []timestep.TimeStep) error

	// EndEpisode performs cleanup at the end of an episode
	EndEpisode()
}

// Policy represents a policy that an agent can have.
//
// Policies determine how agents select actions. For a given agent, the
// Policy and Learner should share the same weights so that any changes
// the Learner makes to the weights are reflected in the actions the
// Policy chooses.
type Policy interface {
	SelectAction(t timestep.TimeStep) *mat.VecDense
	Eval()        // Set policy to evaluation mode
	Train()       // Set policy to training mode
	IsEval() bool // Indicates if in evaluation mode
}

// Package environment outlines the interfaces and structs needed to
// implement concrete multi-agent environments
package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/Taxuspt/udacity-reinforcement-learning-collab/timestep"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() mat.Vector
}

// Task implements the reward scheme for taking actions in some
// environment
type Task interface {
	Starter
	GetReward(state mat.Vector, action mat.Vector,
		nextState mat.Vector) float64
	AtGoal(state mat.Vector) bool
}

// Environment implements a simulated environment shared by some fixed
// number of agents. On each step, every agent submits one action and
// receives one TimeStep holding its own observation and reward. The
// boolean returned by Step indicates whether the episode finished on
// that step; an episode ends for all agents at once.
type Environment interface {
	// Reset resets the environment between episodes and returns one
	// starting TimeStep per agent
	Reset() []timestep.TimeStep

	// Step takes one action per agent
	Step(actions []*mat.VecDense) ([]timestep.TimeStep, bool, error)

	// NumAgents returns the number of agents acting in the environment
	NumAgents() int

	RewardSpec() Spec
	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
}

package timestep

import "gonum.org/v1/gonum/mat"

// Transition packages together a single environmental transition
// (S, A, R, γ, S') for learning. Transitions are immutable once
// created.
type Transition struct {
	State     mat.Vector
	Action    mat.Vector
	Reward    float64
	Discount  float64
	NextState mat.Vector
}

// NewTransition packages an environmental transition from the timestep
// at which the action was taken and the timestep that the action led
// to. The reward and discount are those of the resulting timestep.
func NewTransition(step TimeStep, action mat.Vector,
	nextStep TimeStep) Transition {
	return Transition{
		State:     step.Observation,
		Action:    action,
		Reward:    nextStep.Reward,
		Discount:  nextStep.Discount,
		NextState: nextStep.Observation,
	}
}

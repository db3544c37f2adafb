package ddpg

import (
	"fmt"

	"github.com/Taxuspt/udacity-reinforcement-learning-collab/expreplay"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/initwfn"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/network"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/solver"
)

// Config implements a configuration for a DDPG agent
type Config struct {
	// Actor network: state -> bounded action
	ActorLayers      []int                 // Hidden layer sizes
	ActorBiases      []bool                // Whether each layer has a bias
	ActorActivations []*network.Activation // Activation of each layer

	// Critic network: (state, action) -> scalar value estimate
	CriticLayers      []int
	CriticBiases      []bool
	CriticActivations []*network.Activation

	// Initialization algorithm for weights
	InitWFn *initwfn.InitWFn

	ActorSolver  *solver.Solver // Adapts the actor weights
	CriticSolver *solver.Solver // Adapts the critic weights

	// Experience replay parameters
	ExpReplay expreplay.Config

	Tau float64 // Polyak averaging constant for target networks

	// Learning is triggered once per UpdateEvery episodes; each
	// trigger performs LearningPasses minibatch updates
	UpdateEvery    int
	LearningPasses int

	// Ornstein-Uhlenbeck exploration noise parameters. The noise
	// sample is scaled by NoiseScale, which is multiplied by
	// NoiseDecay after every learning round.
	NoiseMu    float64
	NoiseTheta float64
	NoiseSigma float64
	NoiseScale float64
	NoiseDecay float64

	// CheckpointDir optionally warm starts the agent from previously
	// saved actor and critic weight files in this directory
	CheckpointDir string
}

// BatchSize returns the batch size of the agent constructed using this
// Config
func (c Config) BatchSize() int {
	return c.ExpReplay.SampleSize
}

// Validate checks a Config to ensure it is a valid configuration of a
// DDPG agent.
func (c Config) Validate() error {
	if len(c.ActorLayers) != len(c.ActorBiases) {
		return fmt.Errorf("config: invalid number of actor biases"+
			"\n\twant(%v)\n\thave(%v)", len(c.ActorLayers),
			len(c.ActorBiases))
	}
	if len(c.ActorLayers) != len(c.ActorActivations) {
		return fmt.Errorf("config: invalid number of actor activations"+
			"\n\twant(%v)\n\thave(%v)", len(c.ActorLayers),
			len(c.ActorActivations))
	}
	if len(c.CriticLayers) != len(c.CriticBiases) {
		return fmt.Errorf("config: invalid number of critic biases"+
			"\n\twant(%v)\n\thave(%v)", len(c.CriticLayers),
			len(c.CriticBiases))
	}
	if len(c.CriticLayers) != len(c.CriticActivations) {
		return fmt.Errorf("config: invalid number of critic activations"+
			"\n\twant(%v)\n\thave(%v)", len(c.CriticLayers),
			len(c.CriticActivations))
	}
	if c.Tau <= 0 || c.Tau > 1 {
		return fmt.Errorf("config: tau must be in (0, 1] \n\thave(%v)",
			c.Tau)
	}
	if c.UpdateEvery < 1 {
		return fmt.Errorf("config: learning must be triggered at positive "+
			"episode intervals \n\twant(>0) \n\thave(%v)", c.UpdateEvery)
	}
	if c.LearningPasses < 1 {
		return fmt.Errorf("config: need at least one learning pass per "+
			"trigger \n\thave(%v)", c.LearningPasses)
	}
	if c.NoiseDecay <= 0 || c.NoiseDecay > 1 {
		return fmt.Errorf("config: noise decay must be in (0, 1] "+
			"\n\thave(%v)", c.NoiseDecay)
	}
	if c.ActorSolver == nil || c.CriticSolver == nil {
		return fmt.Errorf("config: both actor and critic solvers are " +
			"required")
	}
	if c.InitWFn == nil {
		return fmt.Errorf("config: weight initializer is required")
	}
	return nil
}

// Package ddpg implements the Deep Deterministic Policy Gradient
// algorithm for continuous control. A single DDPG agent may drive
// every player in a multi-agent environment through self-play, with
// the transitions of all players stored in one shared replay buffer.
package ddpg

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/Taxuspt/udacity-reinforcement-learning-collab/environment"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/expreplay"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/network"
	ts "github.com/Taxuspt/udacity-reinforcement-learning-collab/timestep"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/utils/floatutils"
)

const (
	// MinAction and MaxAction bound each component of a selected
	// action
	MinAction float64 = -1.0
	MaxAction float64 = 1.0

	// Checkpoint file names
	ActorCheckpoint  string = "checkpoint_actor.bin"
	CriticCheckpoint string = "checkpoint_critic.bin"
)

// DDPG implements the Deep Deterministic Policy Gradient algorithm:
//
//	critic loss:  mean[(r + γ * Q'(s', μ'(s')) - Q(s, a))²]
//	actor loss:   -mean[Q(s, μ(s))]
//
// where Q' and μ' are target networks tracking the train critic Q and
// train actor μ through Polyak averaging.
type DDPG struct {
	// Behaviour actor selects actions for single observations
	behaviourActor network.NeuralNet
	behaviourVM    G.VM

	// Train actor learns the policy weights. Its graph also holds a
	// copy of the critic mounted on the actor's output node, through
	// which the policy gradient flows.
	trainActor  network.NeuralNet
	actorCritic network.NeuralNet
	actorVM     G.VM
	actorSolver G.Solver

	// Train critic learns the value estimate
	trainCritic  network.NeuralNet
	criticStates *G.Node
	criticAction *G.Node
	criticVM     G.VM
	criticSolver G.Solver

	// Target networks provide the update target
	targetActor        network.NeuralNet
	targetActorVM      G.VM
	targetCritic       network.NeuralNet
	targetCriticStates *G.Node
	targetCriticAction *G.Node
	targetCriticVM     G.VM

	// Placeholder nodes of the critic's update target:
	// r + γ * Q'(s', μ'(s'))
	nextStateValues *G.Node
	rewards         *G.Node
	discounts       *G.Node

	replay expreplay.ExperienceReplayer
	noise  *OUNoise

	tau            float64
	updateEvery    int
	learningPasses int
	noiseScale     float64
	noiseDecay     float64

	// Timesteps of the current environmental step, one per player
	currentSteps []ts.TimeStep

	episodes           int
	lastEpisodeTrained int

	stateSize  int
	actionSize int
	batchSize  int
	eval       bool
}

// New creates and returns a new DDPG agent acting in the argument
// environment
func New(env environment.Environment, config Config,
	seed uint64) (*DDPG, error) {
	if env.ActionSpec().Cardinality != environment.Continuous {
		return nil, fmt.Errorf("ddpg: cannot use non-continuous actions")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	stateSize := env.ObservationSpec().Shape.Len()
	actionSize := env.ActionSpec().Shape.Len()
	batchSize := config.BatchSize()
	init := config.InitWFn.InitWFn()

	// Train actor: μ(s) at batch size. The graph is built from an
	// explicit state node so the critic can later be mounted on the
	// actor's output.
	gActor := G.NewGraph()
	actorStates := G.NewMatrix(gActor, tensor.Float64,
		G.WithShape(batchSize, stateSize), G.WithName("actorInput"),
		G.WithInit(G.Zeroes()))
	trainActor, err := network.NewMLPFromInputs([]*G.Node{actorStates},
		actionSize, gActor, config.ActorLayers, config.ActorBiases,
		config.ActorActivations, network.TanH(), init, "actor")
	if err != nil {
		return nil, fmt.Errorf("ddpg: could not create actor: %v", err)
	}

	// Train critic: Q(s, a) at batch size with separate state and
	// action input nodes
	gCritic := G.NewGraph()
	criticStates := G.NewMatrix(gCritic, tensor.Float64,
		G.WithShape(batchSize, stateSize), G.WithName("criticStates"),
		G.WithInit(G.Zeroes()))
	criticAction := G.NewMatrix(gCritic, tensor.Float64,
		G.WithShape(batchSize, actionSize), G.WithName("criticActions"),
		G.WithInit(G.Zeroes()))
	trainCritic, err := network.NewMLPFromInputs(
		[]*G.Node{criticStates, criticAction}, 1, gCritic,
		config.CriticLayers, config.CriticBiases, config.CriticActivations,
		network.Identity(), init, "critic")
	if err != nil {
		return nil, fmt.Errorf("ddpg: could not create critic: %v", err)
	}

	// Critic update target: r + γ * Q'(s', μ'(s')). The next state
	// values are computed by the target networks and fed in through a
	// placeholder. Termination is handled by the transition's stored
	// discount, which is zero on terminal steps.
	nextStateValues := G.NewVector(gCritic, tensor.Float64,
		G.WithShape(batchSize), G.WithName("nextStateValues"))
	rewards := G.NewVector(gCritic, tensor.Float64, G.WithShape(batchSize),
		G.WithName("rewards"))
	discounts := G.NewVector(gCritic, tensor.Float64, G.WithShape(batchSize),
		G.WithName("discounts"))

	updateTarget := G.Must(G.HadamardProd(nextStateValues, discounts))
	updateTarget = G.Must(G.Add(updateTarget, rewards))

	// Mean squared TD error
	qsa := G.Must(G.Reshape(trainCritic.Prediction(),
		tensor.Shape{batchSize}))
	losses := G.Must(G.Sub(updateTarget, qsa))
	losses = G.Must(G.Square(losses))
	criticCost := G.Must(G.Mean(losses))

	if _, err := G.Grad(criticCost, trainCritic.Learnables()...); err != nil {
		return nil, fmt.Errorf("ddpg: could not compute critic gradient: %v",
			err)
	}
	criticVM := G.NewTapeMachine(gCritic,
		G.BindDualValues(trainCritic.Learnables()...))

	// Mount a copy of the critic on the actor's output so that the
	// policy gradient can flow through the critic into the actor
	// weights. Only the actor's learnables are updated through this
	// graph.
	actorCritic, err := trainCritic.CloneWithInputsTo(1,
		[]*G.Node{actorStates, trainActor.Prediction()}, gActor)
	if err != nil {
		return nil, fmt.Errorf("ddpg: could not mount critic on actor: %v",
			err)
	}

	actorCost := G.Must(G.Mean(actorCritic.Prediction()))
	actorCost = G.Must(G.Neg(actorCost))

	if _, err := G.Grad(actorCost, trainActor.Learnables()...); err != nil {
		return nil, fmt.Errorf("ddpg: could not compute actor gradient: %v",
			err)
	}
	actorVM := G.NewTapeMachine(gActor,
		G.BindDualValues(trainActor.Learnables()...))

	// Behaviour actor selects single actions. Cloning preserves the
	// train actor's initial weights.
	behaviourActor, err := trainActor.CloneWithBatch(1)
	if err != nil {
		return nil, fmt.Errorf("ddpg: could not create behaviour actor: %v",
			err)
	}
	behaviourVM := G.NewTapeMachine(behaviourActor.Graph())

	// Target networks start equal to their train counterparts
	targetActor, err := trainActor.Clone()
	if err != nil {
		return nil, fmt.Errorf("ddpg: could not create target actor: %v",
			err)
	}
	targetActorVM := G.NewTapeMachine(targetActor.Graph())

	gTargetCritic := G.NewGraph()
	targetCriticStates := G.NewMatrix(gTargetCritic, tensor.Float64,
		G.WithShape(batchSize, stateSize), G.WithName("criticStates"),
		G.WithInit(G.Zeroes()))
	targetCriticAction := G.NewMatrix(gTargetCritic, tensor.Float64,
		G.WithShape(batchSize, actionSize), G.WithName("criticActions"),
		G.WithInit(G.Zeroes()))
	targetCritic, err := trainCritic.CloneWithInputsTo(1,
		[]*G.Node{targetCriticStates, targetCriticAction}, gTargetCritic)
	if err != nil {
		return nil, fmt.Errorf("ddpg: could not create target critic: %v",
			err)
	}
	targetCriticVM := G.NewTapeMachine(gTargetCritic)

	replay, err := config.ExpReplay.Create(stateSize, actionSize)
	if err != nil {
		return nil, fmt.Errorf("ddpg: could not create experience replay "+
			"buffer: %v", err)
	}

	noise := NewOUNoise(actionSize, config.NoiseMu, config.NoiseTheta,
		config.NoiseSigma, seed)

	agent := &DDPG{
		behaviourActor: behaviourActor,
		behaviourVM:    behaviourVM,

		trainActor:  trainActor,
		actorCritic: actorCritic,
		actorVM:     actorVM,
		actorSolver: config.ActorSolver,

		trainCritic:  trainCritic,
		criticStates: criticStates,
		criticAction: criticAction,
		criticVM:     criticVM,
		criticSolver: config.CriticSolver,

		targetActor:        targetActor,
		targetActorVM:      targetActorVM,
		targetCritic:       targetCritic,
		targetCriticStates: targetCriticStates,
		targetCriticAction: targetCriticAction,
		targetCriticVM:     targetCriticVM,

		nextStateValues: nextStateValues,
		rewards:         rewards,
		discounts:       discounts,

		replay: replay,
		noise:  noise,

		tau:            config.Tau,
		updateEvery:    config.UpdateEvery,
		learningPasses: config.LearningPasses,
		noiseScale:     config.NoiseScale,
		noiseDecay:     config.NoiseDecay,

		episodes:           0,
		lastEpisodeTrained: -1,

		stateSize:  stateSize,
		actionSize: actionSize,
		batchSize:  batchSize,
	}

	if config.CheckpointDir != "" {
		if err := agent.Load(config.CheckpointDir); err != nil {
			return nil, fmt.Errorf("ddpg: could not warm start agent: %v",
				err)
		}
	}

	return agent, nil
}

// ObserveFirst records the first timesteps in an episode, one per
// player
func (d *DDPG) ObserveFirst(steps []ts.TimeStep) error {
	for i := range steps {
		if !steps[i].First() {
			fmt.Fprintf(os.Stderr, "Warning: ObserveFirst() should only be "+
				"called on the first timestep (current timestep = %d)\n",
				steps[i].Number)
		}
	}
	d.currentSteps = steps
	return nil
}

// Observe records that each player's action led to some timestep and
// stores every player's transition in the shared replay buffer
func (d *DDPG) Observe(actions []*mat.VecDense,
	nextSteps []ts.TimeStep) error {
	if len(actions) != len(d.currentSteps) ||
		len(nextSteps) != len(d.currentSteps) {
		return fmt.Errorf("observe: expected %v actions and timesteps "+
			"\n\thave(%v, %v)", len(d.currentSteps), len(actions),
			len(nextSteps))
	}

	for i := range nextSteps {
		transition := ts.NewTransition(d.currentSteps[i], actions[i],
			nextSteps[i])
		if err := d.replay.Add(transition); err != nil {
			return fmt.Errorf("observe: could not store transition: %v", err)
		}
	}

	d.currentSteps = nextSteps
	return nil
}

// Step updates the weights of the agent's networks. Learning triggers
// once per updateEvery episodes; each trigger performs learningPasses
// minibatch updates, after which the exploration noise is decayed and
// reset.
func (d *DDPG) Step() error {
	if d.episodes%d.updateEvery != 0 ||
		d.lastEpisodeTrained == d.episodes {
		return nil
	}

	for pass := 0; pass < d.learningPasses; pass++ {
		err := d.learn()
		if expreplay.IsEmptyBuffer(err) ||
			expreplay.IsInsufficientSamples(err) {
			// Not enough experience yet
			return nil
		}
		if err != nil {
			return fmt.Errorf("step: could not learn: %v", err)
		}
	}

	d.lastEpisodeTrained = d.episodes
	d.noiseScale *= d.noiseDecay
	d.noise.Reset()

	return nil
}

// learn performs a single minibatch update of the critic and actor,
// followed by a soft update of both target networks
func (d *DDPG) learn() error {
	states, actions, rewards, discounts, nextStates, err := d.replay.Sample()
	if err != nil {
		return err
	}

	// Predict the target policy's actions in the next states:
	// μ'(s')
	if err := d.targetActor.SetInput(nextStates); err != nil {
		return fmt.Errorf("learn: could not set target actor input: %v", err)
	}
	if err := d.targetActorVM.RunAll(); err != nil {
		return fmt.Errorf("learn: could not run target actor: %v", err)
	}
	nextActions := make([]float64, d.batchSize*d.actionSize)
	copy(nextActions, d.targetActor.Output().Data().([]float64))
	d.targetActorVM.Reset()

	// Predict the next state-action values: Q'(s', μ'(s'))
	err = G.Let(d.targetCriticStates, tensor.New(
		tensor.WithBacking(nextStates),
		tensor.WithShape(d.batchSize, d.stateSize)))
	if err != nil {
		return fmt.Errorf("learn: could not set target critic states: %v",
			err)
	}
	err = G.Let(d.targetCriticAction, tensor.New(
		tensor.WithBacking(nextActions),
		tensor.WithShape(d.batchSize, d.actionSize)))
	if err != nil {
		return fmt.Errorf("learn: could not set target critic actions: %v",
			err)
	}
	if err := d.targetCriticVM.RunAll(); err != nil {
		return fmt.Errorf("learn: could not run target critic: %v", err)
	}
	nextValues := make([]float64, d.batchSize)
	copy(nextValues, d.targetCritic.Output().Data().([]float64))
	d.targetCriticVM.Reset()

	// Update the critic on the mean squared TD error
	err = G.Let(d.criticStates, tensor.New(tensor.WithBacking(states),
		tensor.WithShape(d.batchSize, d.stateSize)))
	if err != nil {
		return fmt.Errorf("learn: could not set critic states: %v", err)
	}
	err = G.Let(d.criticAction, tensor.New(tensor.WithBacking(actions),
		tensor.WithShape(d.batchSize, d.actionSize)))
	if err != nil {
		return fmt.Errorf("learn: could not set critic actions: %v", err)
	}
	err = G.Let(d.nextStateValues, tensor.New(
		tensor.WithBacking(nextValues), tensor.WithShape(d.batchSize)))
	if err != nil {
		return fmt.Errorf("learn: could not set next state values: %v", err)
	}
	err = G.Let(d.rewards, tensor.New(tensor.WithBacking(rewards),
		tensor.WithShape(d.batchSize)))
	if err != nil {
		return fmt.Errorf("learn: could not set rewards: %v", err)
	}
	err = G.Let(d.discounts, tensor.New(tensor.WithBacking(discounts),
		tensor.WithShape(d.batchSize)))
	if err != nil {
		return fmt.Errorf("learn: could not set discounts: %v", err)
	}

	if err := d.criticVM.RunAll(); err != nil {
		return fmt.Errorf("learn: could not run critic update: %v", err)
	}
	if err := d.criticSolver.Step(d.trainCritic.Model()); err != nil {
		return fmt.Errorf("learn: could not step critic solver: %v", err)
	}
	d.criticVM.Reset()

	// Refresh the critic copy mounted on the actor with the newly
	// learned critic weights, then ascend the critic's value estimate
	// with respect to the actor weights
	if err := d.actorCritic.Set(d.trainCritic); err != nil {
		return fmt.Errorf("learn: could not sync mounted critic: %v", err)
	}
	if err := d.trainActor.SetInput(states); err != nil {
		return fmt.Errorf("learn: could not set actor input: %v", err)
	}
	if err := d.actorVM.RunAll(); err != nil {
		return fmt.Errorf("learn: could not run actor update: %v", err)
	}
	if err := d.actorSolver.Step(d.trainActor.Model()); err != nil {
		return fmt.Errorf("learn: could not step actor solver: %v", err)
	}
	d.actorVM.Reset()

	// Soft update both target networks toward their train counterparts
	if err := d.targetCritic.Polyak(d.trainCritic, d.tau); err != nil {
		return fmt.Errorf("learn: could not update target critic: %v", err)
	}
	if err := d.targetActor.Polyak(d.trainActor, d.tau); err != nil {
		return fmt.Errorf("learn: could not update target actor: %v", err)
	}

	// The behaviour actor acts with the newly learned weights
	if err := d.behaviourActor.Set(d.trainActor); err != nil {
		return fmt.Errorf("learn: could not sync behaviour actor: %v", err)
	}

	return nil
}

// SelectAction returns an action for the argument timestep's
// observation under the current policy. In training mode, decaying
// Ornstein-Uhlenbeck noise is added for exploration. Each component of
// the returned action is clipped to [MinAction, MaxAction].
func (d *DDPG) SelectAction(t ts.TimeStep) *mat.VecDense {
	obs := mat.Col(nil, 0, t.Observation)
	if err := d.behaviourActor.SetInput(obs); err != nil {
		panic(fmt.Sprintf("selectaction: %v", err))
	}
	if err := d.behaviourVM.RunAll(); err != nil {
		panic(fmt.Sprintf("selectaction: could not run policy: %v", err))
	}

	action := make([]float64, d.actionSize)
	copy(action, d.behaviourActor.Output().Data().([]float64))
	d.behaviourVM.Reset()

	if !d.eval {
		sample := d.noise.Sample()
		for i := range action {
			action[i] += d.noiseScale * sample[i]
		}
	}

	floatutils.ClipSlice(action, MinAction, MaxAction)
	return mat.NewVecDense(d.actionSize, action)
}

// EndEpisode performs cleanup at the end of an episode
func (d *DDPG) EndEpisode() {
	d.episodes++
}

// Eval sets the agent into evaluation mode, disabling exploration
// noise
func (d *DDPG) Eval() {
	d.eval = true
}

// Train sets the agent into training mode
func (d *DDPG) Train() {
	d.eval = false
}

// IsEval returns whether the agent is in evaluation mode
func (d *DDPG) IsEval() bool {
	return d.eval
}

// NoiseScale returns the current scale applied to exploration noise
func (d *DDPG) NoiseScale() float64 {
	return d.noiseScale
}

// Save writes the actor and critic weights to checkpoint files in dir
func (d *DDPG) Save(dir string) error {
	for _, checkpoint := range []struct {
		filename string
		net      network.NeuralNet
	}{
		{ActorCheckpoint, d.trainActor},
		{CriticCheckpoint, d.trainCritic},
	} {
		file, err := os.Create(filepath.Join(dir, checkpoint.filename))
		if err != nil {
			return fmt.Errorf("save: could not create checkpoint file: %v",
				err)
		}
		err = network.Save(file, checkpoint.net)
		file.Close()
		if err != nil {
			return fmt.Errorf("save: %v", err)
		}
	}
	return nil
}

// Load reads actor and critic weights from checkpoint files in dir and
// copies them into every network of the agent
func (d *DDPG) Load(dir string) error {
	actorFile, err := os.Open(filepath.Join(dir, ActorCheckpoint))
	if err != nil {
		return fmt.Errorf("load: could not open actor checkpoint: %v", err)
	}
	actor, err := network.Load(actorFile)
	actorFile.Close()
	if err != nil {
		return fmt.Errorf("load: %v", err)
	}

	criticFile, err := os.Open(filepath.Join(dir, CriticCheckpoint))
	if err != nil {
		return fmt.Errorf("load: could not open critic checkpoint: %v", err)
	}
	critic, err := network.Load(criticFile)
	criticFile.Close()
	if err != nil {
		return fmt.Errorf("load: %v", err)
	}

	for _, pair := range []struct {
		dest network.NeuralNet
		src  network.NeuralNet
	}{
		{d.trainActor, actor},
		{d.behaviourActor, actor},
		{d.targetActor, actor},
		{d.trainCritic, critic},
		{d.actorCritic, critic},
		{d.targetCritic, critic},
	} {
		if err := pair.dest.Set(pair.src); err != nil {
			return fmt.Errorf("load: could not set weights: %v", err)
		}
	}

	return nil
}

// Close closes the agent's virtual machines. The agent cannot be used
// after it is closed.
func (d *DDPG) Close() error {
	for _, vm := range []G.VM{d.behaviourVM, d.actorVM, d.criticVM,
		d.targetActorVM, d.targetCriticVM} {
		if err := vm.Close(); err != nil {
			return fmt.Errorf("close: could not close VM: %v", err)
		}
	}
	return nil
}

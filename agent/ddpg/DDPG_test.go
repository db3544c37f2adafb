package ddpg

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/Taxuspt/udacity-reinforcement-learning-collab/environment/tennis"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/expreplay"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/initwfn"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/network"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/solver"
	ts "github.com/Taxuspt/udacity-reinforcement-learning-collab/timestep"
)

func testConfig(t *testing.T, updateEvery, learningPasses,
	batchSize int) Config {
	init, err := initwfn.NewGlorotU(1.0)
	if err != nil {
		t.Fatalf("could not create weight initializer: %v", err)
	}
	actorSolver, err := solver.NewDefaultAdam(1e-3, batchSize)
	if err != nil {
		t.Fatalf("could not create actor solver: %v", err)
	}
	criticSolver, err := solver.NewDefaultAdam(1e-3, batchSize)
	if err != nil {
		t.Fatalf("could not create critic solver: %v", err)
	}

	return Config{
		ActorLayers:      []int{8},
		ActorBiases:      []bool{true},
		ActorActivations: []*network.Activation{network.ReLU()},

		CriticLayers:      []int{8},
		CriticBiases:      []bool{true},
		CriticActivations: []*network.Activation{network.ReLU()},

		InitWFn:      init,
		ActorSolver:  actorSolver,
		CriticSolver: criticSolver,

		ExpReplay: expreplay.Config{
			MaxReplayCapacity: 64,
			MinReplayCapacity: batchSize,
			SampleSize:        batchSize,
			Seed:              14,
		},

		Tau:            1e-2,
		UpdateEvery:    updateEvery,
		LearningPasses: learningPasses,

		NoiseMu:    0.0,
		NoiseTheta: 0.15,
		NoiseSigma: 0.2,
		NoiseScale: 1.0,
		NoiseDecay: 0.9,
	}
}

func newTestAgent(t *testing.T, updateEvery, learningPasses,
	batchSize int) (*DDPG, *tennis.Tennis, []ts.TimeStep) {
	env, firstSteps := tennis.New(tennis.NewRally(14), 0.99, 1000)

	agent, err := New(env, testConfig(t, updateEvery, learningPasses,
		batchSize), 14)
	if err != nil {
		t.Fatalf("could not create agent: %v", err)
	}
	return agent, env, firstSteps
}

// Every component of a selected action stays in [MinAction, MaxAction]
// whether or not exploration noise is added
func TestSelectActionBounds(t *testing.T) {
	agent, env, _ := newTestAgent(t, 16, 1, 4)
	defer agent.Close()

	for _, eval := range []bool{false, true} {
		if eval {
			agent.Eval()
		} else {
			agent.Train()
		}

		steps := env.Reset()
		for i := 0; i < 50; i++ {
			for player := range steps {
				action := agent.SelectAction(steps[player])
				if action.Len() != tennis.ActionDims {
					t.Fatalf("wrong action size \n\twant(%v) \n\thave(%v)",
						tennis.ActionDims, action.Len())
				}
				for j := 0; j < action.Len(); j++ {
					a := action.AtVec(j)
					if a < MinAction || a > MaxAction {
						t.Fatalf("action component %v out of bounds "+
							"(eval=%v): %v", j, eval, a)
					}
				}
			}
			steps = env.Reset()
		}
	}
}

// In evaluation mode the policy is deterministic
func TestEvalDisablesNoise(t *testing.T) {
	agent, _, steps := newTestAgent(t, 16, 1, 4)
	defer agent.Close()

	agent.Eval()
	if !agent.IsEval() {
		t.Fatal("agent should report evaluation mode")
	}

	first := agent.SelectAction(steps[0])
	second := agent.SelectAction(steps[0])
	if !mat.EqualApprox(first, second, 1e-15) {
		t.Errorf("evaluation-mode actions differ for the same "+
			"observation \n\thave(%v, %v)", mat.Formatted(first.T()),
			mat.Formatted(second.T()))
	}
}

// Learning triggers once per updateEvery episodes; each trigger decays
// the exploration noise scale
func TestLearningGatedOnEpisodes(t *testing.T) {
	agent, env, steps := newTestAgent(t, 2, 1, 4)
	defer agent.Close()

	if err := agent.ObserveFirst(steps); err != nil {
		t.Fatalf("could not observe first steps: %v", err)
	}

	// Generate experience
	actions := make([]*mat.VecDense, len(steps))
	for i := 0; i < 10; i++ {
		for player := range steps {
			actions[player] = agent.SelectAction(steps[player])
		}
		next, done, err := env.Step(actions)
		if err != nil {
			t.Fatalf("could not step environment: %v", err)
		}
		if err := agent.Observe(actions, next); err != nil {
			t.Fatalf("could not observe: %v", err)
		}
		steps = next
		if done {
			steps = env.Reset()
			if err := agent.ObserveFirst(steps); err != nil {
				t.Fatalf("could not observe first steps: %v", err)
			}
		}
	}

	scale := agent.NoiseScale()

	// Odd episode count: the gate keeps the agent from learning
	agent.EndEpisode()
	if err := agent.Step(); err != nil {
		t.Fatalf("could not step agent: %v", err)
	}
	if agent.NoiseScale() != scale {
		t.Fatal("agent learned off the episode schedule")
	}

	// Even episode count: a learning round runs and decays the noise
	agent.EndEpisode()
	if err := agent.Step(); err != nil {
		t.Fatalf("could not step agent: %v", err)
	}
	if agent.NoiseScale() >= scale {
		t.Fatalf("noise scale should decay after a learning round "+
			"\n\twant(< %v) \n\thave(%v)", scale, agent.NoiseScale())
	}

	// A second Step in the same episode must not learn again
	scale = agent.NoiseScale()
	if err := agent.Step(); err != nil {
		t.Fatalf("could not step agent: %v", err)
	}
	if agent.NoiseScale() != scale {
		t.Fatal("agent learned twice in the same episode")
	}
}

func TestConfigValidate(t *testing.T) {
	valid := testConfig(t, 16, 16, 4)
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	invalid := valid
	invalid.ActorBiases = []bool{true, false}
	if err := invalid.Validate(); err == nil {
		t.Error("mismatched actor biases accepted")
	}

	invalid = valid
	invalid.Tau = 0
	if err := invalid.Validate(); err == nil {
		t.Error("zero tau accepted")
	}

	invalid = valid
	invalid.UpdateEvery = 0
	if err := invalid.Validate(); err == nil {
		t.Error("zero update interval accepted")
	}

	invalid = valid
	invalid.NoiseDecay = 1.5
	if err := invalid.Validate(); err == nil {
		t.Error("noise decay above 1 accepted")
	}
}

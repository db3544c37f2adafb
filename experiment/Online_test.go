package experiment

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	env "github.com/Taxuspt/udacity-reinforcement-learning-collab/environment"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/experiment/checkpointer"
	ts "github.com/Taxuspt/udacity-reinforcement-learning-collab/timestep"
)

// mockEnv is a two-player environment with fixed-length episodes and a
// deterministic per-player reward on every step
type mockEnv struct {
	episodeLength int
	rewards       []float64
	stepNum       int
}

func (m *mockEnv) steps(stepType ts.StepType, rewarded bool) []ts.TimeStep {
	out := make([]ts.TimeStep, len(m.rewards))
	for i := range out {
		reward := 0.0
		if rewarded {
			reward = m.rewards[i]
		}
		discount := 1.0
		if stepType == ts.Last {
			discount = 0.0
		}
		out[i] = ts.New(stepType, reward, discount, mat.NewVecDense(1, nil),
			m.stepNum)
	}
	return out
}

func (m *mockEnv) Reset() []ts.TimeStep {
	m.stepNum = 0
	return m.steps(ts.First, false)
}

func (m *mockEnv) Step(actions []*mat.VecDense) ([]ts.TimeStep, bool,
	error) {
	m.stepNum++
	stepType := ts.Mid
	if m.stepNum >= m.episodeLength {
		stepType = ts.Last
	}
	out := m.steps(stepType, true)
	return out, stepType == ts.Last, nil
}

func (m *mockEnv) NumAgents() int { return len(m.rewards) }

func (m *mockEnv) spec(t env.SpecType, dims int) env.Spec {
	shape := mat.NewVecDense(dims, nil)
	return env.NewSpec(shape, t, mat.NewVecDense(dims, nil),
		mat.NewVecDense(dims, nil), env.Continuous)
}

func (m *mockEnv) RewardSpec() env.Spec      { return m.spec(env.Reward, 1) }
func (m *mockEnv) DiscountSpec() env.Spec    { return m.spec(env.Discount, 1) }
func (m *mockEnv) ObservationSpec() env.Spec { return m.spec(env.Observation, 1) }
func (m *mockEnv) ActionSpec() env.Spec      { return m.spec(env.Action, 1) }

// mockAgent selects zero actions and never learns
type mockAgent struct {
	episodes int
}

func (m *mockAgent) Step() error { return nil }

func (m *mockAgent) Observe(actions []*mat.VecDense,
	nextSteps []ts.TimeStep) error {
	return nil
}

func (m *mockAgent) ObserveFirst(steps []ts.TimeStep) error { return nil }

func (m *mockAgent) EndEpisode() { m.episodes++ }

func (m *mockAgent) SelectAction(t ts.TimeStep) *mat.VecDense {
	return mat.NewVecDense(1, nil)
}

func (m *mockAgent) Eval()        {}
func (m *mockAgent) Train()       {}
func (m *mockAgent) IsEval() bool { return false }

// countingSaver records how many times an experiment checkpointed
type countingSaver struct {
	saves int
}

func (c *countingSaver) Save(dir string) error {
	c.saves++
	return nil
}

// The score of an episode is the maximum return over the players
func TestEpisodeScoreIsMaxOverPlayers(t *testing.T) {
	environment := &mockEnv{episodeLength: 3, rewards: []float64{1, 2}}
	agent := new(mockAgent)

	e := NewOnline(environment, agent, 1, 100, nil, nil)
	score, err := e.RunEpisode()
	if err != nil {
		t.Fatalf("could not run episode: %v", err)
	}

	// Player returns are 3 and 6; the episode scores the larger
	if score != 6 {
		t.Errorf("wrong episode score \n\twant(%v) \n\thave(%v)", 6, score)
	}
	if agent.episodes != 1 {
		t.Errorf("agent should see one episode end \n\thave(%v)",
			agent.episodes)
	}
}

// With a constant reward schedule the window average equals the
// arithmetic mean of the per-episode scores
func TestWindowAverage(t *testing.T) {
	environment := &mockEnv{episodeLength: 4, rewards: []float64{0.5, 0.25}}
	agent := new(mockAgent)

	episodes := 100
	e := NewOnline(environment, agent, episodes, 100, nil, nil)
	if err := e.Run(); err != nil {
		t.Fatalf("could not run experiment: %v", err)
	}

	scores := e.Scores()
	if len(scores) != episodes {
		t.Fatalf("wrong number of episodes \n\twant(%v) \n\thave(%v)",
			episodes, len(scores))
	}

	mean := 0.0
	for _, s := range scores {
		mean += s
	}
	mean /= float64(len(scores))

	if math.Abs(e.WindowAverage()-mean) > 1e-12 {
		t.Errorf("window average over a full window should equal the "+
			"mean \n\twant(%v) \n\thave(%v)", mean, e.WindowAverage())
	}

	// Every episode of the fixed schedule scores 4 * 0.5
	if math.Abs(e.WindowAverage()-2.0) > 1e-12 {
		t.Errorf("wrong window average \n\twant(%v) \n\thave(%v)", 2.0,
			e.WindowAverage())
	}
}

// An experiment with a target stops as soon as the window average
// reaches it after a full window of episodes
func TestEarlyStopAtTarget(t *testing.T) {
	environment := &mockEnv{episodeLength: 2, rewards: []float64{1, 0}}
	agent := new(mockAgent)

	window := 10
	e := NewOnline(environment, agent, 1000, window, nil, nil)
	e.StopAtTarget(1.5) // every episode scores 2

	if err := e.Run(); err != nil {
		t.Fatalf("could not run experiment: %v", err)
	}

	if e.SolvedAt() != window-1 {
		t.Errorf("experiment should stop after the first full window "+
			"\n\twant(%v) \n\thave(%v)", window-1, e.SolvedAt())
	}
	if len(e.Scores()) != window {
		t.Errorf("wrong number of episodes run \n\twant(%v) \n\thave(%v)",
			window, len(e.Scores()))
	}
}

// Without a target the experiment runs its entire episode budget and
// reports it was never solved
func TestNoEarlyStopWithoutTarget(t *testing.T) {
	environment := &mockEnv{episodeLength: 2, rewards: []float64{1, 0}}
	agent := new(mockAgent)

	episodes := 25
	e := NewOnline(environment, agent, episodes, 10, nil, nil)
	if err := e.Run(); err != nil {
		t.Fatalf("could not run experiment: %v", err)
	}

	if len(e.Scores()) != episodes {
		t.Errorf("wrong number of episodes \n\twant(%v) \n\thave(%v)",
			episodes, len(e.Scores()))
	}
	if e.SolvedAt() != -1 {
		t.Errorf("experiment without a target should not report being "+
			"solved \n\thave(%v)", e.SolvedAt())
	}
}

// A best-score checkpointer saves on the first positive window
// average and again on every new best
func TestBestScoreCheckpointing(t *testing.T) {
	environment := &mockEnv{episodeLength: 2, rewards: []float64{0.3, 0}}
	agent := new(mockAgent)

	saver := new(countingSaver)
	best := checkpointer.NewBestScore(saver, t.TempDir())

	episodes := 5
	e := NewOnline(environment, agent, episodes, 10,
		nil, []checkpointer.Checkpointer{best})
	if err := e.Run(); err != nil {
		t.Fatalf("could not run experiment: %v", err)
	}

	// Each episode scores 0.6, so the window average is 0.6 after
	// every episode: only the first strictly exceeds the running best
	if saver.saves != 1 {
		t.Errorf("wrong number of checkpoints \n\twant(%v) \n\thave(%v)",
			1, saver.saves)
	}
	if best.Best() != 0.6 {
		t.Errorf("wrong best score \n\twant(%v) \n\thave(%v)", 0.6,
			best.Best())
	}
}

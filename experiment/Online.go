package experiment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/Taxuspt/udacity-reinforcement-learning-collab/agent"
	env "github.com/Taxuspt/udacity-reinforcement-learning-collab/environment"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/experiment/checkpointer"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/experiment/trackers"
	ts "github.com/Taxuspt/udacity-reinforcement-learning-collab/timestep"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/utils/floatutils"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/utils/progressbar"
)

// Online is an Experiment that runs a single agent online in a
// multi-agent environment. On each environmental step the agent
// selects one action per player, and the score of an episode is the
// maximum undiscounted return over all players. No offline evaluation
// is performed.
//
// After every completed episode, the experiment computes the average
// score over the last window episodes and hands it to each registered
// checkpointer.Checkpointer. If a target score is set, the experiment
// stops as soon as the window average reaches the target after at
// least window episodes have completed.
type Online struct {
	env.Environment
	agent.Agent
	maxEpisodes   int
	window        int
	targetScore   float64
	stopAtTarget  bool
	episodeScores []float64
	solvedAt      int
	trackers      []trackers.Tracker
	checkpointers []checkpointer.Checkpointer
	progress      *progressbar.ProgressBar
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The experiment runs for at most
// maxEpisodes episodes. The window parameter determines how many of
// the most recent episode scores are averaged to produce the running
// score handed to Checkpointers and compared against the target.
func NewOnline(e env.Environment, a agent.Agent, maxEpisodes,
	window int, t []trackers.Tracker,
	c []checkpointer.Checkpointer) *Online {
	return &Online{
		Environment:   e,
		Agent:         a,
		maxEpisodes:   maxEpisodes,
		window:        window,
		solvedAt:      -1,
		trackers:      t,
		checkpointers: c,
	}
}

// StopAtTarget causes the experiment to stop running new episodes
// once the window average score reaches target
func (o *Online) StopAtTarget(target float64) {
	o.targetScore = target
	o.stopAtTarget = true
}

// WithProgress attaches a progress bar that is incremented after each
// episode and shows the current window average score
func (o *Online) WithProgress(p *progressbar.ProgressBar) {
	o.progress = p
}

// Register registers a trackers.Tracker with the Experiment so that
// data generated during the experiment can be tracked and saved
func (o *Online) Register(t trackers.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RunEpisode runs a single episode of the experiment and returns the
// episode's score: the maximum undiscounted return over all players
func (o *Online) RunEpisode() (float64, error) {
	steps := o.Environment.Reset()
	if err := o.Agent.ObserveFirst(steps); err != nil {
		return 0, fmt.Errorf("runEpisode: %v", err)
	}
	o.track(steps)

	returns := make([]float64, len(steps))
	actions := make([]*mat.VecDense, len(steps))

	for !steps[0].Last() {
		// The shared agent selects one action per player
		for i := range steps {
			actions[i] = o.Agent.SelectAction(steps[i])
		}

		next, _, err := o.Environment.Step(actions)
		if err != nil {
			return 0, fmt.Errorf("runEpisode: could not step "+
				"environment: %v", err)
		}

		// Cache the environmental steps in each Tracker
		o.track(next)

		for i := range next {
			returns[i] += next[i].Reward
		}

		// Observe the timesteps and step the agent
		if err := o.Agent.Observe(actions, next); err != nil {
			return 0, fmt.Errorf("runEpisode: %v", err)
		}
		steps = next
	}

	o.Agent.EndEpisode()
	if err := o.Agent.Step(); err != nil {
		return 0, fmt.Errorf("runEpisode: could not step agent: %v", err)
	}

	return floatutils.Max(returns...), nil
}

// Run runs the entire experiment. Episodes are run until the maximum
// episode limit is reached or, if a target score was set, until the
// window average score reaches the target.
func (o *Online) Run() error {
	for episode := 0; episode < o.maxEpisodes; episode++ {
		score, err := o.RunEpisode()
		if err != nil {
			return fmt.Errorf("run: %v", err)
		}
		o.episodeScores = append(o.episodeScores, score)

		avg := o.windowAverage()
		if o.progress != nil {
			o.progress.SetScore(avg)
			o.progress.Increment()
			o.progress.Display()
		}

		for _, c := range o.checkpointers {
			if err := c.Checkpoint(episode, avg); err != nil {
				return fmt.Errorf("run: %v", err)
			}
		}

		if o.stopAtTarget && len(o.episodeScores) >= o.window &&
			avg >= o.targetScore {
			o.solvedAt = episode
			break
		}
	}

	if o.progress != nil {
		o.progress.Close()
	}
	return nil
}

// Scores returns the score of each completed episode
func (o *Online) Scores() []float64 {
	return o.episodeScores
}

// WindowAverage returns the average score over the last window
// episodes, or over all episodes if fewer than window have completed
func (o *Online) WindowAverage() float64 {
	return o.windowAverage()
}

// SolvedAt returns the index of the episode on which the window
// average score reached the target, or -1 if the target was never
// reached or never set
func (o *Online) SolvedAt() int {
	return o.solvedAt
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() {
	for _, t := range o.trackers {
		t.Save()
	}
}

// track tracks the current timesteps by caching their data in each
// Tracker
func (o *Online) track(steps []ts.TimeStep) {
	for _, t := range o.trackers {
		t.Track(steps)
	}
}

func (o *Online) windowAverage() float64 {
	if len(o.episodeScores) == 0 {
		return 0
	}
	start := len(o.episodeScores) - o.window
	if start < 0 {
		start = 0
	}
	return floatutils.Mean(o.episodeScores[start:]...)
}

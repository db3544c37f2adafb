// Package checkpointer implements saving agent weights to disk during
// an experiment
package checkpointer

import "fmt"

// Serializable is implemented by agents whose learned weights can be
// saved to a directory on disk.
type Serializable interface {
	Save(dir string) error
}

// Checkpointer determines when and where an agent's weights are saved
// during an experiment. Checkpoint is called once per completed
// episode with the episode number and the current sliding-window
// average score.
type Checkpointer interface {
	Checkpoint(episode int, score float64) error
}

// BestScore saves the agent's weights whenever the sliding-window
// average score exceeds the best average seen so far. The best score
// starts at 0, so the first checkpoint happens on the first episode
// with a positive window average.
type BestScore struct {
	agent Serializable
	dir   string
	best  float64
}

// NewBestScore creates and returns a new *BestScore which saves the
// weights of agent to dir
func NewBestScore(agent Serializable, dir string) *BestScore {
	return &BestScore{agent: agent, dir: dir}
}

// Checkpoint saves the agent's weights if score exceeds the best
// score seen by the Checkpointer so far
func (b *BestScore) Checkpoint(episode int, score float64) error {
	if score <= b.best {
		return nil
	}
	b.best = score

	if err := b.agent.Save(b.dir); err != nil {
		return fmt.Errorf("checkpoint: could not save agent at "+
			"episode %v: %v", episode, err)
	}
	return nil
}

// Best returns the best sliding-window average score seen so far
func (b *BestScore) Best() float64 {
	return b.best
}

// Interval saves the agent's weights every interval episodes.
type Interval struct {
	agent    Serializable
	dir      string
	interval int
}

// NewInterval creates and returns a new *Interval which saves the
// weights of agent to dir every interval episodes
func NewInterval(agent Serializable, dir string, interval int) (*Interval,
	error) {
	if interval <= 0 {
		return nil, fmt.Errorf("newInterval: interval must be positive "+
			"\n\twant(> 0) \n\thave(%v)", interval)
	}
	return &Interval{agent: agent, dir: dir, interval: interval}, nil
}

// Checkpoint saves the agent's weights if episode is a multiple of
// the Checkpointer's interval
func (i *Interval) Checkpoint(episode int, score float64) error {
	if episode == 0 || episode%i.interval != 0 {
		return nil
	}

	if err := i.agent.Save(i.dir); err != nil {
		return fmt.Errorf("checkpoint: could not save agent at "+
			"episode %v: %v", episode, err)
	}
	return nil
}

// Command train trains a single DDPG agent to drive both players of
// the Tennis environment through self-play. Training runs until the
// average score over a sliding window of episodes reaches a target,
// or until a maximum number of episodes have run. Episodic scores, the best
// agent weights, and score plots are written to an output directory.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/logrusorgru/aurora"

	"github.com/Taxuspt/udacity-reinforcement-learning-collab/agent/ddpg"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/environment/tennis"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/experiment"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/experiment/checkpointer"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/experiment/trackers"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/expreplay"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/initwfn"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/network"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/plot"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/solver"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/utils/progressbar"
)

func main() {
	var episodes = flag.Int("episodes", 2000, "maximum number of episodes "+
		"to train for")
	var window = flag.Int("window", 100, "number of episodes to average "+
		"scores over")
	var target = flag.Float64("target", 0.5, "window average score at "+
		"which the environment is considered solved")
	var earlyStop = flag.Bool("early-stop", true, "stop training once the "+
		"target score is reached")
	var stepLimit = flag.Int("step-limit", 1000, "maximum number of steps "+
		"per episode")
	var seed = flag.Uint64("seed", 192382, "random seed")
	var out = flag.String("out", "./results", "directory to save scores, "+
		"weights, and plots to")
	var warmStart = flag.String("checkpoint", "", "directory holding "+
		"previously saved weights to resume training from")
	flag.Parse()

	if err := os.MkdirAll(*out, 0755); err != nil {
		log.Fatalf("could not create output directory: %v", err)
	}

	// Create the environment
	task := tennis.NewRally(*seed)
	env, _ := tennis.New(task, 0.99, *stepLimit)

	// Create the learning algorithm
	batchSize := 128

	init, err := initwfn.NewGlorotU(1.0)
	if err != nil {
		log.Fatalf("could not create weight initializer: %v", err)
	}
	actorSolver, err := solver.NewDefaultAdam(1e-3, batchSize)
	if err != nil {
		log.Fatalf("could not create actor solver: %v", err)
	}
	criticSolver, err := solver.NewDefaultAdam(1e-3, batchSize)
	if err != nil {
		log.Fatalf("could not create critic solver: %v", err)
	}

	config := ddpg.Config{
		ActorLayers:      []int{128, 128},
		ActorBiases:      []bool{true, true},
		ActorActivations: []*network.Activation{network.ReLU(), network.ReLU()},

		CriticLayers:      []int{128, 128},
		CriticBiases:      []bool{true, true},
		CriticActivations: []*network.Activation{network.ReLU(),
			network.ReLU()},

		InitWFn:      init,
		ActorSolver:  actorSolver,
		CriticSolver: criticSolver,

		ExpReplay: expreplay.Config{
			MaxReplayCapacity: 1 << 20,
			MinReplayCapacity: batchSize,
			SampleSize:        batchSize,
			Seed:              *seed,
		},

		Tau:            1e-2,
		UpdateEvery:    16,
		LearningPasses: 16,

		NoiseMu:    0.0,
		NoiseTheta: 0.15,
		NoiseSigma: 0.2,
		NoiseScale: 1.0,
		NoiseDecay: 0.995,

		CheckpointDir: *warmStart,
	}

	agent, err := ddpg.New(env, config, *seed)
	if err != nil {
		log.Fatalf("could not create agent: %v", err)
	}
	defer agent.Close()

	// Experiment
	score := trackers.NewScore(filepath.Join(*out, "scores.bin"))
	average := trackers.NewMovingAverage(*window,
		filepath.Join(*out, "averages.bin"))

	best := checkpointer.NewBestScore(agent, *out)
	periodic, err := checkpointer.NewInterval(agent,
		filepath.Join(*out, "latest"), 100)
	if err != nil {
		log.Fatalf("could not create checkpointer: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(*out, "latest"), 0755); err != nil {
		log.Fatalf("could not create checkpoint directory: %v", err)
	}

	e := experiment.NewOnline(env, agent, *episodes, *window,
		[]trackers.Tracker{score, average},
		[]checkpointer.Checkpointer{best, periodic})
	if *earlyStop {
		e.StopAtTarget(*target)
	}
	e.WithProgress(progressbar.New(65, *episodes))

	fmt.Println(aurora.Bold("Training DDPG on Tennis through self-play"))
	if err := e.Run(); err != nil {
		log.Fatalf("experiment failed: %v", err)
	}
	e.Save()

	// Plots
	scores := score.Scores()
	averages := average.Averages()
	title := "Tennis self-play scores"

	err = plot.HTML(filepath.Join(*out, "scores.html"), title, scores,
		averages)
	if err != nil {
		log.Fatalf("could not plot scores: %v", err)
	}
	err = plot.PNG(filepath.Join(*out, "scores.png"), title, scores,
		averages, 900, 600)
	if err != nil {
		log.Fatalf("could not plot scores: %v", err)
	}

	// Summary
	if solved := e.SolvedAt(); solved >= 0 {
		fmt.Println(aurora.Green(fmt.Sprintf("Solved in %v episodes with "+
			"average score %.4f", solved+1, e.WindowAverage())))
	} else {
		fmt.Println(aurora.Yellow(fmt.Sprintf("Not solved after %v "+
			"episodes; best window average %.4f", len(scores), best.Best())))
	}
	fmt.Printf("Saved scores, weights, and plots to %v\n", *out)
}

package tennis

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/Taxuspt/udacity-reinforcement-learning-collab/environment"
)

// Task determines the reward scheme and serving rules of the Tennis
// environment
type Task interface {
	// Serve returns the player index that serves next and the initial
	// velocity of the served ball, directed at the serving player
	Serve() (int, mat.Vector)

	// HitReward returns the reward given to a player for hitting the
	// ball over the net
	HitReward() float64

	// DeadBallPenalty returns the reward given to a player for
	// letting the ball touch the ground on its side of the court or
	// for hitting the ball out of bounds
	DeadBallPenalty() float64
}

// Rally implements the default Tennis task. Players are rewarded for
// keeping the ball in play: each hit over the net is worth a small
// positive reward and each dead ball a small penalty for the player
// at fault. The serving side is chosen uniformly at random, and the
// serve velocity is sampled uniformly from fixed speed intervals.
type Rally struct {
	hitReward       float64
	deadBallPenalty float64
	serveSide       environment.CategoricalStarter
	serveVelocity   environment.UniformStarter
}

// NewRally creates and returns a new *Rally task with the default
// reward scheme, seeding the serve distributions with seed
func NewRally(seed uint64) *Rally {
	side := environment.NewCategoricalStarter([]int{NumPlayers}, seed)

	bounds := []r1.Interval{
		{Min: MinServeSpeed, Max: MaxServeSpeed}, // horizontal
		{Min: 0.0, Max: MaxServeLift},            // vertical
	}
	velocity := environment.NewUniformStarter(bounds, seed)

	return &Rally{
		hitReward:       HitReward,
		deadBallPenalty: DeadBallPenalty,
		serveSide:       side,
		serveVelocity:   velocity,
	}
}

// Serve chooses the serving player uniformly at random and samples
// the initial ball velocity, directed toward the serving player so
// that the server must return the ball to start the rally
func (r *Rally) Serve() (int, mat.Vector) {
	player := int(r.serveSide.Start().AtVec(0))

	v := r.serveVelocity.Start()
	vx := v.AtVec(0)
	if player == leftPlayer {
		vx *= -1
	}

	return player, mat.NewVecDense(2, []float64{vx, v.AtVec(1)})
}

// HitReward returns the reward for hitting the ball over the net
func (r *Rally) HitReward() float64 {
	return r.hitReward
}

// DeadBallPenalty returns the reward for putting the ball out of play
func (r *Rally) DeadBallPenalty() float64 {
	return r.deadBallPenalty
}

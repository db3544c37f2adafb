// Package tennis implements a two-player cooperative tennis
// environment
package tennis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/Taxuspt/udacity-reinforcement-learning-collab/environment"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/timestep"
	"github.com/Taxuspt/udacity-reinforcement-learning-collab/utils/floatutils"
)

// default physical constants
const (
	NumPlayers      int = 2
	ObservationDims int = 8
	ActionDims      int = 2

	MaxContinuousAction float64 = 1.0
	MinContinuousAction float64 = -MaxContinuousAction

	CourtHalfLength float64 = 1.0  // net at x = 0
	NetHeight       float64 = 0.25 // balls crossing lower hit the net
	RacketReach     float64 = 0.15 // hit radius around the racket
	RacketMargin    float64 = 0.05 // closest approach to the net

	RacketSpeed float64 = 1.5
	JumpSpeed   float64 = 1.5
	Gravity     float64 = 3.0

	HitSpeed float64 = 0.8 // horizontal ball speed after a hit
	HitLift  float64 = 1.2 // vertical ball speed after a hit

	MinServeSpeed float64 = 0.5
	MaxServeSpeed float64 = 0.9
	MaxServeLift  float64 = 0.3

	BallServeHeight float64 = 0.75

	HitReward       float64 = 0.1
	DeadBallPenalty float64 = -0.01

	dt float64 = 0.05
)

const (
	leftPlayer  int = 0
	rightPlayer int = 1
)

// Tennis implements a cooperative two-player tennis rally. Two
// rackets face each other across a net. On each step, every player
// submits a 2-dimensional continuous action in [-1, 1]: the first
// component moves the racket toward (positive) or away from
// (negative) the net, and the second causes a grounded racket to
// jump. A player that returns the ball over the net receives a small
// positive reward; a player that lets the ball touch the ground on
// its side of the court, hits the ball into the net, or hits it out
// of bounds receives a small penalty. The episode ends when the ball
// goes dead or a step limit is reached.
//
// Each player observes an 8-dimensional state vector describing its
// own racket, the ball, and the opposing racket. Observations are
// mirrored so that each player sees itself on the left of the net,
// allowing a single agent to drive both rackets.
//
// Tennis implements the environment.Environment interface.
type Tennis struct {
	Task
	ender    environment.Ender
	discount float64

	racketX  [NumPlayers]float64
	racketY  [NumPlayers]float64
	racketVy [NumPlayers]float64

	ballX, ballY   float64
	ballVx, ballVy float64

	lastHitter int
	stepNum    int
	lastSteps  []timestep.TimeStep
}

// New creates and returns a new Tennis environment with the given
// task and discount. Episodes that are still live after stepLimit
// steps are cut off.
func New(t Task, discount float64,
	stepLimit int) (*Tennis, []timestep.TimeStep) {
	tennis := &Tennis{
		Task:     t,
		ender:    environment.NewStepLimit(stepLimit),
		discount: discount,
	}
	firstSteps := tennis.Reset()

	return tennis, firstSteps
}

// Reset resets the environment between episodes and returns the
// starting TimeStep of each player
func (t *Tennis) Reset() []timestep.TimeStep {
	t.racketX[leftPlayer] = -CourtHalfLength / 2
	t.racketX[rightPlayer] = CourtHalfLength / 2
	for i := 0; i < NumPlayers; i++ {
		t.racketY[i] = 0
		t.racketVy[i] = 0
	}

	// Serve from above the net toward the serving player, who must
	// return the ball to start the rally
	server, velocity := t.Serve()
	t.ballX = 0
	t.ballY = BallServeHeight
	t.ballVx = velocity.AtVec(0)
	t.ballVy = velocity.AtVec(1)

	t.lastHitter = 1 - server
	t.stepNum = 0

	steps := make([]timestep.TimeStep, NumPlayers)
	for i := 0; i < NumPlayers; i++ {
		steps[i] = timestep.New(timestep.First, 0, t.discount,
			t.observation(i), 0)
	}
	t.lastSteps = steps

	return steps
}

// NumAgents returns the number of players acting in the environment
func (t *Tennis) NumAgents() int {
	return NumPlayers
}

// Step takes one action per player and advances the rally by a single
// timestep
func (t *Tennis) Step(actions []*mat.VecDense) ([]timestep.TimeStep, bool,
	error) {
	if len(actions) != NumPlayers {
		return nil, false, fmt.Errorf("step: must provide one action "+
			"per player \n\twant(%v) \n\thave(%v)", NumPlayers, len(actions))
	}
	for i, action := range actions {
		if action.Len() != ActionDims {
			return nil, false, fmt.Errorf("step: invalid action "+
				"dimensions for player %v \n\twant(%v) \n\thave(%v)", i,
				ActionDims, action.Len())
		}
	}

	t.moveRackets(actions)

	prevBallX := t.ballX
	t.moveBall()

	rewards := make([]float64, NumPlayers)

	if hitter, ok := t.hit(); ok {
		rewards[hitter] += t.HitReward()
		t.lastHitter = hitter
	}

	done, faulty := t.deadBall(prevBallX)
	if done {
		rewards[faulty] += t.DeadBallPenalty()
	}

	t.stepNum++
	steps := make([]timestep.TimeStep, NumPlayers)
	for i := 0; i < NumPlayers; i++ {
		if done {
			steps[i] = timestep.New(timestep.Last, rewards[i], 0,
				t.observation(i), t.stepNum)
		} else {
			steps[i] = timestep.New(timestep.Mid, rewards[i], t.discount,
				t.observation(i), t.stepNum)
			t.ender.End(&steps[i])
		}
	}
	t.lastSteps = steps

	return steps, steps[0].Last(), nil
}

// moveRackets updates racket positions from the players' actions
func (t *Tennis) moveRackets(actions []*mat.VecDense) {
	for i := 0; i < NumPlayers; i++ {
		move := floatutils.Clip(actions[i].AtVec(0), MinContinuousAction,
			MaxContinuousAction)
		jump := floatutils.Clip(actions[i].AtVec(1), MinContinuousAction,
			MaxContinuousAction)

		t.racketX[i] += mirror(i) * move * RacketSpeed * dt
		t.racketX[i] = clipToSide(i, t.racketX[i])

		if jump > 0 && t.racketY[i] == 0 {
			t.racketVy[i] = jump * JumpSpeed
		}
		t.racketVy[i] -= Gravity * dt
		t.racketY[i] += t.racketVy[i] * dt
		if t.racketY[i] <= 0 {
			t.racketY[i] = 0
			t.racketVy[i] = 0
		}
	}
}

// moveBall advances the ball under gravity
func (t *Tennis) moveBall() {
	t.ballVy -= Gravity * dt
	t.ballX += t.ballVx * dt
	t.ballY += t.ballVy * dt
}

// hit checks whether either racket returned the ball on this step. A
// racket returns the ball when the ball is within reach and moving
// toward that player's baseline.
func (t *Tennis) hit() (int, bool) {
	for i := 0; i < NumPlayers; i++ {
		towardBaseline := mirror(i)*t.ballVx < 0
		inReach := t.ballY > 0 &&
			math.Abs(t.ballX-t.racketX[i]) <= RacketReach &&
			math.Abs(t.ballY-t.racketY[i]) <= RacketReach

		if towardBaseline && inReach {
			t.ballVx = mirror(i) * HitSpeed
			t.ballVy = HitLift + 0.5*math.Max(t.racketVy[i], 0)
			return i, true
		}
	}
	return -1, false
}

// deadBall checks whether the ball went out of play on this step,
// returning whether the rally ended and the player at fault
func (t *Tennis) deadBall(prevBallX float64) (bool, int) {
	// Ball touched the ground: the player on that side is at fault
	if t.ballY <= 0 {
		return true, sideOf(t.ballX)
	}

	// Ball left the court: the last player to touch it is at fault
	if math.Abs(t.ballX) > CourtHalfLength {
		return true, t.lastHitter
	}

	// Ball crossed below the top of the net
	crossed := (prevBallX < 0) != (t.ballX < 0)
	if crossed && t.ballY < NetHeight {
		return true, t.lastHitter
	}

	return false, -1
}

// observation returns the state vector seen by player i. Horizontal
// positions and velocities are mirrored so that every player sees
// itself on the left of the net.
func (t *Tennis) observation(i int) *mat.VecDense {
	m := mirror(i)
	opponent := 1 - i

	return mat.NewVecDense(ObservationDims, []float64{
		m * t.racketX[i],
		t.racketY[i],
		m * t.ballX,
		t.ballY,
		m * t.ballVx,
		t.ballVy,
		m * t.racketX[opponent],
		t.racketY[opponent],
	})
}

// ObservationSpec returns the observation specification of the
// environment
func (t *Tennis) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(ObservationDims, nil)

	maxBallSpeed := HitLift + JumpSpeed
	lowerBound := mat.NewVecDense(ObservationDims, []float64{
		-CourtHalfLength, 0, -CourtHalfLength, 0, -maxBallSpeed,
		-maxBallSpeed, -CourtHalfLength, 0,
	})
	upperBound := mat.NewVecDense(ObservationDims, []float64{
		CourtHalfLength, maxJumpHeight(), CourtHalfLength, maxBallHeight(),
		maxBallSpeed, maxBallSpeed, CourtHalfLength, maxJumpHeight(),
	})

	return environment.NewSpec(shape, environment.Observation, lowerBound,
		upperBound, environment.Continuous)
}

// ActionSpec returns the action specification of the environment
func (t *Tennis) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(ActionDims, nil)

	lowerBound := mat.NewVecDense(ActionDims,
		[]float64{MinContinuousAction, MinContinuousAction})
	upperBound := mat.NewVecDense(ActionDims,
		[]float64{MaxContinuousAction, MaxContinuousAction})

	return environment.NewSpec(shape, environment.Action, lowerBound,
		upperBound, environment.Continuous)
}

// RewardSpec returns the reward specification of the environment
func (t *Tennis) RewardSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)

	lowerBound := mat.NewVecDense(1, []float64{t.DeadBallPenalty()})
	upperBound := mat.NewVecDense(1, []float64{t.HitReward()})

	return environment.NewSpec(shape, environment.Reward, lowerBound,
		upperBound, environment.Continuous)
}

// DiscountSpec returns the discount specification of the environment
func (t *Tennis) DiscountSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)

	lowerBound := mat.NewVecDense(1, []float64{0})
	upperBound := mat.NewVecDense(1, []float64{t.discount})

	return environment.NewSpec(shape, environment.Discount, lowerBound,
		upperBound, environment.Continuous)
}

// String converts the environment to a string representation
func (t *Tennis) String() string {
	str := "Tennis  |  rackets: (%.2f, %.2f) (%.2f, %.2f)  |  " +
		"ball: (%.2f, %.2f) moving (%.2f, %.2f)"

	return fmt.Sprintf(str, t.racketX[leftPlayer], t.racketY[leftPlayer],
		t.racketX[rightPlayer], t.racketY[rightPlayer], t.ballX, t.ballY,
		t.ballVx, t.ballVy)
}

// mirror returns the horizontal sign of player i's frame of reference
func mirror(i int) float64 {
	if i == leftPlayer {
		return 1
	}
	return -1
}

// sideOf returns the player whose side of the court x lies on
func sideOf(x float64) int {
	if x < 0 {
		return leftPlayer
	}
	return rightPlayer
}

// clipToSide clips a racket position to player i's side of the court
func clipToSide(i int, x float64) float64 {
	if i == leftPlayer {
		return floatutils.Clip(x, -CourtHalfLength, -RacketMargin)
	}
	return floatutils.Clip(x, RacketMargin, CourtHalfLength)
}

// maxJumpHeight returns the apex of a full-strength jump
func maxJumpHeight() float64 {
	return JumpSpeed * JumpSpeed / (2 * Gravity)
}

// maxBallHeight returns a bound on the height the ball can reach
func maxBallHeight() float64 {
	apex := (HitLift + 0.5*JumpSpeed) * (HitLift + 0.5*JumpSpeed) /
		(2 * Gravity)
	return maxJumpHeight() + RacketReach + apex
}

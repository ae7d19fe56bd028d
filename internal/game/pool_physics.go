package game

// PhysicsEngine runs the table simulation. It owns every ball in one
// contiguous slice; pairs are always addressed by index so two balls in a
// collision can never alias the same storage.
//
// A PhysicsEngine is not safe for concurrent use.
type PhysicsEngine struct {
	xMin, xMax float64
	yMin, yMax float64

	friction  float64 // μ
	magnus    float64 // k
	spinDecay float64 // per second

	balls []Ball
}

// NewPhysicsEngine creates an engine for a width x height table with its
// origin at the bottom-left corner. Bounds and coefficients are fixed for the
// engine's lifetime.
func NewPhysicsEngine(tableWidth, tableHeight, friction, magnus, spinDecay float64) *PhysicsEngine {
	return &PhysicsEngine{
		xMin:      0,
		xMax:      tableWidth,
		yMin:      0,
		yMax:      tableHeight,
		friction:  friction,
		magnus:    magnus,
		spinDecay: spinDecay,
	}
}

// InitializeBalls replaces the ball set with a cue ball followed by one object
// ball per rack offset, placed at rackCenter+offset at rest. All balls share
// ballRadius. Index 0 is always the cue ball; the rack keeps offset order.
func (pe *PhysicsEngine) InitializeBalls(cuePos, cueVel Vec2, cueSpin float64, rackCenter Vec2, rackOffsets []Vec2, ballRadius float64) {
	balls := make([]Ball, 0, 1+len(rackOffsets))
	balls = append(balls, NewBall(cuePos, cueVel, ballRadius, cueSpin))
	for _, off := range rackOffsets {
		balls = append(balls, NewBall(rackCenter.Add(off), Vec2{}, ballRadius, 0))
	}
	pe.balls = balls
}

// Update advances the simulation by one frame of dt seconds: first every
// colliding pair is resolved against last frame's velocities, then every ball
// integrates forces, spin and position. dt is not validated.
func (pe *PhysicsEngine) Update(dt float64) {
	pe.resolveAllCollisions()
	for i := range pe.balls {
		pe.updateBallPhysics(&pe.balls[i], dt)
	}
}

// resolveAllCollisions visits each unordered pair once in ascending (i, j)
// order. Clusters of three or more balls are resolved by sequential pairwise
// impulses, not a simultaneous solve, so the visiting order affects results.
func (pe *PhysicsEngine) resolveAllCollisions() {
	n := len(pe.balls)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := &pe.balls[i], &pe.balls[j]
			if a.IsColliding(b) {
				a.ResolveCollision(b)
			}
		}
	}
}

func (pe *PhysicsEngine) updateBallPhysics(b *Ball, dt float64) {
	b.Update(dt, pe.friction, pe.magnus, pe.spinDecay, pe.xMin, pe.xMax, pe.yMin, pe.yMax)
}

// Balls returns the live ball slice. It reflects the current state after
// every Update; callers must treat it as read-only.
func (pe *PhysicsEngine) Balls() []Ball {
	return pe.balls
}

func (pe *PhysicsEngine) TableWidth() float64 {
	return pe.xMax - pe.xMin
}

func (pe *PhysicsEngine) TableHeight() float64 {
	return pe.yMax - pe.yMin
}

// Coefficients returns the friction, Magnus and spin-decay coefficients.
func (pe *PhysicsEngine) Coefficients() (friction, magnus, spinDecay float64) {
	return pe.friction, pe.magnus, pe.spinDecay
}

// AllStopped returns true if no ball is moving faster than RestSpeed.
func (pe *PhysicsEngine) AllStopped() bool {
	for i := range pe.balls {
		if pe.balls[i].Speed() > RestSpeed {
			return false
		}
	}
	return true
}

// KineticEnergy is the total kinetic energy for unit-mass balls.
func (pe *PhysicsEngine) KineticEnergy() float64 {
	var e float64
	for i := range pe.balls {
		e += 0.5 * pe.balls[i].Velocity.LengthSquared()
	}
	return e
}

// Momentum is the total linear momentum for unit-mass balls.
func (pe *PhysicsEngine) Momentum() Vec2 {
	var p Vec2
	for i := range pe.balls {
		p = p.Add(pe.balls[i].Velocity)
	}
	return p
}

// Snapshot copies the current table into a Frame.
func (pe *PhysicsEngine) Snapshot(number int, elapsed float64) Frame {
	states := make([]BallState, len(pe.balls))
	for i := range pe.balls {
		states[i] = ballState(i, &pe.balls[i])
	}
	return Frame{
		Number:  number,
		Elapsed: elapsed,
		Width:   pe.TableWidth(),
		Height:  pe.TableHeight(),
		Stopped: pe.AllStopped(),
		Balls:   states,
	}
}

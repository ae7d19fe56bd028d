package game

import "math"

// Ball is one disk on the table. Radius is fixed at construction; every
// other field is mutated in place by the engine each frame.
type Ball struct {
	Position Vec2    `json:"position"`
	Velocity Vec2    `json:"velocity"`
	Radius   float64 `json:"radius"`
	Spin     float64 `json:"spin"` // signed scalar, drives the Magnus force
}

func NewBall(pos, vel Vec2, radius, spin float64) Ball {
	return Ball{Position: pos, Velocity: vel, Radius: radius, Spin: spin}
}

// IsColliding reports whether the two disks touch or overlap.
func (b *Ball) IsColliding(other *Ball) bool {
	rsum := b.Radius + other.Radius
	d := b.Position.Sub(other.Position)
	return d.Dot(d) <= rsum*rsum
}

// ResolveCollision applies an equal-mass, perfectly elastic impulse along the
// line of centres. Only the normal components of the velocities are exchanged.
// Positions are not corrected, so overlapping balls stay overlapped.
func (b *Ball) ResolveCollision(other *Ball) {
	delta := b.Position.Sub(other.Position)
	dist2 := delta.Dot(delta)
	if dist2 < CollisionEpsilon {
		return
	}

	relVel := b.Velocity.Sub(other.Velocity)
	impulse := delta.Scale(relVel.Dot(delta) / dist2)

	b.Velocity = b.Velocity.Sub(impulse)
	other.Velocity = other.Velocity.Add(impulse)
}

// Reflect clamps the ball back inside the rectangle and negates the velocity
// component of each axis whose bound was crossed. The min bound is checked
// first, so a ball wider than the table only ever hits the min side.
func (b *Ball) Reflect(xMin, xMax, yMin, yMax float64) {
	if b.Position.X-b.Radius < xMin {
		b.Position.X = xMin + b.Radius
		b.Velocity.X = -b.Velocity.X
	} else if b.Position.X+b.Radius > xMax {
		b.Position.X = xMax - b.Radius
		b.Velocity.X = -b.Velocity.X
	}

	if b.Position.Y-b.Radius < yMin {
		b.Position.Y = yMin + b.Radius
		b.Velocity.Y = -b.Velocity.Y
	} else if b.Position.Y+b.Radius > yMax {
		b.Position.Y = yMax - b.Radius
		b.Velocity.Y = -b.Velocity.Y
	}
}

// ApplyFriction decelerates the ball at mu*g against its direction of travel.
// A step that would reverse the ball stops it dead instead.
func (b *Ball) ApplyFriction(mu, dt float64) {
	dir := b.Velocity.Normalize()
	b.Velocity = b.Velocity.Add(dir.Scale(-mu * Gravity * dt))
	if b.Velocity.Dot(dir) < 0 {
		b.Velocity = Vec2{}
	}
}

// ApplyMagnus bends the path sideways: acceleration along the left normal of
// the velocity, proportional to spin and speed.
func (b *Ball) ApplyMagnus(k, dt float64) {
	speed := b.Velocity.Length()
	if math.Abs(b.Spin) < MagnusEpsilon || speed < MagnusEpsilon {
		return
	}
	perp := b.Velocity.LeftNormal().Normalize()
	b.Velocity = b.Velocity.Add(perp.Scale(k * b.Spin * speed * dt))
}

// ApplySpinDecay decays spin with the closed-form exponential.
func (b *Ball) ApplySpinDecay(decay, dt float64) {
	b.Spin *= math.Exp(-decay * dt)
}

// Update advances the ball by one step. The stage order is fixed:
//
//  1. friction
//  2. Magnus
//  3. spin decay
//  4. position += velocity*dt
//  5. reflection against the post-move position
//
// Forces act on the velocity before it moves the ball (semi-implicit Euler),
// and a ball leaving the table this step is put back on the edge this step.
func (b *Ball) Update(dt, mu, k, decay, xMin, xMax, yMin, yMax float64) {
	b.ApplyFriction(mu, dt)
	b.ApplyMagnus(k, dt)
	b.ApplySpinDecay(decay, dt)
	b.Position = b.Position.Add(b.Velocity.Scale(dt))
	b.Reflect(xMin, xMax, yMin, yMax)
}

// Speed is the magnitude of the velocity.
func (b *Ball) Speed() float64 {
	return b.Velocity.Length()
}

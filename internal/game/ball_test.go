package game

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestCollisionExchangesVelocities(t *testing.T) {
	r := 0.5
	a := NewBall(NewVec2(0, 0), NewVec2(1, 0), r, 0)
	b := NewBall(NewVec2(1, 0), NewVec2(-1, 0), r, 0)

	require.True(t, a.IsColliding(&b), "touching balls must collide")
	a.ResolveCollision(&b)

	if diff := cmp.Diff(NewVec2(-1, 0), a.Velocity, approx); diff != "" {
		t.Errorf("ball a velocity mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(NewVec2(1, 0), b.Velocity, approx); diff != "" {
		t.Errorf("ball b velocity mismatch (-want +got):\n%s", diff)
	}
}

func TestCollisionKeepsTangentialVelocity(t *testing.T) {
	// Line of centres is the x axis, so only vx may change.
	a := NewBall(NewVec2(0, 0), NewVec2(2, 0.7), 0.5, 0)
	b := NewBall(NewVec2(1, 0), NewVec2(0, -0.3), 0.5, 0)

	a.ResolveCollision(&b)

	assert.InDelta(t, 0.0, a.Velocity.X, 1e-12)
	assert.InDelta(t, 0.7, a.Velocity.Y, 1e-12)
	assert.InDelta(t, 2.0, b.Velocity.X, 1e-12)
	assert.InDelta(t, -0.3, b.Velocity.Y, 1e-12)
}

func TestCollisionConservesMomentumAndEnergy(t *testing.T) {
	a := NewBall(NewVec2(0.3, 0.4), NewVec2(1.5, -0.2), 0.3, 0)
	b := NewBall(NewVec2(0.7, 0.7), NewVec2(-0.4, 0.9), 0.3, 0)
	require.True(t, a.IsColliding(&b))

	p0 := a.Velocity.Add(b.Velocity)
	e0 := a.Velocity.LengthSquared() + b.Velocity.LengthSquared()

	a.ResolveCollision(&b)

	p1 := a.Velocity.Add(b.Velocity)
	e1 := a.Velocity.LengthSquared() + b.Velocity.LengthSquared()
	if diff := cmp.Diff(p0, p1, approx); diff != "" {
		t.Errorf("momentum changed (-before +after):\n%s", diff)
	}
	assert.InDelta(t, e0, e1, 1e-12)
}

func TestCollisionCoincidentCentresIsNoOp(t *testing.T) {
	a := NewBall(NewVec2(1, 1), NewVec2(1, 0), 0.5, 0)
	b := NewBall(NewVec2(1, 1), NewVec2(-1, 0), 0.5, 0)

	require.True(t, a.IsColliding(&b))
	a.ResolveCollision(&b)

	assert.Equal(t, NewVec2(1, 0), a.Velocity)
	assert.Equal(t, NewVec2(-1, 0), b.Velocity)
}

func TestIsCollidingBoundaryAndSymmetry(t *testing.T) {
	tests := []struct {
		name string
		dx   float64
		want bool
	}{
		{"overlapping", 0.9, true},
		{"touching", 1.0, true},
		{"apart", 1.0001, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := NewBall(NewVec2(0, 0), Vec2{}, 0.5, 0)
			b := NewBall(NewVec2(tc.dx, 0), Vec2{}, 0.5, 0)
			assert.Equal(t, tc.want, a.IsColliding(&b))
			assert.Equal(t, tc.want, b.IsColliding(&a))
		})
	}
}

func TestReflectEachWall(t *testing.T) {
	r := 0.5
	tests := []struct {
		name    string
		pos     Vec2
		vel     Vec2
		wantPos Vec2
		wantVel Vec2
	}{
		{"left", NewVec2(0.4, 5), NewVec2(-2, 0), NewVec2(0.5, 5), NewVec2(2, 0)},
		{"right", NewVec2(9.6, 5), NewVec2(2, 0), NewVec2(9.5, 5), NewVec2(-2, 0)},
		{"bottom", NewVec2(5, 0.4), NewVec2(0, -3), NewVec2(5, 0.5), NewVec2(0, 3)},
		{"top", NewVec2(5, 9.6), NewVec2(0, 3), NewVec2(5, 9.5), NewVec2(0, -3)},
		{"corner", NewVec2(0.4, 9.6), NewVec2(-1, 1), NewVec2(0.5, 9.5), NewVec2(1, -1)},
		{"inside", NewVec2(5, 5), NewVec2(1, 1), NewVec2(5, 5), NewVec2(1, 1)},
		{"exactly on edge", NewVec2(0.5, 9.5), NewVec2(-1, 1), NewVec2(0.5, 9.5), NewVec2(-1, 1)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBall(tc.pos, tc.vel, r, 0)
			b.Reflect(0, 10, 0, 10)
			if diff := cmp.Diff(tc.wantPos, b.Position, approx); diff != "" {
				t.Errorf("position (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantVel, b.Velocity, approx); diff != "" {
				t.Errorf("velocity (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReflectOversizedBallPrefersMinBound(t *testing.T) {
	// Radius 3 on a 2m wide table pokes past both x bounds.
	b := NewBall(NewVec2(1, 5), NewVec2(1, 0), 3, 0)
	b.Reflect(0, 2, 0, 10)

	assert.Equal(t, 3.0, b.Position.X)
	assert.Equal(t, -1.0, b.Velocity.X)
	assert.Equal(t, 5.0, b.Position.Y)
}

func TestFrictionStopsInsteadOfReversing(t *testing.T) {
	b := NewBall(NewVec2(5, 5), NewVec2(2, 0), 0.5, 0)
	// mu*g*dt = 9.81 m/s, far more than the 2 m/s the ball has.
	b.ApplyFriction(10, 0.1)
	assert.Equal(t, Vec2{}, b.Velocity)
}

func TestFrictionConvergesMonotonicallyToZero(t *testing.T) {
	b := NewBall(NewVec2(5, 5), NewVec2(2, 0), 0.5, 0)
	prev := b.Speed()
	for i := 0; i < 1000; i++ {
		b.ApplyFriction(0.1, 0.01)
		require.GreaterOrEqual(t, b.Velocity.X, 0.0, "step %d reversed direction", i)
		require.Equal(t, 0.0, b.Velocity.Y)
		require.LessOrEqual(t, b.Speed(), prev, "step %d accelerated", i)
		prev = b.Speed()
	}
	assert.Equal(t, Vec2{}, b.Velocity)
}

func TestFrictionOnRestingBallIsNoOp(t *testing.T) {
	b := NewBall(NewVec2(1, 1), Vec2{}, 0.5, 0)
	b.ApplyFriction(0.5, 0.1)
	assert.Equal(t, Vec2{}, b.Velocity)
}

func TestMagnusAddsPerpendicularVelocity(t *testing.T) {
	b := NewBall(NewVec2(5, 5), NewVec2(1, 0), 0.5, 10)
	before := b.Velocity

	b.ApplyMagnus(0.01, 0.1)

	assert.InDelta(t, before.X, b.Velocity.X, 1e-6)
	assert.Greater(t, math.Abs(b.Velocity.Y), 0.0)
	assert.InDelta(t, 0.01, b.Velocity.Y, 1e-12) // k*spin*|v|*dt
}

func TestMagnusSkipsNegligibleSpinOrSpeed(t *testing.T) {
	tests := []struct {
		name string
		vel  Vec2
		spin float64
	}{
		{"tiny spin", NewVec2(1, 0), 1e-7},
		{"at rest", Vec2{}, 10},
		{"tiny speed", NewVec2(1e-7, 0), 10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBall(Vec2{}, tc.vel, 0.5, tc.spin)
			b.ApplyMagnus(1, 1)
			assert.Equal(t, tc.vel, b.Velocity)
		})
	}
}

func TestSpinDecayIsExponential(t *testing.T) {
	for _, tc := range []struct{ decay, dt float64 }{
		{1, 1}, {0, 5}, {0.5, 0.01}, {3, 0.2},
	} {
		b := NewBall(Vec2{}, Vec2{}, 0.5, 5)
		b.ApplySpinDecay(tc.decay, tc.dt)
		assert.InDelta(t, 5*math.Exp(-tc.decay*tc.dt), b.Spin, 1e-12, "decay=%v dt=%v", tc.decay, tc.dt)
	}
}

func TestUpdateCombinedStep(t *testing.T) {
	r := 0.5
	b := NewBall(NewVec2(1, 1), NewVec2(2, 0), r, 10)

	b.Update(0.01, 0.1, 0.01, 0.5, 0, 2, 0, 2)

	assert.Less(t, b.Velocity.X, 2.0)
	assert.Greater(t, math.Abs(b.Velocity.Y), 0.0)
	assert.Greater(t, b.Position.X, 1.0)
	assert.InDelta(t, 1.0+b.Velocity.Y*0.01, b.Position.Y, 1e-6)
	assert.InDelta(t, 10*math.Exp(-0.5*0.01), b.Spin, 1e-12)
}

func TestUpdateReflectsInSameStep(t *testing.T) {
	r := 0.5
	b := NewBall(NewVec2(1.9, 1.0), NewVec2(5, 0), r, 0)

	// 1.9 + 5*0.1 = 2.4 crosses the right bound.
	b.Update(0.1, 0, 0, 0, 0, 2, 0, 2)

	assert.Equal(t, 2.0-r, b.Position.X)
	assert.Less(t, b.Velocity.X, 0.0)
}

func TestVec2NormalizeGuardsZero(t *testing.T) {
	assert.Equal(t, Vec2{}, Vec2{}.Normalize())
	assert.Equal(t, Vec2{}, NewVec2(1e-10, 0).Normalize())
	if diff := cmp.Diff(NewVec2(0.6, 0.8), NewVec2(3, 4).Normalize(), approx); diff != "" {
		t.Errorf("normalize (-want +got):\n%s", diff)
	}
	assert.Equal(t, 5.0, NewVec2(3, 4).Length())
}

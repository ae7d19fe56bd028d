package game

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frictionless returns an engine with every coefficient zeroed, so velocity
// changes come only from collisions and walls.
func frictionless(width, height float64) *PhysicsEngine {
	return NewPhysicsEngine(width, height, 0, 0, 0)
}

func TestInitializeBallsBuildsCueThenRack(t *testing.T) {
	engine := NineFootTable().NewEngine()
	offsets := []Vec2{{0, 0}, {0.1, 0.05}, {0.1, -0.05}}
	center := NewVec2(2, 0.7)

	engine.InitializeBalls(NewVec2(0.5, 0.6), NewVec2(3, 1), 30, center, offsets, 0.03)

	balls := engine.Balls()
	require.Len(t, balls, len(offsets)+1)

	cue := balls[0]
	assert.Equal(t, NewVec2(0.5, 0.6), cue.Position)
	assert.Equal(t, NewVec2(3, 1), cue.Velocity)
	assert.Equal(t, 30.0, cue.Spin)
	assert.Equal(t, 0.03, cue.Radius)

	for i, off := range offsets {
		b := balls[i+1]
		if diff := cmp.Diff(center.Add(off), b.Position, approx); diff != "" {
			t.Errorf("rack ball %d position (-want +got):\n%s", i+1, diff)
		}
		assert.Equal(t, Vec2{}, b.Velocity, "rack ball %d", i+1)
		assert.Equal(t, 0.0, b.Spin, "rack ball %d", i+1)
		assert.Equal(t, 0.03, b.Radius, "rack ball %d", i+1)
	}
}

func TestInitializeBallsReplacesPreviousSet(t *testing.T) {
	engine := NineFootTable().NewEngine()
	engine.InitializeBalls(NewVec2(0.5, 0.5), Vec2{}, 0, NewVec2(2, 0.7), NineBallRack(0.03), 0.03)
	require.Len(t, engine.Balls(), 10)

	engine.InitializeBalls(NewVec2(0.5, 0.5), Vec2{}, 0, NewVec2(2, 0.7), nil, 0.03)
	assert.Len(t, engine.Balls(), 1)
}

func TestUpdateReflectsWithinFrame(t *testing.T) {
	engine := frictionless(2, 2)
	engine.InitializeBalls(NewVec2(1.9, 1.0), NewVec2(5, 0), 0, Vec2{}, nil, 0.5)

	engine.Update(0.1)

	cue := engine.Balls()[0]
	assert.Equal(t, 1.5, cue.Position.X)
	assert.Less(t, cue.Velocity.X, 0.0)
}

func TestSeparatedBallsKeepVelocities(t *testing.T) {
	engine := frictionless(10, 10)
	engine.InitializeBalls(NewVec2(2, 5), NewVec2(0.1, 0), 0, NewVec2(5, 5), []Vec2{{0, 0}}, 0.5)
	engine.Balls()[1].Velocity = NewVec2(-0.1, 0)

	require.False(t, engine.Balls()[0].IsColliding(&engine.Balls()[1]))
	engine.Update(0.1)

	assert.Equal(t, NewVec2(0.1, 0), engine.Balls()[0].Velocity)
	assert.Equal(t, NewVec2(-0.1, 0), engine.Balls()[1].Velocity)
}

func TestHeadOnHitTransfersCueVelocity(t *testing.T) {
	engine := frictionless(10, 10)
	// Touching at the start of the frame.
	engine.InitializeBalls(NewVec2(4, 5), NewVec2(2, 0), 0, NewVec2(5, 5), []Vec2{{0, 0}}, 0.5)

	engine.Update(0.01)

	balls := engine.Balls()
	assert.InDelta(t, 0.0, balls[0].Velocity.X, 1e-12)
	assert.InDelta(t, 2.0, balls[1].Velocity.X, 1e-12)
	assert.InDelta(t, 5.02, balls[1].Position.X, 1e-12)
}

func TestSweepResolvesPairsInAscendingOrder(t *testing.T) {
	// Three touching balls in a line; only the cue moves. Visiting (0,1)
	// before (1,2) passes the velocity down the line in a single frame.
	engine := frictionless(10, 10)
	engine.InitializeBalls(NewVec2(1, 5), NewVec2(1, 0), 0, NewVec2(2, 5), []Vec2{{0, 0}, {1, 0}}, 0.5)

	engine.Update(1e-3)

	balls := engine.Balls()
	assert.InDelta(t, 0.0, balls[0].Velocity.X, 1e-12)
	assert.InDelta(t, 0.0, balls[1].Velocity.X, 1e-12)
	assert.InDelta(t, 1.0, balls[2].Velocity.X, 1e-12)
}

func TestFramesConserveMomentumWithoutWallsOrFriction(t *testing.T) {
	engine := frictionless(100, 100)
	engine.InitializeBalls(NewVec2(40, 50), NewVec2(3, 0.4), 0, NewVec2(50, 50), NineBallRack(0.5), 0.5)

	p0 := engine.Momentum()
	for i := 0; i < 200; i++ {
		engine.Update(0.01)
	}
	if diff := cmp.Diff(p0, engine.Momentum(), approx); diff != "" {
		t.Errorf("momentum drifted (-want +got):\n%s", diff)
	}
}

func TestFrictionBringsTableToRest(t *testing.T) {
	table := NineFootTable()
	engine := table.NewEngine()
	DefaultBreak(table.Width, table.Height, DefaultBallRadius).Apply(engine)
	require.False(t, engine.AllStopped())

	frames := 0
	for !engine.AllStopped() && frames < 100000 {
		engine.Update(1.0 / 120)
		frames++
	}
	assert.True(t, engine.AllStopped(), "table still moving after %d frames", frames)

	for i, b := range engine.Balls() {
		assert.GreaterOrEqual(t, b.Position.X, b.Radius-1e-9, "ball %d", i)
		assert.LessOrEqual(t, b.Position.X, table.Width-b.Radius+1e-9, "ball %d", i)
		assert.GreaterOrEqual(t, b.Position.Y, b.Radius-1e-9, "ball %d", i)
		assert.LessOrEqual(t, b.Position.Y, table.Height-b.Radius+1e-9, "ball %d", i)
	}
}

func TestDeterminism(t *testing.T) {
	run := func() []Ball {
		table := NineFootTable()
		engine := table.NewEngine()
		DefaultBreak(table.Width, table.Height, DefaultBallRadius).Apply(engine)
		for i := 0; i < 600; i++ {
			engine.Update(1.0 / 60)
		}
		out := make([]Ball, len(engine.Balls()))
		copy(out, engine.Balls())
		return out
	}

	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("non-deterministic run (-first +second):\n%s", diff)
	}
}

func TestBallsIsLiveView(t *testing.T) {
	engine := frictionless(10, 10)
	engine.InitializeBalls(NewVec2(5, 5), NewVec2(1, 0), 0, Vec2{}, nil, 0.5)
	view := engine.Balls()

	engine.Update(0.5)

	assert.Equal(t, 5.5, view[0].Position.X)
}

func TestTableSpanAccessors(t *testing.T) {
	engine := NewPhysicsEngine(2.7432, 1.3716, 0.02, 0.0005, 1)
	assert.Equal(t, 2.7432, engine.TableWidth())
	assert.Equal(t, 1.3716, engine.TableHeight())

	mu, k, decay := engine.Coefficients()
	assert.Equal(t, 0.02, mu)
	assert.Equal(t, 0.0005, k)
	assert.Equal(t, 1.0, decay)
}

func TestSnapshotCopiesState(t *testing.T) {
	engine := frictionless(4, 2)
	engine.InitializeBalls(NewVec2(1, 1), NewVec2(0.5, 0), 2, NewVec2(3, 1), []Vec2{{0, 0}}, 0.1)

	frame := engine.Snapshot(7, 0.25)
	assert.Equal(t, 7, frame.Number)
	assert.Equal(t, 0.25, frame.Elapsed)
	assert.Equal(t, 4.0, frame.Width)
	assert.Equal(t, 2.0, frame.Height)
	assert.False(t, frame.Stopped)
	require.Len(t, frame.Balls, 2)
	assert.Equal(t, BallState{ID: 0, X: 1, Y: 1, VX: 0.5, Spin: 2, Radius: 0.1}, frame.Balls[0])
	assert.Equal(t, BallState{ID: 1, X: 3, Y: 1, Radius: 0.1}, frame.Balls[1])

	engine.Update(1)
	assert.Equal(t, 1.0, frame.Balls[0].X, "snapshot must not follow the engine")
}

func TestKineticEnergyUnitMass(t *testing.T) {
	engine := frictionless(10, 10)
	engine.InitializeBalls(NewVec2(5, 5), NewVec2(3, 4), 0, Vec2{}, nil, 0.5)
	assert.Equal(t, 12.5, engine.KineticEnergy())
	assert.False(t, math.IsNaN(engine.KineticEnergy()))
}

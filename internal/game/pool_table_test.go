package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNineBallRackIsTouchingDiamond(t *testing.T) {
	r := DefaultBallRadius
	rack := NineBallRack(r)
	require.Len(t, rack, 9)
	assert.Equal(t, Vec2{}, rack[0], "apex sits on the rack centre")

	// Ball 1 touches balls 2 and 3; the 9-ball sits on the far tip.
	assert.InDelta(t, 2*r, rack[1].Sub(rack[0]).Length(), 1e-12)
	assert.InDelta(t, 2*r, rack[2].Sub(rack[0]).Length(), 1e-12)
	assert.InDelta(t, 4*r*math.Sqrt(3), rack[8].Y, 1e-12)
}

func TestTriangleRack(t *testing.T) {
	r := 0.5
	rack := TriangleRack(5, r)
	require.Len(t, rack, 15)

	// No two balls overlap.
	for i := range rack {
		for j := i + 1; j < len(rack); j++ {
			assert.GreaterOrEqual(t, rack[i].Sub(rack[j]).Length(), 2*r-1e-9, "balls %d and %d overlap", i, j)
		}
	}
	assert.Equal(t, Vec2{X: -4 * r, Y: 4 * r * math.Sqrt(3)}, rack[10])
	assert.Empty(t, TriangleRack(0, r))
}

func TestRackByName(t *testing.T) {
	for _, name := range RackNames() {
		_, err := RackByName(name, DefaultBallRadius)
		assert.NoError(t, err, name)
	}

	eight, err := RackByName("eight-ball", DefaultBallRadius)
	require.NoError(t, err)
	assert.Len(t, eight, 15)

	_, err = RackByName("snooker", DefaultBallRadius)
	assert.Error(t, err)
}

func TestDefaultBreakLayout(t *testing.T) {
	table := NineFootTable()
	b := DefaultBreak(table.Width, table.Height, DefaultBallRadius)

	assert.InDelta(t, table.Width*0.2, b.CuePos.X, 1e-12)
	assert.InDelta(t, table.Height*0.5, b.CuePos.Y, 1e-12)
	assert.InDelta(t, table.Width*0.8, b.RackCenter.X, 1e-12)

	engine := table.NewEngine()
	b.Apply(engine)
	assert.Len(t, engine.Balls(), 10)
	assert.Equal(t, 30.0, engine.Balls()[0].Spin)
}

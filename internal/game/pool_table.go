package game

import (
	"fmt"
	"math"
	"sort"
)

// Table holds the dimensions and coefficients an engine is built from.
type Table struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Friction  float64 `json:"friction"`
	Magnus    float64 `json:"magnus"`
	SpinDecay float64 `json:"spin_decay"`
}

// NineFootTable is a regulation 9ft table with the default cloth coefficients.
func NineFootTable() Table {
	return Table{
		Width:     NineFootTableWidth,
		Height:    NineFootTableHeight,
		Friction:  DefaultFriction,
		Magnus:    DefaultMagnus,
		SpinDecay: DefaultSpinDecay,
	}
}

// NewEngine builds an empty engine for this table.
func (t Table) NewEngine() *PhysicsEngine {
	return NewPhysicsEngine(t.Width, t.Height, t.Friction, t.Magnus, t.SpinDecay)
}

// Break is everything InitializeBalls needs for an opening shot.
type Break struct {
	CuePos      Vec2    `json:"cue_pos"`
	CueVel      Vec2    `json:"cue_vel"`
	CueSpin     float64 `json:"cue_spin"`
	RackCenter  Vec2    `json:"rack_center"`
	RackOffsets []Vec2  `json:"rack_offsets"`
	BallRadius  float64 `json:"ball_radius"`
}

// DefaultBreak places the cue ball at a fifth of the table length with a
// firm, spinning shot towards a 9-ball diamond at four fifths.
func DefaultBreak(width, height, radius float64) Break {
	return Break{
		CuePos:      NewVec2(width*0.2, height*0.5),
		CueVel:      NewVec2(3.0, 1.0),
		CueSpin:     30.0,
		RackCenter:  NewVec2(width*0.8, height*0.5),
		RackOffsets: NineBallRack(radius),
		BallRadius:  radius,
	}
}

// Apply initializes pe with this break.
func (b Break) Apply(pe *PhysicsEngine) {
	pe.InitializeBalls(b.CuePos, b.CueVel, b.CueSpin, b.RackCenter, b.RackOffsets, b.BallRadius)
}

// NineBallRack returns the diamond offsets for balls 1..9, apex first.
func NineBallRack(r float64) []Vec2 {
	rowH := r * math.Sqrt(3)
	return []Vec2{
		{0, 0},
		{-r, rowH},
		{r, rowH},
		{-2 * r, 2 * rowH},
		{0, 2 * rowH},
		{2 * r, 2 * rowH},
		{-r, 3 * rowH},
		{r, 3 * rowH},
		{0, 4 * rowH},
	}
}

// TriangleRack returns offsets for a triangle of the given number of rows,
// apex at the origin, row by row. Five rows gives the 15-ball rack.
func TriangleRack(rows int, r float64) []Vec2 {
	if rows <= 0 {
		return nil
	}
	rowH := r * math.Sqrt(3)
	offsets := make([]Vec2, 0, rows*(rows+1)/2)
	for row := 0; row < rows; row++ {
		for i := 0; i <= row; i++ {
			x := float64(2*i-row) * r
			offsets = append(offsets, Vec2{X: x, Y: float64(row) * rowH})
		}
	}
	return offsets
}

var racks = map[string]func(r float64) []Vec2{
	"nine-ball":  NineBallRack,
	"eight-ball": func(r float64) []Vec2 { return TriangleRack(5, r) },
	"single":     func(float64) []Vec2 { return []Vec2{{0, 0}} },
	"empty":      func(float64) []Vec2 { return nil },
}

// RackByName resolves a named rack layout for radius r.
func RackByName(name string, r float64) ([]Vec2, error) {
	fn, ok := racks[name]
	if !ok {
		return nil, fmt.Errorf("unknown rack %q", name)
	}
	return fn(r), nil
}

// RackNames lists the known rack layouts in sorted order.
func RackNames() []string {
	names := make([]string, 0, len(racks))
	for name := range racks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

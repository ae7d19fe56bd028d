package game

// BallState is a ball's position and motion for serialization.
type BallState struct {
	ID     int     `json:"id"` // index in the engine: 0 = cue, 1..N = rack order
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Spin   float64 `json:"spin"`
	Radius float64 `json:"radius"`
}

// Frame is a point-in-time copy of the table, safe to hand to other goroutines.
type Frame struct {
	Number  int         `json:"number"`
	Elapsed float64     `json:"elapsed"` // seconds of simulated time
	Width   float64     `json:"width"`
	Height  float64     `json:"height"`
	Stopped bool        `json:"stopped"`
	Balls   []BallState `json:"balls"`
}

func ballState(id int, b *Ball) BallState {
	return BallState{
		ID:     id,
		X:      b.Position.X,
		Y:      b.Position.Y,
		VX:     b.Velocity.X,
		VY:     b.Velocity.Y,
		Spin:   b.Spin,
		Radius: b.Radius,
	}
}

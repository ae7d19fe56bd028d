package game

// Physical constants and numeric guards for the table simulation.
const (
	Gravity = 9.81 // m/s²

	// CollisionEpsilon is the squared centre distance below which two balls
	// are treated as coincident and no impulse is exchanged.
	CollisionEpsilon = 1e-12

	// MagnusEpsilon is the spin and speed magnitude below which the Magnus
	// force is skipped.
	MagnusEpsilon = 1e-6

	// NormalizeEpsilon is the vector length below which Normalize yields zero.
	NormalizeEpsilon = 1e-9

	// RestSpeed is the speed at or below which a ball counts as stopped.
	RestSpeed = 1e-6
)

// Nine-foot table and regulation ball, as used by the default break.
const (
	NineFootTableWidth  = 2.7432
	NineFootTableHeight = 1.3716
	DefaultBallRadius   = 0.028575

	DefaultFriction  = 0.02
	DefaultMagnus    = 0.0005
	DefaultSpinDecay = 1.0
)

package physics

const (
	CapsuleRadius = 0.5
	StandHeight   = 2.0
	CrouchHeight  = 1.0

	GroundProbeDistance    = 0.001
	CollisionAxisTolerance = 1e-9
)

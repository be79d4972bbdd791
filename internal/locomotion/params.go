package locomotion

const (
	// FrictionFloor is the lowest speed friction is computed against, so a
	// grounded character comes to a full stop instead of coasting.
	FrictionFloor = 10.0
	// GroundBias is the vertical velocity held while grounded to keep the
	// capsule seated on the surface between ticks.
	GroundBias = -1.0
)

// Params are the tunables of one integrator. They are fixed for its lifetime.
type Params struct {
	BaseSpeed          float64 `yaml:"base_speed"`
	AirSpeedCap        float64 `yaml:"air_speed_cap"`
	GroundAcceleration float64 `yaml:"ground_acceleration"`
	AirAcceleration    float64 `yaml:"air_acceleration"`
	GroundFriction     float64 `yaml:"ground_friction"`
	AirFriction        float64 `yaml:"air_friction"`
	Gravity            float64 `yaml:"gravity"`
	JumpImpulse        float64 `yaml:"jump_impulse"`
	WalkMultiplier     float64 `yaml:"walk_multiplier"`
	CrouchMultiplier   float64 `yaml:"crouch_multiplier"`
}

func DefaultParams() Params {
	return Params{
		BaseSpeed:          10,
		AirSpeedCap:        2,
		GroundAcceleration: 20,
		AirAcceleration:    20,
		GroundFriction:     7,
		AirFriction:        0.4,
		Gravity:            18,
		JumpImpulse:        8,
		WalkMultiplier:     0.5,
		CrouchMultiplier:   0.5,
	}
}

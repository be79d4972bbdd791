package locomotion

import "github.com/go-gl/mathgl/mgl64"

const durationEpsilon = 1e-9

// Modifier is a finite effect stepped once per tick after the mode dispatch.
// Step reports true once the effect has run its course.
type Modifier interface {
	Name() string
	Step(state *State, dt float64) bool
}

// SpeedScaler is implemented by modifiers that scale the effective base speed
// while they are active.
type SpeedScaler interface {
	SpeedMultiplier() float64
}

// Knockback spreads an impulse of Direction*Force evenly over Duration.
type Knockback struct {
	Direction mgl64.Vec3
	Force     float64
	Duration  float64

	elapsed float64
}

func NewKnockback(direction mgl64.Vec3, force, duration float64) *Knockback {
	return &Knockback{Direction: direction, Force: force, Duration: duration}
}

func (k *Knockback) Name() string { return "knockback" }

func (k *Knockback) Step(state *State, dt float64) bool {
	if k.Duration <= 0 {
		state.Velocity = state.Velocity.Add(k.Direction.Mul(k.Force))
		return true
	}

	// The last step is clipped to the time left so the total impulse is exact.
	step := dt
	finished := false
	if remaining := k.Duration - k.elapsed; step >= remaining-durationEpsilon {
		step = remaining
		finished = true
	}

	state.Velocity = state.Velocity.Add(k.Direction.Mul(k.Force * step / k.Duration))
	k.elapsed += step
	return finished
}

func (k *Knockback) Elapsed() float64 { return k.elapsed }

// SpeedBoost multiplies the effective base speed while active. It never
// writes the base speed, so overlapping boosts compose and expire on their own.
type SpeedBoost struct {
	Multiplier float64
	Duration   float64

	elapsed float64
}

func NewSpeedBoost(multiplier, duration float64) *SpeedBoost {
	return &SpeedBoost{Multiplier: multiplier, Duration: duration}
}

func (b *SpeedBoost) Name() string { return "speed_boost" }

func (b *SpeedBoost) Step(_ *State, dt float64) bool {
	b.elapsed += dt
	return b.elapsed >= b.Duration-durationEpsilon
}

func (b *SpeedBoost) SpeedMultiplier() float64 { return b.Multiplier }

func (b *SpeedBoost) Elapsed() float64 { return b.elapsed }

// Launch applies a directional launch to state. It is immediate, not a
// Modifier: the vertical velocity is overwritten, never accumulated.
func Launch(state *State, upwardForce, horizontalMultiplier float64) {
	state.Grounded = false
	state.Velocity[0] *= horizontalMultiplier
	state.Velocity[2] *= horizontalMultiplier
	state.Velocity[1] = upwardForce
}

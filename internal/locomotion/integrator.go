package locomotion

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Versifine/strafe/internal/event"
)

// Publisher receives discrete movement events. *event.Bus satisfies it.
type Publisher interface {
	Publish(eventName string, evt any)
}

// Integrator owns one character's movement state and its active modifiers.
// It is not safe for concurrent use; the owner serialises calls.
type Integrator struct {
	params    Params
	state     State
	modifiers []Modifier
	publisher Publisher
	owner     string
	jumpHeld  bool
}

func New(params Params, owner string, publisher Publisher) *Integrator {
	return &Integrator{
		params:    params,
		owner:     owner,
		publisher: publisher,
	}
}

func (it *Integrator) Params() Params { return it.params }

func (it *Integrator) State() State { return it.state }

func (it *Integrator) Velocity() mgl64.Vec3 { return it.state.Velocity }

// SetGrounded records the collision result of the last sweep. It is read by
// the next Step.
func (it *Integrator) SetGrounded(grounded bool) {
	it.state.Grounded = grounded
}

// RequestJump sets the jump intent directly, for callers that deliver input
// as events rather than held state.
func (it *Integrator) RequestJump() {
	it.state.WantsJump = true
}

// Step runs one tick: friction (unless a jump is pending), the ground or air
// update, then every active modifier in insertion order. It returns the
// velocity to hand to the collision sweep.
func (it *Integrator) Step(in Input, dt float64) mgl64.Vec3 {
	it.applyInput(in)

	if !it.state.WantsJump {
		it.applyFriction(dt)
	}

	wishDir := in.WishDirection()
	if it.state.Grounded {
		it.groundMove(wishDir, dt)
	} else {
		it.airMove(wishDir, dt)
	}

	it.stepModifiers(dt)
	return it.state.Velocity
}

func (it *Integrator) applyInput(in Input) {
	it.state.Walking = in.Walk
	it.state.Crouched = in.Crouch

	switch {
	case in.Jump && !it.jumpHeld:
		it.state.WantsJump = true
	case !in.Jump && it.jumpHeld:
		it.state.WantsJump = false
	}
	it.jumpHeld = in.Jump
}

func (it *Integrator) applyFriction(dt float64) {
	if !it.state.Grounded {
		return
	}
	it.state.Velocity = ApplyFriction(it.state.Velocity, it.params.GroundFriction, dt)
}

func (it *Integrator) groundMove(wishDir mgl64.Vec3, dt float64) {
	it.state.Velocity = Accelerate(it.state.Velocity, wishDir, it.wishSpeed(wishDir), it.params.GroundAcceleration, dt)
	it.state.Velocity[1] = GroundBias

	if it.state.WantsJump {
		it.state.Velocity[1] = it.params.JumpImpulse
		it.state.WantsJump = false
		it.publish(event.EventJump, event.JumpEvent{Character: it.owner, Velocity: it.state.Velocity})
	}
}

func (it *Integrator) airMove(wishDir mgl64.Vec3, dt float64) {
	speed := it.wishSpeed(wishDir)
	if speed > it.params.AirSpeedCap {
		speed = it.params.AirSpeedCap
	}
	it.state.Velocity = Accelerate(it.state.Velocity, wishDir, speed, it.params.AirAcceleration, dt)
	it.state.Velocity[1] -= it.params.Gravity * dt
}

func (it *Integrator) wishSpeed(wishDir mgl64.Vec3) float64 {
	speed := wishDir.Len() * it.EffectiveBaseSpeed()
	if it.state.Walking {
		speed *= it.params.WalkMultiplier
	}
	if it.state.Crouched {
		speed *= it.params.CrouchMultiplier
	}
	return speed
}

// EffectiveBaseSpeed is the base speed plus the permanent bonus, scaled by
// every active speed boost.
func (it *Integrator) EffectiveBaseSpeed() float64 {
	speed := it.params.BaseSpeed + it.state.SpeedBonus
	for _, m := range it.modifiers {
		if s, ok := m.(SpeedScaler); ok {
			speed *= s.SpeedMultiplier()
		}
	}
	return speed
}

func (it *Integrator) AddSpeedBonus(amount float64) {
	it.state.SpeedBonus += amount
}

func (it *Integrator) AddModifier(m Modifier) {
	if m == nil {
		return
	}
	it.modifiers = append(it.modifiers, m)
	it.publish(event.EventModifierStart, event.ModifierEvent{Character: it.owner, Modifier: m.Name()})
}

func (it *Integrator) Knockback(direction mgl64.Vec3, force, duration float64) {
	it.AddModifier(NewKnockback(direction, force, duration))
}

func (it *Integrator) SpeedBoost(multiplier, duration float64) {
	it.AddModifier(NewSpeedBoost(multiplier, duration))
}

func (it *Integrator) Launch(upwardForce, horizontalMultiplier float64) {
	Launch(&it.state, upwardForce, horizontalMultiplier)
}

func (it *Integrator) stepModifiers(dt float64) {
	if len(it.modifiers) == 0 {
		return
	}

	kept := it.modifiers[:0]
	var finished []Modifier
	for _, m := range it.modifiers {
		if m.Step(&it.state, dt) {
			finished = append(finished, m)
			continue
		}
		kept = append(kept, m)
	}
	for i := len(kept); i < len(it.modifiers); i++ {
		it.modifiers[i] = nil
	}
	it.modifiers = kept

	for _, m := range finished {
		it.publish(event.EventModifierEnd, event.ModifierEvent{Character: it.owner, Modifier: m.Name()})
	}
}

// Modifiers returns the names of the active modifiers in insertion order.
func (it *Integrator) Modifiers() []string {
	names := make([]string, 0, len(it.modifiers))
	for _, m := range it.modifiers {
		names = append(names, m.Name())
	}
	return names
}

// DropModifiers discards every active modifier without letting it finish.
// It returns the names of what was dropped.
func (it *Integrator) DropModifiers() []string {
	dropped := it.Modifiers()
	it.modifiers = nil
	return dropped
}

// Halt zeroes velocity and clears the pending jump and all modifiers.
func (it *Integrator) Halt() {
	it.state.Velocity = mgl64.Vec3{}
	it.state.WantsJump = false
	it.modifiers = nil
}

func (it *Integrator) publish(name string, evt any) {
	if it.publisher == nil {
		return
	}
	it.publisher.Publish(name, evt)
}

package event

import "github.com/go-gl/mathgl/mgl64"

const (
	EventJump          = "locomotion.jump"
	EventLanded        = "locomotion.landed"
	EventModifierStart = "locomotion.modifier.start"
	EventModifierEnd   = "locomotion.modifier.end"
	EventDespawn       = "character.despawn"
)

type JumpEvent struct {
	Character string
	Velocity  mgl64.Vec3
}

type LandedEvent struct {
	Character string
	// ImpactSpeed is the downward speed carried into the landing tick.
	ImpactSpeed float64
}

type ModifierEvent struct {
	Character string
	Modifier  string
}

type DespawnEvent struct {
	Character string
	// Dropped lists the modifiers discarded without running to completion.
	Dropped []string
}

package character

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Versifine/strafe/internal/event"
	"github.com/Versifine/strafe/internal/locomotion"
	"github.com/Versifine/strafe/internal/physics"
)

// Collider moves a character capsule through the world.
type Collider interface {
	MoveAndCollide(pos, delta mgl64.Vec3, height float64) (mgl64.Vec3, bool)
}

// headroomChecker is implemented by colliders that can tell whether a taller
// capsule fits at a position. Without it a crouch is always released.
type headroomChecker interface {
	Blocked(pos mgl64.Vec3, height float64) bool
}

type Snapshot struct {
	ID         string     `json:"id"`
	Position   mgl64.Vec3 `json:"position"`
	Velocity   mgl64.Vec3 `json:"velocity"`
	Speed      float64    `json:"speed"`
	Grounded   bool       `json:"grounded"`
	Crouched   bool       `json:"crouched"`
	Walking    bool       `json:"walking"`
	Paused     bool       `json:"paused"`
	SpeedBonus float64    `json:"speed_bonus"`
	Modifiers  []string   `json:"modifiers"`
}

// Character binds an integrator to a position in the world. All methods are
// safe for concurrent use; a tick and a trigger never interleave.
type Character struct {
	mu         sync.Mutex
	id         string
	integrator *locomotion.Integrator
	position   mgl64.Vec3
	collider   Collider
	publisher  locomotion.Publisher
	crouched   bool
	paused     bool
	destroyed  bool
}

func New(id string, params locomotion.Params, spawn mgl64.Vec3, collider Collider, publisher locomotion.Publisher) *Character {
	c := &Character{
		id:         id,
		integrator: locomotion.New(params, id, publisher),
		position:   spawn,
		collider:   collider,
		publisher:  publisher,
	}
	c.settle()
	return c
}

func (c *Character) ID() string {
	if c == nil {
		return ""
	}
	return c.id
}

// Tick advances the character by dt seconds: the integrator produces a
// velocity and the collider resolves the displacement.
func (c *Character) Tick(in locomotion.Input, dt float64) error {
	if c == nil {
		return fmt.Errorf("character is nil")
	}
	if c.collider == nil {
		return fmt.Errorf("character %s has no collider", c.id)
	}
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("invalid tick interval %v", dt)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed || c.paused {
		return nil
	}

	if !in.Crouch && c.crouched && !c.canStand() {
		in.Crouch = true
	}

	wasGrounded := c.integrator.State().Grounded
	velocity := c.integrator.Step(in, dt)

	c.crouched = in.Crouch
	next, grounded := c.collider.MoveAndCollide(c.position, velocity.Mul(dt), c.height())
	c.position = next
	c.integrator.SetGrounded(grounded)

	if grounded && !wasGrounded && c.publisher != nil {
		c.publisher.Publish(event.EventLanded, event.LandedEvent{
			Character:   c.id,
			ImpactSpeed: math.Abs(velocity.Y()),
		})
	}
	return nil
}

func (c *Character) Knockback(direction mgl64.Vec3, force, duration float64) {
	c.trigger(func(it *locomotion.Integrator) { it.Knockback(direction, force, duration) })
}

func (c *Character) SpeedBoost(multiplier, duration float64) {
	c.trigger(func(it *locomotion.Integrator) { it.SpeedBoost(multiplier, duration) })
}

func (c *Character) Launch(upwardForce, horizontalMultiplier float64) {
	c.trigger(func(it *locomotion.Integrator) { it.Launch(upwardForce, horizontalMultiplier) })
}

// AddSpeedBonus permanently raises the base speed.
func (c *Character) AddSpeedBonus(amount float64) {
	c.trigger(func(it *locomotion.Integrator) { it.AddSpeedBonus(amount) })
}

func (c *Character) trigger(fn func(it *locomotion.Integrator)) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	fn(c.integrator)
}

// Teleport moves the character without sweeping. Velocity, the pending jump
// and every active modifier are discarded.
func (c *Character) Teleport(pos mgl64.Vec3) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	c.position = pos
	c.integrator.Halt()
	c.settle()
	slog.Debug("Character teleported", "character", c.id, "position", pos)
}

// SetPaused turns ticks into no-ops while set. Triggers still queue.
func (c *Character) SetPaused(paused bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.paused = paused
	c.mu.Unlock()
}

// Destroy stops the character for good. Active modifiers are dropped without
// finishing and their names returned; later calls return nil.
func (c *Character) Destroy() []string {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return nil
	}
	c.destroyed = true
	return c.integrator.DropModifiers()
}

func (c *Character) Destroyed() bool {
	if c == nil {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

func (c *Character) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	state := c.integrator.State()
	return Snapshot{
		ID:         c.id,
		Position:   c.position,
		Velocity:   state.Velocity,
		Speed:      state.HorizontalSpeed(),
		Grounded:   state.Grounded,
		Crouched:   c.crouched,
		Walking:    state.Walking,
		Paused:     c.paused,
		SpeedBonus: state.SpeedBonus,
		Modifiers:  c.integrator.Modifiers(),
	}
}

func (c *Character) height() float64 {
	if c.crouched {
		return physics.CrouchHeight
	}
	return physics.StandHeight
}

func (c *Character) canStand() bool {
	h, ok := c.collider.(headroomChecker)
	if !ok {
		return true
	}
	return !h.Blocked(c.position, physics.StandHeight)
}

// settle probes the ground under the current position without moving.
func (c *Character) settle() {
	if c.collider == nil {
		return
	}
	_, grounded := c.collider.MoveAndCollide(c.position, mgl64.Vec3{}, c.height())
	c.integrator.SetGrounded(grounded)
}

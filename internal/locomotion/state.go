package locomotion

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// State is the per-character movement state mutated once per tick.
type State struct {
	Velocity  mgl64.Vec3
	Grounded  bool
	Crouched  bool
	Walking   bool
	WantsJump bool
	// SpeedBonus is a permanent additive bonus on top of Params.BaseSpeed.
	SpeedBonus float64
}

func (s State) HorizontalSpeed() float64 {
	return math.Hypot(s.Velocity.X(), s.Velocity.Z())
}

// Input is the already-resolved control state for one tick.
type Input struct {
	// Move is the local move vector: X strafes right, Y moves forward.
	Move mgl64.Vec2
	// Yaw is the character heading in degrees about +Y.
	Yaw    float64
	Walk   bool
	Crouch bool
	// Jump is the held state of the jump control; only its edges matter.
	Jump bool
}

// WishDirection maps the local move vector onto the horizontal world plane.
func (in Input) WishDirection() mgl64.Vec3 {
	local := mgl64.Vec3{in.Move.X(), 0, in.Move.Y()}
	if in.Yaw == 0 {
		return local
	}
	return mgl64.Rotate3DY(mgl64.DegToRad(in.Yaw)).Mul3x1(local)
}

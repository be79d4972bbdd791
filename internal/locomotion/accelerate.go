package locomotion

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Accelerate steers velocity toward wishDir. Only the component of velocity
// along wishDir is compared against wishSpeed, so strafing can add speed
// while already moving fast in another direction. It never decelerates.
func Accelerate(velocity, wishDir mgl64.Vec3, wishSpeed, accel, dt float64) mgl64.Vec3 {
	if wishDir.LenSqr() == 0 {
		return velocity
	}

	current := velocity.Dot(wishDir)
	add := wishSpeed - current
	if add <= 0 {
		return velocity
	}

	accelSpeed := accel * dt * wishSpeed
	if accelSpeed > add {
		accelSpeed = add
	}
	return velocity.Add(wishDir.Mul(accelSpeed))
}

// ApplyFriction decays the horizontal components of velocity. Below
// FrictionFloor the drop is computed as if moving at the floor speed.
// The vertical component is left alone.
func ApplyFriction(velocity mgl64.Vec3, coefficient, dt float64) mgl64.Vec3 {
	speed := math.Hypot(velocity.X(), velocity.Z())
	if speed == 0 {
		return velocity
	}

	control := math.Max(speed, FrictionFloor)
	drop := control * coefficient * dt
	newSpeed := math.Max(speed-drop, 0)

	scale := newSpeed / speed
	velocity[0] *= scale
	velocity[2] *= scale
	return velocity
}

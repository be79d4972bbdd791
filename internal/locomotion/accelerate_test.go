package locomotion

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

const tolerance = 1e-9

func TestAccelerateLeavesVelocityWhenAlreadyFastEnough(t *testing.T) {
	tests := []struct {
		name     string
		velocity mgl64.Vec3
		wishDir  mgl64.Vec3
		speed    float64
	}{
		{"exactly at wish speed", mgl64.Vec3{10, 0, 0}, mgl64.Vec3{1, 0, 0}, 10},
		{"above wish speed", mgl64.Vec3{14, -1, 0}, mgl64.Vec3{1, 0, 0}, 10},
		{"diagonal projection above", mgl64.Vec3{8, 0, 8}, mgl64.Vec3{math.Sqrt2 / 2, 0, math.Sqrt2 / 2}, 10},
		{"zero wish speed", mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Accelerate(tt.velocity, tt.wishDir, tt.speed, 20, 0.1)
			assert.Equal(t, tt.velocity, got)
		})
	}
}

func TestAccelerateZeroDirectionIsNoOp(t *testing.T) {
	v := mgl64.Vec3{3, -1, 2}
	got := Accelerate(v, mgl64.Vec3{}, 10, 20, 0.1)
	assert.Equal(t, v, got)
	for i := 0; i < 3; i++ {
		assert.False(t, math.IsNaN(got[i]) || math.IsInf(got[i], 0), "component %d not finite", i)
	}
}

func TestAccelerateApproachesWishSpeedWithoutOvershoot(t *testing.T) {
	dir := mgl64.Vec3{0, 0, 1}
	tests := []struct {
		name  string
		accel float64
		dt    float64
	}{
		{"default rate", 20, 0.1},
		{"slow rate", 2, 0.1},
		{"small steps", 20, 0.005},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v mgl64.Vec3
			prev := 0.0
			for i := 0; i < 500; i++ {
				v = Accelerate(v, dir, 10, tt.accel, tt.dt)
				projected := v.Dot(dir)
				assert.GreaterOrEqual(t, projected, prev)
				assert.LessOrEqual(t, projected, 10.0)
				prev = projected
			}
			assert.InDelta(t, 10.0, prev, tolerance)
		})
	}
}

func TestAccelerateStrafeAddsSpeedBeyondWishSpeed(t *testing.T) {
	v := mgl64.Vec3{10, 0, 0}
	got := Accelerate(v, mgl64.Vec3{0, 0, 1}, 10, 20, 0.02)

	assert.InDelta(t, 10.0, got.X(), tolerance)
	assert.InDelta(t, 4.0, got.Z(), tolerance)
	assert.Greater(t, math.Hypot(got.X(), got.Z()), 10.0)
}

func TestAccelerateAppliesVerticalDirectionComponent(t *testing.T) {
	got := Accelerate(mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}, 5, 1, 1)
	assert.InDelta(t, 5.0, got.Y(), tolerance)
}

func TestApplyFrictionKeepsSpeedWithinBounds(t *testing.T) {
	tests := []struct {
		name     string
		velocity mgl64.Vec3
		friction float64
		dt       float64
	}{
		{"fast", mgl64.Vec3{30, 2, -40}, 7, 0.02},
		{"below floor", mgl64.Vec3{1, 0, 1}, 7, 0.02},
		{"huge step", mgl64.Vec3{-12, 0, 5}, 7, 1},
		{"zero friction", mgl64.Vec3{4, 0, 3}, 0, 0.02},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := math.Hypot(tt.velocity.X(), tt.velocity.Z())
			got := ApplyFriction(tt.velocity, tt.friction, tt.dt)
			after := math.Hypot(got.X(), got.Z())

			assert.GreaterOrEqual(t, after, 0.0)
			assert.LessOrEqual(t, after, before+tolerance)
			assert.Equal(t, tt.velocity.Y(), got.Y())
			// no reversal: each horizontal component keeps its sign or hits zero
			assert.GreaterOrEqual(t, got.X()*tt.velocity.X(), 0.0)
			assert.GreaterOrEqual(t, got.Z()*tt.velocity.Z(), 0.0)
		})
	}
}

func TestApplyFrictionExpectedDrop(t *testing.T) {
	// control speed 20 above the floor: drop = 20*7*0.02 = 2.8
	got := ApplyFriction(mgl64.Vec3{20, -1, 0}, 7, 0.02)
	assert.InDelta(t, 17.2, got.X(), tolerance)
	assert.Equal(t, -1.0, got.Y())

	// below the floor the drop is computed against 10: 10*7*0.02 = 1.4
	got = ApplyFriction(mgl64.Vec3{1, 0, 0}, 7, 0.02)
	assert.Equal(t, 0.0, got.X())
}

func TestApplyFrictionZeroHorizontalSpeed(t *testing.T) {
	got := ApplyFriction(mgl64.Vec3{0, -3, 0}, 7, 0.02)
	assert.Equal(t, mgl64.Vec3{0, -3, 0}, got)
}

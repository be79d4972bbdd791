package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	axisX = 0
	axisY = 1
	axisZ = 2
)

// Vertical first so a landing is resolved before sliding along walls.
var sweepOrder = [3]int{axisY, axisX, axisZ}

type BlockStore interface {
	IsSolid(x, y, z int) bool
}

type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// CapsuleAABB bounds a character whose feet are centred on pos.
func CapsuleAABB(pos mgl64.Vec3, height float64) AABB {
	return AABB{
		Min: mgl64.Vec3{pos.X() - CapsuleRadius, pos.Y(), pos.Z() - CapsuleRadius},
		Max: mgl64.Vec3{pos.X() + CapsuleRadius, pos.Y() + height, pos.Z() + CapsuleRadius},
	}
}

func (a AABB) Offset(d mgl64.Vec3) AABB {
	return AABB{Min: a.Min.Add(d), Max: a.Max.Add(d)}
}

func (a AABB) Intersects(b AABB) bool {
	for i := 0; i < 3; i++ {
		if a.Min[i] >= b.Max[i] || a.Max[i] <= b.Min[i] {
			return false
		}
	}
	return true
}

func CollidesWithBlock(box AABB, blockStore BlockStore) bool {
	if blockStore == nil {
		return false
	}

	for y := floorForMin(box.Min.Y()); y <= floorForMax(box.Max.Y()); y++ {
		for x := floorForMin(box.Min.X()); x <= floorForMax(box.Max.X()); x++ {
			for z := floorForMin(box.Min.Z()); z <= floorForMax(box.Max.Z()); z++ {
				if !blockStore.IsSolid(x, y, z) {
					continue
				}
				if box.Intersects(blockAABB(x, y, z)) {
					return true
				}
			}
		}
	}
	return false
}

// Contacts reports which faces stopped a sweep short.
type Contacts struct {
	Floor   bool
	Ceiling bool
	Wall    bool
}

// ResolveMovement moves the box at pos by delta one axis at a time, stopping
// each axis at the first solid cell. It returns the resolved position and
// the faces that were hit.
func ResolveMovement(pos, delta mgl64.Vec3, height float64, blockStore BlockStore) (mgl64.Vec3, Contacts) {
	var contacts Contacts
	for _, axis := range sweepOrder {
		want := delta[axis]
		allowed := sweepAxis(pos, want, axis, height, blockStore)
		pos[axis] += allowed

		if nearlyEqual(allowed, want) {
			continue
		}
		switch {
		case axis != axisY:
			contacts.Wall = true
		case want < 0:
			contacts.Floor = true
		default:
			contacts.Ceiling = true
		}
	}
	return pos, contacts
}

func sweepAxis(pos mgl64.Vec3, delta float64, axis int, height float64, blockStore BlockStore) float64 {
	if blockStore == nil || nearlyZero(delta) {
		return delta
	}

	box := CapsuleAABB(pos, height)
	u, w := crossAxes(axis)
	minU, maxU := floorForMin(box.Min[u]), floorForMax(box.Max[u])
	minW, maxW := floorForMin(box.Min[w]), floorForMax(box.Max[w])

	solidAt := func(a, i, j int) bool {
		var cell [3]int
		cell[axis], cell[u], cell[w] = a, i, j
		return blockStore.IsSolid(cell[0], cell[1], cell[2])
	}
	sliceSolid := func(a int) bool {
		for i := minU; i <= maxU; i++ {
			for j := minW; j <= maxW; j++ {
				if solidAt(a, i, j) {
					return true
				}
			}
		}
		return false
	}

	allowed := delta
	if delta > 0 {
		start := int(math.Floor(box.Max[axis]))
		end := int(math.Floor(box.Max[axis] + delta))
		for a := start; a <= end; a++ {
			if !sliceSolid(a) {
				continue
			}
			if candidate := float64(a) - box.Max[axis]; candidate < allowed {
				allowed = candidate
			}
			break
		}
	} else {
		start := int(math.Floor(box.Min[axis] - CollisionAxisTolerance))
		end := int(math.Floor(box.Min[axis] + delta))
		for a := start; a >= end; a-- {
			if !sliceSolid(a) {
				continue
			}
			if candidate := float64(a+1) - box.Min[axis]; candidate > allowed {
				allowed = candidate
			}
			break
		}
	}
	return allowed
}

// IsStandingOnSolid probes a thin slab just under the feet.
func IsStandingOnSolid(pos mgl64.Vec3, height float64, blockStore BlockStore) bool {
	if blockStore == nil {
		return false
	}
	probe := CapsuleAABB(pos, height).Offset(mgl64.Vec3{0, -GroundProbeDistance, 0})
	return CollidesWithBlock(probe, blockStore)
}

func crossAxes(axis int) (int, int) {
	switch axis {
	case axisX:
		return axisY, axisZ
	case axisY:
		return axisX, axisZ
	default:
		return axisX, axisY
	}
}

func blockAABB(x, y, z int) AABB {
	return AABB{
		Min: mgl64.Vec3{float64(x), float64(y), float64(z)},
		Max: mgl64.Vec3{float64(x + 1), float64(y + 1), float64(z + 1)},
	}
}

func floorForMin(v float64) int {
	return int(math.Floor(v + CollisionAxisTolerance))
}

func floorForMax(v float64) int {
	return int(math.Floor(v - CollisionAxisTolerance))
}

func nearlyZero(v float64) bool {
	return math.Abs(v) <= CollisionAxisTolerance
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= CollisionAxisTolerance
}

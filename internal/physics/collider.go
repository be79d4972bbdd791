package physics

import "github.com/go-gl/mathgl/mgl64"

// BlockCollider is the move-and-collide primitive over a voxel block store.
type BlockCollider struct {
	Blocks BlockStore
}

func NewBlockCollider(blocks BlockStore) *BlockCollider {
	return &BlockCollider{Blocks: blocks}
}

// MoveAndCollide sweeps a capsule of the given height from pos by delta and
// reports whether it ends resting on a walkable surface.
func (c *BlockCollider) MoveAndCollide(pos, delta mgl64.Vec3, height float64) (mgl64.Vec3, bool) {
	next, contacts := ResolveMovement(pos, delta, height, c.Blocks)
	if contacts.Floor {
		return next, true
	}
	if delta.Y() > 0 {
		return next, false
	}
	return next, IsStandingOnSolid(next, height, c.Blocks)
}

// Blocked reports whether a capsule of the given height at pos overlaps a
// solid block.
func (c *BlockCollider) Blocked(pos mgl64.Vec3, height float64) bool {
	return CollidesWithBlock(CapsuleAABB(pos, height), c.Blocks)
}

// Plane is an infinite floor at Height with nothing else in the world.
type Plane struct {
	Height float64
}

func (p Plane) MoveAndCollide(pos, delta mgl64.Vec3, _ float64) (mgl64.Vec3, bool) {
	next := pos.Add(delta)
	if next.Y() > p.Height {
		return next, false
	}
	next[1] = p.Height
	return next, delta.Y() <= 0
}

func (p Plane) Blocked(pos mgl64.Vec3, _ float64) bool {
	return pos.Y() < p.Height
}

// Package world 负责地形和角色花名册
package world

import "sync"

const (
	ChunkSize        = 16
	BlocksPerSection = ChunkSize * ChunkSize * ChunkSize
)

type ChunkPos struct {
	X int32
	Z int32
}

type section [BlocksPerSection]bool

type chunk struct {
	sections map[int]*section
	solid    int
}

// Terrain is a voxel set of solid unit cells, stored in 16x16 chunk columns
// split into 16-high sections. Any y is valid.
type Terrain struct {
	mu     sync.RWMutex
	chunks map[ChunkPos]*chunk
}

func NewTerrain() *Terrain {
	return &Terrain{chunks: make(map[ChunkPos]*chunk)}
}

// FlatTerrain returns a floor one block thick with its top at y=0, covering
// [-halfSize, halfSize) on X and Z.
func FlatTerrain(halfSize int) *Terrain {
	t := NewTerrain()
	t.Fill(-halfSize, -1, -halfSize, halfSize-1, -1, halfSize-1, true)
	return t
}

func (t *Terrain) SetSolid(x, y, z int, solid bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.set(x, y, z, solid)
}

// Fill sets every cell in the inclusive box spanned by the two corners.
func (t *Terrain) Fill(x0, y0, z0, x1, y1, z1 int, solid bool) {
	x0, x1 = order(x0, x1)
	y0, y1 = order(y0, y1)
	z0, z1 = order(z0, z1)

	t.mu.Lock()
	defer t.mu.Unlock()
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			for z := z0; z <= z1; z++ {
				t.set(x, y, z, solid)
			}
		}
	}
}

func (t *Terrain) IsSolid(x, y, z int) bool {
	pos, sectionY, index := locate(x, y, z)

	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.chunks[pos]
	if !ok {
		return false
	}
	s, ok := c.sections[sectionY]
	if !ok {
		return false
	}
	return s[index]
}

// SolidCount is the number of solid cells.
func (t *Terrain) SolidCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, c := range t.chunks {
		n += c.solid
	}
	return n
}

func (t *Terrain) set(x, y, z int, solid bool) {
	pos, sectionY, index := locate(x, y, z)
	if t.chunks == nil {
		t.chunks = make(map[ChunkPos]*chunk)
	}
	c, ok := t.chunks[pos]
	if !ok {
		if !solid {
			return
		}
		c = &chunk{sections: make(map[int]*section)}
		t.chunks[pos] = c
	}
	s, ok := c.sections[sectionY]
	if !ok {
		if !solid {
			return
		}
		s = &section{}
		c.sections[sectionY] = s
	}
	if s[index] == solid {
		return
	}
	s[index] = solid
	if solid {
		c.solid++
		return
	}
	c.solid--
	if c.solid == 0 {
		delete(t.chunks, pos)
	}
}

func locate(x, y, z int) (ChunkPos, int, int) {
	pos := ChunkPos{X: int32(floorDiv16(x)), Z: int32(floorDiv16(z))}
	index := floorMod16(y)*ChunkSize*ChunkSize + floorMod16(z)*ChunkSize + floorMod16(x)
	return pos, floorDiv16(y), index
}

func order(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

func floorDiv16(v int) int {
	q := v / 16
	if v < 0 && v%16 != 0 {
		q--
	}
	return q
}

func floorMod16(v int) int {
	m := v % 16
	if m < 0 {
		m += 16
	}
	return m
}

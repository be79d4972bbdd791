package world

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	uuid "github.com/satori/go.uuid"

	"github.com/Versifine/strafe/internal/character"
	"github.com/Versifine/strafe/internal/event"
	"github.com/Versifine/strafe/internal/locomotion"
	"github.com/Versifine/strafe/internal/physics"
)

// InputFunc supplies the per-character input for the tick about to run.
// Characters missing from the map get a zero Input.
type InputFunc func(tick uint64) map[uuid.UUID]locomotion.Input

// Observer is called after every completed tick.
type Observer func(tick uint64, snapshots []character.Snapshot)

// World owns the terrain and every live character. Characters are stepped
// in spawn order.
type World struct {
	mu         sync.RWMutex
	terrain    *Terrain
	collider   *physics.BlockCollider
	params     locomotion.Params
	publisher  locomotion.Publisher
	order      []uuid.UUID
	characters map[uuid.UUID]*character.Character
	tick       uint64
}

func New(terrain *Terrain, params locomotion.Params, publisher locomotion.Publisher) *World {
	if terrain == nil {
		terrain = NewTerrain()
	}
	return &World{
		terrain:    terrain,
		collider:   physics.NewBlockCollider(terrain),
		params:     params,
		publisher:  publisher,
		characters: make(map[uuid.UUID]*character.Character),
	}
}

func (w *World) Terrain() *Terrain { return w.terrain }

func (w *World) Spawn(pos mgl64.Vec3) uuid.UUID {
	id := uuid.NewV4()
	c := character.New(id.String(), w.params, pos, w.collider, w.publisher)

	w.mu.Lock()
	w.order = append(w.order, id)
	w.characters[id] = c
	w.mu.Unlock()

	slog.Info("Character spawned", "character", id.String(), "position", pos)
	return id
}

// Despawn destroys the character and removes it from the roster. Its active
// modifiers are dropped without finishing.
func (w *World) Despawn(id uuid.UUID) bool {
	w.mu.Lock()
	c, ok := w.characters[id]
	if ok {
		delete(w.characters, id)
		for i, existing := range w.order {
			if uuid.Equal(existing, id) {
				w.order = append(w.order[:i], w.order[i+1:]...)
				break
			}
		}
	}
	w.mu.Unlock()
	if !ok {
		return false
	}

	dropped := c.Destroy()
	if w.publisher != nil {
		w.publisher.Publish(event.EventDespawn, event.DespawnEvent{Character: id.String(), Dropped: dropped})
	}
	return true
}

func (w *World) Character(id uuid.UUID) (*character.Character, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.characters[id]
	return c, ok
}

// IDs returns the live character ids in spawn order.
func (w *World) IDs() []uuid.UUID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]uuid.UUID(nil), w.order...)
}

func (w *World) Tick() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tick
}

// Step advances every live character by dt and returns the number of the
// tick just completed. An invalid dt moves nobody.
func (w *World) Step(inputs map[uuid.UUID]locomotion.Input, dt float64) (uint64, error) {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return w.Tick(), fmt.Errorf("invalid tick interval %v", dt)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for _, id := range w.order {
		if err := w.characters[id].Tick(inputs[id], dt); err != nil {
			return w.tick, fmt.Errorf("tick character %s: %w", id, err)
		}
	}
	w.tick++
	return w.tick, nil
}

func (w *World) Snapshots() []character.Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	snaps := make([]character.Snapshot, 0, len(w.order))
	for _, id := range w.order {
		snaps = append(snaps, w.characters[id].Snapshot())
	}
	return snaps
}

// Run steps the world rate times per second of wall time until ctx ends.
func (w *World) Run(ctx context.Context, rate int, inputFn InputFunc, observer Observer) error {
	if rate <= 0 {
		return fmt.Errorf("invalid tick rate %d", rate)
	}
	dt := 1 / float64(rate)

	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			var inputs map[uuid.UUID]locomotion.Input
			if inputFn != nil {
				inputs = inputFn(w.Tick() + 1)
			}
			tick, err := w.Step(inputs, dt)
			if err != nil {
				return err
			}
			if observer != nil {
				observer(tick, w.Snapshots())
			}
		}
	}
}

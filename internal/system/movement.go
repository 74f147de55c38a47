package system

import (
	"fmt"
	"math"

	"github.com/l1jgo/whale2d/internal/component"
	"github.com/l1jgo/whale2d/internal/core/ecs"
	coresys "github.com/l1jgo/whale2d/internal/core/system"
)

// MovementSystem integrates Velocity into Position. Phase 1 (Update).
type MovementSystem struct {
	ct    *component.Types
	query ecs.Query
}

func NewMovementSystem(ct *component.Types) *MovementSystem {
	return &MovementSystem{
		ct:    ct,
		query: ecs.NewQuery().Read(ct.Velocity).Write(ct.Position).MustBuild(),
	}
}

func (s *MovementSystem) Name() string         { return "movement" }
func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }
func (s *MovementSystem) Access() ecs.Access   { return ecs.AccessOf(s.query) }

// Update fails the frame when a position becomes NaN or infinite.
func (s *MovementSystem) Update(w *ecs.World, dt float64) error {
	var bad ecs.EntityID
	ecs.EachRW(w.Query(s.query), s.ct.Velocity, s.ct.Position, func(id ecs.EntityID, v component.Velocity, p *component.Position) {
		p.X += v.X * dt
		p.Y += v.Y * dt
		if bad.IsZero() && !finite(p.X, p.Y) {
			bad = id
		}
	})
	if !bad.IsZero() {
		return fmt.Errorf("entity %s: position is not finite", bad)
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

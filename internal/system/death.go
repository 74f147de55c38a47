package system

import (
	"github.com/l1jgo/whale2d/internal/component"
	"github.com/l1jgo/whale2d/internal/core/ecs"
	"github.com/l1jgo/whale2d/internal/core/event"
	coresys "github.com/l1jgo/whale2d/internal/core/system"
)

// DeathSystem queues entities whose health reached zero for destruction and
// announces the death. Phase 2 (PostUpdate), so kills from this frame's
// combat are seen in the same frame.
type DeathSystem struct {
	ct    *component.Types
	bus   *event.Bus
	kills *KillLedger
	query ecs.Query
}

func NewDeathSystem(ct *component.Types, bus *event.Bus, kills *KillLedger) *DeathSystem {
	return &DeathSystem{
		ct:    ct,
		bus:   bus,
		kills: kills,
		query: ecs.NewQuery().Read(ct.Health).MustBuild(),
	}
}

func (s *DeathSystem) Name() string         { return "death" }
func (s *DeathSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }
func (s *DeathSystem) Access() ecs.Access   { return ecs.AccessOf(s.query) }

func (s *DeathSystem) Update(w *ecs.World, _ float64) error {
	ecs.Each1(w.Query(s.query), s.ct.Health, func(id ecs.EntityID, h *component.Health) {
		if h.Current > 0 {
			return
		}
		var killer ecs.EntityID
		if s.kills != nil {
			killer = s.kills.Take(id)
		}
		w.MarkForDestruction(id)
		event.Emit(s.bus, event.Died{Entity: id, Killer: killer})
	})
	return nil
}

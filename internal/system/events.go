package system

import (
	"github.com/l1jgo/whale2d/internal/core/ecs"
	"github.com/l1jgo/whale2d/internal/core/event"
	coresys "github.com/l1jgo/whale2d/internal/core/system"
)

// EventSystem swaps the event bus and delivers last frame's events to their
// subscribers. Phase 0 (PreUpdate). Handlers may touch any component, so the
// system runs alone.
type EventSystem struct {
	bus *event.Bus
}

func NewEventSystem(bus *event.Bus) *EventSystem {
	return &EventSystem{bus: bus}
}

func (s *EventSystem) Name() string         { return "events" }
func (s *EventSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }
func (s *EventSystem) Access() ecs.Access   { return ecs.ExclusiveAccess() }

func (s *EventSystem) Update(_ *ecs.World, _ float64) error {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
	return nil
}

package system

import (
	"github.com/l1jgo/whale2d/internal/component"
	"github.com/l1jgo/whale2d/internal/core/ecs"
	coresys "github.com/l1jgo/whale2d/internal/core/system"
	"github.com/l1jgo/whale2d/internal/scripting"
)

// RegenSystem restores health of living characters. Phase 2 (PostUpdate),
// after DeathSystem so a dead character is never revived.
//
// Runs every frame; an accumulator gates the actual regen to one pulse per
// interval. A long frame can produce several pulses.
type RegenSystem struct {
	ct       *component.Types
	rules    scripting.Rules
	interval float64
	acc      float64
	query    ecs.Query
}

// NewRegenSystem pulses every interval seconds.
func NewRegenSystem(ct *component.Types, rules scripting.Rules, interval float64) *RegenSystem {
	if rules == nil {
		rules = scripting.DefaultRules{}
	}
	if interval <= 0 {
		interval = 1
	}
	return &RegenSystem{
		ct:       ct,
		rules:    rules,
		interval: interval,
		query:    ecs.NewQuery().Read(ct.Character).Write(ct.Health).MustBuild(),
	}
}

func (s *RegenSystem) Name() string         { return "regen" }
func (s *RegenSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }
func (s *RegenSystem) Access() ecs.Access   { return ecs.AccessOf(s.query) }

func (s *RegenSystem) Update(w *ecs.World, dt float64) error {
	s.acc += dt
	for s.acc >= s.interval {
		s.acc -= s.interval
		s.pulse(w)
	}
	return nil
}

func (s *RegenSystem) pulse(w *ecs.World) {
	ecs.Each2(w.Query(s.query), s.ct.Health, s.ct.Character, func(_ ecs.EntityID, h *component.Health, c *component.Character) {
		if h.Current <= 0 || h.Current >= h.Maximum {
			return
		}
		h.Current = min(h.Current+s.rules.RegenAmount(c.Level, c.Class, h.Maximum), h.Maximum)
	})
}

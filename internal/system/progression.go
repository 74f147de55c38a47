package system

import (
	"go.uber.org/zap"

	"github.com/l1jgo/whale2d/internal/component"
	"github.com/l1jgo/whale2d/internal/core/ecs"
	"github.com/l1jgo/whale2d/internal/core/event"
	coresys "github.com/l1jgo/whale2d/internal/core/system"
	"github.com/l1jgo/whale2d/internal/scripting"
)

// maxLevel bounds level-ups from a single award.
const maxLevel = 99

// ProgressionSystem awards experience for kills and levels characters up.
// Phase 2 (PostUpdate). Died events arrive through the bus one frame after
// the kill; the handler only queues them, Update applies them.
type ProgressionSystem struct {
	ct        *component.Types
	bus       *event.Bus
	rules     scripting.Rules
	xpPerKill int64
	pending   []event.Died
}

func NewProgressionSystem(ct *component.Types, bus *event.Bus, rules scripting.Rules, xpPerKill int64) *ProgressionSystem {
	if rules == nil {
		rules = scripting.DefaultRules{}
	}
	s := &ProgressionSystem{ct: ct, bus: bus, rules: rules, xpPerKill: xpPerKill}
	event.Subscribe(bus, func(ev event.Died) {
		s.pending = append(s.pending, ev)
	})
	return s
}

func (s *ProgressionSystem) Name() string         { return "progression" }
func (s *ProgressionSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *ProgressionSystem) Access() ecs.Access {
	return ecs.Access{}.Write(s.ct.Character)
}

func (s *ProgressionSystem) Update(w *ecs.World, _ float64) error {
	for _, ev := range s.pending {
		if ev.Killer.IsZero() {
			continue
		}
		c := s.ct.Character.Mut(w, ev.Killer)
		if c == nil {
			continue // killer died too, or is not a character
		}
		s.award(w, ev.Killer, c, s.xpPerKill)
	}
	s.pending = s.pending[:0]
	return nil
}

// award adds xp and applies every level-up it pays for.
func (s *ProgressionSystem) award(w *ecs.World, id ecs.EntityID, c *component.Character, xp int64) {
	if c.Level < 1 {
		c.Level = 1
	}
	c.Experience += xp
	for c.Level < maxLevel {
		need := s.rules.ExpForLevel(c.Level)
		if c.Experience < need {
			break
		}
		c.Experience -= need
		c.Level++
		event.Emit(s.bus, event.LeveledUp{Entity: id, Level: c.Level})
		w.Logger().Debug("level up",
			zap.Stringer("entity", id),
			zap.String("name", c.Name),
			zap.Int("level", c.Level),
		)
	}
}

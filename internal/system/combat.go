package system

import (
	"math"

	"github.com/l1jgo/whale2d/internal/component"
	"github.com/l1jgo/whale2d/internal/core/ecs"
	"github.com/l1jgo/whale2d/internal/core/event"
	coresys "github.com/l1jgo/whale2d/internal/core/system"
	"github.com/l1jgo/whale2d/internal/scripting"
	"github.com/l1jgo/whale2d/internal/spatial"
)

const combatCellSize = 32

// CombatSystem lets every entity with Combat attack the nearest hostile
// entity in range once its cooldown has elapsed. Phase 1 (Update).
//
// Entities on the same Team never attack each other. Entities without a
// Team are hostile to everyone. Ties on distance go to the target that comes
// first in query order.
type CombatSystem struct {
	ct        *component.Types
	bus       *event.Bus
	rules     scripting.Rules
	kills     *KillLedger
	attackers ecs.Query
	targets   ecs.Query
	clock     float64
	scratch   []target
	grid      *spatial.Grid
	nearby    []int
}

type target struct {
	id   ecs.EntityID
	pos  component.Position
	team int
	hp   *component.Health
}

func NewCombatSystem(ct *component.Types, bus *event.Bus, rules scripting.Rules, kills *KillLedger) *CombatSystem {
	if rules == nil {
		rules = scripting.DefaultRules{}
	}
	return &CombatSystem{
		ct:        ct,
		bus:       bus,
		rules:     rules,
		kills:     kills,
		attackers: ecs.NewQuery().Read(ct.Position).Write(ct.Combat).MustBuild(),
		targets:   ecs.NewQuery().Read(ct.Position).Write(ct.Health).MustBuild(),
		grid:      spatial.NewGrid(combatCellSize),
	}
}

func (s *CombatSystem) Name() string         { return "combat" }
func (s *CombatSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *CombatSystem) Access() ecs.Access {
	return ecs.AccessOf(s.attackers, s.targets).Read(s.ct.Team, s.ct.Character)
}

// Clock is the combat clock in seconds; Combat.LastAttack is on this clock.
func (s *CombatSystem) Clock() float64 { return s.clock }

func (s *CombatSystem) Update(w *ecs.World, dt float64) error {
	s.clock += dt

	s.scratch = s.scratch[:0]
	s.grid.Reset()
	ecs.Each2(w.Query(s.targets), s.ct.Position, s.ct.Health, func(id ecs.EntityID, p *component.Position, h *component.Health) {
		s.grid.Add(len(s.scratch), p.X, p.Y)
		s.scratch = append(s.scratch, target{id: id, pos: *p, team: s.teamOf(w, id), hp: h})
	})
	if len(s.scratch) == 0 {
		return nil
	}

	ecs.Each2(w.Query(s.attackers), s.ct.Position, s.ct.Combat, func(id ecs.EntityID, p *component.Position, c *component.Combat) {
		if s.clock-c.LastAttack < c.AttackCooldown {
			return
		}
		if hp, ok := s.ct.Health.Get(w, id); ok && hp.Current <= 0 {
			return
		}
		team := s.teamOf(w, id)
		best, bestDist := -1, math.Inf(1)
		s.nearby = s.grid.Nearby(p.X, p.Y, c.AttackRange, s.nearby[:0])
		for _, i := range s.nearby {
			t := &s.scratch[i]
			if t.id == id || t.hp.Current <= 0 || (team >= 0 && t.team == team) {
				continue
			}
			d := math.Hypot(t.pos.X-p.X, t.pos.Y-p.Y)
			if d > c.AttackRange {
				continue
			}
			if d < bestDist || (d == bestDist && i < best) {
				best, bestDist = i, d
			}
		}
		if best < 0 {
			return
		}
		t := &s.scratch[best]
		dmg := s.rules.CalcDamage(scripting.DamageContext{
			Attacker: s.combatant(w, id, c.AttackPower),
			Target:   s.combatant(w, t.id, 0),
			Distance: bestDist,
		})
		c.LastAttack = s.clock
		if dmg <= 0 {
			return
		}
		t.hp.Current -= dmg
		if t.hp.Current <= 0 {
			t.hp.Current = 0
			if s.kills != nil {
				s.kills.Record(t.id, id)
			}
		}
		event.Emit(s.bus, event.Damaged{Target: t.id, Attacker: id, Amount: dmg})
	})
	return nil
}

// teamOf returns -1 for entities without a Team.
func (s *CombatSystem) teamOf(w *ecs.World, id ecs.EntityID) int {
	if t, ok := s.ct.Team.Get(w, id); ok {
		return t.ID
	}
	return -1
}

func (s *CombatSystem) combatant(w *ecs.World, id ecs.EntityID, power float64) scripting.Combatant {
	c := scripting.Combatant{Level: 1, AttackPower: power}
	if ch, ok := s.ct.Character.Get(w, id); ok {
		c.Level = ch.Level
		c.Class = ch.Class
	}
	if h, ok := s.ct.Health.Get(w, id); ok {
		c.Health = h.Current
		c.MaxHealth = h.Maximum
	}
	return c
}

package system

import (
	"time"

	"github.com/l1jgo/whale2d/internal/component"
	"github.com/l1jgo/whale2d/internal/core/event"
	coresys "github.com/l1jgo/whale2d/internal/core/system"
	"github.com/l1jgo/whale2d/internal/scripting"
)

// Deps are the collaborators shared by the gameplay systems.
type Deps struct {
	Types         *component.Types
	Bus           *event.Bus
	Rules         scripting.Rules // nil = scripting.DefaultRules
	RegenInterval time.Duration
	XPPerKill     int64
	Renderer      Renderer // may be nil
}

// Set is the full gameplay system list of one World.
type Set struct {
	Events      *EventSystem
	Movement    *MovementSystem
	Combat      *CombatSystem
	Death       *DeathSystem
	Regen       *RegenSystem
	Progression *ProgressionSystem
	Sprites     *SpriteCollectSystem
	Cleanup     *CleanupSystem
}

func NewSet(d Deps) *Set {
	kills := NewKillLedger()
	return &Set{
		Events:      NewEventSystem(d.Bus),
		Movement:    NewMovementSystem(d.Types),
		Combat:      NewCombatSystem(d.Types, d.Bus, d.Rules, kills),
		Death:       NewDeathSystem(d.Types, d.Bus, kills),
		Regen:       NewRegenSystem(d.Types, d.Rules, d.RegenInterval.Seconds()),
		Progression: NewProgressionSystem(d.Types, d.Bus, d.Rules, d.XPPerKill),
		Sprites:     NewSpriteCollectSystem(d.Types, d.Renderer),
		Cleanup:     NewCleanupSystem(),
	}
}

// Register adds the systems to r. Within PostUpdate the order is death,
// regen, progression.
func (s *Set) Register(r *coresys.Runner) {
	r.Register(
		s.Events,
		s.Movement,
		s.Combat,
		s.Death,
		s.Regen,
		s.Progression,
		s.Sprites,
		s.Cleanup,
	)
}

package event

import "github.com/l1jgo/whale2d/internal/core/ecs"

// Damaged is emitted by CombatSystem for every landed hit.
type Damaged struct {
	Target   ecs.EntityID
	Attacker ecs.EntityID
	Amount   float64
}

// Died is emitted by DeathSystem when an entity's health reaches zero.
// Killer is zero when no hit was recorded against the entity.
type Died struct {
	Entity ecs.EntityID
	Killer ecs.EntityID
}

type LeveledUp struct {
	Entity ecs.EntityID
	Level  int
}

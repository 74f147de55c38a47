package system

import (
	"sync"

	"github.com/l1jgo/whale2d/internal/core/ecs"
)

// KillLedger remembers who landed the finishing blow on an entity, from the
// hit in CombatSystem until DeathSystem reports the death.
type KillLedger struct {
	mu      sync.Mutex
	killers map[ecs.EntityID]ecs.EntityID
}

func NewKillLedger() *KillLedger {
	return &KillLedger{killers: make(map[ecs.EntityID]ecs.EntityID)}
}

func (l *KillLedger) Record(target, killer ecs.EntityID) {
	l.mu.Lock()
	l.killers[target] = killer
	l.mu.Unlock()
}

// Take returns and forgets the killer of target; zero when none was recorded.
func (l *KillLedger) Take(target ecs.EntityID) ecs.EntityID {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := l.killers[target]
	delete(l.killers, target)
	return k
}

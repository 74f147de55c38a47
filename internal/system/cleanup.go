package system

import (
	"github.com/l1jgo/whale2d/internal/core/ecs"
	coresys "github.com/l1jgo/whale2d/internal/core/system"
)

// CleanupSystem flushes the deferred entity destruction queue at frame end.
// Phase 4 (Cleanup).
type CleanupSystem struct{}

func NewCleanupSystem() *CleanupSystem {
	return &CleanupSystem{}
}

func (s *CleanupSystem) Name() string         { return "cleanup" }
func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }
func (s *CleanupSystem) Access() ecs.Access   { return ecs.ExclusiveAccess() }

func (s *CleanupSystem) Update(w *ecs.World, _ float64) error {
	w.FlushDestroyQueue()
	return nil
}

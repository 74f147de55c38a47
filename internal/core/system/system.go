package system

import "github.com/l1jgo/whale2d/internal/core/ecs"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhasePreUpdate  Phase = iota // 0: dispatch last frame's events
	PhaseUpdate                  // 1: game logic
	PhasePostUpdate              // 2: regen, progression
	PhaseOutput                  // 3: build draw lists for the renderer
	PhaseCleanup                 // 4: destroy queued entities
)

var phaseNames = [...]string{"pre_update", "update", "post_update", "output", "cleanup"}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "phase?"
}

// System is an ECS system that also knows which phase it belongs to.
type System interface {
	ecs.System
	Phase() Phase
}

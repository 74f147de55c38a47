package system

import (
	"sort"

	"go.uber.org/zap"

	"github.com/l1jgo/whale2d/internal/core/ecs"
)

// Runner collects phased systems and installs them into a World in phase
// order. Systems within one phase keep the order they were registered in.
type Runner struct {
	systems []System
	sorted  bool
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
	}
}

func (r *Runner) Register(s ...System) {
	r.systems = append(r.systems, s...)
	r.sorted = false
}

// Systems returns the registered systems in execution order.
func (r *Runner) Systems() []System {
	r.ensureSorted()
	return append([]System(nil), r.systems...)
}

// Install adds every system to w in execution order. The World's scheduler
// then runs them in exactly that order each frame.
func (r *Runner) Install(w *ecs.World) {
	for _, s := range r.Systems() {
		w.AddSystem(s)
		w.Logger().Debug("system installed",
			zap.String("system", s.Name()),
			zap.Stringer("phase", s.Phase()),
		)
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}

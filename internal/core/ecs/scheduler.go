package ecs

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Scheduler executes systems in registration order each frame.
//
// In parallel mode consecutive systems whose accesses do not conflict are
// grouped into a batch and run concurrently; the batch is a barrier before
// the next one. The observable result matches sequential execution because
// no two systems in a batch touch the same component type.
type Scheduler struct {
	log      *zap.Logger
	systems  []System
	parallel bool
	batches  [][]int
}

func NewScheduler(log *zap.Logger, parallel bool) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		log:      log,
		systems:  make([]System, 0, 16),
		parallel: parallel,
	}
}

func (s *Scheduler) Add(sys System) {
	s.systems = append(s.systems, sys)
	s.batches = nil
	s.log.Debug("system registered",
		zap.String("system", sys.Name()),
		zap.Int("order", len(s.systems)-1),
	)
}

// Systems returns the registered systems in execution order.
func (s *Scheduler) Systems() []System {
	return append([]System(nil), s.systems...)
}

func (s *Scheduler) Len() int { return len(s.systems) }

func (s *Scheduler) Parallel() bool { return s.parallel }

// Conflict names two systems whose declared accesses overlap.
type Conflict struct {
	First  string
	Second string
}

func (c Conflict) String() string { return c.First + " <-> " + c.Second }

// Conflicts lists every pair of systems that write the same type or where
// one writes what the other reads. Exclusive systems are left out. Sequential
// execution does not act on the result.
func (s *Scheduler) Conflicts() []Conflict {
	var out []Conflict
	for i := range s.systems {
		for j := i + 1; j < len(s.systems); j++ {
			a, b := s.systems[i].Access(), s.systems[j].Access()
			if a.exclusive || b.exclusive {
				continue
			}
			if a.ConflictsWith(b) {
				out = append(out, Conflict{First: s.systems[i].Name(), Second: s.systems[j].Name()})
			}
		}
	}
	return out
}

// Batches returns the system names grouped the way Run executes them.
func (s *Scheduler) Batches() [][]string {
	plan := s.plan()
	out := make([][]string, len(plan))
	for i, batch := range plan {
		for _, idx := range batch {
			out[i] = append(out[i], s.systems[idx].Name())
		}
	}
	return out
}

// plan partitions the registration list into consecutive conflict-free
// batches. Sequential mode gives one system per batch.
func (s *Scheduler) plan() [][]int {
	if s.batches != nil {
		return s.batches
	}
	var batches [][]int
	for i, sys := range s.systems {
		if s.parallel && len(batches) > 0 {
			last := batches[len(batches)-1]
			fits := true
			for _, j := range last {
				if sys.Access().ConflictsWith(s.systems[j].Access()) {
					fits = false
					break
				}
			}
			if fits {
				batches[len(batches)-1] = append(last, i)
				continue
			}
		}
		batches = append(batches, []int{i})
	}
	s.batches = batches
	if s.parallel {
		s.log.Debug("batch plan", zap.Int("systems", len(s.systems)), zap.Int("batches", len(batches)))
	}
	return batches
}

// Run executes one frame. It stops at the first failing system, and in
// parallel mode at the first failing batch, reporting the earliest failed
// system in registration order.
func (s *Scheduler) Run(w *World, dt float64) error {
	for _, batch := range s.plan() {
		if len(batch) == 1 {
			sys := s.systems[batch[0]]
			if err := runSystem(sys, w, dt); err != nil {
				return &SystemError{System: sys.Name(), Frame: w.frame, Err: err}
			}
			continue
		}

		errs := make([]error, len(batch))
		var g errgroup.Group
		for k, idx := range batch {
			sys := s.systems[idx]
			g.Go(func() error {
				errs[k] = runSystem(sys, w, dt)
				return errs[k]
			})
		}
		if g.Wait() != nil {
			for k, err := range errs {
				if err != nil {
					return &SystemError{System: s.systems[batch[k]].Name(), Frame: w.frame, Err: err}
				}
			}
		}
	}
	return nil
}

// runSystem converts a registry corruption panic into an error so the frame
// can be aborted cleanly. Any other panic propagates.
func runSystem(sys System, w *World, dt float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*CorruptionError)
			if !ok {
				panic(r)
			}
			err = fmt.Errorf("recovered: %w", ce)
		}
	}()
	return sys.Update(w, dt)
}

package ecs

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/TheBitDrifter/mask"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// World is the top-level ECS container. It owns the entity pool, the component
// registry, the scheduler, and a deferred destruction queue flushed by
// CleanupSystem each frame.
//
// A World is driven by one engine loop. Only MarkForDestruction may be called
// from systems running concurrently in parallel mode.
type World struct {
	id         uuid.UUID
	log        *zap.Logger
	pool       *EntityPool
	registry   *Registry
	scheduler  *Scheduler
	signatures []mask.Mask

	destroyMu    sync.Mutex
	destroyQueue []EntityID

	frame    uint64
	updating atomic.Bool
}

type options struct {
	log             *zap.Logger
	initialCapacity int
	maxEntities     int
	parallel        bool
}

// Option configures a World.
type Option func(*options)

func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithInitialCapacity preallocates room for n entities.
func WithInitialCapacity(n int) Option {
	return func(o *options) { o.initialCapacity = n }
}

// WithMaxEntities caps the number of live entities; zero means unbounded.
func WithMaxEntities(n int) Option {
	return func(o *options) { o.maxEntities = n }
}

// WithParallelSystems runs conflict-free consecutive systems concurrently.
func WithParallelSystems(on bool) Option {
	return func(o *options) { o.parallel = on }
}

func NewWorld(opts ...Option) *World {
	o := options{initialCapacity: 1024}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	id := uuid.New()
	log := o.log.With(zap.String("world", id.String()))
	return &World{
		id:           id,
		log:          log,
		pool:         NewEntityPool(o.initialCapacity, o.maxEntities),
		registry:     NewRegistry(),
		scheduler:    NewScheduler(log, o.parallel),
		signatures:   make([]mask.Mask, 0, max(o.initialCapacity, 0)),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

func (w *World) ID() uuid.UUID            { return w.id }
func (w *World) Logger() *zap.Logger      { return w.log }
func (w *World) Pool() *EntityPool        { return w.pool }
func (w *World) Registry() *Registry      { return w.registry }
func (w *World) Scheduler() *Scheduler    { return w.scheduler }
func (w *World) Frame() uint64            { return w.frame }
func (w *World) EntityCount() int         { return w.pool.Len() }
func (w *World) AddSystem(s System)       { w.scheduler.Add(s) }
func (w *World) IsAlive(id EntityID) bool { return w.pool.Alive(id) }

func (w *World) CreateEntity() (EntityID, error) {
	id, err := w.pool.Create()
	if err != nil {
		return 0, err
	}
	idx := int(id.Index())
	if idx >= len(w.signatures) {
		w.signatures = append(w.signatures, make([]mask.Mask, idx+1-len(w.signatures))...)
	}
	w.signatures[idx] = mask.Mask{}
	return id, nil
}

// DestroyEntity removes every component of a live entity and frees its slot.
// A dead or stale handle is a no-op that reports false.
func (w *World) DestroyEntity(id EntityID) bool {
	if !w.pool.Alive(id) {
		return false
	}
	w.registry.RemoveAll(id, w.signatures[id.Index()])
	w.signatures[id.Index()] = mask.Mask{}
	return w.pool.Destroy(id)
}

// Signature returns the component mask of a live entity.
func (w *World) Signature(id EntityID) (mask.Mask, bool) {
	if !w.pool.Alive(id) {
		return mask.Mask{}, false
	}
	return w.signatures[id.Index()], true
}

// Entities returns all live entities in slot order.
func (w *World) Entities() []EntityID {
	out := make([]EntityID, 0, w.pool.Len())
	w.pool.Each(func(id EntityID) bool {
		out = append(out, id)
		return true
	})
	return out
}

// ComponentNames returns the names of the components attached to id, in
// registration order.
func (w *World) ComponentNames(id EntityID) []string {
	sig, ok := w.Signature(id)
	if !ok {
		return nil
	}
	var names []string
	for cid := range uint32(w.registry.Len()) {
		if sig.ContainsAll(bit(cid)) {
			names = append(names, w.registry.Name(ComponentID(cid)))
		}
	}
	return names
}

// EachComponent calls fn with a copy of every component value of every live
// entity, entities in slot order and components in registration order.
func (w *World) EachComponent(fn func(id EntityID, component string, value any) bool) {
	w.pool.Each(func(id EntityID) bool {
		sig := w.signatures[id.Index()]
		for cid := range uint32(w.registry.Len()) {
			if !sig.ContainsAll(bit(cid)) {
				continue
			}
			v, ok := w.registry.value(ComponentID(cid), id)
			if !ok {
				continue
			}
			if !fn(id, w.registry.Name(ComponentID(cid)), v) {
				return false
			}
		}
		return true
	})
}

// MarkForDestruction queues an entity for end-of-frame cleanup. Safe to call
// from concurrently running systems.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyMu.Lock()
	w.destroyQueue = append(w.destroyQueue, id)
	w.destroyMu.Unlock()
}

// PendingDestruction is the number of queued entities.
func (w *World) PendingDestruction() int {
	w.destroyMu.Lock()
	defer w.destroyMu.Unlock()
	return len(w.destroyQueue)
}

// FlushDestroyQueue destroys all queued entities and clears their components.
// The queue is applied in handle order so the result does not depend on the
// order systems queued them. Called by CleanupSystem at the end of each frame.
func (w *World) FlushDestroyQueue() int {
	w.destroyMu.Lock()
	queue := w.destroyQueue
	w.destroyQueue = make([]EntityID, 0, cap(queue))
	w.destroyMu.Unlock()

	slices.Sort(queue)
	n := 0
	for _, id := range slices.Compact(queue) {
		if w.DestroyEntity(id) {
			n++
		}
	}
	if n > 0 {
		w.log.Debug("destroy queue flushed", zap.Int("destroyed", n), zap.Uint64("frame", w.frame))
	}
	return n
}

// Update runs every system once, in registration order. A nested call from
// inside a system returns ErrReentrantUpdate without running anything.
func (w *World) Update(dt float64) error {
	if !w.updating.CompareAndSwap(false, true) {
		return ErrReentrantUpdate
	}
	defer w.updating.Store(false)

	w.frame++
	if err := w.scheduler.Run(w, dt); err != nil {
		w.log.Error("frame aborted", zap.Uint64("frame", w.frame), zap.Error(err))
		return err
	}
	return nil
}

// Clear destroys every entity and empties every store. Registered component
// types and systems are kept.
func (w *World) Clear() error {
	if w.updating.Load() {
		return fmt.Errorf("clear: %w", ErrReentrantUpdate)
	}
	w.registry.clear()
	w.pool.Reset()
	clear(w.signatures)
	w.destroyMu.Lock()
	w.destroyQueue = w.destroyQueue[:0]
	w.destroyMu.Unlock()
	return nil
}

package ecs

import (
	"iter"
	"reflect"
	"sync/atomic"
)

// componentStore is the type-erased view the Registry keeps of every Store[T].
type componentStore interface {
	remove(id EntityID) bool
	has(id EntityID) bool
	len() int
	value(id EntityID) (any, bool)
	eachID(fn func(EntityID) bool)
	elemType() reflect.Type
	clear()
}

// compactMinDead is the tombstone count below which a store never compacts.
const compactMinDead = 32

type slot[T any] struct {
	id  EntityID
	ptr *T // nil marks a removed row
}

// Store is a generic typed store for one component type.
// No reflect or interface{} on the hot path.
//
// Values live behind stable pointers, so a *T handed out by Get stays valid
// for as long as the row exists. Rows are kept in insertion order; removal
// leaves a tombstone that is compacted away (order preserved) on a later
// insert, never while the store is being iterated.
type Store[T any] struct {
	slots     []slot[T]
	sparse    []int32 // entity index -> slot position + 1; 0 means absent
	dead      int
	iterating atomic.Int32
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		slots:  make([]slot[T], 0, 256),
		sparse: make([]int32, 0, 256),
	}
}

func (s *Store[T]) position(id EntityID) (int, bool) {
	idx := id.Index()
	if int(idx) >= len(s.sparse) {
		return 0, false
	}
	pos := int(s.sparse[idx]) - 1
	if pos < 0 || s.slots[pos].id != id {
		return 0, false
	}
	return pos, true
}

// Set stores v for id. An existing value is overwritten in place and
// returned with replaced set to true.
func (s *Store[T]) Set(id EntityID, v T) (prev T, replaced bool) {
	if pos, ok := s.position(id); ok {
		p := s.slots[pos].ptr
		prev = *p
		*p = v
		return prev, true
	}
	s.maybeCompact()
	idx := int(id.Index())
	if idx >= len(s.sparse) {
		s.sparse = append(s.sparse, make([]int32, idx+1-len(s.sparse))...)
	}
	c := v
	s.slots = append(s.slots, slot[T]{id: id, ptr: &c})
	s.sparse[idx] = int32(len(s.slots))
	return prev, false
}

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	pos, ok := s.position(id)
	if !ok {
		return nil, false
	}
	return s.slots[pos].ptr, true
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.position(id)
	return ok
}

// Remove detaches and returns the value stored for id.
func (s *Store[T]) Remove(id EntityID) (T, bool) {
	var zero T
	pos, ok := s.position(id)
	if !ok {
		return zero, false
	}
	v := *s.slots[pos].ptr
	s.slots[pos] = slot[T]{}
	s.sparse[id.Index()] = 0
	s.dead++
	return v, true
}

// Len is the number of live rows.
func (s *Store[T]) Len() int {
	return len(s.slots) - s.dead
}

// Each calls fn for every row in insertion order.
func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for id, v := range s.All() {
		fn(id, v)
	}
}

// All iterates rows in insertion order. Rows appended during the iteration
// are not visited; rows removed during it are skipped.
func (s *Store[T]) All() iter.Seq2[EntityID, *T] {
	return func(yield func(EntityID, *T) bool) {
		s.iterating.Add(1)
		defer s.iterating.Add(-1)
		n := len(s.slots)
		for i := 0; i < n && i < len(s.slots); i++ {
			sl := s.slots[i]
			if sl.ptr == nil {
				continue
			}
			if !yield(sl.id, sl.ptr) {
				return
			}
		}
	}
}

func (s *Store[T]) maybeCompact() {
	if s.dead < compactMinDead || s.dead*2 < len(s.slots) || s.iterating.Load() > 0 {
		return
	}
	kept := s.slots[:0]
	for _, sl := range s.slots {
		if sl.ptr == nil {
			continue
		}
		kept = append(kept, sl)
		s.sparse[sl.id.Index()] = int32(len(kept))
	}
	clear(s.slots[len(kept):])
	s.slots = kept
	s.dead = 0
}

func (s *Store[T]) remove(id EntityID) bool {
	_, ok := s.Remove(id)
	return ok
}

func (s *Store[T]) has(id EntityID) bool { return s.Has(id) }

func (s *Store[T]) len() int { return s.Len() }

func (s *Store[T]) value(id EntityID) (any, bool) {
	p, ok := s.Get(id)
	if !ok {
		return nil, false
	}
	return *p, true
}

func (s *Store[T]) eachID(fn func(EntityID) bool) {
	for id := range s.All() {
		if !fn(id) {
			return
		}
	}
}

func (s *Store[T]) elemType() reflect.Type { return reflect.TypeFor[T]() }

func (s *Store[T]) clear() {
	clear(s.slots)
	s.slots = s.slots[:0]
	clear(s.sparse)
	s.dead = 0
}

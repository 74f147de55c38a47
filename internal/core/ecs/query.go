package ecs

import (
	"fmt"
	"iter"

	"github.com/TheBitDrifter/mask"
)

// Component is anything that names a registered component type;
// ComponentType[T] handles satisfy it.
type Component interface {
	ComponentID() ComponentID
}

// Query is an immutable (read, write, exclude) predicate over entity
// signatures. Build one with NewQuery.
type Query struct {
	reads    []ComponentID
	writes   []ComponentID
	excludes []ComponentID
	include  mask.Mask
	exclude  mask.Mask
}

func (q Query) Reads() []ComponentID    { return append([]ComponentID(nil), q.reads...) }
func (q Query) Writes() []ComponentID   { return append([]ComponentID(nil), q.writes...) }
func (q Query) Excludes() []ComponentID { return append([]ComponentID(nil), q.excludes...) }

// Matches reports whether an entity signature satisfies the query.
// ContainsNone is false for an empty mask, so excludes are tested with
// ContainsAny.
func (q Query) Matches(sig mask.Mask) bool {
	return sig.ContainsAll(q.include) && !sig.ContainsAny(q.exclude)
}

// Access returns the read/write declaration implied by the query.
func (q Query) Access() Access {
	var a Access
	for _, id := range q.reads {
		a.read.Mark(uint32(id))
	}
	for _, id := range q.writes {
		a.write.Mark(uint32(id))
	}
	return a
}

// QueryBuilder collects component sets; Build validates them.
type QueryBuilder struct {
	reads    []ComponentID
	writes   []ComponentID
	excludes []ComponentID
}

func NewQuery() *QueryBuilder {
	return &QueryBuilder{}
}

// Read requires the components and declares them read-only.
func (b *QueryBuilder) Read(cs ...Component) *QueryBuilder {
	for _, c := range cs {
		b.reads = append(b.reads, c.ComponentID())
	}
	return b
}

// Write requires the components and declares them mutable.
func (b *QueryBuilder) Write(cs ...Component) *QueryBuilder {
	for _, c := range cs {
		b.writes = append(b.writes, c.ComponentID())
	}
	return b
}

// Without excludes entities holding any of the components.
func (b *QueryBuilder) Without(cs ...Component) *QueryBuilder {
	for _, c := range cs {
		b.excludes = append(b.excludes, c.ComponentID())
	}
	return b
}

// Build fails with ErrEmptyQuery when nothing is required, and with
// ErrQueryAliasing when a component appears more than once in any role.
func (b *QueryBuilder) Build() (Query, error) {
	if len(b.reads)+len(b.writes) == 0 {
		return Query{}, ErrEmptyQuery
	}
	q := Query{
		reads:    append([]ComponentID(nil), b.reads...),
		writes:   append([]ComponentID(nil), b.writes...),
		excludes: append([]ComponentID(nil), b.excludes...),
	}
	seen := make(map[ComponentID]struct{}, len(b.reads)+len(b.writes)+len(b.excludes))
	for _, list := range [][]ComponentID{q.reads, q.writes, q.excludes} {
		for _, id := range list {
			if id >= MaxComponentTypes {
				return Query{}, fmt.Errorf("component %d: %w", id, ErrResourceExhausted)
			}
			if _, dup := seen[id]; dup {
				return Query{}, fmt.Errorf("component %d: %w", id, ErrQueryAliasing)
			}
			seen[id] = struct{}{}
		}
	}
	for _, id := range q.reads {
		q.include.Mark(uint32(id))
	}
	for _, id := range q.writes {
		q.include.Mark(uint32(id))
	}
	for _, id := range q.excludes {
		q.exclude.Mark(uint32(id))
	}
	return q, nil
}

// MustBuild is Build for queries fixed at system construction.
func (b *QueryBuilder) MustBuild() Query {
	q, err := b.Build()
	if err != nil {
		panic(err)
	}
	return q
}

// Result is the entity set of one query evaluation. It is evaluated lazily
// against the world's current state.
type Result struct {
	w *World
	q Query
}

func (w *World) Query(q Query) *Result {
	return &Result{w: w, q: q}
}

// driver picks the smallest required store. A required type that was never
// registered has no store and so no rows.
func (r *Result) driver() componentStore {
	var best componentStore
	for _, list := range [][]ComponentID{r.q.reads, r.q.writes} {
		for _, id := range list {
			s := r.w.registry.store(id)
			if s == nil {
				return nil
			}
			if best == nil || s.len() < best.len() {
				best = s
			}
		}
	}
	return best
}

// All yields matching entities in the driving store's insertion order.
// Liveness and membership are checked as each entity is reached, so entities
// destroyed or changed earlier in the same iteration are skipped.
func (r *Result) All() iter.Seq[EntityID] {
	return func(yield func(EntityID) bool) {
		s := r.driver()
		if s == nil {
			return
		}
		s.eachID(func(id EntityID) bool {
			if !r.Contains(id) {
				return true
			}
			return yield(id)
		})
	}
}

// Entities materializes the result.
func (r *Result) Entities() []EntityID {
	var out []EntityID
	for id := range r.All() {
		out = append(out, id)
	}
	return out
}

func (r *Result) Len() int {
	n := 0
	for range r.All() {
		n++
	}
	return n
}

func (r *Result) Contains(id EntityID) bool {
	if !r.w.pool.Alive(id) {
		return false
	}
	return r.q.Matches(r.w.signatures[id.Index()])
}

// Each1/Each2/Each3 hand out pointers for every type, including those the
// query declared with Read. Writing through a read pointer bypasses the
// system's Access declaration; use EachRW to receive a read type by value.
// Handles that do not belong to the result's world yield nothing.

// Each1 iterates the result with a pointer to A.
func Each1[A any](r *Result, ca ComponentType[A], fn func(EntityID, *A)) {
	sa := ca.store(r.w)
	if sa == nil {
		return
	}
	for id := range r.All() {
		if a, ok := sa.Get(id); ok {
			fn(id, a)
		}
	}
}

// Each2 iterates the result with pointers to A and B. Both types should be
// required by the query; entities missing either are skipped.
func Each2[A, B any](r *Result, ca ComponentType[A], cb ComponentType[B], fn func(EntityID, *A, *B)) {
	sa, sb := ca.store(r.w), cb.store(r.w)
	if sa == nil || sb == nil {
		return
	}
	for id := range r.All() {
		a, ok := sa.Get(id)
		if !ok {
			continue
		}
		if b, ok := sb.Get(id); ok {
			fn(id, a, b)
		}
	}
}

// Each3 iterates the result with pointers to A, B, and C.
func Each3[A, B, C any](r *Result, ca ComponentType[A], cb ComponentType[B], cc ComponentType[C], fn func(EntityID, *A, *B, *C)) {
	sa, sb, sc := ca.store(r.w), cb.store(r.w), cc.store(r.w)
	if sa == nil || sb == nil || sc == nil {
		return
	}
	for id := range r.All() {
		a, ok := sa.Get(id)
		if !ok {
			continue
		}
		b, ok := sb.Get(id)
		if !ok {
			continue
		}
		if c, ok := sc.Get(id); ok {
			fn(id, a, b, c)
		}
	}
}

// EachRW iterates the result with a copy of the read type R and a pointer to
// the write type W.
func EachRW[R, W any](r *Result, cr ComponentType[R], cw ComponentType[W], fn func(EntityID, R, *W)) {
	sr, sw := cr.store(r.w), cw.store(r.w)
	if sr == nil || sw == nil {
		return
	}
	for id := range r.All() {
		rv, ok := sr.Get(id)
		if !ok {
			continue
		}
		if wv, ok := sw.Get(id); ok {
			fn(id, *rv, wv)
		}
	}
}

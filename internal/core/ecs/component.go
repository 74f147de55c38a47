package ecs

import "fmt"

// ComponentType is a typed handle to one registered component type. It is
// resolved once (usually at system construction) and then used on the hot
// path without further map lookups.
//
// The zero handle, or a handle from another World, resolves to nothing:
// reads report absent and Set fails with ErrUnknownComponent.
type ComponentType[T any] struct {
	id   ComponentID
	name string
	reg  *Registry
}

func handle[T any](w *World, id ComponentID) ComponentType[T] {
	return ComponentType[T]{id: id, name: w.registry.Name(id), reg: w.registry}
}

// RegisterComponent registers T under name. Registering the same type again
// under the same name returns the existing handle.
func RegisterComponent[T any](w *World, name string) (ComponentType[T], error) {
	id, err := register[T](w.registry, name)
	if err != nil {
		return ComponentType[T]{}, fmt.Errorf("register component: %w", err)
	}
	return handle[T](w, id), nil
}

// ComponentTypeOf returns the handle for T, registering it under its Go type
// name on first use.
func ComponentTypeOf[T any](w *World) (ComponentType[T], error) {
	if id, ok := lookup[T](w.registry); ok {
		return handle[T](w, id), nil
	}
	return RegisterComponent[T](w, "")
}

// MustComponentType is ComponentTypeOf for setup code; it panics on error.
func MustComponentType[T any](w *World) ComponentType[T] {
	ct, err := ComponentTypeOf[T](w)
	if err != nil {
		panic(err)
	}
	return ct
}

func (c ComponentType[T]) ID() ComponentID { return c.id }
func (c ComponentType[T]) Name() string    { return c.name }

// ComponentID lets a handle be passed to QueryBuilder and Access.
func (c ComponentType[T]) ComponentID() ComponentID { return c.id }

// store returns nil when the handle does not belong to w.
func (c ComponentType[T]) store(w *World) *Store[T] {
	if c.reg != w.registry {
		return nil
	}
	return storeOf[T](w.registry, c.id)
}

// Get returns a copy of e's value.
func (c ComponentType[T]) Get(w *World, e EntityID) (T, bool) {
	var zero T
	if !w.pool.Alive(e) {
		return zero, false
	}
	s := c.store(w)
	if s == nil {
		return zero, false
	}
	p, ok := s.Get(e)
	if !ok {
		return zero, false
	}
	return *p, true
}

// Mut returns a pointer to e's value, valid until the row is removed.
func (c ComponentType[T]) Mut(w *World, e EntityID) *T {
	if !w.pool.Alive(e) {
		return nil
	}
	s := c.store(w)
	if s == nil {
		return nil
	}
	p, _ := s.Get(e)
	return p
}

func (c ComponentType[T]) Has(w *World, e EntityID) bool {
	if !w.pool.Alive(e) {
		return false
	}
	s := c.store(w)
	return s != nil && s.Has(e)
}

// Set attaches v to e, overwriting and returning any previous value.
func (c ComponentType[T]) Set(w *World, e EntityID, v T) (prev T, replaced bool, err error) {
	if !w.pool.Alive(e) {
		return prev, false, fmt.Errorf("set %s on %s: %w", c.name, e, ErrEntityNotAlive)
	}
	s := c.store(w)
	if s == nil {
		return prev, false, fmt.Errorf("set %T on %s: %w", v, e, ErrUnknownComponent)
	}
	prev, replaced = s.Set(e, v)
	sig := &w.signatures[e.Index()]
	sig.Mark(uint32(c.id))
	return prev, replaced, nil
}

func (c ComponentType[T]) Remove(w *World, e EntityID) (T, bool) {
	var zero T
	if !w.pool.Alive(e) {
		return zero, false
	}
	s := c.store(w)
	if s == nil {
		return zero, false
	}
	v, ok := s.Remove(e)
	if ok {
		sig := &w.signatures[e.Index()]
		sig.Unmark(uint32(c.id))
	}
	return v, ok
}

// Each calls fn for every entity holding T, in insertion order.
func (c ComponentType[T]) Each(w *World, fn func(EntityID, *T)) {
	if s := c.store(w); s != nil {
		s.Each(fn)
	}
}

// Count is the number of entities holding T.
func (c ComponentType[T]) Count(w *World) int {
	if s := c.store(w); s != nil {
		return s.Len()
	}
	return 0
}

// AddComponent attaches v to e, registering T on first use.
func AddComponent[T any](w *World, e EntityID, v T) (prev T, replaced bool, err error) {
	ct, err := ComponentTypeOf[T](w)
	if err != nil {
		return prev, false, err
	}
	return ct.Set(w, e, v)
}

func GetComponent[T any](w *World, e EntityID) (T, bool) {
	id, ok := lookup[T](w.registry)
	if !ok {
		var zero T
		return zero, false
	}
	return handle[T](w, id).Get(w, e)
}

// GetComponentMut returns nil when e is dead or lacks T.
func GetComponentMut[T any](w *World, e EntityID) *T {
	id, ok := lookup[T](w.registry)
	if !ok {
		return nil
	}
	return handle[T](w, id).Mut(w, e)
}

func RemoveComponent[T any](w *World, e EntityID) (T, bool) {
	id, ok := lookup[T](w.registry)
	if !ok {
		var zero T
		return zero, false
	}
	return handle[T](w, id).Remove(w, e)
}

func HasComponent[T any](w *World, e EntityID) bool {
	id, ok := lookup[T](w.registry)
	if !ok {
		return false
	}
	return handle[T](w, id).Has(w, e)
}

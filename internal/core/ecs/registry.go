package ecs

import (
	"fmt"
	"reflect"

	"github.com/TheBitDrifter/mask"
	"github.com/cespare/xxhash/v2"
)

// MaxComponentTypes bounds the number of component types one World can
// register; it is the width of an entity signature mask.
const MaxComponentTypes = 64

// ComponentID is the dense per-World key of a registered component type.
type ComponentID uint32

type componentInfo struct {
	name string
	key  uint64
	typ  reflect.Type
}

// Registry tracks all component stores and supports bulk cleanup on entity destroy.
// Stores are indexed by ComponentID; each lookup by type does one type assertion.
type Registry struct {
	stores []componentStore
	infos  []componentInfo
	byType map[reflect.Type]ComponentID
	byName map[string]ComponentID
	limit  int
}

func NewRegistry() *Registry {
	return &Registry{
		stores: make([]componentStore, 0, 16),
		infos:  make([]componentInfo, 0, 16),
		byType: make(map[reflect.Type]ComponentID, 16),
		byName: make(map[string]ComponentID, 16),
		limit:  MaxComponentTypes,
	}
}

// register adds a store for T under name, or returns the existing ID when T
// is already registered under that same name.
func register[T any](r *Registry, name string) (ComponentID, error) {
	typ := reflect.TypeFor[T]()
	if name == "" {
		name = typ.String()
	}
	if id, ok := r.byType[typ]; ok {
		if r.infos[id].name != name {
			return 0, fmt.Errorf("%s already registered as %q: %w", typ, r.infos[id].name, ErrDuplicateComponent)
		}
		return id, nil
	}
	if other, ok := r.byName[name]; ok {
		return 0, fmt.Errorf("%q held by %s: %w", name, r.infos[other].typ, ErrDuplicateComponent)
	}
	if len(r.stores) >= r.limit {
		return 0, fmt.Errorf("register %s: %d component types: %w", typ, r.limit, ErrResourceExhausted)
	}
	id := ComponentID(len(r.stores))
	r.stores = append(r.stores, NewStore[T]())
	r.infos = append(r.infos, componentInfo{
		name: name,
		key:  xxhash.Sum64String(name),
		typ:  typ,
	})
	r.byType[typ] = id
	r.byName[name] = id
	return id, nil
}

func lookup[T any](r *Registry) (ComponentID, bool) {
	id, ok := r.byType[reflect.TypeFor[T]()]
	return id, ok
}

// storeOf returns the typed store registered under id. A store of any other
// element type means the registry is corrupt; that panics with *CorruptionError.
func storeOf[T any](r *Registry, id ComponentID) *Store[T] {
	if int(id) >= len(r.stores) {
		return nil
	}
	s, ok := r.stores[id].(*Store[T])
	if !ok {
		panic(&CorruptionError{
			Component: id,
			Stored:    r.stores[id].elemType().String(),
			Requested: reflect.TypeFor[T]().String(),
		})
	}
	return s
}

func (r *Registry) store(id ComponentID) componentStore {
	if int(id) >= len(r.stores) {
		return nil
	}
	return r.stores[id]
}

// RemoveAll clears the given entity from every store whose bit is set in sig.
func (r *Registry) RemoveAll(id EntityID, sig mask.Mask) int {
	n := 0
	for cid, s := range r.stores {
		if !sig.ContainsAll(bit(uint32(cid))) {
			continue
		}
		if s.remove(id) {
			n++
		}
	}
	return n
}

// Len is the number of registered component types.
func (r *Registry) Len() int { return len(r.stores) }

func (r *Registry) Name(id ComponentID) string {
	if int(id) >= len(r.infos) {
		return ""
	}
	return r.infos[id].name
}

// Key is a stable 64-bit hash of the component name, identical across runs
// and across Worlds that register the same name.
func (r *Registry) Key(id ComponentID) uint64 {
	if int(id) >= len(r.infos) {
		return 0
	}
	return r.infos[id].key
}

func (r *Registry) ID(name string) (ComponentID, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Count is the number of rows held for the component.
func (r *Registry) Count(id ComponentID) int {
	s := r.store(id)
	if s == nil {
		return 0
	}
	return s.len()
}

func (r *Registry) value(id ComponentID, e EntityID) (any, bool) {
	s := r.store(id)
	if s == nil {
		return nil, false
	}
	return s.value(e)
}

func (r *Registry) clear() {
	for _, s := range r.stores {
		s.clear()
	}
}

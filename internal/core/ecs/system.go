package ecs

import "github.com/TheBitDrifter/mask"

// System is the interface every ECS system implements.
type System interface {
	Name() string
	// Access declares the component types Update reads and writes.
	Access() Access
	Update(w *World, dt float64) error
}

// Access is a system's declared read and write sets. An exclusive access
// conflicts with every other system, so it always runs alone.
type Access struct {
	read      mask.Mask
	write     mask.Mask
	exclusive bool
}

// AccessOf merges the accesses of the given queries.
func AccessOf(qs ...Query) Access {
	var a Access
	for _, q := range qs {
		a = a.Merge(q.Access())
	}
	return a
}

// ExclusiveAccess is the access of a system that makes structural changes.
func ExclusiveAccess() Access {
	return Access{exclusive: true}
}

func (a Access) Read(cs ...Component) Access {
	for _, c := range cs {
		a.read.Mark(uint32(c.ComponentID()))
	}
	return a
}

func (a Access) Write(cs ...Component) Access {
	for _, c := range cs {
		a.write.Mark(uint32(c.ComponentID()))
	}
	return a
}

func (a Access) Merge(o Access) Access {
	var merged Access
	for id := range uint32(MaxComponentTypes) {
		if a.read.ContainsAll(bit(id)) || o.read.ContainsAll(bit(id)) {
			merged.read.Mark(id)
		}
		if a.write.ContainsAll(bit(id)) || o.write.ContainsAll(bit(id)) {
			merged.write.Mark(id)
		}
	}
	merged.exclusive = a.exclusive || o.exclusive
	return merged
}

func (a Access) Exclusive() bool { return a.exclusive }

// Reads reports whether the component is in the read set.
func (a Access) Reads(c Component) bool {
	return a.read.ContainsAll(bit(uint32(c.ComponentID())))
}

func (a Access) Writes(c Component) bool {
	return a.write.ContainsAll(bit(uint32(c.ComponentID())))
}

// ConflictsWith reports whether two systems may not run concurrently: both
// write one type, or one writes what the other reads.
func (a Access) ConflictsWith(o Access) bool {
	if a.exclusive || o.exclusive {
		return true
	}
	return a.write.ContainsAny(o.write) ||
		a.write.ContainsAny(o.read) ||
		a.read.ContainsAny(o.write)
}

func bit(id uint32) mask.Mask {
	var m mask.Mask
	m.Mark(id)
	return m
}

// SystemFunc adapts a function to the System interface.
type SystemFunc struct {
	name   string
	access Access
	fn     func(w *World, dt float64) error
}

func NewSystem(name string, access Access, fn func(w *World, dt float64) error) *SystemFunc {
	return &SystemFunc{name: name, access: access, fn: fn}
}

func (s *SystemFunc) Name() string                      { return s.name }
func (s *SystemFunc) Access() Access                    { return s.access }
func (s *SystemFunc) Update(w *World, dt float64) error { return s.fn(w, dt) }

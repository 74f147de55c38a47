package ecs

import (
	"errors"
	"fmt"
)

var (
	// ErrEntityNotAlive is returned when a component is attached to a stale or dead handle.
	ErrEntityNotAlive = errors.New("entity not alive")
	// ErrResourceExhausted reports a configured entity or component-type limit.
	ErrResourceExhausted = errors.New("resource exhausted")
	// ErrTypeRegistryCorruption marks a store whose element type does not match its key.
	ErrTypeRegistryCorruption = errors.New("type registry corruption")
	ErrDuplicateComponent     = errors.New("component name already registered")
	ErrEmptyQuery             = errors.New("query names no required component")
	ErrQueryAliasing          = errors.New("component named more than once in query")
	ErrReentrantUpdate        = errors.New("world update called from inside a system")
	// ErrUnknownComponent is returned for a zero handle or a handle from another world.
	ErrUnknownComponent = errors.New("component handle not registered in this world")
)

// CorruptionError is raised (as a panic) when a registry lookup returns a
// store of the wrong element type. It can only come from a registry bug.
type CorruptionError struct {
	Component ComponentID
	Stored    string
	Requested string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("component %d: store holds %s, requested %s", e.Component, e.Stored, e.Requested)
}

func (e *CorruptionError) Unwrap() error { return ErrTypeRegistryCorruption }

// SystemError is returned from World.Update when a system fails. The frame
// stops at that system; later systems do not run.
type SystemError struct {
	System string
	Frame  uint64
	Err    error
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("system %s failed in frame %d: %v", e.System, e.Frame, e.Err)
}

func (e *SystemError) Unwrap() error { return e.Err }

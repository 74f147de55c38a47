package ecs

import (
	"fmt"
	"math"
)

// EntityID encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on destroy to invalidate stale refs.
//
// Generations start at 1, so the zero EntityID is never a live handle.
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

func (id EntityID) String() string {
	return fmt.Sprintf("%d@%d", id.Index(), id.Generation())
}

// EntityPool manages entity allocation with generational indices and a free list.
//
// A slot's generation is a uint32. After 2^32-1 reuses of the same slot it wraps
// back to 1; a handle held across that many reuses would match again. That case
// is accepted and not guarded against.
type EntityPool struct {
	generations []uint32
	alive       []bool
	freeList    []uint32
	live        int
	maxLive     int
}

// NewEntityPool preallocates room for initialCapacity slots. maxLive caps the
// number of simultaneously live entities; zero means unbounded.
func NewEntityPool(initialCapacity, maxLive int) *EntityPool {
	if initialCapacity < 0 {
		initialCapacity = 0
	}
	return &EntityPool{
		generations: make([]uint32, 0, initialCapacity),
		alive:       make([]bool, 0, initialCapacity),
		freeList:    make([]uint32, 0, initialCapacity/4),
		maxLive:     maxLive,
	}
}

// Create pops a free slot, or grows the index space when none is free.
func (p *EntityPool) Create() (EntityID, error) {
	if p.maxLive > 0 && p.live >= p.maxLive {
		return 0, fmt.Errorf("entity limit %d: %w", p.maxLive, ErrResourceExhausted)
	}
	if len(p.freeList) > 0 {
		idx := p.freeList[len(p.freeList)-1]
		p.freeList = p.freeList[:len(p.freeList)-1]
		p.alive[idx] = true
		p.live++
		return NewEntityID(idx, p.generations[idx]), nil
	}
	if len(p.generations) == math.MaxUint32 {
		return 0, fmt.Errorf("entity index space: %w", ErrResourceExhausted)
	}
	idx := uint32(len(p.generations))
	p.generations = append(p.generations, 1)
	p.alive = append(p.alive, true)
	p.live++
	return NewEntityID(idx, 1), nil
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	if int(idx) >= len(p.generations) {
		return false
	}
	return p.alive[idx] && p.generations[idx] == id.Generation()
}

// Destroy kills a live entity and returns its slot to the free list.
// Destroying a dead or stale handle is a no-op and reports false.
func (p *EntityPool) Destroy(id EntityID) bool {
	if !p.Alive(id) {
		return false
	}
	idx := id.Index()
	p.alive[idx] = false
	p.generations[idx]++
	if p.generations[idx] == 0 {
		p.generations[idx] = 1
	}
	p.freeList = append(p.freeList, idx)
	p.live--
	return true
}

// Len is the number of live entities.
func (p *EntityPool) Len() int { return p.live }

// Cap is the number of slots ever allocated.
func (p *EntityPool) Cap() int { return len(p.generations) }

// Each calls fn for every live entity in slot order.
func (p *EntityPool) Each(fn func(EntityID) bool) {
	for idx, ok := range p.alive {
		if !ok {
			continue
		}
		if !fn(NewEntityID(uint32(idx), p.generations[idx])) {
			return
		}
	}
}

// Reset kills every live entity. Generations are kept so handles issued
// before the reset stay invalid.
func (p *EntityPool) Reset() {
	p.freeList = p.freeList[:0]
	for i := len(p.alive) - 1; i >= 0; i-- {
		if p.alive[i] {
			p.alive[i] = false
			p.generations[i]++
			if p.generations[i] == 0 {
				p.generations[i] = 1
			}
		}
		p.freeList = append(p.freeList, uint32(i))
	}
	p.live = 0
}

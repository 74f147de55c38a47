package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityID(t *testing.T) {
	id := NewEntityID(7, 3)
	assert.Equal(t, uint32(7), id.Index())
	assert.Equal(t, uint32(3), id.Generation())
	assert.Equal(t, "7@3", id.String())
	assert.True(t, EntityID(0).IsZero())
	assert.False(t, id.IsZero())
}

func TestEntityPoolReuse(t *testing.T) {
	p := NewEntityPool(4, 0)

	first, err := p.Create()
	require.NoError(t, err)
	assert.False(t, first.IsZero())
	assert.True(t, p.Alive(first))

	require.True(t, p.Destroy(first))
	assert.False(t, p.Alive(first))
	assert.False(t, p.Destroy(first), "second destroy is a no-op")

	reused, err := p.Create()
	require.NoError(t, err)
	assert.Equal(t, first.Index(), reused.Index())
	assert.Greater(t, reused.Generation(), first.Generation())
	assert.False(t, p.Alive(first))
	assert.True(t, p.Alive(reused))
	assert.Equal(t, 1, p.Len())
	assert.Equal(t, 1, p.Cap())
}

func TestEntityPoolFreeListIsLIFO(t *testing.T) {
	p := NewEntityPool(0, 0)
	ids := make([]EntityID, 3)
	for i := range ids {
		var err error
		ids[i], err = p.Create()
		require.NoError(t, err)
	}
	p.Destroy(ids[0])
	p.Destroy(ids[2])

	next, err := p.Create()
	require.NoError(t, err)
	assert.Equal(t, ids[2].Index(), next.Index())
	next, err = p.Create()
	require.NoError(t, err)
	assert.Equal(t, ids[0].Index(), next.Index())
}

func TestEntityPoolLimit(t *testing.T) {
	p := NewEntityPool(0, 2)
	a, err := p.Create()
	require.NoError(t, err)
	_, err = p.Create()
	require.NoError(t, err)

	_, err = p.Create()
	require.ErrorIs(t, err, ErrResourceExhausted)

	p.Destroy(a)
	_, err = p.Create()
	require.NoError(t, err)
}

func TestEntityPoolUnknownHandles(t *testing.T) {
	p := NewEntityPool(0, 0)
	assert.False(t, p.Alive(0))
	assert.False(t, p.Alive(NewEntityID(99, 1)))
	assert.False(t, p.Destroy(NewEntityID(99, 1)))

	id, err := p.Create()
	require.NoError(t, err)
	assert.False(t, p.Alive(NewEntityID(id.Index(), id.Generation()+1)))
}

func TestEntityPoolGenerationWrapSkipsZero(t *testing.T) {
	p := NewEntityPool(0, 0)
	id, err := p.Create()
	require.NoError(t, err)
	p.generations[id.Index()] = ^uint32(0)
	id = NewEntityID(id.Index(), ^uint32(0))

	require.True(t, p.Destroy(id))
	next, err := p.Create()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), next.Generation())
}

func TestEntityPoolEachAndReset(t *testing.T) {
	p := NewEntityPool(0, 0)
	var ids []EntityID
	for range 5 {
		id, err := p.Create()
		require.NoError(t, err)
		ids = append(ids, id)
	}
	p.Destroy(ids[1])

	var seen []EntityID
	p.Each(func(id EntityID) bool {
		seen = append(seen, id)
		return true
	})
	assert.Equal(t, []EntityID{ids[0], ids[2], ids[3], ids[4]}, seen)

	p.Reset()
	assert.Equal(t, 0, p.Len())
	for _, id := range ids {
		assert.False(t, p.Alive(id))
	}
	again, err := p.Create()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), again.Index())
	assert.Greater(t, again.Generation(), ids[0].Generation())
}

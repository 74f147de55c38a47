package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/whale2d/internal/core/ecs"
)

func TestBusDeliversNextFrame(t *testing.T) {
	b := NewBus()
	var got []Damaged
	Subscribe(b, func(ev Damaged) { got = append(got, ev) })

	Emit(b, Damaged{Target: 1, Amount: 5})
	assert.Equal(t, 0, b.DispatchAll(), "nothing readable before a swap")

	b.SwapBuffers()
	assert.Equal(t, 1, b.DispatchAll())
	require.Len(t, got, 1)
	assert.Equal(t, 5.0, got[0].Amount)

	b.SwapBuffers()
	assert.Equal(t, 0, b.DispatchAll())
	assert.Len(t, got, 1)
}

func TestBusDispatchOrder(t *testing.T) {
	b := NewBus()
	var log []string
	Subscribe(b, func(Died) { log = append(log, "died") })
	Subscribe(b, func(Damaged) { log = append(log, "damaged") })
	Subscribe(b, func(LeveledUp) { log = append(log, "leveled") })

	Emit(b, LeveledUp{Level: 2})
	Emit(b, Damaged{})
	Emit(b, Died{})
	Emit(b, Damaged{})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, []string{"died", "damaged", "damaged", "leveled"}, log)
}

func TestBusHandlersEmitIntoNextFrame(t *testing.T) {
	b := NewBus()
	Subscribe(b, func(ev Died) { Emit(b, LeveledUp{Entity: ev.Killer, Level: 2}) })

	Emit(b, Died{Entity: 4, Killer: 9})
	b.SwapBuffers()
	b.DispatchAll()
	assert.Empty(t, Pending[LeveledUp](b))

	b.SwapBuffers()
	assert.Equal(t, []LeveledUp{{Entity: ecs.EntityID(9), Level: 2}}, Pending[LeveledUp](b))
}

func TestBusConcurrentEmit(t *testing.T) {
	b := NewBus()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				Emit(b, Damaged{Amount: 1})
			}
		}()
	}
	wg.Wait()
	b.SwapBuffers()
	assert.Len(t, Pending[Damaged](b), 800)

	b.Reset()
	assert.Empty(t, Pending[Damaged](b))
}

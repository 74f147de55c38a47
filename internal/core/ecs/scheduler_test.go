package ecs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type (
	pos    struct{ X, Y float64 }
	vel    struct{ X, Y float64 }
	health struct{ HP float64 }
	timer  struct{ T float64 }
)

func noop(*World, float64) error { return nil }

func TestSchedulerRunsInRegistrationOrder(t *testing.T) {
	w := NewWorld()
	var order []string
	for _, name := range []string{"input", "physics", "render"} {
		w.AddSystem(NewSystem(name, Access{}, func(*World, float64) error {
			order = append(order, name)
			return nil
		}))
	}
	require.NoError(t, w.Update(0.016))
	require.NoError(t, w.Update(0.016))
	assert.Equal(t, []string{"input", "physics", "render", "input", "physics", "render"}, order)

	names := make([]string, 0, 3)
	for _, s := range w.Scheduler().Systems() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"input", "physics", "render"}, names)
}

func TestSystemFailureStopsFrame(t *testing.T) {
	w := NewWorld()
	boom := errors.New("invariant broken")
	ran := false
	w.AddSystem(NewSystem("ok", Access{}, noop))
	w.AddSystem(NewSystem("bad", Access{}, func(*World, float64) error { return boom }))
	w.AddSystem(NewSystem("after", Access{}, func(*World, float64) error {
		ran = true
		return nil
	}))

	err := w.Update(1)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	var se *SystemError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "bad", se.System)
	assert.Equal(t, uint64(1), se.Frame)
	assert.False(t, ran)
}

func TestCorruptionAbortsFrame(t *testing.T) {
	w := NewWorld()
	ct := MustComponentType[pos](w)
	w.registry.stores[ct.ID()] = NewStore[vel]()
	w.AddSystem(NewSystem("reader", Access{}, func(w *World, _ float64) error {
		ct.Count(w)
		return nil
	}))

	err := w.Update(1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTypeRegistryCorruption)
}

func TestUpdateIsNotReentrant(t *testing.T) {
	w := NewWorld()
	var nested error
	w.AddSystem(NewSystem("nested", Access{}, func(w *World, dt float64) error {
		nested = w.Update(dt)
		return nil
	}))
	require.NoError(t, w.Update(1))
	assert.ErrorIs(t, nested, ErrReentrantUpdate)
	assert.Equal(t, uint64(1), w.Frame())
	assert.NoError(t, w.Update(1))
}

func TestAccessConflicts(t *testing.T) {
	w := NewWorld()
	p := MustComponentType[pos](w)
	v := MustComponentType[vel](w)
	h := MustComponentType[health](w)

	tests := []struct {
		name string
		a, b Access
		want bool
	}{
		{"disjoint", Access{}.Write(p), Access{}.Write(h), false},
		{"shared reads", Access{}.Read(v), Access{}.Read(v), false},
		{"write write", Access{}.Write(p), Access{}.Write(p), true},
		{"write read", Access{}.Write(p), Access{}.Read(p), true},
		{"read write", Access{}.Read(v).Write(p), Access{}.Write(v), true},
		{"exclusive", ExclusiveAccess(), Access{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.ConflictsWith(tt.b))
			assert.Equal(t, tt.want, tt.b.ConflictsWith(tt.a))
		})
	}

	merged := Access{}.Read(v).Merge(Access{}.Write(p))
	assert.True(t, merged.Reads(v))
	assert.True(t, merged.Writes(p))
	assert.False(t, merged.Exclusive())
}

func TestSchedulerConflictsAndBatches(t *testing.T) {
	w := NewWorld(WithParallelSystems(true))
	p := MustComponentType[pos](w)
	v := MustComponentType[vel](w)
	h := MustComponentType[health](w)
	tm := MustComponentType[timer](w)

	w.AddSystem(NewSystem("move", Access{}.Read(v).Write(p), noop))
	w.AddSystem(NewSystem("tick", Access{}.Write(tm), noop))
	w.AddSystem(NewSystem("damage", Access{}.Read(p).Write(h), noop))
	w.AddSystem(NewSystem("heal", Access{}.Write(h), noop))
	w.AddSystem(NewSystem("cleanup", ExclusiveAccess(), noop))

	assert.Equal(t, [][]string{{"move", "tick"}, {"damage"}, {"heal"}, {"cleanup"}}, w.Scheduler().Batches())
	assert.Equal(t, []Conflict{
		{First: "move", Second: "damage"},
		{First: "damage", Second: "heal"},
	}, w.Scheduler().Conflicts())

	seq := NewScheduler(nil, false)
	seq.Add(NewSystem("a", Access{}, noop))
	seq.Add(NewSystem("b", Access{}, noop))
	assert.Equal(t, [][]string{{"a"}, {"b"}}, seq.Batches())
}

func TestParallelBatchReportsEarliestFailure(t *testing.T) {
	w := NewWorld(WithParallelSystems(true))
	p := MustComponentType[pos](w)
	h := MustComponentType[health](w)
	w.AddSystem(NewSystem("first", Access{}.Write(p), func(*World, float64) error { return errors.New("first") }))
	w.AddSystem(NewSystem("second", Access{}.Write(h), func(*World, float64) error { return errors.New("second") }))

	err := w.Update(1)
	var se *SystemError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "first", se.System)
}

// simulate builds a small world, runs frames, and returns every component
// row rendered as text.
func simulate(t *testing.T, parallel bool) []string {
	t.Helper()
	w := NewWorld(WithParallelSystems(parallel))
	p := MustComponentType[pos](w)
	v := MustComponentType[vel](w)
	h := MustComponentType[health](w)
	tm := MustComponentType[timer](w)

	for i := range 200 {
		e, err := w.CreateEntity()
		require.NoError(t, err)
		p.Set(w, e, pos{X: float64(i)})
		v.Set(w, e, vel{X: 1, Y: float64(i%7) - 3})
		h.Set(w, e, health{HP: float64(50 + i%30)})
		if i%3 == 0 {
			tm.Set(w, e, timer{})
		}
	}

	move := NewQuery().Read(v).Write(p).MustBuild()
	decay := NewQuery().Write(h).MustBuild()
	clock := NewQuery().Write(tm).MustBuild()
	w.AddSystem(NewSystem("move", AccessOf(move), func(w *World, dt float64) error {
		Each2(w.Query(move), p, v, func(_ EntityID, p *pos, v *vel) {
			p.X += v.X * dt
			p.Y += v.Y * dt
		})
		return nil
	}))
	w.AddSystem(NewSystem("decay", AccessOf(decay), func(w *World, dt float64) error {
		Each1(w.Query(decay), h, func(id EntityID, h *health) {
			h.HP -= dt * 10
			if h.HP <= 0 {
				w.MarkForDestruction(id)
			}
		})
		return nil
	}))
	w.AddSystem(NewSystem("clock", AccessOf(clock), func(w *World, dt float64) error {
		Each1(w.Query(clock), tm, func(_ EntityID, c *timer) { c.T += dt })
		return nil
	}))
	w.AddSystem(NewSystem("cleanup", ExclusiveAccess(), func(w *World, _ float64) error {
		w.FlushDestroyQueue()
		return nil
	}))

	for range 120 {
		require.NoError(t, w.Update(0.05))
	}
	var rows []string
	w.EachComponent(func(id EntityID, name string, value any) bool {
		rows = append(rows, fmt.Sprintf("%s %s %+v", id, name, value))
		return true
	})
	return rows
}

func TestDeterministicAcrossRunsAndModes(t *testing.T) {
	first := simulate(t, false)
	require.NotEmpty(t, first)
	assert.Equal(t, first, simulate(t, false))
	assert.Equal(t, first, simulate(t, true))
}

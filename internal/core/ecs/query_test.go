package ecs_test

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/whale2d/internal/core/ecs"
)

type (
	tagA struct{ N int }
	tagB struct{ N int }
	tagC struct{ N int }
)

func TestQueryBuildErrors(t *testing.T) {
	w := ecs.NewWorld()
	a := ecs.MustComponentType[tagA](w)
	b := ecs.MustComponentType[tagB](w)

	tests := []struct {
		name  string
		build *ecs.QueryBuilder
		want  error
	}{
		{"nothing required", ecs.NewQuery(), ecs.ErrEmptyQuery},
		{"only excludes", ecs.NewQuery().Without(a), ecs.ErrEmptyQuery},
		{"read and write same type", ecs.NewQuery().Read(a).Write(a), ecs.ErrQueryAliasing},
		{"write twice", ecs.NewQuery().Write(b, b), ecs.ErrQueryAliasing},
		{"require and exclude", ecs.NewQuery().Read(a).Without(a), ecs.ErrQueryAliasing},
		{"valid", ecs.NewQuery().Read(a).Without(b), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build.Build()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Panics(t, func() { ecs.NewQuery().MustBuild() })
}

// queryShape assigns each of the three test types a role in a query.
type queryShape [3]int

const (
	roleNone = iota
	roleRead
	roleWrite
	roleExclude
)

// allQueryShapes lists every role assignment with at least one required type,
// including shapes with no excludes and a single required type.
func allQueryShapes() []queryShape {
	var shapes []queryShape
	for n := range 4 * 4 * 4 {
		sh := queryShape{n % 4, n / 4 % 4, n / 16}
		for _, r := range sh {
			if r == roleRead || r == roleWrite {
				shapes = append(shapes, sh)
				break
			}
		}
	}
	return shapes
}

func (sh queryShape) build(t *testing.T, cs [3]ecs.Component) ecs.Query {
	t.Helper()
	b := ecs.NewQuery()
	for i, r := range sh {
		switch r {
		case roleRead:
			b.Read(cs[i])
		case roleWrite:
			b.Write(cs[i])
		case roleExclude:
			b.Without(cs[i])
		}
	}
	q, err := b.Build()
	require.NoError(t, err)
	return q
}

func (sh queryShape) want(has [3]bool) bool {
	for i, r := range sh {
		switch r {
		case roleRead, roleWrite:
			if !has[i] {
				return false
			}
		case roleExclude:
			if has[i] {
				return false
			}
		}
	}
	return true
}

func TestQueryMatchesBruteForce(t *testing.T) {
	shapes := allQueryShapes()
	require.Len(t, shapes, 64-8)

	for _, seed := range []uint64{1, 7, 42, 1234} {
		rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		w := ecs.NewWorld(ecs.WithInitialCapacity(16))
		a := ecs.MustComponentType[tagA](w)
		b := ecs.MustComponentType[tagB](w)
		c := ecs.MustComponentType[tagC](w)
		cs := [3]ecs.Component{a, b, c}

		var live []ecs.EntityID
		for step := range 2000 {
			switch op := rng.IntN(10); {
			case op < 2 || len(live) == 0:
				e, err := w.CreateEntity()
				require.NoError(t, err)
				live = append(live, e)
			case op == 2:
				i := rng.IntN(len(live))
				require.True(t, w.DestroyEntity(live[i]))
				live = slices.Delete(live, i, i+1)
			default:
				e := live[rng.IntN(len(live))]
				add := rng.IntN(2) == 0
				switch rng.IntN(3) {
				case 0:
					if add {
						_, _, err := a.Set(w, e, tagA{step})
						require.NoError(t, err)
					} else {
						a.Remove(w, e)
					}
				case 1:
					if add {
						_, _, err := b.Set(w, e, tagB{step})
						require.NoError(t, err)
					} else {
						b.Remove(w, e)
					}
				default:
					if add {
						_, _, err := c.Set(w, e, tagC{step})
						require.NoError(t, err)
					} else {
						c.Remove(w, e)
					}
				}
			}

			if step%50 != 0 {
				continue
			}
			// A random shape every check plus the whole table at the end.
			check := []queryShape{shapes[rng.IntN(len(shapes))]}
			if step == 1950 {
				check = shapes
			}
			for _, sh := range check {
				q := sh.build(t, cs)
				var want []ecs.EntityID
				for _, e := range w.Entities() {
					if sh.want([3]bool{a.Has(w, e), b.Has(w, e), c.Has(w, e)}) {
						want = append(want, e)
					}
				}
				got := w.Query(q).Entities()
				assert.ElementsMatch(t, want, got, "seed %d step %d shape %v", seed, step, sh)
				assert.Equal(t, len(got), w.Query(q).Len())
				for _, e := range live {
					assert.Equal(t, slices.Contains(want, e), w.Query(q).Contains(e))
				}
			}
		}
	}
}

func TestQueryWithoutExcludes(t *testing.T) {
	w := ecs.NewWorld()
	a := ecs.MustComponentType[tagA](w)
	b := ecs.MustComponentType[tagB](w)
	e1, e2 := mustCreate(t, w), mustCreate(t, w)
	a.Set(w, e1, tagA{1})
	b.Set(w, e1, tagB{1})
	a.Set(w, e2, tagA{2})

	single := ecs.NewQuery().Read(a).MustBuild()
	assert.Equal(t, []ecs.EntityID{e1, e2}, w.Query(single).Entities())

	pair := ecs.NewQuery().Read(b).Write(a).MustBuild()
	assert.Equal(t, []ecs.EntityID{e1}, w.Query(pair).Entities())
	assert.True(t, w.Query(pair).Contains(e1))
	assert.False(t, w.Query(pair).Contains(e2))
}

func TestQueryOrderFollowsSmallestStore(t *testing.T) {
	w := ecs.NewWorld()
	a := ecs.MustComponentType[tagA](w)
	b := ecs.MustComponentType[tagB](w)

	var es []ecs.EntityID
	for range 5 {
		es = append(es, mustCreate(t, w))
	}
	for _, e := range es {
		a.Set(w, e, tagA{})
	}
	// b is smaller and receives entities in reverse order.
	b.Set(w, es[3], tagB{})
	b.Set(w, es[1], tagB{})
	b.Set(w, es[0], tagB{})

	q := ecs.NewQuery().Read(a, b).MustBuild()
	want := []ecs.EntityID{es[3], es[1], es[0]}
	assert.Equal(t, want, w.Query(q).Entities())
	assert.Equal(t, want, w.Query(q).Entities(), "repeat evaluation is stable")
}

func TestQuerySkipsEntitiesDestroyedMidIteration(t *testing.T) {
	w := ecs.NewWorld()
	a := ecs.MustComponentType[tagA](w)
	var es []ecs.EntityID
	for i := range 4 {
		e := mustCreate(t, w)
		a.Set(w, e, tagA{i})
		es = append(es, e)
	}
	q := ecs.NewQuery().Write(a).MustBuild()

	var seen []ecs.EntityID
	for e := range w.Query(q).All() {
		seen = append(seen, e)
		if e == es[0] {
			w.DestroyEntity(es[2])
		}
	}
	assert.Equal(t, []ecs.EntityID{es[0], es[1], es[3]}, seen)
}

func TestEachHelpers(t *testing.T) {
	w := ecs.NewWorld()
	a := ecs.MustComponentType[tagA](w)
	b := ecs.MustComponentType[tagB](w)
	c := ecs.MustComponentType[tagC](w)
	for i := range 3 {
		e := mustCreate(t, w)
		a.Set(w, e, tagA{i})
		b.Set(w, e, tagB{i * 10})
		if i > 0 {
			c.Set(w, e, tagC{i * 100})
		}
	}

	sum := 0
	ecs.Each1(w.Query(ecs.NewQuery().Write(a).MustBuild()), a, func(_ ecs.EntityID, v *tagA) {
		v.N++
		sum += v.N
	})
	assert.Equal(t, 1+2+3, sum)

	sum = 0
	ecs.Each2(w.Query(ecs.NewQuery().Read(a, b).Without(c).MustBuild()), a, b, func(_ ecs.EntityID, x *tagA, y *tagB) {
		sum += x.N + y.N
	})
	assert.Equal(t, 1+0, sum)

	sum = 0
	ecs.Each3(w.Query(ecs.NewQuery().Read(a, b, c).MustBuild()), a, b, c, func(_ ecs.EntityID, x *tagA, y *tagB, z *tagC) {
		sum += x.N + y.N + z.N
	})
	assert.Equal(t, (2+10+100)+(3+20+200), sum)
}

func TestEachRWCopiesReadType(t *testing.T) {
	w := ecs.NewWorld()
	a := ecs.MustComponentType[tagA](w)
	b := ecs.MustComponentType[tagB](w)
	e := mustCreate(t, w)
	a.Set(w, e, tagA{3})
	b.Set(w, e, tagB{1})

	q := ecs.NewQuery().Read(a).Write(b).MustBuild()
	calls := 0
	ecs.EachRW(w.Query(q), a, b, func(_ ecs.EntityID, r tagA, wv *tagB) {
		calls++
		wv.N += r.N
		r.N = 99
	})
	assert.Equal(t, 1, calls)
	got, _ := a.Get(w, e)
	assert.Equal(t, tagA{3}, got)
	gotB, _ := b.Get(w, e)
	assert.Equal(t, tagB{4}, gotB)
}

func TestForeignHandlesYieldNothing(t *testing.T) {
	w := ecs.NewWorld()
	a := ecs.MustComponentType[tagA](w)
	e := mustCreate(t, w)
	a.Set(w, e, tagA{1})

	var zero ecs.ComponentType[tagB]
	other := ecs.MustComponentType[tagB](ecs.NewWorld())
	for _, h := range []ecs.ComponentType[tagB]{zero, other} {
		assert.NotPanics(t, func() {
			_, ok := h.Get(w, e)
			assert.False(t, ok)
			assert.Nil(t, h.Mut(w, e))
			assert.False(t, h.Has(w, e))
			_, ok = h.Remove(w, e)
			assert.False(t, ok)
			assert.Equal(t, 0, h.Count(w))
			_, _, err := h.Set(w, e, tagB{2})
			assert.ErrorIs(t, err, ecs.ErrUnknownComponent)

			q := ecs.NewQuery().Read(a).MustBuild()
			ecs.Each2(w.Query(q), a, h, func(ecs.EntityID, *tagA, *tagB) {
				t.Fatal("foreign handle must not be visited")
			})
		})
	}
	v, _ := a.Get(w, e)
	assert.Equal(t, tagA{1}, v)
}

func TestQueryAccess(t *testing.T) {
	w := ecs.NewWorld()
	a := ecs.MustComponentType[tagA](w)
	b := ecs.MustComponentType[tagB](w)
	c := ecs.MustComponentType[tagC](w)
	q := ecs.NewQuery().Read(a).Write(b).Without(c).MustBuild()

	acc := q.Access()
	assert.True(t, acc.Reads(a))
	assert.False(t, acc.Writes(a))
	assert.True(t, acc.Writes(b))
	assert.False(t, acc.Reads(c))
	assert.False(t, acc.Writes(c))
}

package system

import (
	"cmp"
	"slices"

	"github.com/l1jgo/whale2d/internal/component"
	"github.com/l1jgo/whale2d/internal/core/ecs"
	coresys "github.com/l1jgo/whale2d/internal/core/system"
)

// DrawCmd is one sprite placement for the renderer.
type DrawCmd struct {
	Entity  ecs.EntityID
	Texture string
	X, Y    float64
	Width   float64
	Height  float64
}

// Renderer receives the frame's draw list. The slice is reused next frame.
type Renderer interface {
	Draw(frame uint64, cmds []DrawCmd)
}

// SpriteCollectSystem builds the frame's draw list from Position and Sprite,
// sorted back to front (by Y, then X, then entity). Phase 3 (Output).
type SpriteCollectSystem struct {
	ct       *component.Types
	renderer Renderer
	query    ecs.Query
	cmds     []DrawCmd
}

// NewSpriteCollectSystem accepts a nil renderer; the list is then only kept
// for DrawList.
func NewSpriteCollectSystem(ct *component.Types, r Renderer) *SpriteCollectSystem {
	return &SpriteCollectSystem{
		ct:       ct,
		renderer: r,
		query:    ecs.NewQuery().Read(ct.Position, ct.Sprite).MustBuild(),
	}
}

func (s *SpriteCollectSystem) Name() string         { return "sprites" }
func (s *SpriteCollectSystem) Phase() coresys.Phase { return coresys.PhaseOutput }
func (s *SpriteCollectSystem) Access() ecs.Access   { return ecs.AccessOf(s.query) }

// DrawList returns the list built by the last Update.
func (s *SpriteCollectSystem) DrawList() []DrawCmd { return s.cmds }

func (s *SpriteCollectSystem) Update(w *ecs.World, _ float64) error {
	s.cmds = s.cmds[:0]
	ecs.Each2(w.Query(s.query), s.ct.Position, s.ct.Sprite, func(id ecs.EntityID, p *component.Position, sp *component.Sprite) {
		s.cmds = append(s.cmds, DrawCmd{
			Entity:  id,
			Texture: sp.Texture,
			X:       p.X,
			Y:       p.Y,
			Width:   sp.Width,
			Height:  sp.Height,
		})
	})
	slices.SortFunc(s.cmds, func(a, b DrawCmd) int {
		return cmp.Or(
			cmp.Compare(a.Y, b.Y),
			cmp.Compare(a.X, b.X),
			cmp.Compare(a.Entity, b.Entity),
		)
	})
	if s.renderer != nil {
		s.renderer.Draw(w.Frame(), s.cmds)
	}
	return nil
}

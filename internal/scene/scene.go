package scene

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/l1jgo/whale2d/internal/component"
	"github.com/l1jgo/whale2d/internal/core/ecs"
)

// Offset is the position delta between copies of a repeated entity.
type Offset struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// EntitySpec describes one entity (or Count identical ones) in a scene file.
// Every component is optional.
type EntitySpec struct {
	Label string `yaml:"label"`
	Count int    `yaml:"count"` // 0 means 1
	Step  Offset `yaml:"step"`

	Position  *component.Position  `yaml:"position"`
	Velocity  *component.Velocity  `yaml:"velocity"`
	Sprite    *component.Sprite    `yaml:"sprite"`
	Health    *component.Health    `yaml:"health"`
	Character *component.Character `yaml:"character"`
	Combat    *component.Combat    `yaml:"combat"`
	Team      *component.Team      `yaml:"team"`
}

// Scene is a level: a list of entity specs plus the handles of the entities
// spawned from it, so the level can be unloaded again.
type Scene struct {
	Name     string       `yaml:"name"`
	Entities []EntitySpec `yaml:"entities"`

	instance uuid.UUID
	spawned  []ecs.EntityID
}

// Load reads a YAML scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scene. Unknown keys are rejected.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scene) validate() error {
	var errs []error
	for i := range s.Entities {
		e := &s.Entities[i]
		where := fmt.Sprintf("entity %d", i)
		if e.Label != "" {
			where = fmt.Sprintf("entity %d (%s)", i, e.Label)
		}
		if e.Count < 0 {
			errs = append(errs, fmt.Errorf("%s: count %d is negative", where, e.Count))
		}
		if e.Health != nil && e.Health.Maximum <= 0 {
			errs = append(errs, fmt.Errorf("%s: health.maximum must be positive", where))
		}
		if e.Health != nil && e.Health.Current > e.Health.Maximum {
			errs = append(errs, fmt.Errorf("%s: health.current exceeds maximum", where))
		}
		if e.Combat != nil && (e.Combat.AttackRange < 0 || e.Combat.AttackCooldown < 0) {
			errs = append(errs, fmt.Errorf("%s: combat range and cooldown must not be negative", where))
		}
		if e.Character != nil {
			name, err := NormalizeName(e.Character.Name)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", where, err))
			}
			e.Character.Name = name
			if e.Character.Level < 1 {
				e.Character.Level = 1
			}
		}
	}
	return errors.Join(errs...)
}

// EntityCount is the number of entities Spawn creates.
func (s *Scene) EntityCount() int {
	n := 0
	for _, e := range s.Entities {
		n += max(e.Count, 1)
	}
	return n
}

// Instance identifies the current spawn of the scene; zero when not spawned.
func (s *Scene) Instance() uuid.UUID { return s.instance }

// Spawned returns the handles created by the last Spawn.
func (s *Scene) Spawned() []ecs.EntityID {
	return append([]ecs.EntityID(nil), s.spawned...)
}

// Spawn creates every entity of the scene in w. On failure the entities
// created so far are destroyed again and w is left as it was.
func (s *Scene) Spawn(w *ecs.World, ct *component.Types) ([]ecs.EntityID, error) {
	created := make([]ecs.EntityID, 0, s.EntityCount())
	fail := func(err error) ([]ecs.EntityID, error) {
		for _, id := range created {
			w.DestroyEntity(id)
		}
		return nil, fmt.Errorf("spawn scene %s: %w", s.Name, err)
	}

	for _, spec := range s.Entities {
		for i := range max(spec.Count, 1) {
			id, err := w.CreateEntity()
			if err != nil {
				return fail(err)
			}
			created = append(created, id)
			if err := spec.apply(w, ct, id, i); err != nil {
				return fail(err)
			}
		}
	}

	s.instance = uuid.New()
	s.spawned = created
	w.Logger().Info("scene spawned",
		zap.String("scene", s.Name),
		zap.Stringer("instance", s.instance),
		zap.Int("entities", len(created)),
	)
	return s.Spawned(), nil
}

func (spec *EntitySpec) apply(w *ecs.World, ct *component.Types, id ecs.EntityID, copyIdx int) error {
	var errs []error
	add := func(_ any, _ bool, err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	if spec.Position != nil {
		p := *spec.Position
		p.X += spec.Step.X * float64(copyIdx)
		p.Y += spec.Step.Y * float64(copyIdx)
		add(ct.Position.Set(w, id, p))
	}
	if spec.Velocity != nil {
		add(ct.Velocity.Set(w, id, *spec.Velocity))
	}
	if spec.Sprite != nil {
		add(ct.Sprite.Set(w, id, *spec.Sprite))
	}
	if spec.Health != nil {
		add(ct.Health.Set(w, id, *spec.Health))
	}
	if spec.Character != nil {
		add(ct.Character.Set(w, id, *spec.Character))
	}
	if spec.Combat != nil {
		add(ct.Combat.Set(w, id, *spec.Combat))
	}
	if spec.Team != nil {
		add(ct.Team.Set(w, id, *spec.Team))
	}
	return errors.Join(errs...)
}

// Unload destroys the entities spawned by the last Spawn that are still
// alive and returns how many it destroyed.
func (s *Scene) Unload(w *ecs.World) int {
	n := 0
	for _, id := range s.spawned {
		if w.DestroyEntity(id) {
			n++
		}
	}
	w.Logger().Info("scene unloaded",
		zap.String("scene", s.Name),
		zap.Stringer("instance", s.instance),
		zap.Int("destroyed", n),
	)
	s.spawned = nil
	s.instance = uuid.Nil
	return n
}

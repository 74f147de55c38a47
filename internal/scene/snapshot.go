package scene

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/l1jgo/whale2d/internal/core/ecs"
)

// Row is one (entity, component, value) tuple of a live entity.
type Row struct {
	Entity    ecs.EntityID
	Component string
	Value     any
}

// Snapshot is a copy of every component value of every live entity, in
// slot order then component registration order.
type Snapshot struct {
	Frame uint64
	Rows  []Row
}

// Take copies the current state of w.
func Take(w *ecs.World) *Snapshot {
	s := &Snapshot{Frame: w.Frame()}
	w.EachComponent(func(id ecs.EntityID, name string, v any) bool {
		s.Rows = append(s.Rows, Row{Entity: id, Component: name, Value: v})
		return true
	})
	return s
}

// Checksum hashes the rows. Two worlds that went through the same frames
// from the same start have equal checksums.
func (s *Snapshot) Checksum() uint64 {
	h := xxhash.New()
	var buf [8]byte
	for _, r := range s.Rows {
		binary.LittleEndian.PutUint64(buf[:], uint64(r.Entity))
		h.Write(buf[:])
		h.WriteString(r.Component)
		fmt.Fprintf(h, "\x00%#v\x00", r.Value)
	}
	return h.Sum64()
}

// Entities is the number of distinct entities in the snapshot.
func (s *Snapshot) Entities() int {
	n := 0
	var last ecs.EntityID
	for i, r := range s.Rows {
		if i == 0 || r.Entity != last {
			n++
			last = r.Entity
		}
	}
	return n
}

type yamlEntity struct {
	ID         string         `yaml:"id"`
	Components map[string]any `yaml:"components"`
}

type yamlSnapshot struct {
	Frame    uint64       `yaml:"frame"`
	Checksum string       `yaml:"checksum"`
	Entities []yamlEntity `yaml:"entities"`
}

// MarshalYAML renders the snapshot grouped by entity.
func (s *Snapshot) MarshalYAML() (any, error) {
	out := yamlSnapshot{
		Frame:    s.Frame,
		Checksum: strconv.FormatUint(s.Checksum(), 16),
	}
	for i, r := range s.Rows {
		if i == 0 || s.Rows[i-1].Entity != r.Entity {
			out.Entities = append(out.Entities, yamlEntity{
				ID:         r.Entity.String(),
				Components: make(map[string]any),
			})
		}
		out.Entities[len(out.Entities)-1].Components[r.Component] = r.Value
	}
	return out, nil
}

// WriteYAML writes the snapshot to path, creating parent directories.
func (s *Snapshot) WriteYAML(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

package component

import "github.com/l1jgo/whale2d/internal/core/ecs"

// Types holds the typed handles of every gameplay component in one World.
type Types struct {
	Position  ecs.ComponentType[Position]
	Velocity  ecs.ComponentType[Velocity]
	Sprite    ecs.ComponentType[Sprite]
	Health    ecs.ComponentType[Health]
	Character ecs.ComponentType[Character]
	Combat    ecs.ComponentType[Combat]
	Team      ecs.ComponentType[Team]
}

// Register registers the gameplay components under their scene-file names.
// Calling it again on the same World returns the same handles.
func Register(w *ecs.World) (*Types, error) {
	var (
		t   Types
		err error
	)
	if t.Position, err = ecs.RegisterComponent[Position](w, "position"); err != nil {
		return nil, err
	}
	if t.Velocity, err = ecs.RegisterComponent[Velocity](w, "velocity"); err != nil {
		return nil, err
	}
	if t.Sprite, err = ecs.RegisterComponent[Sprite](w, "sprite"); err != nil {
		return nil, err
	}
	if t.Health, err = ecs.RegisterComponent[Health](w, "health"); err != nil {
		return nil, err
	}
	if t.Character, err = ecs.RegisterComponent[Character](w, "character"); err != nil {
		return nil, err
	}
	if t.Combat, err = ecs.RegisterComponent[Combat](w, "combat"); err != nil {
		return nil, err
	}
	if t.Team, err = ecs.RegisterComponent[Team](w, "team"); err != nil {
		return nil, err
	}
	return &t, nil
}

package component

// Position is a world-space location in pixels.
type Position struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Velocity is in pixels per second.
type Velocity struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Sprite is what the renderer draws at an entity's Position.
type Sprite struct {
	Texture string  `yaml:"texture"`
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
}

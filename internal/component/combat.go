package component

type Health struct {
	Current float64 `yaml:"current"`
	Maximum float64 `yaml:"maximum"`
}

// Combat holds attack stats. LastAttack is a timestamp on the combat clock,
// in seconds.
type Combat struct {
	AttackPower    float64 `yaml:"attack_power"`
	AttackRange    float64 `yaml:"attack_range"`
	AttackCooldown float64 `yaml:"attack_cooldown"`
	LastAttack     float64 `yaml:"last_attack"`
}

// Team groups entities that do not attack each other.
type Team struct {
	ID int `yaml:"id"`
}

package scripting

import "github.com/l1jgo/whale2d/internal/component"

// Rules are the tunable gameplay formulas systems consult. Engine evaluates
// them in Lua; DefaultRules is the built-in Go version.
type Rules interface {
	CalcDamage(ctx DamageContext) float64
	RegenAmount(level int, class component.Class, maximum float64) float64
	ExpForLevel(level int) int64
}

// Combatant is one side of an attack, packed for rule evaluation.
type Combatant struct {
	Level       int
	Class       component.Class
	AttackPower float64
	Health      float64
	MaxHealth   float64
}

type DamageContext struct {
	Attacker Combatant
	Target   Combatant
	Distance float64
}

// DefaultRules: damage equals attack power, regen restores 1% of maximum
// health (at least 1), and level n needs 100*n*n experience.
type DefaultRules struct{}

func (DefaultRules) CalcDamage(ctx DamageContext) float64 {
	return max(ctx.Attacker.AttackPower, 0)
}

func (DefaultRules) RegenAmount(_ int, _ component.Class, maximum float64) float64 {
	return max(maximum*0.01, 1)
}

func (DefaultRules) ExpForLevel(level int) int64 {
	if level < 1 {
		level = 1
	}
	return 100 * int64(level) * int64(level)
}

var (
	_ Rules = DefaultRules{}
	_ Rules = (*Engine)(nil)
)

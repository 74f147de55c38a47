package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/whale2d/internal/component"
)

// scriptDirs are loaded in order after the top-level directory, so later
// directories can override functions defined earlier.
var scriptDirs = []string{"core", "combat", "character"}

// Engine wraps a single gopher-lua VM for gameplay rule evaluation.
// Calls are serialized; systems running in parallel may share one Engine.
// Every rule falls back to DefaultRules when its Lua function is missing
// or fails.
type Engine struct {
	mu       sync.Mutex
	vm       *lua.LState
	log      *zap.Logger
	fallback DefaultRules
	loaded   []string
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	classes := vm.NewTable()
	for _, c := range []component.Class{component.ClassWarrior, component.ClassRanger, component.ClassMage, component.ClassRogue} {
		classes.RawSetString(c.String(), lua.LNumber(c))
	}
	vm.SetGlobal("CLASS", classes)

	e := &Engine{vm: vm, log: log}

	dirs := []string{scriptsDir}
	for _, sub := range scriptDirs {
		dirs = append(dirs, filepath.Join(scriptsDir, sub))
	}
	for _, dir := range dirs {
		if err := e.loadDir(dir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory, in name order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.loaded = append(e.loaded, path)
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Scripts returns the loaded script paths in load order.
func (e *Engine) Scripts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.loaded...)
}

// Has reports whether a global Lua function with the given name exists.
func (e *Engine) Has(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// call invokes a global Lua function and returns its single result. ok is
// false when the function is missing or raised an error. Must hold mu.
func (e *Engine) call(name string, args ...lua.LValue) (lua.LValue, bool) {
	fn, isFn := e.vm.GetGlobal(name).(*lua.LFunction)
	if !isFn {
		return lua.LNil, false
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return lua.LNil, false
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return result, true
}

func combatantTable(vm *lua.LState, c Combatant) *lua.LTable {
	t := vm.NewTable()
	t.RawSetString("level", lua.LNumber(c.Level))
	t.RawSetString("class", lua.LNumber(c.Class))
	t.RawSetString("class_name", lua.LString(c.Class.String()))
	t.RawSetString("attack_power", lua.LNumber(c.AttackPower))
	t.RawSetString("hp", lua.LNumber(c.Health))
	t.RawSetString("max_hp", lua.LNumber(c.MaxHealth))
	return t
}

// CalcDamage calls Lua calc_damage(ctx). The script may return a number or
// a table with a "damage" field.
func (e *Engine) CalcDamage(ctx DamageContext) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.vm.NewTable()
	t.RawSetString("attacker", combatantTable(e.vm, ctx.Attacker))
	t.RawSetString("target", combatantTable(e.vm, ctx.Target))
	t.RawSetString("distance", lua.LNumber(ctx.Distance))

	result, ok := e.call("calc_damage", t)
	if !ok {
		return e.fallback.CalcDamage(ctx)
	}
	switch v := result.(type) {
	case lua.LNumber:
		return max(float64(v), 0)
	case *lua.LTable:
		return max(lNum(v, "damage"), 0)
	default:
		e.log.Error("lua calc_damage returned unexpected type", zap.String("type", result.Type().String()))
		return e.fallback.CalcDamage(ctx)
	}
}

// RegenAmount calls Lua regen_amount(level, class, maximum).
func (e *Engine) RegenAmount(level int, class component.Class, maximum float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	result, ok := e.call("regen_amount", lua.LNumber(level), lua.LNumber(class), lua.LNumber(maximum))
	n, isNum := result.(lua.LNumber)
	if !ok || !isNum {
		return e.fallback.RegenAmount(level, class, maximum)
	}
	return max(float64(n), 0)
}

// ExpForLevel calls Lua exp_for_level(level): the experience needed to go
// from level to level+1.
func (e *Engine) ExpForLevel(level int) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	result, ok := e.call("exp_for_level", lua.LNumber(level))
	n, isNum := result.(lua.LNumber)
	if !ok || !isNum || n <= 0 {
		return e.fallback.ExpForLevel(level)
	}
	return int64(n)
}

// lNum reads a number field from a Lua table.
func lNum(t *lua.LTable, key string) float64 {
	return float64(lua.LVAsNumber(t.RawGetString(key)))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vm.Close()
}

package system

import (
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/abilities/ecs"
	"github.com/milk9111/abilities/ecs/component"
	"github.com/milk9111/abilities/ecs/resource"
	"github.com/milk9111/abilities/prefabs"
	"github.com/rotisserie/eris"
)

// ScriptGateSystem evaluates tengo gate scripts for owned abilities. Scripts
// see the ability name, the tick number, its cooldown state and the owning
// unit's resource pools; they clear usability by setting `usable = false`.
// A script that fails to load or run gates its ability.
type ScriptGateSystem struct {
	registry *resource.Registry
	load     func(name string) ([]byte, error)
	cache    map[string]*gateScript
}

type gateScript struct {
	compiled *tengo.Compiled
	err      error
}

func NewScriptGateSystem(registry *resource.Registry) *ScriptGateSystem {
	if registry == nil {
		registry = resource.DefaultRegistry()
	}
	return &ScriptGateSystem{
		registry: registry,
		load:     prefabs.LoadScript,
		cache:    map[string]*gateScript{},
	}
}

// WithLoader replaces the script loader, which defaults to prefabs.LoadScript.
func (s *ScriptGateSystem) WithLoader(load func(name string) ([]byte, error)) *ScriptGateSystem {
	if load != nil {
		s.load = load
	}
	return s
}

// Invalidate drops cached compilations so edited scripts are reloaded.
func (s *ScriptGateSystem) Invalidate() {
	s.cache = map[string]*gateScript{}
}

func (s *ScriptGateSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.AbilitiesComponent.Kind(), func(unit ecs.Entity, abilities *component.Abilities) {
		var pools map[string]any
		for _, owned := range abilities.List() {
			ability := ecs.Entity(owned)
			gate, ok := ecs.Get(w, ability, component.ScriptGateComponent.Kind())
			if !ok {
				continue
			}
			usable := ecs.MustGet(w, ability, component.UsableComponent.Kind())
			if pools == nil {
				pools = s.unitResources(w, unit)
			}

			allowed, err := s.evaluate(w, ability, gate, pools)
			if err != nil {
				w.Logger().Error().
					Err(err).
					Uint64("unit", uint64(unit)).
					Uint64("ability", owned).
					Str("script", gate.Path).
					Msg("script gate failed")
			}
			if !allowed {
				usable.Clear()
			}
		}
	})
}

func (s *ScriptGateSystem) evaluate(w *ecs.World, ability ecs.Entity, gate *component.ScriptGate, pools map[string]any) (bool, error) {
	script := s.script(gate)
	if script.err != nil {
		return false, script.err
	}

	name := ""
	if def, ok := ecs.Get(w, ability, component.AbilityComponent.Kind()); ok {
		name = def.Name
	}
	charges, remaining := 0, 0.0
	if cd, ok := ecs.Get(w, ability, component.CooldownComponent.Kind()); ok {
		charges = cd.Charges
		remaining = cd.Remaining()
	}

	c := script.compiled
	for varName, value := range map[string]any{
		"ability":            name,
		"tick":               int64(w.Tick()),
		"charges":            charges,
		"cooldown_remaining": remaining,
		"resources":          pools,
		"usable":             true,
	} {
		if err := c.Set(varName, value); err != nil {
			return false, eris.Wrapf(err, "set %s", varName)
		}
	}
	if err := c.Run(); err != nil {
		return false, eris.Wrap(err, "run gate script")
	}
	return c.Get("usable").Bool(), nil
}

func (s *ScriptGateSystem) script(gate *component.ScriptGate) *gateScript {
	key := gate.Path
	if gate.Source != "" {
		key = "inline:" + gate.Source
	}
	if cached, ok := s.cache[key]; ok {
		return cached
	}

	compiled, err := s.compile(gate)
	out := &gateScript{compiled: compiled, err: err}
	s.cache[key] = out
	return out
}

func (s *ScriptGateSystem) compile(gate *component.ScriptGate) (*tengo.Compiled, error) {
	src := []byte(gate.Source)
	if strings.TrimSpace(gate.Source) == "" {
		if strings.TrimSpace(gate.Path) == "" {
			return nil, eris.New("script gate has neither path nor source")
		}
		data, err := s.load(gate.Path)
		if err != nil {
			return nil, eris.Wrapf(err, "load %s", gate.Path)
		}
		src = data
	}

	script := tengo.NewScript(src)
	_ = script.Add("ability", "")
	_ = script.Add("tick", 0)
	_ = script.Add("charges", 0)
	_ = script.Add("cooldown_remaining", 0.0)
	_ = script.Add("resources", map[string]any{})
	_ = script.Add("usable", true)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, eris.Wrapf(err, "compile %s", gate.Path)
	}
	return compiled, nil
}

func (s *ScriptGateSystem) unitResources(w *ecs.World, unit ecs.Entity) map[string]any {
	pools := map[string]any{}
	for _, name := range s.registry.Names() {
		binding, err := s.registry.Lookup(name)
		if err != nil {
			continue
		}
		if current, ok := binding.Current(w, unit); ok {
			pools[name] = current
		}
	}
	return pools
}

package entity

import (
	"sort"
	"strings"
	"time"

	"github.com/milk9111/abilities/ecs"
	"github.com/milk9111/abilities/ecs/component"
	"github.com/milk9111/abilities/ecs/resource"
	"github.com/milk9111/abilities/prefabs"
	"github.com/rotisserie/eris"
)

type entityPrefabSpec = prefabs.EntityBuildSpec

type buildContext struct {
	PrefabPath string
	Registry   *resource.Registry
	// built collects ability entities created while building a unit so a
	// failed build can destroy them again.
	built []ecs.Entity
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var abilityComponentRegistry = map[string]componentBuildFn{
	"cooldown":    addCooldown,
	"costs":       addCosts,
	"disabled":    addDisabled,
	"script_gate": addScriptGate,
}

var abilityComponentBuildOrder = []string{
	"cooldown",
	"costs",
	"disabled",
	"script_gate",
}

var unitComponentRegistry = map[string]componentBuildFn{
	"resources":        addResources,
	"input_controlled": addInputControlled,
	"abilities":        addAbilities,
}

var unitComponentBuildOrder = []string{
	"resources",
	"input_controlled",
	"abilities",
}

// BuildEntity builds a unit from a prefab under prefabs/units. Abilities named
// by the unit's roster are built as separate entities.
func BuildEntity(w *ecs.World, prefabPath string, registry *resource.Registry) (ecs.Entity, error) {
	if w == nil {
		return 0, eris.New("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, eris.Wrapf(err, "build entity: load %q", prefabPath)
	}
	if len(spec.Components) == 0 {
		return 0, eris.Errorf("build entity: prefab %q does not define components", prefabPath)
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: prefabPath, Registry: registryOrDefault(registry)}
	if err := buildComponents(w, e, spec, ctx, unitComponentRegistry, unitComponentBuildOrder); err != nil {
		for _, ability := range ctx.built {
			ecs.DestroyEntity(w, ability)
		}
		ecs.DestroyEntity(w, e)
		return 0, err
	}

	w.Logger().Debug().
		Str("prefab", prefabPath).
		Str("name", spec.Name).
		Object("entity", e).
		Strs("components", ecs.ComponentNames(w, e)).
		Int("abilities", len(ctx.built)).
		Msg("unit built")
	return e, nil
}

// BuildAbility builds the ability definition called name. Every ability gets
// an Ability tag and a Usable flag on top of its prefab components.
func BuildAbility(w *ecs.World, name string, registry *resource.Registry) (ecs.Entity, error) {
	if w == nil {
		return 0, eris.New("build ability: world is nil")
	}

	spec, err := prefabs.LoadAbilitySpec(name)
	if err != nil {
		return 0, eris.Wrapf(err, "build ability: load %q", name)
	}

	e := ecs.CreateEntity(w)
	if err := initAbility(w, e, spec, registryOrDefault(registry)); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, err
	}
	return e, nil
}

func initAbility(w *ecs.World, e ecs.Entity, spec entityPrefabSpec, registry *resource.Registry) error {
	if err := ecs.Add(w, e, component.AbilityComponent.Kind(), &component.Ability{Name: spec.Name}); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.UsableComponent.Kind(), &component.Usable{}); err != nil {
		return err
	}
	ctx := &buildContext{PrefabPath: prefabs.AbilityPath(spec.Name), Registry: registry}
	return buildComponents(w, e, spec, ctx, abilityComponentRegistry, abilityComponentBuildOrder)
}

func buildComponents(w *ecs.World, e ecs.Entity, spec entityPrefabSpec, ctx *buildContext, registry map[string]componentBuildFn, order []string) error {
	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}

	for _, name := range order {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := registry[name](w, e, raw, ctx); err != nil {
			return eris.Wrapf(err, "build entity: %q: add %q", ctx.PrefabPath, name)
		}
		delete(remaining, name)
	}

	if len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		return eris.Errorf("build entity: %q: no builder for components %s", ctx.PrefabPath, strings.Join(names, ", "))
	}
	return nil
}

// DestroyUnit destroys a unit together with the abilities on its roster.
func DestroyUnit(w *ecs.World, unit ecs.Entity) bool {
	if abilities, ok := ecs.Get(w, unit, component.AbilitiesComponent.Kind()); ok {
		for _, owned := range abilities.List() {
			ecs.DestroyEntity(w, ecs.Entity(owned))
		}
	}
	return ecs.DestroyEntity(w, unit)
}

// ApplyAbilitySpec reloads the ability definition called name and replaces the
// gating components of every ability entity built from it. Cooldown progress
// carries over, limited to the new charge count. It returns the number of
// entities updated.
func ApplyAbilitySpec(w *ecs.World, name string, registry *resource.Registry) (int, error) {
	if w == nil {
		return 0, eris.New("apply ability spec: world is nil")
	}
	registry = registryOrDefault(registry)

	spec, err := prefabs.LoadAbilitySpec(name)
	if err != nil {
		return 0, eris.Wrapf(err, "apply ability spec: load %q", name)
	}

	// Build once on a scratch entity so a bad spec leaves every ability as it was.
	scratch := ecs.CreateEntity(w)
	err = buildComponents(w, scratch, spec, &buildContext{PrefabPath: prefabs.AbilityPath(spec.Name), Registry: registry}, abilityComponentRegistry, abilityComponentBuildOrder)
	ecs.DestroyEntity(w, scratch)
	if err != nil {
		return 0, eris.Wrapf(err, "apply ability spec: %q", name)
	}

	var targets []ecs.Entity
	ecs.ForEach(w, component.AbilityComponent.Kind(), func(e ecs.Entity, def *component.Ability) {
		if def.Name == spec.Name {
			targets = append(targets, e)
		}
	})

	for _, e := range targets {
		previous, hadCooldown := ecs.Get(w, e, component.CooldownComponent.Kind())
		var kept component.Cooldown
		if hadCooldown {
			kept = *previous
		}

		ecs.Remove(w, e, component.CooldownComponent.Kind())
		ecs.Remove(w, e, component.DisabledComponent.Kind())
		ecs.Remove(w, e, component.ScriptGateComponent.Kind())
		for _, kind := range registry.Names() {
			if binding, err := registry.Lookup(kind); err == nil {
				binding.RemoveCost(w, e)
			}
		}

		ctx := &buildContext{PrefabPath: prefabs.AbilityPath(spec.Name), Registry: registry}
		if err := buildComponents(w, e, spec, ctx, abilityComponentRegistry, abilityComponentBuildOrder); err != nil {
			return 0, err
		}

		if cd, ok := ecs.Get(w, e, component.CooldownComponent.Kind()); ok && hadCooldown {
			cd.Charges = min(kept.Charges, cd.MaxCharges)
			if !cd.Full() {
				cd.Elapsed = min(kept.Elapsed, cd.Duration)
			}
		}
	}

	w.Logger().Info().
		Str("ability", spec.Name).
		Int("entities", len(targets)).
		Msg("ability spec applied")
	return len(targets), nil
}

func registryOrDefault(registry *resource.Registry) *resource.Registry {
	if registry == nil {
		return resource.DefaultRegistry()
	}
	return registry
}

type cooldownSpec = prefabs.CooldownComponentSpec

func addCooldown(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[cooldownSpec](raw)
	if err != nil {
		return eris.Wrap(err, "decode cooldown spec")
	}
	if spec.Seconds < 0 {
		return eris.Errorf("cooldown seconds %v is negative", spec.Seconds)
	}
	d := time.Duration(spec.Seconds * float64(time.Second))
	return ecs.Add(w, e, component.CooldownComponent.Kind(), component.NewCooldownWithCharges(d, spec.Charges))
}

type costsSpec = prefabs.CostsComponentSpec

func addCosts(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[costsSpec](raw)
	if err != nil {
		return eris.Wrap(err, "decode costs spec")
	}
	for _, name := range sortedKeys(spec) {
		if spec[name] < 0 {
			return eris.Errorf("%s cost %v is negative", name, spec[name])
		}
		binding, err := ctx.Registry.Lookup(name)
		if err != nil {
			return err
		}
		if err := binding.AddCost(w, e, spec[name]); err != nil {
			return err
		}
	}
	return nil
}

type disabledSpec = prefabs.DisabledComponentSpec

func addDisabled(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[disabledSpec](raw)
	if err != nil {
		return eris.Wrap(err, "decode disabled spec")
	}
	if spec.Disabled != nil && !*spec.Disabled {
		return nil
	}
	return ecs.Add(w, e, component.DisabledComponent.Kind(), &component.Disabled{})
}

type scriptGateSpec = prefabs.ScriptGateComponentSpec

func addScriptGate(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[scriptGateSpec](raw)
	if err != nil {
		return eris.Wrap(err, "decode script_gate spec")
	}
	if strings.TrimSpace(spec.Script) == "" && strings.TrimSpace(spec.Source) == "" {
		return eris.New("script_gate needs a script or source")
	}
	return ecs.Add(w, e, component.ScriptGateComponent.Kind(), &component.ScriptGate{
		Path:   spec.Script,
		Source: spec.Source,
	})
}

type resourcesSpec = prefabs.ResourcesComponentSpec

func addResources(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[resourcesSpec](raw)
	if err != nil {
		return eris.Wrap(err, "decode resources spec")
	}
	for _, name := range sortedKeys(spec) {
		pool := spec[name]
		binding, err := ctx.Registry.Lookup(name)
		if err != nil {
			return err
		}
		current := pool.Max
		if pool.Current != nil {
			current = *pool.Current
		}
		if err := binding.AddPool(w, e, current, pool.Max, pool.Regen); err != nil {
			return err
		}
	}
	return nil
}

func addInputControlled(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	if err := ecs.Add(w, e, component.InputControlledComponent.Kind(), &component.InputControlled{}); err != nil {
		return err
	}
	if ecs.Has(w, e, component.ActionStateComponent.Kind()) {
		return nil
	}
	return ecs.Add(w, e, component.ActionStateComponent.Kind(), &component.ActionState{})
}

type abilitiesSpec = prefabs.AbilitiesComponentSpec

func addAbilities(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[abilitiesSpec](raw)
	if err != nil {
		return eris.Wrap(err, "decode abilities spec")
	}

	byName := make(map[string]uint64, len(spec.List))
	list := make([]uint64, 0, len(spec.List))
	for _, name := range spec.List {
		if _, dup := byName[name]; dup {
			return eris.Errorf("ability %q listed twice", name)
		}
		ability, err := BuildAbility(w, name, ctx.Registry)
		if err != nil {
			return err
		}
		ctx.built = append(ctx.built, ability)
		byName[name] = uint64(ability)
		list = append(list, uint64(ability))
	}

	roster := component.NewAbilities(list)
	if len(spec.Bindings) > 0 {
		bindings := make(map[component.InputAction]uint64, len(spec.Bindings))
		for action, name := range spec.Bindings {
			ability, ok := byName[name]
			if !ok {
				return eris.Errorf("binding %q names ability %q outside the list", action, name)
			}
			bindings[component.InputAction(action)] = ability
		}

		resolver, err := component.NewPriorityResolver(priorityOrder(spec.Priority, bindings), bindings)
		if err != nil {
			return err
		}
		roster.SetResolver(resolver)

		if err := addInputControlled(w, e, nil, ctx); err != nil {
			return err
		}
	}

	return ecs.Add(w, e, component.AbilitiesComponent.Kind(), roster)
}

// priorityOrder returns the configured order followed by the bound actions it
// leaves out, in the default action order and then custom actions sorted by
// name.
func priorityOrder(priority []string, bindings map[component.InputAction]uint64) []component.InputAction {
	order := make([]component.InputAction, 0, len(bindings))
	seen := make(map[component.InputAction]bool, len(bindings))
	for _, action := range priority {
		a := component.InputAction(action)
		if !seen[a] {
			order = append(order, a)
			seen[a] = true
		}
	}

	for _, action := range component.AbilityActions {
		if seen[action] {
			continue
		}
		if _, ok := bindings[action]; ok {
			order = append(order, action)
			seen[action] = true
		}
	}
	var extra []string
	for action := range bindings {
		if !seen[action] {
			extra = append(extra, string(action))
		}
	}
	sort.Strings(extra)
	for _, action := range extra {
		order = append(order, component.InputAction(action))
	}
	return order
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

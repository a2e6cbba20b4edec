package system

import (
	"testing"
	"time"

	"github.com/milk9111/abilities/ecs"
	"github.com/milk9111/abilities/ecs/component"
)

const testTick = 100 * time.Millisecond

type systemFunc func(w *ecs.World)

func (f systemFunc) Update(w *ecs.World) { f(w) }

func mustAdd[T any](t *testing.T, w *ecs.World, e ecs.Entity, kind component.ComponentKind[T], v *T) {
	t.Helper()
	if err := ecs.Add(w, e, kind, v); err != nil {
		t.Fatal(err)
	}
}

// newAbility builds an ability entity with an optional cooldown.
func newAbility(t *testing.T, w *ecs.World, name string, cd *component.Cooldown) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	mustAdd(t, w, e, component.AbilityComponent.Kind(), &component.Ability{Name: name})
	mustAdd(t, w, e, component.UsableComponent.Kind(), &component.Usable{})
	if cd != nil {
		mustAdd(t, w, e, component.CooldownComponent.Kind(), cd)
	}
	return e
}

// newUnit binds abilities to the default actions in order and gives the unit
// an action state.
func newUnit(t *testing.T, w *ecs.World, abilities ...ecs.Entity) (ecs.Entity, *component.Abilities) {
	t.Helper()
	bindings := make(map[component.InputAction]uint64, len(abilities))
	order := make([]component.InputAction, 0, len(abilities))
	for i, a := range abilities {
		action := component.AbilityActions[i]
		bindings[action] = uint64(a)
		order = append(order, action)
	}
	resolver, err := component.NewPriorityResolver(order, bindings)
	if err != nil {
		t.Fatal(err)
	}

	unit := ecs.CreateEntity(w)
	roster := component.NewAbilitiesFromResolver(resolver)
	mustAdd(t, w, unit, component.AbilitiesComponent.Kind(), roster)
	mustAdd(t, w, unit, component.ActionStateComponent.Kind(), &component.ActionState{})
	return unit, roster
}

func newPipeline(opts ...Option) (*ecs.World, *ecs.Scheduler) {
	w := ecs.NewWorld()
	s := ecs.NewScheduler()
	AddAbilitySystems(s, opts...)
	AddDefaultResourcePools(s)
	return w, s
}

func press(t *testing.T, w *ecs.World, unit ecs.Entity, actions ...component.InputAction) {
	t.Helper()
	state := ecs.MustGet(w, unit, component.ActionStateComponent.Kind())
	for _, a := range actions {
		state.Release(a)
		state.Press(a)
	}
}

func usable(w *ecs.World, ability ecs.Entity) bool {
	return ecs.MustGet(w, ability, component.UsableComponent.Kind()).Value()
}

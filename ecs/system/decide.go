package system

import (
	"github.com/milk9111/abilities/ecs"
	"github.com/milk9111/abilities/ecs/component"
)

// AbilityDecideSystem asks each idle unit's resolver for an ability. A chosen
// ability enters JustStarted, consumes a cooldown charge and is announced on
// the world event queue.
type AbilityDecideSystem struct{}

func NewAbilityDecideSystem() *AbilityDecideSystem {
	return &AbilityDecideSystem{}
}

func (s *AbilityDecideSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.AbilitiesComponent.Kind(), func(unit ecs.Entity, abilities *component.Abilities) {
		if !abilities.Active().None() {
			return
		}

		input, _ := ecs.Get(w, unit, component.ActionStateComponent.Kind())
		chosen, ok := abilities.Resolve(input)
		if !ok || !abilities.Start(chosen) {
			return
		}

		ability := ecs.Entity(chosen)
		if cd, ok := ecs.Get(w, ability, component.CooldownComponent.Kind()); ok {
			cd.Start()
		}

		w.Events().Push(ecs.Event{
			Type: ecs.EventAbilityStarted,
			Data: ecs.AbilityStarted{Unit: unit, Ability: ability, Tick: w.Tick()},
		})

		name := ""
		if def, ok := ecs.Get(w, ability, component.AbilityComponent.Kind()); ok {
			name = def.Name
		}
		w.Logger().Debug().
			Object("unit", unit).
			Object("ability", ability).
			Str("name", name).
			Uint64("tick", w.Tick()).
			Msg("ability started")
	})
}

// ActiveAbilityCleanupSystem moves JustStarted abilities to Active at the end
// of the tick, so JustStarted is observed for exactly one tick.
type ActiveAbilityCleanupSystem struct{}

func NewActiveAbilityCleanupSystem() *ActiveAbilityCleanupSystem {
	return &ActiveAbilityCleanupSystem{}
}

func (s *ActiveAbilityCleanupSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.AbilitiesComponent.Kind(), func(_ ecs.Entity, abilities *component.Abilities) {
		abilities.Settle()
	})
}

// AbilityCompletionSystem returns Active rosters to Idle. It models instant
// abilities: registered before the cleanup decay, an ability started on tick N
// is Active after tick N and Idle after tick N+1. Hosts with duration-based
// abilities leave it out and call Abilities.Complete themselves.
type AbilityCompletionSystem struct{}

func NewAbilityCompletionSystem() *AbilityCompletionSystem {
	return &AbilityCompletionSystem{}
}

func (s *AbilityCompletionSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.AbilitiesComponent.Kind(), func(unit ecs.Entity, abilities *component.Abilities) {
		active := abilities.Active()
		if active.State != component.AbilityActive {
			return
		}
		abilities.Complete()
		w.Logger().Trace().
			Uint64("unit", uint64(unit)).
			Uint64("ability", active.Entity).
			Msg("ability completed")
	})
}

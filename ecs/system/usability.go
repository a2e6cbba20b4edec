package system

import (
	"github.com/milk9111/abilities/ecs"
	"github.com/milk9111/abilities/ecs/component"
)

// UsableResetSystem marks every ability usable at the start of a tick. Gating
// systems in the check phase then clear the flag.
type UsableResetSystem struct{}

func NewUsableResetSystem() *UsableResetSystem {
	return &UsableResetSystem{}
}

func (s *UsableResetSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.UsableComponent.Kind(), func(_ ecs.Entity, usable *component.Usable) {
		usable.Reset()
	})
}

// DisabledCheckSystem clears usability of abilities carrying the Disabled marker.
type DisabledCheckSystem struct{}

func NewDisabledCheckSystem() *DisabledCheckSystem {
	return &DisabledCheckSystem{}
}

func (s *DisabledCheckSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach2(w, component.DisabledComponent.Kind(), component.UsableComponent.Kind(), func(_ ecs.Entity, _ *component.Disabled, usable *component.Usable) {
		usable.Clear()
	})
}

// UsabilitySyncSystem copies each owned ability's Usable flag into the unit's
// roster so resolvers read one consistent snapshot per tick.
type UsabilitySyncSystem struct{}

func NewUsabilitySyncSystem() *UsabilitySyncSystem {
	return &UsabilitySyncSystem{}
}

func (s *UsabilitySyncSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.AbilitiesComponent.Kind(), func(_ ecs.Entity, abilities *component.Abilities) {
		for _, ability := range abilities.List() {
			usable := ecs.MustGet(w, ecs.Entity(ability), component.UsableComponent.Kind())
			abilities.SetUsable(ability, usable.Value())
		}
	})
}

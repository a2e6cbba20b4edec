package system

import (
	"github.com/milk9111/abilities/ecs"
	"github.com/milk9111/abilities/ecs/component"
)

// CooldownTickSystem advances cooldowns that are still recharging. Full
// cooldowns are left untouched so their timers never run past completion.
type CooldownTickSystem struct{}

func NewCooldownTickSystem() *CooldownTickSystem {
	return &CooldownTickSystem{}
}

func (s *CooldownTickSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	dt := w.Delta()
	ecs.ForEach(w, component.CooldownComponent.Kind(), func(_ ecs.Entity, cd *component.Cooldown) {
		if cd.Full() {
			return
		}
		cd.Tick(dt)
	})
}

// CooldownCheckSystem clears usability of abilities without an available charge.
type CooldownCheckSystem struct{}

func NewCooldownCheckSystem() *CooldownCheckSystem {
	return &CooldownCheckSystem{}
}

func (s *CooldownCheckSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach2(w, component.CooldownComponent.Kind(), component.UsableComponent.Kind(), func(_ ecs.Entity, cd *component.Cooldown, usable *component.Usable) {
		if !cd.Finished() {
			usable.Clear()
		}
	})
}

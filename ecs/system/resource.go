package system

import (
	"github.com/milk9111/abilities/ecs"
	"github.com/milk9111/abilities/ecs/component"
	"github.com/milk9111/abilities/ecs/resource"
)

// ResourceRegenSystem regenerates every pool of one kind by RegenRate * dt.
type ResourceRegenSystem[R resource.Amount] struct {
	kind *resource.Kind[R]
}

func NewResourceRegenSystem[R resource.Amount](kind *resource.Kind[R]) *ResourceRegenSystem[R] {
	return &ResourceRegenSystem[R]{kind: kind}
}

func (s *ResourceRegenSystem[R]) Update(w *ecs.World) {
	if w == nil || s.kind == nil {
		return
	}

	dt := w.Delta()
	ecs.ForEach(w, s.kind.PoolComponent.Kind(), func(_ ecs.Entity, pool *resource.Pool[R]) {
		pool.Regen(dt)
	})
}

// ResourceCheckSystem clears usability of owned abilities whose cost of this
// kind exceeds the unit's pool. Abilities without a cost of this kind are not
// affected; being affordable never makes an ability usable.
type ResourceCheckSystem[R resource.Amount] struct {
	kind *resource.Kind[R]
}

func NewResourceCheckSystem[R resource.Amount](kind *resource.Kind[R]) *ResourceCheckSystem[R] {
	return &ResourceCheckSystem[R]{kind: kind}
}

func (s *ResourceCheckSystem[R]) Update(w *ecs.World) {
	if w == nil || s.kind == nil {
		return
	}

	ecs.ForEach2(w, component.AbilitiesComponent.Kind(), s.kind.PoolComponent.Kind(), func(_ ecs.Entity, abilities *component.Abilities, pool *resource.Pool[R]) {
		for _, owned := range abilities.List() {
			ability := ecs.Entity(owned)
			cost, ok := ecs.Get(w, ability, s.kind.CostComponent.Kind())
			if !ok {
				continue
			}
			if pool.Less(cost.Amount) {
				ecs.MustGet(w, ability, component.UsableComponent.Kind()).Clear()
			}
		}
	})
}

// ResourceSpendSystem charges the cost of an ability in the tick it starts.
// JustStarted lasts a single tick, so each activation pays once.
type ResourceSpendSystem[R resource.Amount] struct {
	kind *resource.Kind[R]
}

func NewResourceSpendSystem[R resource.Amount](kind *resource.Kind[R]) *ResourceSpendSystem[R] {
	return &ResourceSpendSystem[R]{kind: kind}
}

func (s *ResourceSpendSystem[R]) Update(w *ecs.World) {
	if w == nil || s.kind == nil {
		return
	}

	ecs.ForEach2(w, component.AbilitiesComponent.Kind(), s.kind.PoolComponent.Kind(), func(unit ecs.Entity, abilities *component.Abilities, pool *resource.Pool[R]) {
		active := abilities.Active()
		if active.State != component.AbilityJustStarted {
			return
		}
		cost, ok := ecs.Get(w, ecs.Entity(active.Entity), s.kind.CostComponent.Kind())
		if !ok {
			return
		}
		pool.Spend(cost.Amount)
		w.Logger().Debug().
			Uint64("unit", uint64(unit)).
			Str("resource", s.kind.Name).
			Float64("spent", s.kind.ToFloat(cost.Amount)).
			Float64("remaining", s.kind.ToFloat(pool.Current())).
			Msg("resource spent")
	})
}

// AddResourcePool wires the regen, check and spend systems of one kind into
// their phases. Call it once per kind.
func AddResourcePool[R resource.Amount](s *ecs.Scheduler, kind *resource.Kind[R]) {
	if s == nil || kind == nil {
		return
	}
	s.Add(ecs.PhaseMaintain, NewResourceRegenSystem(kind))
	s.Add(ecs.PhaseCheck, NewResourceCheckSystem(kind))
	s.Add(ecs.PhaseCommit, NewResourceSpendSystem(kind))
}

// AddDefaultResourcePools registers mana, energy and rage.
func AddDefaultResourcePools(s *ecs.Scheduler) {
	AddResourcePool(s, resource.ManaKind)
	AddResourcePool(s, resource.EnergyKind)
	AddResourcePool(s, resource.RageKind)
}

package resource

import (
	"errors"
	"sort"

	"github.com/milk9111/abilities/ecs"
	"github.com/rotisserie/eris"
)

var (
	ErrUnknownKind   = errors.New("resource: unknown kind")
	ErrDuplicateKind = errors.New("resource: kind already registered")
)

// Binding erases a kind's numeric type so prefab builders and scripts can
// address kinds by name.
type Binding interface {
	KindName() string
	AddPool(w *ecs.World, e ecs.Entity, current, max, regen float64) error
	AddCost(w *ecs.World, e ecs.Entity, amount float64) error
	RemoveCost(w *ecs.World, e ecs.Entity) bool
	Current(w *ecs.World, e ecs.Entity) (float64, bool)
	CostOf(w *ecs.World, e ecs.Entity) (float64, bool)
}

func (k *Kind[R]) KindName() string {
	return k.Name
}

// AddPool validates the pool in float space, then clamps max to the logical
// ceiling and regen to what the kind can represent before converting.
func (k *Kind[R]) AddPool(w *ecs.World, e ecs.Entity, current, limit, regen float64) error {
	zero, ceiling := k.ToFloat(k.Zero), k.ToFloat(k.LogicalMax)
	if current < zero || current > limit {
		return eris.Errorf("resource: %s pool current %v outside [%v, %v]", k.Name, current, zero, limit)
	}
	limit = min(limit, ceiling)
	current = min(current, limit)

	span := ceiling - zero
	lowest := -span
	if !k.signed() {
		lowest = 0
	}
	regen = min(max(regen, lowest), span)

	pool := k.NewPool(k.FromFloat(current), k.FromFloat(limit), k.FromFloat(regen))
	return ecs.Add(w, e, k.PoolComponent.Kind(), pool)
}

// AddCost rejects amounts outside [Zero, LogicalMax].
func (k *Kind[R]) AddCost(w *ecs.World, e ecs.Entity, amount float64) error {
	if amount < k.ToFloat(k.Zero) || amount > k.ToFloat(k.LogicalMax) {
		return eris.Errorf("resource: %s cost %v outside [%v, %v]", k.Name, amount, k.ToFloat(k.Zero), k.ToFloat(k.LogicalMax))
	}
	return ecs.Add(w, e, k.CostComponent.Kind(), &Cost[R]{Amount: k.FromFloat(amount)})
}

// signed reports whether the kind can hold values below Zero.
func (k *Kind[R]) signed() bool {
	var one R = 1
	return k.Zero-one < k.Zero
}

func (k *Kind[R]) RemoveCost(w *ecs.World, e ecs.Entity) bool {
	return ecs.Remove(w, e, k.CostComponent.Kind())
}

func (k *Kind[R]) Current(w *ecs.World, e ecs.Entity) (float64, bool) {
	pool, ok := ecs.Get(w, e, k.PoolComponent.Kind())
	if !ok {
		return 0, false
	}
	return k.ToFloat(pool.Current()), true
}

func (k *Kind[R]) CostOf(w *ecs.World, e ecs.Entity) (float64, bool) {
	cost, ok := ecs.Get(w, e, k.CostComponent.Kind())
	if !ok {
		return 0, false
	}
	return k.ToFloat(cost.Amount), true
}

// Registry maps kind names to bindings.
type Registry struct {
	kinds map[string]Binding
}

func NewRegistry(bindings ...Binding) (*Registry, error) {
	r := &Registry{kinds: make(map[string]Binding, len(bindings))}
	for _, b := range bindings {
		if err := r.Register(b); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry returns a registry holding mana, energy and rage.
func DefaultRegistry() *Registry {
	return &Registry{kinds: map[string]Binding{
		ManaKind.Name:   ManaKind,
		EnergyKind.Name: EnergyKind,
		RageKind.Name:   RageKind,
	}}
}

func (r *Registry) Register(b Binding) error {
	if b == nil {
		return eris.New("resource: nil binding")
	}
	if _, ok := r.kinds[b.KindName()]; ok {
		return eris.Wrapf(ErrDuplicateKind, "kind %q", b.KindName())
	}
	r.kinds[b.KindName()] = b
	return nil
}

func (r *Registry) Lookup(name string) (Binding, error) {
	if r != nil {
		if b, ok := r.kinds[name]; ok {
			return b, nil
		}
	}
	return nil, eris.Wrapf(ErrUnknownKind, "kind %q", name)
}

// Names returns the registered kind names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

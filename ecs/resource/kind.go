package resource

import (
	"github.com/milk9111/abilities/ecs/component"
	"golang.org/x/exp/constraints"
)

// Amount is the numeric type of a resource kind.
type Amount interface {
	constraints.Integer | constraints.Float
}

// Kind describes one resource type (mana, energy, rage). Every kind has its own
// pool and cost component handles, so each registered kind runs an independent
// set of systems.
type Kind[R Amount] struct {
	Name       string
	Zero       R
	LogicalMax R
	// FromFloat and ToFloat convert to and from the per-second unit used by
	// regeneration.
	FromFloat func(float64) R
	ToFloat   func(R) float64

	PoolComponent component.ComponentHandle[Pool[R]]
	CostComponent component.ComponentHandle[Cost[R]]
}

// NewKind creates a resource kind with plain numeric conversions.
func NewKind[R Amount](name string, zero, logicalMax R) *Kind[R] {
	return &Kind[R]{
		Name:          name,
		Zero:          zero,
		LogicalMax:    logicalMax,
		FromFloat:     func(f float64) R { return R(f) },
		ToFloat:       func(r R) float64 { return float64(r) },
		PoolComponent: component.NewComponent[Pool[R]](),
		CostComponent: component.NewComponent[Cost[R]](),
	}
}

// Cost is the amount of a resource an ability consumes when it starts.
type Cost[R Amount] struct {
	Amount R
}

type (
	Mana   float64
	Energy int32
	Rage   int32
)

var (
	ManaKind   = NewKind[Mana]("mana", 0, 10000)
	EnergyKind = NewKind[Energy]("energy", 0, 100)
	RageKind   = NewKind[Rage]("rage", 0, 100)
)

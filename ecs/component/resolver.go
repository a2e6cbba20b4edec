package component

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
)

var ErrUnboundAction = errors.New("resolver: action has no ability")

// InputResolver decides which ability, if any, a unit should start given the
// current input and the usability snapshot of its roster. Implementations must
// not modify usable.
type InputResolver interface {
	Resolve(input *ActionState, usable map[uint64]bool) (uint64, bool)
	Abilities() []uint64
}

// NoopResolver never picks an ability. Used for units driven by a decision
// system other than input.
type NoopResolver struct{}

func (NoopResolver) Resolve(*ActionState, map[uint64]bool) (uint64, bool) {
	return 0, false
}

func (NoopResolver) Abilities() []uint64 {
	return nil
}

// PriorityResolver maps each input action to one ability and scans actions in
// a fixed order. The first freshly pressed action whose ability is usable wins.
type PriorityResolver struct {
	order    []InputAction
	bindings map[InputAction]uint64
}

// NewPriorityResolver validates that every action in order is bound to an
// ability. An empty order defaults to AbilityActions.
func NewPriorityResolver(order []InputAction, bindings map[InputAction]uint64) (*PriorityResolver, error) {
	if len(order) == 0 {
		order = AbilityActions
	}
	r := &PriorityResolver{
		order:    make([]InputAction, 0, len(order)),
		bindings: make(map[InputAction]uint64, len(bindings)),
	}
	seen := make(map[InputAction]bool, len(order))
	for _, action := range order {
		if seen[action] {
			continue
		}
		seen[action] = true
		e, ok := bindings[action]
		if !ok || e == 0 {
			return nil, eris.Wrapf(ErrUnboundAction, "action %q", action)
		}
		r.order = append(r.order, action)
		r.bindings[action] = e
	}
	return r, nil
}

func (r *PriorityResolver) Resolve(input *ActionState, usable map[uint64]bool) (uint64, bool) {
	for _, action := range r.order {
		if !input.JustPressed(action) {
			continue
		}
		e, ok := r.bindings[action]
		if !ok {
			panic(fmt.Sprintf("resolver: action %q has no ability", action))
		}
		ready, ok := usable[e]
		if !ok {
			panic(fmt.Sprintf("resolver: ability %d bound to %q has no usability entry", e, action))
		}
		if ready {
			return e, true
		}
	}
	return 0, false
}

// Abilities returns the bound abilities in priority order without duplicates.
func (r *PriorityResolver) Abilities() []uint64 {
	out := make([]uint64, 0, len(r.order))
	seen := make(map[uint64]bool, len(r.order))
	for _, action := range r.order {
		e := r.bindings[action]
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}

// Order returns the action priority order.
func (r *PriorityResolver) Order() []InputAction {
	out := make([]InputAction, len(r.order))
	copy(out, r.order)
	return out
}

// Binding returns the ability bound to action.
func (r *PriorityResolver) Binding(action InputAction) (uint64, bool) {
	e, ok := r.bindings[action]
	return e, ok
}

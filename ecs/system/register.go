package system

import (
	"github.com/milk9111/abilities/ecs"
	"github.com/milk9111/abilities/ecs/resource"
)

type options struct {
	input      *InputSystem
	scripts    *ScriptGateSystem
	registry   *resource.Registry
	completion bool
}

// Option configures AddAbilitySystems.
type Option func(*options)

// WithInput installs a keyboard input system in the input phase.
func WithInput(input *InputSystem) Option {
	return func(o *options) { o.input = input }
}

// WithScriptGates replaces the default script gate system.
func WithScriptGates(scripts *ScriptGateSystem) Option {
	return func(o *options) { o.scripts = scripts }
}

// WithRegistry sets the resource registry exposed to gate scripts.
func WithRegistry(registry *resource.Registry) Option {
	return func(o *options) { o.registry = registry }
}

// WithInstantCompletion returns Active abilities to Idle one tick after they
// start. Leave it out when effect systems signal completion.
func WithInstantCompletion() Option {
	return func(o *options) { o.completion = true }
}

// AddAbilitySystems wires the ability pipeline into s. Resource kinds are
// registered separately with AddResourcePool.
func AddAbilitySystems(s *ecs.Scheduler, opts ...Option) {
	if s == nil {
		return
	}
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.scripts == nil {
		o.scripts = NewScriptGateSystem(o.registry)
	}

	if o.input != nil {
		s.Add(ecs.PhaseInput, o.input)
	}

	s.Add(ecs.PhaseMaintain, NewUsableResetSystem())
	s.Add(ecs.PhaseMaintain, NewCooldownTickSystem())

	s.Add(ecs.PhaseCheck, NewCooldownCheckSystem())
	s.Add(ecs.PhaseCheck, NewDisabledCheckSystem())
	s.Add(ecs.PhaseCheck, o.scripts)

	s.Add(ecs.PhaseSync, NewUsabilitySyncSystem())

	s.Add(ecs.PhaseDecide, NewAbilityDecideSystem())

	if o.completion {
		s.Add(ecs.PhaseCleanup, NewAbilityCompletionSystem())
	}
	s.Add(ecs.PhaseCleanup, NewActiveAbilityCleanupSystem())
	s.Add(ecs.PhaseCleanup, NewInputAdvanceSystem())
}

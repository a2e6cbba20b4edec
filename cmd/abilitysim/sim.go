package main

import (
	"path"
	"sort"
	"strings"
	"time"

	"github.com/milk9111/abilities/ecs"
	"github.com/milk9111/abilities/ecs/component"
	"github.com/milk9111/abilities/ecs/entity"
	"github.com/milk9111/abilities/ecs/resource"
	"github.com/milk9111/abilities/ecs/system"
	"github.com/milk9111/abilities/prefabs"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// simulation replays a timeline against a world running the full ability
// pipeline.
type simulation struct {
	world     *ecs.World
	scheduler *ecs.Scheduler
	registry  *resource.Registry
	scripts   *system.ScriptGateSystem
	units     map[string]ecs.Entity
	order     []string
	starts    *startLogSystem
}

func newSimulation(timeline prefabs.TimelineSpec, registry *resource.Registry, logger zerolog.Logger) (*simulation, error) {
	if registry == nil {
		registry = resource.DefaultRegistry()
	}

	w := ecs.NewWorld()
	w.SetLogger(logger)

	sim := &simulation{
		world:     w,
		scheduler: ecs.NewScheduler(),
		registry:  registry,
		scripts:   system.NewScriptGateSystem(registry),
		units:     make(map[string]ecs.Entity, len(timeline.Units)),
	}

	for _, unit := range timeline.Units {
		if unit.ID == "" {
			return nil, eris.Errorf("timeline %q: unit without id", timeline.Name)
		}
		if _, dup := sim.units[unit.ID]; dup {
			return nil, eris.Errorf("timeline %q: unit %q defined twice", timeline.Name, unit.ID)
		}
		e, err := entity.BuildEntity(w, unit.Prefab, registry)
		if err != nil {
			return nil, eris.Wrapf(err, "timeline %q: unit %q", timeline.Name, unit.ID)
		}
		sim.units[unit.ID] = e
		sim.order = append(sim.order, unit.ID)
	}

	inputs, err := newTimelineInputSystem(timeline.Inputs, sim.units)
	if err != nil {
		return nil, eris.Wrapf(err, "timeline %q", timeline.Name)
	}
	sim.starts = newStartLogSystem(sim.units)

	opts := []system.Option{system.WithScriptGates(sim.scripts), system.WithRegistry(registry)}
	if timeline.InstantAbilities {
		opts = append(opts, system.WithInstantCompletion())
	}
	sim.scheduler.Add(ecs.PhaseInput, inputs)
	system.AddAbilitySystems(sim.scheduler, opts...)
	system.AddDefaultResourcePools(sim.scheduler)
	sim.scheduler.Add(ecs.PhaseCommit, sim.starts)

	return sim, nil
}

func (s *simulation) step(dt time.Duration) {
	s.scheduler.Update(s.world, dt)
}

// reload applies an edited prefab or script by name. Unit and timeline edits
// only take effect on the next run.
func (s *simulation) reload(name string) error {
	log := s.world.Logger()
	switch {
	case prefabs.IsScript(name):
		s.scripts.Invalidate()
		log.Info().Str("script", name).Msg("gate scripts invalidated")
	case prefabs.IsAbilitySpec(name):
		ability := strings.TrimSuffix(path.Base(name), path.Ext(name))
		if _, err := entity.ApplyAbilitySpec(s.world, ability, s.registry); err != nil {
			return eris.Wrapf(err, "reload %s", name)
		}
	default:
		log.Info().Str("file", name).Msg("change ignored until restart")
	}
	return nil
}

// report logs the final state of every unit.
func (s *simulation) report() {
	log := s.world.Logger()
	for _, id := range s.order {
		unit := s.units[id]
		ev := log.Info().Str("unit", id).Uint64("tick", s.world.Tick())
		for _, kind := range s.registry.Names() {
			binding, err := s.registry.Lookup(kind)
			if err != nil {
				continue
			}
			if current, ok := binding.Current(s.world, unit); ok {
				ev = ev.Float64(kind, current)
			}
		}
		if abilities, ok := ecs.Get(s.world, unit, component.AbilitiesComponent.Kind()); ok {
			ev = ev.Str("state", abilities.Active().State.String())
		}
		ev.Interface("starts", s.starts.counts[unit]).Msg("unit summary")
	}
}

// timelineInputSystem presses and releases scripted actions on the tick they
// are scheduled for.
type timelineInputSystem struct {
	byTick map[uint64][]timelineInput
}

type timelineInput struct {
	unit    ecs.Entity
	press   []component.InputAction
	release []component.InputAction
}

func newTimelineInputSystem(specs []prefabs.TimelineInputSpec, units map[string]ecs.Entity) (*timelineInputSystem, error) {
	s := &timelineInputSystem{byTick: make(map[uint64][]timelineInput)}
	for _, spec := range specs {
		unit, ok := units[spec.Unit]
		if !ok {
			return nil, eris.Errorf("input on tick %d names unknown unit %q", spec.Tick, spec.Unit)
		}
		in := timelineInput{unit: unit}
		for _, a := range spec.Press {
			in.press = append(in.press, component.InputAction(a))
		}
		for _, a := range spec.Release {
			in.release = append(in.release, component.InputAction(a))
		}
		s.byTick[spec.Tick] = append(s.byTick[spec.Tick], in)
	}
	return s, nil
}

func (s *timelineInputSystem) Update(w *ecs.World) {
	for _, in := range s.byTick[w.Tick()] {
		state, ok := ecs.Get(w, in.unit, component.ActionStateComponent.Kind())
		if !ok {
			w.Logger().Warn().Uint64("unit", uint64(in.unit)).Msg("timeline input for unit without action state")
			continue
		}
		for _, a := range in.release {
			state.Release(a)
		}
		for _, a := range in.press {
			state.Press(a)
		}
	}
}

// startLogSystem logs AbilityStarted events and counts starts per ability.
type startLogSystem struct {
	names  map[ecs.Entity]string
	counts map[ecs.Entity]map[string]int
}

func newStartLogSystem(units map[string]ecs.Entity) *startLogSystem {
	s := &startLogSystem{
		names:  make(map[ecs.Entity]string, len(units)),
		counts: make(map[ecs.Entity]map[string]int, len(units)),
	}
	for id, e := range units {
		s.names[e] = id
	}
	return s
}

func (s *startLogSystem) Update(w *ecs.World) {
	for _, evt := range w.Events().Pending() {
		if evt.Type != ecs.EventAbilityStarted {
			continue
		}
		started, ok := evt.Data.(ecs.AbilityStarted)
		if !ok {
			continue
		}
		name := ""
		if def, ok := ecs.Get(w, started.Ability, component.AbilityComponent.Kind()); ok {
			name = def.Name
		}
		if s.counts[started.Unit] == nil {
			s.counts[started.Unit] = map[string]int{}
		}
		s.counts[started.Unit][name]++

		w.Logger().Info().
			Str("unit", s.names[started.Unit]).
			Str("ability", name).
			Uint64("tick", started.Tick).
			Msg("ability started")
	}
}

// started returns the ability names unit started, sorted, with repeats.
func (s *startLogSystem) started(unit ecs.Entity) []string {
	var out []string
	for name, n := range s.counts[unit] {
		for range n {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

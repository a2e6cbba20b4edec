package system

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/milk9111/abilities/ecs"
	"github.com/milk9111/abilities/ecs/component"
	"github.com/milk9111/abilities/ecs/resource"
	"github.com/rs/zerolog"
)

func TestUsableResetsEveryTick(t *testing.T) {
	w, s := newPipeline()
	ability := newAbility(t, w, "strike", nil)
	newUnit(t, w, ability)
	mustAdd(t, w, ability, component.DisabledComponent.Kind(), &component.Disabled{})

	var afterMaintain []bool
	s.Add(ecs.PhaseMaintain, systemFunc(func(w *ecs.World) {
		afterMaintain = append(afterMaintain, usable(w, ability))
	}))

	s.Update(w, testTick)
	if usable(w, ability) {
		t.Fatalf("disabled ability should be unusable")
	}

	ecs.Remove(w, ability, component.DisabledComponent.Kind())
	s.Update(w, testTick)
	if !usable(w, ability) {
		t.Fatalf("ability should be usable again once the gate is gone")
	}

	for i, v := range afterMaintain {
		if !v {
			t.Fatalf("tick %d: usable must be true after maintain", i+1)
		}
	}
}

func TestCheckPhaseIsOrderIndependent(t *testing.T) {
	type abilitySetup struct {
		name     string
		cooling  bool
		disabled bool
		cost     resource.Mana
		script   string
	}
	setups := []abilitySetup{
		{name: "cooling", cooling: true},
		{name: "disabled", disabled: true},
		{name: "expensive", cost: 10},
		{name: "scripted", script: "usable = false"},
		{name: "everything", cooling: true, disabled: true, cost: 10, script: "usable = false"},
		{name: "ready", cost: 3, script: "usable = true"},
	}
	want := map[string]bool{"ready": true}

	build := func(t *testing.T) (*ecs.World, map[string]ecs.Entity) {
		w := ecs.NewWorld()
		byName := map[string]ecs.Entity{}
		var list []uint64
		for _, setup := range setups {
			cd := component.NewCooldown(time.Second)
			if setup.cooling {
				cd.Start()
			}
			e := newAbility(t, w, setup.name, cd)
			if setup.disabled {
				mustAdd(t, w, e, component.DisabledComponent.Kind(), &component.Disabled{})
			}
			if setup.cost > 0 {
				mustAdd(t, w, e, resource.ManaKind.CostComponent.Kind(), &resource.Cost[resource.Mana]{Amount: setup.cost})
			}
			if setup.script != "" {
				mustAdd(t, w, e, component.ScriptGateComponent.Kind(), &component.ScriptGate{Source: setup.script})
			}
			byName[setup.name] = e
			list = append(list, uint64(e))
		}
		unit := ecs.CreateEntity(w)
		mustAdd(t, w, unit, component.AbilitiesComponent.Kind(), component.NewAbilities(list))
		mustAdd(t, w, unit, resource.ManaKind.PoolComponent.Kind(), resource.ManaKind.NewPool(5, 100, 0))
		return w, byName
	}

	checks := func() []ecs.System {
		return []ecs.System{
			NewCooldownCheckSystem(),
			NewDisabledCheckSystem(),
			NewResourceCheckSystem(resource.ManaKind),
			NewScriptGateSystem(nil),
		}
	}

	for _, perm := range permutations(len(checks())) {
		w, byName := build(t)
		systems := checks()
		s := ecs.NewScheduler()
		s.Add(ecs.PhaseMaintain, NewUsableResetSystem())
		for _, i := range perm {
			s.Add(ecs.PhaseCheck, systems[i])
		}
		s.Update(w, 0)

		for name, e := range byName {
			if got := usable(w, e); got != want[name] {
				t.Fatalf("order %v: %s usable=%v, want %v", perm, name, got, want[name])
			}
		}
	}
}

func permutations(n int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}
	var out [][]int
	for _, p := range permutations(n - 1) {
		for i := 0; i <= len(p); i++ {
			next := make([]int, 0, n)
			next = append(next, p[:i]...)
			next = append(next, n-1)
			next = append(next, p[i:]...)
			out = append(out, next)
		}
	}
	return out
}

func TestRosterLifecycleWithoutCompletion(t *testing.T) {
	w, s := newPipeline()
	fireball := newAbility(t, w, "fireball", component.NewCooldown(time.Second))
	unit, roster := newUnit(t, w, fireball)

	var atCommit []component.ActiveAbility
	s.Add(ecs.PhaseCommit, systemFunc(func(*ecs.World) {
		atCommit = append(atCommit, roster.Active())
	}))

	press(t, w, unit, component.ActionAbility1)
	for i := 0; i < 5; i++ {
		s.Update(w, testTick)
	}

	if atCommit[0] != (component.ActiveAbility{Entity: uint64(fireball), State: component.AbilityJustStarted}) {
		t.Fatalf("tick 1: expected JustStarted(fireball), got %+v", atCommit[0])
	}
	for i := 1; i < len(atCommit); i++ {
		if atCommit[i] != (component.ActiveAbility{Entity: uint64(fireball), State: component.AbilityActive}) {
			t.Fatalf("tick %d: expected Active(fireball), got %+v", i+1, atCommit[i])
		}
	}
	if roster.Active().State != component.AbilityActive {
		t.Fatalf("without a completion signal the roster must stay Active")
	}

	roster.Complete()
	s.Update(w, testTick)
	if !roster.Active().None() {
		t.Fatalf("expected Idle after external completion, got %+v", roster.Active())
	}
}

func TestInstantCompletionReturnsToIdle(t *testing.T) {
	w, s := newPipeline(WithInstantCompletion())
	strike := newAbility(t, w, "strike", nil)
	unit, roster := newUnit(t, w, strike)

	press(t, w, unit, component.ActionAbility1)
	s.Update(w, testTick)
	if got := roster.Active(); got.State != component.AbilityActive || got.Entity != uint64(strike) {
		t.Fatalf("after start tick expected Active(strike), got %+v", got)
	}

	s.Update(w, testTick)
	if !roster.Active().None() {
		t.Fatalf("after next tick expected Idle, got %+v", roster.Active())
	}

	// Holding the key is not a new press.
	s.Update(w, testTick)
	if !roster.Active().None() {
		t.Fatalf("held key restarted the ability")
	}
}

func TestSpendOnActivationOnce(t *testing.T) {
	w, s := newPipeline()
	bolt := newAbility(t, w, "bolt", nil)
	mustAdd(t, w, bolt, resource.ManaKind.CostComponent.Kind(), &resource.Cost[resource.Mana]{Amount: 20})
	unit, roster := newUnit(t, w, bolt)
	mustAdd(t, w, unit, resource.ManaKind.PoolComponent.Kind(), resource.ManaKind.NewPool(50, 100, 0))

	press(t, w, unit, component.ActionAbility1)
	for i := 0; i < 6; i++ {
		s.Update(w, testTick)
	}

	pool := ecs.MustGet(w, unit, resource.ManaKind.PoolComponent.Kind())
	if pool.Current() != 30 {
		t.Fatalf("expected 30 mana after one activation, got %v", pool.Current())
	}
	if roster.Active().State != component.AbilityActive {
		t.Fatalf("expected ability to stay Active, got %s", roster.Active().State)
	}
}

func TestResourceGating(t *testing.T) {
	w, s := newPipeline()
	cleave := newAbility(t, w, "cleave", component.NewCooldown(time.Second))
	mustAdd(t, w, cleave, resource.RageKind.CostComponent.Kind(), &resource.Cost[resource.Rage]{Amount: 10})
	unit, roster := newUnit(t, w, cleave)
	mustAdd(t, w, unit, resource.RageKind.PoolComponent.Kind(), resource.RageKind.NewPool(5, 100, 0))

	press(t, w, unit, component.ActionAbility1)
	s.Update(w, testTick)

	if usable(w, cleave) {
		t.Fatalf("ability costing 10 with 5 rage must be unusable")
	}
	if ok, _ := roster.Usable(uint64(cleave)); ok {
		t.Fatalf("roster snapshot should mirror the usable flag")
	}
	if !roster.Active().None() {
		t.Fatalf("unaffordable ability must not start")
	}
	if got := ecs.MustGet(w, unit, resource.RageKind.PoolComponent.Kind()).Current(); got != 5 {
		t.Fatalf("pool should be untouched, got %d", got)
	}
}

func TestCostOfUnheldKindDoesNotGate(t *testing.T) {
	w, s := newPipeline()
	slam := newAbility(t, w, "slam", nil)
	mustAdd(t, w, slam, resource.EnergyKind.CostComponent.Kind(), &resource.Cost[resource.Energy]{Amount: 50})
	newUnit(t, w, slam)

	s.Update(w, testTick)
	if !usable(w, slam) {
		t.Fatalf("a unit without an energy pool is not gated by energy costs")
	}
}

func TestCooldownBlocksReuse(t *testing.T) {
	w, s := newPipeline(WithInstantCompletion())
	blink := newAbility(t, w, "blink", component.NewCooldown(time.Second))
	unit, _ := newUnit(t, w, blink)

	startedOn := map[uint64]bool{}
	s.Add(ecs.PhaseCommit, systemFunc(func(w *ecs.World) {
		for _, evt := range w.Events().Pending() {
			if evt.Type == ecs.EventAbilityStarted {
				startedOn[w.Tick()] = true
			}
		}
	}))

	for tick := uint64(1); tick <= 12; tick++ {
		if tick == 1 || tick == 3 || tick == 10 || tick == 11 {
			press(t, w, unit, component.ActionAbility1)
		}
		s.Update(w, testTick)
	}

	for tick, want := range map[uint64]bool{1: true, 3: false, 10: false, 11: true} {
		if startedOn[tick] != want {
			t.Fatalf("tick %d: started=%v, want %v", tick, startedOn[tick], want)
		}
	}
}

func TestChargesAllowBackToBackUse(t *testing.T) {
	w, s := newPipeline(WithInstantCompletion())
	dash := newAbility(t, w, "dash", component.NewCooldownWithCharges(time.Second, 2))
	unit, roster := newUnit(t, w, dash)
	cd := ecs.MustGet(w, dash, component.CooldownComponent.Kind())

	starts := 0
	s.Add(ecs.PhaseCommit, systemFunc(func(*ecs.World) {
		if roster.Active().State == component.AbilityJustStarted {
			starts++
		}
	}))

	for tick := 1; tick <= 5; tick++ {
		if tick%2 == 1 {
			press(t, w, unit, component.ActionAbility1)
		}
		s.Update(w, testTick)
	}

	if starts != 2 {
		t.Fatalf("expected two starts from two charges, got %d", starts)
	}
	if cd.Charges != 0 {
		t.Fatalf("expected charges spent, got %d", cd.Charges)
	}
}

func TestDecidePushesEventAndStartsCooldown(t *testing.T) {
	var buf bytes.Buffer
	w, s := newPipeline()
	w.SetLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	nova := newAbility(t, w, "frost_nova", component.NewCooldown(2*time.Second))
	unit, _ := newUnit(t, w, nova)

	var events []ecs.Event
	s.Add(ecs.PhaseCleanup, systemFunc(func(w *ecs.World) {
		events = append(events, w.Events().Pending()...)
	}))

	press(t, w, unit, component.ActionAbility1)
	s.Update(w, testTick)

	if len(events) != 1 || events[0].Type != ecs.EventAbilityStarted {
		t.Fatalf("expected one ability_started event, got %+v", events)
	}
	started, ok := events[0].Data.(ecs.AbilityStarted)
	if !ok || started.Unit != unit || started.Ability != nova || started.Tick != 1 {
		t.Fatalf("unexpected payload %+v", events[0].Data)
	}
	if cd := ecs.MustGet(w, nova, component.CooldownComponent.Kind()); cd.Finished() {
		t.Fatalf("cooldown should be running after start")
	}
	if !strings.Contains(buf.String(), `"name":"frost_nova"`) || !strings.Contains(buf.String(), "ability started") {
		t.Fatalf("expected a debug log for the start, got %s", buf.String())
	}
}

func TestPriorityAmongSimultaneousPresses(t *testing.T) {
	w, s := newPipeline()
	first := newAbility(t, w, "first", component.NewCooldown(time.Second))
	second := newAbility(t, w, "second", nil)
	unit, roster := newUnit(t, w, first, second)

	ecs.MustGet(w, first, component.CooldownComponent.Kind()).Start()

	press(t, w, unit, component.ActionAbility1, component.ActionAbility2)
	s.Update(w, testTick)

	if got := roster.Active().Entity; got != uint64(second) {
		t.Fatalf("expected fallback to the usable lower priority ability, got %d", got)
	}
}

func TestNoopResolverUnitNeverStarts(t *testing.T) {
	w, s := newPipeline()
	a := newAbility(t, w, "idle", nil)
	unit := ecs.CreateEntity(w)
	roster := component.NewAbilities([]uint64{uint64(a)})
	mustAdd(t, w, unit, component.AbilitiesComponent.Kind(), roster)
	mustAdd(t, w, unit, component.ActionStateComponent.Kind(), &component.ActionState{})

	press(t, w, unit, component.ActionAbility1)
	s.Update(w, testTick)

	if !roster.Active().None() {
		t.Fatalf("noop resolver unit started %+v", roster.Active())
	}
	if ok, _ := roster.Usable(uint64(a)); !ok {
		t.Fatalf("usability is still synced for noop units")
	}
}

func TestMissingUsablePanics(t *testing.T) {
	w, s := newPipeline()
	broken := ecs.CreateEntity(w)
	mustAdd(t, w, broken, component.AbilityComponent.Kind(), &component.Ability{Name: "broken"})
	unit := ecs.CreateEntity(w)
	mustAdd(t, w, unit, component.AbilitiesComponent.Kind(), component.NewAbilities([]uint64{uint64(broken)}))

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for ability without Usable")
		}
	}()
	s.Update(w, testTick)
}

func TestResourceRegenRunsInMaintain(t *testing.T) {
	w, s := newPipeline()
	heal := newAbility(t, w, "heal", nil)
	mustAdd(t, w, heal, resource.ManaKind.CostComponent.Kind(), &resource.Cost[resource.Mana]{Amount: 10})
	unit, _ := newUnit(t, w, heal)
	// 9.5 mana plus 0.5 regenerated this tick affords a cost of 10.
	mustAdd(t, w, unit, resource.ManaKind.PoolComponent.Kind(), resource.ManaKind.NewPool(9.5, 100, 5))

	s.Update(w, testTick)
	if !usable(w, heal) {
		t.Fatalf("regeneration should apply before the affordability check")
	}
}

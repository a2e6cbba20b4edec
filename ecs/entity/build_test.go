package entity

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/milk9111/abilities/ecs"
	"github.com/milk9111/abilities/ecs/component"
	"github.com/milk9111/abilities/ecs/resource"
	"github.com/milk9111/abilities/ecs/system"
	"github.com/milk9111/abilities/prefabs"
)

// useDiskPrefabs points prefab loading at a temp dir holding files, falling
// back to the embedded prefabs for anything else.
func useDiskPrefabs(t *testing.T, files map[string]string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	prev := prefabs.Dir
	prefabs.Dir = dir
	t.Cleanup(func() { prefabs.Dir = prev })
}

func abilityNames(t *testing.T, w *ecs.World, roster *component.Abilities) []string {
	t.Helper()
	var names []string
	for _, e := range roster.List() {
		names = append(names, ecs.MustGet(w, ecs.Entity(e), component.AbilityComponent.Kind()).Name)
	}
	return names
}

func TestBuildEntityFromEmbeddedPrefabs(t *testing.T) {
	tests := []struct {
		name   string
		prefab string
		check  func(t *testing.T, w *ecs.World, unit ecs.Entity, roster *component.Abilities)
	}{
		{
			name:   "mage",
			prefab: "units/mage.yaml",
			check: func(t *testing.T, w *ecs.World, unit ecs.Entity, roster *component.Abilities) {
				want := []string{"fireball", "frost_nova", "blink", "arcane_surge"}
				got := abilityNames(t, w, roster)
				if len(got) != len(want) {
					t.Fatalf("expected %v, got %v", want, got)
				}
				for i := range want {
					if got[i] != want[i] {
						t.Fatalf("expected %v, got %v", want, got)
					}
				}

				pool := ecs.MustGet(w, unit, resource.ManaKind.PoolComponent.Kind())
				if pool.Current() != 100 || pool.Max() != 100 || pool.RegenRate != 5 {
					t.Fatalf("unexpected mana pool %v/%v regen %v", pool.Current(), pool.Max(), pool.RegenRate)
				}
				if !ecs.Has(w, unit, component.InputControlledComponent.Kind()) || !ecs.Has(w, unit, component.ActionStateComponent.Kind()) {
					t.Fatalf("bound unit should be input controlled")
				}

				resolver, ok := roster.Resolver().(*component.PriorityResolver)
				if !ok {
					t.Fatalf("expected priority resolver, got %T", roster.Resolver())
				}
				order := resolver.Order()
				wantOrder := []component.InputAction{component.ActionAbility1, component.ActionAbility2, component.ActionAbility3, component.ActionUltimate}
				if len(order) != len(wantOrder) {
					t.Fatalf("expected order %v, got %v", wantOrder, order)
				}
				for i := range wantOrder {
					if order[i] != wantOrder[i] {
						t.Fatalf("expected order %v, got %v", wantOrder, order)
					}
				}

				blink := ecs.Entity(roster.List()[2])
				cd := ecs.MustGet(w, blink, component.CooldownComponent.Kind())
				if cd.MaxCharges != 2 || cd.Duration != 8*time.Second {
					t.Fatalf("unexpected blink cooldown %+v", cd)
				}

				surge := ecs.Entity(roster.List()[3])
				gate := ecs.MustGet(w, surge, component.ScriptGateComponent.Kind())
				if gate.Path != "arcane_surge.tengo" {
					t.Fatalf("unexpected gate %+v", gate)
				}
				if cost, ok := resource.ManaKind.CostOf(w, surge); !ok || cost != 60 {
					t.Fatalf("expected surge to cost 60 mana, got %v", cost)
				}
			},
		},
		{
			name:   "warrior",
			prefab: "units/warrior.yaml",
			check: func(t *testing.T, w *ecs.World, unit ecs.Entity, roster *component.Abilities) {
				if current, _ := resource.RageKind.Current(w, unit); current != 40 {
					t.Fatalf("expected 40 rage, got %v", current)
				}
				if current, _ := resource.EnergyKind.Current(w, unit); current != 100 {
					t.Fatalf("expected 100 energy, got %v", current)
				}
				resolver := roster.Resolver().(*component.PriorityResolver)
				if first := resolver.Order()[0]; first != component.ActionAbility2 {
					t.Fatalf("expected custom priority starting with ability_2, got %v", first)
				}
				shieldWall := ecs.Entity(roster.List()[2])
				if !ecs.Has(w, shieldWall, component.DisabledComponent.Kind()) {
					t.Fatalf("shield_wall should be disabled")
				}
			},
		},
		{
			name:   "training_dummy",
			prefab: "units/training_dummy.yaml",
			check: func(t *testing.T, w *ecs.World, unit ecs.Entity, roster *component.Abilities) {
				if _, ok := roster.Resolver().(component.NoopResolver); !ok {
					t.Fatalf("unbound unit should use the noop resolver, got %T", roster.Resolver())
				}
				if ecs.Has(w, unit, component.InputControlledComponent.Kind()) {
					t.Fatalf("unbound unit should not be input controlled")
				}
				if current, _ := resource.ManaKind.Current(w, unit); current != 50 {
					t.Fatalf("omitted current should start full, got %v", current)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			unit, err := BuildEntity(w, tc.prefab, nil)
			if err != nil {
				t.Fatal(err)
			}
			roster := ecs.MustGet(w, unit, component.AbilitiesComponent.Kind())
			for _, e := range roster.List() {
				if !ecs.Has(w, ecs.Entity(e), component.UsableComponent.Kind()) {
					t.Fatalf("ability %d has no Usable flag", e)
				}
			}
			tc.check(t, w, unit, roster)
		})
	}
}

func TestBuildEntityErrors(t *testing.T) {
	tests := []struct {
		name   string
		files  map[string]string
		prefab string
	}{
		{
			name:   "missing_prefab",
			prefab: "units/nobody.yaml",
		},
		{
			name:   "no_components",
			files:  map[string]string{"units/empty.yaml": "name: empty\n"},
			prefab: "units/empty.yaml",
		},
		{
			name:   "unknown_component",
			files:  map[string]string{"units/odd.yaml": "name: odd\ncomponents:\n  wings: {}\n"},
			prefab: "units/odd.yaml",
		},
		{
			name: "unknown_resource_kind",
			files: map[string]string{
				"units/monk.yaml":     "name: monk\ncomponents:\n  abilities:\n    list: [palm]\n",
				"abilities/palm.yaml": "name: palm\ncomponents:\n  costs:\n    chi: 2\n",
			},
			prefab: "units/monk.yaml",
		},
		{
			name: "binding_outside_list",
			files: map[string]string{
				"units/rogue.yaml": "name: rogue\ncomponents:\n  abilities:\n    list: [fireball]\n    bindings:\n      ability_1: blink\n",
			},
			prefab: "units/rogue.yaml",
		},
		{
			name: "pool_above_max",
			files: map[string]string{
				"units/greedy.yaml": "name: greedy\ncomponents:\n  resources:\n    mana:\n      current: 200\n      max: 100\n",
			},
			prefab: "units/greedy.yaml",
		},
		{
			name: "negative_cost",
			files: map[string]string{
				"units/generous.yaml":   "name: generous\ncomponents:\n  abilities:\n    list: [refund]\n",
				"abilities/refund.yaml": "name: refund\ncomponents:\n  costs:\n    mana: -20\n",
			},
			prefab: "units/generous.yaml",
		},
		{
			name: "priority_names_unbound_action",
			files: map[string]string{
				"units/eager.yaml": "name: eager\ncomponents:\n  abilities:\n    list: [fireball]\n    bindings:\n      ability_1: fireball\n    priority: [ultimate]\n",
			},
			prefab: "units/eager.yaml",
		},
		{
			name: "negative_cooldown",
			files: map[string]string{
				"units/hasty.yaml":    "name: hasty\ncomponents:\n  abilities:\n    list: [rush]\n",
				"abilities/rush.yaml": "name: rush\ncomponents:\n  cooldown:\n    seconds: -1\n",
			},
			prefab: "units/hasty.yaml",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			useDiskPrefabs(t, tc.files)
			w := ecs.NewWorld()
			if _, err := BuildEntity(w, tc.prefab, nil); err == nil {
				t.Fatalf("expected error")
			}
			if n := len(ecs.Entities(w)); n != 0 {
				t.Fatalf("failed build leaked %d entities", n)
			}
		})
	}
}

func TestDestroyUnitRemovesAbilities(t *testing.T) {
	w := ecs.NewWorld()
	mage, err := BuildEntity(w, "units/mage.yaml", nil)
	if err != nil {
		t.Fatal(err)
	}
	dummy, err := BuildEntity(w, "units/training_dummy.yaml", nil)
	if err != nil {
		t.Fatal(err)
	}

	if !DestroyUnit(w, mage) {
		t.Fatalf("expected mage destroyed")
	}
	// The dummy and its single ability remain.
	if n := len(ecs.Entities(w)); n != 2 {
		t.Fatalf("expected 2 entities left, got %d", n)
	}
	if !ecs.IsAlive(w, dummy) || DestroyUnit(w, mage) {
		t.Fatalf("unexpected liveness after destroy")
	}
}

func TestApplyAbilitySpec(t *testing.T) {
	w := ecs.NewWorld()
	mage, err := BuildEntity(w, "units/mage.yaml", nil)
	if err != nil {
		t.Fatal(err)
	}
	roster := ecs.MustGet(w, mage, component.AbilitiesComponent.Kind())
	fireball := ecs.Entity(roster.List()[0])

	cd := ecs.MustGet(w, fireball, component.CooldownComponent.Kind())
	cd.Start()
	cd.Tick(500 * time.Millisecond)

	useDiskPrefabs(t, map[string]string{
		"abilities/fireball.yaml": "name: fireball\ncomponents:\n  cooldown:\n    seconds: 5\n  costs:\n    mana: 30\n  disabled: {}\n",
	})

	n, err := ApplyAbilitySpec(w, "fireball", nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 entity updated, got %d", n)
	}

	if cost, _ := resource.ManaKind.CostOf(w, fireball); cost != 30 {
		t.Fatalf("expected new cost 30, got %v", cost)
	}
	if !ecs.Has(w, fireball, component.DisabledComponent.Kind()) {
		t.Fatalf("expected fireball disabled after reload")
	}
	reloaded := ecs.MustGet(w, fireball, component.CooldownComponent.Kind())
	if reloaded.Duration != 5*time.Second || reloaded.Charges != 0 || reloaded.Elapsed != 500*time.Millisecond {
		t.Fatalf("expected recharge progress kept under the new duration, got %+v", reloaded)
	}

	useDiskPrefabs(t, map[string]string{
		"abilities/fireball.yaml": "name: fireball\ncomponents:\n  costs:\n    energy: 5\n",
	})
	if _, err := ApplyAbilitySpec(w, "fireball", nil); err != nil {
		t.Fatal(err)
	}
	if ecs.Has(w, fireball, component.CooldownComponent.Kind()) || ecs.Has(w, fireball, component.DisabledComponent.Kind()) {
		t.Fatalf("components dropped from the spec should be removed")
	}
	if _, ok := resource.ManaKind.CostOf(w, fireball); ok {
		t.Fatalf("old mana cost should be removed")
	}
	if cost, _ := resource.EnergyKind.CostOf(w, fireball); cost != 5 {
		t.Fatalf("expected energy cost 5, got %v", cost)
	}
}

func TestBuiltUnitRunsThroughPipeline(t *testing.T) {
	w := ecs.NewWorld()
	mage, err := BuildEntity(w, "units/mage.yaml", nil)
	if err != nil {
		t.Fatal(err)
	}

	s := ecs.NewScheduler()
	system.AddAbilitySystems(s, system.WithInstantCompletion())
	system.AddDefaultResourcePools(s)

	state := ecs.MustGet(w, mage, component.ActionStateComponent.Kind())
	roster := ecs.MustGet(w, mage, component.AbilitiesComponent.Kind())

	// Mana is full, so the surge script allows the ultimate.
	state.Press(component.ActionUltimate)
	s.Update(w, 100*time.Millisecond)

	if got := roster.Active().Entity; got != roster.List()[3] {
		t.Fatalf("expected arcane_surge active, got %d", got)
	}
	if current, _ := resource.ManaKind.Current(w, mage); current != 40 {
		t.Fatalf("expected 40 mana after the surge, got %v", current)
	}

	// Below 80 mana the script gates the surge even when its cooldown allows it.
	ecs.MustGet(w, ecs.Entity(roster.List()[3]), component.CooldownComponent.Kind()).Tick(time.Minute)
	s.Update(w, 100*time.Millisecond)
	s.Update(w, 100*time.Millisecond)
	if ok, _ := roster.Usable(roster.List()[3]); ok {
		t.Fatalf("expected the script to gate arcane_surge at low mana")
	}
}

func TestBuildEntityClampsPoolToLogicalMax(t *testing.T) {
	useDiskPrefabs(t, map[string]string{
		"units/big.yaml": "name: big\ncomponents:\n  resources:\n    energy:\n      max: 3000000000\n      regen: 3000000000\n",
	})

	w := ecs.NewWorld()
	unit, err := BuildEntity(w, "units/big.yaml", nil)
	if err != nil {
		t.Fatal(err)
	}
	pool := ecs.MustGet(w, unit, resource.EnergyKind.PoolComponent.Kind())
	if pool.Current() != 100 || pool.Max() != 100 || pool.RegenRate != 100 {
		t.Fatalf("expected energy clamped to 100, got %v/%v regen %v", pool.Current(), pool.Max(), pool.RegenRate)
	}
}

func TestExplicitPriorityKeepsUnlistedBindings(t *testing.T) {
	useDiskPrefabs(t, map[string]string{
		"units/duelist.yaml": "name: duelist\ncomponents:\n  abilities:\n    list: [fireball, blink, charge]\n    bindings:\n      ability_1: fireball\n      ability_2: blink\n      dodge: charge\n    priority: [ability_2]\n",
	})

	w := ecs.NewWorld()
	unit, err := BuildEntity(w, "units/duelist.yaml", nil)
	if err != nil {
		t.Fatal(err)
	}
	resolver := ecs.MustGet(w, unit, component.AbilitiesComponent.Kind()).Resolver().(*component.PriorityResolver)
	want := []component.InputAction{component.ActionAbility2, component.ActionAbility1, "dodge"}
	got := resolver.Order()
	if len(got) != len(want) {
		t.Fatalf("expected order %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestApplyAbilitySpecFailureKeepsGating(t *testing.T) {
	w := ecs.NewWorld()
	mage, err := BuildEntity(w, "units/mage.yaml", nil)
	if err != nil {
		t.Fatal(err)
	}
	fireball := ecs.Entity(ecs.MustGet(w, mage, component.AbilitiesComponent.Kind()).List()[0])

	useDiskPrefabs(t, map[string]string{
		"abilities/fireball.yaml": "name: fireball\ncomponents:\n  cooldown:\n    seconds: 3\n  costs:\n    mana: 20\n  disabled: {}\n",
	})
	if _, err := ApplyAbilitySpec(w, "fireball", nil); err != nil {
		t.Fatal(err)
	}
	before := len(ecs.Entities(w))

	tests := []struct {
		name string
		spec string
	}{
		{name: "unknown_kind_after_disabled", spec: "name: fireball\ncomponents:\n  costs:\n    manna: 20\n  disabled: {}\n"},
		{name: "unknown_component", spec: "name: fireball\ncomponents:\n  cooldown:\n    seconds: 1\n  wings: {}\n"},
		{name: "empty_script_gate", spec: "name: fireball\ncomponents:\n  script_gate: {}\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			useDiskPrefabs(t, map[string]string{"abilities/fireball.yaml": tc.spec})

			if _, err := ApplyAbilitySpec(w, "fireball", nil); err == nil {
				t.Fatalf("expected error")
			}
			if !ecs.Has(w, fireball, component.DisabledComponent.Kind()) {
				t.Fatalf("failed reload dropped the Disabled marker")
			}
			if cost, ok := resource.ManaKind.CostOf(w, fireball); !ok || cost != 20 {
				t.Fatalf("failed reload changed the mana cost: %v %v", cost, ok)
			}
			if cd := ecs.MustGet(w, fireball, component.CooldownComponent.Kind()); cd.Duration != 3*time.Second {
				t.Fatalf("failed reload changed the cooldown: %+v", cd)
			}
			if n := len(ecs.Entities(w)); n != before {
				t.Fatalf("expected %d entities, got %d", before, n)
			}
		})
	}
}

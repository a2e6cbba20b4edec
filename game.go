package main

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/abilities/ecs"
	"github.com/milk9111/abilities/ecs/component"
	"github.com/milk9111/abilities/ecs/entity"
	"github.com/milk9111/abilities/ecs/resource"
	"github.com/milk9111/abilities/ecs/system"
	"github.com/rs/zerolog"
)

const (
	baseWidth  = 960
	baseHeight = 540

	slotSize = 72
	slotGap  = 12
)

type Game struct {
	frames int

	world     *ecs.World
	scheduler *ecs.Scheduler
	registry  *resource.Registry
	unit      ecs.Entity
	dt        time.Duration

	lastStarted string
	lastTick    uint64
}

func NewGame(unitPath string, instant bool, dt time.Duration, logger zerolog.Logger) (*Game, error) {
	w := ecs.NewWorld()
	w.SetLogger(logger)
	registry := resource.DefaultRegistry()

	unit, err := entity.BuildEntity(w, unitPath, registry)
	if err != nil {
		return nil, err
	}

	g := &Game{
		world:     w,
		scheduler: ecs.NewScheduler(),
		registry:  registry,
		unit:      unit,
		dt:        dt,
	}

	opts := []system.Option{
		system.WithInput(system.NewInputSystem(system.DefaultKeyBindings())),
		system.WithRegistry(registry),
	}
	if instant {
		opts = append(opts, system.WithInstantCompletion())
	}
	system.AddAbilitySystems(g.scheduler, opts...)
	system.AddDefaultResourcePools(g.scheduler)
	g.scheduler.Add(ecs.PhaseCommit, startRecorder{g})

	return g, nil
}

func (g *Game) Update() error {
	g.frames++
	g.scheduler.Update(g.world, g.dt)
	return nil
}

// startRecorder remembers the last ability the controlled unit started.
type startRecorder struct {
	g *Game
}

func (r startRecorder) Update(w *ecs.World) {
	g := r.g
	for _, evt := range w.Events().Pending() {
		started, ok := evt.Data.(ecs.AbilityStarted)
		if !ok || started.Unit != g.unit {
			continue
		}
		if def, ok := ecs.Get(w, started.Ability, component.AbilityComponent.Kind()); ok {
			g.lastStarted = def.Name
			g.lastTick = started.Tick
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	ebitenutil.DebugPrint(screen, fmt.Sprintf("Tick: %d    FPS: %.2f", g.world.Tick(), ebiten.ActualFPS()))

	abilities, ok := ecs.Get(g.world, g.unit, component.AbilitiesComponent.Kind())
	if !ok {
		return
	}

	active := abilities.Active()
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("State: %s", active.State), 16, 24)
	if g.lastStarted != "" {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Last: %s (tick %d)", g.lastStarted, g.lastTick), 16, 40)
	}

	y := 72
	for _, name := range g.registry.Names() {
		binding, err := g.registry.Lookup(name)
		if err != nil {
			continue
		}
		current, ok := binding.Current(g.world, g.unit)
		if !ok {
			continue
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s: %.1f", name, current), 16, y)
		y += 16
	}

	keys := g.actionLabels(abilities)
	x := float32(16)
	top := float32(baseHeight - slotSize - 32)
	for _, owned := range abilities.List() {
		g.drawSlot(screen, ecs.Entity(owned), keys[owned], x, top, active.Entity == owned)
		x += slotSize + slotGap
	}
}

func (g *Game) drawSlot(screen *ebiten.Image, ability ecs.Entity, key string, x, y float32, active bool) {
	ready := false
	if roster, ok := ecs.Get(g.world, g.unit, component.AbilitiesComponent.Kind()); ok {
		ready, _ = roster.Usable(uint64(ability))
	}

	fill := color.RGBA{R: 60, G: 60, B: 70, A: 255}
	if ready {
		fill = color.RGBA{R: 40, G: 110, B: 60, A: 255}
	}
	vector.FillRect(screen, x, y, slotSize, slotSize, fill, false)

	if cd, ok := ecs.Get(g.world, ability, component.CooldownComponent.Kind()); ok {
		if remaining := cd.Remaining(); remaining > 0 {
			h := float32(remaining) * slotSize
			vector.FillRect(screen, x, y+slotSize-h, slotSize, h, color.RGBA{A: 160}, false)
		}
		if cd.MaxCharges > 1 {
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("x%d", cd.Charges), int(x)+slotSize-20, int(y)+slotSize-16)
		}
	}

	border := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	if active {
		border = color.RGBA{R: 255, G: 200, B: 40, A: 255}
	}
	vector.StrokeRect(screen, x, y, slotSize, slotSize, 2, border, false)

	name := ""
	if def, ok := ecs.Get(g.world, ability, component.AbilityComponent.Kind()); ok {
		name = def.Name
	}
	if len(name) > 11 {
		name = name[:11]
	}
	ebitenutil.DebugPrintAt(screen, key, int(x)+4, int(y)+4)
	ebitenutil.DebugPrintAt(screen, name, int(x)+4, int(y)+slotSize+4)
	if ecs.Has(g.world, ability, component.DisabledComponent.Kind()) {
		ebitenutil.DebugPrintAt(screen, "off", int(x)+4, int(y)+24)
	}
}

// actionLabels maps each bound ability to the keys that trigger it.
func (g *Game) actionLabels(abilities *component.Abilities) map[uint64]string {
	labels := map[uint64]string{}
	resolver, ok := abilities.Resolver().(*component.PriorityResolver)
	if !ok {
		return labels
	}
	bindings := system.DefaultKeyBindings()
	for _, action := range resolver.Order() {
		e, ok := resolver.Binding(action)
		if !ok {
			continue
		}
		var keys []string
		for _, k := range bindings[action] {
			keys = append(keys, k.String())
		}
		labels[e] = strings.Join(keys, "/")
	}
	return labels
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

package system

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/abilities/ecs"
	"github.com/milk9111/abilities/ecs/component"
)

// KeyReader reports keyboard state for the current frame.
type KeyReader interface {
	IsKeyPressed(key ebiten.Key) bool
	IsKeyJustPressed(key ebiten.Key) bool
}

type ebitenKeys struct{}

func (ebitenKeys) IsKeyPressed(key ebiten.Key) bool {
	return ebiten.IsKeyPressed(key)
}

func (ebitenKeys) IsKeyJustPressed(key ebiten.Key) bool {
	return inpututil.IsKeyJustPressed(key)
}

// DefaultKeyBindings maps the number row and R to the ability actions.
func DefaultKeyBindings() map[component.InputAction][]ebiten.Key {
	return map[component.InputAction][]ebiten.Key{
		component.ActionAbility1: {ebiten.Key1, ebiten.KeyQ},
		component.ActionAbility2: {ebiten.Key2, ebiten.KeyW},
		component.ActionAbility3: {ebiten.Key3, ebiten.KeyE},
		component.ActionAbility4: {ebiten.Key4},
		component.ActionUltimate: {ebiten.KeyR},
	}
}

// InputSystem polls the keyboard and writes the resulting action state to
// every input-controlled unit.
type InputSystem struct {
	bindings map[component.InputAction][]ebiten.Key
	keys     KeyReader
}

func NewInputSystem(bindings map[component.InputAction][]ebiten.Key) *InputSystem {
	if bindings == nil {
		bindings = DefaultKeyBindings()
	}
	return &InputSystem{bindings: bindings, keys: ebitenKeys{}}
}

// WithKeyReader replaces the ebiten keyboard source.
func (i *InputSystem) WithKeyReader(keys KeyReader) *InputSystem {
	if keys != nil {
		i.keys = keys
	}
	return i
}

func (i *InputSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	held := make(map[component.InputAction]bool, len(i.bindings))
	fresh := make(map[component.InputAction]bool, len(i.bindings))
	for action, keys := range i.bindings {
		for _, key := range keys {
			if i.keys.IsKeyPressed(key) {
				held[action] = true
			}
			if i.keys.IsKeyJustPressed(key) {
				fresh[action] = true
			}
		}
	}

	ecs.ForEach2(w, component.InputControlledComponent.Kind(), component.ActionStateComponent.Kind(), func(_ ecs.Entity, _ *component.InputControlled, state *component.ActionState) {
		for action := range i.bindings {
			if fresh[action] {
				// A press and release between two frames still counts.
				state.Release(action)
				state.Press(action)
				continue
			}
			state.Set(action, held[action])
		}
	})
}

// InputAdvanceSystem ends the tick for every action state, so a held action is
// only just pressed once.
type InputAdvanceSystem struct{}

func NewInputAdvanceSystem() *InputAdvanceSystem {
	return &InputAdvanceSystem{}
}

func (s *InputAdvanceSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.ActionStateComponent.Kind(), func(_ ecs.Entity, state *component.ActionState) {
		state.Advance()
	})
}

package component

// InputAction is a discrete, already-processed input action.
type InputAction string

const (
	ActionAbility1 InputAction = "ability_1"
	ActionAbility2 InputAction = "ability_2"
	ActionAbility3 InputAction = "ability_3"
	ActionAbility4 InputAction = "ability_4"
	ActionUltimate InputAction = "ultimate"
)

// AbilityActions is the default priority order used by input resolvers:
// earlier actions win when several are pressed in the same tick.
var AbilityActions = []InputAction{
	ActionAbility1,
	ActionAbility2,
	ActionAbility3,
	ActionAbility4,
	ActionUltimate,
}

// ActionState stores per-tick input state for an entity. JustPressed edges
// last for a single tick; Advance clears them.
type ActionState struct {
	pressed     map[InputAction]bool
	justPressed map[InputAction]bool
}

// Press records action as held. It is just pressed if it was not held before.
func (s *ActionState) Press(action InputAction) {
	if s == nil {
		return
	}
	if s.pressed == nil {
		s.pressed = make(map[InputAction]bool)
		s.justPressed = make(map[InputAction]bool)
	}
	if !s.pressed[action] {
		s.justPressed[action] = true
	}
	s.pressed[action] = true
}

// Release records action as no longer held.
func (s *ActionState) Release(action InputAction) {
	if s == nil || s.pressed == nil {
		return
	}
	delete(s.pressed, action)
	delete(s.justPressed, action)
}

// Set presses or releases action depending on held.
func (s *ActionState) Set(action InputAction, held bool) {
	if held {
		s.Press(action)
		return
	}
	s.Release(action)
}

func (s *ActionState) Pressed(action InputAction) bool {
	return s != nil && s.pressed[action]
}

func (s *ActionState) JustPressed(action InputAction) bool {
	return s != nil && s.justPressed[action]
}

// Advance ends the tick: held actions stay held but are no longer fresh.
func (s *ActionState) Advance() {
	if s == nil {
		return
	}
	clear(s.justPressed)
}

var ActionStateComponent = NewComponent[ActionState]()

// InputControlled marks units whose roster is driven by player input.
type InputControlled struct{}

var InputControlledComponent = NewComponent[InputControlled]()

package component

// Ability marks an entity as an ability. Name is the prefab definition the
// entity was built from; several entities may share it.
type Ability struct {
	Name string
}

var AbilityComponent = NewComponent[Ability]()

// Usable is the per-tick usability flag of an ability. It is reset once at the
// start of a tick and afterwards can only be cleared, so gating systems may run
// in any order and still agree on the result.
type Usable struct {
	usable bool
}

// Value reports whether no gate has cleared the flag this tick.
func (u *Usable) Value() bool {
	return u != nil && u.usable
}

// Clear marks the ability unusable for the rest of the tick.
func (u *Usable) Clear() {
	if u == nil {
		return
	}
	u.usable = false
}

// Reset marks the ability usable. Only the maintain phase calls it.
func (u *Usable) Reset() {
	if u == nil {
		return
	}
	u.usable = true
}

var UsableComponent = NewComponent[Usable]()

// Disabled marks abilities that cannot be used for miscellaneous reasons
// (silenced, stunned, locked by a tutorial).
type Disabled struct{}

var DisabledComponent = NewComponent[Disabled]()

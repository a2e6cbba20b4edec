package component

// AbilityState is the lifecycle tag of a unit's active ability.
type AbilityState uint8

const (
	AbilityIdle AbilityState = iota
	AbilityJustStarted
	AbilityActive
)

func (s AbilityState) String() string {
	switch s {
	case AbilityIdle:
		return "idle"
	case AbilityJustStarted:
		return "just_started"
	case AbilityActive:
		return "active"
	default:
		return "unknown"
	}
}

// ActiveAbility names the ability a unit is using. Entity is an ecs.Entity
// stored as uint64; zero means none.
type ActiveAbility struct {
	Entity uint64
	State  AbilityState
}

// NoActiveAbility is the idle roster state.
var NoActiveAbility = ActiveAbility{}

// None reports whether no ability is active.
func (a ActiveAbility) None() bool {
	return a == NoActiveAbility
}

// Abilities is the per-unit roster: the ability entities a unit owns in scan
// order, the usability snapshot taken once per tick, the active ability and
// the input resolution policy. The roster does not own the ability entities.
type Abilities struct {
	list     []uint64
	usable   map[uint64]bool
	active   ActiveAbility
	resolver InputResolver
}

// NewAbilities builds a roster from an explicit list. The unit does not
// respond to input.
func NewAbilities(list []uint64) *Abilities {
	return newAbilities(list, NoopResolver{})
}

// NewAbilitiesFromResolver seeds the roster with the abilities the resolver
// maps to inputs.
func NewAbilitiesFromResolver(resolver InputResolver) *Abilities {
	if resolver == nil {
		resolver = NoopResolver{}
	}
	return newAbilities(resolver.Abilities(), resolver)
}

func newAbilities(list []uint64, resolver InputResolver) *Abilities {
	a := &Abilities{
		list:     make([]uint64, 0, len(list)),
		usable:   make(map[uint64]bool, len(list)),
		resolver: resolver,
	}
	for _, e := range list {
		a.AddAbility(e)
	}
	return a
}

// List returns the owned abilities in scan order.
func (a *Abilities) List() []uint64 {
	out := make([]uint64, len(a.list))
	copy(out, a.list)
	return out
}

// Len returns the number of owned abilities.
func (a *Abilities) Len() int {
	return len(a.list)
}

// AddAbility appends e to the roster. Duplicates and the zero entity are
// ignored. New abilities are unusable until the next usability sync.
func (a *Abilities) AddAbility(e uint64) {
	if e == 0 {
		return
	}
	if a.usable == nil {
		a.usable = make(map[uint64]bool)
	}
	if _, ok := a.usable[e]; ok {
		return
	}
	a.list = append(a.list, e)
	a.usable[e] = false
}

// RemoveAbility detaches e from the roster, clearing it as the active ability
// if needed.
func (a *Abilities) RemoveAbility(e uint64) bool {
	if _, ok := a.usable[e]; !ok {
		return false
	}
	delete(a.usable, e)
	for i, owned := range a.list {
		if owned == e {
			a.list = append(a.list[:i], a.list[i+1:]...)
			break
		}
	}
	if a.active.Entity == e {
		a.active = NoActiveAbility
	}
	return true
}

// Owns reports whether e is in the roster.
func (a *Abilities) Owns(e uint64) bool {
	_, ok := a.usable[e]
	return ok
}

// Usable returns the snapshot value for e.
func (a *Abilities) Usable(e uint64) (bool, bool) {
	v, ok := a.usable[e]
	return v, ok
}

// SetUsable records the usability of an owned ability. Unknown abilities are
// ignored.
func (a *Abilities) SetUsable(e uint64, usable bool) {
	if _, ok := a.usable[e]; !ok {
		return
	}
	a.usable[e] = usable
}

// Active returns the active ability and its lifecycle state.
func (a *Abilities) Active() ActiveAbility {
	return a.active
}

// Resolver returns the input resolution policy.
func (a *Abilities) Resolver() InputResolver {
	return a.resolver
}

// SetResolver replaces the input resolution policy. Abilities it maps that are
// not yet owned are appended to the roster.
func (a *Abilities) SetResolver(resolver InputResolver) {
	if resolver == nil {
		resolver = NoopResolver{}
	}
	a.resolver = resolver
	for _, e := range resolver.Abilities() {
		a.AddAbility(e)
	}
}

// Resolve asks the policy for an ability given the current input and the
// usability snapshot.
func (a *Abilities) Resolve(input *ActionState) (uint64, bool) {
	if a.resolver == nil {
		return 0, false
	}
	return a.resolver.Resolve(input, a.usable)
}

// Start makes e the active ability in state JustStarted. It returns false when
// another ability is active or e is not owned.
func (a *Abilities) Start(e uint64) bool {
	if !a.active.None() || !a.Owns(e) {
		return false
	}
	a.active = ActiveAbility{Entity: e, State: AbilityJustStarted}
	return true
}

// Settle moves a JustStarted ability to Active. Other states are untouched.
func (a *Abilities) Settle() {
	if a.active.State == AbilityJustStarted {
		a.active.State = AbilityActive
	}
}

// Complete returns the roster to idle. It is the completion signal owned by
// the systems that apply ability effects.
func (a *Abilities) Complete() {
	a.active = NoActiveAbility
}

var AbilitiesComponent = NewComponent[Abilities]()

package component

import (
	"errors"
	"reflect"
	"sync"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
	ErrMissingComponent     = errors.New("ecs: missing component")
)

// ComponentID identifies a registered component kind. Zero is never issued.
type ComponentID uint32

// kindTable hands out ids and remembers the Go type name behind each one, so
// storage keyed by id can still be described in logs and errors.
var kindTable struct {
	sync.Mutex
	names []string
}

func registerKind(name string) ComponentID {
	kindTable.Lock()
	defer kindTable.Unlock()
	kindTable.names = append(kindTable.names, name)
	return ComponentID(len(kindTable.names))
}

// KindName returns the type name registered for id, or "" for unknown ids.
func KindName(id ComponentID) string {
	kindTable.Lock()
	defer kindTable.Unlock()
	if id == 0 || int(id) > len(kindTable.names) {
		return ""
	}
	return kindTable.names[id-1]
}

// ComponentKind is the typed key of one component store. Every call to
// NewComponentKind registers a distinct kind, even for the same T.
type ComponentKind[T any] struct {
	id   ComponentID
	name string
}

func NewComponentKind[T any]() ComponentKind[T] {
	name := reflect.TypeFor[T]().String()
	return ComponentKind[T]{id: registerKind(name), name: name}
}

func (k ComponentKind[T]) ID() ComponentID {
	return k.id
}

func (k ComponentKind[T]) Valid() bool {
	return k.id != 0
}

// Name returns the Go type name of T, e.g. "component.Cooldown".
func (k ComponentKind[T]) Name() string {
	if k.name == "" {
		return reflect.TypeFor[T]().String()
	}
	return k.name
}

// ComponentHandle is the package-level var each component file exports; it
// wraps the kind so call sites read `XComponent.Kind()`.
type ComponentHandle[T any] struct {
	kind ComponentKind[T]
}

func NewComponent[T any]() ComponentHandle[T] {
	return ComponentHandle[T]{kind: NewComponentKind[T]()}
}

func (h ComponentHandle[T]) Kind() ComponentKind[T] {
	return h.kind
}

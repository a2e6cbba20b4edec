package ecs

import (
	"strconv"

	"github.com/rs/zerolog"
)

// Entity is a generational handle. The low half indexes the arena slot; the
// high half is the slot's generation when the handle was issued, so a handle
// kept past DestroyEntity never matches the slot's next occupant.
type Entity uint64

type (
	entityID   uint32
	generation uint32
)

const (
	slotBits = 32
	slotMask = 1<<slotBits - 1
)

func makeEntity(id entityID, gen generation) Entity {
	return Entity(uint64(gen)<<slotBits | uint64(id))
}

func (e Entity) id() entityID {
	return entityID(uint64(e) & slotMask)
}

func (e Entity) generation() generation {
	return generation(uint64(e) >> slotBits)
}

// String formats e as slot and generation, e.g. "12v3".
func (e Entity) String() string {
	buf := strconv.AppendUint(nil, uint64(e.id()), 10)
	buf = append(buf, 'v')
	return string(strconv.AppendUint(buf, uint64(e.generation()), 10))
}

// Valid reports whether e could refer to an entity. The zero slot is never issued.
func (e Entity) Valid() bool {
	return e.id() > 0
}

// MarshalZerologObject logs e as {"slot":..,"gen":..}.
func (e Entity) MarshalZerologObject(ev *zerolog.Event) {
	ev.Uint32("slot", uint32(e.id())).Uint32("gen", uint32(e.generation()))
}

package ecs

import (
	"time"

	"github.com/milk9111/abilities/ecs/component"
	"github.com/rs/zerolog"
)

// World owns entities, their components and the per-tick resources systems
// read (delta time, tick number, logger).
type World struct {
	entities entityStore
	stores   map[component.ComponentID]*SparseSet
	events   EventQueue

	delta  time.Duration
	tick   uint64
	logger zerolog.Logger
}

// NewWorld creates an empty ECS world with a disabled logger.
func NewWorld() *World {
	return &World{
		stores: make(map[component.ComponentID]*SparseSet),
		logger: zerolog.Nop(),
	}
}

// Delta returns the elapsed simulation time of the current tick.
func (w *World) Delta() time.Duration {
	if w == nil {
		return 0
	}
	return w.delta
}

// Tick returns the number of the tick being run, starting at 1.
func (w *World) Tick() uint64 {
	if w == nil {
		return 0
	}
	return w.tick
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// Logger returns the world logger. Systems attach entity fields to it.
func (w *World) Logger() *zerolog.Logger {
	if w == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return &w.logger
}

// SetLogger replaces the world logger.
func (w *World) SetLogger(logger zerolog.Logger) {
	if w == nil {
		return
	}
	w.logger = logger
}

func (w *World) beginTick(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	w.delta = dt
	w.tick++
}

func (w *World) store(id component.ComponentID, create bool) *SparseSet {
	if w.stores == nil {
		if !create {
			return nil
		}
		w.stores = make(map[component.ComponentID]*SparseSet)
	}
	s, ok := w.stores[id]
	if !ok && create {
		s = &SparseSet{}
		w.stores[id] = s
	}
	return s
}

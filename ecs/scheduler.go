package ecs

import "time"

// Phase orders systems within a tick. Phases always run in declaration
// order no matter when their systems were added.
type Phase int

const (
	// PhaseInput hosts producers of raw action state.
	PhaseInput Phase = iota
	// PhaseMaintain resets usability and advances cooldowns and regeneration.
	PhaseMaintain
	// PhaseCheck hosts gating systems. They may only clear usability.
	PhaseCheck
	// PhaseSync copies usability into each roster's snapshot.
	PhaseSync
	// PhaseDecide picks at most one ability per idle unit.
	PhaseDecide
	// PhaseCommit hosts consumers of JustStarted (resource spend, effects).
	PhaseCommit
	// PhaseCleanup decays JustStarted and resets per-tick input edges.
	PhaseCleanup

	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseMaintain:
		return "maintain"
	case PhaseCheck:
		return "check"
	case PhaseSync:
		return "sync"
	case PhaseDecide:
		return "decide"
	case PhaseCommit:
		return "commit"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// Phases returns every phase in execution order.
func Phases() []Phase {
	out := make([]Phase, 0, phaseCount)
	for p := PhaseInput; p < phaseCount; p++ {
		out = append(out, p)
	}
	return out
}

type System interface {
	Update(w *World)
}

// Scheduler runs systems phase by phase. Inside a phase systems run in the
// order they were added.
type Scheduler struct {
	phases [phaseCount][]System
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Add appends a system to phase. Nil systems and unknown phases are ignored.
func (s *Scheduler) Add(phase Phase, system System) {
	if s == nil || system == nil || phase < 0 || phase >= phaseCount {
		return
	}
	s.phases[phase] = append(s.phases[phase], system)
}

// Update runs one simulation tick of length dt.
func (s *Scheduler) Update(w *World, dt time.Duration) {
	if s == nil || w == nil {
		return
	}
	w.beginTick(dt)
	for _, systems := range s.phases {
		for _, system := range systems {
			system.Update(w)
		}
	}
	w.events.flush()
}

// Systems returns the systems of phase in run order.
func (s *Scheduler) Systems(phase Phase) []System {
	if s == nil || phase < 0 || phase >= phaseCount {
		return nil
	}
	systems := make([]System, 0, len(s.phases[phase]))
	return append(systems, s.phases[phase]...)
}

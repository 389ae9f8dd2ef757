package emulator

import "math"

// A deferred callback. `param` is the integer parameter the event was
// added with, `residual` is the (non-positive) overshoot in cycles at
// fire time; periodic events re-add themselves with `cycles + residual`
// so drift stays bounded by one dispatch
type EventCallback func(param int, residual int64)

// Scheduler event. Events are trivially copyable: they carry an index
// into the callback table instead of a closure
type Event struct {
	ID               uint64
	Param            int
	CyclesUntilEvent int64
	// Events added while a drain is in progress must not have the
	// global cycle count applied to them on that pass
	IsNew bool
}

// Keeps track of the emulation time and dispatches deferred events.
// Time is measured in EE clock cycles
type Scheduler struct {
	Events []Event

	Callbacks []EventCallback

	CycleCount           int64
	CyclesUntilNextEvent int64

	// True while a drain sweep is in progress; events added from
	// inside a callback must be ignored on that pass
	draining bool
}

// Returns a new Scheduler instance
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Finds the next event
func (sched *Scheduler) reschedule() {
	var nextEvent int64 = math.MaxInt64

	for i := range sched.Events {
		if sched.Events[i].CyclesUntilEvent < nextEvent {
			nextEvent = sched.Events[i].CyclesUntilEvent
		}
	}

	sched.CyclesUntilNextEvent = nextEvent
}

// Registers an event callback, returns the event ID
func (sched *Scheduler) RegisterEvent(callback EventCallback) uint64 {
	sched.Callbacks = append(sched.Callbacks, callback)

	return uint64(len(sched.Callbacks) - 1)
}

// Adds a scheduler event. `reschedule` recomputes the next event time;
// it can be skipped when another event is known to fire at the same
// time or earlier
func (sched *Scheduler) AddEvent(id uint64, param int, cyclesUntilEvent int64, reschedule bool) {
	if cyclesUntilEvent <= 0 {
		panicFmt("scheduler: non-positive event delay %d (event %d)", cyclesUntilEvent, id)
	}

	sched.Events = append(sched.Events, Event{
		ID:               id,
		Param:            param,
		CyclesUntilEvent: cyclesUntilEvent,
		IsNew:            sched.draining,
	})

	if reschedule {
		sched.reschedule()
	}
}

// Advances the global cycle count and fires all expired events. The
// event set is swept once: every pending event has the accumulated
// cycle count applied to it, events that reach zero are removed and
// their callback is invoked with the overshoot
func (sched *Scheduler) ProcessEvents(elapsedCycles int64) {
	if len(sched.Events) == 0 {
		panicFmt("scheduler: empty event queue")
	}

	sched.CycleCount += elapsedCycles

	if sched.CycleCount < sched.CyclesUntilNextEvent {
		return
	}

	nextEvent := sched.CyclesUntilNextEvent

	sched.draining = true

	for i := 0; i < len(sched.Events); {
		event := &sched.Events[i]

		if !event.IsNew {
			event.CyclesUntilEvent -= sched.CycleCount
		}

		event.IsNew = false

		if event.CyclesUntilEvent <= 0 {
			id := event.ID
			param := event.Param
			residual := event.CyclesUntilEvent

			sched.Events = append(sched.Events[:i], sched.Events[i+1:]...)

			sched.Callbacks[id](param, residual)
		} else {
			i++
		}
	}

	sched.draining = false

	sched.CycleCount -= nextEvent

	sched.reschedule()
}

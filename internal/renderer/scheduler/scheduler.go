// Package scheduler drives per-tick frame updates.
//
// The scheduler does not own a clock. Each Tick decides whether another tick
// is wanted and asks a Requester for it; how and when the tick is delivered
// is up to the host (a ticker goroutine, a game loop, a test).
package scheduler

// State is the lifecycle state of a Scheduler.
type State uint8

const (
	Running State = iota
	Paused
	Destroyed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Frame is the work done on each tick.
type Frame interface {
	// Graphical reports whether the display is in graphics mode.
	Graphical() bool

	// RenderDirtyRows redraws text rows changed since the last tick.
	RenderDirtyRows()

	// FillBuffer asks the device to submit the next graphics frame.
	FillBuffer()
}

// Requester schedules delivery of the next tick.
type Requester interface {
	RequestTick()
}

// Scheduler is the Running/Paused/Destroyed tick state machine.
// It is not safe for concurrent use; the owner serialises calls.
type Scheduler struct {
	state State
	frame Frame
	req   Requester
	ticks uint64
}

// New creates a running scheduler.
func New(frame Frame, req Requester) *Scheduler {
	return &Scheduler{frame: frame, req: req}
}

// State returns the current state.
func (s *Scheduler) State() State {
	return s.state
}

// Ticks returns the number of ticks serviced.
func (s *Scheduler) Ticks() uint64 {
	return s.ticks
}

// Start requests the first tick.
func (s *Scheduler) Start() {
	if s.state == Destroyed {
		return
	}
	s.request()
}

// Tick services one tick and requests the next. In text mode dirty rows
// are rendered whether or not the scheduler is paused; in graphics mode the
// fill step is skipped while paused but the next tick is still requested.
// Returns false if the scheduler is destroyed.
func (s *Scheduler) Tick() bool {
	if s.state == Destroyed {
		return false
	}

	if s.frame != nil {
		if s.frame.Graphical() {
			if s.state != Paused {
				s.frame.FillBuffer()
			}
		} else {
			s.frame.RenderDirtyRows()
		}
	}
	s.ticks++

	// The frame may have destroyed the scheduler.
	if s.state == Destroyed {
		return true
	}
	s.request()
	return true
}

// Pause stops graphics content updates. Idempotent.
func (s *Scheduler) Pause() {
	if s.state == Running {
		s.state = Paused
	}
}

// Resume restarts graphics content updates. Idempotent.
func (s *Scheduler) Resume() {
	if s.state == Paused {
		s.state = Running
	}
}

// Destroy stops the scheduler permanently.
func (s *Scheduler) Destroy() {
	s.state = Destroyed
}

func (s *Scheduler) request() {
	if s.req != nil {
		s.req.RequestTick()
	}
}

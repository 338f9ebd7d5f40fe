// Package timer implements the pomodoro countdown state machine. The engine
// owns no clock: whoever drives it schedules one Tick per second while
// Running reports true.
package timer

// State is the engine's lifecycle position.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	default:
		return "idle"
	}
}

// Engine counts a single session down from a configured duration to zero in
// whole-second steps. Completion is reported exactly once per run.
type Engine struct {
	duration  int
	remaining int
	state     State
}

// New returns an idle engine configured for the given duration in seconds.
// Non-positive durations fall back to a 25 minute session.
func New(durationSeconds int) *Engine {
	if durationSeconds <= 0 {
		durationSeconds = 25 * 60
	}
	return &Engine{duration: durationSeconds, remaining: durationSeconds, state: StateIdle}
}

// Configure replaces the session duration and resets the countdown. It is a
// no-op while the engine is running.
func (e *Engine) Configure(durationSeconds int) bool {
	if e.state == StateRunning || durationSeconds <= 0 {
		return false
	}
	e.duration = durationSeconds
	e.remaining = durationSeconds
	e.state = StateIdle
	return true
}

// Toggle starts the countdown from Idle or Paused and pauses it from
// Running. Toggling after a completed run restarts from the full duration.
func (e *Engine) Toggle() {
	switch e.state {
	case StateRunning:
		e.state = StatePaused
	default:
		if e.remaining == 0 {
			e.remaining = e.duration
		}
		e.state = StateRunning
	}
}

// Reset halts the countdown and restores the full duration.
func (e *Engine) Reset() {
	e.remaining = e.duration
	e.state = StateIdle
}

// Tick advances the countdown by one second. It returns true exactly once,
// on the tick that reaches zero, together with the full configured duration
// in seconds; a session credits its whole length or nothing. Ticks outside
// Running are ignored.
func (e *Engine) Tick() (completed bool, elapsedSeconds int) {
	if e.state != StateRunning {
		return false, 0
	}
	if e.remaining <= 1 {
		e.remaining = 0
		e.state = StateCompleted
		return true, e.duration
	}
	e.remaining--
	return false, 0
}

func (e *Engine) State() State   { return e.state }
func (e *Engine) Running() bool  { return e.state == StateRunning }
func (e *Engine) Remaining() int { return e.remaining }
func (e *Engine) Duration() int  { return e.duration }

// Package timer tracks elapsed wall-clock time across the stages of a
// long-running operation so that success notifications can report both the
// duration of the current stage and the total elapsed time.
package timer

import "time"

// Timer tracks total and per-stage elapsed time.
type Timer interface {
	// Start resets the timer, beginning both the total and the first stage clock.
	Start()
	// NewStage ends the current stage and begins a new one, without affecting
	// the total elapsed time.
	NewStage()
	// GetTiming returns the total elapsed time since Start and the elapsed
	// time since the most recent NewStage (or Start, if NewStage was never
	// called).
	GetTiming() (total, stage time.Duration)
}

// wallClock is the default Timer implementation, backed by time.Now.
type wallClock struct {
	start      time.Time
	stageStart time.Time
}

// New constructs a Timer whose total and stage clocks both begin at
// construction; Start resets them.
func New() Timer {
	now := time.Now()

	return &wallClock{start: now, stageStart: now}
}

func (w *wallClock) Start() {
	now := time.Now()
	w.start = now
	w.stageStart = now
}

func (w *wallClock) NewStage() {
	w.stageStart = time.Now()
}

func (w *wallClock) GetTiming() (time.Duration, time.Duration) {
	now := time.Now()

	return now.Sub(w.start), now.Sub(w.stageStart)
}

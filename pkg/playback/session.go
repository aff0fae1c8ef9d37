// Package playback steps through a completed trace.
//
// A [Session] is a plain value owned by its caller: it holds a log, an index
// into it, a play/pause flag and a speed. Nothing in a session re-runs an
// algorithm; moving backward is just a smaller index.
//
// [Player] and [Animate] add time. Player advances a session on a ticker
// until the end of the log or until its context is cancelled. Animate paces
// any step sequence at a fixed delay. Neither is known to the engines that
// produced the steps.
package playback

import (
	"time"

	"github.com/matzehuels/algotrace/pkg/errors"
	"github.com/matzehuels/algotrace/pkg/trace"
)

// Speed limits and defaults.
const (
	MinSpeed     = 0.25
	MaxSpeed     = 4.0
	DefaultSpeed = 1.0

	DefaultInterval = 800 * time.Millisecond
)

// Session is a cursor over a step log. The zero value is an empty session.
// A Session is not safe for concurrent use.
type Session struct {
	log     trace.Log
	index   int
	playing bool
	speed   float64
	base    time.Duration
}

// NewSession returns a paused session positioned on the first step.
// A non-positive base interval selects DefaultInterval.
func NewSession(log trace.Log, base time.Duration) *Session {
	if base <= 0 {
		base = DefaultInterval
	}
	return &Session{log: log, speed: DefaultSpeed, base: base}
}

// Log returns the session's log.
func (s *Session) Log() trace.Log { return s.log }

// Len returns the number of steps.
func (s *Session) Len() int { return s.log.Len() }

// Index returns the current position, or -1 when the log is empty.
func (s *Session) Index() int {
	if s.log.Empty() {
		return -1
	}
	return s.index
}

// Current returns the step at the current position. It returns false when
// the log is empty.
func (s *Session) Current() (trace.Step, bool) {
	if s.log.Empty() {
		return trace.Step{}, false
	}
	return s.log.At(s.index), true
}

// AtStart reports whether the cursor is on the first step.
func (s *Session) AtStart() bool { return s.index == 0 }

// AtEnd reports whether the cursor is on the last step (or the log is empty).
func (s *Session) AtEnd() bool { return s.index >= s.log.Len()-1 }

// Next moves one step forward. It reports false at the end.
func (s *Session) Next() bool {
	if s.AtEnd() {
		return false
	}
	s.index++
	return true
}

// Prev moves one step back. It reports false at the start.
func (s *Session) Prev() bool {
	if s.index == 0 {
		return false
	}
	s.index--
	return true
}

// Seek moves to step i. It returns a STEP_OUT_OF_RANGE error and leaves the
// position unchanged when i is outside the log.
func (s *Session) Seek(i int) error {
	if i < 0 || i >= s.log.Len() {
		return &errors.StepRangeError{Index: i, Len: s.log.Len()}
	}
	s.index = i
	return nil
}

// First moves to the first step.
func (s *Session) First() { s.index = 0 }

// Last moves to the last step.
func (s *Session) Last() {
	if n := s.log.Len(); n > 0 {
		s.index = n - 1
	}
}

// Play starts auto-advance. Playing from the last step restarts at the
// first. An empty log never plays.
func (s *Session) Play() {
	if s.log.Empty() {
		return
	}
	if s.AtEnd() {
		s.index = 0
	}
	s.playing = true
}

// Pause stops auto-advance.
func (s *Session) Pause() { s.playing = false }

// Toggle switches between playing and paused.
func (s *Session) Toggle() {
	if s.playing {
		s.Pause()
	} else {
		s.Play()
	}
}

// Playing reports whether auto-advance is on.
func (s *Session) Playing() bool { return s.playing }

// Speed returns the playback speed multiplier.
func (s *Session) Speed() float64 {
	if s.speed == 0 {
		return DefaultSpeed
	}
	return s.speed
}

// SetSpeed sets the speed multiplier, clamped to [MinSpeed, MaxSpeed].
func (s *Session) SetSpeed(x float64) {
	s.speed = min(max(x, MinSpeed), MaxSpeed)
}

// Faster doubles the speed.
func (s *Session) Faster() { s.SetSpeed(s.Speed() * 2) }

// Slower halves the speed.
func (s *Session) Slower() { s.SetSpeed(s.Speed() / 2) }

// Interval returns the delay between auto-advanced steps at the current
// speed.
func (s *Session) Interval() time.Duration {
	base := s.base
	if base <= 0 {
		base = DefaultInterval
	}
	return time.Duration(float64(base) / s.Speed())
}

// Tick advances one step if playing. Reaching the last step pauses the
// session. It reports whether the position moved.
func (s *Session) Tick() bool {
	if !s.playing {
		return false
	}
	moved := s.Next()
	if s.AtEnd() {
		s.playing = false
	}
	return moved
}

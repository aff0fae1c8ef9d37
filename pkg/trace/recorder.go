package trace

import (
	"iter"
	"slices"
)

// Recorder appends steps for a single engine operation.
// The zero value is ready to use. A Recorder is not safe for concurrent use.
type Recorder struct {
	steps []Step
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends a step and returns a copy of it.
//
// The snapshot must already be an independent clone of the structure; focus
// and payload are copied here so callers may pass live slices.
func (r *Recorder) Record(kind Kind, focus []string, payload Payload, snap Snapshot, narrative string) Step {
	s := Step{
		Index:     len(r.steps),
		Kind:      kind,
		Focus:     slices.Clone(focus),
		Payload:   ClonePayload(payload),
		Snapshot:  snap,
		Narrative: narrative,
	}
	r.steps = append(r.steps, s)
	return s.clone()
}

// Len returns the number of steps recorded so far.
func (r *Recorder) Len() int { return len(r.steps) }

// Log returns the recorded steps as a log that shares nothing mutable with the
// recorder. Later calls to Record do not affect a previously returned log.
func (r *Recorder) Log() Log {
	return newLog(r.steps)
}

// Log is an ordered, randomly seekable sequence of steps.
// The zero value is an empty log.
type Log struct {
	steps []Step
}

// NewLog builds a log from steps, renumbering indexes from zero.
func NewLog(steps []Step) Log {
	l := newLog(steps)
	for i := range l.steps {
		l.steps[i].Index = i
	}
	return l
}

func newLog(steps []Step) Log {
	out := make([]Step, len(steps))
	for i, s := range steps {
		out[i] = s.clone()
	}
	return Log{steps: out}
}

// Len returns the number of steps.
func (l Log) Len() int { return len(l.steps) }

// Empty reports whether the log has no steps.
func (l Log) Empty() bool { return len(l.steps) == 0 }

// At returns a copy of step i. It panics if i is out of range.
func (l Log) At(i int) Step { return l.steps[i].clone() }

// Last returns a copy of the final step and true, or false for an empty log.
func (l Log) Last() (Step, bool) {
	if len(l.steps) == 0 {
		return Step{}, false
	}
	return l.At(len(l.steps) - 1), true
}

// Steps returns copies of all steps.
func (l Log) Steps() []Step {
	out := make([]Step, len(l.steps))
	for i, s := range l.steps {
		out[i] = s.clone()
	}
	return out
}

// All iterates over (index, step) pairs in order.
func (l Log) All() iter.Seq2[int, Step] {
	return func(yield func(int, Step) bool) {
		for i, s := range l.steps {
			if !yield(i, s.clone()) {
				return
			}
		}
	}
}

// Kinds returns the kind of every step in order.
func (l Log) Kinds() []Kind {
	kinds := make([]Kind, len(l.steps))
	for i, s := range l.steps {
		kinds[i] = s.Kind
	}
	return kinds
}

// Count returns how many steps have the given kind.
func (l Log) Count(kind Kind) int {
	n := 0
	for _, s := range l.steps {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

// Concat returns a new log with the steps of l followed by those of other,
// renumbered from zero.
func (l Log) Concat(other Log) Log {
	return Join(l, other)
}

// Join concatenates logs in order into one log renumbered from zero. Each
// step is copied once.
func Join(logs ...Log) Log {
	n := 0
	for _, l := range logs {
		n += len(l.steps)
	}
	steps := make([]Step, 0, n)
	for _, l := range logs {
		steps = append(steps, l.steps...)
	}
	return NewLog(steps)
}

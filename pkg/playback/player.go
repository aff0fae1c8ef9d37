package playback

import (
	"context"
	"iter"
	"time"

	"github.com/matzehuels/algotrace/pkg/trace"
)

// Player drives a session on a ticker.
type Player struct {
	// Loop restarts from the first step instead of stopping at the last.
	Loop bool
}

// Run plays s from its current position, calling onStep with the current
// step first and then after every advance. It returns nil once the session
// pauses at the last step and ctx.Err() on cancellation. Speed changes made
// to s between ticks take effect on the next tick.
func (p *Player) Run(ctx context.Context, s *Session, onStep func(trace.Step)) error {
	s.Play()
	cur, ok := s.Current()
	if !ok {
		return nil
	}
	onStep(cur)

	interval := s.Interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Pause()
			return ctx.Err()
		case <-ticker.C:
			if err := ctx.Err(); err != nil {
				s.Pause()
				return err
			}
			if s.Tick() {
				cur, _ = s.Current()
				onStep(cur)
			}
			if !s.Playing() {
				if !p.Loop {
					return nil
				}
				s.Play()
				if s.Len() > 1 {
					cur, _ = s.Current()
					onStep(cur)
				}
			}
			if d := s.Interval(); d != interval {
				interval = d
				ticker.Reset(d)
			}
		}
	}
}

// Animate calls fn for every step of seq, waiting delay between steps. It
// stops early when fn returns an error or ctx is cancelled.
func Animate(ctx context.Context, seq iter.Seq2[int, trace.Step], delay time.Duration, fn func(int, trace.Step) error) error {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	first := true
	for i, step := range seq {
		if !first && delay > 0 {
			if timer == nil {
				timer = time.NewTimer(delay)
			} else {
				timer.Reset(delay)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
		first = false
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(i, step); err != nil {
			return err
		}
	}
	return nil
}

package app

import (
	"sort"
	"time"
)

// Handle identifies a scheduled callback.
type Handle uint64

type timer struct {
	id  Handle
	due time.Duration
	fn  func()
}

// Scheduler is a virtual clock with cancellable delayed calls. Time moves only
// through Advance; it is not safe for concurrent use.
type Scheduler struct {
	now    time.Duration
	seq    Handle
	timers []*timer
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns the current clock offset.
func (s *Scheduler) Now() time.Duration { return s.now }

// After schedules fn to run once delay has elapsed. Negative delays run on the next Advance.
func (s *Scheduler) After(delay time.Duration, fn func()) Handle {
	if delay < 0 {
		delay = 0
	}
	s.seq++
	s.timers = append(s.timers, &timer{id: s.seq, due: s.now + delay, fn: fn})
	return s.seq
}

// Cancel removes a pending callback. It reports false if h already fired or was cancelled.
func (s *Scheduler) Cancel(h Handle) bool {
	for i, t := range s.timers {
		if t.id == h {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return true
		}
	}
	return false
}

// CancelAll drops every pending callback.
func (s *Scheduler) CancelAll() {
	s.timers = nil
}

// Pending returns the number of callbacks still waiting.
func (s *Scheduler) Pending() int { return len(s.timers) }

// Advance moves the clock forward by dt, running due callbacks in due-time
// order (ties in scheduling order). Callbacks may schedule or cancel others;
// anything that becomes due before the new time also runs.
func (s *Scheduler) Advance(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	target := s.now + dt
	for {
		next := s.popDue(target)
		if next == nil {
			break
		}
		s.now = next.due
		next.fn()
	}
	s.now = target
}

func (s *Scheduler) popDue(limit time.Duration) *timer {
	if len(s.timers) == 0 {
		return nil
	}
	sort.SliceStable(s.timers, func(i, j int) bool {
		if s.timers[i].due != s.timers[j].due {
			return s.timers[i].due < s.timers[j].due
		}
		return s.timers[i].id < s.timers[j].id
	})
	first := s.timers[0]
	if first.due > limit {
		return nil
	}
	s.timers = s.timers[1:]
	return first
}

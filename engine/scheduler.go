package engine

import (
	"sync"
	"time"
)

// WallScheduler is a Scheduler backed by the wall clock. One-shot timers use
// time.AfterFunc; repeating timers run a ticker goroutine until cancelled.
type WallScheduler struct {
	mu     sync.Mutex
	timers map[TimerID]func() // handle -> stop
}

func NewWallScheduler() *WallScheduler {
	return &WallScheduler{timers: map[TimerID]func(){}}
}

func (s *WallScheduler) Now() time.Time { return time.Now() }

func (s *WallScheduler) ScheduleTimer(delay time.Duration, fn func(), oneShot bool) TimerID {
	id := NewTimerID()
	s.mu.Lock()
	defer s.mu.Unlock()
	if oneShot {
		t := time.AfterFunc(delay, func() {
			s.mu.Lock()
			_, live := s.timers[id]
			delete(s.timers, id)
			s.mu.Unlock()
			if live {
				fn()
			}
		})
		s.timers[id] = func() { t.Stop() }
		return id
	}
	done := make(chan struct{})
	ticker := time.NewTicker(delay)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	var once sync.Once
	s.timers[id] = func() { once.Do(func() { close(done) }) }
	return id
}

func (s *WallScheduler) CancelTimer(id TimerID) {
	s.mu.Lock()
	stop, ok := s.timers[id]
	delete(s.timers, id)
	s.mu.Unlock()
	if ok {
		stop()
	}
}

// CancelAll stops every outstanding timer.
func (s *WallScheduler) CancelAll() {
	s.mu.Lock()
	stops := make([]func(), 0, len(s.timers))
	for id, stop := range s.timers {
		stops = append(stops, stop)
		delete(s.timers, id)
	}
	s.mu.Unlock()
	for _, stop := range stops {
		stop()
	}
}

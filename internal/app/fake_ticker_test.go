package app

import (
	"sync"
	"time"
)

// fakeTicker delivers ticks only when advanced.
type fakeTicker struct {
	ch chan time.Time
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               {}

// advance delivers n ticks; each send returns once the timer goroutine took it.
func (f *fakeTicker) advance(n int) {
	for i := 0; i < n; i++ {
		f.ch <- time.Time{}
	}
}

type fakeTickers struct {
	mu      sync.Mutex
	created []*fakeTicker
}

func (f *fakeTickers) factory(time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time)}
	f.created = append(f.created, t)
	return t
}

func (f *fakeTickers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func (f *fakeTickers) last() *fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created[len(f.created)-1]
}

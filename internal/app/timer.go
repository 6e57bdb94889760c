package app

import (
	"sync"
	"time"
)

// Ticker is the subset of *time.Ticker the session timer needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a ticker firing every d.
type TickerFactory func(d time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewRealTicker wraps time.NewTicker.
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// Timer counts whole seconds while running. Each tick adds one second.
type Timer struct {
	newTicker TickerFactory
	onTick    func(elapsed int)

	mu      sync.Mutex
	elapsed int
	stop    chan struct{}
	done    chan struct{}
}

// NewTimer builds a stopped timer. onTick may be nil; it runs on the tick goroutine.
func NewTimer(newTicker TickerFactory, onTick func(elapsed int)) *Timer {
	if newTicker == nil {
		newTicker = NewRealTicker
	}
	return &Timer{newTicker: newTicker, onTick: onTick}
}

// NewStoppedTimer returns a timer frozen at elapsed seconds, as used by review sessions.
func NewStoppedTimer(elapsed int) *Timer {
	return &Timer{newTicker: NewRealTicker, elapsed: elapsed}
}

// Start begins counting. Starting a running timer does nothing.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return
	}
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go t.run(t.newTicker(time.Second), t.stop, t.done)
}

// Stop halts counting and waits for the tick goroutine to exit, so Elapsed is stable afterwards.
// Stopping a stopped timer does nothing.
func (t *Timer) Stop() {
	t.mu.Lock()
	if t.stop == nil {
		t.mu.Unlock()
		return
	}
	close(t.stop)
	done := t.done
	t.stop, t.done = nil, nil
	t.mu.Unlock()
	<-done
}

// Running reports whether the timer is counting.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

// Elapsed returns the counted seconds.
func (t *Timer) Elapsed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsed
}

func (t *Timer) run(ticker Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case _, ok := <-ticker.C():
			if !ok {
				// tick source went away; time stops advancing
				<-stop
				return
			}
			t.mu.Lock()
			t.elapsed++
			elapsed := t.elapsed
			t.mu.Unlock()
			if t.onTick != nil {
				t.onTick(elapsed)
			}
		}
	}
}

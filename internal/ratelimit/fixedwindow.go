// Package ratelimit implements the per-client message limiter: a fixed
// window counter keyed by client ID. The counter resets when a window has
// fully elapsed rather than sliding, so bursts straddling a window edge can
// briefly reach twice the limit. That matches the wire contract and is kept
// as is.
package ratelimit

import (
	"sync"
	"time"
)

// DefaultMaxClients bounds how many client windows are tracked at once.
const DefaultMaxClients = 10000

type clientWindow struct {
	start time.Time
	count int
}

type FixedWindow struct {
	limit      int
	window     time.Duration
	maxClients int
	now        func() time.Time

	mu      sync.Mutex
	clients map[string]*clientWindow

	stopCh chan struct{}
	doneCh chan struct{}
}

func New(limit int, window time.Duration, maxClients int) *FixedWindow {
	if window <= 0 {
		window = time.Second
	}
	if maxClients <= 0 {
		maxClients = DefaultMaxClients
	}
	return &FixedWindow{
		limit:      limit,
		window:     window,
		maxClients: maxClients,
		now:        time.Now,
		clients:    make(map[string]*clientWindow),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Allow reports whether clientID may log another message now and records it
// if so. The whole check-and-record is one critical section.
func (f *FixedWindow) Allow(clientID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	w, ok := f.clients[clientID]
	if !ok {
		f.evictLocked(now)
		f.clients[clientID] = &clientWindow{start: now, count: 1}
		return true
	}
	if now.Sub(w.start) > f.window {
		w.start = now
		w.count = 1
		return true
	}
	if w.count < f.limit {
		w.count++
		return true
	}
	return false
}

// Tracked returns how many client windows are currently held.
func (f *FixedWindow) Tracked() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// evictLocked makes room for one more client once the cap is reached.
// Expired windows go first; failing that, the stalest window.
func (f *FixedWindow) evictLocked(now time.Time) {
	if len(f.clients) < f.maxClients {
		return
	}
	for id, w := range f.clients {
		if now.Sub(w.start) > f.window {
			delete(f.clients, id)
		}
	}
	if len(f.clients) < f.maxClients {
		return
	}
	var oldestID string
	var oldest time.Time
	for id, w := range f.clients {
		if oldestID == "" || w.start.Before(oldest) {
			oldestID, oldest = id, w.start
		}
	}
	delete(f.clients, oldestID)
}

// Run sweeps long-expired client windows until Stop is called.
func (f *FixedWindow) Run() {
	defer close(f.doneCh)

	ticker := time.NewTicker(f.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.sweep()
		case <-f.stopCh:
			return
		}
	}
}

// Stop signals the Run loop to exit.
func (f *FixedWindow) Stop() {
	close(f.stopCh)
}

// Wait blocks until the Run loop has completely finished.
func (f *FixedWindow) Wait() {
	<-f.doneCh
}

func (f *FixedWindow) sweep() {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	for id, w := range f.clients {
		if now.Sub(w.start) > 2*f.window {
			delete(f.clients, id)
		}
	}
}

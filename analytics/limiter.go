package analytics

import (
	"sync"
	"time"
)

// windowCounter caps events per key in fixed windows. Counts reset when a
// key's window expires.
type windowCounter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	now    func() time.Time
	slots  map[string]*slot
}

type slot struct {
	start time.Time
	n     int
}

func newWindowCounter(max int, window time.Duration) *windowCounter {
	return &windowCounter{
		max:    max,
		window: window,
		now:    time.Now,
		slots:  make(map[string]*slot),
	}
}

// allow records an event for key and reports whether it is within the cap.
func (w *windowCounter) allow(key string) bool {
	now := w.now()
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.slots) > 10000 {
		w.sweep(now)
	}
	sl, ok := w.slots[key]
	if !ok || now.Sub(sl.start) >= w.window {
		w.slots[key] = &slot{start: now, n: 1}
		return true
	}
	if sl.n >= w.max {
		return false
	}
	sl.n++
	return true
}

// sweep drops expired slots. Callers hold w.mu.
func (w *windowCounter) sweep(now time.Time) {
	for k, sl := range w.slots {
		if now.Sub(sl.start) >= w.window {
			delete(w.slots, k)
		}
	}
}

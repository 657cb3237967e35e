package worker

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// SaveDebouncer coalesces bursts of save requests per key. A save runs once
// the key has been quiet for the configured delay; scheduling again inside
// the window cancels the pending save and restarts the timer. Saves of one
// key never overlap: a save that fires while an earlier one is still
// writing waits for it.
type SaveDebouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*pendingSave
	locks   map[string]*keyLock
	running sync.WaitGroup
}

type pendingSave struct {
	timer *time.Timer
	fn    func()
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewSaveDebouncer constructs a SaveDebouncer.
func NewSaveDebouncer(delay time.Duration) *SaveDebouncer {
	return &SaveDebouncer{
		delay:   delay,
		pending: make(map[string]*pendingSave),
		locks:   make(map[string]*keyLock),
	}
}

// Schedule registers fn as the save for key, replacing any save still
// waiting for the same key.
func (d *SaveDebouncer) Schedule(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
	}
	p := &pendingSave{fn: fn}
	p.timer = time.AfterFunc(d.delay, func() { d.fire(key, p) })
	d.pending[key] = p
}

// Cancel drops the pending save for key. It reports whether one was waiting.
func (d *SaveDebouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.take(key)
	if ok {
		p.timer.Stop()
	}
	return ok
}

// FlushKey runs the pending save for key now, after any save of the same key
// still in flight, and returns once it has completed. It reports whether a
// save was waiting.
func (d *SaveDebouncer) FlushKey(key string) bool {
	d.mu.Lock()
	p, ok := d.take(key)
	if !ok {
		d.mu.Unlock()
		return false
	}
	p.timer.Stop()
	d.running.Add(1)
	d.mu.Unlock()

	d.run(key, p.fn)
	return true
}

// Pending returns the number of keys with a save waiting.
func (d *SaveDebouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Flush runs every pending save immediately and waits for saves already in
// flight. It is used on shutdown so the last edits are not lost.
func (d *SaveDebouncer) Flush() {
	d.mu.Lock()
	keys := make([]string, 0, len(d.pending))
	saves := make([]*pendingSave, 0, len(d.pending))
	for key, p := range d.pending {
		p.timer.Stop()
		keys = append(keys, key)
		saves = append(saves, p)
		delete(d.pending, key)
	}
	d.running.Add(len(saves))
	d.mu.Unlock()

	if len(saves) > 0 {
		log.Info().Int("count", len(saves)).Msg("Flushing pending saves")
	}
	for i, p := range saves {
		d.run(keys[i], p.fn)
	}
	d.running.Wait()
}

func (d *SaveDebouncer) fire(key string, p *pendingSave) {
	d.mu.Lock()
	if d.pending[key] != p {
		// Replaced or flushed after the timer fired.
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.running.Add(1)
	d.mu.Unlock()

	d.run(key, p.fn)
}

// take removes the pending save of key. d.mu must be held.
func (d *SaveDebouncer) take(key string) (*pendingSave, bool) {
	p, ok := d.pending[key]
	if ok {
		delete(d.pending, key)
	}
	return p, ok
}

// run executes fn holding the lock of key. The caller has already added
// the save to d.running.
func (d *SaveDebouncer) run(key string, fn func()) {
	defer d.running.Done()

	d.mu.Lock()
	l, ok := d.locks[key]
	if !ok {
		l = &keyLock{}
		d.locks[key] = l
	}
	l.refs++
	d.mu.Unlock()

	l.mu.Lock()
	defer func() {
		l.mu.Unlock()
		d.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(d.locks, key)
		}
		d.mu.Unlock()
	}()

	fn()
}

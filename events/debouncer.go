package events

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers per group into one call made
// after the group has been quiet for delay.
type Debouncer struct {
	delay time.Duration
	fn    func(groupID int64)

	mu          sync.Mutex
	timers      map[int64]*time.Timer
	generations map[int64]uint64
	stopped     bool
}

func NewDebouncer(delay time.Duration, fn func(groupID int64)) *Debouncer {
	return &Debouncer{
		delay:       delay,
		fn:          fn,
		timers:      map[int64]*time.Timer{},
		generations: map[int64]uint64{},
	}
}

// Trigger schedules fn for groupID, restarting the quiet period
func (d *Debouncer) Trigger(groupID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.generations[groupID]++
	generation := d.generations[groupID]
	if timer, ok := d.timers[groupID]; ok {
		timer.Stop()
	}
	d.timers[groupID] = time.AfterFunc(d.delay, func() { d.fire(groupID, generation) })
}

// Generations only grow, so a timer that lost the race with a newer
// Trigger always sees a stale generation
func (d *Debouncer) fire(groupID int64, generation uint64) {
	d.mu.Lock()
	if d.stopped || d.generations[groupID] != generation {
		d.mu.Unlock()
		return
	}
	delete(d.timers, groupID)
	d.mu.Unlock()

	d.fn(groupID)
}

// Pending returns how many groups are waiting to fire
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

// Stop cancels every pending call; later triggers are ignored
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for groupID, timer := range d.timers {
		timer.Stop()
		delete(d.timers, groupID)
	}
}

// Package gametime implements the campaign's simulated calendar clock and
// its day-granular scheduler.
//
// The Clock is a pure data structure: it owns the current in-game date,
// run/pause state and playback speed, but no timers. The session loop drives
// it by calling Tick (one day), AdvanceDays (fast-forward) or Reset. Each of
// those evaluates the schedule window (prevDay, newDay], commits the new
// date, and returns the callbacks that came due so the caller can invoke
// them after the commit. That ordering keeps a callback from ever observing
// a half-advanced date or re-entering the same advance.
//
// Not goroutine-safe; all access happens on the session loop goroutine.
package gametime

import (
	"fmt"
	"time"
)

// DefaultSpeedMs is the default real-time cost of one simulated day.
const DefaultSpeedMs = 500

type onceEntry struct {
	id        string
	dayNumber int
	cb        func()
}

type everyEntry struct {
	id            string
	nextDayNumber int
	intervalDays  int
	cb            func()
}

// Clock advances exactly one simulated day per tick and fires day-granular
// schedules even across multi-day jumps.
type Clock struct {
	epoch   time.Time
	current time.Time
	running bool
	speedMs int

	once  []*onceEntry
	every []*everyEntry

	nextID uint64
}

// New returns a stopped clock positioned at the day-truncated start date.
func New(start time.Time) *Clock {
	epoch := StartOfDay(start)
	return &Clock{
		epoch:   epoch,
		current: epoch,
		speedMs: DefaultSpeedMs,
	}
}

// StartOfDay truncates t to UTC midnight. All clock arithmetic and schedule
// comparisons happen at day granularity.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayNumber is the number of whole days since the Unix epoch.
func DayNumber(t time.Time) int {
	return int(StartOfDay(t).Unix() / 86400)
}

func (c *Clock) Now() time.Time { return c.current }
func (c *Clock) Epoch() time.Time { return c.epoch }
func (c *Clock) Running() bool { return c.running }
func (c *Clock) SpeedMs() int { return c.speedMs }
func (c *Clock) CurrentDay() int { return DayNumber(c.current) }

// Start begins ticking; no-op if already running.
func (c *Clock) Start() { c.running = true }

// Stop pauses ticking; no-op if already stopped.
func (c *Clock) Stop() { c.running = false }

// Toggle flips the run state and reports the new state.
func (c *Clock) Toggle() bool {
	c.running = !c.running
	return c.running
}

// SetSpeed changes the real-time milliseconds per simulated day. Values
// below 1 are ignored. The session loop picks the new cadence up on its
// next timer cycle.
func (c *Clock) SetSpeed(msPerDay int) {
	if msPerDay > 0 {
		c.speedMs = msPerDay
	}
}

// Tick advances the clock by one day and returns the callbacks due in the
// crossed window. The date is committed before Tick returns, so callbacks
// invoked by the caller always observe the new date.
func (c *Clock) Tick() []func() { return c.AdvanceDays(1) }

// AdvanceDays jumps the date forward by n days, evaluating every schedule
// in (prevDay, prevDay+n]. A recurring entry fires once per elapsed
// interval, never collapsed into one, so cumulative effects survive large
// skips. n <= 0 is a no-op.
func (c *Clock) AdvanceDays(n int) []func() {
	if n <= 0 {
		return nil
	}
	prevDay := DayNumber(c.current)
	next := StartOfDay(c.current.AddDate(0, 0, n))
	newDay := DayNumber(next)
	due := c.dueBetween(prevDay, newDay)
	c.current = next
	return due
}

// Reset stops the clock and moves it to the day-truncated date (the epoch
// when zero). A forward move evaluates the skipped window exactly like a
// fast-forward; a backward move fires nothing, and Once entries consumed
// earlier stay consumed.
func (c *Clock) Reset(date time.Time) []func() {
	target := c.epoch
	if !date.IsZero() {
		target = StartOfDay(date)
	}
	prevDay := DayNumber(c.current)
	newDay := DayNumber(target)
	c.current = target
	c.running = false
	if newDay > prevDay {
		return c.dueBetween(prevDay, newDay)
	}
	return nil
}

// dueBetween gathers the callbacks whose fire day falls in (prevDay, newDay],
// consuming Once entries and advancing recurring entries as it goes.
func (c *Clock) dueBetween(prevDay, newDay int) []func() {
	if newDay <= prevDay {
		return nil
	}
	var due []func()

	kept := c.once[:0]
	for _, e := range c.once {
		if e.dayNumber > prevDay && e.dayNumber <= newDay {
			due = append(due, e.cb)
			continue
		}
		kept = append(kept, e)
	}
	c.once = kept

	for _, e := range c.every {
		for e.nextDayNumber <= newDay {
			if e.nextDayNumber > prevDay {
				due = append(due, e.cb)
			}
			e.nextDayNumber += e.intervalDays
		}
	}
	return due
}

// ScheduleOnce registers cb to fire when the clock first crosses the
// day-truncated date. The entry is removed after firing.
func (c *Clock) ScheduleOnce(date time.Time, cb func()) string {
	c.nextID++
	id := fmt.Sprintf("once_%d", c.nextID)
	c.once = append(c.once, &onceEntry{id: id, dayNumber: DayNumber(date), cb: cb})
	return id
}

// ScheduleEvery registers cb to fire every intervalDays, first firing
// intervalDays from the current date.
func (c *Clock) ScheduleEvery(intervalDays int, cb func()) string {
	return c.ScheduleEveryIn(intervalDays, intervalDays, cb)
}

// ScheduleEveryIn is ScheduleEvery with an explicit offset for the first
// fire. intervalDays < 1 is clamped to 1.
func (c *Clock) ScheduleEveryIn(intervalDays, startInDays int, cb func()) string {
	if intervalDays < 1 {
		intervalDays = 1
	}
	c.nextID++
	id := fmt.Sprintf("every_%d", c.nextID)
	c.every = append(c.every, &everyEntry{
		id:            id,
		nextDayNumber: DayNumber(c.current) + startInDays,
		intervalDays:  intervalDays,
		cb:            cb,
	})
	return id
}

// Cancel removes a schedule by id. Safe on unknown or already-fired ids,
// and safe to call from inside a callback delivered by the same advance.
func (c *Clock) Cancel(id string) {
	for i, e := range c.once {
		if e.id == id {
			c.once = append(c.once[:i], c.once[i+1:]...)
			return
		}
	}
	for i, e := range c.every {
		if e.id == id {
			c.every = append(c.every[:i], c.every[i+1:]...)
			return
		}
	}
}

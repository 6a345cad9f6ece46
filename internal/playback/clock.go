package playback

import "time"

// Clock tracks elapsed playback time against an injected wall clock.
// Elapsed time is derived from a single origin, so pauses, seeks and
// nudges never accumulate drift. Clock is not safe for concurrent use;
// the Controller only touches it from its own goroutine.
type Clock struct {
	now      func() time.Time
	origin   time.Time
	pausedAt time.Time
	paused   bool
}

// NewClock returns a paused clock reading zero. A nil now uses time.Now.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	t := now()
	return &Clock{
		now:      now,
		origin:   t,
		pausedAt: t,
		paused:   true,
	}
}

// Start sets elapsed to zero at this instant and runs the clock.
func (c *Clock) Start() {
	c.origin = c.now()
	c.paused = false
}

// Pause freezes the reading. Pausing twice keeps the first pause point.
func (c *Clock) Pause() {
	if c.paused {
		return
	}
	c.pausedAt = c.now()
	c.paused = true
}

// Resume shifts the origin by the time spent paused.
func (c *Clock) Resume() {
	if !c.paused {
		return
	}
	c.origin = c.origin.Add(c.now().Sub(c.pausedAt))
	c.paused = false
}

// Seek makes the clock read exactly target, paused or not.
func (c *Clock) Seek(target time.Duration) {
	now := c.now()
	c.origin = now.Add(-target)
	if c.paused {
		c.pausedAt = now
	}
}

// Nudge moves the reading by delta; positive is forward. The pause point
// stays put, so a paused reading moves as well and Resume keeps it.
func (c *Clock) Nudge(delta time.Duration) {
	c.origin = c.origin.Add(-delta)
}

// Elapsed may be negative after a backward nudge past zero.
func (c *Clock) Elapsed() time.Duration {
	if c.paused {
		return c.pausedAt.Sub(c.origin)
	}
	return c.now().Sub(c.origin)
}

func (c *Clock) Paused() bool {
	return c.paused
}

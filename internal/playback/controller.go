package playback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zantac/OSN/internal/logging"
	"github.com/zantac/OSN/internal/subtitle"
)

const DefaultTickInterval = 100 * time.Millisecond

var (
	ErrNoTrack    = errors.New("no subtitle track loaded")
	ErrNotStopped = errors.New("playback session already running")
	ErrNotActive  = errors.New("no active playback session")
	ErrCueRange   = errors.New("cue index out of range")
	ErrClosed     = errors.New("controller is not running")
	ErrEmptyTrack = errors.New("subtitle track has no cues")
)

// State of the playback session.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// Options configures a Controller.
type Options struct {
	// Now is the monotonic time source; nil uses time.Now.
	Now func() time.Time

	// TickInterval is the cadence of elapsed/cue notifications while playing.
	TickInterval time.Duration

	Logger *logging.Logger
	Sink   Sink
}

// Status is a point-in-time copy of the session state.
type Status struct {
	State     State
	Elapsed   time.Duration
	Total     time.Duration
	Index     int
	Cues      int
	Scrubbing bool
}

// Controller owns the playback session. All session state lives on the
// goroutine started by Run; public methods post closures to it and wait
// for them to finish, so commands and ticks never interleave.
//
// Run must be running before any other method is called: until it starts,
// methods block, and once it has returned they fail with ErrClosed.
type Controller struct {
	interval time.Duration
	logger   *logging.Logger

	cmds   chan func()
	done   chan struct{}
	events *dispatcher

	// owned by the Run goroutine
	clock     *Clock
	sched     *scheduler
	track     *subtitle.Track
	total     time.Duration
	state     State
	lastIndex int
	scrubbing bool
}

func NewController(opts Options) *Controller {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	c := &Controller{
		interval:  opts.TickInterval,
		logger:    logging.OrNop(opts.Logger).Named("playback"),
		cmds:      make(chan func()),
		done:      make(chan struct{}),
		events:    newDispatcher(opts.Sink),
		clock:     NewClock(opts.Now),
		lastIndex: NoCue,
	}
	c.sched = newScheduler(c.post)
	return c
}

// Run processes commands and ticks until ctx is cancelled. Pending timers
// are cancelled and queued events are delivered before it returns.
func (c *Controller) Run(ctx context.Context) error {
	defer c.events.close()
	defer close(c.done)
	defer c.sched.cancelAll()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-c.cmds:
			fn()
		}
	}
}

// do runs fn on the controller goroutine and waits for it. It blocks
// until Run is receiving.
func (c *Controller) do(fn func()) error {
	finished := make(chan struct{})
	select {
	case c.cmds <- func() { fn(); close(finished) }:
	case <-c.done:
		return ErrClosed
	}
	<-finished
	return nil
}

func (c *Controller) post(fn func()) bool {
	select {
	case c.cmds <- fn:
		return true
	case <-c.done:
		return false
	}
}

func (c *Controller) call(fn func() error) error {
	var err error
	if doErr := c.do(func() { err = fn() }); doErr != nil {
		return doErr
	}
	return err
}

// Load installs track for the next Play. Only allowed while stopped.
func (c *Controller) Load(track *subtitle.Track) error {
	return c.call(func() error { return c.load(track) })
}

// Play starts a session from zero with the loaded track.
func (c *Controller) Play() error {
	return c.call(c.play)
}

func (c *Controller) Pause() error {
	return c.call(c.pause)
}

func (c *Controller) Resume() error {
	return c.call(c.resume)
}

// TogglePause pauses a playing session and resumes a paused one.
func (c *Controller) TogglePause() error {
	return c.call(func() error {
		if c.state == Paused {
			return c.resume()
		}
		return c.pause()
	})
}

// Seek sets elapsed to target and refreshes the displayed cue at once.
func (c *Controller) Seek(target time.Duration) error {
	return c.call(func() error { return c.seek(target) })
}

// Nudge shifts elapsed by delta, positive forward, and refreshes at once.
func (c *Controller) Nudge(delta time.Duration) error {
	return c.call(func() error {
		if err := c.requireActive("nudge"); err != nil {
			return err
		}
		c.clock.Nudge(delta)
		c.logger.Debugw("Nudged playback", "delta", delta, "elapsed", c.clock.Elapsed())
		c.publish()
		return nil
	})
}

// JumpCue seeks to the start of the neighbouring cue.
func (c *Controller) JumpCue(dir Direction) error {
	return c.call(func() error {
		if err := c.requireActive("jump"); err != nil {
			return err
		}
		target := JumpIndex(c.track, c.lastIndex, dir)
		c.logger.Debugw("Jumping to cue", "direction", dir, "from", c.lastIndex, "to", target)
		return c.seek(c.track.Cue(target).Start)
	})
}

// SeekToCue seeks to the start of cue index.
func (c *Controller) SeekToCue(index int) error {
	return c.call(func() error {
		if err := c.requireActive("seek to cue"); err != nil {
			return err
		}
		if index < 0 || index >= c.track.Len() {
			return fmt.Errorf("%w: %d of %d", ErrCueRange, index, c.track.Len())
		}
		return c.seek(c.track.Cue(index).Start)
	})
}

// BeginScrub suppresses elapsed notifications while an external seek
// control is being dragged.
func (c *Controller) BeginScrub() error {
	return c.call(func() error {
		if err := c.requireActive("scrub"); err != nil {
			return err
		}
		c.scrubbing = true
		c.sched.cancel(taskTick)
		c.sched.cancel(taskScrubResume)
		return nil
	})
}

// EndScrub lifts the suppression. A playing session resumes ticking on the
// next loop turn.
func (c *Controller) EndScrub() error {
	return c.call(func() error {
		if !c.scrubbing {
			return nil
		}
		c.scrubbing = false
		if c.state == Playing {
			c.sched.schedule(taskScrubResume, 0, c.tick)
		}
		return nil
	})
}

// Stop ends the session, releases the track and emits PlaybackStopped.
// Stopping while stopped still emits.
func (c *Controller) Stop() error {
	return c.do(c.stop)
}

// Snapshot returns the current session state.
func (c *Controller) Snapshot() Status {
	var st Status
	_ = c.do(func() {
		st = Status{
			State:     c.state,
			Total:     c.total,
			Index:     c.lastIndex,
			Scrubbing: c.scrubbing,
		}
		if c.track != nil {
			st.Cues = c.track.Len()
		}
		if c.state != Stopped {
			st.Elapsed = c.clock.Elapsed()
		}
	})
	return st
}

func (c *Controller) load(track *subtitle.Track) error {
	if track == nil || track.Len() == 0 {
		c.logger.Warnw("Ignoring load of empty track")
		return ErrEmptyTrack
	}
	if c.state != Stopped {
		c.logger.Warnw("Ignoring load while a session is running", "state", c.state)
		return ErrNotStopped
	}
	c.track = track
	c.total = track.TotalDuration()
	c.lastIndex = NoCue
	return nil
}

func (c *Controller) play() error {
	if c.track == nil {
		c.logger.Warnw("Cannot start playback without a track")
		return ErrNoTrack
	}
	if c.state != Stopped {
		c.logger.Warnw("Ignoring play while a session is running", "state", c.state)
		return ErrNotStopped
	}

	c.clock.Start()
	c.state = Playing
	c.lastIndex = NoCue
	c.scrubbing = false
	c.logger.Infow("Playback started", "cues", c.track.Len(), "total", c.total)
	c.tick()
	return nil
}

func (c *Controller) pause() error {
	switch c.state {
	case Stopped:
		c.logger.Warnw("Ignoring pause without a session")
		return ErrNotActive
	case Paused:
		return nil
	}
	c.clock.Pause()
	c.state = Paused
	c.sched.cancel(taskTick)
	c.sched.cancel(taskScrubResume)
	c.logger.Debugw("Playback paused", "elapsed", c.clock.Elapsed())
	return nil
}

func (c *Controller) resume() error {
	switch c.state {
	case Stopped:
		c.logger.Warnw("Ignoring resume without a session")
		return ErrNotActive
	case Playing:
		return nil
	}
	c.clock.Resume()
	c.state = Playing
	c.logger.Debugw("Playback resumed", "elapsed", c.clock.Elapsed())
	if !c.scrubbing {
		c.tick()
	}
	return nil
}

func (c *Controller) seek(target time.Duration) error {
	if err := c.requireActive("seek"); err != nil {
		return err
	}
	c.clock.Seek(target)
	c.publish()
	return nil
}

func (c *Controller) stop() {
	c.sched.cancelAll()
	if c.state != Stopped {
		c.clock.Pause()
		c.logger.Infow("Playback stopped", "elapsed", c.clock.Elapsed())
	}
	c.track = nil
	c.total = 0
	c.state = Stopped
	c.lastIndex = NoCue
	c.scrubbing = false
	c.events.emit(PlaybackStopped{})
}

func (c *Controller) requireActive(op string) error {
	if c.state == Stopped || c.track == nil {
		c.logger.Warnw("Ignoring command without a session", "op", op)
		return ErrNotActive
	}
	return nil
}

// tick publishes the current position and schedules the next tick.
func (c *Controller) tick() {
	if c.state != Playing || c.scrubbing || c.track == nil {
		return
	}
	c.publish()
	c.sched.schedule(taskTick, c.interval, c.tick)
}

// publish emits ActiveCueChanged when the resolved cue differs from the
// last one, and ElapsedTimeChanged unless scrubbing.
func (c *Controller) publish() {
	elapsed := c.clock.Elapsed()
	index := Resolve(c.track, elapsed)
	if index != c.lastIndex {
		c.lastIndex = index
		text := ""
		if index != NoCue {
			text = c.track.Cue(index).Text
		}
		c.events.emit(ActiveCueChanged{Index: index, Text: text})
	}
	if !c.scrubbing {
		c.events.emit(ElapsedTimeChanged{Elapsed: elapsed, Total: c.total})
	}
}

// emit queues an event from outside the controller goroutine.
func (c *Controller) emit(ev Event) {
	c.events.emit(ev)
}

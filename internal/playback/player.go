package playback

import (
	"context"
	"time"

	"github.com/zantac/OSN/internal/logging"
	"github.com/zantac/OSN/internal/source"
	"github.com/zantac/OSN/internal/subtitle"
)

// Loader fetches and parses a subtitle source off the caller's goroutine.
type Loader interface {
	Load(ctx context.Context, src string, enc subtitle.Encoding) <-chan source.Result
}

type PlayerOptions struct {
	Loader Loader

	// Precondition, when set, must pass before StartPlayback starts a
	// session. A failure is logged and the call is a no-op.
	Precondition func() error

	Logger *logging.Logger
}

// Player is the command surface for a host: it keeps the most recently
// loaded track prepared and drives the Controller with it.
type Player struct {
	ctrl   *Controller
	loader Loader
	gate   func() error
	logger *logging.Logger

	// owned by the controller goroutine
	prepared *subtitle.Track
	source   string
}

func NewPlayer(ctrl *Controller, opts PlayerOptions) *Player {
	return &Player{
		ctrl:   ctrl,
		loader: opts.Loader,
		gate:   opts.Precondition,
		logger: logging.OrNop(opts.Logger).Named("player"),
	}
}

// Load reads and parses src in the background. The outcome is emitted as
// SubtitleLoaded and also sent on the returned channel. A successful load
// replaces the prepared track but never touches a running session.
func (p *Player) Load(ctx context.Context, src string, enc subtitle.Encoding) <-chan error {
	out := make(chan error, 1)
	results := p.loader.Load(ctx, src, enc)

	go func() {
		defer close(out)
		res, ok := <-results
		if !ok {
			res = source.Result{Source: src, Err: ctx.Err()}
		}

		err := p.ctrl.do(func() {
			if res.Err != nil {
				p.logger.Errorw("Failed to load subtitle", "source", src, "error", res.Err)
				p.ctrl.emit(SubtitleLoaded{Success: false, Source: src})
				return
			}
			p.prepared = res.Track
			p.source = src
			p.logger.Infow("Subtitle loaded",
				"source", src,
				"cues", res.Track.Len(),
				"total", res.Track.TotalDuration(),
			)
			p.ctrl.emit(SubtitleLoaded{Success: true, Source: src})
		})
		if err != nil {
			out <- err
			return
		}
		out <- res.Err
	}()

	return out
}

// StartPlayback begins a session with the prepared track.
func (p *Player) StartPlayback() error {
	if p.gate != nil {
		if err := p.gate(); err != nil {
			p.logger.Warnw("Playback precondition not met", "error", err)
			return err
		}
	}
	return p.ctrl.call(func() error {
		if p.prepared == nil {
			p.logger.Warnw("No subtitle prepared")
			return ErrNoTrack
		}
		if p.ctrl.state != Stopped {
			p.logger.Warnw("Ignoring start while a session is running", "state", p.ctrl.state)
			return ErrNotStopped
		}
		if err := p.ctrl.load(p.prepared); err != nil {
			return err
		}
		return p.ctrl.play()
	})
}

// Stop ends the session. The prepared track is kept for a later start.
func (p *Player) Stop() error {
	return p.ctrl.Stop()
}

func (p *Player) Pause() error       { return p.ctrl.Pause() }
func (p *Player) Resume() error      { return p.ctrl.Resume() }
func (p *Player) TogglePause() error { return p.ctrl.TogglePause() }
func (p *Player) BeginScrub() error  { return p.ctrl.BeginScrub() }
func (p *Player) EndScrub() error    { return p.ctrl.EndScrub() }

func (p *Player) Seek(target time.Duration) error { return p.ctrl.Seek(target) }
func (p *Player) Nudge(delta time.Duration) error { return p.ctrl.Nudge(delta) }
func (p *Player) SeekToCue(index int) error       { return p.ctrl.SeekToCue(index) }

// JumpCue moves to the next cue when forward is true, else the previous.
func (p *Player) JumpCue(forward bool) error {
	if forward {
		return p.ctrl.JumpCue(Next)
	}
	return p.ctrl.JumpCue(Previous)
}

// Cues returns the prepared track's cues, or nil when nothing is loaded.
func (p *Player) Cues() []subtitle.Cue {
	var track *subtitle.Track
	if err := p.ctrl.do(func() { track = p.prepared }); err != nil || track == nil {
		return nil
	}
	return track.Cues()
}

// Source names the prepared track's origin.
func (p *Player) Source() string {
	var src string
	_ = p.ctrl.do(func() { src = p.source })
	return src
}

func (p *Player) Status() Status {
	return p.ctrl.Snapshot()
}

package playback

import "time"

// Event is a notification delivered to the external collaborator.
type Event interface {
	EventType() string
}

// SubtitleLoaded reports the outcome of an asynchronous load.
type SubtitleLoaded struct {
	Success bool
	Source  string
}

// PlaybackStopped is emitted by every Stop, including a Stop while idle.
type PlaybackStopped struct{}

// ActiveCueChanged is emitted only when the resolved cue index changes.
// Index is NoCue and Text is empty when no cue covers the elapsed time.
type ActiveCueChanged struct {
	Index int
	Text  string
}

// ElapsedTimeChanged carries the raw elapsed time, which may be negative
// after a backward nudge.
type ElapsedTimeChanged struct {
	Elapsed time.Duration
	Total   time.Duration
}

func (SubtitleLoaded) EventType() string     { return "subtitle_loaded" }
func (PlaybackStopped) EventType() string    { return "playback_stopped" }
func (ActiveCueChanged) EventType() string   { return "active_cue_changed" }
func (ElapsedTimeChanged) EventType() string { return "elapsed_time_changed" }

// Sink receives events in emission order on a dedicated goroutine. It may
// call back into the Controller or Player.
type Sink func(Event)

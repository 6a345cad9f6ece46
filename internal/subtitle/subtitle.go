package subtitle

import (
	"fmt"
	"time"
)

// single timed caption
type Cue struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Contains reports whether t falls inside the cue, both ends inclusive.
func (c Cue) Contains(t time.Duration) bool {
	return c.Start <= t && t <= c.End
}

// Track is the immutable result of a successful parse. Cues are ordered by
// start time; equal starts keep their input order.
type Track struct {
	cues []Cue
}

// NewTrack wraps an already ordered cue slice. An empty slice is rejected.
func NewTrack(cues []Cue) (*Track, error) {
	if len(cues) == 0 {
		return nil, ErrNoEntries
	}
	owned := make([]Cue, len(cues))
	copy(owned, cues)
	return &Track{cues: owned}, nil
}

func (t *Track) Len() int {
	return len(t.cues)
}

func (t *Track) Cue(i int) Cue {
	return t.cues[i]
}

// Cues returns a copy of the ordered cues.
func (t *Track) Cues() []Cue {
	out := make([]Cue, len(t.cues))
	copy(out, t.cues)
	return out
}

// TotalDuration is the end of the last cue in track order. Because the
// track is sorted by start only, a longer earlier cue is not considered.
func (t *Track) TotalDuration() time.Duration {
	return t.cues[len(t.cues)-1].End
}

// represents supported subtitle output formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

// ParseFormat maps a user supplied name to a Format.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatSRT, FormatVTT, FormatASS:
		return Format(name), nil
	default:
		return "", fmt.Errorf("unsupported format %q: use srt, vtt or ass", name)
	}
}

// interface for writing tracks to files
type Writer interface {
	Write(track *Track, path string) error
}

package playback

import (
	"time"

	"github.com/zantac/OSN/internal/subtitle"
)

// NoCue marks the absence of an active cue.
const NoCue = -1

// Direction of a cue jump.
type Direction int

const (
	Previous Direction = iota
	Next
)

func (d Direction) String() string {
	if d == Next {
		return "next"
	}
	return "previous"
}

// Resolve returns the index of the first cue, in track order, whose range
// contains elapsed, or NoCue. Overlapping cues resolve to the earliest one.
func Resolve(track *subtitle.Track, elapsed time.Duration) int {
	if track == nil {
		return NoCue
	}
	for i := 0; i < track.Len(); i++ {
		if track.Cue(i).Contains(elapsed) {
			return i
		}
	}
	return NoCue
}

// JumpIndex picks the cue to seek to for next/previous navigation. Without
// an active cue, Next goes to index 1 and Previous to index 0. The result
// is clamped to the track.
func JumpIndex(track *subtitle.Track, current int, dir Direction) int {
	var target int
	switch {
	case current < 0 && dir == Next:
		target = 1
	case current < 0:
		target = 0
	case dir == Next:
		target = current + 1
	default:
		target = current - 1
	}

	if last := track.Len() - 1; target > last {
		target = last
	}
	if target < 0 {
		target = 0
	}
	return target
}

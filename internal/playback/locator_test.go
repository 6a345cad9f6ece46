package playback

import (
	"testing"
	"time"

	"github.com/zantac/OSN/internal/subtitle"
)

func mustTrack(t *testing.T, cues ...subtitle.Cue) *subtitle.Track {
	t.Helper()
	track, err := subtitle.NewTrack(cues)
	if err != nil {
		t.Fatalf("NewTrack failed: %v", err)
	}
	return track
}

func sampleTrack(t *testing.T) *subtitle.Track {
	return mustTrack(t,
		subtitle.Cue{Start: ms(1000), End: ms(3000), Text: "A"},
		subtitle.Cue{Start: ms(4500), End: ms(6000), Text: "B"},
	)
}

func TestResolve(t *testing.T) {
	track := sampleTrack(t)

	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{-ms(100), NoCue},
		{0, NoCue},
		{ms(1000), 0},
		{ms(2000), 0},
		{ms(3000), 0},
		{ms(3500), NoCue},
		{ms(4000), NoCue},
		{ms(4500), 1},
		{ms(6000), 1},
		{ms(6001), NoCue},
	}
	for _, tt := range tests {
		if got := Resolve(track, tt.elapsed); got != tt.want {
			t.Errorf("Resolve(%v) = %d, want %d", tt.elapsed, got, tt.want)
		}
	}

	if got := Resolve(nil, ms(1000)); got != NoCue {
		t.Errorf("Resolve(nil) = %d, want NoCue", got)
	}
}

func TestResolveOverlapPicksFirst(t *testing.T) {
	track := mustTrack(t,
		subtitle.Cue{Start: 0, End: ms(5000), Text: "long"},
		subtitle.Cue{Start: ms(1000), End: ms(2000), Text: "short"},
	)
	if got := Resolve(track, ms(1500)); got != 0 {
		t.Errorf("expected first overlapping cue, got %d", got)
	}
}

func TestJumpIndex(t *testing.T) {
	three := mustTrack(t,
		subtitle.Cue{Start: 0, End: ms(1000), Text: "a"},
		subtitle.Cue{Start: ms(2000), End: ms(3000), Text: "b"},
		subtitle.Cue{Start: ms(4000), End: ms(5000), Text: "c"},
	)
	one := mustTrack(t, subtitle.Cue{Start: 0, End: ms(1000), Text: "only"})

	tests := []struct {
		name    string
		track   *subtitle.Track
		current int
		dir     Direction
		want    int
	}{
		{"none next", three, NoCue, Next, 1},
		{"none previous", three, NoCue, Previous, 0},
		{"middle next", three, 1, Next, 2},
		{"middle previous", three, 1, Previous, 0},
		{"last next clamps", three, 2, Next, 2},
		{"first previous clamps", three, 0, Previous, 0},
		{"single track none next", one, NoCue, Next, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JumpIndex(tt.track, tt.current, tt.dir); got != tt.want {
				t.Errorf("JumpIndex(%d, %v) = %d, want %d", tt.current, tt.dir, got, tt.want)
			}
		})
	}
}

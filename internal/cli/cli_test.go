package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zantac/OSN/internal/playback"
	"github.com/zantac/OSN/internal/subtitle"
)

const sampleSRT = "1\n00:00:01,000 --> 00:00:03,000\nHello\nthere\n\n2\n00:00:04,500 --> 00:00:06,000\nWorld\n"

func TestFormatCueLine(t *testing.T) {
	cue := subtitle.Cue{Start: 1500 * time.Millisecond, End: 62 * time.Second, Text: "Hello\nthere"}
	want := "   3  00:00:01,500 --> 00:01:02,000  Hello | there"
	if got := formatCueLine(3, cue); got != want {
		t.Errorf("formatCueLine() = %q, want %q", got, want)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		video  string
		format subtitle.Format
		want   string
	}{
		{"movie.mkv", subtitle.FormatSRT, "movie.srt"},
		{"/tmp/show.s01e01.mp4", subtitle.FormatVTT, "/tmp/show.s01e01.vtt"},
		{"noext", subtitle.FormatSRT, "noext.srt"},
	}
	for _, tt := range tests {
		if got := defaultOutputPath(tt.video, tt.format); got != tt.want {
			t.Errorf("defaultOutputPath(%q, %s) = %q, want %q", tt.video, tt.format, got, tt.want)
		}
	}
}

func TestDescribeTrack(t *testing.T) {
	if got := describeTrack("a.srt", nil); got != "a.srt" {
		t.Errorf("unexpected summary for empty track: %q", got)
	}
	cues := []subtitle.Cue{{Start: 0, End: 90 * time.Second, Text: "x"}}
	if got := describeTrack("a.srt", cues); got != "a.srt (1 cues, 00:01:30)" {
		t.Errorf("unexpected summary: %q", got)
	}
}

func TestPlainSink(t *testing.T) {
	var out bytes.Buffer
	done := 0
	sink := plainSink(&out, func() { done++ })

	sink(playback.ActiveCueChanged{Index: 0, Text: "Hello"})
	sink(playback.ActiveCueChanged{Index: playback.NoCue})
	sink(playback.ElapsedTimeChanged{Elapsed: 5 * time.Second, Total: 6 * time.Second})
	if done != 0 {
		t.Fatal("done called before the end of the track")
	}
	sink(playback.ElapsedTimeChanged{Elapsed: 8 * time.Second, Total: 6 * time.Second})
	if done != 1 {
		t.Errorf("expected done after the end, got %d calls", done)
	}
	sink(playback.PlaybackStopped{})
	if done != 2 {
		t.Errorf("expected done on stop, got %d calls", done)
	}

	if out.String() != "Hello\n\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestInspectCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.srt")
	output := filepath.Join(dir, "out.vtt")
	if err := os.WriteFile(input, []byte(sampleSRT), 0644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"inspect", input,
		"--config", filepath.Join(dir, "missing.yaml"),
		"--output", output,
	})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	if err := Execute(); err != nil {
		t.Fatalf("inspect failed: %v", err)
	}

	for _, want := range []string{"Hello | there", "World", "Cues: 2", "Duration: 00:00:06"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "WEBVTT") {
		t.Errorf("expected VTT output, got:\n%s", data)
	}
}

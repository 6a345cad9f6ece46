package subtitle

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func ms(n int64) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func TestParseEmptyInput(t *testing.T) {
	for _, enc := range []Encoding{EncodingAuto, EncodingUTF8, "windows-1256"} {
		t.Run(string(enc), func(t *testing.T) {
			track, err := Parse(nil, enc)
			if err == nil {
				t.Fatalf("expected error, got track with %d cues", track.Len())
			}
			if !errors.Is(err, ErrNoEntries) {
				t.Errorf("expected ErrNoEntries, got %v", err)
			}
		})
	}
}

func TestParseSortsByStart(t *testing.T) {
	content := `1
00:00:04,500 --> 00:00:06,000
World

2
00:00:01,000 --> 00:00:03,000
Hello
`
	track, err := Parse([]byte(content), EncodingAuto)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := []Cue{
		{Start: ms(1000), End: ms(3000), Text: "Hello"},
		{Start: ms(4500), End: ms(6000), Text: "World"},
	}
	if diff := cmp.Diff(want, track.Cues()); diff != "" {
		t.Errorf("cues mismatch (-want +got):\n%s", diff)
	}
	if track.TotalDuration() != ms(6000) {
		t.Errorf("expected total 6s, got %v", track.TotalDuration())
	}
}

func TestParseStableForEqualStarts(t *testing.T) {
	content := `00:00:05,000 --> 00:00:06,000
late

00:00:01,000 --> 00:00:02,000
first

00:00:01,000 --> 00:00:03,000
second

00:00:01,000 --> 00:00:01,500
third
`
	track, err := Parse([]byte(content), EncodingUTF8)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var got []string
	for _, c := range track.Cues() {
		got = append(got, c.Text)
	}
	want := []string{"first", "second", "third", "late"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMultilineSettingsAndLineEndings(t *testing.T) {
	content := "\ufeff1\r\n" +
		"00:00:31.520 --> 00:00:32.640  position:50.00%,middle  align:middle\r\n" +
		"  [wind blows]\r\n" +
		"second line\r\n" +
		"\r\n" +
		"2\r" +
		"00:00:40,000 --> 00:00:41,000\r" +
		"old mac line\r"

	track, err := Parse([]byte(content), EncodingAuto)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := []Cue{
		{Start: ms(31520), End: ms(32640), Text: "[wind blows]\nsecond line"},
		{Start: ms(40000), End: ms(41000), Text: "old mac line"},
	}
	if diff := cmp.Diff(want, track.Cues()); diff != "" {
		t.Errorf("cues mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBlocksWithoutBlankSeparators(t *testing.T) {
	content := `1
00:00:01,000 --> 00:00:02,000
A
2
00:00:03,000 --> 00:00:04,000
B`
	track, err := Parse([]byte(content), EncodingAuto)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	// the "2" index sits inside the first body and is skipped as a counter
	want := []Cue{
		{Start: ms(1000), End: ms(2000), Text: "A"},
		{Start: ms(3000), End: ms(4000), Text: "B"},
	}
	if diff := cmp.Diff(want, track.Cues()); diff != "" {
		t.Errorf("cues mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBlankLineEndsEmptyBody(t *testing.T) {
	content := `00:00:01,000 --> 00:00:02,000

Hello
00:00:03,000 --> 00:00:04,000
World`
	track, err := Parse([]byte(content), EncodingAuto)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	// the blank line closes the first body before any text arrives
	want := []Cue{
		{Start: ms(3000), End: ms(4000), Text: "World"},
	}
	if diff := cmp.Diff(want, track.Cues()); diff != "" {
		t.Errorf("cues mismatch (-want +got):\n%s", diff)
	}
}

func TestParseOverflowingTimeLineIsText(t *testing.T) {
	content := `00:00:01,000 --> 00:00:02,000
A
9999999999999:00:00,000 --> 9999999999999:00:01,000
B`
	track, err := Parse([]byte(content), EncodingAuto)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	for _, c := range track.Cues() {
		if c.Start < 0 || c.End < 0 {
			t.Errorf("negative cue time: %+v", c)
		}
	}
}

func TestParseMalformedTimeLine(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []Cue
	}{
		{
			name:    "inside body becomes text",
			content: "00:00:01,000 --> 00:00:02,000\nHello\nbad --> line\n",
			want:    []Cue{{Start: ms(1000), End: ms(2000), Text: "Hello\nbad --> line"}},
		},
		{
			name:    "outside body is dropped",
			content: "xx:00:01,000 --> 00:00:02,000\nlost\n\n00:00:03,000 --> 00:00:04,000\nkept\n",
			want:    []Cue{{Start: ms(3000), End: ms(4000), Text: "kept"}},
		},
		{
			name:    "time line without text emits nothing",
			content: "00:00:01,000 --> 00:00:02,000\n\n00:00:03,000 --> 00:00:04,000\nonly\n",
			want:    []Cue{{Start: ms(3000), End: ms(4000), Text: "only"}},
		},
		{
			name:    "numeric line after time line is skipped",
			content: "00:00:01,000 --> 00:00:02,000\n42\nHello\n",
			want:    []Cue{{Start: ms(1000), End: ms(2000), Text: "Hello"}},
		},
		{
			name:    "reversed range kept as is",
			content: "00:00:05,000 --> 00:00:01,000\nbackwards\n",
			want:    []Cue{{Start: ms(5000), End: ms(1000), Text: "backwards"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track, err := Parse([]byte(tt.content), EncodingUTF8)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, track.Cues()); diff != "" {
				t.Errorf("cues mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseAutoFallsBackToWindows1256(t *testing.T) {
	// "مرحبا" in windows-1256, which is not valid UTF-8
	data := []byte("1\n00:00:01,000 --> 00:00:02,000\n")
	data = append(data, 0xe3, 0xd1, 0xcd, 0xc8, 0xc7)
	data = append(data, '\n')

	if _, err := Parse(data, EncodingUTF8); !errors.Is(err, ErrDecodeFailed) {
		t.Fatalf("expected UTF-8 decode failure, got %v", err)
	}

	track, err := Parse(data, EncodingAuto)
	if err != nil {
		t.Fatalf("auto Parse failed: %v", err)
	}
	if got := track.Cue(0).Text; got != "مرحبا" {
		t.Errorf("expected Arabic text, got %q", got)
	}
}

func TestParseAutoBothEncodingsFail(t *testing.T) {
	data := []byte{0xff, 0xfe, 0x00, 'x'}

	_, err := Parse(data, EncodingAuto)
	if !errors.Is(err, ErrDecodeFailed) {
		t.Fatalf("expected ErrDecodeFailed, got %v", err)
	}

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
	if diff := cmp.Diff([]string{"UTF-8", "windows-1256"}, decodeErr.Encodings()); diff != "" {
		t.Errorf("encodings mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(err.Error(), "UTF-8") || !strings.Contains(err.Error(), "windows-1256") {
		t.Errorf("error should name both encodings, got %q", err.Error())
	}
}

func TestParseFixedEncoding(t *testing.T) {
	data := append([]byte("00:00:01,000 --> 00:00:02,000\ncaf"), 0xe9, '\n')

	track, err := Parse(data, "ISO-8859-1")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := track.Cue(0).Text; got != "café" {
		t.Errorf("expected café, got %q", got)
	}

	_, err = Parse(data, "klingon-8")
	if !errors.Is(err, ErrUnknownEncoding) {
		t.Errorf("expected ErrUnknownEncoding, got %v", err)
	}
}

func TestParseCustomFallback(t *testing.T) {
	data := append([]byte("00:00:01,000 --> 00:00:02,000\ncaf"), 0xe9, '\n')

	track, err := NewParser("windows-1252", nil).Parse(data, "AUTO")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := track.Cue(0).Text; got != "café" {
		t.Errorf("expected café, got %q", got)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{input: "00:01:02,500", want: ms(62500)},
		{input: "00:00:01.000", want: ms(1000)},
		{input: "1:2:3,4", want: ms(3723004)},
		{input: "00:00:01,5", want: ms(1005)},
		{input: "100:00:00,000", want: 100 * time.Hour},
		{input: " 00:00:02,000 line:84%", want: ms(2000)},
		{input: "00:01,000", wantErr: true},
		{input: "aa:00:00,000", wantErr: true},
		{input: "00:00:00", wantErr: true},
		{input: "-1:00:00,000", wantErr: true},
		{input: "00:00:00,", wantErr: true},
		{input: "", wantErr: true},
		{input: "2562047:47:16,854", want: ms(9223372036854)},
		{input: "2562047:47:16,855", wantErr: true},
		{input: "9999999999999:00:00,000", wantErr: true},
		{input: "99999999999999999999:00:00,000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedTimestamp) {
					t.Errorf("expected ErrMalformedTimestamp, got %v (value %v)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTrackTotalDurationUsesLastCue(t *testing.T) {
	track, err := NewTrack([]Cue{
		{Start: 0, End: ms(10000), Text: "long"},
		{Start: ms(1000), End: ms(2000), Text: "short"},
	})
	if err != nil {
		t.Fatalf("NewTrack failed: %v", err)
	}
	if track.TotalDuration() != ms(2000) {
		t.Errorf("expected 2s, got %v", track.TotalDuration())
	}

	if _, err := NewTrack(nil); !errors.Is(err, ErrNoEntries) {
		t.Errorf("expected ErrNoEntries for empty track, got %v", err)
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{-5 * time.Second, "00:00:00"},
		{0, "00:00:00"},
		{ms(62500), "00:01:02"},
		{3723 * time.Second, "01:02:03"},
	}
	for _, tt := range tests {
		if got := FormatClock(tt.in); got != tt.want {
			t.Errorf("FormatClock(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteSRTThenParse(t *testing.T) {
	track, err := NewTrack([]Cue{
		{Start: ms(1000), End: ms(4000), Text: "Hello, world!"},
		{Start: ms(5500), End: ms(8200), Text: "This is a test.\nWith multiple lines."},
	})
	if err != nil {
		t.Fatalf("NewTrack failed: %v", err)
	}

	tmpDir := t.TempDir()
	for _, format := range []Format{FormatSRT, FormatVTT} {
		path := filepath.Join(tmpDir, "out"+GetExtensionForFormat(format))
		writer, err := NewWriter(format)
		if err != nil {
			t.Fatalf("NewWriter(%s) failed: %v", format, err)
		}
		if err := writer.Write(track, path); err != nil {
			t.Fatalf("Write(%s) failed: %v", format, err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		reparsed, err := Parse(data, EncodingAuto)
		if err != nil {
			t.Fatalf("re-parse of %s failed: %v", format, err)
		}
		if diff := cmp.Diff(track.Cues(), reparsed.Cues()); diff != "" {
			t.Errorf("%s round trip mismatch (-want +got):\n%s", format, diff)
		}
	}
}

func TestEncodeASS(t *testing.T) {
	track, err := NewTrack([]Cue{
		{Start: ms(1230), End: ms(62500), Text: "first\nsecond"},
	})
	if err != nil {
		t.Fatalf("NewTrack failed: %v", err)
	}

	var sb strings.Builder
	if err := Encode(&sb, track, FormatASS); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	out := sb.String()

	if !strings.HasPrefix(out, "[Script Info]\n") {
		t.Errorf("missing script info header:\n%s", out)
	}
	want := `Dialogue: 0,0:00:01.23,0:01:02.50,Default,,0,0,0,,first\Nsecond`
	if !strings.Contains(out, want) {
		t.Errorf("missing dialogue line %q in:\n%s", want, out)
	}
	if GetFormatFromExtension("x.SSA") != FormatASS {
		t.Error("expected .ssa to map to ASS")
	}
}

package subtitle

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SubRip format
type SRTWriter struct{}

// WebVTT format
type VTTWriter struct{}

// Advanced SubStation Alpha format, export only
type ASSWriter struct {
	Title    string
	FontName string
	FontSize int
}

func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatSRT:
		return &SRTWriter{}, nil
	case FormatVTT:
		return &VTTWriter{}, nil
	case FormatASS:
		return newASSWriter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func newASSWriter() *ASSWriter {
	return &ASSWriter{
		Title:    "osn export",
		FontName: "Arial",
		FontSize: 20,
	}
}

// writes the track to an SRT file
func (w *SRTWriter) Write(track *Track, path string) error {
	return writeFile(path, func(out io.Writer) error {
		return w.Encode(out, track)
	})
}

// Encode renders numbered blocks: index, timing line, text, blank line.
func (w *SRTWriter) Encode(out io.Writer, track *Track) error {
	var sb strings.Builder
	for i, cue := range track.cues {
		sb.WriteString(fmt.Sprintf("%d\n", i+1))

		// timestamps: 00:00:00,000 --> 00:00:00,000
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			FormatTimestamp(cue.Start, ','),
			FormatTimestamp(cue.End, ',')))

		sb.WriteString(cue.Text)
		sb.WriteString("\n\n")
	}
	_, err := io.WriteString(out, sb.String())
	return err
}

// writes the track to a VTT file
func (w *VTTWriter) Write(track *Track, path string) error {
	return writeFile(path, func(out io.Writer) error {
		return w.Encode(out, track)
	})
}

func (w *VTTWriter) Encode(out io.Writer, track *Track) error {
	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")

	for i, cue := range track.cues {
		// optional cue identifier
		sb.WriteString(fmt.Sprintf("%d\n", i+1))

		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			FormatTimestamp(cue.Start, '.'),
			FormatTimestamp(cue.End, '.')))

		sb.WriteString(cue.Text)
		sb.WriteString("\n\n")
	}
	_, err := io.WriteString(out, sb.String())
	return err
}

// writes the track to an ASS file
func (w *ASSWriter) Write(track *Track, path string) error {
	return writeFile(path, func(out io.Writer) error {
		return w.Encode(out, track)
	})
}

func (w *ASSWriter) Encode(out io.Writer, track *Track) error {
	var sb strings.Builder

	// script info section
	sb.WriteString("[Script Info]\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", w.Title))
	sb.WriteString("ScriptType: v4.00+\n")
	sb.WriteString("Collisions: Normal\n")
	sb.WriteString("PlayDepth: 0\n\n")

	// v4+ styles section
	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	sb.WriteString(fmt.Sprintf("Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1\n\n",
		w.FontName, w.FontSize))

	// events section
	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, cue := range track.cues {
		sb.WriteString(fmt.Sprintf("Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatASSTime(cue.Start),
			formatASSTime(cue.End),
			strings.ReplaceAll(cue.Text, "\n", "\\N")))
	}
	_, err := io.WriteString(out, sb.String())
	return err
}

// H:MM:SS.cc, centisecond precision
func formatASSTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	centis := (int(d.Milliseconds()) % 1000) / 10

	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, seconds, centis)
}

// Encode writes track to out in the given format.
func Encode(out io.Writer, track *Track, format Format) error {
	switch format {
	case FormatSRT:
		return (&SRTWriter{}).Encode(out, track)
	case FormatVTT:
		return (&VTTWriter{}).Encode(out, track)
	case FormatASS:
		return newASSWriter().Encode(out, track)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeFile(path string, encode func(io.Writer) error) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := encode(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}

// subtitle format based on file extension
func GetFormatFromExtension(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vtt":
		return FormatVTT
	case ".ass", ".ssa":
		return FormatASS
	default:
		return FormatSRT
	}
}

// file extension for a format
func GetExtensionForFormat(format Format) string {
	switch format {
	case FormatVTT:
		return ".vtt"
	case FormatASS:
		return ".ass"
	default:
		return ".srt"
	}
}

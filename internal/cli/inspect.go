package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zantac/OSN/internal/subtitle"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [source]",
	Short: "Parse a subtitle source and list its cues",
	Long: `Parse a subtitle source and print every cue with its timing.

The source may be a file path, an http(s) URL, "-" for stdin, or a video
file whose embedded subtitle stream is extracted with ffmpeg. With
--output the normalised track is written as SRT or VTT.

Examples:
  osn inspect movie.srt
  osn inspect https://example.com/movie.srt --encoding windows-1256
  osn inspect movie.mkv -o movie.vtt`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().
		StringP("format", "f", "", "Output format when writing (srt, vtt, ass); defaults to the output extension")
	inspectCmd.Flags().
		Bool("quiet", false, "Only print the summary")
}

func runInspect(cmd *cobra.Command, args []string) error {
	src := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	formatStr, _ := cmd.Flags().GetString("format")
	quiet, _ := cmd.Flags().GetBool("quiet")

	track, err := newLoader().LoadSync(context.Background(), src, cfg.Encoding)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !quiet {
		printCues(out, track)
	}
	fmt.Fprintf(out, "Cues: %d\n", track.Len())
	fmt.Fprintf(out, "Duration: %s\n", subtitle.FormatClock(track.TotalDuration()))

	if outputPath == "" {
		return nil
	}

	format := subtitle.GetFormatFromExtension(outputPath)
	if formatStr != "" {
		if format, err = subtitle.ParseFormat(formatStr); err != nil {
			return err
		}
	}
	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return err
	}
	if err := writer.Write(track, outputPath); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(out, "Subtitles written: %s\n", absOutput)
	return nil
}

func printCues(out io.Writer, track *subtitle.Track) {
	for i, cue := range track.Cues() {
		fmt.Fprintln(out, formatCueLine(i, cue))
	}
}

// formatCueLine renders one cue on a single line, body lines joined by " | ".
func formatCueLine(i int, cue subtitle.Cue) string {
	return fmt.Sprintf("%4d  %s --> %s  %s",
		i,
		subtitle.FormatTimestamp(cue.Start, ','),
		subtitle.FormatTimestamp(cue.End, ','),
		strings.ReplaceAll(cue.Text, "\n", " | "),
	)
}

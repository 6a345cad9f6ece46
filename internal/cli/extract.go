package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zantac/OSN/internal/subtitle"
	"github.com/zantac/OSN/internal/video"
)

var extractCmd = &cobra.Command{
	Use:   "extract [video_file]",
	Short: "Extract an embedded subtitle stream from a video file",
	Long: `Extract a subtitle stream from a video container and save it as SRT or VTT.

The stream is read through ffmpeg, parsed with the configured encoding
policy and written back out normalised. Use --list to see the subtitle
streams a container carries.

Examples:
  osn extract movie.mkv
  osn extract movie.mkv --stream 1 -o arabic.srt
  osn extract movie.mkv -f vtt
  osn extract movie.mkv --list`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().
		StringP("format", "f", "srt", "Output subtitle format (srt, vtt, ass)")
	extractCmd.Flags().
		IntP("stream", "s", -1, "Subtitle stream number, 0 is the first (defaults to the config value)")
	extractCmd.Flags().
		Bool("list", false, "List subtitle streams instead of extracting")
}

func runExtract(cmd *cobra.Command, args []string) error {
	videoPath := args[0]

	formatStr, _ := cmd.Flags().GetString("format")
	stream, _ := cmd.Flags().GetInt("stream")
	list, _ := cmd.Flags().GetBool("list")
	outputPath, _ := cmd.Flags().GetString("output")

	if stream < 0 {
		stream = cfg.SubtitleStream
	}

	ctx := context.Background()
	processor := video.NewProcessor()
	out := cmd.OutOrStdout()

	if list {
		streams, err := processor.ListSubtitleStreams(ctx, videoPath)
		if err != nil {
			return fmt.Errorf("listing failed: %w", err)
		}
		if len(streams) == 0 {
			fmt.Fprintf(out, "No subtitle streams in %s\n", videoPath)
			return nil
		}
		for _, s := range streams {
			fmt.Fprintf(out, "%d  %-8s %-4s %s\n", s.Index, s.Codec, s.Language, s.Title)
		}
		return nil
	}

	format, err := subtitle.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = defaultOutputPath(videoPath, format)
	}

	logger.Infow("Extracting subtitles",
		"video", videoPath,
		"output", outputPath,
		"stream", stream,
		"format", format,
	)

	opts := video.DefaultExtractSubtitleOptions()
	opts.Stream = stream
	data, err := processor.ExtractSubtitles(ctx, videoPath, opts)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	parser := subtitle.NewParser(cfg.FallbackEncoding, logger)
	track, err := parser.Parse(data, cfg.Encoding)
	if err != nil {
		return fmt.Errorf("extracted stream is not usable: %w", err)
	}

	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return err
	}
	if err := writer.Write(track, outputPath); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(out, "Subtitles extracted successfully: %s\n", absOutput)
	fmt.Fprintf(out, "  Cues: %d\n", track.Len())
	fmt.Fprintf(out, "  Duration: %s\n", subtitle.FormatClock(track.TotalDuration()))

	return nil
}

// defaultOutputPath swaps the video extension for the subtitle one
func defaultOutputPath(videoPath string, format subtitle.Format) string {
	ext := filepath.Ext(videoPath)
	return strings.TrimSuffix(videoPath, ext) + subtitle.GetExtensionForFormat(format)
}

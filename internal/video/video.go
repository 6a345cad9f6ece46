package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/zantac/OSN/internal/ffmpeg"
)

// SubtitleStream describes one subtitle track inside a container.
type SubtitleStream struct {
	Index    int    // position among subtitle streams, as used by 0:s:N
	Codec    string
	Language string
	Title    string
}

// defines interface for video processing operations
type Processor interface {
	// extracts one embedded subtitle stream as SubRip bytes
	ExtractSubtitles(
		ctx context.Context,
		videoPath string,
		opts ExtractSubtitleOptions,
	) ([]byte, error)

	// lists the subtitle streams of a container
	ListSubtitleStreams(ctx context.Context, videoPath string) ([]SubtitleStream, error)
}

// holds options for subtitle extraction
type ExtractSubtitleOptions struct {
	Stream int    // subtitle stream number, 0 is the first
	Format string // ffmpeg output muxer, srt or webvtt
}

func DefaultExtractSubtitleOptions() ExtractSubtitleOptions {
	return ExtractSubtitleOptions{
		Stream: 0,
		Format: "srt",
	}
}

// default implementation using ffmpeg
type DefaultProcessor struct{}

func NewProcessor() *DefaultProcessor {
	return &DefaultProcessor{}
}

// extracts a subtitle stream to memory through ffmpeg's stdout
func (p *DefaultProcessor) ExtractSubtitles(
	ctx context.Context,
	videoPath string,
	opts ExtractSubtitleOptions,
) ([]byte, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}
	if opts.Format == "" {
		opts.Format = "srt"
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, err
	}

	args := extractArgs(videoPath, opts)
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf(
			"ffmpeg subtitle extraction failed: %w: %s",
			err,
			lastLine(stderr.String()),
		)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("subtitle stream %d of %s is empty", opts.Stream, videoPath)
	}
	return stdout.Bytes(), nil
}

// extractArgs builds the ffmpeg argument list for one subtitle stream
func extractArgs(videoPath string, opts ExtractSubtitleOptions) []string {
	kwargs := ffmpeg.KwArgs{
		"map": fmt.Sprintf("0:s:%d", opts.Stream),
		"f":   opts.Format,
	}
	return ffmpeg.Input(videoPath).
		Output("pipe:1", kwargs).
		OverWriteOutput().
		GetArgs()
}

// JSON output from ffprobe
type ffprobeOutput struct {
	Streams []struct {
		CodecName string            `json:"codec_name"`
		Tags      map[string]string `json:"tags"`
	} `json:"streams"`
}

// lists subtitle streams with ffprobe
func (p *DefaultProcessor) ListSubtitleStreams(
	ctx context.Context,
	videoPath string,
) ([]SubtitleStream, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}

	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "s",
		videoPath,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbe(out.Bytes())
}

func parseProbe(data []byte) ([]SubtitleStream, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	streams := make([]SubtitleStream, 0, len(probe.Streams))
	for i, s := range probe.Streams {
		streams = append(streams, SubtitleStream{
			Index:    i,
			Codec:    s.CodecName,
			Language: s.Tags["language"],
			Title:    s.Tags["title"],
		})
	}
	return streams, nil
}

// checks if the file is a video container based on extension
func IsVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	videoExts := map[string]bool{
		".mp4":  true,
		".mkv":  true,
		".avi":  true,
		".mov":  true,
		".webm": true,
		".m4v":  true,
		".ts":   true,
	}
	return videoExts[ext]
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "\n"); i >= 0 {
		return s[i+1:]
	}
	return s
}

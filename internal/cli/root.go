package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zantac/OSN/internal/config"
	"github.com/zantac/OSN/internal/ffmpeg"
	"github.com/zantac/OSN/internal/logging"
	"github.com/zantac/OSN/internal/source"
	"github.com/zantac/OSN/internal/subtitle"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "osn",
	Short: "Timed subtitle overlay player",
	Long: `osn loads SubRip or WebVTT subtitles from a file, URL, stdin or a
video container and plays them back against its own clock.

The active cue and elapsed time can be followed in the terminal or
streamed to other programs over a WebSocket.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("encoding") {
			enc, _ := cmd.Flags().GetString("encoding")
			loaded.Encoding = subtitle.Encoding(enc)
			if err := loaded.Validate(); err != nil {
				return fmt.Errorf("invalid --encoding: %w", err)
			}
		}
		cfg = loaded

		ffmpeg.SetPaths(ffmpeg.BinaryPaths{FFmpeg: cfg.FFmpegPath})
		if cfg.Path() != "" {
			logger.Debugw("Loaded config", "path", cfg.Path())
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "osn.yaml", "Config file path")
	rootCmd.PersistentFlags().
		StringP("encoding", "e", "auto", "Subtitle encoding (auto, UTF-8, windows-1256, ...)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
}

func newLoader() *source.Loader {
	return source.NewLoader(source.Options{
		Parser: subtitle.NewParser(cfg.FallbackEncoding, logger),
		Stream: cfg.SubtitleStream,
		Logger: logger,
	})
}

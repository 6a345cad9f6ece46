package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zantac/OSN/internal/bridge"
	"github.com/zantac/OSN/internal/playback"
	"github.com/zantac/OSN/internal/source"
	"github.com/zantac/OSN/internal/subtitle"
)

var serveCmd = &cobra.Command{
	Use:   "serve [source]",
	Short: "Serve playback events over a WebSocket",
	Long: `Run the playback engine behind a WebSocket endpoint.

Clients connect to /ws, receive every playback event as JSON and send
commands such as load, start, pause, seek and nudge. /health reports
the server state.

When a source is given it is loaded at startup. With --watch a local
source file is reloaded whenever it changes on disk; the new track is
used by the next start.

Examples:
  osn serve
  osn serve movie.srt --autostart
  osn serve movie.srt --watch --listen 0.0.0.0:8765`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().
		String("listen", "", "Listen address (defaults to the config value)")
	serveCmd.Flags().
		Bool("watch", false, "Reload the source file when it changes")
	serveCmd.Flags().
		Bool("autostart", false, "Start playback as soon as the source is loaded")
}

func runServe(cmd *cobra.Command, args []string) error {
	listen, _ := cmd.Flags().GetString("listen")
	if listen == "" {
		listen = cfg.Listen
	}
	watch := cfg.Watch
	if cmd.Flags().Changed("watch") {
		watch, _ = cmd.Flags().GetBool("watch")
	}
	autostart, _ := cmd.Flags().GetBool("autostart")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var hub *bridge.Hub
	ctrl := playback.NewController(playback.Options{
		TickInterval: cfg.TickInterval,
		Logger:       logger,
		Sink:         func(ev playback.Event) { hub.Publish(ev) },
	})
	player := playback.NewPlayer(ctrl, playback.PlayerOptions{
		Loader: newLoader(),
		Logger: logger,
	})
	hub = bridge.New(player, cfg.Encoding, logger)

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = ctrl.Run(ctx)
	}()
	defer func() {
		cancel()
		<-runDone
	}()

	if len(args) == 1 {
		src := args[0]
		if err := <-player.Load(ctx, src, cfg.Encoding); err != nil {
			return err
		}
		logger.Infow("Source ready", "source", describeTrack(src, player.Cues()))

		if autostart {
			if err := player.StartPlayback(); err != nil {
				return err
			}
		}
		if watch {
			if source.Classify(src) != source.KindFile {
				return fmt.Errorf("--watch needs a local subtitle file, got %s source", source.Classify(src))
			}
			go watchSource(ctx, player, src, cfg.Encoding)
		}
	}

	return hub.Start(ctx, listen)
}

func watchSource(ctx context.Context, player *playback.Player, src string, enc subtitle.Encoding) {
	err := source.Watch(ctx, src, logger, func() {
		// the outcome is broadcast as subtitle_loaded
		player.Load(ctx, src, enc)
	})
	if err != nil {
		logger.Errorw("Stopped watching source", "source", src, "error", err)
	}
}

// describeTrack summarises a prepared track for the startup log.
func describeTrack(src string, cues []subtitle.Cue) string {
	if len(cues) == 0 {
		return src
	}
	return fmt.Sprintf("%s (%d cues, %s)",
		src,
		len(cues),
		subtitle.FormatClock(cues[len(cues)-1].End),
	)
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zantac/OSN/internal/playback"
	"github.com/zantac/OSN/internal/tui"
)

var playCmd = &cobra.Command{
	Use:   "play [source]",
	Short: "Play subtitles in the terminal",
	Long: `Load a subtitle source and play it back against a local clock.

The terminal view shows the active cue and the elapsed time. Keys:
space pauses and resumes, left/right nudge the timing, n/p jump
between cues, s stops, r restarts and q quits.

With --plain the cues are printed as lines instead, and the command
exits once the last cue has ended.

Examples:
  osn play movie.srt
  osn play movie.srt --start-at 12m30s
  curl -s https://example.com/movie.srt | osn play - --plain`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().
		Bool("plain", false, "Print cue changes as lines instead of the terminal view")
	playCmd.Flags().
		Duration("start-at", 0, "Seek to this position right after starting")
	playCmd.Flags().
		Duration("nudge-step", 0, "Nudge step for left/right (defaults to the config value)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	src := args[0]
	plain, _ := cmd.Flags().GetBool("plain")
	startAt, _ := cmd.Flags().GetDuration("start-at")
	step, _ := cmd.Flags().GetDuration("nudge-step")
	if step <= 0 {
		step = cfg.NudgeStep
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var sink playback.Sink
	var program *tea.Program
	if plain {
		sink = plainSink(cmd.OutOrStdout(), cancel)
	} else {
		sink = func(ev playback.Event) {
			program.Send(tui.EventMsg{Event: ev})
		}
	}

	ctrl := playback.NewController(playback.Options{
		TickInterval: cfg.TickInterval,
		Logger:       logger,
		Sink:         sink,
	})
	player := playback.NewPlayer(ctrl, playback.PlayerOptions{
		Loader: newLoader(),
		Logger: logger,
	})
	if !plain {
		program = tea.NewProgram(
			tui.NewModel(player, src, step),
			tea.WithContext(ctx),
			tea.WithAltScreen(),
		)
	}

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = ctrl.Run(ctx)
	}()
	defer func() {
		cancel()
		<-runDone
	}()

	if err := <-player.Load(ctx, src, cfg.Encoding); err != nil {
		return err
	}
	if err := player.StartPlayback(); err != nil {
		return err
	}
	if startAt > 0 {
		if err := player.Seek(startAt); err != nil {
			return err
		}
	}

	if plain {
		<-ctx.Done()
		return nil
	}

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal view failed: %w", err)
	}
	return nil
}

// plainSink prints each cue change and calls done once playback has passed
// the end of the track.
func plainSink(out io.Writer, done func()) playback.Sink {
	return func(ev playback.Event) {
		switch e := ev.(type) {
		case playback.ActiveCueChanged:
			if e.Index == playback.NoCue {
				return
			}
			fmt.Fprintln(out, e.Text)
			fmt.Fprintln(out)
		case playback.ElapsedTimeChanged:
			if e.Total > 0 && e.Elapsed > e.Total+time.Second {
				done()
			}
		case playback.PlaybackStopped:
			done()
		case playback.SubtitleLoaded:
			if !e.Success {
				fmt.Fprintf(out, "failed to load %s\n", e.Source)
			}
		}
	}
}

package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zantac/OSN/internal/playback"
	"github.com/zantac/OSN/internal/subtitle"
)

// command is a client message. Fields are read according to Type.
type command struct {
	Type     string `json:"type"`
	Source   string `json:"source"`
	Encoding string `json:"encoding"`
	Millis   *int64 `json:"millis"`
	Forward  bool   `json:"forward"`
	Index    *int   `json:"index"`
}

var errMissingField = errors.New("missing field")

// handleMessage runs one command. It returns the direct reply, or nil when
// the outcome is reported through broadcast events.
func (h *Hub) handleMessage(data []byte) map[string]any {
	var cmd command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return errorReply("", fmt.Errorf("invalid message: %w", err))
	}

	var err error
	switch cmd.Type {
	case "ping":
		return map[string]any{"type": "pong"}
	case "cues":
		return encodeCues(h.player.Cues())
	case "status":
		return encodeStatus(h.player.Status())
	case "load":
		if cmd.Source == "" {
			return errorReply(cmd.Type, fmt.Errorf("%w: source", errMissingField))
		}
		enc := h.encoding
		if cmd.Encoding != "" {
			enc = subtitle.Encoding(cmd.Encoding)
		}
		// outcome arrives as subtitle_loaded
		h.player.Load(h.ctx, cmd.Source, enc)
	case "start":
		err = h.player.StartPlayback()
	case "stop":
		err = h.player.Stop()
	case "pause":
		err = h.player.Pause()
	case "resume":
		err = h.player.Resume()
	case "toggle":
		err = h.player.TogglePause()
	case "seek":
		if cmd.Millis == nil {
			return errorReply(cmd.Type, fmt.Errorf("%w: millis", errMissingField))
		}
		err = h.player.Seek(time.Duration(*cmd.Millis) * time.Millisecond)
	case "nudge":
		if cmd.Millis == nil {
			return errorReply(cmd.Type, fmt.Errorf("%w: millis", errMissingField))
		}
		err = h.player.Nudge(time.Duration(*cmd.Millis) * time.Millisecond)
	case "jump":
		err = h.player.JumpCue(cmd.Forward)
	case "seek_cue":
		if cmd.Index == nil {
			return errorReply(cmd.Type, fmt.Errorf("%w: index", errMissingField))
		}
		err = h.player.SeekToCue(*cmd.Index)
	case "scrub_begin":
		err = h.player.BeginScrub()
	case "scrub_end":
		err = h.player.EndScrub()
	default:
		return errorReply(cmd.Type, fmt.Errorf("unknown command %q", cmd.Type))
	}

	if err != nil {
		return errorReply(cmd.Type, err)
	}
	return nil
}

func errorReply(command string, err error) map[string]any {
	msg := map[string]any{
		"type":    "error",
		"message": err.Error(),
	}
	if command != "" {
		msg["command"] = command
	}
	return msg
}

func encodeEvent(ev playback.Event) map[string]any {
	msg := map[string]any{"type": ev.EventType()}
	switch e := ev.(type) {
	case playback.SubtitleLoaded:
		msg["success"] = e.Success
		msg["source"] = e.Source
	case playback.ActiveCueChanged:
		msg["index"] = e.Index
		msg["text"] = e.Text
	case playback.ElapsedTimeChanged:
		msg["elapsed_ms"] = e.Elapsed.Milliseconds()
		msg["total_ms"] = e.Total.Milliseconds()
		msg["label"] = subtitle.FormatClock(e.Elapsed) + " / " + subtitle.FormatClock(e.Total)
	}
	return msg
}

func encodeStatus(st playback.Status) map[string]any {
	return map[string]any{
		"type":       "status",
		"state":      st.State.String(),
		"elapsed_ms": st.Elapsed.Milliseconds(),
		"total_ms":   st.Total.Milliseconds(),
		"index":      st.Index,
		"cues":       st.Cues,
		"scrubbing":  st.Scrubbing,
	}
}

type wireCue struct {
	Index   int    `json:"index"`
	StartMs int64  `json:"start_ms"`
	EndMs   int64  `json:"end_ms"`
	Text    string `json:"text"`
}

func encodeCues(cues []subtitle.Cue) map[string]any {
	out := make([]wireCue, 0, len(cues))
	for i, c := range cues {
		out = append(out, wireCue{
			Index:   i,
			StartMs: c.Start.Milliseconds(),
			EndMs:   c.End.Milliseconds(),
			Text:    c.Text,
		})
	}
	return map[string]any{"type": "cues", "cues": out}
}

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zantac/OSN/internal/playback"
	"github.com/zantac/OSN/internal/subtitle"
)

// Controls is the part of the player the terminal drives.
type Controls interface {
	StartPlayback() error
	Stop() error
	TogglePause() error
	Nudge(delta time.Duration) error
	JumpCue(forward bool) error
}

// EventMsg carries a playback event into the Bubble Tea program.
type EventMsg struct {
	Event playback.Event
}

type Model struct {
	controls Controls
	step     time.Duration
	source   string

	text    string
	elapsed time.Duration
	total   time.Duration
	paused  bool
	stopped bool
	err     error

	progress progress.Model
	Quit     bool
}

func NewModel(controls Controls, source string, step time.Duration) Model {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 60
	return Model{
		controls: controls,
		step:     step,
		source:   source,
		progress: bar,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		m.apply(msg.Event)
		return m, nil

	case tea.WindowSizeMsg:
		m.progress.Width = max(10, min(msg.Width-4, 100))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Quit = true
			return m, tea.Quit
		case " ":
			m.err = m.controls.TogglePause()
			if m.err == nil {
				m.paused = !m.paused
			}
		case "left", "h":
			m.err = m.controls.Nudge(-m.step)
		case "right", "l":
			m.err = m.controls.Nudge(m.step)
		case "n":
			m.err = m.controls.JumpCue(true)
		case "p":
			m.err = m.controls.JumpCue(false)
		case "s":
			m.err = m.controls.Stop()
		case "r":
			m.err = m.controls.StartPlayback()
			if m.err == nil {
				m.stopped = false
				m.paused = false
			}
		}
	}
	return m, nil
}

func (m *Model) apply(ev playback.Event) {
	switch e := ev.(type) {
	case playback.ActiveCueChanged:
		m.text = e.Text
	case playback.ElapsedTimeChanged:
		m.elapsed = e.Elapsed
		m.total = e.Total
	case playback.PlaybackStopped:
		m.stopped = true
		m.paused = false
		m.text = ""
		m.elapsed = 0
	case playback.SubtitleLoaded:
		if !e.Success {
			m.err = fmt.Errorf("failed to load %s", e.Source)
		}
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("osn") + " " + sourceStyle.Render(m.source) + "\n\n")

	text := m.text
	if text == "" {
		text = " "
	}
	b.WriteString(cueStyle.Render(text) + "\n\n")

	b.WriteString(m.progress.ViewAs(m.fraction()) + "\n")
	label := subtitle.FormatClock(m.elapsed) + " / " + subtitle.FormatClock(m.total)
	switch {
	case m.stopped:
		label += "  stopped"
	case m.paused:
		label += "  paused"
	}
	b.WriteString(clockStyle.Render(label) + "\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	}

	b.WriteString(helpStyle.Render(fmt.Sprintf(
		"\n  space: Play/Pause • ←/→: Nudge %v • n/p: Next/Previous • s: Stop • r: Restart • q: Quit\n",
		m.step,
	)))
	return b.String()
}

func (m Model) fraction() float64 {
	if m.total <= 0 || m.elapsed <= 0 {
		return 0
	}
	return min(float64(m.elapsed)/float64(m.total), 1)
}

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#93C5FD")).Bold(true)
	sourceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	cueStyle    = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 2).
			Width(64).
			Align(lipgloss.Center)
	clockStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD166"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF476F"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Italic(true)
)

package ui

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/zalgoplayer/internal/config"
	"github.com/olivier-w/zalgoplayer/internal/player"
	"github.com/olivier-w/zalgoplayer/internal/render"
)

const seekStep = 5 * time.Second

// Transport is the playback surface the TUI drives.
type Transport interface {
	Play()
	Pause()
	Paused() bool
	Position() time.Duration
	Duration() time.Duration
	Seek(delta time.Duration) error
	Restart() error
	Volume() float64
	AdjustVolume(delta float64)
	Done() <-chan struct{}
	Close()
}

// Options configures a Model.
type Options struct {
	Metadata      player.Metadata
	Autoplay      bool
	Repeat        bool
	FrameInterval time.Duration
	Style         config.StyleConfig
}

// Model is the Bubbletea model for the zalgoplayer TUI. It owns the frame
// queue the visualizer schedules on, so every render tick runs inside Update.
type Model struct {
	player     Transport
	controller *render.Controller
	frames     *render.FrameQueue
	source     render.AudioSource
	interval   time.Duration
	autoplay   bool

	metadata   player.Metadata
	elapsed    time.Duration
	duration   time.Duration
	volume     float64
	paused     bool
	ended      bool
	repeatMode RepeatMode
	width      int
	quitting   bool
	status     string

	keys     keyMap
	help     help.Model
	progress progress.Model
	bar      lipgloss.Style
}

// New creates a new Model. The controller must schedule on frames; src is
// attached when the program starts.
func New(p Transport, ctrl *render.Controller, frames *render.FrameQueue, src render.AudioSource, opts Options) Model {
	interval := opts.FrameInterval
	if interval <= 0 {
		interval = time.Second / 60
	}
	repeat := RepeatOff
	if opts.Repeat {
		repeat = RepeatOne
	}
	return Model{
		player:     p,
		controller: ctrl,
		frames:     frames,
		source:     src,
		interval:   interval,
		autoplay:   opts.Autoplay,
		metadata:   opts.Metadata,
		duration:   p.Duration(),
		volume:     p.Volume(),
		paused:     p.Paused(),
		repeatMode: repeat,
		keys:       newKeyMap(),
		help:       help.New(),
		progress: progress.New(
			progress.WithScaledGradient("#5A56E0", "#EE6FF8"),
			progress.WithoutPercentage(),
		),
		bar: barStyle(opts.Style),
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(),
		checkDone(m.player),
		attachCmd(),
		tea.SetWindowTitle(windowTitle(m.metadata.Title, !m.autoplay)),
	}
	if m.autoplay {
		cmds = append(cmds, func() tea.Msg { return autoplayMsg{} })
	}
	return tea.Batch(cmds...)
}

func checkDone(p Transport) tea.Cmd {
	return func() tea.Msg {
		<-p.Done()
		return playbackEndedMsg{}
	}
}

// attachCmd defers graph setup to a message so a play signal may arrive
// before it completes.
func attachCmd() tea.Cmd {
	return func() tea.Msg {
		return attachedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.handleMsg(msg)
	if frames := next.scheduleFrames(); frames != nil {
		return next, tea.Batch(cmd, frames)
	}
	return next, cmd
}

// scheduleFrames turns newly requested render frames into timer commands.
func (m Model) scheduleFrames() tea.Cmd {
	ids := m.frames.Requested()
	if len(ids) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(ids))
	for _, id := range ids {
		cmds = append(cmds, frameCmd(id, m.interval))
	}
	return tea.Batch(cmds...)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case attachedMsg:
		if err := m.controller.Attach(m.source); err != nil {
			log.Printf("ui: %v", err)
			m.status = err.Error()
		}
		return m, nil

	case autoplayMsg:
		m.play()
		return m, tea.SetWindowTitle(windowTitle(m.metadata.Title, false))

	case frameMsg:
		m.frames.Run(msg.id)
		return m, nil

	case tickMsg:
		m.elapsed = m.player.Position()
		m.volume = m.player.Volume()
		if !m.ended {
			m.paused = m.player.Paused()
		}
		return m, tickCmd()

	case playbackEndedMsg:
		if m.repeatMode == RepeatOne {
			return m.restart()
		}
		m.controller.Pause()
		m.elapsed = m.duration
		m.paused = true
		m.ended = true
		return m, tea.SetWindowTitle(windowTitle(m.metadata.Title, true))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.controller.Close()
		m.player.Close()
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	case key.Matches(msg, m.keys.Play):
		if m.ended {
			return m.restart()
		}
		if m.paused {
			m.play()
		} else {
			m.pause()
		}
		return m, tea.SetWindowTitle(windowTitle(m.metadata.Title, m.paused))
	case key.Matches(msg, m.keys.Back):
		m.seek(-seekStep)
	case key.Matches(msg, m.keys.Forward):
		m.seek(seekStep)
	case key.Matches(msg, m.keys.VolUp):
		m.player.AdjustVolume(0.05)
		m.volume = m.player.Volume()
	case key.Matches(msg, m.keys.VolDown):
		m.player.AdjustVolume(-0.05)
		m.volume = m.player.Volume()
	case key.Matches(msg, m.keys.Repeat):
		m.repeatMode = m.repeatMode.Next()
	}
	return m, nil
}

func (m *Model) play() {
	m.player.Play()
	m.controller.Play()
	m.paused = false
}

func (m *Model) pause() {
	m.player.Pause()
	m.controller.Pause()
	m.paused = true
}

func (m *Model) seek(delta time.Duration) {
	if m.ended {
		return
	}
	if err := m.player.Seek(delta); err != nil {
		log.Printf("ui: seek: %v", err)
		m.status = err.Error()
		return
	}
	m.controller.ResetSmoothing()
	m.elapsed = m.player.Position()
}

func (m Model) restart() (Model, tea.Cmd) {
	if err := m.player.Restart(); err != nil {
		log.Printf("ui: restart: %v", err)
		m.status = err.Error()
		return m, nil
	}
	m.controller.ResetSmoothing()
	m.ended = false
	m.elapsed = 0
	m.play()
	return m, tea.Batch(checkDone(m.player), tea.SetWindowTitle(windowTitle(m.metadata.Title, false)))
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w := m.width
	if w < 30 {
		w = 50
	}

	var b strings.Builder
	b.WriteString("\n  " + headerStyle.Render("zalgoplayer") + "\n\n")
	b.WriteString("  " + titleStyle.Render(m.metadata.Title) + "\n")
	if sub := m.subtitle(); sub != "" {
		b.WriteString("  " + artistStyle.Render(sub) + "\n")
	}

	b.WriteString(indent(m.bar.Render(m.controller.Frame())) + "\n\n")

	elapsed, total := formatDuration(m.elapsed), formatDuration(m.duration)
	m.progress.Width = max(w-len(elapsed)-len(total)-6, 10)
	b.WriteString(fmt.Sprintf("  %s %s %s\n\n",
		timeStyle.Render(elapsed),
		m.progress.ViewAs(progressRatio(m.elapsed, m.duration)),
		timeStyle.Render(total)))

	b.WriteString("  " + m.statusLine(w) + "\n")
	if m.status != "" {
		b.WriteString("  " + errorStyle.Render(m.status) + "\n")
	}
	b.WriteString("\n  " + m.help.View(m.keys) + "\n")
	return b.String()
}

func (m Model) subtitle() string {
	switch {
	case m.metadata.Artist != "" && m.metadata.Album != "":
		return m.metadata.Artist + " - " + m.metadata.Album
	case m.metadata.Artist != "":
		return m.metadata.Artist
	}
	return m.metadata.Album
}

func (m Model) statusLine(w int) string {
	icon, text := "▶", "playing"
	switch {
	case m.ended:
		icon, text = "■", "ended"
	case m.paused:
		icon, text = "❚❚", "paused"
	}
	left := fmt.Sprintf("%s  %s  %s · %d cols", icon, text, m.controller.Mode(), m.controller.Columns())
	if r := m.repeatMode.Icon(); r != "" {
		left += "  " + r
	}
	right := renderVolumePercent(m.volume)
	gap := max(w-lipgloss.Width(left)-len(right)-4, 2)
	return statusStyle.Render(left) + strings.Repeat(" ", gap) + statusStyle.Render(right)
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}

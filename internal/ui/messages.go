package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/zalgoplayer/internal/render"
)

type tickMsg time.Time
type playbackEndedMsg struct{}
type autoplayMsg struct{}
type attachedMsg struct{}

// frameMsg fires at a frame boundary for one requested render frame.
type frameMsg struct {
	id render.FrameID
}

func tickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func frameCmd(id render.FrameID, interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return frameMsg{id: id}
	})
}

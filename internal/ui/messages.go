package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// animInterval is how often the animation driver is stepped.
const animInterval = time.Second / 60

type frameTickMsg time.Time
type animTickMsg time.Time

func frameTickCmd(fps int) tea.Cmd {
	if fps < 1 {
		fps = 30
	}
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return frameTickMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(animInterval, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

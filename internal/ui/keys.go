package ui

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func helpText(paused bool) string {
	s := "t straighten  b release  click pull  c clear  d decay  +/- speed"
	if paused {
		s += "  space resume"
	} else {
		s += "  space pause"
	}
	s += "  q quit"
	return s
}

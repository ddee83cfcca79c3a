package ui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/ribbon/internal/frame"
	"github.com/olivier-w/ribbon/internal/ribbon"
	"github.com/olivier-w/ribbon/internal/stage"
	"github.com/olivier-w/ribbon/internal/tween"
)

const speedStep = 0.5

// maxAnimStep caps how much time one animation tick may cover, so a stalled
// terminal does not skip a whole transition.
const maxAnimStep = 100 * time.Millisecond

// Model is the Bubbletea model for the ribbon TUI.
type Model struct {
	ribbon *ribbon.Ribbon
	frames *frame.Broadcaster
	driver *tween.Driver
	stage  *stage.Stage
	logger *slog.Logger
	fps    int

	width    int
	height   int
	quitting bool
	lastAnim time.Time

	progress progress.Model
	spinner  spinner.Model
}

// New creates a Model driving r. frames and driver must be the ones r was
// built with; st must be r's draw surface.
func New(r *ribbon.Ribbon, frames *frame.Broadcaster, driver *tween.Driver, st *stage.Stage, fps int, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	p := progress.New(
		progress.WithScaledGradient("#FF8C00", "#5F1FFF"),
		progress.WithoutPercentage(),
	)
	p.Width = 20

	return Model{
		ribbon:   r,
		frames:   frames,
		driver:   driver,
		stage:    st,
		logger:   logger,
		fps:      fps,
		progress: p,
		spinner:  s,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(frameTickCmd(m.fps), animTickCmd(), m.spinner.Tick, tea.SetWindowTitle("ribbon"))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isQuit(msg) {
			m.quitting = true
			m.ribbon.DetachFromRenderFrame()
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		}
		m.handleKey(msg.String())
		return m, nil

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.pullAt(msg.X)
		}
		return m, nil

	case frameTickMsg:
		if m.ribbon.Attached() {
			m.stage.Clear()
		}
		m.frames.Emit()
		if m.fps > 0 && m.frames.Frames()%uint64(m.fps) == 0 {
			m.logChain()
		}
		return m, frameTickCmd(m.fps)

	case animTickMsg:
		now := time.Time(msg)
		dt := animInterval
		if !m.lastAnim.IsZero() {
			dt = min(now.Sub(m.lastAnim), maxAnimStep)
		}
		m.lastAnim = now
		m.driver.Step(dt)
		return m, animTickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.stage.Resize(msg.Width, max(1, msg.Height-statusLines))
		m.progress.Width = max(10, min(30, msg.Width/4))
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(key string) {
	r := m.ribbon
	switch key {
	case "t":
		r.AnimateToTop()
		m.logger.Debug("straighten transition", "direction", "top", "pulled", r.Pulled() != nil)
	case "b":
		r.AnimateToBottom()
		m.logger.Debug("straighten transition", "direction", "bottom", "pulled", r.Pulled() != nil)
	case "c":
		r.ClearPullPoint()
		m.logger.Debug("pull point cleared")
	case "d":
		r.Decay = r.Decay.Next()
		r.Straighten()
		m.logger.Debug("decay law changed", "decay", r.Decay.String())
	case " ":
		if r.Attached() {
			r.DetachFromRenderFrame()
		} else {
			r.AttachToRenderFrame()
		}
		m.logger.Debug("render frame", "attached", r.Attached())
	case "+", "=":
		r.Speed += speedStep
	case "-", "_":
		r.Speed -= speedStep
	case "0":
		r.Speed = r.IdleSpeed
	}
}

func (m *Model) pullAt(col int) {
	cols, _ := m.stage.Size()
	if cols < 1 {
		return
	}
	point := clamp01((float64(col) + 0.5) / float64(cols))
	m.ribbon.SetPullPoint(point)
	m.ribbon.Straighten()
	m.logger.Debug("pull point set", "point", point)
}

func (m Model) logChain() {
	if !m.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	fp, err := m.ribbon.Snapshot().Fingerprint()
	if err != nil {
		m.logger.Warn("chain fingerprint failed", "error", err)
		return
	}
	m.logger.Debug("chain",
		"frame", m.frames.Frames(),
		"segments", m.ribbon.Len(),
		"total_length", m.ribbon.TotalSegmentLength(),
		"fingerprint", fp,
	)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	r := m.ribbon

	state := "running"
	if !r.Attached() {
		state = "paused"
	}
	if r.Animating() {
		state = m.spinner.View() + " straightening"
	}
	left := fmt.Sprintf("%s %s  %s  decay %s  %d segments", state, renderElapsed(m.frames.Frames(), m.fps), renderSpeed(r.Speed), r.Decay, r.Len())
	pull := ""
	if r.Pulled() != nil {
		pull = pulledStyle.Render("  pulled")
	}
	bar := m.progress.ViewAs(clamp01(r.StraightenStrength))
	strength := renderStrength(r.StraightenStrength)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(pull) - lipgloss.Width(bar) - len(strength) - 15

	lines := m.stage.Render() + "\n"
	lines += "  " + headerStyle.Render("ribbon") + "  " + statusStyle.Render(left) + pull + spaces(gap) + bar + " " + statusStyle.Render(strength) + "\n"
	lines += "  " + helpStyle.Render(helpText(!r.Attached()))
	return lines
}

package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/blackhole/internal/metrics"
	"github.com/san-kum/blackhole/internal/sim"
)

const (
	defaultCols     = 80
	defaultRows     = 30
	sidebarWidth    = 44
	canvasPadTop    = 1
	canvasPadLeft   = 2
	historyCapacity = 600
)

type TickMsg time.Time

// Model drives a simulator from Bubble Tea messages and renders it.
type Model struct {
	sim          *sim.Simulator
	canvas       *Canvas
	styles       cellStyles
	interval     time.Duration
	running      bool
	trails       bool
	colorMode    string
	popHistory   []float64
	speedHistory []float64
	err          error
}

func NewModel(s *sim.Simulator) Model {
	cfg := s.Settings()
	m := Model{
		sim:          s,
		canvas:       NewCanvas(defaultCols, defaultRows),
		styles:       make(cellStyles),
		interval:     cfg.Tick,
		running:      true,
		trails:       cfg.Trails,
		colorMode:    cfg.ColorMode,
		popHistory:   make([]float64, 0, historyCapacity),
		speedHistory: make([]float64, 0, historyCapacity),
	}
	m.draw()
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case ".":
			if !m.running {
				m.step()
			}
		case "r":
			m.err = m.sim.Reset()
		case "g":
			m.err = m.sim.Respawn()
		case "c":
			m.sim.Clear()
		case "t":
			m.trails = !m.trails
			m.canvas.Clear()
		case "m":
			m.colorMode = NextColorMode(m.colorMode)
		}
		m.draw()

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonLeft:
			if origin, ok := m.cellToWorld(msg.X, msg.Y); ok {
				m.err = m.sim.Inject(origin)
			}
		case tea.MouseButtonRight:
			m.err = m.sim.Respawn()
		}
		m.draw()

	case tea.WindowSizeMsg:
		cols := msg.Width - sidebarWidth - 2*canvasPadLeft
		rows := msg.Height - 2*canvasPadTop
		m.canvas.Resize(max(cols, 10), max(rows, 5))
		m.draw()

	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		return m, m.tick()
	}
	return m, nil
}

// step advances the swarm one tick and records the HUD series.
func (m *Model) step() {
	m.sim.Step()

	st := m.sim.State()
	m.popHistory = appendCapped(m.popHistory, float64(st.Len()))
	m.speedHistory = appendCapped(m.speedHistory, metrics.MeanSpeedOf(st))
}

func appendCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

func (m *Model) viewport() (scale, ox, oy float64) {
	cfg := m.sim.Settings()
	return fit(m.canvas, cfg.Width, cfg.Height)
}

func (m *Model) project(x, y float64) (int, int) {
	cfg := m.sim.Settings()
	return project(m.canvas, cfg.Width, cfg.Height, x, y)
}

// cellToWorld converts a terminal cell under the pointer to world
// coordinates. ok is false outside the canvas.
func (m *Model) cellToWorld(x, y int) (r2.Vec, bool) {
	col, row := x-canvasPadLeft, y-canvasPadTop
	if col < 0 || row < 0 || col >= m.canvas.Width || row >= m.canvas.Height {
		return r2.Vec{}, false
	}
	scale, ox, oy := m.viewport()
	sx := float64(col*2) + 1
	sy := float64(row*4) + 2
	return r2.Vec{X: (sx - ox) / scale, Y: (sy - oy) / scale}, true
}

func (m *Model) draw() {
	if m.trails {
		m.canvas.Fade()
	} else {
		m.canvas.Clear()
	}
	cfg := m.sim.Settings()
	DrawFrame(m.canvas, m.sim.State(), cfg.Width, cfg.Height, m.colorMode)
}

// View renders the TUI interface.
func (m Model) View() string {
	canvasView := canvasStyle.Render(m.canvas.Render(m.styles.paint))

	st := m.sim.State()
	var s strings.Builder
	s.WriteString(headerStyle.Render("BLACK HOLE") + "\n")
	if m.running {
		s.WriteString(StatusRunning.Render("RUNNING") + "\n")
	} else {
		s.WriteString(StatusPaused.Render("PAUSED") + "\n")
	}

	if len(m.popHistory) > 1 {
		chart := asciigraph.Plot(m.popHistory, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("Particles"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Particles", fmt.Sprintf("%d", st.Len()))
	row("Absorbed", fmt.Sprintf("%d", st.Absorbed()))
	row("Tick", fmt.Sprintf("%d", m.sim.Ticks()))
	row("Mean speed", fmt.Sprintf("%.3f", metrics.MeanSpeedOf(st)))
	row("Seed", fmt.Sprintf("%d", m.sim.Seed()))
	row("Colour", m.colorMode)
	row("Trails", onOff(m.trails))
	row("Reset", m.sim.Settings().ResetMode)
	s.WriteString(labelStyle.Render("Speed") + SparklineChart(m.speedHistory, 24) + "\n")

	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("─────────────────────\nClick:Cluster  RClick:Galaxy\nSP:Pause .:Step R:Reset\nG:Galaxy C:Clear T:Trails\nM:Colour Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// Run starts the full-screen live view with mouse input enabled.
func Run(s *sim.Simulator) error {
	p := tea.NewProgram(NewModel(s), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

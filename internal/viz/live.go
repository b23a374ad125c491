package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/liftsim/internal/elevator"
	"github.com/san-kum/liftsim/internal/scenario"
	"github.com/san-kum/liftsim/internal/sim"
)

const (
	historyCapacity = 300
	maxStepsFrame   = 64
	frameRate       = 30
)

type TickMsg time.Time

// Model is the live view of a running simulation.
type Model struct {
	sim           *sim.Simulator
	floors        []float64
	traffic       *scenario.Traffic
	dt            float64
	stepsPerFrame int
	running       bool
	err           error
	title         string
	energyHistory []float64
	speedHistory  [][]float64
	paramKeys     []string
	selected      int
	showHelp      bool
	lastCall      string
}

// NewModel wraps s. Each frame advances the simulation by stepsPerFrame
// ticks of dt; the c key injects a random call drawn from seed.
func NewModel(s *sim.Simulator, dt float64, title string, seed int64) (Model, error) {
	floors := s.System().Floors()
	m := Model{
		sim:           s,
		floors:        floors,
		dt:            dt,
		stepsPerFrame: 1,
		running:       true,
		title:         title,
		energyHistory: make([]float64, 0, historyCapacity),
		speedHistory:  make([][]float64, len(s.System().Cars())),
		paramKeys:     []string{"Kp", "Ki", "Kd"},
	}
	if len(floors) > 1 {
		t, err := scenario.NewTraffic(len(floors), 0, seed)
		if err != nil {
			return Model{}, err
		}
		m.traffic = t
	}
	return m, nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.err == nil {
				m.running = !m.running
			}
		case "+", "=":
			if m.stepsPerFrame < maxStepsFrame {
				m.stepsPerFrame *= 2
			}
		case "-", "_":
			if m.stepsPerFrame > 1 {
				m.stepsPerFrame /= 2
			}
		case "c":
			m.randomCall()
		case "tab":
			m.selected = (m.selected + 1) % len(m.paramKeys)
		case "up", "k":
			m.adjustParam(1.1)
		case "down", "j":
			m.adjustParam(1 / 1.1)
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	for i := 0; i < m.stepsPerFrame; i++ {
		snap, err := m.sim.Tick(m.dt)
		if err != nil {
			m.err = err
			m.running = false
			return
		}
		m.record(snap)
	}
}

func (m *Model) record(snap elevator.Snapshot) {
	m.energyHistory = appendCapped(m.energyHistory, snap.TotalEnergy)
	for i, car := range snap.Cars {
		m.speedHistory[i] = appendCapped(m.speedHistory[i], car.Speed)
	}
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

func (m *Model) randomCall() {
	if m.traffic == nil {
		return
	}
	sys := m.sim.System()
	c := m.traffic.Next(sys.Elapsed())
	car, err := sys.NewCall(c.Origin, c.Destination)
	switch {
	case err != nil:
		m.lastCall = err.Error()
	case car < 0:
		m.lastCall = fmt.Sprintf("%d→%d dropped", c.Origin, c.Destination)
	default:
		m.lastCall = fmt.Sprintf("%d→%d car %d", c.Origin, c.Destination, car)
	}
}

// adjustParam scales the selected height-loop gain on every car. A zero
// gain is nudged to a small positive value so it can grow.
func (m *Model) adjustParam(factor float64) {
	key := m.paramKeys[m.selected]
	for _, car := range m.sim.System().Cars() {
		v := car.HeightPID().GetParams()[key]
		if v == 0 && factor > 1 {
			v = 0.01
		}
		_ = car.HeightPID().SetParam(key, v*factor)
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	sys := m.sim.System()
	snap := sys.Snapshot()

	shaftView := shaftStyle.Render(RenderShafts(snap, m.floors))

	var s strings.Builder
	s.WriteString(headerStyle().Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy (kJ)"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs ×%d", snap.Time, m.stepsPerFrame)) + "\n")
	s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.2f kJ", snap.TotalEnergy)) + "\n")
	s.WriteString(labelStyle.Render("Calls") + valueStyle.Render(fmt.Sprintf("%d/%d served, %d dropped", snap.ServedCalls, snap.AssignedCalls, snap.DroppedCalls)) + "\n")
	if m.lastCall != "" {
		s.WriteString(labelStyle.Render("Last call") + valueStyle.Render(m.lastCall) + "\n")
	}

	s.WriteString("\n" + Separator(40) + "\n")
	for i, car := range snap.Cars {
		line := fmt.Sprintf("car %d %s %7.2fm %5.2fm/s %6.1fA ", i, glyph(car.Direction), car.Height, car.Speed, car.Current)
		s.WriteString(carStyle(car.Direction).Render(line))
		if car.MaxLoad > 0 {
			s.WriteString(ProgressBar(car.Load/car.MaxLoad, 8))
		}
		s.WriteString("\n      " + SparklineChart(m.speedHistory[i], 30) + "\n")
	}

	s.WriteString("\nHEIGHT LOOP\n")
	if cars := sys.Cars(); len(cars) > 0 {
		params := cars[0].HeightPID().GetParams()
		for i, k := range m.paramKeys {
			line := fmt.Sprintf("%-4s %.4f", k, params[k])
			if i == m.selected {
				s.WriteString(activeStyle().Render("> "+line) + "\n")
			} else {
				s.WriteString("  " + labelStyle.Render(line) + "\n")
			}
		}
	}

	s.WriteString(helpStyle.Render("SP:Pause C:Call +/-:Speed Q:Quit\nTab ↑↓:Tune T:Theme ?:Help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, shaftView, statsView)
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return errorStyle().Render("STOPPED: " + m.err.Error())
	case !m.running:
		return "PAUSED"
	}
	return "RUNNING"
}

// Err returns the error that stopped the simulation, if any.
func (m Model) Err() error { return m.err }

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  C        - Random call              ║
║  + / -    - Double/halve speed       ║
║  Tab      - Cycle height-loop gain   ║
║  Up/K     - Increase gain (+10%)     ║
║  Down/J   - Decrease gain (-10%)     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

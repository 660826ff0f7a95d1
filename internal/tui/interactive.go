package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/numlib/internal/config"
	"github.com/san-kum/numlib/internal/convergence"
	"github.com/san-kum/numlib/internal/experiment"
	"github.com/san-kum/numlib/internal/viz"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

type state int

const (
	stateMenu state = iota
	stateConfig
	stateStudy
)

const maxLevels = 12

type model struct {
	state   state
	cursor  int
	presets []string
	preset  string

	cfg     *config.Config
	kind    experiment.Kind
	methods []string

	params      map[string]float64
	paramNames  []string
	paramCursor int
	editing     bool
	editBuf     string

	running bool
	report  *convergence.Report
	err     error

	registry *experiment.Registry
	logger   *slog.Logger

	width  int
	height int
}

type studyMsg struct {
	report *convergence.Report
	err    error
}

// NewExplorer returns the interactive convergence explorer. Study logs go to
// logger, which should not write to the terminal the program draws on.
func NewExplorer(registry *experiment.Registry, logger *slog.Logger) tea.Model {
	if registry == nil {
		registry = experiment.NewRegistry()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &model{
		state:    stateMenu,
		presets:  config.ListPresets(),
		params:   map[string]float64{},
		registry: registry,
		logger:   logger,
		width:    80,
		height:   24,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case studyMsg:
		m.running = false
		m.report, m.err = msg.report, msg.err
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateStudy:
		return m.studyKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "t":
		viz.SetTheme(viz.NextTheme())
	case "enter", " ":
		m.preset = m.presets[m.cursor]
		if err := m.load(config.GetPreset(m.preset)); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.state = stateConfig
		m.paramCursor = 0
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%g", &val); err == nil {
				m.params[m.paramNames[m.paramCursor]] = val
			}
			m.editing = false
			m.editBuf = ""
		case "esc":
			m.editing = false
			m.editBuf = ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(m.paramNames)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing = true
		m.editBuf = fmt.Sprintf("%g", m.params[m.paramNames[m.paramCursor]])
	case "left", "h":
		m.adjust(-1)
	case "right", "l":
		m.adjust(1)
	case "m":
		m.cycleMethod()
	case "w":
		if m.cfg.Starter == "rk4" {
			m.cfg.Starter = "euler"
		} else {
			m.cfg.Starter = "rk4"
		}
	case "s":
		m.state = stateStudy
		cmd := m.startStudy()
		return m, cmd
	}
	return m, nil
}

func (m model) studyKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.running {
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
		m.report, m.err = nil, nil
		return m, tea.ClearScreen
	case "c":
		m.state = stateConfig
		return m, tea.ClearScreen
	case "r":
	case "+", "=":
		if m.params["levels"] < maxLevels {
			m.params["levels"]++
		}
	case "-", "_":
		if m.params["levels"] > 2 {
			m.params["levels"]--
		}
	case "m":
		m.cycleMethod()
	case "t":
		viz.SetTheme(viz.NextTheme())
		return m, nil
	default:
		return m, nil
	}
	cmd := m.startStudy()
	return m, cmd
}

// load resolves a preset against the catalog and exposes its tunable
// parameters.
func (m *model) load(cfg *config.Config) error {
	exp, err := cfg.Experiment(m.registry)
	if err != nil {
		return err
	}
	m.cfg = cfg
	m.kind = exp.Kind
	m.methods = m.registry.ListMethods(exp.Kind)

	m.params = map[string]float64{
		"a":      exp.A,
		"b":      exp.B,
		"levels": float64(cfg.Study.Levels),
	}
	switch exp.Kind {
	case experiment.KindAdaptive:
		m.params["eps"] = exp.Eps
		m.params["max_depth"] = float64(exp.MaxDepth)
		m.paramNames = []string{"eps", "max_depth", "levels", "a", "b"}
	case experiment.KindODE:
		m.params["n"] = float64(exp.N)
		m.params["y0"] = exp.Y0
		m.paramNames = []string{"n", "levels", "a", "b", "y0"}
	default:
		m.params["n"] = float64(exp.N)
		m.paramNames = []string{"n", "levels", "a", "b"}
	}
	return nil
}

func (m *model) adjust(dir int) {
	name := m.paramNames[m.paramCursor]
	switch name {
	case "eps":
		m.params[name] *= math.Pow(10, float64(-dir))
	case "n":
		if dir > 0 {
			m.params[name] *= 2
		} else if m.params[name] > 1 {
			m.params[name] = math.Floor(m.params[name] / 2)
		}
	case "levels", "max_depth":
		m.params[name] = math.Max(2, m.params[name]+float64(dir))
	default:
		m.params[name] += 0.1 * float64(dir)
	}
}

func (m *model) cycleMethod() {
	if len(m.methods) < 2 {
		return
	}
	for i, name := range m.methods {
		if name == m.cfg.Method {
			m.cfg.Method = m.methods[(i+1)%len(m.methods)]
			return
		}
	}
	m.cfg.Method = m.methods[0]
}

// experimentConfig applies the edited parameters on top of the preset.
func (m *model) experimentConfig() experiment.Config {
	exp := experiment.Config{
		Kind:    m.kind,
		Method:  m.cfg.Method,
		Target:  m.cfg.Target,
		A:       m.params["a"],
		B:       m.params["b"],
		Y0:      m.params["y0"],
		Y0Set:   m.kind == experiment.KindODE,
		N:       int(m.params["n"]),
		Eps:     m.params["eps"],
		Starter: m.cfg.Starter,
	}
	if m.kind == experiment.KindAdaptive {
		exp.MaxDepth = int(m.params["max_depth"])
		exp.ParallelDepth = m.cfg.ParallelDepth
	}
	return exp
}

func (m *model) startStudy() tea.Cmd {
	m.running = true
	m.report, m.err = nil, nil

	study := convergence.New(m.experimentConfig(), int(m.params["levels"]), m.registry, m.logger)
	if m.cfg.Study.EpsFactor > 1 {
		study.EpsFactor = m.cfg.Study.EpsFactor
	}
	study.Parallel = 4
	return func() tea.Msg {
		report, err := study.Run(context.Background())
		return studyMsg{report: report, err: err}
	}
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateStudy:
		return m.viewStudy()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("           " + viz.GradientTitle.Render("n u m l i b") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, name := range m.presets {
		p := config.Presets[name]
		desc := fmt.Sprintf("%s on %s", p.Method, p.Target)
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-24s", name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-24s", name)) + dimmer.Render(desc) + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n      " + red.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter open   t theme   q quit") + "\n")

	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder

	b.WriteString("\n")
	title := fmt.Sprintf("%s · %s", m.cfg.Method, m.cfg.Target)
	b.WriteString("      " + cyan.Render(title) + "  " + dim.Render(string(m.kind)) + "\n")
	if m.kind == experiment.KindODE {
		b.WriteString("      " + dim.Render("starter ") + white.Render(m.cfg.Starter) + "\n")
	}
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 30)) + "\n\n")

	for i, name := range m.paramNames {
		val := fmt.Sprintf("%10.4g", m.params[name])
		if m.editing && i == m.paramCursor {
			val = fmt.Sprintf("%10s", m.editBuf+"▋")
		}
		if i == m.paramCursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-10s", name)) + magenta.Render(val) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-10s", name)) + dim.Render(val) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select  ←→ adjust  enter edit  m method  w starter  s study  esc back") + "\n")

	return b.String()
}

func (m model) viewStudy() string {
	var b strings.Builder

	cfg := m.experimentConfig()
	b.WriteString(fmt.Sprintf("\n   %s %s\n\n", cyan.Render(cfg.Method), dim.Render("on "+cfg.Target)))

	switch {
	case m.running:
		b.WriteString("   " + yellow.Render("○ running") + "\n")
	case m.err != nil:
		b.WriteString("   " + red.Render("✗ "+m.err.Error()) + "\n")
	case m.report != nil:
		b.WriteString(m.viewReport())
	}

	b.WriteString("\n" + dim.Render("   r rerun  ± levels  m method  t theme  c config  q menu") + "\n")
	return b.String()
}

func (m model) viewReport() string {
	var b strings.Builder
	r := m.report

	param := "n"
	if m.kind == experiment.KindAdaptive {
		param = "eps"
	}
	b.WriteString(dim.Render(fmt.Sprintf("   %-6s %-10s %-12s %-8s %s", "level", param, "error", "ratio", "evals")) + "\n")
	for i, sm := range r.Samples {
		p := fmt.Sprintf("%d", sm.N)
		if m.kind == experiment.KindAdaptive {
			p = fmt.Sprintf("%.0e", sm.Eps)
		}
		ratio := ""
		if i > 0 {
			ratio = fmt.Sprintf("%.2f", r.Ratios[i-1])
		}
		b.WriteString(fmt.Sprintf("   %-6d %-10s %s %-8s %d\n",
			sm.Level, p, white.Render(fmt.Sprintf("%-12.3e", sm.Error)), ratio, sm.Evaluations))
	}

	errs := make([]float64, len(r.Samples))
	for i, sm := range r.Samples {
		errs[i] = sm.Error
	}
	b.WriteString("\n   " + dim.Render("error ") + viz.ErrorSparkline(errs) + "\n")

	order := "n/a"
	if !math.IsNaN(r.Order) {
		order = fmt.Sprintf("%.2f", r.Order)
	}
	b.WriteString("   " + dim.Render("observed order ") + green.Render(order) +
		dim.Render(fmt.Sprintf(" (%d points)", r.FitPoints)) + "\n\n")

	width := m.width - 16
	if width < 20 {
		width = 20
	}
	height := m.height - len(r.Samples) - 16
	if height < 4 {
		height = 4
	}
	for _, line := range strings.Split(viz.ConvergencePlot(r.Samples, width, height), "\n") {
		b.WriteString("   " + line + "\n")
	}
	return b.String()
}

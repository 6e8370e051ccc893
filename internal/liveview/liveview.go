// Package liveview is the minimal status TUI phonon edit runs while
// live-reloading a source file: a poll-based file watcher, a spinner while
// a recompile is in flight, and a status line reporting the last compile
// error or the current cycle position. It is deliberately not a full
// modal editor (spec.md's stated non-goal) — grounded on the teacher's
// internal/supercollider.StartupProgressModel for the bubbletea shape
// (stageMsg/completedMsg/errorMsg-style message set, lipgloss palette) and
// internal/views/mixer.go for the colorful+termenv meter-bar idiom, reused
// here for the underrun-count health bar.
package liveview

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"

	"github.com/phonon-lang/phonon/internal/compiler"
	"github.com/phonon-lang/phonon/internal/diagnostics"
	"github.com/phonon-lang/phonon/internal/runtime"
	"github.com/phonon-lang/phonon/internal/samplebank"
)

// pollInterval is how often the watcher checks the source file's mtime.
const pollInterval = 250 * time.Millisecond

type tickMsg time.Time

type compiledMsg struct {
	err   error
	swaps int
}

// Model is the bubbletea model for `phonon edit`.
type Model struct {
	path       string
	sampleRate float64
	bank       samplebank.Bank
	rt         *runtime.Runtime

	lastMod   time.Time
	compiling bool
	lastErr   error
	swaps     int

	spinner spinner.Model
	width   int
}

// New builds the live-reload status model around an already-running
// Runtime; the caller (cmd/phonon's edit subcommand) owns starting the
// Runtime and the audio sink.
func New(path string, sampleRate float64, bank samplebank.Bank, rt *runtime.Runtime) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{
		path:       path,
		sampleRate: sampleRate,
		bank:       bank,
		rt:         rt,
		spinner:    sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		info, err := os.Stat(m.path)
		if err != nil {
			return m, tickCmd()
		}
		if !info.ModTime().After(m.lastMod) {
			return m, tickCmd()
		}
		m.lastMod = info.ModTime()
		m.compiling = true
		return m, tea.Batch(m.recompile(), tickCmd())

	case compiledMsg:
		m.compiling = false
		m.lastErr = msg.err
		if msg.err == nil {
			m.swaps++
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// recompile reads the source file, compiles it, and (on success) swaps it
// into the live Runtime. A failed compile never touches the running
// graph, per spec.md §7's live-mode error policy.
func (m Model) recompile() tea.Cmd {
	return func() tea.Msg {
		src, err := os.ReadFile(m.path)
		if err != nil {
			return compiledMsg{err: err}
		}
		g, err := compiler.Compile(string(src), m.sampleRate, m.bank)
		if err != nil {
			return compiledMsg{err: err}
		}
		m.rt.Swap(g)
		return compiledMsg{}
	}
}

func (m Model) View() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).
		Render(fmt.Sprintf("phonon edit — %s", m.path))

	status := m.statusLine()
	bar := m.underrunBar()

	return lipgloss.JoinVertical(lipgloss.Left, title, "", status, bar) + "\n"
}

func (m Model) statusLine() string {
	if m.compiling {
		return m.spinner.View() + " compiling..."
	}
	if m.lastErr != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
		if ce, ok := diagnostics.FromError(m.lastErr); ok {
			return errStyle.Render(fmt.Sprintf("error (line %d, col %d): %s", ce.Line, ce.Col, ce.Message))
		}
		return errStyle.Render("error: " + m.lastErr.Error())
	}
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	g := m.rt.Graph()
	return okStyle.Render(fmt.Sprintf("graph swapped (%d total), cycle %.2f", m.swaps, g.CyclePosition))
}

// underrunBar renders a small health meter, healthy (green) draining
// toward unhealthy (red) as the underrun count climbs, the same
// discrete-bucket-plus-termenv-profile coloring internal/views/mixer.go
// uses for its level meters.
func (m Model) underrunBar() string {
	const width = 24
	underruns := m.rt.UnderrunCount()

	healthy, _ := colorful.Hex("#00AF00")
	unhealthy, _ := colorful.Hex("#D70000")
	color := healthy
	if underruns > 0 {
		t := float64(underruns) / float64(underruns+10)
		color = healthy.BlendLuv(unhealthy, t)
	}

	profile := termenv.ColorProfile()
	filled := width
	if underruns > 0 {
		filled = width / 2
	}
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "▒"
		}
	}
	styled := termenv.String(bar).Foreground(profile.Color(color.Hex())).String()
	return fmt.Sprintf("underruns: %d %s", underruns, styled)
}

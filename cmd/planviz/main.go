// planviz is an interactive plan-tree browser built on bubbletea, bubbles
// and lipgloss (the cmd/planviz row of SPEC_FULL.md's table B). It loads one plan-text dump per
// command-line argument (the output of StandardQuery.PrintPlan, or an
// adminapi /explain response body saved to a file) and lets an operator
// tab between them, scrolling long trees in a viewport.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	planBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(1, 2).
			MarginLeft(2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Up       key.Binding
	Down     key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next plan")),
	ShiftTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev plan")),
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// plan is one named plan-text document.
type plan struct {
	name string
	text string
}

type model struct {
	plans    []plan
	active   int
	viewport viewport.Model
	width    int
	height   int
}

func newModel(plans []plan) model {
	return model{plans: plans, viewport: viewport.New(0, 0)}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.width - 6
		m.viewport.Height = m.height - 8
		m.viewport.SetContent(m.plans[m.active].text)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Tab):
			m.active = (m.active + 1) % len(m.plans)
			m.viewport.SetContent(m.plans[m.active].text)
			m.viewport.GotoTop()
		case key.Matches(msg, keys.ShiftTab):
			m.active = (m.active - 1 + len(m.plans)) % len(m.plans)
			m.viewport.SetContent(m.plans[m.active].text)
			m.viewport.GotoTop()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("query plan browser"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")
	s.WriteString(planBoxStyle.Render(m.viewport.View()))
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("tab/shift+tab: switch plan • ↑/↓: scroll • q: quit"))
	return s.String()
}

func (m model) renderTabs() string {
	rendered := make([]string, len(m.plans))
	for i, p := range m.plans {
		if i == m.active {
			rendered[i] = activeTabStyle.Render(p.name)
		} else {
			rendered[i] = inactiveTabStyle.Render(p.name)
		}
	}
	return lipgloss.NewStyle().MarginLeft(2).Render(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
}

// explainDocument mirrors internal/adminapi's explainResponse shape, so a
// file saved straight from a POST /explain response loads directly.
type explainDocument struct {
	Plan string `json:"plan"`
}

func loadPlan(path string) (plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return plan{}, fmt.Errorf("planviz: read %s: %w", path, err)
	}

	text := string(data)
	var doc explainDocument
	if json.Unmarshal(data, &doc) == nil && doc.Plan != "" {
		text = doc.Plan
	}

	return plan{name: path, text: text}, nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: planviz <plan-file>...")
		os.Exit(1)
	}

	plans := make([]plan, 0, len(os.Args)-1)
	for _, path := range os.Args[1:] {
		p, err := loadPlan(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		plans = append(plans, p)
	}

	if _, err := tea.NewProgram(newModel(plans), tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "planviz:", err)
		os.Exit(1)
	}
}

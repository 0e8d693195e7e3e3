package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/abi-runtime/check"
	"github.com/wippyai/abi-runtime/layout"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectA modelState = iota
	stateSelectB
	stateShowReport
)

type diffModel struct {
	names    []string
	filter   textinput.Model
	selected int
	nameA    string
	nameB    string
	report   string
	err      error
	state    modelState
}

func newDiffModel() *diffModel {
	ti := textinput.New()
	ti.Placeholder = "filter"
	ti.Prompt = "/ "
	ti.Width = 40
	ti.Focus()
	return &diffModel{
		names:  fixtureNames(),
		filter: ti,
		state:  stateSelectA,
	}
}

func (m *diffModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *diffModel) visible() []string {
	needle := strings.ToLower(m.filter.Value())
	if needle == "" {
		return m.names
	}
	var out []string
	for _, name := range m.names {
		if strings.Contains(strings.ToLower(name), needle) {
			out = append(out, name)
		}
	}
	return out
}

func (m *diffModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "up":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down":
			if m.selected < len(m.visible())-1 {
				m.selected++
			}
			return m, nil

		case "enter":
			switch m.state {
			case stateSelectA, stateSelectB:
				visible := m.visible()
				if len(visible) == 0 {
					return m, nil
				}
				name := visible[m.selected]
				m.filter.SetValue("")
				m.selected = 0
				if m.state == stateSelectA {
					m.nameA = name
					m.state = stateSelectB
					return m, nil
				}
				m.nameB = name
				m.report, m.err = buildReport(m.nameA, m.nameB)
				m.state = stateShowReport
			case stateShowReport:
				m.state = stateSelectA
				m.nameA, m.nameB = "", ""
				m.report, m.err = "", nil
			}
			return m, nil

		case "esc":
			switch m.state {
			case stateSelectA:
				return m, tea.Quit
			case stateSelectB:
				m.state = stateSelectA
				m.nameA = ""
			case stateShowReport:
				m.state = stateSelectA
				m.nameA, m.nameB = "", ""
				m.report, m.err = "", nil
			}
			m.filter.SetValue("")
			m.selected = 0
			return m, nil

		case "q":
			if m.state == stateShowReport {
				return m, tea.Quit
			}
		}
	}

	if m.state != stateShowReport {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		if visible := m.visible(); m.selected >= len(visible) {
			m.selected = 0
		}
		return m, cmd
	}
	return m, nil
}

func buildReport(a, b string) (string, error) {
	la, err := resolve(a)
	if err != nil {
		return "", err
	}
	lb, err := resolve(b)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(layout.Format(la))
	sb.WriteString("\n")
	sb.WriteString(layout.Format(lb))
	sb.WriteString("\n")

	if err := check.Check(la, lb); err != nil {
		var checkErr *check.Error
		if !errors.As(err, &checkErr) {
			return "", err
		}
		sb.WriteString(errorStyle.Render(checkErr.Error()))
	} else {
		sb.WriteString(okStyle.Render("Compatible."))
		if summary := prefixSummary(la, lb); summary != "" {
			sb.WriteString("\n")
			sb.WriteString(summary)
		}
	}
	return sb.String(), nil
}

func (m *diffModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Layout Diff"))
	if m.nameA != "" {
		b.WriteString("  " + nameStyle.Render(m.nameA))
		if m.nameB != "" {
			b.WriteString(" vs " + nameStyle.Render(m.nameB))
		}
	}
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectA, stateSelectB:
		side := "interface"
		if m.state == stateSelectB {
			side = "implementation"
		}
		fmt.Fprintf(&b, "Select the %s layout:\n\n", side)
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
		for i, name := range m.visible() {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + name))
			} else {
				b.WriteString("  " + name)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter choose • esc back • ctrl+c quit"))

	case stateShowReport:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(m.report)
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter new pair • q quit"))
	}

	return b.String()
}

func runInteractive() error {
	p := tea.NewProgram(newDiffModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Package tui is an interactive terminal browser for archived daily reports.
package tui

import (
	"fmt"

	"diderot/internal/core"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ReportLoader reads archived reports.
type ReportLoader interface {
	List() ([]string, error)
	Load(date string) (*core.DailyReport, error)
}

// model represents the state of the TUI application.
type model struct {
	loader      ReportLoader
	dates       []string // newest first
	dateIdx     int
	report      *core.DailyReport
	selectedIdx int
	width       int
	height      int
	err         error
	quitting    bool
}

// InitialModel opens the report for date, or the newest archived report when date
// is empty or not archived.
func InitialModel(loader ReportLoader, date string) model {
	m := model{loader: loader, width: 100, height: 30}

	dates, err := loader.List()
	if err != nil {
		m.err = err
		return m
	}
	m.dates = dates
	for i, d := range dates {
		if d == date {
			m.dateIdx = i
		}
	}
	m.load()
	return m
}

func (m model) currentDate() string {
	if len(m.dates) == 0 {
		return ""
	}
	return m.dates[m.dateIdx]
}

func (m *model) load() {
	m.selectedIdx = 0
	m.report = nil
	m.err = nil
	if date := m.currentDate(); date != "" {
		m.report, m.err = m.loader.Load(date)
	}
}

// Init is the first command that will be run. We don't need any for now.
func (m model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model accordingly.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.selectedIdx > 0 {
				m.selectedIdx--
			}
		case "down", "j":
			if m.report != nil && m.selectedIdx < len(m.report.Headlines)-1 {
				m.selectedIdx++
			}
		case "left", "h":
			// older report
			if m.dateIdx < len(m.dates)-1 {
				m.dateIdx++
				m.load()
			}
		case "right", "l":
			if m.dateIdx > 0 {
				m.dateIdx--
				m.load()
			}
		}
	}

	return m, nil
}

// View renders the TUI.
func (m model) View() string {
	if m.quitting {
		return "Quitting...\n"
	}

	docStyle := lipgloss.NewStyle().Margin(1, 2)
	paneWidth := m.width/2 - 5
	if paneWidth < 20 {
		paneWidth = 20
	}
	listStyle := lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(1).Width(paneWidth)
	detailStyle := lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(1).Width(paneWidth)

	header := titleStyle.Render("Daily News Report")
	if date := m.currentDate(); date != "" {
		header += " " + dimStyle.Render(fmt.Sprintf("%s (%d/%d)", date, m.dateIdx+1, len(m.dates)))
	}

	var body string
	switch {
	case m.err != nil:
		body = degradedStyle.Render("Error: " + m.err.Error())
	case m.report == nil || len(m.report.Headlines) == 0:
		body = "No report found. Run `diderot generate` first."
	default:
		list := ""
		for i, h := range m.report.Headlines {
			cursor := " "
			if i == m.selectedIdx {
				cursor = ">"
			}
			list += fmt.Sprintf("%s %d. %s\n", cursor, i+1, h.Title)
		}
		detail := RenderHeadline(m.report.Headlines[m.selectedIdx], paneWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, listStyle.Render(list), detailStyle.Render(detail))
	}

	help := dimStyle.Render("\n\n[↑/k] Up | [↓/j] Down | [←/h] Older | [→/l] Newer | [q] Quit")

	return docStyle.Render(header + "\n\n" + body + help)
}

// StartTUI runs the browser until the user quits.
func StartTUI(loader ReportLoader, date string) error {
	p := tea.NewProgram(InitialModel(loader, date), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// Package browse is a terminal viewer over the stored postings: a scrolling
// list with a detail view per posting.
package browse

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sponsorboard/jobsync/internal/model"
)

// Lines per posting item in the list view (title + subtitle + blank
// separator).
const itemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Width(14)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

type browseModel struct {
	postings []model.Posting
	cursor   int
	offset   int
	width    int
	height   int
	ready    bool

	view           viewState
	detailViewport viewport.Model
}

// Run opens the viewer over the given postings and blocks until the user
// quits.
func Run(postings []model.Posting) error {
	m := browseModel{postings: postings}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m browseModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.postings)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.postings) == 0 {
			return m, nil
		}
		m.view = viewDetail
		m.detailViewport = viewport.New(m.width-4, m.height-4)
		m.detailViewport.SetContent(m.renderDetail())
	}

	m.clampOffset()
	return m, nil
}

func (m browseModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

// clampOffset keeps the cursor inside the visible window.
func (m *browseModel) clampOffset() {
	visible := m.visibleItems()
	if visible <= 0 {
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

func (m browseModel) visibleItems() int {
	// Header, border, and status bar take up the rest.
	return (m.height - 5) / itemHeight
}

func (m browseModel) View() string {
	if !m.ready {
		return "loading..."
	}
	if m.view == viewDetail {
		return borderStyle.Width(m.width - 2).Height(m.height - 2).
			Render(m.detailViewport.View())
	}
	return m.renderList()
}

func (m browseModel) renderList() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Postings (%d)", len(m.postings))))
	b.WriteString("\n")

	if len(m.postings) == 0 {
		b.WriteString(subtitleStyle.Render("  nothing stored yet, run a sync first"))
		b.WriteString("\n")
	}

	visible := m.visibleItems()
	end := m.offset + visible
	if end > len(m.postings) {
		end = len(m.postings)
	}
	for i := m.offset; i < end; i++ {
		p := m.postings[i]
		subtitle := fmt.Sprintf("%s · %s · %s", p.OrganizationName, p.DerivedRegion, p.Source)
		if i == m.cursor {
			b.WriteString("  " + selectedTitleStyle.Render(p.Title) + "\n")
			b.WriteString("  " + selectedSubtitleStyle.Render(subtitle) + "\n\n")
		} else {
			b.WriteString("  " + titleStyle.Render(p.Title) + "\n")
			b.WriteString("  " + subtitleStyle.Render(subtitle) + "\n\n")
		}
	}

	b.WriteString(statusBarStyle.Render("↑/↓ move · enter detail · q quit"))
	return b.String()
}

func (m browseModel) renderDetail() string {
	p := m.postings[m.cursor]

	var b strings.Builder
	b.WriteString(detailTitleStyle.Render(p.Title))
	b.WriteString("\n")

	row := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(labelStyle.Render(label) + bodyStyle.Render(value) + "\n")
	}
	row("Company", p.OrganizationName)
	row("Location", p.LocationText)
	row("Region", p.DerivedRegion)
	row("Source", string(p.Source))
	row("Type", p.EmploymentType)
	row("Posted", p.PostedAt.Format(time.RFC1123))
	row("Apply", p.ApplyURL)
	if p.CompensationEstimate > 0 {
		row("Est. comp", fmt.Sprintf("$%.0f / year", p.CompensationEstimate))
	}

	if len(p.Requirements) > 0 {
		b.WriteString("\n" + labelStyle.Render("Requirements") + "\n")
		for _, r := range p.Requirements {
			b.WriteString(bodyStyle.Render("  • "+r) + "\n")
		}
	}

	if p.Description != "" {
		b.WriteString("\n" + bodyStyle.Render(p.Description) + "\n")
	}

	b.WriteString("\n" + subtitleStyle.Render("esc back · q quit"))
	return b.String()
}

// Package browse is the interactive terminal browser for listings. Category
// buttons are shown as tabs above a scrollable table; activating a tab
// filters the table in place.
package browse

import (
	"dbdocs/internal/filter"
	"dbdocs/internal/listing"
	"dbdocs/internal/render"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxColumnWidth = 40

// Model is the bubbletea model of the browser.
type Model struct {
	pages   []*listing.Page
	pageIdx int

	ctrl  *filter.Controller
	table table.Model
	focus int

	width  int
	height int
}

// tableWidget redraws the bubbles table with the visible rows of a page.
type tableWidget struct {
	t    *table.Model
	page *listing.Page
}

func (w *tableWidget) Draw(visible []int) {
	rows := make([]table.Row, 0, len(visible))
	for _, idx := range visible {
		rows = append(rows, table.Row(w.page.Data.Rows[idx]))
	}
	w.t.SetRows(rows)
	w.t.GotoTop()
}

// New creates a browser over pages starting at start. pages must not be empty.
func New(pages []*listing.Page, start listing.PageType) *Model {
	m := &Model{
		pages:  pages,
		height: 24,
	}
	for i, p := range pages {
		if p.Type == start {
			m.pageIdx = i
		}
	}

	m.table = table.New(table.WithFocused(true), table.WithHeight(m.tableHeight()))
	s := table.DefaultStyles()
	s.Header = s.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	s.Selected = s.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	m.table.SetStyles(s)

	m.loadPage()
	return m
}

func (m *Model) page() *listing.Page {
	return m.pages[m.pageIdx]
}

// Controller exposes the filter state of the current page.
func (m *Model) Controller() *filter.Controller {
	return m.ctrl
}

// Rows returns the rows currently in the table.
func (m *Model) Rows() []table.Row {
	return m.table.Rows()
}

func (m *Model) loadPage() {
	p := m.page()

	m.table.SetRows(nil)
	m.table.SetColumns(columns(p.Data))
	m.ctrl = p.Controller(&tableWidget{t: &m.table, page: p})
	m.focus = 0
	m.ctrl.Redraw()
}

func columns(data filter.Dataset) []table.Column {
	cols := make([]table.Column, len(data.Header))
	for i, h := range data.Header {
		w := lipgloss.Width(h)
		for _, row := range data.Rows {
			if i < len(row) {
				w = max(w, lipgloss.Width(row[i]))
			}
		}
		cols[i] = table.Column{Title: h, Width: min(w, maxColumnWidth)}
	}
	return cols
}

func (m *Model) tableHeight() int {
	// title, tabs, blank, status and help lines
	return max(m.height-6, 3)
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetHeight(m.tableHeight())
		m.table.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		if handled, cmd := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	buttons := len(m.ctrl.Buttons())

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return true, tea.Quit
	case "left", "h":
		m.focus = (m.focus - 1 + buttons) % buttons
		return true, nil
	case "right", "l":
		m.focus = (m.focus + 1) % buttons
		return true, nil
	case "enter", " ":
		_ = m.ctrl.ClickIndex(m.focus)
		return true, nil
	case "a", "0":
		m.focus = 0
		_ = m.ctrl.ClickIndex(0)
		return true, nil
	case "tab":
		m.pageIdx = (m.pageIdx + 1) % len(m.pages)
		m.loadPage()
		return true, nil
	case "shift+tab":
		m.pageIdx = (m.pageIdx - 1 + len(m.pages)) % len(m.pages)
		m.loadPage()
		return true, nil
	}

	if n, err := strconv.Atoi(msg.String()); err == nil && n > 0 && n < buttons {
		m.focus = n
		_ = m.ctrl.ClickIndex(n)
		return true, nil
	}

	return false, nil
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	pageStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("250"))
	activeTabStyle = tabStyle.Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	focusTabStyle  = lipgloss.NewStyle().Underline(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func (m *Model) View() string {
	var b strings.Builder

	p := m.page()
	b.WriteString(titleStyle.Render(p.Title))
	b.WriteString(" ")
	b.WriteString(pageStyle.Render("(" + string(p.Type) + ")"))
	b.WriteString("\n")

	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	b.WriteString(m.table.View())
	b.WriteString("\n")

	b.WriteString(mutedStyle.Render(render.Count(len(m.table.Rows()), p.Data.Len())))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("←/→ focus • enter select • 1-9 category • a all • tab page • q quit"))

	return b.String()
}

func (m *Model) renderTabs() string {
	_, filtered := m.ctrl.ActiveButton()

	tabs := make([]string, 0, len(m.ctrl.Buttons()))
	for i, btn := range m.ctrl.Buttons() {
		style := tabStyle
		// The All tab has no active state of its own; it lights up whenever
		// no category is selected.
		if btn.Active || (i == 0 && !filtered) {
			style = activeTabStyle
		}
		label := btn.Label
		if i > 0 && i < 10 {
			label = strconv.Itoa(i) + " " + label
		}
		if i == m.focus {
			style = style.Inherit(focusTabStyle)
		}
		tabs = append(tabs, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

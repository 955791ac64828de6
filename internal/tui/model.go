// Package tui implements the interactive term-pass browser.
package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/passbook/internal/report"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Options configures a browser.
type Options struct {
	Theme       Theme
	Title       string
	Height      int
	ShowExpired bool
}

// DefaultOptions returns the options used by the passes command.
func DefaultOptions() Options {
	return Options{
		Theme:  DefaultTheme,
		Title:  "기간권 현황",
		Height: 15,
	}
}

// chromeHeight is the number of lines the browser draws around the table.
const chromeHeight = 16

// Model is the bubbletea model for browsing term passes.
type Model struct {
	theme       Theme
	help        help.Model
	search      textinput.Model
	keys        KeyMap
	title       string
	entries     []report.PassEntry
	visible     []report.PassEntry
	histogram   []report.Bucket
	table       table.Model
	remaining   int
	width       int
	height      int
	showExpired bool
	searching   bool
	quitting    bool
}

// New builds a browser over a pass report. The report should be built with
// expired passes included so the browser can toggle them.
func New(r report.PassReport, opts Options) Model {
	if opts.Height <= 0 {
		opts.Height = DefaultOptions().Height
	}

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "이름", Width: 10},
			{Title: "기간", Width: 5},
			{Title: "시작일", Width: 10},
			{Title: "종료일", Width: 10},
			{Title: "D-Day", Width: 7},
			{Title: "이벤트", Width: 14},
			{Title: "분류", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(opts.Height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(opts.Theme.Border).
		BorderBottom(true).
		Bold(false)
	s.Selected = opts.Theme.Selected
	t.SetStyles(s)

	search := textinput.New()
	search.Placeholder = "이름 검색..."
	search.CharLimit = 30

	m := Model{
		theme:       opts.Theme,
		help:        help.New(),
		search:      search,
		keys:        DefaultKeyMap(),
		title:       opts.Title,
		entries:     r.Entries,
		histogram:   r.Histogram,
		remaining:   r.Remaining,
		table:       t,
		showExpired: opts.ShowExpired,
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetHeight(max(msg.Height-chromeHeight, 3))
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Search):
			m.searching = true
			return m, m.search.Focus()
		case key.Matches(msg, m.keys.ClearSearch):
			m.search.SetValue("")
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.ToggleExpired):
			m.showExpired = !m.showExpired
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.ToggleHelp):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Home):
			m.table.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.End):
			m.table.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.refresh()
		return m, nil
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.refresh()
	return m, cmd
}

// refresh recomputes the visible rows from the name query and expiry toggle.
func (m *Model) refresh() {
	query := strings.ToLower(strings.TrimSpace(m.search.Value()))

	m.visible = make([]report.PassEntry, 0, len(m.entries))
	for _, e := range m.entries {
		if e.Expired && !m.showExpired {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(e.Name), query) {
			continue
		}
		m.visible = append(m.visible, e)
	}

	rows := make([]table.Row, 0, len(m.visible))
	for _, e := range m.visible {
		campaign := e.CampaignID
		if campaign == "" {
			campaign = "-"
		}
		rows = append(rows, table.Row{
			e.Name,
			fmt.Sprintf("%d주", e.Weeks),
			e.Start.Format("2006-01-02"),
			e.End.Format("2006-01-02"),
			e.DDay,
			campaign,
			e.Kind.DisplayName(),
		})
	}

	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// Visible returns the passes currently listed.
func (m Model) Visible() []report.PassEntry {
	return m.visible
}

// Selected returns the pass under the cursor.
func (m Model) Selected() (report.PassEntry, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return report.PassEntry{}, false
	}
	return m.visible[i], true
}

// Query returns the current name search.
func (m Model) Query() string {
	return m.search.Value()
}

// ShowingExpired reports whether expired passes are listed.
func (m Model) ShowingExpired() bool {
	return m.showExpired
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render(m.title))
	b.WriteString("\n")

	expired := "만료 숨김"
	if m.showExpired {
		expired = "만료 포함"
	}
	b.WriteString(m.theme.Subtitle.Render(fmt.Sprintf("남은 회원 %d명 · %d/%d건 표시 · %s",
		m.remaining, len(m.visible), len(m.entries), expired)))
	b.WriteString("\n")

	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}

	b.WriteString(m.theme.Box.Render(m.table.View()))
	b.WriteString("\n")
	b.WriteString(m.histogramView())
	b.WriteString("\n")

	if e, ok := m.Selected(); ok {
		b.WriteString(m.theme.Status.Render(fmt.Sprintf("No.%s · 남은 일수 %d", e.RowID, e.Remaining)))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) histogramView() string {
	peak := 0
	for _, bucket := range m.histogram {
		peak = max(peak, bucket.Count)
	}

	const width = 20
	lines := make([]string, 0, len(m.histogram))
	for _, bucket := range m.histogram {
		bar := 0
		if peak > 0 {
			bar = bucket.Count * width / peak
		}
		lines = append(lines, fmt.Sprintf("%-6s %s %d",
			bucket.Label, m.theme.Bar.Render(strings.Repeat("█", bar)), bucket.Count))
	}
	return strings.Join(lines, "\n")
}

// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuihanzi/internal/catalog"
	"github.com/verte-zerg/tuihanzi/internal/model"
	"github.com/verte-zerg/tuihanzi/internal/stats"
)

const (
	tabOverview = iota
	tabChars
)

const plotHeight = 8

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#2563EB"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store  stats.RecordLister
	cfg    model.StatsConfig
	levels []string
	window int

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	charTable table.Model

	width  int
	height int
}

// NewModel constructs a stats UI model. levels are offered as filters.
func NewModel(st stats.RecordLister, cfg model.StatsConfig, levels []string, window int) *Model {
	m := &Model{
		store:     st,
		cfg:       cfg,
		levels:    levels,
		window:    max(window, 1),
		tabs:      []string{"Overview", "Characters"},
		overview:  viewport.New(0, 0),
		charTable: newCharTable(),
	}
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "f":
			m.cfg.Level = nextLevelFilter(m.levels, m.cfg.Level)
			m.refreshReport()
			return m, nil
		case "=":
			m.window++
			m.renderOverview()
			return m, nil
		case "-":
			m.window = max(m.window-1, 1)
			m.renderOverview()
			return m, nil
		case "g", "home":
			if m.activeTab == tabChars {
				m.charTable.GotoTop()
			} else {
				m.overview.GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabChars {
				m.charTable.GotoBottom()
			} else {
				m.overview.GotoBottom()
			}
			return m, nil
		}
		var cmd tea.Cmd
		if m.activeTab == tabChars {
			m.charTable, cmd = m.charTable.Update(msg)
		} else {
			m.overview, cmd = m.overview.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderTabs()+"\n"+m.renderFilterSummary(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = max(lipgloss.Height(activeNavStyle.Render("X")), 1) + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(m.height-headerHeight-footerHeight, 1)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.charTable.SetWidth(m.width)
	m.charTable.SetHeight(max(bodyHeight-1, 1))
}

func (m *Model) moveTab(delta int) {
	n := len(m.tabs)
	m.activeTab = ((m.activeTab+delta)%n + n) % n
	if m.activeTab == tabChars {
		m.charTable.Focus()
	} else {
		m.charTable.Blur()
	}
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.report = stats.Report{}
	} else {
		m.errMsg = ""
		m.report = report
	}
	m.charTable.SetRows(charRows(m.report.Chars))
	m.charTable.GotoTop()
	m.updateLayout()
	m.renderOverview()
}

func (m *Model) renderOverview() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	if m.errMsg != "" {
		m.overview.SetContent("Failed to load stats.")
		return
	}
	if len(m.report.Records) == 0 {
		m.overview.SetContent("No practice records found.")
		return
	}
	var buf bytes.Buffer
	if err := stats.RenderTrend(&buf, m.report.Records, m.window, width, plotHeight, true); err != nil {
		m.overview.SetContent(fmt.Sprintf("Failed to render trend: %v", err))
		return
	}
	content := renderSummaryCards(m.report.Summary, width) + "\n\n" + strings.TrimRight(buf.String(), "\n")
	m.overview.SetContent(content)
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderFilterSummary() string {
	level := "all"
	if m.cfg.Level != "" {
		level = catalog.LevelLabel(m.cfg.Level)
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = fmt.Sprintf("%d", m.cfg.Last)
	}
	summary := fmt.Sprintf("Filters: level=%s  since=%s  last=%s  window=%d", level, since, last, m.window)
	return headerStyle.Render(runewidth.Truncate(summary, max(m.width, 1), "..."))
}

func (m *Model) renderBody() string {
	if m.activeTab == tabChars {
		if len(m.report.Chars) == 0 {
			return "No character stats found."
		}
		return m.charTable.View()
	}
	return m.overview.View()
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Nav: left/right  Scroll: up/down  Level: f  Window: -/=  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func renderSummaryCards(s stats.Summary, width int) string {
	cards := []string{
		metricCard("Written", fmt.Sprintf("%d", s.Completions)),
		metricCard("Distinct", fmt.Sprintf("%d", s.Distinct)),
		metricCard("Avg Time", fmt.Sprintf("%.1fs", s.AvgSeconds)),
		metricCard("Best Time", fmt.Sprintf("%.1fs", s.BestSeconds)),
		metricCard("Efficiency", fmt.Sprintf("%.1f%%", s.Efficiency*100)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func newCharTable() table.Model {
	columns := make([]table.Column, 0, len(stats.CharHeaders))
	for _, title := range stats.CharHeaders {
		columns = append(columns, table.Column{Title: title, Width: max(runewidth.StringWidth(title), 6)})
	}
	columns[1].Width = 10
	t := table.New(table.WithColumns(columns), table.WithHeight(1))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	t.SetStyles(styles)
	return t
}

func charRows(aggs []model.CharAggregate) []table.Row {
	rows := make([]table.Row, 0, len(aggs))
	for _, row := range stats.CharRows(aggs) {
		rows = append(rows, table.Row(row))
	}
	return rows
}

// nextLevelFilter cycles "" (all) through each level and back.
func nextLevelFilter(levels []string, current string) string {
	if current == "" {
		if len(levels) == 0 {
			return ""
		}
		return levels[0]
	}
	for i, level := range levels {
		if level == current && i+1 < len(levels) {
			return levels[i+1]
		}
	}
	return ""
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w < width {
			lines[i] = line + strings.Repeat(" ", width-w)
		}
	}
	return strings.Join(lines, "\n")
}

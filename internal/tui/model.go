// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuihanzi/internal/catalog"
	"github.com/verte-zerg/tuihanzi/internal/demo"
	"github.com/verte-zerg/tuihanzi/internal/guide"
	"github.com/verte-zerg/tuihanzi/internal/input"
	"github.com/verte-zerg/tuihanzi/internal/session"
)

const (
	headerHeight = 2
	statusHeight = 2
	canvasLeft   = 1
	demoCols     = 24
	demoRows     = demoCols / 2
	demoGap      = 2
	mousePointer = 1
	demoFrame    = 50 * time.Millisecond
)

var (
	levelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	charStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	pinyinStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	speakStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2563EB"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	captionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

type guideLoadedMsg struct{ res guide.Result }

type demoLoadedMsg struct{ res guide.Result }

type demoTickMsg struct{ at time.Time }

type speechDoneMsg struct{ err error }

// Options configures the practice UI.
type Options struct {
	Logger *slog.Logger
}

// Model implements the Bubble Tea practice UI.
type Model struct {
	ctx     context.Context
	session *session.Session
	canvas  *Canvas
	player  *demo.Player
	logger  *slog.Logger

	keys keyMap
	help help.Model

	width  int
	height int
	cols   int
	rows   int

	ticking  bool
	lastTick time.Time
	demoErr  bool
}

// NewModel constructs a practice TUI model. cv must be the renderer sess
// draws onto; player may be nil.
func NewModel(ctx context.Context, sess *session.Session, cv *Canvas, player *demo.Player, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Model{
		ctx:     ctx,
		session: sess,
		canvas:  cv,
		player:  player,
		logger:  logger,
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.pendingCmds()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case guideLoadedMsg:
		m.session.ApplyGuide(msg.res)
		return m, nil
	case demoLoadedMsg:
		return m, m.applyDemo(msg.res)
	case demoTickMsg:
		return m, m.advanceDemo(msg.at)
	case speechDoneMsg:
		m.session.SpeechDone(msg.err)
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	parts := []string{m.renderHeader()}
	if m.rows > 0 {
		parts = append(parts, m.renderBody())
	}
	parts = append(parts, m.renderFooter())
	lines := strings.Split(strings.Join(parts, "\n"), "\n")
	// The canvas stays anchored below the header; anything that does not
	// fit is cut from the bottom.
	if len(lines) > m.height {
		lines = lines[:m.height]
	}
	return strings.Join(lines, "\n")
}

func (m *Model) footerHeight() int {
	return statusHeight + lipgloss.Height(m.help.View(m.keys))
}

// layout sizes the canvas to the rows left between header and footer. A
// terminal too small for any canvas row gets none.
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	availRows := m.height - headerHeight - m.footerHeight()
	availCols := m.width - canvasLeft
	if m.player != nil {
		availCols -= demoCols + demoGap
	}
	rows := max(min(availRows, availCols/2), 0)
	m.rows = rows
	m.cols = rows * 2
	if rows == 0 {
		return
	}
	w, h := m.canvas.surfaceSize(m.cols, m.rows)
	m.session.Resize(w, h)
}

// canvasBounds is the canvas rectangle in terminal cells.
func (m *Model) canvasBounds() input.Rect {
	return input.Rect{
		Left:   canvasLeft,
		Top:    headerHeight,
		Width:  float64(m.cols),
		Height: float64(m.rows),
	}
}

func (m *Model) inCanvas(x, y int) bool {
	b := m.canvasBounds()
	fx, fy := float64(x), float64(y)
	return fx >= b.Left && fx < b.Left+b.Width && fy >= b.Top && fy < b.Top+b.Height
}

func (m *Model) pointerEvent(msg tea.MouseMsg) input.Event {
	return input.Event{
		PointerID: mousePointer,
		X:         float64(msg.X) + 0.5,
		Y:         float64(msg.Y) + 0.5,
		Bounds:    m.canvasBounds(),
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.cols == 0 {
		return
	}
	ev := m.pointerEvent(msg)
	drawing := m.session.State().IsDrawing
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft && m.inCanvas(msg.X, msg.Y) {
			m.session.PointerDown(ev)
		}
	case tea.MouseActionMotion:
		if !drawing {
			return
		}
		if m.inCanvas(msg.X, msg.Y) {
			m.session.PointerMove(ev)
		} else {
			m.session.PointerLeave(ev)
		}
	case tea.MouseActionRelease:
		if drawing {
			m.session.PointerUp(ev)
		}
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.Dismiss):
		m.session.DismissHint()
		return m, nil
	}
	if m.session.State().IsDrawing {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Next):
		m.session.Navigate(1)
	case key.Matches(msg, m.keys.Prev):
		m.session.Navigate(-1)
	case key.Matches(msg, m.keys.NextLevel):
		m.session.NextLevel(1)
	case key.Matches(msg, m.keys.PrevLevel):
		m.session.NextLevel(-1)
	case key.Matches(msg, m.keys.Undo):
		m.session.Undo()
	case key.Matches(msg, m.keys.Clear):
		m.session.Clear()
	case key.Matches(msg, m.keys.Demo):
		m.session.PlayDemo()
	case key.Matches(msg, m.keys.Speak):
		return m, m.speak()
	default:
		return m, nil
	}
	return m, m.pendingCmds()
}

// pendingCmds turns outstanding geometry requests into fetch commands.
func (m *Model) pendingCmds() tea.Cmd {
	var cmds []tea.Cmd
	if pending, ok := m.session.TakeGuideRequest(); ok {
		ctx := m.ctx
		cmds = append(cmds, func() tea.Msg {
			return guideLoadedMsg{res: pending.Fetch(ctx)}
		})
	}
	if m.player != nil {
		if pending, ok := m.player.TakePending(); ok {
			ctx := m.ctx
			cmds = append(cmds, func() tea.Msg {
				return demoLoadedMsg{res: pending.Fetch(ctx)}
			})
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) speak() tea.Cmd {
	job, ok := m.session.Speak()
	if !ok {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return speechDoneMsg{err: job(ctx)}
	}
}

func (m *Model) applyDemo(res guide.Result) tea.Cmd {
	if m.player == nil {
		return nil
	}
	applied, err := m.player.Apply(res)
	if applied {
		m.demoErr = err != nil
	}
	if err != nil {
		m.logger.Warn("demonstration unavailable", "char", res.Character, "err", err)
	}
	if !applied || !m.player.Playing() || m.ticking {
		return nil
	}
	m.ticking = true
	m.lastTick = time.Now()
	return demoTick()
}

func (m *Model) advanceDemo(at time.Time) tea.Cmd {
	if m.player == nil || !m.player.Playing() {
		m.ticking = false
		return nil
	}
	if _, err := m.player.Advance(at.Sub(m.lastTick)); err != nil {
		m.logger.Warn("failed to draw demonstration", "err", err)
	}
	m.lastTick = at
	return demoTick()
}

func demoTick() tea.Cmd {
	return tea.Tick(demoFrame, func(t time.Time) tea.Msg {
		return demoTickMsg{at: t}
	})
}

func (m *Model) renderHeader() string {
	st := m.session.State()
	index, total := m.session.Position()
	segments := []string{
		levelStyle.Render(fmt.Sprintf("%s  %d/%d", catalog.LevelLabel(st.Active.Level), index, total)),
		charStyle.Render(st.Active.Character),
		pinyinStyle.Render(m.session.Pinyin()),
	}
	if m.session.Speaking() {
		segments = append(segments, speakStyle.Render("♪ speaking"))
	}
	line := " " + strings.Join(segments, "  ")
	return line + "\n"
}

func (m *Model) renderBody() string {
	lines := m.canvas.View()
	pad := strings.Repeat(" ", canvasLeft)
	framed := make([]string, len(lines))
	for i, line := range lines {
		framed[i] = pad + line
	}
	body := strings.Join(framed, "\n")
	if m.player == nil || m.rows < demoRows+1 {
		return body
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, body, strings.Repeat(" ", demoGap), m.renderDemo())
}

func (m *Model) renderDemo() string {
	lines := halfBlocks(m.player.Image(), demoCols, demoRows)
	caption := "stroke order"
	switch {
	case m.demoErr:
		caption = session.HintDemoUnavailable
	case !m.player.Playing():
		caption = "press a to replay"
	}
	return strings.Join(lines, "\n") + "\n" + captionStyle.Render(caption)
}

func (m *Model) renderFooter() string {
	st := m.session.State()
	status := fmt.Sprintf("已写 %d 笔", st.CompletedCount)
	switch {
	case m.session.Loading():
		status += " · loading"
	case st.TotalStrokes > 0:
		status += fmt.Sprintf(" / %d", st.TotalStrokes)
	}
	line := footerStyle.Render(status)
	if st.Done() {
		line += "  " + doneStyle.Render("完成!")
	}
	hint := ""
	if h := m.session.Hint(); h != "" {
		hint = hintStyle.Render(h)
	}
	return " " + line + "\n " + hint + "\n " + m.help.View(m.keys)
}

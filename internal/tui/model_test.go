package tui

import (
	"context"
	"image"
	"image/color"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gogpu/gg"

	"github.com/verte-zerg/tuihanzi/internal/catalog"
	"github.com/verte-zerg/tuihanzi/internal/guide"
	"github.com/verte-zerg/tuihanzi/internal/render"
	"github.com/verte-zerg/tuihanzi/internal/session"
)

func squares(counts map[string]int) guide.Provider {
	return guide.ProviderFunc(func(_ context.Context, character string) (*guide.Path, error) {
		p := &guide.Path{Character: character}
		for i := 0; i < counts[character]; i++ {
			s := gg.NewPath()
			s.Rectangle(float64(i*300), 0, 200, 200)
			p.Strokes = append(p.Strokes, s)
		}
		return p, nil
	})
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	pipe, err := render.New(8, 8, render.DefaultPalette())
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	cv := NewCanvas(pipe, 2)
	sess := session.New(session.Options{
		Catalog:  catalog.New(map[string][]string{"grade01": {"一", "二"}}),
		Guides:   guide.NewStore(squares(map[string]int{"一": 1, "二": 2})),
		Renderer: cv,
		Padding:  session.DefaultPadding,
	})
	sess.Restore(context.Background())
	m := NewModel(context.Background(), sess, cv, nil, Options{})
	run(m, m.Init())
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return m
}

// run executes cmd and feeds the resulting messages back into the model.
func run(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			run(m, c)
		}
		return
	}
	_, next := m.Update(msg)
	run(m, next)
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func mouse(action tea.MouseAction, x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft}
}

func TestWindowSizeFitsSquareCanvas(t *testing.T) {
	m := newTestModel(t)
	if m.rows != 25 || m.cols != 50 {
		t.Fatalf("expected 50x25 cells, got %dx%d", m.cols, m.rows)
	}
	lines := m.canvas.View()
	if len(lines) != m.rows {
		t.Fatalf("expected %d canvas lines, got %d", m.rows, len(lines))
	}
	if w := lipgloss.Width(lines[0]); w != m.cols {
		t.Fatalf("expected line width %d, got %d", m.cols, w)
	}
}

func viewLines(m *Model) []string {
	return strings.Split(m.View(), "\n")
}

func TestFullHelpKeepsViewInsideTerminal(t *testing.T) {
	m := newTestModel(t)
	if got := len(viewLines(m)); got > m.height {
		t.Fatalf("view is %d lines in a %d-line terminal", got, m.height)
	}
	m.Update(keyPress("?"))
	if !m.help.ShowAll {
		t.Fatalf("expected full help")
	}
	if got := len(viewLines(m)); got > m.height {
		t.Fatalf("view is %d lines in a %d-line terminal with help", got, m.height)
	}
	if m.rows >= 25 {
		t.Fatalf("expected canvas to shrink for full help, got %d rows", m.rows)
	}

	// The first canvas row must sit where the bounds say it does.
	lines := viewLines(m)
	if got, want := lipgloss.Width(lines[headerHeight]), canvasLeft+m.cols; got != want {
		t.Fatalf("row %d width = %d, want canvas width %d", headerHeight, got, want)
	}
	m.Update(mouse(tea.MouseActionPress, canvasLeft, headerHeight))
	if !m.session.State().IsDrawing {
		t.Fatalf("press on the top-left canvas cell did not start a stroke")
	}
	m.Update(mouse(tea.MouseActionRelease, canvasLeft, headerHeight))

	m.Update(keyPress("?"))
	if m.rows != 25 {
		t.Fatalf("expected canvas to grow back, got %d rows", m.rows)
	}
}

func TestTinyWindowKeepsViewInsideTerminal(t *testing.T) {
	m := newTestModel(t)
	for _, size := range []tea.WindowSizeMsg{
		{Width: 20, Height: 6},
		{Width: 80, Height: 4},
		{Width: 3, Height: 30},
		{Width: 10, Height: 1},
	} {
		m.Update(size)
		if got := len(viewLines(m)); got > size.Height {
			t.Fatalf("%dx%d: view is %d lines", size.Width, size.Height, got)
		}
		if m.rows > 0 && headerHeight+m.rows+m.footerHeight() > size.Height {
			t.Fatalf("%dx%d: canvas of %d rows overflows", size.Width, size.Height, m.rows)
		}
	}
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 4})
	m.Update(mouse(tea.MouseActionPress, canvasLeft, headerHeight))
	if m.session.State().IsDrawing {
		t.Fatalf("press started a stroke without a canvas")
	}
}

func TestGuideLoadedOnInit(t *testing.T) {
	m := newTestModel(t)
	st := m.session.State()
	if st.TotalStrokes != 1 || m.session.Loading() {
		t.Fatalf("expected loaded guide with 1 stroke, got %+v loading=%v", st, m.session.Loading())
	}
}

func TestMouseDragCommitsStroke(t *testing.T) {
	m := newTestModel(t)
	m.Update(mouse(tea.MouseActionPress, 10, 10))
	if !m.session.State().IsDrawing {
		t.Fatalf("expected drawing after press")
	}
	m.Update(mouse(tea.MouseActionMotion, 14, 11))
	m.Update(mouse(tea.MouseActionRelease, 14, 11))
	st := m.session.State()
	if st.IsDrawing || st.CompletedCount != 1 {
		t.Fatalf("expected one committed stroke, got %+v", st)
	}
}

func TestPressOutsideCanvasIgnored(t *testing.T) {
	m := newTestModel(t)
	m.Update(mouse(tea.MouseActionPress, 0, 0))
	if m.session.State().IsDrawing {
		t.Fatalf("press outside canvas started a stroke")
	}
}

func TestMotionOutsideCanvasEndsStroke(t *testing.T) {
	m := newTestModel(t)
	m.Update(mouse(tea.MouseActionPress, 10, 10))
	m.Update(mouse(tea.MouseActionMotion, 11, 10))
	m.Update(mouse(tea.MouseActionMotion, 79, 1))
	st := m.session.State()
	if st.IsDrawing {
		t.Fatalf("expected stroke to end on leave")
	}
	if st.CompletedCount != 1 {
		t.Fatalf("expected leave to commit, got %d", st.CompletedCount)
	}
}

func TestKeysNavigateAndUndo(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(keyPress("n"))
	if got := m.session.State().Active.Character; got != "二" {
		t.Fatalf("expected 二, got %s", got)
	}
	if cmd == nil {
		t.Fatalf("expected a guide fetch command")
	}
	run(m, cmd)
	if got := m.session.State().TotalStrokes; got != 2 {
		t.Fatalf("expected 2 strokes, got %d", got)
	}

	m.Update(mouse(tea.MouseActionPress, 10, 10))
	m.Update(mouse(tea.MouseActionMotion, 12, 12))
	m.Update(mouse(tea.MouseActionRelease, 12, 12))
	m.Update(keyPress("u"))
	if got := m.session.State().CompletedCount; got != 0 {
		t.Fatalf("expected undo to 0, got %d", got)
	}
}

func TestKeysIgnoredWhileDrawing(t *testing.T) {
	m := newTestModel(t)
	m.Update(mouse(tea.MouseActionPress, 10, 10))
	m.Update(keyPress("n"))
	if got := m.session.State().Active.Character; got != "一" {
		t.Fatalf("navigation while drawing moved to %s", got)
	}
}

func TestViewShowsProgress(t *testing.T) {
	m := newTestModel(t)
	view := m.View()
	for _, want := range []string{"小学一年级", "1/2", "一", "已写 0 笔 / 1"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q", want)
		}
	}
	m.Update(mouse(tea.MouseActionPress, 10, 10))
	m.Update(mouse(tea.MouseActionMotion, 12, 12))
	m.Update(mouse(tea.MouseActionRelease, 12, 12))
	if !strings.Contains(m.View(), "完成") {
		t.Fatalf("expected completion marker")
	}
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(keyPress("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestHalfBlocksSize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	lines := halfBlocks(img, 4, 2)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if w := lipgloss.Width(line); w != 4 {
			t.Fatalf("expected width 4, got %d", w)
		}
		if strings.Count(line, halfBlock) != 4 {
			t.Fatalf("expected 4 half blocks in %q", line)
		}
	}
	if halfBlocks(img, 0, 2) != nil {
		t.Fatalf("expected nil for empty size")
	}
}

func TestHexColor(t *testing.T) {
	if got := hexColor(color.RGBA{R: 0x25, G: 0x63, B: 0xeb, A: 0xff}); got != "#2563eb" {
		t.Fatalf("unexpected hex %s", got)
	}
}

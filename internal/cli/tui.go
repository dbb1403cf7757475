package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/flowpen/pkg/element"
	"github.com/matzehuels/flowpen/pkg/engine"
	"github.com/matzehuels/flowpen/pkg/geom"
	"github.com/matzehuels/flowpen/pkg/graph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

const defaultNudge = 10

// =============================================================================
// EditorModel - Interactive graph editor
// =============================================================================

// EditorModel is the bubbletea model of "flowpen edit". Arrow keys move the
// selection through live motion; enter commits the accumulated move as one
// undo step.
type EditorModel struct {
	Store  *engine.Store
	Cursor int
	Step   float64
	Height int
	Offset int

	// Write persists the committed manifest. Nil disables "w".
	Write func(graph.Manifest) error

	ids    []string
	nudge  geom.Point
	status string
	dirty  bool
}

// NewEditorModel creates an editor over store.
func NewEditorModel(store *engine.Store, write func(graph.Manifest) error) EditorModel {
	m := EditorModel{Store: store, Step: defaultNudge, Height: 15, Write: write}
	m.refresh()
	return m
}

// Pending reports the uncommitted live offset of the selection.
func (m EditorModel) Pending() geom.Point { return m.nudge }

// Dirty reports whether there are committed changes that were not written.
func (m EditorModel) Dirty() bool { return m.dirty }

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.status = ""
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancelNudge()
			return m, tea.Quit
		case "k", "shift+tab":
			m.moveCursor(-1)
		case "j", "tab":
			m.moveCursor(1)
		case " ":
			m.selectCursor(engine.SelectToggle)
		case "a":
			m.selectCursor(engine.SelectDefault)
		case "esc":
			if m.nudge != (geom.Point{}) {
				m.cancelNudge()
				m.status = "move cancelled"
			} else {
				m.dispatch(engine.UpdateSelection{Type: engine.ByID, Mode: engine.SelectDefault})
			}
		case "up":
			m.nudgeBy(geom.Pt(0, -m.Step))
		case "down":
			m.nudgeBy(geom.Pt(0, m.Step))
		case "left":
			m.nudgeBy(geom.Pt(-m.Step, 0))
		case "right":
			m.nudgeBy(geom.Pt(m.Step, 0))
		case "enter":
			m.commit()
		case "u":
			m.travel("undo", m.Store.Undo)
		case "r":
			m.travel("redo", m.Store.Redo)
		case "w":
			m.write()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, 5)
	}
	return m, nil
}

// =============================================================================
// Commands
// =============================================================================

func (m *EditorModel) dispatch(a engine.Action) bool {
	if err := m.Store.Dispatch(a); err != nil {
		m.status = err.Error()
		return false
	}
	if a.Class() == engine.ClassCommitted {
		m.dirty = true
	}
	return true
}

func (m *EditorModel) selectCursor(mode engine.SelectionMode) {
	if len(m.ids) == 0 {
		return
	}
	// A selection change re-primes live motion, so settle any pending move.
	m.commit()
	m.dispatch(engine.UpdateSelection{Type: engine.ByID, IDs: []string{m.ids[m.Cursor]}, Mode: mode})
}

func (m *EditorModel) nudgeBy(delta geom.Point) {
	if len(m.Store.Selection()) == 0 {
		m.status = "nothing selected"
		return
	}
	if m.dispatch(engine.DispatchLiveMotion{Delta: delta}) {
		m.nudge = m.nudge.Add(delta)
	}
}

func (m *EditorModel) cancelNudge() {
	if m.nudge == (geom.Point{}) {
		return
	}
	m.dispatch(engine.DispatchLiveMotion{Delta: geom.Pt(-m.nudge.X, -m.nudge.Y)})
	m.nudge = geom.Point{}
}

// commit turns the live offset into one MoveElements step.
func (m *EditorModel) commit() {
	if m.nudge == (geom.Point{}) {
		return
	}
	var moves []engine.Move
	for _, id := range m.Store.Selection() {
		e, ok := m.Store.Element(id)
		if !ok {
			continue
		}
		if pos, ok := element.Position(e); ok {
			moves = append(moves, engine.Move{ID: id, Position: *pos})
		}
	}
	if m.dispatch(engine.MoveElements{Moves: moves}) {
		m.status = fmt.Sprintf("moved %d by %s", len(moves), fmtPoint(m.nudge))
	}
	m.nudge = geom.Point{}
}

func (m *EditorModel) travel(op string, step func() bool) {
	m.nudge = geom.Point{}
	if !step() {
		m.status = "nothing to " + op
		return
	}
	m.dirty = true
	m.refresh()
}

func (m *EditorModel) write() {
	if m.Write == nil {
		m.status = "read-only session"
		return
	}
	m.commit()
	if err := m.Write(m.Store.Manifest()); err != nil {
		m.status = err.Error()
		return
	}
	m.dirty = false
	m.status = "written"
}

// refresh reloads the selectable ids and clamps the cursor.
func (m *EditorModel) refresh() {
	elements := m.Store.Elements()
	ids := make([]string, 0, len(elements))
	for id, e := range elements {
		if element.IsSelectable(e.Type()) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	m.ids = ids
	m.Cursor = min(m.Cursor, max(len(m.ids)-1, 0))
}

func (m *EditorModel) moveCursor(delta int) {
	if len(m.ids) == 0 {
		return
	}
	m.Cursor = (m.Cursor + delta + len(m.ids)) % len(m.ids)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// =============================================================================
// View
// =============================================================================

func (m EditorModel) View() string {
	var b strings.Builder

	title := m.Store.Manifest().Name
	if m.dirty {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("j/k cursor  space toggle  a select  arrows move  ⏎ commit  u/r undo/redo  w write  q quit"))
	b.WriteString("\n\n")

	if len(m.ids) == 0 {
		b.WriteString(listDimStyle.Render("  (no nodes)"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.nodeTable())
		b.WriteString("\n")
	}

	hist := m.Store.History()
	footer := fmt.Sprintf("  [%d/%d]  selected %d  undo %d  redo %d", m.Cursor+1, len(m.ids), len(m.Store.Selection()), hist.Past, hist.Future)
	if m.nudge != (geom.Point{}) {
		footer += "  pending " + fmtPoint(m.nudge)
	}
	b.WriteString(listDimStyle.Render(footer))
	if m.status != "" {
		b.WriteString("\n  " + StyleWarning.Render(m.status))
	}
	return b.String()
}

func (m EditorModel) nodeTable() string {
	end := min(m.Offset+m.Height, len(m.ids))
	selection := m.Store.Selection()
	elements := m.Store.Elements()

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		id := m.ids[i]
		e, ok := elements[id]
		if !ok {
			continue
		}
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := ""
		if slices.Contains(selection, id) {
			mark = "●"
		}
		row := elementRow(elements, e)
		rows = append(rows, []string{cursor, mark, row[2], row[1], row[3]})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("", "", "Name", "Type", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

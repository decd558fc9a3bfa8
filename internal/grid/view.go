package grid

import (
	"context"
	"time"

	"github.com/canfinancialsolutions/canfs-admin/internal/gateway"
	"github.com/canfinancialsolutions/canfs-admin/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// RowsMsg carries a resolved fetch. Seq orders responses so that a stale
// fetch resolving late cannot overwrite newer rows.
type RowsMsg struct {
	View  string
	Seq   uint64
	Rows  []model.Record
	Total int
	Err   error
}

// CommitMsg carries a resolved single-cell write.
type CommitMsg struct {
	View  string
	Seq   uint64
	Row   model.RowID
	Field string
	Rec   model.Record
	Err   error
}

// Model is the inline-editable grid for one view: N fetched rows × the
// registry's columns, with a draft buffer layered over the fetched baseline,
// commit-on-blur, a single active sort, and a fixed-size page window.
type Model struct {
	Name string

	reg    *Registry
	gw     gateway.Gateway
	ctrl   *Controller
	drafts *Buffer
	loc    *time.Location

	rows    []model.Record
	total   int
	columns []string

	cursorRow int
	cursorCol int
	scrollCol int // first visible non-sticky column

	editing bool
	input   textinput.Model

	widths map[string]int

	popover      []string
	popoverTitle string

	loading bool
	banner  string

	width  int
	height int
}

func New(name string, reg *Registry, gw gateway.Gateway, pageSize int) Model {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 256
	m := Model{
		Name:    name,
		reg:     reg,
		gw:      gw,
		ctrl:    NewController(reg, pageSize),
		drafts:  NewBuffer(),
		loc:     time.Local,
		input:   in,
		widths:  map[string]int{},
		columns: reg.DisplayOrder(nil),
		// A fresh grid has a fetch pending before Init's command runs, so
		// the first frame shows the loading state rather than "(no rows)".
		loading: true,
	}
	return m
}

func (m Model) Controller() *Controller { return m.ctrl }
func (m Model) Drafts() *Buffer         { return m.drafts }
func (m Model) Rows() []model.Record    { return m.rows }
func (m Model) Total() int              { return m.total }
func (m Model) Columns() []string       { return m.columns }
func (m Model) Banner() string          { return m.banner }
func (m Model) Loading() bool           { return m.loading }
func (m Model) Editing() bool           { return m.editing }
func (m Model) Registry() *Registry     { return m.reg }
func (m Model) CursorRow() int          { return m.cursorRow }

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.input.Width = 30
}

// SetLocation overrides the display timezone (tests).
func (m *Model) SetLocation(loc *time.Location) { m.loc = loc }

func (m *Model) DismissBanner() { m.banner = "" }

// Fetch issues a page/count query pair for the current controller state.
// The returned command runs off the event loop; the response is applied only
// if no newer fetch superseded it.
func (m *Model) Fetch() tea.Cmd {
	seq := m.ctrl.NextFetch()
	filter := m.ctrl.Filter()
	sort := m.ctrl.Sort()
	page := m.ctrl.Page()
	gw := m.gw
	name := m.Name
	m.loading = true
	return func() tea.Msg {
		ctx := context.Background()
		rows, err := gw.Fetch(ctx, filter, sort, page)
		if err != nil {
			return RowsMsg{View: name, Seq: seq, Err: err}
		}
		total, err := gw.Count(ctx, filter)
		if err != nil {
			return RowsMsg{View: name, Seq: seq, Err: err}
		}
		rows = gateway.PostFilter(rows, filter)
		return RowsMsg{View: name, Seq: seq, Rows: rows, Total: total}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RowsMsg:
		if msg.View != m.Name {
			return m, nil
		}
		return m.applyRows(msg), nil
	case CommitMsg:
		if msg.View != m.Name {
			return m, nil
		}
		return m.applyCommit(msg), nil
	case tea.KeyMsg:
		if m.popover != nil {
			// Any key dismisses the detail popover.
			m.popover = nil
			m.popoverTitle = ""
			return m, nil
		}
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m Model) applyRows(msg RowsMsg) Model {
	if !m.ctrl.Apply(msg.Seq) {
		// A newer fetch already landed; drop the stale response.
		return m
	}
	m.loading = false
	if msg.Err != nil {
		// Keep the last successfully fetched rows visible (stale-but-present).
		m.banner = msg.Err.Error()
		return m
	}
	m.rows = msg.Rows
	m.total = msg.Total
	m.columns = m.reg.DisplayOrder(m.fetchedKeys(msg.Rows))
	if m.cursorRow >= len(m.rows) {
		m.cursorRow = len(m.rows) - 1
	}
	if m.cursorRow < 0 {
		m.cursorRow = 0
	}
	return m
}

func (m Model) applyCommit(msg CommitMsg) Model {
	// The entry clears on resolution either way; on failure the baseline is
	// untouched so the visible value reverts to last known good.
	m.drafts.Settle(msg.Row, msg.Field, msg.Seq)
	if msg.Err != nil {
		m.banner = msg.Err.Error()
		return m
	}
	for i := range m.rows {
		if m.rows[i].ID.Key() == msg.Row.Key() {
			m.rows[i] = msg.Rec
			break
		}
	}
	return m
}

// fetchedKeys lists the fields present on the fetched rows in the gateway's
// declared column order, so undeclared columns surface deterministically.
func (m Model) fetchedKeys(rows []model.Record) []string {
	if len(rows) == 0 {
		return nil
	}
	keys := make([]string, 0, len(rows[0].Fields))
	for _, c := range m.gw.Columns() {
		if _, ok := rows[0].Fields[c.Name]; ok {
			keys = append(keys, c.Name)
		}
	}
	return keys
}

func (m Model) updateNormal(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursorRow > 0 {
			m.cursorRow--
		}
	case "down", "j":
		if m.cursorRow < len(m.rows)-1 {
			m.cursorRow++
		}
	case "left", "h":
		if m.cursorCol > 0 {
			m.cursorCol--
		}
	case "right", "l":
		if m.cursorCol < len(m.columns)-1 {
			m.cursorCol++
		}
	case "enter":
		return m.beginEdit()
	case " ":
		return m.cycleCell()
	case "s":
		return m.toggleSort()
	case "n", "pgdown":
		m.ctrl.NextPage(m.total)
		cmd := m.Fetch()
		return m, cmd
	case "p", "pgup":
		m.ctrl.PrevPage()
		cmd := m.Fetch()
		return m, cmd
	case ">":
		m.resizeColumn(2)
	case "<":
		m.resizeColumn(-2)
	case "esc":
		m.banner = ""
	}
	return m, nil
}

func (m Model) beginEdit() (Model, tea.Cmd) {
	row, def, ok := m.cell()
	if !ok {
		return m, nil
	}
	switch def.Kind {
	case model.KindList:
		m.popover = ListItems(row.Get(def.Key))
		m.popoverTitle = def.Label
		return m, nil
	case model.KindBool:
		return m.cycleCell()
	}
	raw, staged := m.drafts.Get(row.ID, def.Key)
	if !staged {
		raw = EditText(row.Get(def.Key), def)
	}
	m.editing = true
	m.input.SetValue(raw)
	m.input.CursorEnd()
	m.input.Focus()
	return m, textinput.Blink
}

// cycleCell advances a bool or select cell in place: the new value is staged
// as a draft and committed immediately (the toggle is its own blur).
func (m Model) cycleCell() (Model, tea.Cmd) {
	row, def, ok := m.cell()
	if !ok {
		return m, nil
	}
	current := m.drafts.Resolve(row.ID, def.Key, row.Get(def.Key), def)
	var next string
	switch def.Kind {
	case model.KindBool:
		if current == "Yes" || current == "true" {
			next = "false"
		} else {
			next = "true"
		}
	case model.KindSelect:
		next = nextOption(def.Options, current)
	default:
		return m, nil
	}
	seq := m.drafts.Stage(row.ID, def.Key, next)
	return m, m.commit(row.ID, def, next, seq)
}

func nextOption(options []string, current string) string {
	if len(options) == 0 {
		return ""
	}
	for i, opt := range options {
		if opt == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

func (m Model) toggleSort() (Model, tea.Cmd) {
	if m.cursorCol >= len(m.columns) {
		return m, nil
	}
	key := m.columns[m.cursorCol]
	if !m.reg.Lookup(key).Sortable {
		return m, nil
	}
	m.ctrl.ToggleSort(key)
	cmd := m.Fetch()
	return m, cmd
}

func (m *Model) resizeColumn(delta int) {
	if m.cursorCol >= len(m.columns) {
		return
	}
	key := m.columns[m.cursorCol]
	w := m.colWidth(key) + delta
	if w < minColWidth {
		w = minColWidth
	}
	if w > maxColWidth {
		w = maxColWidth
	}
	m.widths[key] = w
}

func (m Model) colWidth(key string) int {
	if w, ok := m.widths[key]; ok {
		return w
	}
	return m.reg.Lookup(key).Width
}

func (m Model) updateEditing(msg tea.KeyMsg) (Model, tea.Cmd) {
	row, def, ok := m.cell()
	if !ok {
		m.editing = false
		return m, nil
	}
	switch msg.String() {
	case "esc":
		// Cancel: drop the draft, nothing is written.
		m.drafts.Discard(row.ID, def.Key)
		m.editing = false
		m.input.Blur()
		return m, nil
	case "enter":
		return m.blur(0, 0)
	case "tab":
		return m.blur(0, 1)
	case "shift+tab":
		return m.blur(0, -1)
	case "up":
		return m.blur(-1, 0)
	case "down":
		return m.blur(1, 0)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	// Every keystroke (re)stages the draft so Resolve prefers it immediately.
	m.drafts.Stage(row.ID, def.Key, m.input.Value())
	return m, cmd
}

// blur leaves the edited cell, committing its draft, then moves the cursor.
func (m Model) blur(dRow, dCol int) (Model, tea.Cmd) {
	row, def, ok := m.cell()
	if !ok {
		m.editing = false
		return m, nil
	}
	m.editing = false
	m.input.Blur()

	raw := m.input.Value()
	seq := m.drafts.Stage(row.ID, def.Key, raw)
	cmd := m.commit(row.ID, def, raw, seq)

	m.cursorRow = clamp(m.cursorRow+dRow, 0, len(m.rows)-1)
	m.cursorCol = clamp(m.cursorCol+dCol, 0, len(m.columns)-1)
	return m, cmd
}

// commit coerces the raw draft per the field kind and writes the single
// field. Fire-and-forget relative to the event loop; overlapping commits to
// the same cell are not serialized (last write issued wins remotely).
func (m Model) commit(rowID model.RowID, def FieldDef, raw string, seq uint64) tea.Cmd {
	id, ok := rowID.Remote()
	if !ok {
		// Grid rows always come from a fetch, so this should not happen;
		// drop the draft rather than send a placeholder id anywhere.
		m.drafts.Settle(rowID, def.Key, seq)
		return nil
	}
	value := CoerceIn(raw, def, m.loc)
	gw := m.gw
	name := m.Name
	field := def.Key
	return func() tea.Msg {
		rec, err := gw.Update(context.Background(), id, model.Fields{field: value})
		return CommitMsg{View: name, Seq: seq, Row: rowID, Field: field, Rec: rec, Err: err}
	}
}

func (m Model) cell() (model.Record, FieldDef, bool) {
	if m.cursorRow < 0 || m.cursorRow >= len(m.rows) {
		return model.Record{}, FieldDef{}, false
	}
	if m.cursorCol < 0 || m.cursorCol >= len(m.columns) {
		return model.Record{}, FieldDef{}, false
	}
	return m.rows[m.cursorRow], m.reg.Lookup(m.columns[m.cursorCol]), true
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

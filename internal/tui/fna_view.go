package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/canfinancialsolutions/canfs-admin/internal/fna"
	"github.com/canfinancialsolutions/canfs-admin/internal/gateway"
	"github.com/canfinancialsolutions/canfs-admin/internal/grid"
	"github.com/canfinancialsolutions/canfs-admin/internal/model"
	"github.com/canfinancialsolutions/canfs-admin/internal/office"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type fnaHeaderMsg struct {
	rec model.Record
	err error
}

type fnaRowsMsg struct {
	section int
	rows    []fna.ChildRow
	err     error
}

type fnaSavedMsg struct {
	section int
	old     model.RowID
	saved   fna.ChildRow
	err     error
}

type fnaDeletedMsg struct {
	section int
	id      model.RowID
	err     error
}

// fnaForm is the FNA page: header info plus one editable child table per
// section. Edits are explicit (field edits update the in-memory row; a row
// is written only on save), unlike the blur-committed grids.
type fnaForm struct {
	mgr        *fna.Manager
	clientName string

	section   int
	cursorRow int
	cursorCol int

	editing bool
	input   textinput.Model

	// saving marks rows with an in-flight save/delete so the trigger is
	// suppressed while its own request is outstanding (advisory only).
	saving map[string]bool

	banner string
	loaded bool

	width  int
	height int
}

func newFNAForm(store *gateway.Store, clientID int64, clientName string) *fnaForm {
	hv := office.FNAHeader()
	mgr := fna.NewManager(hv.Gateway(store), clientID, office.FNASections(store))
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 256
	return &fnaForm{
		mgr:        mgr,
		clientName: clientName,
		input:      in,
		saving:     map[string]bool{},
	}
}

func (f *fnaForm) setSize(w, h int) {
	f.width = w
	f.height = h
}

func (f *fnaForm) current() *fna.Section {
	return f.mgr.Sections[f.section]
}

// load fetches the header (get-or-create); section fetches follow once the
// header id is known.
func (f *fnaForm) load() tea.Cmd {
	mgr := f.mgr
	return func() tea.Msg {
		rec, err := mgr.FetchOrCreateHeader(context.Background())
		return fnaHeaderMsg{rec: rec, err: err}
	}
}

func (f *fnaForm) fetchSections() tea.Cmd {
	headerID, ok := f.mgr.HeaderID()
	if !ok {
		return nil
	}
	// Sections are independent; fetch them in parallel.
	cmds := make([]tea.Cmd, 0, len(f.mgr.Sections))
	for i, s := range f.mgr.Sections {
		i, gw := i, s.Gateway
		cmds = append(cmds, func() tea.Msg {
			rows, err := fna.FetchSection(context.Background(), gw, headerID)
			return fnaRowsMsg{section: i, rows: rows, err: err}
		})
	}
	return tea.Batch(cmds...)
}

func (f *fnaForm) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case fnaHeaderMsg:
		if msg.err != nil {
			f.banner = msg.err.Error()
			return nil
		}
		f.mgr.Header = msg.rec
		return f.fetchSections()

	case fnaRowsMsg:
		if msg.err != nil {
			f.banner = msg.err.Error()
			return nil
		}
		f.mgr.Sections[msg.section].Rows = msg.rows
		f.loaded = true

	case fnaSavedMsg:
		delete(f.saving, msg.old.Key())
		if msg.err != nil {
			// The edited in-memory row stays as-is; the user can retry.
			f.banner = msg.err.Error()
			return nil
		}
		f.mgr.Sections[msg.section].ReplaceRow(msg.old, msg.saved)
		f.banner = ""

	case fnaDeletedMsg:
		delete(f.saving, msg.id.Key())
		if msg.err != nil {
			f.banner = msg.err.Error()
			return nil
		}
		f.mgr.Sections[msg.section].RemoveLocal(msg.id)
	}
	return nil
}

// updateKey handles a key press; done=true means the form closes.
func (f *fnaForm) updateKey(msg tea.KeyMsg) (done bool, cmd tea.Cmd) {
	if f.editing {
		return false, f.updateEditing(msg)
	}

	sec := f.current()
	columns := sec.Registry.DisplayOrder(nil)

	switch msg.String() {
	case "esc", "q":
		return true, nil
	case "tab":
		f.section = (f.section + 1) % len(f.mgr.Sections)
		f.cursorRow, f.cursorCol = 0, 0
	case "shift+tab":
		f.section = (f.section + len(f.mgr.Sections) - 1) % len(f.mgr.Sections)
		f.cursorRow, f.cursorCol = 0, 0
	case "up", "k":
		if f.cursorRow > 0 {
			f.cursorRow--
		}
	case "down", "j":
		if f.cursorRow < len(sec.Rows)-1 {
			f.cursorRow++
		}
	case "left", "h":
		if f.cursorCol > 0 {
			f.cursorCol--
		}
	case "right", "l":
		if f.cursorCol < len(columns)-1 {
			f.cursorCol++
		}
	case "a":
		if _, err := f.mgr.AddRow(sec); err != nil {
			f.banner = err.Error()
			break
		}
		f.cursorRow = len(sec.Rows) - 1
		f.cursorCol = 0
	case "enter":
		return false, f.beginEdit()
	case "S", "ctrl+s":
		return false, f.saveCurrent()
	case "d":
		return false, f.deleteCurrent()
	case "r":
		return false, f.fetchSections()
	}
	return false, nil
}

func (f *fnaForm) currentRow() (fna.ChildRow, bool) {
	sec := f.current()
	if f.cursorRow < 0 || f.cursorRow >= len(sec.Rows) {
		return fna.ChildRow{}, false
	}
	return sec.Rows[f.cursorRow], true
}

func (f *fnaForm) currentField() (grid.FieldDef, bool) {
	sec := f.current()
	columns := sec.Registry.DisplayOrder(nil)
	if f.cursorCol < 0 || f.cursorCol >= len(columns) {
		return grid.FieldDef{}, false
	}
	return sec.Registry.Lookup(columns[f.cursorCol]), true
}

func (f *fnaForm) beginEdit() tea.Cmd {
	row, ok := f.currentRow()
	if !ok {
		return nil
	}
	def, ok := f.currentField()
	if !ok {
		return nil
	}
	if def.Kind == model.KindSelect {
		// Cycle in place; the change is in-memory until the row is saved.
		current := grid.Format(row.Fields[def.Key], def)
		f.current().SetField(row.ID, def.Key, nextOptionAfter(def.Options, current))
		return nil
	}
	if def.Kind == model.KindBool {
		if b, _ := row.Fields[def.Key].AsBool(); b {
			f.current().SetField(row.ID, def.Key, "false")
		} else {
			f.current().SetField(row.ID, def.Key, "true")
		}
		return nil
	}
	f.editing = true
	f.input.SetValue(grid.EditText(row.Fields[def.Key], def))
	f.input.CursorEnd()
	f.input.Focus()
	return textinput.Blink
}

func (f *fnaForm) updateEditing(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		f.editing = false
		f.input.Blur()
		return nil
	case "enter", "tab":
		row, okRow := f.currentRow()
		def, okDef := f.currentField()
		if okRow && okDef {
			f.current().SetField(row.ID, def.Key, f.input.Value())
		}
		f.editing = false
		f.input.Blur()
		if msg.String() == "tab" {
			columns := f.current().Registry.DisplayOrder(nil)
			if f.cursorCol < len(columns)-1 {
				f.cursorCol++
			}
		}
		return nil
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

func (f *fnaForm) saveCurrent() tea.Cmd {
	sec := f.current()
	row, ok := f.currentRow()
	if !ok {
		return nil
	}
	if f.saving[row.ID.Key()] {
		return nil
	}
	// Required-field checks run before anything reaches the gateway.
	if err := sec.ValidateRow(row.ID); err != nil {
		f.banner = err.Error()
		return nil
	}
	f.saving[row.ID.Key()] = true
	section := f.section
	gw := sec.Gateway
	return func() tea.Msg {
		saved, err := fna.Persist(context.Background(), gw, row)
		return fnaSavedMsg{section: section, old: row.ID, saved: saved, err: err}
	}
}

func (f *fnaForm) deleteCurrent() tea.Cmd {
	sec := f.current()
	row, ok := f.currentRow()
	if !ok {
		return nil
	}
	if f.saving[row.ID.Key()] {
		return nil
	}
	if row.Pending() {
		// Nothing exists remotely; drop it locally with zero gateway calls.
		sec.RemoveLocal(row.ID)
		if f.cursorRow >= len(sec.Rows) && f.cursorRow > 0 {
			f.cursorRow--
		}
		return nil
	}
	f.saving[row.ID.Key()] = true
	section := f.section
	gw := sec.Gateway
	id, _ := row.ID.Remote()
	rowID := row.ID
	return func() tea.Msg {
		err := gw.Delete(context.Background(), id)
		return fnaDeletedMsg{section: section, id: rowID, err: err}
	}
}

func nextOptionAfter(options []string, current string) string {
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

func (f *fnaForm) view() string {
	var b strings.Builder

	header := fmt.Sprintf(" FNA · %s", f.clientName)
	if id, ok := f.mgr.HeaderID(); ok {
		header += fmt.Sprintf(" (profile %d)", id)
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")

	if f.banner != "" {
		b.WriteString(bannerStyle.Render("! " + f.banner))
		b.WriteString("\n")
	}

	// Section tabs.
	var tabs []string
	for i, s := range f.mgr.Sections {
		label := fmt.Sprintf(" %s (%d) ", s.Name, len(s.Rows))
		if i == f.section {
			tabs = append(tabs, tabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n\n")

	sec := f.current()
	columns := sec.Registry.DisplayOrder(nil)

	// Column headers.
	var hdr []string
	for _, key := range columns {
		def := sec.Registry.Lookup(key)
		hdr = append(hdr, headerCellStyle.Render(padCell(def.Label, def.Width)))
	}
	b.WriteString("   " + strings.Join(hdr, " "))
	b.WriteString("\n")

	if !f.loaded && len(sec.Rows) == 0 {
		b.WriteString(mutedTextStyle.Render("   loading…"))
		b.WriteString("\n")
	} else if len(sec.Rows) == 0 {
		b.WriteString(mutedTextStyle.Render("   (no rows — 'a' to add)"))
		b.WriteString("\n")
	}

	for ri, row := range sec.Rows {
		marker := "  "
		if row.Pending() {
			marker = pendingMarkStyle.Render("+ ")
		} else if f.saving[row.ID.Key()] {
			marker = mutedTextStyle.Render("… ")
		}
		var cells []string
		for ci, key := range columns {
			def := sec.Registry.Lookup(key)
			selected := ri == f.cursorRow && ci == f.cursorCol
			if selected && f.editing {
				cells = append(cells, cellCursorStyle.Render(padCell(f.input.View(), def.Width)))
				continue
			}
			cell := padCell(grid.Format(row.Fields[key], def), def.Width)
			if selected {
				cells = append(cells, cellCursorStyle.Render(cell))
			} else {
				cells = append(cells, cell)
			}
		}
		b.WriteString(marker + strings.Join(cells, " "))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(mutedTextStyle.Render(" tab section · enter edit · a add · S save · d delete · r reload · esc back"))
	return b.String()
}

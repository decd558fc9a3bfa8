package tui

import (
	"fmt"
	"os"
	"time"

	"github.com/canfinancialsolutions/canfs-admin/internal/export"
	"github.com/canfinancialsolutions/canfs-admin/internal/gateway"
	"github.com/canfinancialsolutions/canfs-admin/internal/grid"
	"github.com/canfinancialsolutions/canfs-admin/internal/office"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type view int

const (
	viewClients view = iota
	viewProspects
	viewFNA
	viewHelp
)

// searchDebounceMsg fires when the free-text input has been idle for the
// debounce window. Gen pins it to the keystroke generation that scheduled
// it; stale timers are ignored so only one fetch is triggered.
type searchDebounceMsg struct{ gen uint64 }

type exportDoneMsg struct {
	path string
	err  error
}

const searchDebounce = 300 * time.Millisecond

// Options configures the interactive app.
type Options struct {
	// Authenticated is the surrounding session gate: when false the app
	// renders a notice and never invokes the gateway.
	Authenticated bool
	ExportDir     string
	DebugLogPath  string
}

type appModel struct {
	store *gateway.Store
	opts  Options

	clientsView   office.View
	prospectsView office.View
	clients       grid.Model
	prospects     grid.Model
	form          *fnaForm

	view view
	prev view

	search    textinput.Model
	searching bool

	flash    string
	helpText string

	width  int
	height int
}

func newAppModel(store *gateway.Store, opts Options) appModel {
	cv := office.Clients()
	pv := office.Prospects()

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "search"
	search.CharLimit = 64

	m := appModel{
		store:         store,
		opts:          opts,
		clientsView:   cv,
		prospectsView: pv,
		search:        search,
	}
	if opts.Authenticated && store != nil {
		m.clients = grid.New("clients", cv.Registry, cv.Gateway(store), cv.PageSize)
		m.prospects = grid.New("prospects", pv.Registry, pv.Gateway(store), pv.PageSize)
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	if !m.opts.Authenticated {
		return nil
	}
	c1 := m.clients.Fetch()
	c2 := m.prospects.Fetch()
	return tea.Batch(c1, c2)
}

func (m appModel) activeGrid() *grid.Model {
	if m.view == viewProspects {
		return &m.prospects
	}
	return &m.clients
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clients.SetSize(msg.Width, msg.Height-4)
		m.prospects.SetSize(msg.Width, msg.Height-4)
		if m.form != nil {
			m.form.setSize(msg.Width, msg.Height-4)
		}
		return m, nil

	case grid.RowsMsg, grid.CommitMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.clients, cmd = m.clients.Update(msg)
		cmds = append(cmds, cmd)
		m.prospects, cmd = m.prospects.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case searchDebounceMsg:
		g := m.activeGrid()
		if msg.gen != g.Controller().SearchGen() {
			return m, nil
		}
		g.Controller().SetSearch(m.search.Value())
		cmd := g.Fetch()
		return m, cmd

	case exportDoneMsg:
		if msg.err != nil {
			m.flash = "export failed: " + msg.err.Error()
		} else {
			m.flash = "exported " + msg.path
		}
		return m, nil

	case fnaHeaderMsg, fnaRowsMsg, fnaSavedMsg, fnaDeletedMsg:
		if m.form == nil {
			return m, nil
		}
		cmd := m.form.update(msg)
		return m, cmd

	case tea.KeyMsg:
		m.debugKeyMsg(msg)
		return m.updateKey(msg)
	}
	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.opts.Authenticated {
		switch msg.String() {
		case "q", "ctrl+c", "esc", "enter":
			return m, tea.Quit
		}
		return m, nil
	}

	if m.searching {
		return m.updateSearch(msg)
	}

	if m.view == viewHelp {
		switch msg.String() {
		case "q", "esc", "?":
			m.view = m.prev
		}
		return m, nil
	}

	if m.view == viewFNA && m.form != nil {
		if done, cmd := m.form.updateKey(msg); done {
			m.form = nil
			m.view = viewClients
			return m, cmd
		} else if cmd != nil {
			return m, cmd
		}
		return m, nil
	}

	g := m.activeGrid()
	if g.Editing() {
		var cmd tea.Cmd
		*g, cmd = g.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "1":
		m.view = viewClients
		return m, nil
	case "2":
		m.view = viewProspects
		return m, nil
	case "?":
		m.prev = m.view
		m.view = viewHelp
		return m, nil
	case "/":
		m.searching = true
		m.search.SetValue(g.Controller().Search())
		m.search.CursorEnd()
		m.search.Focus()
		return m, textinput.Blink
	case "f":
		if m.view == viewClients {
			return m.openFNA()
		}
	case "x":
		return m, m.exportActive()
	}

	var cmd tea.Cmd
	*g, cmd = g.Update(msg)
	return m, cmd
}

func (m appModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	g := m.activeGrid()
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "enter":
		// Apply immediately, skipping the remainder of the debounce window.
		// Bumping the generation first invalidates any tick still in flight
		// so it cannot fire a second identical fetch.
		m.searching = false
		m.search.Blur()
		g.Controller().NextSearchGen()
		g.Controller().SetSearch(m.search.Value())
		cmd := g.Fetch()
		return m, cmd
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	gen := g.Controller().NextSearchGen()
	tick := tea.Tick(searchDebounce, func(time.Time) tea.Msg {
		return searchDebounceMsg{gen: gen}
	})
	return m, tea.Batch(cmd, tick)
}

func (m appModel) openFNA() (tea.Model, tea.Cmd) {
	rows := m.clients.Rows()
	if len(rows) == 0 {
		return m, nil
	}
	sel := rows[m.clients.CursorRow()]
	id, ok := sel.ID.Remote()
	if !ok {
		return m, nil
	}
	name := fmt.Sprintf("%s %s",
		textOrEmpty(sel.Get("first_name")), textOrEmpty(sel.Get("last_name")))
	form := newFNAForm(m.store, id, name)
	form.setSize(m.width, m.height-4)
	m.form = form
	m.view = viewFNA
	return m, form.load()
}

func (m appModel) exportActive() tea.Cmd {
	g := m.activeGrid()
	reg := g.Registry()
	columns := g.Columns()
	rows := g.Rows()
	name := g.Name
	_, from, to := g.Controller().DateRange()
	dir := m.opts.ExportDir
	if dir == "" {
		dir = "."
	}
	return func() tea.Msg {
		path, err := export.ToFile(dir, reg, columns, rows, name, from, to)
		return exportDoneMsg{path: path, err: err}
	}
}

func (m appModel) debugKeyMsg(k tea.KeyMsg) {
	if m.opts.DebugLogPath == "" {
		return
	}
	f, err := os.OpenFile(m.opts.DebugLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "key view=%d searching=%v str=%q\n", int(m.view), m.searching, k.String())
}

// Run starts the interactive app over an already opened store.
func Run(store *gateway.Store, opts Options) error {
	p := tea.NewProgram(newAppModel(store, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

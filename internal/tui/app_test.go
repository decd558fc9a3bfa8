package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/canfinancialsolutions/canfs-admin/internal/gateway"
	"github.com/canfinancialsolutions/canfs-admin/internal/grid"
	"github.com/canfinancialsolutions/canfs-admin/internal/office"
)

func testStore(t *testing.T) *gateway.Store {
	t.Helper()
	s, err := gateway.Open(filepath.Join(t.TempDir(), "office.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()
	if err := office.InitSchema(ctx, s); err != nil {
		t.Fatal(err)
	}
	if err := office.SeedDemo(ctx, s); err != nil {
		t.Fatal(err)
	}
	return s
}

func testApp(t *testing.T) appModel {
	t.Helper()
	m := newAppModel(testStore(t), Options{Authenticated: true})
	m = apply(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	// Resolve the initial fetches synchronously.
	for _, cmd := range []tea.Cmd{m.clients.Fetch(), m.prospects.Fetch()} {
		m = apply(t, m, cmd())
	}
	return m
}

func apply(t *testing.T, m appModel, msg tea.Msg) appModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(appModel)
}

func applyCmd(t *testing.T, m appModel, msg tea.Msg) (appModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(appModel), cmd
}

func press(t *testing.T, m appModel, keys ...string) appModel {
	t.Helper()
	for _, k := range keys {
		m = apply(t, m, keyMsg(k))
	}
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func TestUnauthenticatedRuns(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	m := newAppModel(nil, Options{Authenticated: false})

	if !strings.Contains(m.View(), "Not signed in") {
		t.Fatalf("view:\n%s", m.View())
	}
	if m.Init() != nil {
		t.Fatal("unauthenticated app issued a fetch")
	}
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q did not quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q produced a non-quit command")
	}
}

func TestViewSwitching(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	m := testApp(t)

	if !strings.Contains(m.View(), "Clients") {
		t.Fatalf("initial view:\n%s", m.View())
	}
	m = press(t, m, "2")
	if m.view != viewProspects || !strings.Contains(m.View(), "Prospects") {
		t.Fatalf("view after 2: %d", m.view)
	}
	m = press(t, m, "1")
	if m.view != viewClients {
		t.Fatalf("view after 1: %d", m.view)
	}
}

func TestHelpToggle(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	m := testApp(t)

	m = press(t, m, "2", "?")
	if m.view != viewHelp {
		t.Fatalf("view = %d, want help", m.view)
	}
	if out := m.View(); !strings.Contains(out, "canfs-admin") {
		t.Fatalf("help view:\n%s", out)
	}
	m = press(t, m, "esc")
	if m.view != viewProspects {
		t.Fatalf("help did not return to the previous view: %d", m.view)
	}
}

// Typing several characters inside the debounce window must end in exactly
// one fetch: the timers scheduled for superseded generations are ignored.
func TestSearchDebounceSingleFetch(t *testing.T) {
	m := testApp(t)

	m = press(t, m, "/")
	if !m.searching {
		t.Fatal("/ did not enter search mode")
	}
	m = press(t, m, "j", "o", "h", "n")
	if got := m.search.Value(); got != "john" {
		t.Fatalf("search input = %q", got)
	}

	latest := m.clients.Controller().SearchGen()
	if latest < 4 {
		t.Fatalf("generation = %d, want one per keystroke", latest)
	}

	// Timers for earlier keystrokes fire first: no fetch, no filter change.
	for gen := uint64(1); gen < latest; gen++ {
		var cmd tea.Cmd
		m, cmd = applyCmd(t, m, searchDebounceMsg{gen: gen})
		if cmd != nil {
			t.Fatalf("stale generation %d triggered a fetch", gen)
		}
	}
	if m.clients.Controller().Search() != "" {
		t.Fatal("stale timer applied the filter")
	}

	// The timer for the last keystroke applies the filter and fetches once.
	m, cmd := applyCmd(t, m, searchDebounceMsg{gen: latest})
	if cmd == nil {
		t.Fatal("latest generation did not fetch")
	}
	if m.clients.Controller().Search() != "john" {
		t.Fatalf("filter = %q", m.clients.Controller().Search())
	}
	m = apply(t, m, cmd())

	rows := m.clients.Rows()
	for _, r := range rows {
		name := strings.ToLower(textOrEmpty(r.Get("first_name")) + " " + textOrEmpty(r.Get("last_name")))
		if !strings.Contains(name, "john") {
			t.Fatalf("row %v does not match the filter", r.Fields)
		}
	}
}

func TestSearchEnterAppliesImmediately(t *testing.T) {
	m := testApp(t)

	m = press(t, m, "/", "z", "z")
	pending := m.clients.Controller().SearchGen()

	m = press(t, m, "enter")
	if m.searching {
		t.Fatal("enter did not leave search mode")
	}
	if m.clients.Controller().Search() != "zz" {
		t.Fatalf("filter = %q", m.clients.Controller().Search())
	}

	// The tick scheduled for the last keystroke is still in flight when
	// enter fetches; it must come up stale instead of fetching again.
	if _, cmd := applyCmd(t, m, searchDebounceMsg{gen: pending}); cmd != nil {
		t.Fatal("debounce tick refetched after enter already applied the search")
	}
}

func TestExportFlash(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	m := testApp(t)
	m.opts.ExportDir = t.TempDir()

	_, cmd := m.Update(keyMsg("x"))
	if cmd == nil {
		t.Fatal("x issued no export")
	}
	msg, ok := cmd().(exportDoneMsg)
	if !ok {
		t.Fatalf("export produced %T", msg)
	}
	if msg.err != nil {
		t.Fatal(msg.err)
	}
	m = apply(t, m, msg)
	if !strings.Contains(m.View(), "exported") {
		t.Fatalf("no flash after export:\n%s", m.View())
	}
}

func TestOpenFNAForSelectedClient(t *testing.T) {
	m := testApp(t)
	if len(m.clients.Rows()) == 0 {
		t.Fatal("no seeded clients")
	}

	next, cmd := m.Update(keyMsg("f"))
	m = next.(appModel)
	if m.view != viewFNA || m.form == nil {
		t.Fatal("f did not open the FNA form")
	}
	if cmd == nil {
		t.Fatal("opening the form issued no header load")
	}

	// Resolve the header load, then the per-section fetch batch it schedules.
	m, cmd = applyCmd(t, m, cmd())
	if cmd == nil {
		t.Fatal("header message scheduled no section fetches")
	}
	if _, ok := m.form.mgr.HeaderID(); !ok {
		t.Fatal("header has no durable id")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatalf("section fetches are not a batch")
	}
	for _, c := range batch {
		m = apply(t, m, c())
	}
	if !m.form.loaded {
		t.Fatal("form not loaded after section messages")
	}
}

// Grid messages only land in the grid they were issued for.
func TestRowsMsgRoutedByView(t *testing.T) {
	m := testApp(t)
	before := len(m.prospects.Rows())

	m = apply(t, m, grid.RowsMsg{
		View: "clients",
		Seq:  m.clients.Controller().NextFetch(),
		Rows: nil, Total: 0,
	})
	if len(m.prospects.Rows()) != before {
		t.Fatal("clients message disturbed the prospects grid")
	}
	if len(m.clients.Rows()) != 0 {
		t.Fatal("clients message not applied to the clients grid")
	}
}

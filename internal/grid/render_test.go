package grid

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var errBoom = errors.New("boom")

func TestView_HeaderRowsAndStatus(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	gw := &fakeGateway{rows: clientRows()}
	m := fetchedModel(t, gw)
	m.SetSize(120, 30)

	out := m.View()
	for _, want := range []string{"First Name", "Last Name", "Status", "Alice", "Santos"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "2 rows · page 1/1") {
		t.Fatalf("status bar missing:\n%s", out)
	}
}

func TestView_FreshGridShowsLoading(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	gw := &fakeGateway{rows: clientRows()}
	m := New("clients", testRegistry(), gw, 20)
	m.SetSize(120, 30)

	// The grid starts with its first fetch pending, so the initial frame
	// reads as loading rather than empty.
	out := m.View()
	if !strings.Contains(out, "loading…") {
		t.Fatalf("loading marker missing on first frame:\n%s", out)
	}
	if strings.Contains(out, "(no rows)") {
		t.Fatalf("empty marker shown while first fetch pending:\n%s", out)
	}

	cmd := m.Fetch()
	m, _ = m.Update(cmd())
	if out := m.View(); strings.Contains(out, "loading…") {
		t.Fatalf("loading marker stuck after rows landed:\n%s", out)
	}
}

func TestView_SortIndicator(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	gw := &fakeGateway{rows: clientRows()}
	m := fetchedModel(t, gw)
	m.SetSize(120, 30)
	m.Controller().ToggleSort("balance")

	out := m.View()
	if !strings.Contains(out, "Balance ▲") {
		t.Fatalf("ascending indicator missing:\n%s", out)
	}

	m.Controller().ToggleSort("balance")
	out = m.View()
	if !strings.Contains(out, "Balance ▼") {
		t.Fatalf("descending indicator missing:\n%s", out)
	}
}

func TestView_UnsavedCountInStatus(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	gw := &fakeGateway{rows: clientRows()}
	m := fetchedModel(t, gw)
	m.SetSize(120, 30)
	m.Drafts().Stage(m.Rows()[0].ID, "first_name", "Ali")

	if out := m.View(); !strings.Contains(out, "1 unsaved") {
		t.Fatalf("unsaved count missing:\n%s", out)
	}
}

func TestView_BannerShown(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	gw := &fakeGateway{rows: clientRows()}
	m := fetchedModel(t, gw)
	m.SetSize(120, 30)
	m, _ = m.Update(RowsMsg{View: "clients", Seq: m.Controller().NextFetch(), Err: errBoom})

	if out := m.View(); !strings.Contains(out, "boom") {
		t.Fatalf("banner missing:\n%s", out)
	}
}

func TestView_NarrowWidthKeepsStickyColumns(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	gw := &fakeGateway{rows: clientRows()}
	m := fetchedModel(t, gw)
	m.SetSize(40, 30)

	out := m.View()
	// Sticky name columns always render even when the window is too narrow
	// for the full column set.
	if !strings.Contains(out, "First Name") || !strings.Contains(out, "Last Name") {
		t.Fatalf("sticky columns missing at narrow width:\n%s", out)
	}
}

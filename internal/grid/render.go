package grid

import (
	"fmt"
	"strings"

	"github.com/canfinancialsolutions/canfs-admin/internal/gateway"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

var (
	headerStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "235", Dark: "15"}).Background(lipgloss.AdaptiveColor{Light: "253", Dark: "237"})
	headerActiveStyle = headerStyle.Foreground(lipgloss.AdaptiveColor{Light: "19", Dark: "12"})
	cursorStyle       = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "235", Dark: "255"}).Background(lipgloss.AdaptiveColor{Light: "#e9e9e9", Dark: "#262626"}).Bold(true)
	draftStyle        = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "130", Dark: "214"})
	mutedStyle        = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "243"})
	bannerStyle       = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "9"})
	stickySepStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "244", Dark: "240"})
)

// StickyOffsets returns, per sticky column, its left offset: the running sum
// of the widths of the sticky columns before it.
func (m Model) StickyOffsets() map[string]int {
	offset := 0
	out := map[string]int{}
	for _, key := range m.columns {
		if !m.reg.Lookup(key).Sticky {
			break
		}
		out[key] = offset
		offset += m.colWidth(key) + 1
	}
	return out
}

// visibleColumns splits the display order into the pinned sticky prefix and
// the window of scrolled columns that fits the remaining width, keeping the
// cursor column visible.
func (m Model) visibleColumns() (sticky []string, scrolled []string, firstScrolled int) {
	split := 0
	for split < len(m.columns) && m.reg.Lookup(m.columns[split]).Sticky {
		split++
	}
	sticky = m.columns[:split]

	avail := m.width
	for _, key := range sticky {
		avail -= m.colWidth(key) + 1
	}

	rest := m.columns[split:]
	start := m.scrollCol
	if start > len(rest)-1 {
		start = 0
	}
	// Keep the cursor column inside the window.
	cur := m.cursorCol - split
	if cur >= 0 && cur < start {
		start = cur
	}
	for {
		used := 0
		end := start
		for end < len(rest) {
			w := m.colWidth(rest[end]) + 1
			if used+w > avail && end > start {
				break
			}
			used += w
			end++
		}
		if cur < end || start >= len(rest)-1 || cur < 0 {
			return sticky, rest[start:end], start
		}
		start++
	}
}

// View renders the grid: header with sort indicators, data rows with drafts
// layered over the baseline, a status bar, and the error banner/popover.
func (m Model) View() string {
	if m.width <= 0 {
		return ""
	}
	var b strings.Builder

	if m.banner != "" {
		b.WriteString(bannerStyle.Render("! " + m.banner + "  (esc to dismiss)"))
		b.WriteString("\n")
	}

	sticky, scrolled, _ := m.visibleColumns()

	b.WriteString(m.renderHeader(sticky, scrolled))
	b.WriteString("\n")

	if len(m.rows) == 0 {
		if m.loading {
			b.WriteString(mutedStyle.Render(" loading…"))
		} else {
			b.WriteString(mutedStyle.Render(" (no rows)"))
		}
		b.WriteString("\n")
	}
	for ri := range m.rows {
		b.WriteString(m.renderRow(ri, sticky, scrolled))
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatus())

	if m.popover != nil {
		b.WriteString("\n")
		b.WriteString(m.renderPopover())
	}
	return b.String()
}

func (m Model) renderHeader(sticky, scrolled []string) string {
	var parts []string
	renderCol := func(key string) string {
		def := m.reg.Lookup(key)
		label := def.Label
		st := headerStyle
		if s := m.ctrl.Sort(); s.Key == key {
			st = headerActiveStyle
			if s.Dir == gateway.Desc {
				label += " ▼"
			} else {
				label += " ▲"
			}
		}
		return st.Render(pad(label, m.colWidth(key)))
	}
	for _, key := range sticky {
		parts = append(parts, renderCol(key))
	}
	if len(sticky) > 0 && len(scrolled) > 0 {
		parts = append(parts, stickySepStyle.Render("│"))
	}
	for _, key := range scrolled {
		parts = append(parts, renderCol(key))
	}
	return strings.Join(parts, " ")
}

func (m Model) renderRow(ri int, sticky, scrolled []string) string {
	row := m.rows[ri]
	var parts []string
	renderCell := func(key string) string {
		def := m.reg.Lookup(key)
		ci := indexOf(m.columns, key)
		selected := ri == m.cursorRow && ci == m.cursorCol

		if selected && m.editing {
			return cursorStyle.Render(pad(m.input.View(), m.colWidth(key)))
		}

		_, hasDraft := m.drafts.Get(row.ID, key)
		display := m.drafts.Resolve(row.ID, key, row.Get(key), def)
		if !hasDraft {
			display = FormatIn(row.Get(key), def, m.loc)
		}
		cell := pad(display, m.colWidth(key))
		switch {
		case selected:
			return cursorStyle.Render(cell)
		case hasDraft:
			return draftStyle.Render(cell)
		default:
			return cell
		}
	}
	for _, key := range sticky {
		parts = append(parts, renderCell(key))
	}
	if len(sticky) > 0 && len(scrolled) > 0 {
		parts = append(parts, stickySepStyle.Render("│"))
	}
	for _, key := range scrolled {
		parts = append(parts, renderCell(key))
	}
	return strings.Join(parts, " ")
}

func (m Model) renderStatus() string {
	pageCount := m.ctrl.PageCount(m.total)
	status := fmt.Sprintf(" %d rows · page %d/%d", m.total, m.ctrl.Page().Index+1, pageCount)
	if s := m.ctrl.Sort(); s.Key != "" {
		status += fmt.Sprintf(" · sort %s %s", s.Key, s.Dir)
	}
	if n := m.drafts.Len(); n > 0 {
		status += fmt.Sprintf(" · %d unsaved", n)
	}
	if m.loading {
		status += " · loading…"
	}
	return mutedStyle.Render(status)
}

func (m Model) renderPopover() string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	lines := []string{headerStyle.Render(" " + m.popoverTitle + " ")}
	if len(m.popover) == 0 {
		lines = append(lines, mutedStyle.Render("(empty)"))
	}
	for _, item := range m.popover {
		lines = append(lines, "• "+item)
	}
	lines = append(lines, mutedStyle.Render("any key to close"))
	return box.Render(strings.Join(lines, "\n"))
}

// pad forces s to exactly width columns (ANSI-aware), truncating with an
// ellipsis when too wide.
func pad(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := xansi.StringWidth(s)
	if w > width {
		if width == 1 {
			return xansi.Cut(s, 0, 1)
		}
		return xansi.Cut(s, 0, width-1) + "…"
	}
	return s + strings.Repeat(" ", width-w)
}

func indexOf(list []string, key string) int {
	for i, k := range list {
		if k == key {
			return i
		}
	}
	return -1
}

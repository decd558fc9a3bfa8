package tui

import (
	"strings"

	"github.com/canfinancialsolutions/canfs-admin/internal/model"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// Palette helpers. The app must stay readable on both light and dark
// terminal backgrounds, so everything chrome-level uses AdaptiveColor.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(ac("19", "12"))
	mutedTextStyle   = lipgloss.NewStyle().Foreground(ac("240", "243"))
	bannerStyle      = lipgloss.NewStyle().Foreground(ac("160", "9"))
	flashStyle       = lipgloss.NewStyle().Foreground(ac("28", "10"))
	tabStyle         = lipgloss.NewStyle().Foreground(ac("240", "245"))
	tabActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(ac("235", "255")).Background(ac("253", "237"))
	headerCellStyle  = lipgloss.NewStyle().Bold(true).Foreground(ac("235", "15")).Background(ac("253", "237"))
	cellCursorStyle  = lipgloss.NewStyle().Foreground(ac("235", "255")).Background(ac("#e9e9e9", "#262626")).Bold(true)
	pendingMarkStyle = lipgloss.NewStyle().Foreground(ac("130", "214"))
)

// padCell forces s to exactly width columns (ANSI-aware), truncating with an
// ellipsis when too wide.
func padCell(s string, width int) string {
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

func textOrEmpty(v model.Value) string {
	s, _ := v.AsText()
	return s
}

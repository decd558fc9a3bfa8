package tui

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const helpMarkdown = `
# canfs-admin

Terminal console for the client book, prospect pipeline and FNA forms.

## Grids

Cells are edited in place. An edit is buffered locally while you type and
written when the cell loses focus (enter, tab, or moving away). A failed
write reverts the cell to its last saved value.

| Key | Action |
| --- | ------ |
| enter | edit cell / open list detail |
| space | toggle boolean, cycle select |
| s | sort by current column |
| n, p | next / previous page |
| <, > | shrink / widen column |
| / | free-text search (debounced) |
| x | export current page to CSV |

## FNA form

Child rows are explicit: edits stay local until the row is saved, so a
failed save keeps your input for retry. New rows are marked with a plus
until they are saved to the office database.

| Key | Action |
| --- | ------ |
| tab | next section |
| a | add row |
| S | save row |
| d | delete row |
`

func (m appModel) helpView() string {
	width := m.width - 2
	if width < 20 {
		width = 20
	}
	// Fixed style rather than auto-detect: WithAutoStyle can block on
	// terminal queries in some setups.
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(glamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out + mutedTextStyle.Render(" esc to close")
}

func glamourStyle() string {
	// lipgloss caches the background query; reuse it rather than probing.
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

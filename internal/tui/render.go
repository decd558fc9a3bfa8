package tui

import (
	"strings"
)

func (m appModel) View() string {
	if !m.opts.Authenticated {
		return "\n  Not signed in. The office database is not opened without a session.\n\n  press any key to exit\n"
	}
	if m.width == 0 {
		return "loading…"
	}

	switch m.view {
	case viewHelp:
		return m.helpView()
	case viewFNA:
		if m.form != nil {
			return m.form.view()
		}
	}

	var b strings.Builder

	title := " CAN Financial Solutions"
	switch m.view {
	case viewClients:
		title += " · Clients"
	case viewProspects:
		title += " · Prospects"
	}
	b.WriteString(titleStyle.Render(title))
	if m.flash != "" {
		b.WriteString("  " + flashStyle.Render(m.flash))
	}
	b.WriteString("\n")

	if m.searching {
		b.WriteString(" " + m.search.View())
	} else if q := m.activeGrid().Controller().Search(); q != "" {
		b.WriteString(mutedTextStyle.Render(" filter: " + q))
	}
	b.WriteString("\n")

	b.WriteString(m.activeGrid().View())
	b.WriteString("\n")
	b.WriteString(mutedTextStyle.Render(" 1 clients · 2 prospects · / search · s sort · n/p page · enter edit · f fna · x export · ? help · q quit"))
	return b.String()
}

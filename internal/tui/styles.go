package tui

import "github.com/charmbracelet/lipgloss"

// Night palette
var (
	colorPrimary   = lipgloss.Color("#8B7CF6")
	colorMoon      = lipgloss.Color("#F4E9B8")
	colorMuted     = lipgloss.Color("#5C6370")
	colorSuccess   = lipgloss.Color("#7FD1AE")
	colorWarning   = lipgloss.Color("#E5C07B")
	colorError     = lipgloss.Color("#E06C75")
	colorFg        = lipgloss.Color("#C8CCE8")
	colorSubtle    = lipgloss.Color("#2E3450")
	colorHighlight = lipgloss.Color("#82AAFF")
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func panel(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2)
}

var (
	activeTabStyle = fg(colorPrimary).Bold(true).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)
	inactiveTabStyle = fg(colorMuted).Padding(0, 2)

	panelStyle       = panel(colorSubtle)
	activePanelStyle = panel(colorPrimary)

	clockStyle         = fg(colorMuted).Bold(true).Align(lipgloss.Center)
	clockSleepingStyle = fg(colorMoon).Bold(true).Align(lipgloss.Center)

	titleStyle     = fg(colorFg).Bold(true)
	successStyle   = fg(colorSuccess)
	warningStyle   = fg(colorWarning)
	errorStyle     = fg(colorError)
	mutedStyle     = fg(colorMuted)
	highlightStyle = fg(colorHighlight)
	moonStyle      = fg(colorMoon)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = fg(colorMuted).Padding(0, 1)

	selectedItemStyle = fg(colorPrimary).Bold(true)
	normalItemStyle   = fg(colorFg)
)

// tabBar renders names as tabs with the one at active highlighted.
func tabBar(names []string, active int) string {
	tabs := make([]string, len(names))
	for i, name := range names {
		style := inactiveTabStyle
		if i == active {
			style = activeTabStyle
		}
		tabs[i] = style.Render(name)
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
}

// spread places left and right on one line of the given width.
func spread(width int, left, right string, pad int) string {
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right)-pad, 1)
	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, lipgloss.NewStyle().Width(gap).Render(""), right)
}

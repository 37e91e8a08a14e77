package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

var (
	activeBorderColor = lipgloss.Color("#5f5fd7") // Purple/Blue
	dimBorderColor    = lipgloss.Color("#585858") // Dark Gray
	dimHeaderColor    = lipgloss.Color("#bcbcbc") // Light Gray
)

func scrollHint(title string, vp viewport.Model) string {
	switch {
	case !vp.AtTop() && !vp.AtBottom():
		return title + " ↕"
	case !vp.AtTop():
		return title + " ↑"
	case !vp.AtBottom():
		return title + " ↓"
	}
	return title
}

func focusedStyles(active bool) table.Styles {
	s := tableStyles()
	if active {
		s.Header = tableHeaderStyle.BorderForeground(activeBorderColor)
	} else {
		s.Header = tableHeaderStyle.BorderForeground(dimBorderColor)
	}
	return s
}

func (m MainModel) footer(helpText string) string {
	footerContent := helpText
	if m.version != "" {
		gap := m.width - 6 - lipgloss.Width(helpText) - lipgloss.Width(m.version)
		if gap > 0 {
			footerContent = helpText + strings.Repeat(" ", gap) + m.version
		}
	}
	return footerStyle.Width(m.width - 4).Render(footerContent)
}

func (m MainModel) digestBadge() string {
	d := m.report.HealthDigest
	return severityStyles[d.Overall].Render(fmt.Sprintf("%s (%d)", strings.ToUpper(d.Overall.String()), len(d.Findings)))
}

func (m MainModel) View() string {
	if m.quitting {
		return ""
	}

	outerStyle := baseStyle.
		Width(m.width-2).
		Height(m.height-2).
		Padding(0, 1)

	if m.state == stateDetail && m.selectedDetail != nil {
		return outerStyle.Render(m.detailView())
	}
	return outerStyle.Render(m.listView())
}

func (m MainModel) listView() string {
	status := fmt.Sprintf("Host: %s | Generated: %s", m.report.Metadata.Hostname, m.report.Metadata.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	inputView := m.input.View()
	if m.activeTab == tabListeners {
		inputView = m.listenerInput.View()
	}
	if m.inputFocused() {
		status = "Mode: Searching (Press Esc/Enter to stop)"
	}
	if m.statusMsg != "" {
		status = errorStyle.Render(m.statusMsg)
	}

	_, mainPane := m.listWidths()
	sideBorderColor := dimBorderColor
	sideHeaderColor := dimHeaderColor
	if m.listFocus == focusSide {
		sideBorderColor = activeBorderColor
		sideHeaderColor = activeBorderColor
	}

	var mainContent, helpText string
	if m.activeTab == tabSections {
		m.table.SetStyles(focusedStyles(m.listFocus == focusMain))

		previewHeader := "Details"
		if s, ok := m.selectedSection(); ok {
			previewHeader = s.Title
		}
		previewHeader = scrollHint(previewHeader, m.previewView)

		sideStyle := lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(sideBorderColor).
			PaddingLeft(2).
			Height(m.table.Height())

		mainContent = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(mainPane).Render(m.table.View()),
			sideStyle.Render(
				lipgloss.JoinVertical(lipgloss.Left,
					tableHeaderStyle.
						Width(m.previewView.Width).
						Foreground(sideHeaderColor).
						BorderForeground(sideBorderColor).
						Render(previewHeader),
					lipgloss.NewStyle().PaddingLeft(1).Render(m.previewView.View()),
				),
			),
		)
		helpText = fmt.Sprintf("Total: %d | Enter: Detail | i/s/t/o: Sort | r: Refresh | Esc/q: Quit | Tab: Focus", len(m.filtered))
	} else {
		m.listenerTable.SetStyles(focusedStyles(m.listFocus == focusMain))
		m.ownerTable.SetStyles(focusedStyles(m.listFocus == focusSide))

		sideStyle := lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(sideBorderColor).
			PaddingLeft(1).
			Height(m.listenerTable.Height())

		var body string
		if m.network == nil {
			body = dimStyle.Render("Network section unavailable.")
		} else {
			body = m.listenerTable.View()
		}

		mainContent = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(mainPane).Render(body),
			sideStyle.Render(
				lipgloss.JoinVertical(lipgloss.Left,
					tableHeaderStyle.
						Width(m.ownerTable.Width()).
						Foreground(sideHeaderColor).
						BorderForeground(sideBorderColor).
						Render("Owning Processes"),
					m.ownerTable.View(),
				),
			),
		)

		total := 0
		flag := ""
		if m.network != nil {
			total = m.network.Listeners.Counts.Total()
			if m.network.Listeners.Truncated {
				flag = " [SAMPLED]"
			}
		}
		helpText = fmt.Sprintf("Showing: %d of %d%s | p/a/t/v: Sort | Esc/q: Quit | Tab: Focus", len(m.listeners), total, flag)
	}

	var sectionsTab, listenersTab string
	if m.activeTab == tabSections {
		sectionsTab = activeTabStyle.Render("1. Sections")
		listenersTab = inactiveTabStyle.Render("2. Listeners")
	} else {
		sectionsTab = inactiveTabStyle.Render("1. Sections")
		listenersTab = activeTabStyle.Render("2. Listeners")
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("hostreport"),
		sectionsTab,
		listenersTab,
		" ",
		m.digestBadge(),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Height(1).Render(""),
		lipgloss.NewStyle().MarginBottom(1).PaddingLeft(1).Render(status),
		lipgloss.NewStyle().MarginBottom(1).PaddingLeft(1).Render(inputView),
		mainContent,
		lipgloss.NewStyle().Height(1).Render(""),
		m.footer(helpText),
	)
}

func (m MainModel) detailView() string {
	available := m.width - 6
	if available < 0 {
		available = 0
	}
	detailWidth := int(float64(available) * 0.7)
	sideWidth := available - detailWidth

	sideStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		PaddingLeft(1).
		Width(sideWidth).
		Height(m.viewport.Height + 2)

	detailHeader := tableHeaderStyle
	sideHeader := tableHeaderStyle
	if m.detailFocus == focusDetail {
		detailHeader = detailHeader.BorderForeground(activeBorderColor).Foreground(activeBorderColor)
		sideHeader = sideHeader.BorderForeground(dimBorderColor).Foreground(dimHeaderColor)
		sideStyle = sideStyle.BorderForeground(dimBorderColor)
	} else {
		detailHeader = detailHeader.BorderForeground(dimBorderColor).Foreground(dimHeaderColor)
		sideHeader = sideHeader.BorderForeground(activeBorderColor).Foreground(activeBorderColor)
		sideStyle = sideStyle.BorderForeground(activeBorderColor)
	}

	split := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(detailWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				detailHeader.Width(m.viewport.Width).Render(scrollHint("Section Body", m.viewport)),
				lipgloss.NewStyle().PaddingLeft(1).Render(m.viewport.View()),
			),
		),
		sideStyle.Render(
			lipgloss.JoinVertical(lipgloss.Left,
				sideHeader.Width(m.findingsView.Width).Render(scrollHint("Findings & Notes", m.findingsView)),
				lipgloss.NewStyle().PaddingLeft(1).Render(m.findingsView.View()),
			),
		),
	)

	s := *m.selectedDetail
	idStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("#22aa22")). // Green
		Foreground(lipgloss.Color("#ffffff")). // White
		Padding(0, 1).
		Bold(true)

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("hostreport"),
		idStyle.Render(fmt.Sprintf("%s: %s", s.ID, s.Status)),
	)

	helpText := "Esc/q: Back | Tab: Focus | Up/Down: Scroll"
	if m.statusMsg != "" {
		helpText = errorStyle.Render(m.statusMsg)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Height(1).Render(""),
		split,
		lipgloss.NewStyle().Height(1).Render(""),
		m.footer(helpText),
	)
}

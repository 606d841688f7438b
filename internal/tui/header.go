package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"proxysmith/internal/liveness"
)

var tabNames = []string{"Endpoints", "Stats"}

func renderHeader(activeTab int, stats liveness.Stats, width int) string {
	logo := logoStyle.Render("PROXYSMITH")

	var pill string
	if pending := stats.Loading + stats.Queued; pending > 0 {
		pill = probingPillStyle.Render(fmt.Sprintf(" PROBING %d ", pending))
	} else {
		pill = idlePillStyle.Render(fmt.Sprintf(" %d ACTIVE / %d DEAD ", stats.Active, stats.Dead))
	}

	var tabs []string
	for i, name := range tabNames {
		if i == activeTab {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	tabBar := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	gap := max(width-lipgloss.Width(logo)-lipgloss.Width(pill), 1)
	topRow := logo + strings.Repeat(" ", gap) + pill

	return lipgloss.JoinVertical(lipgloss.Left, topRow, tabBar, separator(width))
}

func renderFooter(helpText string, width int) string {
	return lipgloss.JoinVertical(lipgloss.Left, separator(width), helpBarStyle.Render(helpText))
}

func separator(width int) string {
	return lipgloss.NewStyle().
		Foreground(colorBorder).
		Render(strings.Repeat("─", max(width, 0)))
}

func renderHelpBar(showFull bool) string {
	if showFull {
		return renderFullHelp()
	}
	return renderShortHelp()
}

func renderShortHelp() string {
	var parts []string
	for _, b := range keys.ShortHelp() {
		if !b.Enabled() {
			continue
		}
		parts = append(parts, helpKeyStyle.Render(b.Help().Key)+" "+helpDescStyle.Render(b.Help().Desc))
	}
	return strings.Join(parts, helpSepStyle.Render(" | "))
}

func renderFullHelp() string {
	var lines []string
	for _, group := range keys.FullHelp() {
		var parts []string
		for _, b := range group {
			if !b.Enabled() {
				continue
			}
			parts = append(parts, helpKeyStyle.Render(b.Help().Key)+" "+helpDescStyle.Render(b.Help().Desc))
		}
		lines = append(lines, strings.Join(parts, helpSepStyle.Render("  ")))
	}
	return strings.Join(lines, "\n")
}

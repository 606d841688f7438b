package tui

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/lipgloss"

	"proxysmith/internal/liveness"
	"proxysmith/internal/proxy"
)

const fastestShown = 5

type statsModel struct {
	width  int
	height int
}

func (sm *statsModel) setSize(w, h int) {
	sm.width = w
	sm.height = h
}

func (sm *statsModel) View(stats liveness.Stats, em *endpointsModel, status func(string) liveness.Status) string {
	w := max(sm.width-6, 30)

	probe := lipgloss.JoinVertical(lipgloss.Left,
		cardTitleStyle.Render("Probing"),
		sm.row("Active", fmt.Sprintf("%d", stats.Active)),
		sm.row("Dead", fmt.Sprintf("%d", stats.Dead)),
		sm.row("Loading", fmt.Sprintf("%d", stats.Loading)),
		sm.row("Queued", fmt.Sprintf("%d", stats.Queued)),
		sm.row("Batches", fmt.Sprintf("%d in flight", stats.InFlight)),
	)

	cat := lipgloss.JoinVertical(lipgloss.Left,
		cardTitleStyle.Render("Catalog"),
		sm.row("Endpoints", fmt.Sprintf("%d", len(em.all))),
		sm.row("Countries", fmt.Sprintf("%d", len(em.countries)-1)),
		sm.row("Filter", em.countryLabel()),
		sm.row("Matching", fmt.Sprintf("%d", len(em.filtered))),
	)

	sections := []string{cardStyle.Width(w).Render(probe), cardStyle.Width(w).Render(cat)}

	if fastest := fastestActive(em.filtered, status, fastestShown); len(fastest) > 0 {
		rows := []string{cardTitleStyle.Render("Fastest")}
		for _, ep := range fastest {
			ms := status(ep.ID()).LatencyMs
			rows = append(rows, sm.row(ep.ID(), latencyStyle(ms).Render(fmt.Sprintf("%dms", ms))+" "+dimStyle.Render(ep.Provider)))
		}
		sections = append(sections, cardStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	}

	return forceHeight(lipgloss.JoinVertical(lipgloss.Left, sections...), sm.width, sm.height)
}

func (sm *statsModel) row(label, value string) string {
	return cardLabelStyle.Width(24).Render(label) + cardValueStyle.Render(value)
}

// fastestActive returns up to n active endpoints ordered by latency.
func fastestActive(eps []proxy.Endpoint, status func(string) liveness.Status, n int) []proxy.Endpoint {
	var active []proxy.Endpoint
	for _, ep := range eps {
		if status(ep.ID()).State == liveness.StateActive {
			active = append(active, ep)
		}
	}
	slices.SortStableFunc(active, func(a, b proxy.Endpoint) int {
		return int(status(a.ID()).LatencyMs) - int(status(b.ID()).LatencyMs)
	})
	if len(active) > n {
		active = active[:n]
	}
	return active
}

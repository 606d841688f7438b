package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"proxysmith/internal/catalog"
	"proxysmith/internal/liveness"
	"proxysmith/internal/proxy"
)

type column struct {
	title string
	width int
}

var endpointColumns = []column{
	{"", 2},
	{"Endpoint", 24},
	{"Country", 9},
	{"Provider", 32},
	{"Status", 14},
}

type endpointsModel struct {
	all      []proxy.Endpoint
	filtered []proxy.Endpoint
	items    []proxy.Endpoint

	// countries[0] is the empty "all countries" filter.
	countries []string
	country   int

	page     int
	pages    int
	pageSize int
	cursor   int
	pager    paginator.Model

	width  int
	height int
}

func newEndpointsModel(eps []proxy.Endpoint, pageSize int) endpointsModel {
	if pageSize <= 0 {
		pageSize = catalog.DefaultPageSize
	}
	p := paginator.New()
	p.Type = paginator.Dots
	p.ActiveDot = lipgloss.NewStyle().Foreground(colorPurple).Render("•")
	p.InactiveDot = dimStyle.Render("•")

	em := endpointsModel{
		all:       eps,
		countries: append([]string{""}, catalog.Countries(eps)...),
		pageSize:  pageSize,
		pager:     p,
	}
	em.applyFilter()
	return em
}

func (em *endpointsModel) setSize(w, h int) {
	em.width = w
	em.height = h
}

// applyFilter rebuilds the filtered list for the current country and
// returns to the first page.
func (em *endpointsModel) applyFilter() {
	if c := em.countries[em.country]; c == "" {
		em.filtered = em.all
	} else {
		em.filtered = catalog.Filter(em.all, catalog.Query{Countries: []string{c}})
	}
	em.page = 1
	em.load()
}

func (em *endpointsModel) load() {
	em.items, em.pages = catalog.Page(em.filtered, em.page, em.pageSize)
	em.page = max(1, min(em.page, em.pages))
	em.cursor = max(0, min(em.cursor, len(em.items)-1))

	em.pager.PerPage = em.pageSize
	em.pager.SetTotalPages(len(em.filtered))
	em.pager.Page = em.page - 1
}

func (em *endpointsModel) nextPage() bool {
	if em.page >= em.pages {
		return false
	}
	em.page++
	em.cursor = 0
	em.load()
	return true
}

func (em *endpointsModel) prevPage() bool {
	if em.page <= 1 {
		return false
	}
	em.page--
	em.cursor = 0
	em.load()
	return true
}

func (em *endpointsModel) nextCountry() {
	em.country = (em.country + 1) % len(em.countries)
	em.cursor = 0
	em.applyFilter()
}

func (em *endpointsModel) countryLabel() string {
	if c := em.countries[em.country]; c != "" {
		return c
	}
	return "all"
}

func (em *endpointsModel) selected() (proxy.Endpoint, bool) {
	if em.cursor < 0 || em.cursor >= len(em.items) {
		return proxy.Endpoint{}, false
	}
	return em.items[em.cursor], true
}

func (em *endpointsModel) Update(msg tea.Msg, root *Model) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(km, keys.Up):
		if em.cursor > 0 {
			em.cursor--
		}
	case key.Matches(km, keys.Down):
		if em.cursor < len(em.items)-1 {
			em.cursor++
		}
	case key.Matches(km, keys.NextPage):
		if em.nextPage() {
			root.probePage()
		}
	case key.Matches(km, keys.PrevPage):
		if em.prevPage() {
			root.probePage()
		}
	case key.Matches(km, keys.Country):
		em.nextCountry()
		root.probePage()
		root.setNotification(fmt.Sprintf("Country: %s (%d endpoints)", em.countryLabel(), len(em.filtered)), false)
	case key.Matches(km, keys.Reprobe):
		n := root.reprobePage()
		root.setNotification(fmt.Sprintf("Re-probing %d endpoints", n), false)
	case key.Matches(km, keys.Enter):
		if ep, ok := em.selected(); ok && root.link != nil {
			return generateLink(root.link, ep)
		}
	}
	return nil
}

func (em *endpointsModel) View(status func(string) liveness.Status, spin string) string {
	var b strings.Builder

	b.WriteString(dimStyle.Render(fmt.Sprintf("Country: %s  |  %d endpoints  |  page %d/%d",
		em.countryLabel(), len(em.filtered), em.page, max(em.pages, 1))))
	b.WriteString("\n")

	header := make([]string, len(endpointColumns))
	for i, col := range endpointColumns {
		header[i] = cell(col.title, col.width, headerCellStyle)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	b.WriteString("\n")

	if len(em.items) == 0 {
		b.WriteString(dimStyle.Render("No endpoints match the current filter."))
	}
	for i, ep := range em.items {
		style, marker := cellStyle, ""
		if i == em.cursor {
			style, marker = selectedCellStyle, "›"
		}
		row := []string{
			cell(marker, endpointColumns[0].width, style),
			cell(ep.ID(), endpointColumns[1].width, style),
			cell(ep.Country, endpointColumns[2].width, style),
			cell(ep.Provider, endpointColumns[3].width, style),
			cell(formatStatus(status(ep.ID()), spin), endpointColumns[4].width, style),
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
		b.WriteString("\n")
	}

	if em.pages > 1 {
		b.WriteString("\n" + em.pager.View())
	}
	return forceHeight(b.String(), em.width, em.height)
}

// cell pads or truncates s to a fixed width. Styled content is measured
// by its printable width.
func cell(s string, width int, style lipgloss.Style) string {
	if lipgloss.Width(s) == len(s) {
		s = truncate(s, width-1)
	}
	return style.Width(width).MaxWidth(width).Render(s)
}

func formatStatus(st liveness.Status, spin string) string {
	switch st.State {
	case liveness.StateLoading:
		return spin + " probing"
	case liveness.StateActive:
		return latencyStyle(st.LatencyMs).Render(fmt.Sprintf("%dms", st.LatencyMs))
	case liveness.StateDead:
		return errorStyle.Render("dead")
	default:
		return dimStyle.Render("-")
	}
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen-1] + "~"
}

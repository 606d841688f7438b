// Package tui is the interactive endpoint browser: a paginated catalog
// table whose visible rows are probed as they come into view.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"proxysmith/internal/liveness"
	"proxysmith/internal/proxy"
)

// Tab indices.
const (
	tabEndpoints = 0
	tabStats     = 1
	tabCount     = 2
)

// Model is the root BubbleTea model.
type Model struct {
	// Dependencies.
	scheduler *liveness.Scheduler
	updates   <-chan struct{}
	link      func(proxy.Endpoint) (string, error)

	// Dimensions.
	width  int
	height int

	// Navigation.
	activeTab int
	showHelp  bool

	// Tab models.
	endpointsTab endpointsModel
	statsTab     statsModel

	// Notification.
	notification    string
	notificationErr bool
	notifVersion    int

	spinner spinner.Model
}

// Deps holds all dependencies injected into the TUI.
type Deps struct {
	Endpoints []proxy.Endpoint
	Scheduler *liveness.Scheduler
	// Updates wakes the browser after status changes; see Notifier.
	Updates  <-chan struct{}
	PageSize int
	// Link, when set, renders the selected endpoint as a share link.
	Link func(proxy.Endpoint) (string, error)
}

// NewModel creates a new root Model.
func NewModel(deps Deps) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return &Model{
		scheduler:    deps.Scheduler,
		updates:      deps.Updates,
		link:         deps.Link,
		activeTab:    tabEndpoints,
		spinner:      s,
		endpointsTab: newEndpointsModel(deps.Endpoints, deps.PageSize),
	}
}

func (m *Model) Init() tea.Cmd {
	m.probePage()
	return tea.Batch(waitForStatus(m.updates), m.spinner.Tick)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	prevNotifVersion := m.notifVersion

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		ch := m.contentHeight()
		m.endpointsTab.setSize(msg.Width, ch)
		m.statsTab.setSize(msg.Width, ch)
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}

	case statusChangedMsg:
		// The view reads statuses directly; just keep listening.
		cmds = append(cmds, waitForStatus(m.updates))

	case linkMsg:
		if msg.err != nil {
			m.setNotification(fmt.Sprintf("Link failed: %v", msg.err), true)
		} else {
			m.setNotification(msg.uri, false)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case clearNotificationMsg:
		if msg.version == m.notifVersion {
			m.notification = ""
			m.notificationErr = false
		}
	}

	if m.activeTab == tabEndpoints {
		cmds = append(cmds, m.endpointsTab.Update(msg, m))
	}

	// Schedule notification auto-clear when a new notification was set.
	if m.notifVersion > prevNotifVersion && m.notification != "" {
		cmds = append(cmds, clearNotification(8*time.Second, m.notifVersion))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	stats := m.stats()
	header := renderHeader(m.activeTab, stats, m.width)

	var content string
	switch m.activeTab {
	case tabEndpoints:
		content = m.endpointsTab.View(m.status, m.spinner.View())
	case tabStats:
		content = m.statsTab.View(stats, &m.endpointsTab, m.status)
	}

	var notif string
	if m.notification != "" {
		if m.notificationErr {
			notif = notifErrorStyle.Render("! " + m.notification)
		} else {
			notif = notifSuccessStyle.Render("* " + m.notification)
		}
	}

	footer := renderFooter(renderHelpBar(m.showHelp), m.width)

	parts := []string{header}
	if notif != "" {
		parts = append(parts, notif)
	}
	parts = append(parts, content, footer)
	output := lipgloss.JoinVertical(lipgloss.Left, parts...)

	return forceHeight(output, m.width, m.height)
}

// forceHeight ensures the string has exactly `height` lines, each padded to `width`.
// This prevents BubbleTea from leaving ghost lines when switching tabs.
func forceHeight(s string, width, height int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	blank := strings.Repeat(" ", width)
	for len(lines) < height {
		lines = append(lines, blank)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) contentHeight() int {
	overhead := 6
	if m.showHelp {
		overhead += 3
	}
	return max(m.height-overhead, 1)
}

func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Quit):
		return tea.Quit, true

	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		ch := m.contentHeight()
		m.endpointsTab.setSize(m.width, ch)
		m.statsTab.setSize(m.width, ch)
		return nil, true

	case key.Matches(msg, keys.TabNext):
		m.activeTab = (m.activeTab + 1) % tabCount
		return nil, true

	case key.Matches(msg, keys.TabPrev):
		m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		return nil, true
	}
	return nil, false
}

// probePage queues the unchecked endpoints of the visible page.
func (m *Model) probePage() int {
	if m.scheduler == nil {
		return 0
	}
	return m.scheduler.Enqueue(m.endpointsTab.items)
}

// reprobePage starts a new cycle for the visible page.
func (m *Model) reprobePage() int {
	if m.scheduler == nil {
		return 0
	}
	return m.scheduler.Reset(m.endpointsTab.items)
}

func (m *Model) status(id string) liveness.Status {
	if m.scheduler == nil {
		return liveness.Status{State: liveness.StateUnknown}
	}
	return m.scheduler.Status(id)
}

func (m *Model) stats() liveness.Stats {
	if m.scheduler == nil {
		return liveness.Stats{}
	}
	return m.scheduler.Stats()
}

func (m *Model) setNotification(text string, isErr bool) {
	m.notification = text
	m.notificationErr = isErr
	m.notifVersion++
}

// NewProgram creates a BubbleTea program with the given dependencies.
func NewProgram(deps Deps) *tea.Program {
	return tea.NewProgram(NewModel(deps), tea.WithAltScreen())
}

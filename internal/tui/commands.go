package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"proxysmith/internal/liveness"
	"proxysmith/internal/proxy"
)

// Notifier returns a scheduler OnUpdate hook paired with the channel the
// browser listens on. Bursts of updates collapse into one wake-up.
func Notifier() (func(liveness.Update), <-chan struct{}) {
	ch := make(chan struct{}, 1)
	notify := func(liveness.Update) {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return notify, ch
}

// waitForStatus blocks until the scheduler reports a change.
func waitForStatus(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return statusChangedMsg{}
	}
}

// generateLink renders the share link for one endpoint.
func generateLink(fn func(proxy.Endpoint) (string, error), ep proxy.Endpoint) tea.Cmd {
	return func() tea.Msg {
		uri, err := fn(ep)
		return linkMsg{endpoint: ep, uri: uri, err: err}
	}
}

// clearNotification returns a command that fires after a delay.
func clearNotification(d time.Duration, version int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearNotificationMsg{version: version}
	})
}

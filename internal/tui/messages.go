package tui

import "proxysmith/internal/proxy"

// statusChangedMsg reports that the scheduler published at least one
// status change since the last message.
type statusChangedMsg struct{}

type linkMsg struct {
	endpoint proxy.Endpoint
	uri      string
	err      error
}

type clearNotificationMsg struct {
	version int
}

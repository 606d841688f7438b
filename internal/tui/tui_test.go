package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"proxysmith/internal/liveness"
	"proxysmith/internal/proxy"
)

type aliveChecker struct{}

func (aliveChecker) Name() string { return "alive" }

func (aliveChecker) Check(_ context.Context, ids []string) ([]liveness.Result, error) {
	out := make([]liveness.Result, len(ids))
	for i := range out {
		out[i] = liveness.Result{Alive: true, LatencyMs: 80}
	}
	return out, nil
}

func testEndpoints() []proxy.Endpoint {
	var eps []proxy.Endpoint
	for i := 0; i < 45; i++ {
		country := "SG"
		if i%3 == 0 {
			country = "ID"
		}
		eps = append(eps, proxy.Endpoint{
			IP:       fmt.Sprintf("10.1.0.%d", i+1),
			Port:     "443",
			Country:  country,
			Provider: "Acme",
		})
	}
	return eps
}

func newTestModel(t *testing.T) (*Model, *liveness.Scheduler) {
	t.Helper()
	s := liveness.NewScheduler(aliveChecker{}, liveness.SchedulerConfig{Slots: 2, BatchSize: 5})
	t.Cleanup(s.Close)
	m := NewModel(Deps{Endpoints: testEndpoints(), Scheduler: s})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, s
}

func wait(t *testing.T, s *liveness.Scheduler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("scheduler did not go idle: %v", err)
	}
}

func press(m *Model, r rune) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

func TestModel_InitProbesFirstPageOnly(t *testing.T) {
	m, s := newTestModel(t)
	m.Init()
	wait(t, s)

	eps := testEndpoints()
	if st := s.Status(eps[0].ID()); st.State != liveness.StateActive || st.LatencyMs != 80 {
		t.Fatalf("first row status=%+v, want active/80", st)
	}
	if st := s.Status(eps[20].ID()); st.State != liveness.StateUnknown {
		t.Fatalf("second page row status=%v, want unknown", st.State)
	}
	if got := s.Stats().Active; got != 20 {
		t.Fatalf("active=%d, want=20", got)
	}
}

func TestModel_PagingProbesNewPage(t *testing.T) {
	m, s := newTestModel(t)
	m.Init()
	wait(t, s)

	press(m, 'n')
	wait(t, s)
	if m.endpointsTab.page != 2 {
		t.Fatalf("page=%d, want=2", m.endpointsTab.page)
	}
	if got := s.Stats().Active; got != 40 {
		t.Fatalf("active=%d, want=40", got)
	}

	press(m, 'n')
	press(m, 'n')
	if m.endpointsTab.page != 3 || len(m.endpointsTab.items) != 5 {
		t.Fatalf("page=%d items=%d, want 3/5", m.endpointsTab.page, len(m.endpointsTab.items))
	}
	press(m, 'p')
	if m.endpointsTab.page != 2 {
		t.Fatalf("page=%d after prev, want=2", m.endpointsTab.page)
	}
}

func TestModel_CountryCycle(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, 'c')
	if got := m.endpointsTab.countryLabel(); got != "ID" {
		t.Fatalf("country=%q, want=ID", got)
	}
	if len(m.endpointsTab.filtered) != 15 || m.endpointsTab.page != 1 {
		t.Fatalf("filtered=%d page=%d, want 15/1", len(m.endpointsTab.filtered), m.endpointsTab.page)
	}
	press(m, 'c')
	press(m, 'c')
	if got := m.endpointsTab.countryLabel(); got != "all" {
		t.Fatalf("country=%q, want=all", got)
	}
}

func TestModel_ReprobeResetsPage(t *testing.T) {
	m, s := newTestModel(t)
	m.Init()
	wait(t, s)

	press(m, 'r')
	if !strings.Contains(m.notification, "Re-probing 20") {
		t.Fatalf("notification=%q", m.notification)
	}
	wait(t, s)
	if got := s.Stats().Active; got != 20 {
		t.Fatalf("active=%d, want=20", got)
	}
}

func TestModel_View(t *testing.T) {
	m, s := newTestModel(t)
	m.Init()
	wait(t, s)

	out := m.View()
	for _, want := range []string{"PROXYSMITH", "page 1/3", "10.1.0.1:443", "80ms"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q", want)
		}
	}
	if lines := strings.Count(out, "\n") + 1; lines != 40 {
		t.Fatalf("view lines=%d, want=40", lines)
	}
}

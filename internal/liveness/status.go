// Package liveness classifies catalog endpoints as reachable or not.
//
// A Scheduler drains a FIFO queue in fixed-size batches, one multiplexed
// status request per batch, with at most Slots batches in flight. A
// Validator probes endpoints one at a time with retries for bulk filtering.
package liveness

// State is the per-endpoint liveness state.
type State string

const (
	StateUnknown State = "unknown"
	StateLoading State = "loading"
	StateActive  State = "active"
	StateDead    State = "dead"
)

// Terminal reports whether a probing cycle has finished for the state.
func (s State) Terminal() bool {
	return s == StateActive || s == StateDead
}

// Status is the liveness record for one endpoint identity.
// LatencyMs is meaningful only when State is StateActive.
type Status struct {
	State     State `json:"state"`
	LatencyMs uint  `json:"latency_ms"`
}

// Update is delivered to the scheduler's OnUpdate observer.
type Update struct {
	ID     string
	Status Status
}

// Stats counts tracked endpoints per state plus queue occupancy.
type Stats struct {
	Loading  int `json:"loading"`
	Active   int `json:"active"`
	Dead     int `json:"dead"`
	Queued   int `json:"queued"`
	InFlight int `json:"in_flight"`
}

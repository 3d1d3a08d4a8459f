package domain

import "time"

// ItemOutcome is the terminal state of one item within a run. Each item is
// attempted exactly once per run; there is no retry transition.
type ItemOutcome string

const (
	// OutcomeCreated means no product matched the item's code and one was created.
	OutcomeCreated ItemOutcome = "created"
	// OutcomeUpdated means a matching product was stale and was rewritten.
	OutcomeUpdated ItemOutcome = "updated"
	// OutcomeUnchanged means a matching product already reflected the feed.
	OutcomeUnchanged ItemOutcome = "unchanged"
	// OutcomeFailed means the lookup or write for the item errored; the run
	// continues with the next item.
	OutcomeFailed ItemOutcome = "failed"
)

// ItemResult records what happened to a single feed item during a run.
type ItemResult struct {
	SKU       string      `json:"sku"`
	Name      string      `json:"name"`
	Category  string      `json:"category"`
	Outcome   ItemOutcome `json:"outcome"`
	ProductID int64       `json:"product_id,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// RunReport summarises one full synchronization pass. It lives in memory
// only; nothing about a run survives the process beyond what was written
// to the store.
type RunReport struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Created    int          `json:"created"`
	Updated    int          `json:"updated"`
	Unchanged  int          `json:"unchanged"`
	Failed     int          `json:"failed"`
	Items      []ItemResult `json:"items"`
}

// Record appends an item result and bumps the matching counter.
func (r *RunReport) Record(item ItemResult) {
	r.Items = append(r.Items, item)
	switch item.Outcome {
	case OutcomeCreated:
		r.Created++
	case OutcomeUpdated:
		r.Updated++
	case OutcomeUnchanged:
		r.Unchanged++
	case OutcomeFailed:
		r.Failed++
	}
}

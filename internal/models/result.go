package models

import "time"

// Row actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// RowResult is the outcome of importing one row. Exactly one RowResult is
// produced per input row; Action is empty when the row failed.
type RowResult struct {
	RowNumber int    `json:"row_number"`
	Title     string `json:"title"`
	Action    string `json:"action,omitempty"` // created|updated
	PostID    int64  `json:"post_id,omitempty"`
	Status    string `json:"status,omitempty"` // remote post status
	Error     string `json:"error,omitempty"`
}

// Summary aggregates the results of a whole batch. It is derived purely
// from the result sequence.
type Summary struct {
	Total     int         `json:"total"`
	Success   int         `json:"success"`
	Failed    int         `json:"failed"`
	Duration  float64     `json:"duration_seconds"`
	Results   []RowResult `json:"results"`
	StartedAt time.Time   `json:"started_at"`
}

// Summarize builds a Summary from a result sequence.
func Summarize(results []RowResult, startedAt time.Time) Summary {
	s := Summary{
		Total:     len(results),
		Results:   results,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt).Seconds(),
	}
	for _, r := range results {
		if r.Error != "" {
			s.Failed++
		} else {
			s.Success++
		}
	}
	return s
}

// ImportRun is the persisted record of one batch run.
type ImportRun struct {
	ID        string      `json:"id"`     // uuid
	Source    string      `json:"source"` // csv|feed
	Filename  string      `json:"filename,omitempty"`
	Total     int         `json:"total"`
	Success   int         `json:"success"`
	Failed    int         `json:"failed"`
	Duration  float64     `json:"duration_seconds"`
	Results   []RowResult `json:"results,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// Event is a progress notification emitted by the engine at state-machine
// transitions. Delivery (SSE, console, none) is up to the observer.
type Event struct {
	Type      string `json:"type"` // info|success|error
	Message   string `json:"message"`
	RowNumber int    `json:"row_number,omitempty"`
	PostID    int64  `json:"post_id,omitempty"`
	Title     string `json:"title,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Event types.
const (
	EventInfo    = "info"
	EventSuccess = "success"
	EventError   = "error"
)

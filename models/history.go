package models

import "time"

// Invocation statuses
const (
	StatusPending   = "pending"
	StatusExecuting = "executing"
	StatusDone      = "done"
	StatusFailed    = "failed"
)

// Invocation records one macro run.
type Invocation struct {
	ID          string    `json:"id"`
	Binding     string    `json:"binding"`
	ActionType  string    `json:"action_type"`
	Description string    `json:"description"`
	Source      string    `json:"source"` // terminal, http
	Status      string    `json:"status"`
	Result      string    `json:"result,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at,omitempty"`
}

// Duration is zero until the invocation has finished.
func (i *Invocation) Duration() time.Duration {
	if i.FinishedAt.IsZero() {
		return 0
	}
	return i.FinishedAt.Sub(i.StartedAt)
}

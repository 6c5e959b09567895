package model

import "time"

// InvocationRecord is one row of the server's invocation history.
//
// The history is an audit log of what ran and how it ended; it carries
// the invocation's raw output (capped) but is not a result queue.
type InvocationRecord struct {
	ID        string    `json:"id"`
	Tool      string    `json:"tool"`
	Strategy  string    `json:"strategy"`
	Outcome   string    `json:"outcome"`
	ExitInfo  string    `json:"exit_info,omitempty"`
	Stdout    string    `json:"stdout,omitempty"`
	Stderr    string    `json:"stderr,omitempty"`
	ElapsedMS int64     `json:"elapsed_ms"`
	CreatedAt time.Time `json:"created_at"`
}

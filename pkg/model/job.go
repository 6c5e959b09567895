package model

// QueueJob is the broker's view of a forwarded job. The broker owns
// scheduling and result storage; BioExec only passes these through.
type QueueJob struct {
	JobID       string `json:"job_id"`
	JobType     string `json:"job_type"`
	Status      string `json:"status"`
	Priority    int    `json:"priority,omitempty"`
	Progress    int    `json:"progress,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	StartedAt   string `json:"started_at,omitempty"`
	CompletedAt string `json:"completed_at,omitempty"`
	ResultURL   string `json:"result_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

// SubmitJobRequest is the payload sent to the broker's submit endpoint.
type SubmitJobRequest struct {
	JobType    string         `json:"job_type"`
	Parameters map[string]any `json:"parameters"`
	Priority   int            `json:"priority"`
	Tags       []string       `json:"tags"`
}

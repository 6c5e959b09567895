package model

import "time"

// Response is the standard API response envelope.
type Response struct {
	Status     string      `json:"status"`
	RequestID  string      `json:"request_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Data       any         `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      *APIError   `json:"error"`
}

// Pagination holds pagination metadata for list endpoints.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// ListOptions configures list queries with pagination and filtering.
type ListOptions struct {
	Limit  int
	Offset int
	Tool   string // Optional tool name filter
}

// DefaultListOptions returns sensible defaults.
func DefaultListOptions() ListOptions {
	return ListOptions{Limit: 20, Offset: 0}
}

// Clamp enforces limits (max 100, min 1).
func (o *ListOptions) Clamp() {
	if o.Limit <= 0 {
		o.Limit = 20
	}
	if o.Limit > 100 {
		o.Limit = 100
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}

// RunRequest is the body of a synchronous tool invocation.
//
// Params are matched against the tool definition's parameter schema.
// Files maps destination filenames to inline file content staged into
// the invocation's working directory.
type RunRequest struct {
	Params map[string]any    `json:"params"`
	Files  map[string]string `json:"files,omitempty"`
}

// RunResult is the API view of one completed invocation.
type RunResult struct {
	Tool      string `json:"tool"`
	Strategy  string `json:"strategy"`
	Outcome   string `json:"outcome"`
	Stdout    string `json:"stdout,omitempty"`
	Stderr    string `json:"stderr,omitempty"`
	ExitInfo  string `json:"exit_info,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms"`
	Detail    string `json:"detail,omitempty"`
}

// DetectionReport describes how a tool would be invoked, per the
// resolver's cached resolution.
type DetectionReport struct {
	Tool           string `json:"tool"`
	Strategy       string `json:"strategy"`
	Available      bool   `json:"available"`
	ExecutablePath string `json:"executable_path,omitempty"`
	Version        string `json:"version,omitempty"`
	ModuleName     string `json:"module_name,omitempty"`
	ContainerImage string `json:"container_image,omitempty"`
}

// Package sandbox stages inputs into an ephemeral working directory,
// spawns the resolved tool under a deadline, enforces input size limits,
// and maps process exit conditions onto a closed outcome taxonomy.
package sandbox

import "time"

// OutcomeKind is the closed set of ways an invocation can end.
type OutcomeKind string

const (
	OutcomeSuccess         OutcomeKind = "success"
	OutcomeFailure         OutcomeKind = "failure"
	OutcomeTimedOut        OutcomeKind = "timed_out"
	OutcomeToolUnavailable OutcomeKind = "tool_unavailable"
	OutcomeInputTooLarge   OutcomeKind = "input_too_large"
	OutcomeInputMissing    OutcomeKind = "input_missing"
	OutcomeInternalError   OutcomeKind = "internal_error"
)

// Outcome is the result of exactly one invocation. Exactly one kind is
// produced per invocation; success and failure payloads are never mixed.
// None of these are retried internally, and the distinction between
// "tool absent" and "tool failed" is always preserved for the caller.
type Outcome struct {
	Kind OutcomeKind

	// Stdout is set only for OutcomeSuccess.
	Stdout []byte

	// ExitInfo and Stderr are set only for OutcomeFailure.
	ExitInfo string
	Stderr   []byte

	// Elapsed is set only for OutcomeTimedOut.
	Elapsed time.Duration

	// Limit is set only for OutcomeInputTooLarge.
	Limit int64

	// MissingPath is set only for OutcomeInputMissing.
	MissingPath string

	// Detail is set only for OutcomeInternalError.
	Detail string
}

func success(stdout []byte) Outcome {
	return Outcome{Kind: OutcomeSuccess, Stdout: stdout}
}

func failure(exitInfo string, stderr []byte) Outcome {
	return Outcome{Kind: OutcomeFailure, ExitInfo: exitInfo, Stderr: stderr}
}

func timedOut(elapsed time.Duration) Outcome {
	return Outcome{Kind: OutcomeTimedOut, Elapsed: elapsed}
}

func toolUnavailable() Outcome {
	return Outcome{Kind: OutcomeToolUnavailable}
}

func inputTooLarge(limit int64) Outcome {
	return Outcome{Kind: OutcomeInputTooLarge, Limit: limit}
}

func inputMissing(path string) Outcome {
	return Outcome{Kind: OutcomeInputMissing, MissingPath: path}
}

func internalError(detail string) Outcome {
	return Outcome{Kind: OutcomeInternalError, Detail: detail}
}

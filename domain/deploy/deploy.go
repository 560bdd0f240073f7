// Package deploy provides deployment outcome types and pure helpers.
// All functions are pure - no side effects.
package deploy

import "time"

// Status is the terminal state of a deployment attempt.
type Status string

const (
	StatusSucceeded Status = "succeeded" // Tool exited zero
	StatusFailed    Status = "failed"    // Tool exited non-zero or never ran
)

// ToolOutput carries the captured streams of one deployment tool run.
// Both streams are kept: the tool writes progress to stdout and diagnostics
// to stderr, and failures often need both to debug.
type ToolOutput struct {
	Stdout string
	Stderr string
}

// Record describes one deployment attempt (immutable value type). Records are
// written after the attempt settles, for both outcomes, and are never read on
// the request path.
type Record struct {
	ID         string
	ObjectName string
	APIName    string
	OrgAlias   string
	FieldCount int
	Status     Status
	Output     string // Captured stdout
	Error      string // Captured stderr or the error text, empty on success
	DurationMs int64
	CreatedAt  time.Time
}

// NewRecord builds a record for a settled deployment attempt.
// This is a PURE function.
func NewRecord(id, objectName, apiName, orgAlias string, fieldCount int, out ToolOutput, runErr error, duration time.Duration, at time.Time) Record {
	r := Record{
		ID:         id,
		ObjectName: objectName,
		APIName:    apiName,
		OrgAlias:   orgAlias,
		FieldCount: fieldCount,
		Status:     StatusSucceeded,
		Output:     out.Stdout,
		DurationMs: duration.Milliseconds(),
		CreatedAt:  at,
	}
	if runErr != nil {
		r.Status = StatusFailed
		r.Error = runErr.Error()
		if out.Stderr != "" {
			r.Error = out.Stderr
		}
	}
	return r
}

// Succeeded reports whether the attempt deployed cleanly.
func (r Record) Succeeded() bool {
	return r.Status == StatusSucceeded
}

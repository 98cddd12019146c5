package structs

import (
	"encoding/json"
	"time"
)

// Job is a durable unit of background work and its lifecycle state.
type Job struct {
	ID   string          `json:"id"`
	Kind string          `json:"kind"`
	Args json.RawMessage `json:"args"`

	Status          Status `json:"status"`
	StatusInfo      string `json:"status_info"`
	PercentComplete int    `json:"percent_complete"`
	TaskStep        int    `json:"task_step"`
	ErrorMessage    string `json:"error_message,omitempty"`

	// NumberOfRetries is bumped each time the job is requeued. It also identifies the
	// current claim; writes from an older claim are refused.
	NumberOfRetries int `json:"number_of_retries"`

	// RunAfter is the earliest time the job may be claimed.
	RunAfter time.Time `json:"run_after"`

	CreationTime         time.Time  `json:"creation_time"`
	LastModificationTime time.Time  `json:"last_modification_time"`
	CompletionTime       *time.Time `json:"completion_time"`
}

// Progress is a partial update a running job makes to its own record.
type Progress struct {
	// AppendInfo is added to the end of the job's status info, if set.
	AppendInfo string

	// PercentComplete replaces the job's percent complete, if set. Clamped to 0-100.
	PercentComplete *int

	// NextStep increments the job's task step.
	NextStep bool
}

// IsEmpty returns true if the progress would not change anything.
func (p *Progress) IsEmpty() bool {
	return p == nil || (p.AppendInfo == "" && p.PercentComplete == nil && !p.NextStep)
}

// ClampPercent forces a percentage into the range 0-100
func ClampPercent(in int) int {
	if in < 0 {
		return 0
	}
	if in > 100 {
		return 100
	}
	return in
}

// AppendInfo joins new status info onto existing status info, one entry per line.
func AppendInfo(existing, add string) string {
	if add == "" {
		return existing
	}
	if existing == "" {
		return add
	}
	return existing + "\n" + add
}

package structs

import (
	"strings"
)

type Status string

const (
	// transient states
	ENQUEUED   Status = "Enqueued"
	PROCESSING Status = "Processing"

	// end states
	COMPLETE Status = "Complete"
	ERROR    Status = "Error"
)

func IsFinalStatus(status Status) bool {
	switch status {
	case COMPLETE, ERROR:
		return true
	default:
		return false
	}
}

// CanTransition reports whether a record may move from one status to another.
//
// Records only move forward, with the exception of Processing -> Enqueued which
// is how retries and reaped records get back onto the queue.
func CanTransition(from, to Status) bool {
	switch from {
	case ENQUEUED:
		return to == PROCESSING
	case PROCESSING:
		return to == ENQUEUED || to == COMPLETE || to == ERROR
	default:
		return false
	}
}

func ToStatus(s string) Status {
	switch strings.ToLower(s) {
	case "enqueued":
		return ENQUEUED
	case "processing":
		return PROCESSING
	case "complete":
		return COMPLETE
	case "error":
		return ERROR
	default:
		return ""
	}
}

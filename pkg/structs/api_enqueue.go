package structs

import (
	"encoding/json"
)

// EnqueueRequest asks for a job of the given kind. Args are passed to the handler as is.
type EnqueueRequest struct {
	Kind string          `json:"kind"`
	Args json.RawMessage `json:"args,omitempty"`
}

type EnqueueResponse struct {
	ID string `json:"id"`
}

// DispatchResponse lists the jobs created for a domain event, one per matching function.
type DispatchResponse struct {
	JobIDs []string `json:"job_ids"`
}

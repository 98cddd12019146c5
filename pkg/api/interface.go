package api

import (
	"context"

	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

// API represents the functions servers should expose.
type API interface {
	// Implemented in internal/core.Service

	Enqueue(ctx context.Context, req *structs.EnqueueRequest) (*structs.EnqueueResponse, error)
	Dispatch(ctx context.Context, evt *structs.Event) (*structs.DispatchResponse, error)

	Job(ctx context.Context, id string) (*structs.Job, error)
	Jobs(ctx context.Context, q *structs.Query) ([]*structs.Job, error)
}

type Server interface {
	// ServeForever serves until ctx is done, then shuts down gracefully.
	ServeForever(ctx context.Context, api API) error
}

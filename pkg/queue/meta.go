package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/RaythaHQ/raytha-sub006/pkg/database"
	"github.com/RaythaHQ/raytha-sub006/pkg/errors"
	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

// Meta includes all of the job information a handler needs to process a job, and
// lets it report progress.
//
// Progress is written to the database immediately.
type Meta struct {
	Job *structs.Job

	db database.QueueDB
}

// ID of the job being run
func (m *Meta) ID() string {
	return m.Job.ID
}

// Decode unmarshals the job args into out.
func (m *Meta) Decode(out interface{}) error {
	if len(m.Job.Args) == 0 {
		return fmt.Errorf("%w job %s has no args", errors.ErrInvalidArg, m.Job.ID)
	}
	err := json.Unmarshal(m.Job.Args, out)
	if err != nil {
		return fmt.Errorf("%w job %s args: %v", errors.ErrInvalidArg, m.Job.ID, err)
	}
	return nil
}

// AppendInfo adds a line to the job's status info.
func (m *Meta) AppendInfo(ctx context.Context, msg string) error {
	return m.Report(ctx, &structs.Progress{AppendInfo: msg})
}

// SetPercent sets the job's percent complete (clamped to 0-100).
func (m *Meta) SetPercent(ctx context.Context, pct int) error {
	return m.Report(ctx, &structs.Progress{PercentComplete: &pct})
}

// NextStep moves the job on to its next milestone.
func (m *Meta) NextStep(ctx context.Context) error {
	return m.Report(ctx, &structs.Progress{NextStep: true})
}

// Report writes any combination of progress in one update.
func (m *Meta) Report(ctx context.Context, p *structs.Progress) error {
	return m.db.SetProgress(ctx, m.Job, p)
}

package database

import (
	"context"
	"encoding/json"
	stderrs "errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RaythaHQ/raytha-sub006/pkg/errors"
	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

// Postgres is a database implementation that uses postgres.
type Postgres struct {
	opts *Options
	pool *pgxpool.Pool
}

// NewPostgres returns a new Postgres database connection.
func NewPostgres(opts *Options) (*Postgres, error) {
	pool, err := pgxpool.New(context.Background(), opts.ConnectionURL())
	return &Postgres{pool: pool, opts: opts}, err
}

// Close shuts down the database connection.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// InsertJob inserts a single job record
func (p *Postgres) InsertJob(ctx context.Context, j *structs.Job) error {
	vals, args := toJobSqlArgs(pgPlaceholder, 1, j)
	qstr := fmt.Sprintf(`INSERT INTO %s (%s) VALUES %s;`, tableJobs, insertColumns, vals)
	_, err := p.pool.Exec(ctx, qstr, args...)
	return err
}

// ClaimJob locks the oldest claimable job, skipping rows other workers hold, and marks it
// Processing in the same statement.
func (p *Postgres) ClaimJob(ctx context.Context) (*structs.Job, error) {
	qstr := fmt.Sprintf(`UPDATE %s SET status=$1, last_modification_time=$2
	WHERE id = (
		SELECT id FROM %s
		WHERE status=$3 AND run_after <= $2
		ORDER BY creation_time, id
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	)
	RETURNING %s;`, tableJobs, tableJobs, jobColumns)

	j, err := scanJob(p.pool.QueryRow(ctx, qstr, string(structs.PROCESSING), timeNow(), string(structs.ENQUEUED)))
	if stderrs.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return j, err
}

// UpdateProgress appends status info, sets percent complete and / or bumps the task step
// of a Processing job.
func (p *Postgres) UpdateProgress(ctx context.Context, id string, claim int, pr *structs.Progress) error {
	sets := []string{}
	args := []interface{}{}
	if pr.AppendInfo != "" {
		args = append(args, pr.AppendInfo)
		sets = append(sets, fmt.Sprintf("status_info = CASE WHEN status_info = '' THEN $%[1]d ELSE status_info || chr(10) || $%[1]d END", len(args)))
	}
	if pr.PercentComplete != nil {
		args = append(args, *pr.PercentComplete)
		sets = append(sets, fmt.Sprintf("percent_complete = $%d", len(args)))
	}
	if pr.NextStep {
		sets = append(sets, "task_step = task_step + 1")
	}
	args = append(args, timeNow())
	sets = append(sets, fmt.Sprintf("last_modification_time = $%d", len(args)))

	args = append(args, id, string(structs.PROCESSING), claim)
	qstr := fmt.Sprintf(`UPDATE %s SET %s WHERE id=$%d AND status=$%d AND number_of_retries=$%d;`,
		tableJobs, strings.Join(sets, ", "), len(args)-2, len(args)-1, len(args),
	)

	info, err := p.pool.Exec(ctx, qstr, args...)
	if err != nil {
		return err
	}
	if info.RowsAffected() == 0 {
		return fmt.Errorf("%w job %s is not processing under this claim", errors.ErrInvalidState, id)
	}
	return nil
}

// FinishJob sets a final state on a Processing job
func (p *Postgres) FinishJob(ctx context.Context, id string, claim int, st structs.Status, msg string) error {
	now := timeNow()
	qstr := fmt.Sprintf(`UPDATE %s SET status=$1, error_message=$2, percent_complete=100, last_modification_time=$3, completion_time=$3
	WHERE id=$4 AND status=$5 AND number_of_retries=$6;`, tableJobs)

	info, err := p.pool.Exec(ctx, qstr, string(st), msg, now, id, string(structs.PROCESSING), claim)
	if err != nil {
		return err
	}
	if info.RowsAffected() == 0 {
		return fmt.Errorf("%w job %s is not processing under this claim", errors.ErrInvalidState, id)
	}
	return nil
}

// RequeueJob returns a Processing job to the queue
func (p *Postgres) RequeueJob(ctx context.Context, id string, claim int, runAfter time.Time) error {
	qstr := fmt.Sprintf(`UPDATE %s SET status=$1, number_of_retries=number_of_retries+1, run_after=$2, last_modification_time=$3
	WHERE id=$4 AND status=$5 AND number_of_retries=$6;`, tableJobs)

	info, err := p.pool.Exec(ctx, qstr, string(structs.ENQUEUED), runAfter, timeNow(), id, string(structs.PROCESSING), claim)
	if err != nil {
		return err
	}
	if info.RowsAffected() == 0 {
		return fmt.Errorf("%w job %s is not processing under this claim", errors.ErrInvalidState, id)
	}
	return nil
}

// RequeueStale returns Processing jobs that haven't been touched since `before` to the queue
func (p *Postgres) RequeueStale(ctx context.Context, before time.Time) ([]string, error) {
	qstr := fmt.Sprintf(`UPDATE %s SET status=$1, number_of_retries=number_of_retries+1, run_after=$2, last_modification_time=$2
	WHERE status=$3 AND last_modification_time < $4
	RETURNING id;`, tableJobs)

	rows, err := p.pool.Query(ctx, qstr, string(structs.ENQUEUED), timeNow(), string(structs.PROCESSING), before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		err = rows.Scan(&id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Jobs returns jobs matching the given query
func (p *Postgres) Jobs(ctx context.Context, q *structs.Query) ([]*structs.Job, error) {
	where, args := toSqlQuery(pgPlaceholder, 1, queryFilters(q))
	args = append(args, q.Limit, q.Offset)

	qstr := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY creation_time DESC, id LIMIT $%d OFFSET $%d;`,
		jobColumns, tableJobs, where, len(args)-1, len(args),
	)

	rows, err := p.pool.Query(ctx, qstr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []*structs.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}

	return jobs, rows.Err()
}

// Functions returns the active functions listening for the given trigger
func (p *Postgres) Functions(ctx context.Context, trigger structs.Trigger) ([]*structs.Function, error) {
	qstr := fmt.Sprintf(`SELECT id, name, developer_name, code, trigger_kind, is_active FROM %s
	WHERE is_active = TRUE AND trigger_kind = $1 ORDER BY developer_name;`, tableFunctions)

	rows, err := p.pool.Query(ctx, qstr, string(trigger))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fns := []*structs.Function{}
	for rows.Next() {
		fn, err := scanFunction(rows)
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	return fns, rows.Err()
}

// Listen returns a stream of events sent with NOTIFY on the given channel. This is implemented
// in pkg/database/postgres_change_stream.go
func (p *Postgres) Listen(ctx context.Context, channel string) (EventStream, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	_, err = conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize())
	if err != nil {
		conn.Release()
		return nil, err
	}
	return &pgChangeStream{conn: conn, channel: channel}, nil
}

// Publish sends an event to everyone listening on the given channel.
func (p *Postgres) Publish(ctx context.Context, channel string, evt *structs.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, "SELECT pg_notify($1, $2);", channel, string(data))
	return err
}

func scanFunction(row scanner) (*structs.Function, error) {
	fn := &structs.Function{}
	var trigger string
	err := row.Scan(&fn.ID, &fn.Name, &fn.DeveloperName, &fn.Code, &trigger, &fn.IsActive)
	fn.Trigger = structs.Trigger(trigger)
	return fn, err
}

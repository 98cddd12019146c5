package database

import (
	"context"
	"database/sql"
	stderrs "errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/RaythaHQ/raytha-sub006/pkg/errors"
	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

// MySQL is a database implementation for MySQL 8+ (which supports SKIP LOCKED).
type MySQL struct {
	opts *Options
	db   *sql.DB
}

// NewMySQL returns a new MySQL database connection. The URL is a go-sql-driver DSN
// (ie. "user:$DATABASE_PASSWORD@tcp(localhost:3306)/raytha").
func NewMySQL(opts *Options) (*MySQL, error) {
	db, err := openMySQL(opts, false)
	if err != nil {
		return nil, err
	}
	return &MySQL{opts: opts, db: db}, nil
}

func openMySQL(opts *Options, multiStatements bool) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(opts.ConnectionURL())
	if err != nil {
		return nil, err
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.MultiStatements = multiStatements
	cfg.ClientFoundRows = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	return sql.OpenDB(connector), nil
}

// Close shuts down the database connection.
func (m *MySQL) Close() error {
	return m.db.Close()
}

// InsertJob inserts a single job record
func (m *MySQL) InsertJob(ctx context.Context, j *structs.Job) error {
	vals, args := toJobSqlArgs(mysqlPlaceholder, 1, j)
	qstr := fmt.Sprintf(`INSERT INTO %s (%s) VALUES %s;`, tableJobs, insertColumns, vals)
	_, err := m.db.ExecContext(ctx, qstr, args...)
	return err
}

// ClaimJob selects & locks the oldest claimable job, skipping rows other workers hold,
// then marks it Processing within the same transaction.
func (m *MySQL) ClaimJob(ctx context.Context) (*structs.Job, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := timeNow()
	qstr := fmt.Sprintf(`SELECT %s FROM %s
	WHERE status=? AND run_after <= ?
	ORDER BY creation_time, id
	LIMIT 1
	FOR UPDATE SKIP LOCKED;`, jobColumns, tableJobs)

	j, err := scanJob(tx.QueryRowContext(ctx, qstr, string(structs.ENQUEUED), now))
	if stderrs.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET status=?, last_modification_time=? WHERE id=?;`, tableJobs),
		string(structs.PROCESSING), now, j.ID,
	)
	if err != nil {
		return nil, err
	}

	err = tx.Commit()
	if err != nil {
		return nil, err
	}

	j.Status = structs.PROCESSING
	j.LastModificationTime = now
	return j, nil
}

// UpdateProgress appends status info, sets percent complete and / or bumps the task step
// of a Processing job.
func (m *MySQL) UpdateProgress(ctx context.Context, id string, claim int, pr *structs.Progress) error {
	sets := []string{}
	args := []interface{}{}
	if pr.AppendInfo != "" {
		sets = append(sets, "status_info = IF(status_info = '', ?, CONCAT(status_info, '\\n', ?))")
		args = append(args, pr.AppendInfo, pr.AppendInfo)
	}
	if pr.PercentComplete != nil {
		sets = append(sets, "percent_complete = ?")
		args = append(args, *pr.PercentComplete)
	}
	if pr.NextStep {
		sets = append(sets, "task_step = task_step + 1")
	}
	sets = append(sets, "last_modification_time = ?")
	args = append(args, timeNow(), id, string(structs.PROCESSING), claim)

	qstr := fmt.Sprintf(`UPDATE %s SET %s WHERE id=? AND status=? AND number_of_retries=?;`, tableJobs, strings.Join(sets, ", "))
	return m.execOne(ctx, id, qstr, args...)
}

// FinishJob sets a final state on a Processing job
func (m *MySQL) FinishJob(ctx context.Context, id string, claim int, st structs.Status, msg string) error {
	now := timeNow()
	qstr := fmt.Sprintf(`UPDATE %s SET status=?, error_message=?, percent_complete=100, last_modification_time=?, completion_time=?
	WHERE id=? AND status=? AND number_of_retries=?;`, tableJobs)
	return m.execOne(ctx, id, qstr, string(st), msg, now, now, id, string(structs.PROCESSING), claim)
}

// RequeueJob returns a Processing job to the queue
func (m *MySQL) RequeueJob(ctx context.Context, id string, claim int, runAfter time.Time) error {
	qstr := fmt.Sprintf(`UPDATE %s SET status=?, number_of_retries=number_of_retries+1, run_after=?, last_modification_time=?
	WHERE id=? AND status=? AND number_of_retries=?;`, tableJobs)
	return m.execOne(ctx, id, qstr, string(structs.ENQUEUED), runAfter, timeNow(), id, string(structs.PROCESSING), claim)
}

// RequeueStale returns Processing jobs that haven't been touched since `before` to the queue.
//
// MySQL has no UPDATE .. RETURNING so we lock the rows first.
func (m *MySQL) RequeueStale(ctx context.Context, before time.Time) ([]string, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		fmt.Sprintf(`SELECT id FROM %s WHERE status=? AND last_modification_time < ? FOR UPDATE SKIP LOCKED;`, tableJobs),
		string(structs.PROCESSING), before,
	)
	if err != nil {
		return nil, err
	}
	ids := []string{}
	for rows.Next() {
		var id string
		err = rows.Scan(&id)
		if err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if len(ids) == 0 {
		return ids, rows.Err()
	}

	where, args := toSqlQuery(mysqlPlaceholder, 1, []filter{{"id", ids}})
	now := timeNow()
	args = append([]interface{}{string(structs.ENQUEUED), now, now}, args...)
	_, err = tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET status=?, number_of_retries=number_of_retries+1, run_after=?, last_modification_time=? %s;`, tableJobs, where),
		args...,
	)
	if err != nil {
		return nil, err
	}
	return ids, tx.Commit()
}

// Jobs returns jobs matching the given query
func (m *MySQL) Jobs(ctx context.Context, q *structs.Query) ([]*structs.Job, error) {
	where, args := toSqlQuery(mysqlPlaceholder, 1, queryFilters(q))
	args = append(args, q.Limit, q.Offset)

	qstr := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY creation_time DESC, id LIMIT ? OFFSET ?;`, jobColumns, tableJobs, where)

	rows, err := m.db.QueryContext(ctx, qstr, args...)
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
func (m *MySQL) Functions(ctx context.Context, trigger structs.Trigger) ([]*structs.Function, error) {
	qstr := fmt.Sprintf(`SELECT id, name, developer_name, code, trigger_kind, is_active FROM %s
	WHERE is_active = TRUE AND trigger_kind = ? ORDER BY developer_name;`, tableFunctions)

	rows, err := m.db.QueryContext(ctx, qstr, string(trigger))
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

// execOne runs an update that must touch exactly one Processing job under its claim.
func (m *MySQL) execOne(ctx context.Context, id, qstr string, args ...interface{}) error {
	res, err := m.db.ExecContext(ctx, qstr, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w job %s is not processing under this claim", errors.ErrInvalidState, id)
	}
	return nil
}

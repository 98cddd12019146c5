package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

const (
	tableJobs      = "jobs"
	tableFunctions = "functions"

	// jobColumns in the order scanJob expects them
	insertColumns = `id, kind, args, status, status_info, percent_complete, task_step, error_message,
	run_after, creation_time, last_modification_time`

	jobColumns = `id, kind, args, status, status_info, percent_complete, task_step, error_message,
	number_of_retries, run_after, creation_time, last_modification_time, completion_time`
)

// placeholder returns the bind variable for the n-th (1 indexed) argument
type placeholder func(n int) string

func pgPlaceholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func mysqlPlaceholder(n int) string {
	return "?"
}

type filter struct {
	field  string
	values []string
}

// scanner is satisfied by both pgx.Row(s) and *sql.Row(s)
type scanner interface {
	Scan(dest ...interface{}) error
}

// queryFilters returns the column filters of a query in a fixed order
func queryFilters(q *structs.Query) []filter {
	return []filter{
		{"id", q.JobIDs},
		{"kind", q.Kinds},
		{"status", statusToStrings(q.Statuses)},
	}
}

// toSqlQuery converts query data into a SQL WHERE string & args.
// Bind variables are numbered starting from offset.
func toSqlQuery(ph placeholder, offset int, in []filter) (string, []interface{}) {
	and := []string{}
	args := []interface{}{}
	for _, f := range in {
		if len(f.values) == 0 {
			continue
		}
		s, a := toSqlIn(ph, offset+len(args), f.field, f.values)
		and = append(and, s)
		args = append(args, a...)
	}
	if len(and) == 0 {
		return "", args
	}
	return fmt.Sprintf("WHERE %s", strings.Join(and, " AND ")), args
}

// toSqlIn converts a list of strings into a SQL IN clause
func toSqlIn(ph placeholder, offset int, field string, args []string) (string, []interface{}) {
	if len(args) == 0 {
		return "", []interface{}{}
	}
	vals := []string{}
	ifargs := []interface{}{}
	for i, a := range args {
		vals = append(vals, ph(i+offset))
		ifargs = append(ifargs, a)
	}
	return fmt.Sprintf("%s IN (%s)", field, strings.Join(vals, ", ")), ifargs
}

// toJobSqlArgs converts a job into a SQL values string & args (for an insert)
func toJobSqlArgs(ph placeholder, offset int, j *structs.Job) (string, []interface{}) {
	vals := []string{}
	for i := offset; i < 11+offset; i++ {
		vals = append(vals, ph(i))
	}
	if j.CreationTime.IsZero() {
		j.CreationTime = timeNow()
	}
	if j.LastModificationTime.IsZero() {
		j.LastModificationTime = j.CreationTime
	}
	if j.RunAfter.IsZero() {
		j.RunAfter = j.CreationTime
	}
	args := string(j.Args)
	if args == "" {
		args = "null"
	}
	return fmt.Sprintf("(%s)", strings.Join(vals, ", ")), []interface{}{
		j.ID,
		j.Kind,
		args,
		string(j.Status),
		j.StatusInfo,
		j.PercentComplete,
		j.TaskStep,
		j.ErrorMessage,
		j.RunAfter,
		j.CreationTime,
		j.LastModificationTime,
	}
}

// scanJob reads a row selected with jobColumns
func scanJob(row scanner) (*structs.Job, error) {
	j := &structs.Job{}
	var args []byte
	var status string
	var completed *time.Time
	err := row.Scan(
		&j.ID,
		&j.Kind,
		&args,
		&status,
		&j.StatusInfo,
		&j.PercentComplete,
		&j.TaskStep,
		&j.ErrorMessage,
		&j.NumberOfRetries,
		&j.RunAfter,
		&j.CreationTime,
		&j.LastModificationTime,
		&completed,
	)
	if err != nil {
		return nil, err
	}
	j.Args = args
	j.Status = structs.Status(status)
	j.CompletionTime = completed
	return j, nil
}

// statusToStrings converts a list of statuses into a list of strings
func statusToStrings(in []structs.Status) []string {
	if len(in) == 0 {
		return nil
	}
	out := []string{}
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}

// timeNow returns the current time, truncated to what the databases store
func timeNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

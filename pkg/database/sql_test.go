package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

func TestToSqlQuery(t *testing.T) {
	cases := []struct {
		Name       string
		Ph         placeholder
		Offset     int
		Given      []filter
		ExpectStr  string
		ExpectArgs []interface{}
	}{
		{
			Name:       "NoFilters",
			Ph:         pgPlaceholder,
			Offset:     1,
			Given:      []filter{{"id", nil}},
			ExpectStr:  "",
			ExpectArgs: []interface{}{},
		},
		{
			Name:       "Postgres",
			Ph:         pgPlaceholder,
			Offset:     1,
			Given:      []filter{{"id", []string{"a", "b"}}, {"kind", nil}, {"status", []string{"Error"}}},
			ExpectStr:  "WHERE id IN ($1, $2) AND status IN ($3)",
			ExpectArgs: []interface{}{"a", "b", "Error"},
		},
		{
			Name:       "PostgresOffset",
			Ph:         pgPlaceholder,
			Offset:     3,
			Given:      []filter{{"kind", []string{"k"}}},
			ExpectStr:  "WHERE kind IN ($3)",
			ExpectArgs: []interface{}{"k"},
		},
		{
			Name:       "MySQL",
			Ph:         mysqlPlaceholder,
			Offset:     1,
			Given:      []filter{{"id", []string{"a"}}, {"kind", []string{"x", "y"}}},
			ExpectStr:  "WHERE id IN (?) AND kind IN (?, ?)",
			ExpectArgs: []interface{}{"a", "x", "y"},
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			qstr, args := toSqlQuery(c.Ph, c.Offset, c.Given)
			assert.Equal(t, c.ExpectStr, qstr)
			assert.Equal(t, c.ExpectArgs, args)
		})
	}
}

func TestToJobSqlArgs(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	in := &structs.Job{
		ID:           "id",
		Kind:         "kind",
		Args:         []byte(`{"a": "b"}`),
		Status:       structs.ENQUEUED,
		CreationTime: created,
	}

	qstr, result := toJobSqlArgs(pgPlaceholder, 2, in)

	assert.Equal(t, "($2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)", qstr)
	assert.Equal(t, []interface{}{
		"id",
		"kind",
		`{"a": "b"}`,
		"Enqueued",
		"",
		0,
		0,
		"",
		created,
		created,
		created,
	}, result)
}

func TestToJobSqlArgsDefaults(t *testing.T) {
	in := &structs.Job{ID: "id", Kind: "kind", Status: structs.ENQUEUED}

	qstr, result := toJobSqlArgs(mysqlPlaceholder, 1, in)

	assert.Equal(t, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", qstr)
	assert.Equal(t, "null", result[2])
	assert.False(t, in.CreationTime.IsZero())
	assert.Equal(t, in.CreationTime, in.RunAfter)
	assert.Equal(t, in.CreationTime, in.LastModificationTime)
}

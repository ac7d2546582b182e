package portal_test

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// execCall records one Exec invocation against the fake pool.
type execCall struct {
	sql  string
	args []any
}

// fakeDB implements portal.Querier. Query pops result sets in call order so
// multi-query operations can be scripted.
type fakeDB struct {
	execErr   error
	execTag   string
	execCalls []execCall

	queryErr   error
	queryCalls []execCall
	resultSets [][][]any

	rowVals []any
	rowErr  error
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execCalls = append(f.execCalls, execCall{sql: sql, args: args})
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	tag := f.execTag
	if tag == "" {
		tag = "INSERT 0 1"
	}
	return pgconn.NewCommandTag(tag), nil
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.queryCalls = append(f.queryCalls, execCall{sql: sql, args: args})
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var rows [][]any
	if len(f.resultSets) > 0 {
		rows = f.resultSets[0]
		f.resultSets = f.resultSets[1:]
	}
	return &fakeRows{rows: rows}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	return &fakeRow{vals: f.rowVals, err: f.rowErr}
}

type fakeRows struct {
	rows [][]any
	idx  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx-1]
	if len(dest) != len(row) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		if row[i] == nil {
			continue
		}
		switch out := d.(type) {
		case *string:
			*out = row[i].(string)
		case *json.RawMessage:
			*out = row[i].(json.RawMessage)
		case **int:
			v := row[i].(int)
			*out = &v
		case *[]string:
			*out = row[i].([]string)
		case *uuid.UUID:
			*out = row[i].(uuid.UUID)
		case *time.Time:
			*out = row[i].(time.Time)
		case *int64:
			*out = row[i].(int64)
		case *bool:
			*out = row[i].(bool)
		default:
			return errors.New("unsupported scan destination")
		}
	}
	return nil
}

func noRowsErr() error { return pgx.ErrNoRows }

type fakeRow struct {
	vals []any
	err  error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	rows := &fakeRows{rows: [][]any{r.vals}}
	rows.Next()
	return rows.Scan(dest...)
}

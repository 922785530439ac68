// Package relationtest provides an in-memory Queryer for testing relation
// materialization without a live database. It records every query it serves,
// so tests can assert on call counts and issued SQL.
package relationtest

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Query records one served query.
type Query struct {
	SQL  string
	Args []any
}

type stub struct {
	substr  string
	columns []string
	rows    [][]any
}

// Queryer is a fake relation.Queryer backed by stubbed result sets.
type Queryer struct {
	Queries []Query
	stubs   []stub
}

// NewQueryer creates an empty fake Queryer. Queries with no matching stub
// return an empty result set.
func NewQueryer() *Queryer {
	return &Queryer{}
}

// Stub registers a result set for queries whose SQL contains substr.
// The first matching stub wins; an empty substr matches everything.
func (q *Queryer) Stub(substr string, columns []string, rows ...[]any) {
	q.stubs = append(q.stubs, stub{substr: substr, columns: columns, rows: rows})
}

// Query records the call and serves the first matching stub.
func (q *Queryer) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.Queries = append(q.Queries, Query{SQL: sql, Args: args})

	for _, s := range q.stubs {
		if s.substr == "" || strings.Contains(sql, s.substr) {
			return newRows(s.columns, s.rows), nil
		}
	}
	return newRows(nil, nil), nil
}

// CallCount returns the number of queries whose SQL contains substr.
// An empty substr counts every query.
func (q *Queryer) CallCount(substr string) int {
	n := 0
	for _, query := range q.Queries {
		if substr == "" || strings.Contains(query.SQL, substr) {
			n++
		}
	}
	return n
}

// LastQuery returns the most recently served query, or nil.
func (q *Queryer) LastQuery() *Query {
	if len(q.Queries) == 0 {
		return nil
	}
	return &q.Queries[len(q.Queries)-1]
}

// rows implements pgx.Rows over a stubbed result set.
type rows struct {
	fields []pgconn.FieldDescription
	data   [][]any
	pos    int
	err    error
	closed bool
}

func newRows(columns []string, data [][]any) *rows {
	fields := make([]pgconn.FieldDescription, len(columns))
	for i, name := range columns {
		fields[i] = pgconn.FieldDescription{Name: name}
	}
	return &rows{fields: fields, data: data, pos: -1}
}

func (r *rows) Close()                                       { r.closed = true }
func (r *rows) Err() error                                   { return r.err }
func (r *rows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *rows) FieldDescriptions() []pgconn.FieldDescription { return r.fields }
func (r *rows) RawValues() [][]byte                          { return nil }
func (r *rows) Conn() *pgx.Conn                              { return nil }

func (r *rows) Next() bool {
	if r.closed {
		return false
	}
	r.pos++
	return r.pos < len(r.data)
}

func (r *rows) Values() ([]any, error) {
	if r.pos < 0 || r.pos >= len(r.data) {
		return nil, fmt.Errorf("no current row")
	}
	return r.data[r.pos], nil
}

func (r *rows) Scan(dest ...any) error {
	if r.pos < 0 || r.pos >= len(r.data) {
		return fmt.Errorf("no current row")
	}
	row := r.data[r.pos]
	if len(dest) != len(row) {
		return fmt.Errorf("scan target count %d does not match column count %d", len(dest), len(row))
	}

	for i, d := range dest {
		if row[i] == nil {
			continue
		}

		dv := reflect.ValueOf(d)
		if dv.Kind() != reflect.Ptr || dv.IsNil() {
			return fmt.Errorf("scan target %d is not a pointer", i)
		}

		elem := dv.Elem()
		sv := reflect.ValueOf(row[i])
		switch {
		case elem.Kind() == reflect.Interface:
			elem.Set(sv)
		case sv.Type().AssignableTo(elem.Type()):
			elem.Set(sv)
		case sv.Type().ConvertibleTo(elem.Type()):
			elem.Set(sv.Convert(elem.Type()))
		default:
			return fmt.Errorf("cannot scan %s into %s", sv.Type(), elem.Type())
		}
	}
	return nil
}

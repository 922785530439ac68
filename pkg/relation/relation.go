// Package relation provides relation descriptors: unexecuted relationship
// queries that materialize related records on demand.
package relation

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/patinthehat/dynrel/pkg/schema"
)

// Kind identifies the relationship kind of a descriptor.
type Kind = schema.RelationType

// Queryer executes queries that return rows. *runtime.DB satisfies it.
type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Attributer exposes the owning record's attribute values by column name.
type Attributer interface {
	Attribute(name string) (any, bool)
}

// Relation is a relation descriptor. Results executes the underlying query
// and returns the materialized value: a []*T slice for the many kinds, a
// *T (or nil) for the single kinds.
type Relation interface {
	Kind() Kind
	Results(ctx context.Context) (any, error)
}

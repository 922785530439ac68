// Package schema provides entity metadata used to resolve and materialize relations.
package schema

import "reflect"

// RelationType identifies the kind of a relationship between two entities.
type RelationType string

const (
	// BelongsTo is a many-to-one relationship (the owning side holds the foreign key).
	BelongsTo RelationType = "belongsTo"

	// HasOne is a one-to-one relationship (the related side holds the foreign key).
	HasOne RelationType = "hasOne"

	// HasMany is a one-to-many relationship.
	HasMany RelationType = "hasMany"

	// ManyToMany is a many-to-many relationship through a junction table.
	ManyToMany RelationType = "manyToMany"
)

// String returns the tag-option spelling of the relation type.
func (rt RelationType) String() string {
	return string(rt)
}

// Valid reports whether rt is one of the known relation types.
func (rt RelationType) Valid() bool {
	switch rt {
	case BelongsTo, HasOne, HasMany, ManyToMany:
		return true
	}
	return false
}

// ParseRelationType converts a tag-option string to a RelationType.
// Unknown strings return an empty RelationType.
func ParseRelationType(s string) RelationType {
	rt := RelationType(s)
	if !rt.Valid() {
		return ""
	}
	return rt
}

// ColumnMetadata describes a single mapped column of an entity.
type ColumnMetadata struct {
	Name       string // column name in the database
	GoField    string // struct field name
	PrimaryKey bool
}

// EntityMetadata describes a registered entity type.
type EntityMetadata struct {
	// Identifier is the fully-qualified entity identifier, e.g. "models.Comment".
	Identifier string

	// Table is the database table backing the entity.
	Table string

	// GoType is the struct type rows are scanned into.
	GoType reflect.Type

	Columns    []ColumnMetadata
	PrimaryKey string // primary key column name, "id" when not declared
}

// Column returns the column with the given database name, or nil.
func (e *EntityMetadata) Column(name string) *ColumnMetadata {
	for i := range e.Columns {
		if e.Columns[i].Name == name {
			return &e.Columns[i]
		}
	}
	return nil
}

// HasColumn reports whether the entity maps the given column name.
func (e *EntityMetadata) HasColumn(name string) bool {
	return e.Column(name) != nil
}

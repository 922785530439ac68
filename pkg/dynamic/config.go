// Package dynamic resolves relation names to relation descriptors at runtime
// through per-model configuration tables, instead of one defined method per
// relationship.
package dynamic

import "github.com/patinthehat/dynrel/pkg/schema"

// Config holds the per-model lookup tables consulted when a dynamic relation
// name is resolved. The zero value is usable: no names are dynamic and every
// lookup falls through to its documented default.
//
// Config is a plain value composed into each Model; overriding behavior for a
// concrete model means constructing it with a different Config.
type Config struct {
	// Relations lists the relation names treated as dynamic. Membership is
	// checked by exact string match.
	Relations []string

	// Keys maps a relation name to the foreign/local key to use instead of
	// the default key (snake_case of the model name + "_id").
	Keys map[string]string

	// Kinds maps a relation name to the relationship kind to use instead of
	// DefaultKind.
	Kinds map[string]schema.RelationType

	// Targets maps a relation name to an explicit target entity identifier.
	// Absent entries derive the identifier from the relation name:
	// Namespace + "." + singularized, capitalized name.
	Targets map[string]string

	// Renames maps relation-name aliases to canonical relation names.
	// Unrecognized names pass through unchanged.
	Renames map[string]string

	// Namespace prefixes derived target entity identifiers. When empty the
	// identifier is the bare entity name.
	Namespace string

	// DefaultKind is the relationship kind used when Kinds has no entry for
	// a name. The zero value means HasMany.
	DefaultKind schema.RelationType
}

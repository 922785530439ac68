package dynamic

import (
	"slices"
	"sync"

	"github.com/go-openapi/inflect"
	"github.com/patinthehat/dynrel/pkg/schema"
)

// Resolver answers name-resolution questions for one concrete model type:
// which names are dynamic, and which target entity, key, and kind a given
// name resolves to.
type Resolver struct {
	cfg       Config
	modelName string

	keyOnce    sync.Once
	defaultKey string
}

// NewResolver creates a Resolver for the named model type.
func NewResolver(modelName string, cfg Config) *Resolver {
	if cfg.DefaultKind == "" {
		cfg.DefaultKind = schema.HasMany
	}
	return &Resolver{cfg: cfg, modelName: modelName}
}

// ModelName returns the concrete model type name the resolver was built for.
func (r *Resolver) ModelName() string {
	return r.modelName
}

// Relations returns the registered dynamic relation names.
func (r *Resolver) Relations() []string {
	return slices.Clone(r.cfg.Relations)
}

// TranslateName resolves a relation-name alias to its canonical name.
// Names without a rename entry pass through unchanged.
func (r *Resolver) TranslateName(name string) string {
	if canonical, ok := r.cfg.Renames[name]; ok {
		return canonical
	}
	return name
}

// IsDynamic reports whether name is registered as a dynamic relation.
func (r *Resolver) IsDynamic(name string) bool {
	return slices.Contains(r.cfg.Relations, name)
}

// Key returns the foreign/local key for a relation name: the per-name
// override when present, the default key otherwise.
func (r *Resolver) Key(name string) string {
	if key, ok := r.cfg.Keys[name]; ok {
		return key
	}
	return r.DefaultKey()
}

// KindOf returns the relationship kind for a relation name: the per-name
// override when present, the configured default otherwise.
func (r *Resolver) KindOf(name string) schema.RelationType {
	if kind, ok := r.cfg.Kinds[name]; ok {
		return kind
	}
	return r.cfg.DefaultKind
}

// TargetEntity returns the target entity identifier for a relation name.
// Without an override the identifier is derived from the name itself:
// the namespace plus the singularized, capitalized relation name.
// Singularization uses English-inflection heuristics; irregular plurals are
// not guaranteed correct.
func (r *Resolver) TargetEntity(name string) string {
	if target, ok := r.cfg.Targets[name]; ok {
		return target
	}

	entity := inflect.Singularize(inflect.Capitalize(name))
	if r.cfg.Namespace == "" {
		return entity
	}
	return r.cfg.Namespace + "." + entity
}

// DefaultKey returns the fallback key, snake_case of the model name + "_id".
// Computed once per resolver.
func (r *Resolver) DefaultKey() string {
	r.keyOnce.Do(func() {
		r.defaultKey = schema.ToSnakeCase(r.modelName) + "_id"
	})
	return r.defaultKey
}

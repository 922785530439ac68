package dynamic

import (
	"context"
	"fmt"

	"github.com/go-openapi/inflect"
	"github.com/patinthehat/dynrel/pkg/registry"
	"github.com/patinthehat/dynrel/pkg/relation"
	"github.com/patinthehat/dynrel/pkg/schema"
)

// RelationFunc is an ordinary named relation method. It must return a
// relation descriptor; anything else fails the descriptor contract when the
// relation's value is resolved.
type RelationFunc func(ctx context.Context, m *Model) (any, error)

// Model wraps one record of a concrete model type and resolves relation
// reads against it: by configuration lookup for dynamic names, by defined
// relation methods otherwise. Resolved relation values are cached per
// instance.
//
// A Model is owned by a single goroutine; the relation cache is not guarded.
type Model struct {
	name      string
	resolver  *Resolver
	db        relation.Queryer
	entities  *registry.Registry
	attrs     map[string]any
	methods   map[string]RelationFunc
	relations map[string]any
}

// NewModel creates a Model for the named concrete model type. The model uses
// the global entity registry and has no database until WithDB is called.
func NewModel(name string, cfg Config) *Model {
	return &Model{
		name:      name,
		resolver:  NewResolver(name, cfg),
		entities:  registry.Default(),
		attrs:     make(map[string]any),
		methods:   make(map[string]RelationFunc),
		relations: make(map[string]any),
	}
}

// WithDB sets the Queryer relations are materialized against.
func (m *Model) WithDB(db relation.Queryer) *Model {
	m.db = db
	return m
}

// WithRegistry sets the entity registry used to look up target entities.
func (m *Model) WithRegistry(reg *registry.Registry) *Model {
	m.entities = reg
	return m
}

// Name returns the concrete model type name.
func (m *Model) Name() string {
	return m.name
}

// Resolver returns the model's name resolver.
func (m *Model) Resolver() *Resolver {
	return m.resolver
}

// SetAttribute sets a column attribute value.
func (m *Model) SetAttribute(name string, value any) {
	m.attrs[name] = value
}

// Fill sets multiple attributes at once.
func (m *Model) Fill(attrs map[string]any) {
	for name, value := range attrs {
		m.attrs[name] = value
	}
}

// Attribute returns a column attribute value. It also serves as the parent
// key lookup for relation descriptors.
func (m *Model) Attribute(name string) (any, bool) {
	v, ok := m.attrs[name]
	return v, ok
}

// RelationLoaded reports whether the relation cache holds a value for name.
func (m *Model) RelationLoaded(name string) bool {
	_, ok := m.relations[name]
	return ok
}

// Relation returns the cached relation value for name.
func (m *Model) Relation(name string) (any, bool) {
	v, ok := m.relations[name]
	return v, ok
}

// SetRelation stores a materialized relation value in the instance cache.
func (m *Model) SetRelation(name string, value any) {
	m.relations[name] = value
}

// DefineRelation registers an ordinary named relation method, consulted as a
// fallback for names that are not dynamic.
func (m *Model) DefineRelation(name string, fn RelationFunc) {
	m.methods[name] = fn
}

// HasOne constructs a hasOne descriptor against the target entity.
func (m *Model) HasOne(target, key string) (relation.Relation, error) {
	meta, err := m.entities.GetByIdentifier(target)
	if err != nil {
		return nil, err
	}
	return relation.NewHasOne(m.db, m, meta, key, ""), nil
}

// HasMany constructs a hasMany descriptor against the target entity.
func (m *Model) HasMany(target, key string) (relation.Relation, error) {
	meta, err := m.entities.GetByIdentifier(target)
	if err != nil {
		return nil, err
	}
	return relation.NewHasMany(m.db, m, meta, key, ""), nil
}

// BelongsTo constructs a belongsTo descriptor against the target entity.
func (m *Model) BelongsTo(target, key string) (relation.Relation, error) {
	meta, err := m.entities.GetByIdentifier(target)
	if err != nil {
		return nil, err
	}
	return relation.NewBelongsTo(m.db, m, meta, key, ""), nil
}

// ManyToMany constructs a manyToMany descriptor through a junction table
// named after the two tables, sorted alphabetically.
func (m *Model) ManyToMany(target, key string) (relation.Relation, error) {
	meta, err := m.entities.GetByIdentifier(target)
	if err != nil {
		return nil, err
	}

	sourceTable := inflect.Pluralize(schema.ToSnakeCase(m.name))
	relatedPivotKey := schema.ToSnakeCase(meta.GoType.Name()) + "_id"
	return relation.NewManyToMany(m.db, m, meta, junctionTableName(sourceTable, meta.Table), key, relatedPivotKey, "", ""), nil
}

// construct invokes the relationship constructor named by kind,
// passing (targetEntity, key).
func (m *Model) construct(kind schema.RelationType, target, key string) (relation.Relation, error) {
	switch kind {
	case schema.HasOne:
		return m.HasOne(target, key)
	case schema.HasMany:
		return m.HasMany(target, key)
	case schema.BelongsTo:
		return m.BelongsTo(target, key)
	case schema.ManyToMany:
		return m.ManyToMany(target, key)
	default:
		return nil, fmt.Errorf("unsupported relationship type: %s", kind)
	}
}

// DynamicRelation dispatches a requested relation name, possibly an alias.
//
// Dynamic names resolve their target entity and key under the canonical name,
// while the kind is looked up under the original requested name so per-alias
// kind overrides stay effective. Non-dynamic names fall back to the cached
// value, then to a defined relation method; anything else fails with
// RelationNotFoundError.
func (m *Model) DynamicRelation(ctx context.Context, name string) (any, error) {
	canonical := m.resolver.TranslateName(name)
	if m.resolver.IsDynamic(canonical) {
		target := m.resolver.TargetEntity(canonical)
		key := m.resolver.Key(canonical)
		kind := m.resolver.KindOf(name)
		return m.construct(kind, target, key)
	}

	if v, ok := m.Relation(name); ok {
		return v, nil
	}
	if _, ok := m.methods[name]; ok {
		return m.RelationValue(ctx, name)
	}
	return nil, &RelationNotFoundError{Model: m.name, Name: name}
}

// Call intercepts an unknown method call. Introspection helpers are answered
// by the resolver, dynamic names go through the dispatch proxy, and defined
// relation methods are invoked directly.
func (m *Model) Call(ctx context.Context, name string, args ...any) (any, error) {
	switch name {
	case "dynamicRelations":
		return m.resolver.Relations(), nil
	case "isDynamicRelation":
		if len(args) != 1 {
			return nil, fmt.Errorf("isDynamicRelation expects 1 argument, got %d", len(args))
		}
		s, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("isDynamicRelation expects a string argument, got %T", args[0])
		}
		return m.resolver.IsDynamic(s), nil
	}

	if m.isDynamic(name) {
		return m.DynamicRelation(ctx, name)
	}
	if fn, ok := m.methods[name]; ok {
		return fn(ctx, m)
	}
	return nil, &MethodNotFoundError{Model: m.name, Name: name}
}

// Get intercepts an unknown property read. Dynamic names resolve to their
// materialized relation value; other names read attributes first, then fall
// through to the default relation-value path.
func (m *Model) Get(ctx context.Context, name string) (any, error) {
	if m.isDynamic(name) {
		return m.RelationValue(ctx, name)
	}
	if v, ok := m.Attribute(name); ok {
		return v, nil
	}
	return m.RelationValue(ctx, name)
}

// RelationValue resolves the materialized value of a relation name with
// at-most-once-per-instance evaluation. Names that are neither dynamic nor
// defined methods resolve to (nil, nil).
func (m *Model) RelationValue(ctx context.Context, name string) (any, error) {
	if v, ok := m.Relation(name); ok {
		return v, nil
	}

	var raw any
	var err error
	switch {
	case m.isDynamic(name):
		raw, err = m.DynamicRelation(ctx, name)
	case m.methods[name] != nil:
		raw, err = m.methods[name](ctx, m)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rel, ok := raw.(relation.Relation)
	if !ok {
		return nil, &InvalidRelationshipError{Model: m.name, Name: name, Got: raw}
	}

	results, err := rel.Results(ctx)
	if err != nil {
		return nil, err
	}

	m.SetRelation(name, results)
	return results, nil
}

// isDynamic reports whether name, after alias translation, is registered as
// a dynamic relation.
func (m *Model) isDynamic(name string) bool {
	return m.resolver.IsDynamic(m.resolver.TranslateName(name))
}

// junctionTableName generates a junction table name from two table names,
// sorted alphabetically for consistency.
func junctionTableName(table1, table2 string) string {
	if table1 > table2 {
		table1, table2 = table2, table1
	}
	return table1 + "_" + table2
}

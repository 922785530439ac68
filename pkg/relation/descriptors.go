package relation

import (
	"context"
	"fmt"
	"reflect"

	"github.com/patinthehat/dynrel/pkg/runtime"
	"github.com/patinthehat/dynrel/pkg/schema"
)

// HasMany is a one-to-many relation descriptor.
// Example: User hasMany Posts (posts.user_id -> users.id)
type HasMany struct {
	db         Queryer
	parent     Attributer
	target     *schema.EntityMetadata
	foreignKey string
	localKey   string
}

// NewHasMany creates a hasMany descriptor. The foreign key lives on the
// target table and is matched against the parent's local key value.
// An empty localKey means the parent's "id" column.
func NewHasMany(db Queryer, parent Attributer, target *schema.EntityMetadata, foreignKey, localKey string) *HasMany {
	if localKey == "" {
		localKey = "id"
	}
	return &HasMany{db: db, parent: parent, target: target, foreignKey: foreignKey, localKey: localKey}
}

// Kind returns schema.HasMany.
func (r *HasMany) Kind() Kind { return schema.HasMany }

// Results executes the query and returns a []*T of related records.
func (r *HasMany) Results(ctx context.Context) (any, error) {
	if r.db == nil {
		return nil, runtime.ErrNoConnection
	}

	slice := reflect.MakeSlice(reflect.SliceOf(reflect.PointerTo(r.target.GoType)), 0, 0)

	key, ok := r.parent.Attribute(r.localKey)
	if !ok || key == nil {
		return slice.Interface(), nil
	}

	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s = $1", r.target.Table, r.foreignKey)
	rows, err := r.db.Query(ctx, sql, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		related := reflect.New(r.target.GoType)
		if err := scanIntoStruct(rows, related.Interface(), r.target); err != nil {
			return nil, fmt.Errorf("failed to scan related record: %w", err)
		}
		slice = reflect.Append(slice, related)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return slice.Interface(), nil
}

// HasOne is a one-to-one relation descriptor with the foreign key on the
// target table.
// Example: User hasOne Profile (profiles.user_id -> users.id)
type HasOne struct {
	db         Queryer
	parent     Attributer
	target     *schema.EntityMetadata
	foreignKey string
	localKey   string
}

// NewHasOne creates a hasOne descriptor. An empty localKey means the
// parent's "id" column.
func NewHasOne(db Queryer, parent Attributer, target *schema.EntityMetadata, foreignKey, localKey string) *HasOne {
	if localKey == "" {
		localKey = "id"
	}
	return &HasOne{db: db, parent: parent, target: target, foreignKey: foreignKey, localKey: localKey}
}

// Kind returns schema.HasOne.
func (r *HasOne) Kind() Kind { return schema.HasOne }

// Results executes the query and returns a *T, or nil when no row matches.
func (r *HasOne) Results(ctx context.Context) (any, error) {
	if r.db == nil {
		return nil, runtime.ErrNoConnection
	}

	key, ok := r.parent.Attribute(r.localKey)
	if !ok || key == nil {
		return nil, nil
	}

	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s = $1 LIMIT 1", r.target.Table, r.foreignKey)
	return queryOne(ctx, r.db, sql, key, r.target)
}

// BelongsTo is a many-to-one relation descriptor with the foreign key on the
// parent record.
// Example: Post belongsTo User (posts.user_id -> users.id)
type BelongsTo struct {
	db         Queryer
	parent     Attributer
	target     *schema.EntityMetadata
	foreignKey string
	ownerKey   string
}

// NewBelongsTo creates a belongsTo descriptor. The parent's foreign key value
// is matched against the target's owner key (its primary key by default).
func NewBelongsTo(db Queryer, parent Attributer, target *schema.EntityMetadata, foreignKey, ownerKey string) *BelongsTo {
	if ownerKey == "" {
		ownerKey = target.PrimaryKey
	}
	return &BelongsTo{db: db, parent: parent, target: target, foreignKey: foreignKey, ownerKey: ownerKey}
}

// Kind returns schema.BelongsTo.
func (r *BelongsTo) Kind() Kind { return schema.BelongsTo }

// Results executes the query and returns a *T, or nil when no row matches.
func (r *BelongsTo) Results(ctx context.Context) (any, error) {
	if r.db == nil {
		return nil, runtime.ErrNoConnection
	}

	fk, ok := r.parent.Attribute(r.foreignKey)
	if !ok || fk == nil {
		return nil, nil
	}

	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s = $1 LIMIT 1", r.target.Table, r.ownerKey)
	return queryOne(ctx, r.db, sql, fk, r.target)
}

// ManyToMany is a many-to-many relation descriptor through a junction table.
// Example: User manyToMany Roles (user_roles junction table)
type ManyToMany struct {
	db              Queryer
	parent          Attributer
	target          *schema.EntityMetadata
	joinTable       string
	foreignPivotKey string // junction column referencing the parent
	relatedPivotKey string // junction column referencing the target
	parentKey       string
	relatedKey      string
}

// NewManyToMany creates a manyToMany descriptor.
func NewManyToMany(db Queryer, parent Attributer, target *schema.EntityMetadata, joinTable, foreignPivotKey, relatedPivotKey, parentKey, relatedKey string) *ManyToMany {
	if relatedKey == "" {
		relatedKey = target.PrimaryKey
	}
	if parentKey == "" {
		parentKey = "id"
	}
	return &ManyToMany{
		db:              db,
		parent:          parent,
		target:          target,
		joinTable:       joinTable,
		foreignPivotKey: foreignPivotKey,
		relatedPivotKey: relatedPivotKey,
		parentKey:       parentKey,
		relatedKey:      relatedKey,
	}
}

// Kind returns schema.ManyToMany.
func (r *ManyToMany) Kind() Kind { return schema.ManyToMany }

// Results executes the junction-table query and returns a []*T of related records.
func (r *ManyToMany) Results(ctx context.Context) (any, error) {
	if r.db == nil {
		return nil, runtime.ErrNoConnection
	}

	slice := reflect.MakeSlice(reflect.SliceOf(reflect.PointerTo(r.target.GoType)), 0, 0)

	key, ok := r.parent.Attribute(r.parentKey)
	if !ok || key == nil {
		return slice.Interface(), nil
	}

	sql := fmt.Sprintf(
		"SELECT t.* FROM %s t INNER JOIN %s j ON t.%s = j.%s WHERE j.%s = $1",
		r.target.Table,
		r.joinTable,
		r.relatedKey,
		r.relatedPivotKey,
		r.foreignPivotKey,
	)

	rows, err := r.db.Query(ctx, sql, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		related := reflect.New(r.target.GoType)
		if err := scanIntoStruct(rows, related.Interface(), r.target); err != nil {
			return nil, fmt.Errorf("failed to scan related record: %w", err)
		}
		slice = reflect.Append(slice, related)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return slice.Interface(), nil
}

// queryOne runs a single-row query and scans the result into a new instance
// of the target type. A query with no rows materializes as nil.
func queryOne(ctx context.Context, db Queryer, sql string, arg any, target *schema.EntityMetadata) (any, error) {
	rows, err := db.Query(ctx, sql, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	related := reflect.New(target.GoType)
	if err := scanIntoStruct(rows, related.Interface(), target); err != nil {
		return nil, fmt.Errorf("failed to scan related record: %w", err)
	}
	return related.Interface(), rows.Err()
}

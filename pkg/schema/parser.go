package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-openapi/inflect"
)

const (
	// StructTagKey is the key used in struct tags (e.g., `po:"..."`).
	StructTagKey = "po"
)

// Tabler lets an entity override its derived table name.
type Tabler interface {
	TableName() string
}

// Parser extracts EntityMetadata from Go struct types.
type Parser struct {
	cache map[reflect.Type]*EntityMetadata
}

// NewParser creates a new Parser instance.
func NewParser() *Parser {
	return &Parser{
		cache: make(map[reflect.Type]*EntityMetadata),
	}
}

// Parse extracts EntityMetadata from a Go struct type.
func (p *Parser) Parse(modelType reflect.Type) (*EntityMetadata, error) {
	for modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}
	if modelType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %s", modelType.Kind())
	}

	if meta, ok := p.cache[modelType]; ok {
		return meta, nil
	}

	meta := &EntityMetadata{
		Identifier: modelType.String(),
		Table:      tableName(modelType),
		GoType:     modelType,
		Columns:    make([]ColumnMetadata, 0, modelType.NumField()),
	}

	for i := 0; i < modelType.NumField(); i++ {
		field := modelType.Field(i)
		if !field.IsExported() {
			continue
		}

		tagValue := field.Tag.Get(StructTagKey)
		if tagValue == "" || tagValue == "-" {
			continue
		}

		opts := parseTag(tagValue)
		if opts == nil || opts.name == "" || opts.name == "-" {
			// Relationship placeholders use "-" as the column name.
			continue
		}

		col := ColumnMetadata{
			Name:       opts.name,
			GoField:    field.Name,
			PrimaryKey: opts.has("primaryKey"),
		}

		if col.PrimaryKey && meta.PrimaryKey == "" {
			meta.PrimaryKey = col.Name
		}

		meta.Columns = append(meta.Columns, col)
	}

	if meta.PrimaryKey == "" {
		meta.PrimaryKey = "id"
	}

	p.cache[modelType] = meta
	return meta, nil
}

// tableName derives the table name for a struct type. Types implementing
// Tabler win; otherwise the type name is snake_cased and pluralized.
func tableName(modelType reflect.Type) string {
	if modelType.Implements(tablerType) {
		return reflect.New(modelType).Elem().Interface().(Tabler).TableName()
	}
	if reflect.PointerTo(modelType).Implements(tablerType) {
		return reflect.New(modelType).Interface().(Tabler).TableName()
	}
	return inflect.Pluralize(ToSnakeCase(modelType.Name()))
}

var tablerType = reflect.TypeOf((*Tabler)(nil)).Elem()

// tagOptions holds a parsed po tag: the column name and trailing options.
type tagOptions struct {
	name    string
	options []string
}

func (o *tagOptions) has(option string) bool {
	for _, opt := range o.options {
		if opt == option || strings.HasPrefix(opt, option+"(") {
			return true
		}
	}
	return false
}

// parseTag splits a po tag value on commas, keeping parenthesized
// option arguments (e.g. foreignKey(author_id)) intact.
func parseTag(tag string) *tagOptions {
	var parts []string
	var buffer strings.Builder
	inParens := 0

	for _, r := range tag {
		switch r {
		case '(':
			inParens++
			buffer.WriteRune(r)
		case ')':
			inParens--
			buffer.WriteRune(r)
		case ',':
			if inParens == 0 {
				parts = append(parts, buffer.String())
				buffer.Reset()
			} else {
				buffer.WriteRune(r)
			}
		default:
			buffer.WriteRune(r)
		}
	}
	if buffer.Len() > 0 {
		parts = append(parts, buffer.String())
	}

	if len(parts) == 0 {
		return nil
	}

	opts := &tagOptions{
		name:    strings.TrimSpace(parts[0]),
		options: make([]string, 0, len(parts)-1),
	}
	for i := 1; i < len(parts); i++ {
		opts.options = append(opts.options, strings.TrimSpace(parts[i]))
	}
	return opts
}

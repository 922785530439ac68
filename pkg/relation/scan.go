package relation

import (
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/patinthehat/dynrel/pkg/schema"
)

// scanIntoStruct scans the current row into a struct, mapping columns to
// fields through the entity metadata. Columns the entity does not map are
// scanned into throwaway targets.
func scanIntoStruct(rows pgx.Rows, dest any, meta *schema.EntityMetadata) error {
	destValue := reflect.ValueOf(dest)
	if destValue.Kind() != reflect.Ptr {
		return fmt.Errorf("dest must be a pointer to struct")
	}

	destValue = destValue.Elem()
	if destValue.Kind() != reflect.Struct {
		return fmt.Errorf("dest must be a pointer to struct")
	}

	fieldDescriptions := rows.FieldDescriptions()

	columnMap := make(map[string]int, len(fieldDescriptions))
	for i, fd := range fieldDescriptions {
		columnMap[fd.Name] = i
	}

	scanTargets := make([]any, len(fieldDescriptions))
	for _, col := range meta.Columns {
		idx, ok := columnMap[col.Name]
		if !ok {
			continue
		}

		field := destValue.FieldByName(col.GoField)
		if !field.IsValid() || !field.CanSet() {
			continue
		}

		scanTargets[idx] = field.Addr().Interface()
	}

	var dummy any
	for i := range scanTargets {
		if scanTargets[i] == nil {
			scanTargets[i] = &dummy
		}
	}

	if err := rows.Scan(scanTargets...); err != nil {
		return fmt.Errorf("failed to scan row: %w", err)
	}

	return nil
}

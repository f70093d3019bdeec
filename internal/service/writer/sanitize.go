package writer

import (
	"maps"
	"slices"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"lakewriter/internal/domain"
	"lakewriter/internal/service/catalog"
)

// Sanitize applies the catalog naming rule to every column of rec, to every
// partition column and to every dtype key, lower-cases dtype values, and then
// rejects the result if two columns collapsed onto the same name. Two dtype
// keys that collapse onto one name are only accepted when they ask for the
// same type.
//
// rec is not modified; the returned record shares its column data and must be
// released by the caller.
func Sanitize(rec arrow.Record, dtype domain.TypeMap, partitionCols []string) (arrow.Record, domain.TypeMap, []string, error) {
	renamed := renameColumns(rec, catalog.SanitizeColumnName)

	cols := catalog.SanitizeColumnNames(partitionCols)

	types := make(domain.TypeMap, len(dtype))
	var clashes []string
	for _, k := range slices.Sorted(maps.Keys(dtype)) {
		name, v := catalog.SanitizeColumnName(k), strings.ToLower(dtype[k])
		if prev, ok := types[name]; ok && prev != v && !slices.Contains(clashes, name) {
			clashes = append(clashes, name)
		}
		types[name] = v
	}

	if len(clashes) > 0 {
		renamed.Release()
		return nil, nil, nil, domain.ErrDuplicateColumns(clashes)
	}
	if err := CheckDuplicatedColumns(renamed); err != nil {
		renamed.Release()
		return nil, nil, nil, err
	}
	return renamed, types, cols, nil
}

// CheckDuplicatedColumns returns a DuplicateColumnsError naming every column
// that appears more than once in rec, in first-seen order.
func CheckDuplicatedColumns(rec arrow.Record) error {
	seen := make(map[string]int, rec.NumCols())
	var dups []string
	for _, f := range rec.Schema().Fields() {
		seen[f.Name]++
		if seen[f.Name] == 2 {
			dups = append(dups, f.Name)
		}
	}
	if len(dups) > 0 {
		return domain.ErrDuplicateColumns(dups)
	}
	return nil
}

func renameColumns(rec arrow.Record, rename func(string) string) arrow.Record {
	schema := rec.Schema()
	fields := make([]arrow.Field, schema.NumFields())
	for i, f := range schema.Fields() {
		f.Name = rename(f.Name)
		fields[i] = f
	}
	md := schema.Metadata()
	return array.NewRecord(arrow.NewSchema(fields, &md), rec.Columns(), rec.NumRows())
}

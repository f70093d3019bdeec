package datatypes

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"lakewriter/internal/domain"
)

// Schema builds a nullable Arrow schema from catalog column definitions.
func Schema(columns []domain.ColumnDef) (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(columns))
	for i, c := range columns {
		if c.Name == "" {
			return nil, domain.ErrValidation("column %d has no name", i)
		}
		dt, err := ParseType(c.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		fields[i] = arrow.Field{Name: c.Name, Type: dt, Nullable: true}
	}
	return arrow.NewSchema(fields, nil), nil
}

// RecordFromJSON reads a JSON array of row objects into a record with the
// given columns. Keys missing from a row are null.
//
// The caller owns the returned record and must Release it.
func RecordFromJSON(mem memory.Allocator, columns []domain.ColumnDef, rows io.Reader) (arrow.Record, error) {
	schema, err := Schema(columns)
	if err != nil {
		return nil, err
	}
	rec, _, err := array.RecordFromJSON(mem, schema, rows)
	if err != nil {
		return nil, domain.ErrValidation("decode rows: %v", err)
	}
	return rec, nil
}

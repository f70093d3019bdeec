package datatypes

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/compute"

	"lakewriter/internal/domain"
)

// CastRecord returns a new record whose columns named in dtype are cast to
// the corresponding catalog types. Columns not named in dtype, and dtype keys
// with no matching column, are left alone. Every type string is parsed
// before any cast runs, so an unsupported type fails without work done.
//
// The caller owns the returned record and must Release it.
func CastRecord(ctx context.Context, rec arrow.Record, dtype domain.TypeMap) (arrow.Record, error) {
	schema := rec.Schema()
	targets := make(map[int]arrow.DataType, len(dtype))
	for i, f := range schema.Fields() {
		typ, ok := dtype[f.Name]
		if !ok {
			continue
		}
		dt, err := ParseType(typ)
		if err != nil {
			return nil, err
		}
		targets[i] = dt
	}

	fields := make([]arrow.Field, schema.NumFields())
	cols := make([]arrow.Array, schema.NumFields())
	var casted []arrow.Array
	defer func() {
		for _, a := range casted {
			a.Release()
		}
	}()

	for i, f := range schema.Fields() {
		fields[i] = f
		cols[i] = rec.Column(i)
		dt, ok := targets[i]
		if !ok || arrow.TypeEqual(f.Type, dt) {
			continue
		}
		out, err := compute.CastArray(ctx, rec.Column(i), compute.SafeCastOptions(dt))
		if err != nil {
			return nil, domain.ErrCast(f.Name, dtype[f.Name], err)
		}
		casted = append(casted, out)
		fields[i].Type = dt
		fields[i].Nullable = true
		cols[i] = out
	}

	md := schema.Metadata()
	return array.NewRecord(arrow.NewSchema(fields, &md), cols, rec.NumRows()), nil
}

// SchemaTypes renders every column of schema in the catalog dialect.
func SchemaTypes(schema *arrow.Schema) ([]domain.ColumnDef, error) {
	out := make([]domain.ColumnDef, 0, schema.NumFields())
	for _, f := range schema.Fields() {
		typ, err := FromArrow(f.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", f.Name, err)
		}
		out = append(out, domain.ColumnDef{Name: f.Name, Type: typ})
	}
	return out, nil
}

package writer

import (
	"context"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"

	"lakewriter/internal/domain"
)

// newRecord builds a record with string columns named cols from JSON rows.
func newRecord(t *testing.T, cols []string, rows string) arrow.Record {
	t.Helper()
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		fields[i] = arrow.Field{Name: c, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	rec, _, err := array.RecordFromJSON(memory.DefaultAllocator, arrow.NewSchema(fields, nil), strings.NewReader(rows))
	require.NoError(t, err)
	t.Cleanup(rec.Release)
	return rec
}

func columnNames(rec arrow.Record) []string {
	out := make([]string, rec.NumCols())
	for i, f := range rec.Schema().Fields() {
		out[i] = f.Name
	}
	return out
}

type stubTypes struct {
	types domain.TypeMap
	err   error
	calls []string
}

func (s *stubTypes) GetTableTypes(_ context.Context, database, table string) (domain.TypeMap, error) {
	s.calls = append(s.calls, database+"."+table)
	if s.err != nil {
		return nil, s.err
	}
	return s.types, nil
}

func strPtr(s string) *string { return &s }

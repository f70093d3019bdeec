package writer

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakewriter/internal/domain"
)

type stubPlanner struct {
	gotArgs domain.WriteArgs
	gotCols []string
	err     error
}

func (p *stubPlanner) Plan(_ context.Context, rec arrow.Record, args domain.WriteArgs) (*domain.WritePlan, error) {
	p.gotArgs = args
	p.gotCols = columnNames(rec)
	if p.err != nil {
		return nil, p.err
	}
	return &domain.WritePlan{Root: args.Path, Objects: []domain.PlannedObject{{Key: "k", Rows: rec.NumRows()}}}, nil
}

func newTestWriter(types domain.TableTypesReader, planner Planner) *Writer {
	return New(types, planner, slog.New(slog.DiscardHandler))
}

func TestPrepare_Dataset(t *testing.T) {
	rec := newRecord(t, []string{"Id", "Event Date", "Amount"}, `[
		{"Id": "1", "Event Date": "2024-01-01", "Amount": "10"},
		{"Id": "2", "Event Date": "2024-01-02", "Amount": "20"}
	]`)
	types := &stubTypes{types: domain.TypeMap{"amount": "bigint"}}
	planner := &stubPlanner{}
	w := newTestWriter(types, planner)

	out, err := w.Prepare(context.Background(), rec, domain.WriteArgs{
		Path:          "s3://bucket/sales/",
		Dataset:       true,
		PartitionCols: []string{"Event Date"},
		Database:      "analytics",
		Table:         "DailySales",
	}, domain.TypeMap{"Id": "INT", "Amount": "string"})
	require.NoError(t, err)
	defer out.Release()

	assert.Equal(t, []string{"analytics.daily_sales"}, types.calls)
	assert.Equal(t, domain.WriteModeAppend, out.Args.Mode)
	assert.Equal(t, "daily_sales", out.Args.Table)
	assert.Equal(t, []string{"event_date"}, out.PartitionCols)
	assert.Equal(t, domain.TypeMap{"id": "int", "amount": "bigint"}, out.DType)

	assert.Equal(t, []string{"id", "event_date", "amount"}, columnNames(out.Record))
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Int32, out.Record.Schema().Field(0).Type))
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Int64, out.Record.Schema().Field(2).Type))

	require.NotNil(t, out.Plan)
	assert.Equal(t, []string{"id", "event_date", "amount"}, planner.gotCols)
	assert.Equal(t, []string{"event_date"}, planner.gotArgs.PartitionCols)
}

func TestPrepare_SingleObjectKeepsNames(t *testing.T) {
	rec := newRecord(t, []string{"Some Col"}, `[{"Some Col": "1"}]`)
	w := newTestWriter(nil, nil)

	out, err := w.Prepare(context.Background(), rec, domain.WriteArgs{Path: "s3://bucket/out.csv"},
		domain.TypeMap{"Some Col": "BIGINT"})
	require.NoError(t, err)
	defer out.Release()

	assert.Equal(t, []string{"Some Col"}, columnNames(out.Record))
	assert.Equal(t, domain.TypeMap{"Some Col": "bigint"}, out.DType)
	assert.Nil(t, out.Plan)
	assert.Equal(t, domain.WriteMode(""), out.Args.Mode)
}

func TestPrepare_ValidationFirst(t *testing.T) {
	rec := newRecord(t, []string{"a"}, `[]`)
	types := &stubTypes{}
	planner := &stubPlanner{}
	w := newTestWriter(types, planner)

	_, err := w.Prepare(context.Background(), rec, domain.WriteArgs{
		Path: "s3://bucket/x/", Dataset: true, Mode: domain.WriteModeAppend, Database: "db", Table: "t",
	}, nil)
	assert.IsType(t, &domain.EmptyInputError{}, err)
	assert.Empty(t, types.calls)
	assert.Empty(t, planner.gotCols)
}

func TestPrepare_DuplicateAfterSanitize(t *testing.T) {
	rec := newRecord(t, []string{"A", "a"}, `[{"A": "1", "a": "2"}]`)
	w := newTestWriter(nil, nil)

	_, err := w.Prepare(context.Background(), rec, domain.WriteArgs{Path: "s3://b/p/", Dataset: true}, nil)
	var dup *domain.DuplicateColumnsError
	assert.True(t, errors.As(err, &dup))
}

func TestPrepare_UnknownPartitionColumn(t *testing.T) {
	rec := newRecord(t, []string{"a"}, `[{"a": "1"}]`)
	w := newTestWriter(nil, nil)

	_, err := w.Prepare(context.Background(), rec, domain.WriteArgs{
		Path: "s3://b/p/", Dataset: true, PartitionCols: []string{"b"},
	}, nil)
	assert.IsType(t, &domain.InvalidArgumentValueError{}, err)
}

func TestPrepare_PlannerError(t *testing.T) {
	rec := newRecord(t, []string{"a"}, `[{"a": "1"}]`)
	boom := errors.New("no credentials")
	w := newTestWriter(nil, &stubPlanner{err: boom})

	_, err := w.Prepare(context.Background(), rec, domain.WriteArgs{Path: "s3://b/p/", Dataset: true}, nil)
	assert.ErrorIs(t, err, boom)
}

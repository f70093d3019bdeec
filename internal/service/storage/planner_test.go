package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakewriter/internal/domain"
)

type recordingPresigner struct {
	keys []string
	err  error
}

func (p *recordingPresigner) PresignPutObject(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.keys = append(p.keys, bucket+"/"+key)
	return "https://signed.example/" + bucket + "/" + key, nil
}

func salesRecord(t *testing.T) arrow.Record {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "year", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		{Name: "region", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "amount", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	}, nil)
	rec, _, err := array.RecordFromJSON(memory.DefaultAllocator, schema, strings.NewReader(`[
		{"year": 2024, "region": "eu", "amount": 1},
		{"year": 2024, "region": "us", "amount": 2},
		{"year": 2025, "region": "eu", "amount": 3},
		{"year": 2024, "region": "eu", "amount": 4},
		{"year": 2025, "region": null, "amount": 5}
	]`))
	require.NoError(t, err)
	t.Cleanup(rec.Release)
	return rec
}

func newTestPlanner(presigner UploadPresigner) *Planner {
	p := NewPlanner(presigner, 10*time.Minute)
	n := 0
	p.newID = func() string {
		n++
		return fmt.Sprintf("f%d", n)
	}
	p.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return p
}

func TestPlanner_SingleObject(t *testing.T) {
	p := newTestPlanner(nil)

	plan, err := p.Plan(context.Background(), salesRecord(t), domain.WriteArgs{Path: "s3://bucket/out/sales.csv"})
	require.NoError(t, err)
	require.Len(t, plan.Objects, 1)
	assert.Equal(t, "bucket", plan.Objects[0].Bucket)
	assert.Equal(t, "out/sales.csv", plan.Objects[0].Key)
	assert.Equal(t, "s3://bucket/out/sales.csv", plan.Objects[0].URI)
	assert.EqualValues(t, 5, plan.Objects[0].Rows)
	assert.Empty(t, plan.Objects[0].UploadURL)
}

func TestPlanner_DatasetUnpartitioned(t *testing.T) {
	p := newTestPlanner(nil)

	plan, err := p.Plan(context.Background(), salesRecord(t), domain.WriteArgs{
		Path: "s3://bucket/sales", Dataset: true, Compression: domain.CompressionGzip,
	})
	require.NoError(t, err)
	require.Len(t, plan.Objects, 1)
	assert.Equal(t, "sales/f1.csv.gz", plan.Objects[0].Key)
	assert.Equal(t, "s3://bucket/sales/f1.csv.gz", plan.Objects[0].URI)
}

func TestPlanner_DatasetPartitioned(t *testing.T) {
	presigner := &recordingPresigner{}
	p := newTestPlanner(presigner)

	plan, err := p.Plan(context.Background(), salesRecord(t), domain.WriteArgs{
		Path:          "s3://bucket/sales/",
		Dataset:       true,
		PartitionCols: []string{"year", "region"},
		Format:        domain.FileFormatParquet,
		Compression:   domain.CompressionSnappy,
	})
	require.NoError(t, err)

	keys := make([]string, len(plan.Objects))
	rows := make([]int64, len(plan.Objects))
	for i, o := range plan.Objects {
		keys[i] = o.Key
		rows[i] = o.Rows
	}
	assert.Equal(t, []string{
		"sales/year=2024/region=eu/f1.snappy.parquet",
		"sales/year=2024/region=us/f2.snappy.parquet",
		"sales/year=2025/region=eu/f3.snappy.parquet",
		"sales/year=2025/region=__HIVE_DEFAULT_PARTITION__/f4.snappy.parquet",
	}, keys)
	assert.Equal(t, []int64{2, 1, 1, 1}, rows)
	assert.Equal(t, []string{"2024", "eu"}, plan.Objects[0].PartitionValues)

	require.Len(t, presigner.keys, 4)
	assert.Equal(t, "https://signed.example/bucket/sales/year=2024/region=eu/f1.snappy.parquet", plan.Objects[0].UploadURL)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 10, 0, 0, time.UTC), plan.Objects[0].ExpiresAt)
}

func TestPlanner_DatasetEscapedPrefix(t *testing.T) {
	p := newTestPlanner(nil)

	plan, err := p.Plan(context.Background(), salesRecord(t), domain.WriteArgs{
		Path: "s3://bucket/my%20sales/", Dataset: true, PartitionCols: []string{"year"},
	})
	require.NoError(t, err)
	require.Len(t, plan.Objects, 2)
	assert.Equal(t, "my sales/year=2024/f1.csv", plan.Objects[0].Key)
	assert.Equal(t, "s3://bucket/my%20sales/year=2024/f1.csv", plan.Objects[0].URI)
	assert.Equal(t, "s3://bucket/my%20sales/year=2025/f2.csv", plan.Objects[1].URI)
}

func TestPlanner_Errors(t *testing.T) {
	rec := salesRecord(t)

	_, err := newTestPlanner(nil).Plan(context.Background(), rec, domain.WriteArgs{Path: "s3://bucket/dir/"})
	assert.IsType(t, &domain.InvalidArgumentValueError{}, err)

	_, err = newTestPlanner(nil).Plan(context.Background(), rec, domain.WriteArgs{
		Path: "s3://bucket/dir/", Dataset: true, PartitionCols: []string{"nope"},
	})
	assert.IsType(t, &domain.InvalidArgumentValueError{}, err)

	_, err = newTestPlanner(nil).Plan(context.Background(), rec, domain.WriteArgs{
		Path: "s3://bucket/dir/", Dataset: true, Format: "orc",
	})
	assert.IsType(t, &domain.InvalidArgumentValueError{}, err)

	boom := errors.New("sign failed")
	_, err = newTestPlanner(&recordingPresigner{err: boom}).Plan(context.Background(), rec, domain.WriteArgs{
		Path: "s3://bucket/dir/", Dataset: true,
	})
	assert.ErrorIs(t, err, boom)
}

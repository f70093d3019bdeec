package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"

	"lakewriter/internal/domain"
)

// hiveNullPartition is the directory value Hive-style layouts use for nulls.
const hiveNullPartition = "__HIVE_DEFAULT_PARTITION__"

// Planner computes the objects a prepared write produces and, when a
// presigner is configured, presigns an upload for each of them.
type Planner struct {
	presigners PresignerSource // nil plans keys only
	expiry     time.Duration
	newID      func() string
	now        func() time.Time
}

// NewPlanner creates a Planner that signs every upload with presigner.
// presigner may be nil.
func NewPlanner(presigner UploadPresigner, expiry time.Duration) *Planner {
	var src PresignerSource
	if presigner != nil {
		src = staticPresigner{presigner}
	}
	return NewPlannerFromSource(src, expiry)
}

// NewPlannerFromSource creates a Planner that picks the presigner per
// destination. src may be nil.
func NewPlannerFromSource(src PresignerSource, expiry time.Duration) *Planner {
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &Planner{
		presigners: src,
		expiry:     expiry,
		newID:      domain.NewFileID,
		now:        time.Now,
	}
}

// Plan returns the write plan for rec. Single-object writes produce exactly
// args.Path. Dataset writes produce one new file per distinct partition tuple
// below args.Path, in col=value directories ordered as args.PartitionCols.
func (p *Planner) Plan(ctx context.Context, rec arrow.Record, args domain.WriteArgs) (*domain.WritePlan, error) {
	dest, err := ParseDestination(args.Path)
	if err != nil {
		return nil, err
	}

	plan := &domain.WritePlan{Root: args.Path}
	if !args.Dataset {
		if dest.IsDirectory() {
			return nil, domain.ErrInvalidArgumentValue("path %q is not an object path", args.Path)
		}
		plan.Objects = []domain.PlannedObject{{
			Bucket: dest.Bucket,
			Key:    dest.Key,
			URI:    args.Path,
			Rows:   rec.NumRows(),
		}}
	} else {
		name, err := p.fileName(args)
		if err != nil {
			return nil, err
		}
		prefix := dest.Key
		if prefix != "" && !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		groups, err := partitionGroups(rec, args.PartitionCols)
		if err != nil {
			return nil, err
		}
		for _, g := range groups {
			key := prefix + g.dir + name()
			plan.Objects = append(plan.Objects, domain.PlannedObject{
				Bucket:          dest.Bucket,
				Key:             key,
				URI:             dest.Join(key),
				PartitionValues: g.values,
				Rows:            g.rows,
			})
		}
	}

	if p.presigners != nil {
		presigner, err := p.presigners.PresignerFor(dest)
		if err != nil {
			return nil, err
		}
		for i := range plan.Objects {
			obj := &plan.Objects[i]
			u, err := presigner.PresignPutObject(ctx, obj.Bucket, obj.Key, p.expiry)
			if err != nil {
				return nil, err
			}
			obj.UploadURL = u
			obj.ExpiresAt = p.now().Add(p.expiry)
		}
	}
	return plan, nil
}

// fileName returns a generator of unique file names for the format and codec.
func (p *Planner) fileName(args domain.WriteArgs) (func() string, error) {
	compExt, ok := args.Compression.Extension()
	if !ok {
		return nil, domain.ErrInvalidArgumentValue("unsupported compression %q", args.Compression)
	}
	switch args.Format {
	case domain.FileFormatParquet:
		return func() string { return p.newID() + compExt + ".parquet" }, nil
	case domain.FileFormatCSV, "":
		return func() string { return p.newID() + ".csv" + compExt }, nil
	default:
		return nil, domain.ErrInvalidArgumentValue("unsupported file format %q", args.Format)
	}
}

type partitionGroup struct {
	dir    string
	values []string
	rows   int64
}

// partitionGroups buckets rows by their partition tuple, in first-seen order.
// With no partition columns every row lands in one group.
func partitionGroups(rec arrow.Record, cols []string) ([]*partitionGroup, error) {
	if len(cols) == 0 {
		return []*partitionGroup{{rows: rec.NumRows()}}, nil
	}

	arrs := make([]arrow.Array, len(cols))
	for i, c := range cols {
		idx := rec.Schema().FieldIndices(c)
		if len(idx) == 0 {
			return nil, domain.ErrInvalidArgumentValue("partition column %q is not a column of the dataset", c)
		}
		arrs[i] = rec.Column(idx[0])
	}

	var order []*partitionGroup
	byDir := make(map[string]*partitionGroup)
	for row := 0; row < int(rec.NumRows()); row++ {
		values := make([]string, len(cols))
		var dir strings.Builder
		for i, a := range arrs {
			v := hiveNullPartition
			if !a.IsNull(row) {
				v = a.ValueStr(row)
			}
			values[i] = v
			fmt.Fprintf(&dir, "%s=%s/", cols[i], url.PathEscape(v))
		}
		g, ok := byDir[dir.String()]
		if !ok {
			g = &partitionGroup{dir: dir.String(), values: values}
			byDir[g.dir] = g
			order = append(order, g)
		}
		g.rows++
	}
	return order, nil
}

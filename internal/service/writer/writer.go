package writer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"lakewriter/internal/datatypes"
	"lakewriter/internal/domain"
	"lakewriter/internal/service/catalog"
)

// Planner turns a prepared record into the list of objects to write.
// Implemented by storage.Planner.
type Planner interface {
	Plan(ctx context.Context, rec arrow.Record, args domain.WriteArgs) (*domain.WritePlan, error)
}

// Prepared is the outcome of a successful pre-flight.
type Prepared struct {
	Record        arrow.Record
	DType         domain.TypeMap
	PartitionCols []string
	Args          domain.WriteArgs // args as sanitized and defaulted
	Plan          *domain.WritePlan
}

// Release releases the prepared record.
func (p *Prepared) Release() {
	if p.Record != nil {
		p.Record.Release()
	}
}

// Writer runs the pre-flight stages for table writes.
type Writer struct {
	types   domain.TableTypesReader
	planner Planner // nil skips planning
	logger  *slog.Logger
}

// New creates a Writer. types and planner may be nil.
func New(types domain.TableTypesReader, planner Planner, logger *slog.Logger) *Writer {
	return &Writer{types: types, planner: planner, logger: logger}
}

// Prepare validates args, sanitizes names in dataset mode, reconciles and
// applies column types, and plans the output objects.
//
// rec is never modified. On success the caller must Release the result.
func (w *Writer) Prepare(ctx context.Context, rec arrow.Record, args domain.WriteArgs, dtype domain.TypeMap) (*Prepared, error) {
	if err := ValidateArgs(rec, args); err != nil {
		return nil, err
	}
	w.logger.Debug("write arguments valid", "path", args.Path, "dataset", args.Dataset, "rows", rec.NumRows())

	work := rec
	partitionCols := args.PartitionCols
	if args.Dataset {
		sanitized, types, cols, err := Sanitize(rec, dtype, args.PartitionCols)
		if err != nil {
			return nil, err
		}
		defer sanitized.Release()
		work = sanitized
		dtype = types
		partitionCols = cols
		args.Table = catalog.SanitizeTableName(args.Table)
		if args.Mode == "" {
			args.Mode = domain.WriteModeAppend
		}
		w.logger.Debug("names sanitized", "columns", work.NumCols(), "partition_cols", partitionCols)
	} else {
		lowered := make(domain.TypeMap, len(dtype))
		for k, v := range dtype {
			lowered[k] = strings.ToLower(v)
		}
		dtype = lowered
	}
	args.PartitionCols = partitionCols

	if err := checkPartitionCols(work, partitionCols); err != nil {
		return nil, err
	}

	merged, err := ReconcileTypes(ctx, args.Mode, args.Database, args.Table, dtype, w.types)
	if err != nil {
		return nil, err
	}
	casted, err := datatypes.CastRecord(ctx, work, merged)
	if err != nil {
		return nil, err
	}

	out := &Prepared{
		Record:        casted,
		DType:         merged,
		PartitionCols: partitionCols,
		Args:          args,
	}

	if w.planner != nil {
		plan, err := w.planner.Plan(ctx, casted, args)
		if err != nil {
			out.Release()
			return nil, fmt.Errorf("plan write: %w", err)
		}
		out.Plan = plan
	}

	w.logger.Info("write prepared",
		"path", args.Path,
		"dataset", args.Dataset,
		"mode", string(args.Mode),
		"table", args.Table,
		"rows", casted.NumRows(),
		"cast_columns", len(merged),
	)
	return out, nil
}

// checkPartitionCols requires every partition column to exist in rec.
func checkPartitionCols(rec arrow.Record, cols []string) error {
	for _, c := range cols {
		if len(rec.Schema().FieldIndices(c)) == 0 {
			return domain.ErrInvalidArgumentValue("partition column %q is not a column of the dataset", c)
		}
	}
	return nil
}

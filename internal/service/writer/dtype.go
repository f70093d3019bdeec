package writer

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"

	"lakewriter/internal/datatypes"
	"lakewriter/internal/domain"
)

// MergeTypes returns a new map holding user overlaid with catalog: catalog
// types win for every key they share, user-only keys are kept. Neither input
// is modified.
func MergeTypes(user, catalog domain.TypeMap) domain.TypeMap {
	out := user.Clone()
	for k, v := range catalog {
		out[k] = v
	}
	return out
}

// ApplyDType casts rec with dtype after reconciling it with the catalog.
//
// When mode keeps the existing table (append, overwrite_partitions) and both
// database and table are set, the table's registered types are read from
// types and override dtype. A missing table leaves dtype as given. Catalog
// errors are returned unchanged.
func ApplyDType(
	ctx context.Context,
	rec arrow.Record,
	mode domain.WriteMode,
	database, table string,
	dtype domain.TypeMap,
	types domain.TableTypesReader,
) (arrow.Record, error) {
	merged, err := ReconcileTypes(ctx, mode, database, table, dtype, types)
	if err != nil {
		return nil, err
	}
	return datatypes.CastRecord(ctx, rec, merged)
}

// ReconcileTypes returns the type map ApplyDType casts with.
func ReconcileTypes(
	ctx context.Context,
	mode domain.WriteMode,
	database, table string,
	dtype domain.TypeMap,
	types domain.TableTypesReader,
) (domain.TypeMap, error) {
	if !mode.ReadsCatalog() || database == "" || table == "" || types == nil {
		return dtype.Clone(), nil
	}
	catalogTypes, err := types.GetTableTypes(ctx, database, table)
	if err != nil {
		return nil, err
	}
	return MergeTypes(dtype, catalogTypes), nil
}

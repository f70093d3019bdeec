// Package writer implements the pre-flight checks that run before a table is
// written to object storage: argument validation, name sanitization and
// catalog type reconciliation.
package writer

import (
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"lakewriter/internal/domain"
)

// ValidateArgs checks that args form a consistent write request for rec.
// Rules are checked in order and the first violation is returned.
func ValidateArgs(rec arrow.Record, args domain.WriteArgs) error {
	if rec == nil || rec.NumRows() == 0 {
		return domain.ErrEmptyInput()
	}

	if !args.Dataset {
		if strings.HasSuffix(args.Path, "/") {
			return domain.ErrInvalidArgumentValue(
				"path %q is a directory; a single-object write needs an object path (or set dataset mode)", args.Path)
		}
		if len(args.PartitionCols) > 0 {
			return domain.ErrInvalidArgumentCombination("partition columns require dataset mode")
		}
		if args.Mode != "" {
			return domain.ErrInvalidArgumentCombination("write mode %q requires dataset mode", args.Mode)
		}
		if args.Table != "" || args.Description != nil || args.Parameters != nil || args.ColumnsComments != nil {
			return domain.ErrInvalidArgumentCombination(
				"table, description, parameters and columns comments require dataset mode")
		}
	}

	if args.Mode != "" && !args.Mode.Valid() {
		return domain.ErrInvalidArgumentValue(
			"unknown write mode %q (want append, overwrite or overwrite_partitions)", args.Mode)
	}
	if _, ok := args.Compression.Extension(); !ok {
		return domain.ErrInvalidArgumentValue("unsupported compression %q (want gzip, snappy or none)", args.Compression)
	}
	if args.Dataset && (args.Database == "") != (args.Table == "") {
		return domain.ErrInvalidArgumentCombination("database and table must be given together")
	}
	return nil
}

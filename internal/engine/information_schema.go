package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"lakewriter/internal/domain"
)

// Compile-time interface check.
var _ domain.TableTypesReader = (*DuckDBTypesReader)(nil)

// DuckDBTypesReader resolves catalog column types from a DuckDB database's
// information_schema. DuckDB schemas play the role of catalog databases.
type DuckDBTypesReader struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDuckDBTypesReader creates a reader over an open DuckDB connection. A nil
// logger discards warnings.
func NewDuckDBTypesReader(db *sql.DB, logger *slog.Logger) *DuckDBTypesReader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DuckDBTypesReader{db: db, logger: logger}
}

// GetTableTypes returns the table's column types in the catalog dialect, or
// nil when the table does not exist. Columns whose DuckDB type has no catalog
// equivalent are left out and logged.
func (r *DuckDBTypesReader) GetTableTypes(ctx context.Context, database, table string) (domain.TypeMap, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position`, database, table)
	if err != nil {
		return nil, fmt.Errorf("query information_schema for %s.%s: %w", database, table, err)
	}
	defer rows.Close() //nolint:errcheck

	var types domain.TypeMap
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return nil, err
		}
		if types == nil {
			types = domain.TypeMap{}
		}
		catalogType, err := CatalogTypeFromDuckDB(dataType)
		var unsupported *domain.UnsupportedTypeError
		if errors.As(err, &unsupported) {
			r.logger.WarnContext(ctx, "skipping column with unsupported type",
				"database", database, "table", table, "column", name, "data_type", dataType)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("column %s.%s.%s: %w", database, table, name, err)
		}
		types[name] = catalogType
	}
	return types, rows.Err()
}

var duckdbScalarTypes = map[string]string{
	"TINYINT":                  "tinyint",
	"INT1":                     "tinyint",
	"SMALLINT":                 "smallint",
	"INT2":                     "smallint",
	"INTEGER":                  "int",
	"INT":                      "int",
	"INT4":                     "int",
	"BIGINT":                   "bigint",
	"INT8":                     "bigint",
	"UTINYINT":                 "smallint",
	"USMALLINT":                "int",
	"UINTEGER":                 "bigint",
	"UBIGINT":                  "decimal(20,0)",
	"HUGEINT":                  "decimal(38,0)",
	"FLOAT":                    "float",
	"REAL":                     "float",
	"DOUBLE":                   "double",
	"BOOLEAN":                  "boolean",
	"VARCHAR":                  "string",
	"UUID":                     "string",
	"JSON":                     "string",
	"TIME":                     "string",
	"TIME WITH TIME ZONE":      "string",
	"INTERVAL":                 "string",
	"DATE":                     "date",
	"TIMESTAMP":                "timestamp",
	"TIMESTAMP WITH TIME ZONE": "timestamp",
	"TIMESTAMP_NS":             "timestamp",
	"TIMESTAMP_MS":             "timestamp",
	"TIMESTAMP_S":              "timestamp",
	"BLOB":                     "binary",
}

// CatalogTypeFromDuckDB converts a DuckDB data_type string such as
// "DECIMAL(10,2)", "INTEGER[]" or "STRUCT(a INTEGER, b VARCHAR)" into the
// catalog type dialect.
func CatalogTypeFromDuckDB(dataType string) (string, error) {
	t := strings.TrimSpace(dataType)
	upper := strings.ToUpper(t)

	if strings.HasSuffix(t, "[]") {
		elem, err := CatalogTypeFromDuckDB(t[:len(t)-2])
		if err != nil {
			return "", err
		}
		return "array<" + elem + ">", nil
	}
	if s, ok := duckdbScalarTypes[upper]; ok {
		return s, nil
	}

	open := strings.IndexByte(t, '(')
	if open < 0 || !strings.HasSuffix(t, ")") {
		return "", domain.ErrUnsupportedType(dataType)
	}
	head := strings.ToUpper(strings.TrimSpace(t[:open]))
	args := splitTopLevel(t[open+1 : len(t)-1])

	switch head {
	case "DECIMAL", "NUMERIC":
		if len(args) != 2 {
			return "", domain.ErrUnsupportedType(dataType)
		}
		return fmt.Sprintf("decimal(%s,%s)", args[0], args[1]), nil
	case "VARCHAR", "ENUM":
		return "string", nil
	case "MAP":
		if len(args) != 2 {
			return "", domain.ErrUnsupportedType(dataType)
		}
		k, err := CatalogTypeFromDuckDB(args[0])
		if err != nil {
			return "", err
		}
		v, err := CatalogTypeFromDuckDB(args[1])
		if err != nil {
			return "", err
		}
		return "map<" + k + "," + v + ">", nil
	case "STRUCT":
		fields := make([]string, 0, len(args))
		for _, a := range args {
			name, typ, ok := cutFieldName(a)
			if !ok {
				return "", domain.ErrUnsupportedType(dataType)
			}
			ft, err := CatalogTypeFromDuckDB(typ)
			if err != nil {
				return "", err
			}
			fields = append(fields, name+":"+ft)
		}
		return "struct<" + strings.Join(fields, ",") + ">", nil
	}
	return "", domain.ErrUnsupportedType(dataType)
}

// cutFieldName splits a STRUCT member such as `a INTEGER` or
// `"my ""col""" VARCHAR` into its unquoted name and its type.
func cutFieldName(member string) (name, typ string, ok bool) {
	member = strings.TrimSpace(member)
	if !strings.HasPrefix(member, `"`) {
		name, typ, ok = strings.Cut(member, " ")
		return name, strings.TrimSpace(typ), ok && strings.TrimSpace(typ) != ""
	}
	var b strings.Builder
	for i := 1; i < len(member); i++ {
		if member[i] != '"' {
			b.WriteByte(member[i])
			continue
		}
		if i+1 < len(member) && member[i+1] == '"' {
			b.WriteByte('"')
			i++
			continue
		}
		typ = strings.TrimSpace(member[i+1:])
		return b.String(), typ, typ != ""
	}
	return "", "", false
}

// splitTopLevel splits s on commas that are not nested inside parentheses or
// quotes.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	var quote rune
	for i, c := range s {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ',' && depth == 0:
			parts = append(parts, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" {
		parts = append(parts, rest)
	}
	return parts
}

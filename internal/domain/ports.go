package domain

import "context"

// TableTypesReader reads the column types registered for a table in the
// metadata catalog. Partition columns are included.
//
// Implementations return a nil map and a nil error when the table does not
// exist. Implemented by repository.CatalogTypesRepo and engine.DuckDBTypesReader.
type TableTypesReader interface {
	GetTableTypes(ctx context.Context, database, table string) (TypeMap, error)
}

// TableTypesWriter registers and removes table schemas in the catalog.
// Implemented by repository.CatalogTypesRepo.
type TableTypesWriter interface {
	RegisterTable(ctx context.Context, def TableDefinition) error
	DropTable(ctx context.Context, database, table string) error
}

// ColumnDef is a column name and catalog type.
type ColumnDef struct {
	Name string
	Type string
}

// TableDefinition describes a table to register in the catalog.
type TableDefinition struct {
	Database      string
	Table         string
	Location      string
	Description   string
	Columns       []ColumnDef
	PartitionKeys []ColumnDef
	Parameters    map[string]string
}

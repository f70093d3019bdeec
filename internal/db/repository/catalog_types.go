package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"lakewriter/internal/domain"
)

// Compile-time interface checks.
var _ domain.TableTypesReader = (*CatalogTypesRepo)(nil)
var _ domain.TableTypesWriter = (*CatalogTypesRepo)(nil)

// CatalogTypesRepo stores table schemas in the SQLite metastore.
type CatalogTypesRepo struct {
	db *sql.DB
}

// NewCatalogTypesRepo creates a new CatalogTypesRepo.
func NewCatalogTypesRepo(db *sql.DB) *CatalogTypesRepo {
	return &CatalogTypesRepo{db: db}
}

// GetTableTypes returns column and partition-key types for the table, or nil
// when the table is not registered.
func (r *CatalogTypesRepo) GetTableTypes(ctx context.Context, database, table string) (domain.TypeMap, error) {
	var tableID int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM catalog_tables WHERE database_name = ? AND name = ?`, database, table).
		Scan(&tableID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup table %s.%s: %w", database, table, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT name, type FROM catalog_columns WHERE table_id = ? ORDER BY is_partition, position`, tableID)
	if err != nil {
		return nil, fmt.Errorf("list columns of %s.%s: %w", database, table, err)
	}
	defer rows.Close() //nolint:errcheck

	types := domain.TypeMap{}
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, err
		}
		types[name] = typ
	}
	return types, rows.Err()
}

// GetTable returns the full definition of a registered table.
func (r *CatalogTypesRepo) GetTable(ctx context.Context, database, table string) (*domain.TableDefinition, error) {
	def := &domain.TableDefinition{Database: database, Table: table}
	var tableID int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, location, description FROM catalog_tables WHERE database_name = ? AND name = ?`, database, table).
		Scan(&tableID, &def.Location, &def.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("table %s.%s not found", database, table)
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT name, type, is_partition FROM catalog_columns WHERE table_id = ? ORDER BY position`, tableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck
	for rows.Next() {
		var c domain.ColumnDef
		var isPartition bool
		if err := rows.Scan(&c.Name, &c.Type, &isPartition); err != nil {
			return nil, err
		}
		if isPartition {
			def.PartitionKeys = append(def.PartitionKeys, c)
		} else {
			def.Columns = append(def.Columns, c)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	params, err := r.db.QueryContext(ctx,
		`SELECT param_key, param_value FROM catalog_table_parameters WHERE table_id = ?`, tableID)
	if err != nil {
		return nil, err
	}
	defer params.Close() //nolint:errcheck
	for params.Next() {
		var k, v string
		if err := params.Scan(&k, &v); err != nil {
			return nil, err
		}
		if def.Parameters == nil {
			def.Parameters = map[string]string{}
		}
		def.Parameters[k] = v
	}
	return def, params.Err()
}

// RegisterTable creates or replaces a table definition. Columns keep their
// order; partition keys follow the regular columns.
func (r *CatalogTypesRepo) RegisterTable(ctx context.Context, def domain.TableDefinition) error {
	if def.Database == "" || def.Table == "" {
		return domain.ErrValidation("database and table are required")
	}
	if len(def.Columns)+len(def.PartitionKeys) == 0 {
		return domain.ErrValidation("table %s.%s needs at least one column", def.Database, def.Table)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var tableID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO catalog_tables (database_name, name, location, description)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (database_name, name) DO UPDATE SET
			location = excluded.location,
			description = excluded.description,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		RETURNING id`,
		def.Database, def.Table, def.Location, def.Description).Scan(&tableID)
	if err != nil {
		return fmt.Errorf("upsert table %s.%s: %w", def.Database, def.Table, err)
	}

	for _, stmt := range []string{
		`DELETE FROM catalog_columns WHERE table_id = ?`,
		`DELETE FROM catalog_table_parameters WHERE table_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, tableID); err != nil {
			return fmt.Errorf("reset table %s.%s: %w", def.Database, def.Table, err)
		}
	}

	pos := 0
	insertCol := func(c domain.ColumnDef, partition bool) error {
		pos++
		_, err := tx.ExecContext(ctx,
			`INSERT INTO catalog_columns (table_id, position, name, type, is_partition) VALUES (?, ?, ?, ?, ?)`,
			tableID, pos, c.Name, strings.ToLower(c.Type), partition)
		if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.ErrDuplicateColumns([]string{c.Name})
		}
		return err
	}
	for _, c := range def.Columns {
		if err := insertCol(c, false); err != nil {
			return err
		}
	}
	for _, c := range def.PartitionKeys {
		if err := insertCol(c, true); err != nil {
			return err
		}
	}
	for k, v := range def.Parameters {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO catalog_table_parameters (table_id, param_key, param_value) VALUES (?, ?, ?)`, tableID, k, v); err != nil {
			return fmt.Errorf("insert parameter %q: %w", k, err)
		}
	}
	return tx.Commit()
}

// DropTable removes a table definition.
func (r *CatalogTypesRepo) DropTable(ctx context.Context, database, table string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM catalog_tables WHERE database_name = ? AND name = ?`, database, table)
	if err != nil {
		return fmt.Errorf("drop table %s.%s: %w", database, table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("table %s.%s not found", database, table)
	}
	return nil
}

// Package app wires the catalog backends, storage presigners and the writer
// for the lakewriter binaries.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"lakewriter/internal/config"
	internaldb "lakewriter/internal/db"
	"lakewriter/internal/db/repository"
	"lakewriter/internal/domain"
	"lakewriter/internal/engine"
	"lakewriter/internal/service/catalog"
	"lakewriter/internal/service/storage"
	"lakewriter/internal/service/writer"
)

// Deps holds the external dependencies that main() must provide or open
// with OpenDeps. Exactly one catalog backend is set.
type Deps struct {
	Cfg         *config.Config
	Logger      *slog.Logger
	MetaWriteDB *sql.DB // sqlite backend
	MetaReadDB  *sql.DB // sqlite backend
	DuckDB      *sql.DB // duckdb backend
}

// OpenDeps opens the catalog backend selected by cfg. The SQLite metastore is
// migrated on open. The caller must Close the result.
func OpenDeps(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Deps, error) {
	deps := &Deps{Cfg: cfg, Logger: logger}

	switch cfg.CatalogBackend {
	case config.CatalogBackendDuckDB:
		db, err := sql.Open("duckdb", cfg.DuckDBPath)
		if err != nil {
			return nil, fmt.Errorf("open duckdb %q: %w", cfg.DuckDBPath, err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping duckdb %q: %w", cfg.DuckDBPath, err)
		}
		deps.DuckDB = db
	default:
		writeDB, err := internaldb.OpenMetastore(ctx, cfg.MetaDBPath, false)
		if err != nil {
			return nil, err
		}
		if err := internaldb.RunMigrations(writeDB); err != nil {
			_ = writeDB.Close()
			return nil, fmt.Errorf("migrate metastore: %w", err)
		}
		readDB, err := internaldb.OpenMetastore(ctx, cfg.MetaDBPath, true)
		if err != nil {
			_ = writeDB.Close()
			return nil, err
		}
		deps.MetaWriteDB = writeDB
		deps.MetaReadDB = readDB
	}
	logger.Debug("catalog backend opened", "backend", cfg.CatalogBackend)
	return deps, nil
}

// Close closes every open database handle.
func (d *Deps) Close() error {
	var errs []error
	for _, db := range []*sql.DB{d.MetaReadDB, d.MetaWriteDB, d.DuckDB} {
		if db != nil {
			errs = append(errs, db.Close())
		}
	}
	return errors.Join(errs...)
}

// App holds the wired services.
type App struct {
	// Types serves catalog type lookups for the writer and the API.
	Types *catalog.TypesService
	// Catalog registers and drops tables; nil for read-only backends.
	Catalog domain.TableTypesWriter
	// Tables returns full table definitions; nil for the duckdb backend.
	Tables *repository.CatalogTypesRepo

	presigners *storage.Presigners
	cfg        *config.Config
	logger     *slog.Logger
}

// New wires the services from deps.
func New(deps *Deps) (*App, error) {
	if deps.Cfg == nil || deps.Logger == nil {
		return nil, fmt.Errorf("app: config and logger are required")
	}
	a := &App{
		presigners: storage.NewPresigners(deps.Cfg),
		cfg:        deps.Cfg,
		logger:     deps.Logger,
	}

	var reader domain.TableTypesReader
	switch {
	case deps.DuckDB != nil:
		reader = engine.NewDuckDBTypesReader(deps.DuckDB, deps.Logger.With("component", "duckdb-types"))
	case deps.MetaWriteDB != nil:
		readDB := deps.MetaReadDB
		if readDB == nil {
			readDB = deps.MetaWriteDB
		}
		reader = repository.NewCatalogTypesRepo(readDB)
		writeRepo := repository.NewCatalogTypesRepo(deps.MetaWriteDB)
		a.Catalog = writeRepo
		a.Tables = writeRepo
	default:
		return nil, fmt.Errorf("app: no catalog backend opened")
	}

	a.Types = catalog.NewTypesService(reader, deps.Cfg.CatalogRPS, deps.Cfg.CatalogBurst,
		deps.Logger.With("component", "catalog-types"))
	return a, nil
}

// Writer returns a writer that plans output objects and, when presign is
// set, signs an upload URL for each of them.
func (a *App) Writer(presign bool) *writer.Writer {
	var src storage.PresignerSource
	if presign {
		src = a.presigners
	}
	planner := storage.NewPlannerFromSource(src, a.cfg.UploadURLExpiry)
	return writer.New(a.Types, planner, a.logger.With("component", "writer"))
}

// RegisterTable registers a table definition, failing on read-only backends.
func (a *App) RegisterTable(ctx context.Context, def domain.TableDefinition) error {
	if a.Catalog == nil {
		return domain.ErrValidation("catalog backend %q is read-only", a.cfg.CatalogBackend)
	}
	if err := a.Catalog.RegisterTable(ctx, def); err != nil {
		return err
	}
	a.logger.Info("table registered", "database", def.Database, "table", def.Table,
		"columns", len(def.Columns), "partition_keys", len(def.PartitionKeys))
	return nil
}

// DropTable removes a table definition, failing on read-only backends.
func (a *App) DropTable(ctx context.Context, database, table string) error {
	if a.Catalog == nil {
		return domain.ErrValidation("catalog backend %q is read-only", a.cfg.CatalogBackend)
	}
	if err := a.Catalog.DropTable(ctx, database, table); err != nil {
		return err
	}
	a.logger.Info("table dropped", "database", database, "table", table)
	return nil
}

// Close releases presigner clients.
func (a *App) Close() error {
	return a.presigners.Close()
}

package engine

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakewriter/internal/domain"
)

func openDuckDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDuckDBTypesReader_GetTableTypes(t *testing.T) {
	db := openDuckDB(t)
	ctx := context.Background()

	for _, stmt := range []string{
		`CREATE SCHEMA analytics`,
		`CREATE TABLE analytics.sales (
			id BIGINT,
			qty INTEGER,
			amount DECIMAL(10,2),
			name VARCHAR,
			sold_on DATE,
			payload BLOB,
			tags VARCHAR[]
		)`,
	} {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	reader := NewDuckDBTypesReader(db, nil)
	types, err := reader.GetTableTypes(ctx, "analytics", "sales")
	require.NoError(t, err)
	assert.Equal(t, domain.TypeMap{
		"id":      "bigint",
		"qty":     "int",
		"amount":  "decimal(10,2)",
		"name":    "string",
		"sold_on": "date",
		"payload": "binary",
		"tags":    "array<string>",
	}, types)
}

func TestDuckDBTypesReader_SkipsUnsupportedColumns(t *testing.T) {
	db := openDuckDB(t)
	ctx := context.Background()

	for _, stmt := range []string{
		`CREATE SCHEMA analytics`,
		`CREATE TABLE analytics.events (
			id UBIGINT,
			at TIME,
			kind UNION(n INTEGER, s VARCHAR),
			attrs STRUCT("event name" VARCHAR, "n" INTEGER)
		)`,
	} {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	types, err := NewDuckDBTypesReader(db, nil).GetTableTypes(ctx, "analytics", "events")
	require.NoError(t, err)
	assert.Equal(t, domain.TypeMap{
		"id":    "decimal(20,0)",
		"at":    "string",
		"attrs": "struct<event name:string,n:int>",
	}, types)
}

func TestDuckDBTypesReader_MissingTable(t *testing.T) {
	reader := NewDuckDBTypesReader(openDuckDB(t), nil)

	types, err := reader.GetTableTypes(context.Background(), "analytics", "nope")
	require.NoError(t, err)
	assert.Nil(t, types)
}

func TestCatalogTypeFromDuckDB(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"INTEGER", "int"},
		{"SMALLINT", "smallint"},
		{"TINYINT", "tinyint"},
		{"DOUBLE", "double"},
		{"FLOAT", "float"},
		{"BOOLEAN", "boolean"},
		{"TIMESTAMP WITH TIME ZONE", "timestamp"},
		{"DECIMAL(18,3)", "decimal(18,3)"},
		{"VARCHAR(20)", "string"},
		{"BIGINT[]", "array<bigint>"},
		{"MAP(VARCHAR, INTEGER)", "map<string,int>"},
		{"STRUCT(a INTEGER, b DECIMAL(5,1))", "struct<a:int,b:decimal(5,1)>"},
		{`STRUCT("x" VARCHAR)[]`, "array<struct<x:string>>"},
		{`STRUCT("my col" INTEGER, b VARCHAR)`, "struct<my col:int,b:string>"},
		{`STRUCT("a, ""b""" DOUBLE)`, `struct<a, "b":double>`},
		{"ENUM('x', 'y, z')", "string"},
		{"HUGEINT", "decimal(38,0)"},
		{"UBIGINT", "decimal(20,0)"},
		{"UINTEGER", "bigint"},
		{"TIME", "string"},
		{"INTERVAL", "string"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := CatalogTypeFromDuckDB(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCatalogTypeFromDuckDB_Unsupported(t *testing.T) {
	for _, in := range []string{"UHUGEINT", "BIT", "UNION(a INTEGER)", `STRUCT("unterminated INTEGER)`} {
		_, err := CatalogTypeFromDuckDB(in)
		var unsupported *domain.UnsupportedTypeError
		assert.ErrorAs(t, err, &unsupported, in)
	}
}

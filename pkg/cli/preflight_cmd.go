package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"lakewriter/internal/domain"
	"lakewriter/internal/service/writer"
)

type preflightFlags struct {
	path           string
	dataset        bool
	mode           string
	database       string
	table          string
	partitionCols  []string
	dtype          []string
	dtypeFile      string
	description    string
	parameters     []string
	columnComments []string
	compression    string
	format         string
	presign        bool
}

func newPreflightCmd(st *rootState) *cobra.Command {
	f := &preflightFlags{}

	cmd := &cobra.Command{
		Use:   "preflight <file.csv>",
		Short: "Validate and type a CSV file for a table write",
		Long: `Read a CSV file with a header row, run the write pre-flight against the
catalog and print the resulting schema and the objects the write would produce.`,
		Example: `  lakewriter preflight sales.csv --path s3://bucket/sales/ --dataset \
    --database analytics --table sales --partition-cols region --dtype amount=decimal(10,2)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			argsW, dtype, err := f.writeArgs(cmd)
			if err != nil {
				return err
			}

			rec, err := readCSV(args[0])
			if err != nil {
				return err
			}
			defer rec.Release()

			a, closeApp, err := st.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp()

			prepared, err := a.Writer(f.presign).Prepare(cmd.Context(), rec, argsW, dtype)
			if err != nil {
				return err
			}
			defer prepared.Release()

			summary, err := writer.Summarize(prepared)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(cmd.OutOrStdout(), summary)
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.path, "path", "", "Destination object path, or prefix in dataset mode (required)")
	cmd.Flags().BoolVar(&f.dataset, "dataset", false, "Write a partitioned dataset under --path")
	cmd.Flags().StringVar(&f.mode, "mode", "", "Dataset write mode (append, overwrite, overwrite_partitions)")
	cmd.Flags().StringVar(&f.database, "database", "", "Catalog database")
	cmd.Flags().StringVar(&f.table, "table", "", "Catalog table")
	cmd.Flags().StringSliceVar(&f.partitionCols, "partition-cols", nil, "Partition columns")
	cmd.Flags().StringArrayVar(&f.dtype, "dtype", nil, "Column type as col=type (repeatable)")
	cmd.Flags().StringVar(&f.dtypeFile, "dtype-file", "", "YAML file mapping columns to types")
	cmd.Flags().StringVar(&f.description, "description", "", "Table description")
	cmd.Flags().StringArrayVar(&f.parameters, "parameter", nil, "Table parameter as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&f.columnComments, "column-comment", nil, "Column comment as col=text (repeatable)")
	cmd.Flags().StringVar(&f.compression, "compression", "", "Compression (gzip, snappy)")
	cmd.Flags().StringVar(&f.format, "format", "csv", "Output file format (csv, parquet)")
	cmd.Flags().BoolVar(&f.presign, "presign", false, "Sign an upload URL for every planned object")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

// writeArgs builds the write arguments. Flags that were not given stay
// unset so argument validation can tell them apart from empty values.
func (f *preflightFlags) writeArgs(cmd *cobra.Command) (domain.WriteArgs, domain.TypeMap, error) {
	args := domain.WriteArgs{
		Path:          f.path,
		Dataset:       f.dataset,
		PartitionCols: f.partitionCols,
		Mode:          domain.WriteMode(f.mode),
		Database:      f.database,
		Table:         f.table,
		Compression:   domain.Compression(f.compression),
		Format:        domain.FileFormat(f.format),
	}
	if cmd.Flags().Changed("description") {
		d := f.description
		args.Description = &d
	}
	var err error
	if args.Parameters, err = splitAssignments("parameter", f.parameters); err != nil {
		return args, nil, err
	}
	if args.ColumnsComments, err = splitAssignments("column-comment", f.columnComments); err != nil {
		return args, nil, err
	}

	dtype := domain.TypeMap{}
	if f.dtypeFile != "" {
		fromFile, err := readDTypeFile(f.dtypeFile)
		if err != nil {
			return args, nil, err
		}
		for k, v := range fromFile {
			dtype[k] = v
		}
	}
	fromFlags, err := splitAssignments("dtype", f.dtype)
	if err != nil {
		return args, nil, err
	}
	for k, v := range fromFlags {
		dtype[k] = v
	}
	if len(dtype) == 0 {
		dtype = nil
	}
	return args, dtype, nil
}

// readDTypeFile reads a YAML mapping of column name to type.
func readDTypeFile(path string) (domain.TypeMap, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied path
	if err != nil {
		return nil, fmt.Errorf("read dtype file: %w", err)
	}
	var m map[string]string
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse dtype file %s: %w", path, err)
	}
	return m, nil
}

// readCSV loads a CSV file with a header row into a single record. Column
// types are inferred from the first data row. A file without data rows
// yields an empty record.
func readCSV(path string) (arrow.Record, error) {
	f, err := os.Open(path) //nolint:gosec // user-supplied path
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	mem := memory.DefaultAllocator
	r := csv.NewInferringReader(f,
		csv.WithAllocator(mem),
		csv.WithHeader(true),
		csv.WithNullReader(true, ""),
	)
	defer r.Release()

	var (
		rows  []arrow.Record
		total int64
	)
	defer func() {
		for _, rec := range rows {
			rec.Release()
		}
	}()
	for r.Next() {
		rec := r.Record()
		rec.Retain()
		rows = append(rows, rec)
		total += rec.NumRows()
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return array.NewRecord(arrow.NewSchema(nil, nil), nil, 0), nil
	}

	schema := rows[0].Schema()
	cols := make([]arrow.Array, schema.NumFields())
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()
	parts := make([]arrow.Array, len(rows))
	for i := range cols {
		for j, rec := range rows {
			parts[j] = rec.Column(i)
		}
		if cols[i], err = array.Concatenate(parts, mem); err != nil {
			return nil, fmt.Errorf("read %s: column %s: %w", path, schema.Field(i).Name, err)
		}
	}
	return array.NewRecord(schema, cols, total), nil
}

func printSummary(w io.Writer, s *writer.Summary) {
	PrintDetail(w, [][2]string{
		{"Path", s.Path},
		{"Dataset", strconv.FormatBool(s.Dataset)},
		{"Mode", s.Mode},
		{"Database", s.Database},
		{"Table", s.Table},
		{"Rows", strconv.FormatInt(s.Rows, 10)},
		{"Partitions", strings.Join(s.PartitionCols, ", ")},
	})
	_, _ = fmt.Fprintln(w)

	partition := make(map[string]bool, len(s.PartitionCols))
	for _, c := range s.PartitionCols {
		partition[c] = true
	}
	rows := make([][]string, len(s.Columns))
	for i, c := range s.Columns {
		var notes []string
		if _, ok := s.DType[c.Name]; ok {
			notes = append(notes, "cast")
		}
		if partition[c.Name] {
			notes = append(notes, "partition")
		}
		rows[i] = []string{c.Name, c.Type, strings.Join(notes, ", ")}
	}
	PrintTable(w, []string{"COLUMN", "TYPE", "NOTE"}, rows)

	if len(s.Objects) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w)
	objRows := make([][]string, len(s.Objects))
	for i, o := range s.Objects {
		expires := ""
		if o.ExpiresAt != nil {
			expires = o.ExpiresAt.UTC().Format(time.RFC3339)
		}
		objRows[i] = []string{o.URI, strconv.FormatInt(o.Rows, 10), expires}
	}
	PrintTable(w, []string{"OBJECT", "ROWS", "UPLOAD EXPIRES"}, objRows)
}

// sortedKeys returns the keys of m in order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lakewriter/internal/domain"
)

func newCatalogCmd(st *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage table definitions in the catalog",
	}
	cmd.AddCommand(newCatalogRegisterCmd(st))
	cmd.AddCommand(newCatalogTypesCmd(st))
	cmd.AddCommand(newCatalogDescribeCmd(st))
	cmd.AddCommand(newCatalogDropCmd(st))
	return cmd
}

func newCatalogRegisterCmd(st *rootState) *cobra.Command {
	var (
		def        domain.TableDefinition
		columns    []string
		partitions []string
		parameters []string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register or replace a table definition",
		Example: `  lakewriter catalog register --database analytics --table sales \
    --location s3://bucket/sales/ --column id=bigint --column amount=decimal(10,2) \
    --partition region=string`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if def.Columns, err = parseColumnDefs("column", columns); err != nil {
				return err
			}
			if def.PartitionKeys, err = parseColumnDefs("partition", partitions); err != nil {
				return err
			}
			if def.Parameters, err = splitAssignments("parameter", parameters); err != nil {
				return err
			}

			a, closeApp, err := st.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp()

			if err := a.RegisterTable(cmd.Context(), def); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(cmd.OutOrStdout(), map[string]interface{}{
					"database":       def.Database,
					"table":          def.Table,
					"columns":        len(def.Columns),
					"partition_keys": len(def.PartitionKeys),
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Registered %s.%s (%d columns, %d partition keys)\n",
				def.Database, def.Table, len(def.Columns), len(def.PartitionKeys))
			return nil
		},
	}
	cmd.Flags().StringVar(&def.Database, "database", "", "Database name (required)")
	cmd.Flags().StringVar(&def.Table, "table", "", "Table name (required)")
	cmd.Flags().StringVar(&def.Location, "location", "", "Table storage location")
	cmd.Flags().StringVar(&def.Description, "description", "", "Table description")
	cmd.Flags().StringArrayVar(&columns, "column", nil, "Column as name=type (repeatable, in order)")
	cmd.Flags().StringArrayVar(&partitions, "partition", nil, "Partition key as name=type (repeatable, in order)")
	cmd.Flags().StringArrayVar(&parameters, "parameter", nil, "Table parameter as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("database")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}

func newCatalogTypesCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "types <database> <table>",
		Short: "Show the catalog column types of a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeApp, err := st.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp()

			types, err := a.Types.GetTableTypes(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if types == nil {
				return domain.ErrNotFound("table %s.%s not found", args[0], args[1])
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(cmd.OutOrStdout(), types)
			}
			keys := sortedKeys(types)
			rows := make([][]string, len(keys))
			for i, k := range keys {
				rows[i] = []string{k, types[k]}
			}
			PrintTable(cmd.OutOrStdout(), []string{"COLUMN", "TYPE"}, rows)
			return nil
		},
	}
}

func newCatalogDescribeCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <database> <table>",
		Short: "Show a registered table definition",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeApp, err := st.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp()

			if a.Tables == nil {
				return domain.ErrValidation("describe is not supported by catalog backend %q", st.cfg.CatalogBackend)
			}
			def, err := a.Tables.GetTable(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(cmd.OutOrStdout(), tableDefinitionJSON(def))
			}

			out := cmd.OutOrStdout()
			params := make([]string, 0, len(def.Parameters))
			for _, k := range sortedKeys(def.Parameters) {
				params = append(params, k+"="+def.Parameters[k])
			}
			PrintDetail(out, [][2]string{
				{"Table", def.Database + "." + def.Table},
				{"Location", def.Location},
				{"Description", def.Description},
				{"Parameters", strings.Join(params, ", ")},
			})
			_, _ = fmt.Fprintln(out)

			rows := make([][]string, 0, len(def.Columns)+len(def.PartitionKeys))
			for _, c := range def.Columns {
				rows = append(rows, []string{c.Name, c.Type, ""})
			}
			for _, c := range def.PartitionKeys {
				rows = append(rows, []string{c.Name, c.Type, styleDim.render("partition")})
			}
			PrintTable(out, []string{"COLUMN", "TYPE", "NOTE"}, rows)
			return nil
		},
	}
}

func newCatalogDropCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "drop <database> <table>",
		Short: "Remove a table definition",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeApp, err := st.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp()

			if err := a.DropTable(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(cmd.OutOrStdout(), map[string]string{
					"database": args[0],
					"table":    args[1],
					"status":   "dropped",
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Dropped %s.%s\n", args[0], args[1])
			return nil
		},
	}
}

// parseColumnDefs parses repeated name=type flags, keeping their order.
func parseColumnDefs(flag string, values []string) ([]domain.ColumnDef, error) {
	defs := make([]domain.ColumnDef, 0, len(values))
	for _, v := range values {
		name, typ, ok := strings.Cut(v, "=")
		name = strings.TrimSpace(name)
		typ = strings.TrimSpace(typ)
		if !ok || name == "" || typ == "" {
			return nil, fmt.Errorf("invalid --%s %q: expected name=type", flag, v)
		}
		defs = append(defs, domain.ColumnDef{Name: name, Type: typ})
	}
	return defs, nil
}

type columnJSON struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func tableDefinitionJSON(def *domain.TableDefinition) map[string]interface{} {
	toJSON := func(cols []domain.ColumnDef) []columnJSON {
		out := make([]columnJSON, len(cols))
		for i, c := range cols {
			out[i] = columnJSON{Name: c.Name, Type: c.Type}
		}
		return out
	}
	return map[string]interface{}{
		"database":       def.Database,
		"table":          def.Table,
		"location":       def.Location,
		"description":    def.Description,
		"columns":        toJSON(def.Columns),
		"partition_keys": toJSON(def.PartitionKeys),
		"parameters":     def.Parameters,
	}
}

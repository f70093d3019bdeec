package cli

import (
	"github.com/spf13/cobra"

	"lakewriter/internal/service/catalog"
)

func newSanitizeCmd() *cobra.Command {
	var table bool
	cmd := &cobra.Command{
		Use:   "sanitize <name>...",
		Short: "Show catalog-safe versions of column or table names",
		Example: `  lakewriter sanitize "Order Date" "Prix (€)"
  lakewriter sanitize --table "Sales-2024"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sanitize := catalog.SanitizeColumnName
			if table {
				sanitize = catalog.SanitizeTableName
			}
			if getOutputFormat(cmd) == "json" {
				out := make(map[string]string, len(args))
				for _, name := range args {
					out[name] = sanitize(name)
				}
				return PrintJSON(cmd.OutOrStdout(), out)
			}
			rows := make([][]string, len(args))
			for i, name := range args {
				rows[i] = []string{name, sanitize(name)}
			}
			PrintTable(cmd.OutOrStdout(), []string{"INPUT", "SANITIZED"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&table, "table", false, "Sanitize as table names")
	return cmd
}

// Package cli implements the lakewriter command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // catalog backend driver
	_ "github.com/mattn/go-sqlite3"    // metastore driver
	"github.com/spf13/cobra"

	"lakewriter/internal/app"
	"lakewriter/internal/config"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		printError(os.Stdout, os.Stderr, output, err)
		return 1
	}
	return 0
}

// printError reports err as JSON on stdout or as "Error: ..." on stderr.
func printError(stdout, stderr io.Writer, output string, err error) {
	if output == "json" {
		errObj := map[string]interface{}{"error": err.Error()}
		if kind := errorKind(err); kind != "" {
			errObj["kind"] = kind
		}
		_ = PrintJSON(stdout, errObj)
		return
	}
	_, _ = fmt.Fprintf(stderr, "%s %v\n", styleError.render("Error:"), err)
}

// rootState is shared by the subcommands. It is resolved in
// PersistentPreRunE from flags, the environment and the user profile.
type rootState struct {
	output        string
	profile       string
	verbose       bool
	catalogDriver string
	metaDB        string
	duckDB        string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	st := &rootState{}

	rootCmd := &cobra.Command{
		Use:           "lakewriter",
		Short:         "Pre-flight checks for data lake table writes",
		Long:          "Validate, sanitize and type-check tables before writing them to object storage, and plan the objects to upload.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.resolve(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&st.output, "output", "o", "", "Output format (table, json); defaults to table on a terminal and json otherwise")
	rootCmd.PersistentFlags().StringVarP(&st.profile, "profile", "p", "", "Config profile to use")
	rootCmd.PersistentFlags().BoolVarP(&st.verbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&st.catalogDriver, "catalog-backend", "", "Catalog backend (sqlite, duckdb)")
	rootCmd.PersistentFlags().StringVar(&st.metaDB, "meta-db", "", "SQLite metastore path")
	rootCmd.PersistentFlags().StringVar(&st.duckDB, "duckdb", "", "DuckDB database path")

	rootCmd.AddCommand(newPreflightCmd(st))
	rootCmd.AddCommand(newCatalogCmd(st))
	rootCmd.AddCommand(newSanitizeCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// resolve applies precedence flag > env > profile > default.
func (st *rootState) resolve(cmd *cobra.Command) error {
	userCfg, err := LoadUserConfig()
	if err != nil {
		// Config file is optional
		userCfg = &UserConfig{CurrentProfile: "default", Profiles: map[string]Profile{}}
	}
	p, err := userCfg.ActiveProfile(st.profile)
	if err != nil && st.profile != "" {
		return err
	}

	if !cmd.Flags().Changed("output") {
		switch {
		case os.Getenv("LAKEWRITER_OUTPUT") != "":
			st.output = os.Getenv("LAKEWRITER_OUTPUT")
		case p.Output != "":
			st.output = p.Output
		default:
			st.output = defaultOutputFormat(cmd.OutOrStdout())
		}
	}
	if err := validateOutputFormat(st.output); err != nil {
		return err
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	setDefaultEnv("CATALOG_BACKEND", st.catalogDriver, cmd.Flags().Changed("catalog-backend"), p.CatalogBackend)
	setDefaultEnv("META_DB_PATH", st.metaDB, cmd.Flags().Changed("meta-db"), p.MetaDBPath)
	setDefaultEnv("DUCKDB_PATH", st.duckDB, cmd.Flags().Changed("duckdb"), p.DuckDBPath)

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	st.cfg = cfg

	level := slog.LevelWarn
	if st.verbose {
		level = slog.LevelDebug
	} else if os.Getenv("LOG_LEVEL") != "" {
		level = cfg.SlogLevel()
	}
	st.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	for _, w := range cfg.Warnings {
		st.logger.Warn(w)
	}
	return nil
}

// setDefaultEnv sets key from a changed flag, or from the profile when the
// environment leaves it empty.
func setDefaultEnv(key, flagValue string, flagChanged bool, profileValue string) {
	switch {
	case flagChanged:
		_ = os.Setenv(key, flagValue)
	case os.Getenv(key) == "" && profileValue != "":
		_ = os.Setenv(key, profileValue)
	}
}

// openApp opens the catalog backend and wires the services. The returned
// func closes everything.
func (st *rootState) openApp(ctx context.Context) (*app.App, func(), error) {
	deps, err := app.OpenDeps(ctx, st.cfg, st.logger)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(deps)
	if err != nil {
		_ = deps.Close()
		return nil, nil, err
	}
	return a, func() {
		_ = a.Close()
		_ = deps.Close()
	}, nil
}

// splitAssignments parses repeated key=value flags. Only the first "=" splits,
// so values may contain "=" and commas.
func splitAssignments(flag string, values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(values))
	for _, v := range values {
		key, val, ok := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --%s %q: expected key=value", flag, v)
		}
		out[key] = strings.TrimSpace(val)
	}
	return out, nil
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion scripts",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(cmd.OutOrStdout(), map[string]string{
					"version": version,
					"commit":  commit,
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "lakewriter version %s (commit: %s)\n", version, commit)
			return nil
		},
	}
}

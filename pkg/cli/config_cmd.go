package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI profiles in ~/.lakewriter/config.yaml",
	}
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSetProfileCmd())
	cmd.AddCommand(newConfigUseProfileCmd())
	return cmd
}

// loadOrInitUserConfig returns the saved config, or an empty one when the
// file does not exist yet.
func loadOrInitUserConfig() (*UserConfig, error) {
	cfg, err := LoadUserConfig()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &UserConfig{CurrentProfile: "default", Profiles: map[string]Profile{}}, nil
		}
		return nil, err
	}
	return cfg, nil
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show saved profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadOrInitUserConfig()
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(cmd.OutOrStdout(), map[string]interface{}{
					"current_profile": cfg.CurrentProfile,
					"profiles":        cfg.Profiles,
				})
			}
			names := make(map[string]string, len(cfg.Profiles))
			for name := range cfg.Profiles {
				names[name] = name
			}
			rows := make([][]string, 0, len(names))
			for _, name := range sortedKeys(names) {
				p := cfg.Profiles[name]
				current := ""
				if name == cfg.CurrentProfile {
					current = "*"
				}
				rows = append(rows, []string{current, name, p.Output, p.CatalogBackend, p.MetaDBPath, p.DuckDBPath})
			}
			PrintTable(cmd.OutOrStdout(), []string{"", "PROFILE", "OUTPUT", "BACKEND", "META DB", "DUCKDB"}, rows)
			return nil
		},
	}
}

func newConfigSetProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-profile <name>",
		Short: "Save the given global flags as a profile",
		Long: `Save --output, --catalog-backend, --meta-db and --duckdb into the named
profile. Flags that are not given keep their saved values.`,
		Example: `  lakewriter config set-profile lake --catalog-backend duckdb --duckdb lake.duckdb`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadOrInitUserConfig()
			if err != nil {
				return err
			}
			p := cfg.Profiles[args[0]]
			flags := cmd.Root().PersistentFlags()
			for _, f := range []struct {
				name string
				dst  *string
			}{
				{"output", &p.Output},
				{"catalog-backend", &p.CatalogBackend},
				{"meta-db", &p.MetaDBPath},
				{"duckdb", &p.DuckDBPath},
			} {
				if flags.Changed(f.name) {
					*f.dst, _ = flags.GetString(f.name)
				}
			}
			cfg.Profiles[args[0]] = p
			if len(cfg.Profiles) == 1 {
				cfg.CurrentProfile = args[0]
			}
			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Saved profile %q to %s\n", args[0], ConfigPath())
			return nil
		},
	}
}

func newConfigUseProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use-profile <name>",
		Short: "Make a saved profile the default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadOrInitUserConfig()
			if err != nil {
				return err
			}
			if _, ok := cfg.Profiles[args[0]]; !ok {
				return fmt.Errorf("profile %q not found", args[0])
			}
			cfg.CurrentProfile = args[0]
			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Switched to profile %q\n", args[0])
			return nil
		},
	}
}

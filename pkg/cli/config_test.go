package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserConfig_ActiveProfile(t *testing.T) {
	cfg := &UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {MetaDBPath: "meta.sqlite", Output: "table"},
			"lake":    {CatalogBackend: "duckdb", DuckDBPath: "lake.duckdb", Output: "json"},
		},
	}

	tests := []struct {
		name        string
		override    string
		wantBackend string
		wantOutput  string
		wantErr     string
	}{
		{name: "uses current profile", wantOutput: "table"},
		{name: "override", override: "lake", wantBackend: "duckdb", wantOutput: "json"},
		{name: "missing profile", override: "nope", wantErr: `profile "nope" not found`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := cfg.ActiveProfile(tt.override)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBackend, p.CatalogBackend)
			assert.Equal(t, tt.wantOutput, p.Output)
		})
	}
}

func TestLoadSaveUserConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	require.NoError(t, SaveUserConfig(&UserConfig{
		CurrentProfile: "test",
		Profiles: map[string]Profile{
			"test": {CatalogBackend: "sqlite", MetaDBPath: "/tmp/meta.sqlite"},
		},
	}))

	_, err := os.Stat(filepath.Join(dir, ".lakewriter", "config.yaml"))
	require.NoError(t, err)

	loaded, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "test", loaded.CurrentProfile)
	require.Contains(t, loaded.Profiles, "test")
	assert.Equal(t, "/tmp/meta.sqlite", loaded.Profiles["test"].MetaDBPath)
}

func TestLoadUserConfig_NotFound(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := LoadUserConfig()
	require.Error(t, err)
}

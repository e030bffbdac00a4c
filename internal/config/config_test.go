package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/vatflow/internal/common"
)

func TestLoadDefaults(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, filepath.Join(home, ".config/vatflow/vatflow.db"), cfg.Database.Path)
	assert.Equal(t, 100, cfg.Import.BatchSize)
	assert.Equal(t, 1000, cfg.Import.ReplaceBatchSize)
	assert.Equal(t, 50, cfg.Display.PageSize)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Owner.ID)
}

func TestLoadOverrides(t *testing.T) {
	v := viper.New()
	v.Set("database.driver", " Postgres ")
	v.Set("database.dsn", "postgres://u:p@db/x")
	v.Set("owner.id", " u-1 ")
	v.Set("import.batch_size", 25)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "u-1", cfg.Owner.ID)
	assert.Equal(t, "u-1", cfg.OwnerName())
	assert.Equal(t, 25, cfg.Import.BatchSize)

	v.Set("owner.name", "Ada")
	cfg, err = Load(v)
	require.NoError(t, err)
	assert.Equal(t, "Ada", cfg.OwnerName())
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		set  map[string]any
		want error
		name string
	}{
		{name: "postgres without dsn", set: map[string]any{"database.driver": "postgres"}, want: common.ErrMissingConfig},
		{name: "unknown driver", set: map[string]any{"database.driver": "mysql"}, want: common.ErrInvalidConfig},
		{name: "empty sqlite path", set: map[string]any{"database.path": ""}, want: common.ErrMissingConfig},
		{name: "zero batch", set: map[string]any{"import.batch_size": 0}, want: common.ErrInvalidConfig},
		{name: "negative page size", set: map[string]any{"display.page_size": -1}, want: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := Load(v)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("VATFLOW_TEST_DIR", "/data")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/x.db", filepath.Join(home, "x.db")},
		{"$VATFLOW_TEST_DIR/x.db", "/data/x.db"},
		{"/abs/x.db", "/abs/x.db"},
		{"~other/x.db", "~other/x.db"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/vatflow/internal/common"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the resolved application configuration.
type Config struct {
	Database DatabaseConfig
	Owner    OwnerConfig
	Logging  LoggingConfig
	Import   ImportConfig
	Display  DisplayConfig
}

// DatabaseConfig selects and locates the record store.
type DatabaseConfig struct {
	Driver string
	Path   string
	DSN    string
	Debug  bool
}

// OwnerConfig identifies the acting user. Records and imports are scoped
// to ID; Name is stamped on new import manifests.
type OwnerConfig struct {
	ID   string
	Name string
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string
	Format string
}

// ImportConfig sizes persistence batches.
type ImportConfig struct {
	BatchSize        int
	ReplaceBatchSize int
}

// DisplayConfig controls paginated views.
type DisplayConfig struct {
	PageSize int
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "~/.config/vatflow/vatflow.db")
	v.SetDefault("database.debug", false)
	v.SetDefault("import.batch_size", 100)
	v.SetDefault("import.replace_batch_size", 1000)
	v.SetDefault("display.page_size", 50)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads a Config from v after applying defaults.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		Database: DatabaseConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("database.driver"))),
			Path:   ExpandPath(v.GetString("database.path")),
			DSN:    v.GetString("database.dsn"),
			Debug:  v.GetBool("database.debug"),
		},
		Owner: OwnerConfig{
			ID:   strings.TrimSpace(v.GetString("owner.id")),
			Name: strings.TrimSpace(v.GetString("owner.name")),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Import: ImportConfig{
			BatchSize:        v.GetInt("import.batch_size"),
			ReplaceBatchSize: v.GetInt("import.replace_batch_size"),
		},
		Display: DisplayConfig{
			PageSize: v.GetInt("display.page_size"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot default.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("%w: database.path is required for sqlite", common.ErrMissingConfig)
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("%w: database.dsn is required for postgres", common.ErrMissingConfig)
		}
	default:
		return fmt.Errorf("%w: unknown database.driver %q", common.ErrInvalidConfig, c.Database.Driver)
	}

	if c.Import.BatchSize <= 0 || c.Import.ReplaceBatchSize <= 0 {
		return fmt.Errorf("%w: import batch sizes must be positive", common.ErrInvalidConfig)
	}
	if c.Display.PageSize <= 0 {
		return fmt.Errorf("%w: display.page_size must be positive", common.ErrInvalidConfig)
	}
	return nil
}

// OwnerName is the name stamped on manifests, falling back to the id.
func (c *Config) OwnerName() string {
	if c.Owner.Name != "" {
		return c.Owner.Name
	}
	return c.Owner.ID
}

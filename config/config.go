package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// EngineFile selects the sequential text file ledger engine.
	EngineFile = "file"

	// EnginePostgres selects the PostgreSQL ledger engine.
	EnginePostgres = "postgres"

	// DriverPGX connects the postgres engine through a pgxpool.Pool.
	DriverPGX = "pgx"

	// DriverSQL connects the postgres engine through database/sql with lib/pq.
	DriverSQL = "sql"

	// DriverSQLX connects the postgres engine through sqlx with lib/pq.
	DriverSQLX = "sqlx"

	// CatalogSourceText reads the catalog from its semicolon-delimited text file.
	CatalogSourceText = "text"

	// CatalogSourceSQLite reads the catalog from a SQLite database filled by "catalog import".
	CatalogSourceSQLite = "sqlite"

	// FormatText renders log records as key=value text.
	FormatText = "text"

	// FormatJSON renders log records as JSON objects.
	FormatJSON = "json"
)

const (
	envLedgerEngine      = "LEDGER_ENGINE"
	envLedgerPath        = "LEDGER_PATH"
	envLedgerPostgresDSN = "LEDGER_POSTGRES_DSN"
	envCatalogPath       = "CATALOG_PATH"
	envLogLevel          = "LOG_LEVEL"
	envLogFormat         = "LOG_FORMAT"
)

var (
	// ErrReadingConfigFailed is returned when the configuration file can not be read or parsed.
	ErrReadingConfigFailed = errors.New("reading the configuration failed")

	// ErrInvalidConfig is returned when a configuration value is not allowed.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the complete configuration of the lending ledger tools.
type Config struct {
	Ledger  LedgerConfig  `yaml:"ledger"`
	Catalog CatalogConfig `yaml:"catalog"`
	Log     LogConfig     `yaml:"log"`
}

// LedgerConfig selects and configures the ledger engine.
type LedgerConfig struct {
	Engine   string         `yaml:"engine"`
	Path     string         `yaml:"path"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig configures the PostgreSQL ledger engine.
type PostgresConfig struct {
	DSN    string `yaml:"dsn"`
	Driver string `yaml:"driver"`
	Table  string `yaml:"table"`
}

// CatalogConfig locates the book catalog.
type CatalogConfig struct {
	Source     string `yaml:"source"`
	Path       string `yaml:"path"`
	SQLitePath string `yaml:"sqlite_path"`
}

// LogConfig configures the slog logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`

	// OTel additionally bridges ledger engine logs to the global OpenTelemetry logger provider.
	OTel bool `yaml:"otel"`
}

// Default returns the configuration used when neither a file nor the environment say otherwise.
func Default() Config {
	return Config{
		Ledger: LedgerConfig{
			Engine: EngineFile,
			Path:   "data/logfile.txt",
			Postgres: PostgresConfig{
				Driver: DriverPGX,
				Table:  "ledger_actions",
			},
		},
		Catalog: CatalogConfig{
			Source:     CatalogSourceText,
			Path:       "data/book_info.txt",
			SQLitePath: "data/catalog.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: FormatText,
		},
	}
}

// Load reads the configuration file at path (if path is not empty),
// applies the process environment and validates the result.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, lookupEnv func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Join(ErrReadingConfigFailed, err)
		}

		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)

		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, errors.Join(ErrReadingConfigFailed, fmt.Errorf("%s: %w", path, err))
		}
	}

	cfg.applyEnv(lookupEnv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookupEnv func(string) (string, bool)) {
	overrides := []struct {
		name   string
		target *string
	}{
		{envLedgerEngine, &c.Ledger.Engine},
		{envLedgerPath, &c.Ledger.Path},
		{envLedgerPostgresDSN, &c.Ledger.Postgres.DSN},
		{envCatalogPath, &c.Catalog.Path},
		{envLogLevel, &c.Log.Level},
		{envLogFormat, &c.Log.Format},
	}

	for _, o := range overrides {
		if value, ok := lookupEnv(o.name); ok && strings.TrimSpace(value) != "" {
			*o.target = strings.TrimSpace(value)
		}
	}
}

// Validate checks that every value is allowed and that the selected engine is complete.
func (c Config) Validate() error {
	switch c.Ledger.Engine {
	case EngineFile:
		if c.Ledger.Path == "" {
			return invalid("ledger.path must not be empty for the %s engine", EngineFile)
		}

	case EnginePostgres:
		if c.Ledger.Postgres.DSN == "" {
			return invalid("ledger.postgres.dsn must not be empty for the %s engine", EnginePostgres)
		}

		switch c.Ledger.Postgres.Driver {
		case DriverPGX, DriverSQL, DriverSQLX:
		default:
			return invalid("unknown ledger.postgres.driver %q", c.Ledger.Postgres.Driver)
		}

		if c.Ledger.Postgres.Table == "" {
			return invalid("ledger.postgres.table must not be empty")
		}

	default:
		return invalid("unknown ledger.engine %q", c.Ledger.Engine)
	}

	switch c.Catalog.Source {
	case CatalogSourceText:
		if c.Catalog.Path == "" {
			return invalid("catalog.path must not be empty")
		}

	case CatalogSourceSQLite:
		if c.Catalog.SQLitePath == "" {
			return invalid("catalog.sqlite_path must not be empty")
		}

	default:
		return invalid("unknown catalog.source %q", c.Catalog.Source)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}

	switch c.Log.Format {
	case FormatText, FormatJSON:
	default:
		return invalid("unknown log.format %q", c.Log.Format)
	}

	return nil
}

// SlogLevel converts the configured level name into a slog.Level.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level

	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, invalid("unknown log.level %q", c.Level)
	}

	return level, nil
}

// NewLogger builds a slog.Logger writing to w in the configured format and level.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}

	options := &slog.HandlerOptions{Level: level}

	if c.Format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, options))
	}

	return slog.New(slog.NewTextHandler(w, options))
}

func invalid(format string, args ...any) error {
	return errors.Join(ErrInvalidConfig, fmt.Errorf(format, args...))
}

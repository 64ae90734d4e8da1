// Package config handles sync configuration loading and validation.
//
// Configuration is an immutable value: every field is set before the run
// starts, validated once, and never mutated afterwards. Sources compose as
// flags > environment > YAML file > defaults.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vingov/hudi/internal/domain"
	"github.com/vingov/hudi/internal/storage"
)

// Storage integration types.
const (
	IntegrationS3  = "s3"
	IntegrationGCS = "gcs"
)

// StorageIntegration references the credentials the engine and the sync
// process use to reach the table's storage. It maps onto an engine storage
// secret, the analog of a warehouse stage or storage integration.
type StorageIntegration struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"` // s3 | gcs

	// S3 fields.
	KeyID    string `yaml:"key_id"`
	Secret   string `yaml:"secret"`
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region"`

	// GCS fields.
	KeyFilePath string `yaml:"key_file_path"`
}

// Validate checks the integration is internally consistent.
func (s *StorageIntegration) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("storage integration name is required")
	}
	switch s.Type {
	case IntegrationS3:
		if s.KeyID == "" || s.Secret == "" {
			return fmt.Errorf("storage integration %q: key_id and secret are required for type s3", s.Name)
		}
	case IntegrationGCS:
		if s.KeyFilePath == "" {
			return fmt.Errorf("storage integration %q: key_file_path is required for type gcs", s.Name)
		}
	default:
		return fmt.Errorf("storage integration %q: unknown type %q (want %s or %s)",
			s.Name, s.Type, IntegrationS3, IntegrationGCS)
	}
	return nil
}

// TableConfig describes one hudi table to sync.
type TableConfig struct {
	Name                 string   `yaml:"name"`
	BasePath             string   `yaml:"base_path"`
	PartitionFields      []string `yaml:"partitioned_by"`
	PartitionExtractExpr string   `yaml:"partition_extract_expr"`
}

// Validate checks the per-table required fields.
func (t *TableConfig) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("table name is required")
	}
	if t.BasePath == "" {
		return fmt.Errorf("table %q: base_path is required", t.Name)
	}
	if len(t.PartitionFields) > 0 && t.PartitionExtractExpr == "" {
		return fmt.Errorf("table %q: partition_extract_expr is required when partitioned_by is set", t.Name)
	}
	return nil
}

// Config is the full sync configuration for one run or one daemon process.
type Config struct {
	// EngineDSN is the DuckDB database path. Empty means in-memory, which
	// only makes sense for ad-hoc inspection.
	EngineDSN string `yaml:"engine_dsn"`

	// TargetCatalog and TargetSchema name the engine namespace to create
	// objects in. TargetCatalog may be empty.
	TargetCatalog string `yaml:"target_catalog"`
	TargetSchema  string `yaml:"target_schema"`

	LogLevel string `yaml:"log_level"`

	// Schedule is a cron expression (robfig/cron syntax, @every included)
	// for daemon mode. Empty means run once.
	Schedule string `yaml:"schedule"`

	StorageIntegration *StorageIntegration `yaml:"storage_integration"`

	Tables []TableConfig `yaml:"tables"`
}

// LoadFile reads a YAML config file. The caller applies env overlays,
// defaults, and validation afterwards.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyEnv fills fields that are still unset from HUDI_SYNC_* environment
// variables. Flags and file values take precedence.
func (c *Config) ApplyEnv() {
	setIfEmpty(&c.EngineDSN, "HUDI_SYNC_ENGINE_DSN")
	setIfEmpty(&c.TargetCatalog, "HUDI_SYNC_TARGET_CATALOG")
	setIfEmpty(&c.TargetSchema, "HUDI_SYNC_TARGET_SCHEMA")
	setIfEmpty(&c.LogLevel, "HUDI_SYNC_LOG_LEVEL")
	setIfEmpty(&c.Schedule, "HUDI_SYNC_SCHEDULE")

	if c.StorageIntegration != nil {
		setIfEmpty(&c.StorageIntegration.KeyID, "HUDI_SYNC_S3_KEY_ID")
		setIfEmpty(&c.StorageIntegration.Secret, "HUDI_SYNC_S3_SECRET")
		setIfEmpty(&c.StorageIntegration.Endpoint, "HUDI_SYNC_S3_ENDPOINT")
		setIfEmpty(&c.StorageIntegration.Region, "HUDI_SYNC_S3_REGION")
		setIfEmpty(&c.StorageIntegration.KeyFilePath, "HUDI_SYNC_GCS_KEY_FILE")
	}
}

func setIfEmpty(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}

// ApplyDefaults fills the remaining optional fields.
func (c *Config) ApplyDefaults() {
	if c.TargetSchema == "" {
		c.TargetSchema = "main"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks the configuration is complete and consistent.
func (c *Config) Validate() error {
	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table is required")
	}
	seen := make(map[string]bool, len(c.Tables))
	for i := range c.Tables {
		if err := c.Tables[i].Validate(); err != nil {
			return err
		}
		if seen[c.Tables[i].Name] {
			return fmt.Errorf("duplicate table %q", c.Tables[i].Name)
		}
		seen[c.Tables[i].Name] = true
	}
	if c.StorageIntegration != nil {
		if err := c.StorageIntegration.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Table builds the immutable domain table value for one configured table.
func (c *Config) Table(tc TableConfig) domain.Table {
	t := domain.Table{
		Name:                 tc.Name,
		BasePath:             tc.BasePath,
		Type:                 domain.TableTypeCopyOnWrite,
		PartitionFields:      tc.PartitionFields,
		PartitionExtractExpr: tc.PartitionExtractExpr,
		TargetCatalog:        c.TargetCatalog,
		TargetSchema:         c.TargetSchema,
	}
	if c.StorageIntegration != nil {
		t.StorageIntegration = c.StorageIntegration.Name
	}
	return t
}

// StorageOptions maps the integration credentials onto storage access options.
func (c *Config) StorageOptions() storage.Options {
	if c.StorageIntegration == nil {
		return storage.Options{}
	}
	return storage.Options{
		S3KeyID:        c.StorageIntegration.KeyID,
		S3Secret:       c.StorageIntegration.Secret,
		S3Region:       c.StorageIntegration.Region,
		S3Endpoint:     c.StorageIntegration.Endpoint,
		GCSKeyFilePath: c.StorageIntegration.KeyFilePath,
	}
}

// LoadDotEnv reads a .env file and sets any variables not already in the
// environment. Lines must be in KEY=VALUE format. Comments (#) and blank
// lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

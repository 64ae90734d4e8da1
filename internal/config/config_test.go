package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vingov/hudi/internal/domain"
)

func validConfig() *Config {
	return &Config{
		EngineDSN:    "lake.duckdb",
		TargetSchema: "main",
		LogLevel:     "info",
		Tables: []TableConfig{{
			Name:                 "stock_ticks",
			BasePath:             "/tables/stock_ticks",
			PartitionFields:      []string{"date"},
			PartitionExtractExpr: `to_date(substr(filename, 30, 10)) AS "date"`,
		}},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "no_tables",
			mutate:  func(c *Config) { c.Tables = nil },
			wantErr: "at least one table is required",
		},
		{
			name:    "missing_table_name",
			mutate:  func(c *Config) { c.Tables[0].Name = "" },
			wantErr: "table name is required",
		},
		{
			name:    "missing_base_path",
			mutate:  func(c *Config) { c.Tables[0].BasePath = "" },
			wantErr: "base_path is required",
		},
		{
			name: "partitioned_without_expr",
			mutate: func(c *Config) {
				c.Tables[0].PartitionExtractExpr = ""
			},
			wantErr: "partition_extract_expr is required",
		},
		{
			name: "duplicate_table",
			mutate: func(c *Config) {
				c.Tables = append(c.Tables, c.Tables[0])
			},
			wantErr: "duplicate table",
		},
		{
			name: "s3_integration_without_keys",
			mutate: func(c *Config) {
				c.StorageIntegration = &StorageIntegration{Name: "int", Type: IntegrationS3}
			},
			wantErr: "key_id and secret are required",
		},
		{
			name: "gcs_integration_without_key_file",
			mutate: func(c *Config) {
				c.StorageIntegration = &StorageIntegration{Name: "int", Type: IntegrationGCS}
			},
			wantErr: "key_file_path is required",
		},
		{
			name: "unknown_integration_type",
			mutate: func(c *Config) {
				c.StorageIntegration = &StorageIntegration{Name: "int", Type: "azure"}
			},
			wantErr: "unknown type",
		},
		{
			name: "integration_without_name",
			mutate: func(c *Config) {
				c.StorageIntegration = &StorageIntegration{Type: IntegrationS3}
			},
			wantErr: "storage integration name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	assert.Equal(t, "main", cfg.TargetSchema)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestApplyEnvFillsUnsetOnly(t *testing.T) {
	t.Setenv("HUDI_SYNC_ENGINE_DSN", "env.duckdb")
	t.Setenv("HUDI_SYNC_TARGET_SCHEMA", "env_schema")

	cfg := &Config{TargetSchema: "explicit"}
	cfg.ApplyEnv()
	assert.Equal(t, "env.duckdb", cfg.EngineDSN)
	assert.Equal(t, "explicit", cfg.TargetSchema)
}

func TestApplyEnvIntegrationCredentials(t *testing.T) {
	t.Setenv("HUDI_SYNC_S3_KEY_ID", "AKIA")
	t.Setenv("HUDI_SYNC_S3_SECRET", "s3cr3t")

	cfg := &Config{StorageIntegration: &StorageIntegration{Name: "int", Type: IntegrationS3}}
	cfg.ApplyEnv()
	require.NoError(t, cfg.StorageIntegration.Validate())
	assert.Equal(t, "AKIA", cfg.StorageIntegration.KeyID)
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{level: "debug", want: slog.LevelDebug},
		{level: "info", want: slog.LevelInfo},
		{level: "WARN", want: slog.LevelWarn},
		{level: "error", want: slog.LevelError},
		{level: "", want: slog.LevelInfo},
		{level: "bogus", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.level}
		assert.Equal(t, tt.want, cfg.SlogLevel(), "level %q", tt.level)
	}
}

func TestTable(t *testing.T) {
	cfg := validConfig()
	cfg.TargetCatalog = "lake"
	cfg.StorageIntegration = &StorageIntegration{Name: "hudi_int", Type: IntegrationGCS, KeyFilePath: "/k.json"}

	table := cfg.Table(cfg.Tables[0])
	assert.Equal(t, "stock_ticks", table.Name)
	assert.Equal(t, domain.TableTypeCopyOnWrite, table.Type)
	assert.Equal(t, "lake", table.TargetCatalog)
	assert.Equal(t, "main", table.TargetSchema)
	assert.Equal(t, "hudi_int", table.StorageIntegration)
	assert.Equal(t, "stock_ticks_versions", table.VersionsName())
	assert.Equal(t, "stock_ticks", table.SnapshotViewName())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine_dsn: lake.duckdb
target_schema: analytics
schedule: "@every 5m"
storage_integration:
  name: hudi_int
  type: gcs
  key_file_path: /keys/sa.json
tables:
  - name: stock_ticks
    base_path: gs://hudi-demo/stock_ticks_cow
    partitioned_by: [date]
    partition_extract_expr: to_date(substr(filename, 30, 10)) AS "date"
`), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "lake.duckdb", cfg.EngineDSN)
	assert.Equal(t, "analytics", cfg.TargetSchema)
	assert.Equal(t, "@every 5m", cfg.Schedule)
	require.Len(t, cfg.Tables, 1)
	assert.Equal(t, []string{"date"}, cfg.Tables[0].PartitionFields)

	opts := cfg.StorageOptions()
	assert.Equal(t, "/keys/sa.json", opts.GCSKeyFilePath)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"# comment\nHUDI_SYNC_TEST_A=one\nHUDI_SYNC_TEST_B=\"quoted\"\n"), 0o644))
	t.Setenv("HUDI_SYNC_TEST_A", "")
	t.Setenv("HUDI_SYNC_TEST_B", "")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "one", os.Getenv("HUDI_SYNC_TEST_A"))
	assert.Equal(t, "quoted", os.Getenv("HUDI_SYNC_TEST_B"))
}

func TestLoadDotEnvMissingFileIsNotAnError(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

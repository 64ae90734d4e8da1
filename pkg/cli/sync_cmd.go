package cli

import (
	"github.com/spf13/cobra"

	"github.com/vingov/hudi/internal/config"
)

func newSyncCmd() *cobra.Command {
	var (
		tableName            string
		basePath             string
		partitionFields      []string
		partitionExtractExpr string
		engineDSN            string
		targetCatalog        string
		targetSchema         string
		integrationName      string
		integrationType      string
		logLevel             string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync one hudi table into the engine",
		Example: `  hudi-sync sync \
    --table-name stock_ticks \
    --base-path gs://hudi-demo/stock_ticks_cow \
    --partitioned-by date \
    --partition-extract-expr "CAST(regexp_extract(filename, 'date=([0-9-]+)', 1) AS DATE) AS \"date\"" \
    --engine-dsn lake.duckdb \
    --storage-integration hudi_demo_int --storage-integration-type gcs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(".env"); err != nil {
				return err
			}

			cfg := &config.Config{
				EngineDSN:     engineDSN,
				TargetCatalog: targetCatalog,
				TargetSchema:  targetSchema,
				LogLevel:      logLevel,
				Tables: []config.TableConfig{{
					Name:                 tableName,
					BasePath:             basePath,
					PartitionFields:      partitionFields,
					PartitionExtractExpr: partitionExtractExpr,
				}},
			}
			if integrationName != "" {
				cfg.StorageIntegration = &config.StorageIntegration{
					Name: integrationName,
					Type: integrationType,
				}
			}
			cfg.ApplyEnv()
			cfg.ApplyDefaults()
			if err := cfg.Validate(); err != nil {
				return err
			}

			// Config is valid; runtime failures should not reprint usage.
			cmd.SilenceUsage = true
			return syncAll(cmd.Context(), cfg, newLogger(cfg))
		},
	}

	cmd.Flags().StringVar(&tableName, "table-name", "", "hudi table name (required)")
	cmd.Flags().StringVar(&basePath, "base-path", "", "table base path: local dir, s3:// or gs:// URI (required)")
	cmd.Flags().StringSliceVar(&partitionFields, "partitioned-by", nil, "ordered partition field names")
	cmd.Flags().StringVar(&partitionExtractExpr, "partition-extract-expr", "",
		"engine expression deriving partition values from a file's path")
	cmd.Flags().StringVar(&engineDSN, "engine-dsn", "", "DuckDB database path")
	cmd.Flags().StringVar(&targetCatalog, "target-catalog", "", "engine catalog to create objects in")
	cmd.Flags().StringVar(&targetSchema, "target-schema", "", "engine schema to create objects in (default main)")
	cmd.Flags().StringVar(&integrationName, "storage-integration", "", "storage integration (secret) name")
	cmd.Flags().StringVar(&integrationType, "storage-integration-type", "s3", "storage integration type: s3 or gcs")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	_ = cmd.MarkFlagRequired("table-name")
	_ = cmd.MarkFlagRequired("base-path")

	return cmd
}

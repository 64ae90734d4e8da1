// Package duckdb implements the catalog capability interface for DuckDB.
//
// The raw file catalog is a view over read_parquet with a recursive glob,
// which re-scans storage on every query. Newly written files are therefore
// visible to the snapshot join as soon as the manifest lists them, closing
// the staleness gap that catalog implementations snapshotting the file list
// at creation time would have. The view definitions themselves are still
// create-if-absent and never refreshed.
package duckdb

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/vingov/hudi/internal/ddl"
	"github.com/vingov/hudi/internal/domain"
)

// Client wraps a DuckDB connection and manages the sync catalog objects in
// one target catalog/schema.
type Client struct {
	db      *sql.DB
	catalog string
	schema  string
	logger  *slog.Logger
}

// NewClient creates a Client. catalog may be empty when the connection has
// a single default catalog.
func NewClient(db *sql.DB, catalog, schema string, logger *slog.Logger) *Client {
	return &Client{db: db, catalog: catalog, schema: schema, logger: logger}
}

// Compile-time interface check.
var _ domain.CatalogClient = (*Client)(nil)

// ObjectExists reports whether a table or view with the given name exists
// in the target catalog/schema.
func (c *Client) ObjectExists(ctx context.Context, name string) (bool, error) {
	query := "SELECT count(*) FROM information_schema.tables WHERE table_schema = ? AND table_name = ?"
	args := []any{c.schema, name}
	if c.catalog != "" {
		query += " AND table_catalog = ?"
		args = append(args, c.catalog)
	}

	var n int
	if err := c.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, domain.NewCatalogOperationError("check", name, err)
	}
	return n > 0, nil
}

// EnsureRawFileCatalog creates the {table}_versions view if absent.
// An existing view is left untouched: its definition is not re-validated.
func (c *Client) EnsureRawFileCatalog(ctx context.Context, table domain.Table) (bool, error) {
	name := table.VersionsName()
	exists, err := c.ObjectExists(ctx, name)
	if err != nil {
		return false, err
	}
	if exists {
		c.logger.Debug("raw file catalog already exists", "object", name)
		return false, nil
	}

	// The extraction expression is operator-supplied and not validated here;
	// surface it before creation so a mismatch is diagnosable from the logs.
	c.logger.Info("creating raw file catalog",
		"object", name,
		"base_path", table.BasePath,
		"partition_fields", strings.Join(table.PartitionFields, ","),
		"partition_extract_expr", table.PartitionExtractExpr)

	stmt, err := ddl.CreateVersionsView(c.catalog, c.schema, name, table.BasePath, table.PartitionExtractExpr)
	if err != nil {
		return false, domain.NewCatalogOperationError("create", name, err)
	}
	if _, err := c.db.ExecContext(ctx, stmt); err != nil {
		return false, domain.NewCatalogOperationError("create", name, err)
	}
	return true, nil
}

// EnsureSnapshotView creates the snapshot view if absent. The view joins
// the versions view with the manifest at manifestLocation by file path,
// referencing the manifest by location so later overwrites are picked up
// without redefining the view.
func (c *Client) EnsureSnapshotView(ctx context.Context, table domain.Table, manifestLocation string) (bool, error) {
	name := table.SnapshotViewName()
	exists, err := c.ObjectExists(ctx, name)
	if err != nil {
		return false, err
	}
	if exists {
		c.logger.Debug("snapshot view already exists", "object", name)
		return false, nil
	}

	c.logger.Info("creating snapshot view",
		"object", name,
		"versions", table.VersionsName(),
		"manifest", manifestLocation)

	stmt, err := ddl.CreateSnapshotView(c.catalog, c.schema, name, table.VersionsName(), manifestLocation)
	if err != nil {
		return false, domain.NewCatalogOperationError("create", name, err)
	}
	if _, err := c.db.ExecContext(ctx, stmt); err != nil {
		return false, domain.NewCatalogOperationError("create", name, err)
	}
	return true, nil
}

// EnsureSchema creates the target schema if absent.
func (c *Client) EnsureSchema(ctx context.Context) error {
	stmt, err := ddl.CreateSchemaIfNotExists(c.catalog, c.schema)
	if err != nil {
		return domain.NewCatalogOperationError("create schema", c.schema, err)
	}
	if _, err := c.db.ExecContext(ctx, stmt); err != nil {
		return domain.NewCatalogOperationError("create schema", c.schema, err)
	}
	return nil
}

// EnsureS3Secret creates or replaces an S3 storage secret scoped to the
// table's base path. This is the DuckDB analog of an external stage or
// storage integration.
func (c *Client) EnsureS3Secret(ctx context.Context, name, scope, keyID, secret, endpoint, region string) error {
	stmt, err := ddl.CreateS3Secret(name, scope, keyID, secret, endpoint, region)
	if err != nil {
		return domain.NewCatalogOperationError("create secret", name, err)
	}
	if _, err := c.db.ExecContext(ctx, stmt); err != nil {
		return domain.NewCatalogOperationError("create secret", name, err)
	}
	return nil
}

// EnsureGCSSecret creates or replaces a GCS storage secret scoped to the
// table's base path.
func (c *Client) EnsureGCSSecret(ctx context.Context, name, scope, keyFilePath string) error {
	stmt, err := ddl.CreateGCSSecret(name, scope, keyFilePath)
	if err != nil {
		return domain.NewCatalogOperationError("create secret", name, err)
	}
	if _, err := c.db.ExecContext(ctx, stmt); err != nil {
		return domain.NewCatalogOperationError("create secret", name, err)
	}
	return nil
}

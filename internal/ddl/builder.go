// Package ddl builds DuckDB DDL statements for the sync catalog objects:
// the raw file catalog ("versions" view), the snapshot view, storage
// secrets, and the target schema.
package ddl

import (
	"fmt"
	"strings"
)

// CreateSchemaIfNotExists returns: CREATE SCHEMA IF NOT EXISTS <catalog>."<name>".
func CreateSchemaIfNotExists(catalog, name string) (string, error) {
	qualified, err := qualifiedSchema(catalog, name)
	if err != nil {
		return "", err
	}
	return "CREATE SCHEMA IF NOT EXISTS " + qualified, nil
}

func qualifiedSchema(catalog, name string) (string, error) {
	if catalog != "" {
		if err := ValidateIdentifier(catalog); err != nil {
			return "", fmt.Errorf("invalid catalog name: %w", err)
		}
	}
	if err := ValidateIdentifier(name); err != nil {
		return "", fmt.Errorf("invalid schema name: %w", err)
	}
	if catalog == "" {
		return QuoteIdentifier(name), nil
	}
	return QuoteIdentifier(catalog) + "." + QuoteIdentifier(name), nil
}

// FilePathColumn is the base-relative file path column the versions view
// derives from the scan, and the join key of the snapshot view.
const FilePathColumn = "_hudi_file_path"

// CreateVersionsView returns the DDL for the raw file catalog: a view
// scanning every parquet file physically present under baseURI, exposing
// all data columns, the source file path, a computed base-relative path,
// and any operator-supplied partition columns.
//
// partitionExtractExpr is an engine-native select-list fragment (for
// example `CAST(regexp_extract(filename, 'date=(\d+-\d+-\d+)', 1) AS DATE)
// AS "date"`). It is passed through unvalidated: a mismatched expression
// yields wrong or null partition values, which the engine reports at query
// time, not here.
func CreateVersionsView(catalog, schema, name, baseURI, partitionExtractExpr string) (string, error) {
	qualified, err := qualifiedName(catalog, schema, name)
	if err != nil {
		return "", err
	}
	if baseURI == "" {
		return "", fmt.Errorf("base path is required")
	}

	base := strings.TrimRight(baseURI, "/") + "/"
	glob := base + "**/*.parquet"

	var b strings.Builder
	b.WriteString("CREATE VIEW ")
	b.WriteString(qualified)
	b.WriteString(" AS SELECT r.*, replace(r.filename, ")
	b.WriteString(QuoteLiteral(base))
	b.WriteString(", '') AS ")
	b.WriteString(QuoteIdentifier(FilePathColumn))
	if partitionExtractExpr != "" {
		b.WriteString(", ")
		b.WriteString(partitionExtractExpr)
	}
	b.WriteString(" FROM read_parquet([")
	b.WriteString(QuoteLiteral(glob))
	b.WriteString("], filename = true, union_by_name = true) AS r")
	return b.String(), nil
}

// CreateSnapshotView returns the DDL for the snapshot view: all raw file
// catalog rows whose file path appears in the manifest at manifestURI.
//
// The view references the manifest by location, and the engine re-reads it
// on every query, so a manifest overwrite updates visibility without any
// DDL. The manifest must not move across runs for this to hold.
func CreateSnapshotView(catalog, schema, name, versionsName, manifestURI string) (string, error) {
	qualified, err := qualifiedName(catalog, schema, name)
	if err != nil {
		return "", err
	}
	versionsQualified, err := qualifiedName(catalog, schema, versionsName)
	if err != nil {
		return "", fmt.Errorf("invalid versions object: %w", err)
	}
	if manifestURI == "" {
		return "", fmt.Errorf("manifest location is required")
	}

	return fmt.Sprintf(
		"CREATE VIEW %s AS SELECT v.* FROM %s AS v WHERE v.%s IN ("+
			"SELECT file_path FROM read_csv(%s, header = false, columns = {'file_path': 'VARCHAR'}))",
		qualified,
		versionsQualified,
		QuoteIdentifier(FilePathColumn),
		QuoteLiteral(manifestURI),
	), nil
}

// CreateS3Secret returns a DuckDB DDL statement to create an S3 secret
// scoped to the table's base path.
func CreateS3Secret(name, scope, keyID, secret, endpoint, region string) (string, error) {
	if err := ValidateIdentifier(name); err != nil {
		return "", fmt.Errorf("invalid secret name: %w", err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE OR REPLACE SECRET %s (\n\tTYPE S3", QuoteIdentifier(name))
	fmt.Fprintf(&b, ",\n\tKEY_ID %s", QuoteLiteral(keyID))
	fmt.Fprintf(&b, ",\n\tSECRET %s", QuoteLiteral(secret))
	if endpoint != "" {
		fmt.Fprintf(&b, ",\n\tENDPOINT %s", QuoteLiteral(endpoint))
	}
	if region != "" {
		fmt.Fprintf(&b, ",\n\tREGION %s", QuoteLiteral(region))
	}
	if scope != "" {
		fmt.Fprintf(&b, ",\n\tSCOPE %s", QuoteLiteral(scope))
	}
	b.WriteString("\n)")
	return b.String(), nil
}

// CreateGCSSecret returns a DuckDB DDL statement to create a GCS secret
// scoped to the table's base path.
func CreateGCSSecret(name, scope, keyFilePath string) (string, error) {
	if err := ValidateIdentifier(name); err != nil {
		return "", fmt.Errorf("invalid secret name: %w", err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE OR REPLACE SECRET %s (\n\tTYPE GCS", QuoteIdentifier(name))
	fmt.Fprintf(&b, ",\n\tKEY_FILE_PATH %s", QuoteLiteral(keyFilePath))
	if scope != "" {
		fmt.Fprintf(&b, ",\n\tSCOPE %s", QuoteLiteral(scope))
	}
	b.WriteString("\n)")
	return b.String(), nil
}

// DropSecret returns: DROP SECRET IF EXISTS "<name>". Works for any secret type.
func DropSecret(name string) (string, error) {
	if err := ValidateIdentifier(name); err != nil {
		return "", fmt.Errorf("invalid secret name: %w", err)
	}
	return "DROP SECRET IF EXISTS " + QuoteIdentifier(name), nil
}

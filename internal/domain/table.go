// Package domain defines core types, interfaces, and errors for hudi sync.
package domain

import "path"

// TableType identifies the table variant recorded in hoodie.properties.
type TableType string

// Table type constants. Anything else is unknown and unsupported.
const (
	TableTypeCopyOnWrite TableType = "COPY_ON_WRITE"
	TableTypeMergeOnRead TableType = "MERGE_ON_READ"
)

// ParseTableType maps a hoodie.properties value to a TableType.
// Unrecognized values pass through unchanged so error messages can show them.
func ParseTableType(s string) TableType {
	switch TableType(s) {
	case TableTypeCopyOnWrite:
		return TableTypeCopyOnWrite
	case TableTypeMergeOnRead:
		return TableTypeMergeOnRead
	default:
		return TableType(s)
	}
}

// Suffixes for the catalog objects derived from the table name.
const (
	versionsSuffix = "_versions"
)

// Table describes one hudi table to sync into the external engine.
// Immutable for the duration of a sync run.
type Table struct {
	// Name is the table name; the snapshot view is created under this name.
	Name string

	// BasePath is the table's base storage location (local path, s3:// or gs:// URI).
	BasePath string

	// Type is the table variant. Only copy-on-write is supported.
	Type TableType

	// PartitionFields are the ordered partition column names, empty for
	// unpartitioned tables.
	PartitionFields []string

	// PartitionExtractExpr is an engine-native expression evaluated against
	// each file's path to derive the partition column values. Supplied by
	// the operator and passed through to the engine unvalidated.
	PartitionExtractExpr string

	// TargetCatalog and TargetSchema name the engine namespace the catalog
	// objects are created in. TargetCatalog may be empty for engines with a
	// single default catalog.
	TargetCatalog string
	TargetSchema  string

	// StorageIntegration references the engine's storage credential used to
	// read raw files and the manifest.
	StorageIntegration string
}

// VersionsName returns the raw file catalog object name, {table}_versions.
func (t Table) VersionsName() string { return t.Name + versionsSuffix }

// SnapshotViewName returns the snapshot view object name. It is the table
// name itself so queries address the table transparently.
func (t Table) SnapshotViewName() string { return t.Name }

// DataFile identifies one physical data file by partition path and file name.
// Files are never mutated once written; superseded versions remain present
// until the table's own cleaner removes them.
type DataFile struct {
	// PartitionPath is the '/'-separated path relative to the base path,
	// empty for unpartitioned tables.
	PartitionPath string

	// FileName is the base file name.
	FileName string
}

// RelPath returns the file path relative to the table base path.
func (f DataFile) RelPath() string {
	if f.PartitionPath == "" {
		return f.FileName
	}
	return path.Join(f.PartitionPath, f.FileName)
}

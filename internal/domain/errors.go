package domain

import "fmt"

// UnreadableTableError indicates the table's metadata could not be read.
type UnreadableTableError struct {
	BasePath string
	Err      error
}

func (e *UnreadableTableError) Error() string {
	return fmt.Sprintf("read hudi table at %q: %v", e.BasePath, e.Err)
}

func (e *UnreadableTableError) Unwrap() error { return e.Err }

// UnsupportedTableTypeError indicates a table variant this tool cannot sync.
// It is raised by the pre-flight check, before any external object is touched.
type UnsupportedTableTypeError struct {
	Type TableType
}

func (e *UnsupportedTableTypeError) Error() string {
	return fmt.Sprintf("table type %q is not supported, only %s tables can be synced", string(e.Type), TableTypeCopyOnWrite)
}

// ManifestWriteError indicates the manifest artifact could not be published.
// The prior manifest, if any, is still intact.
type ManifestWriteError struct {
	Location string
	Err      error
}

func (e *ManifestWriteError) Error() string {
	return fmt.Sprintf("write manifest %q: %v", e.Location, e.Err)
}

func (e *ManifestWriteError) Unwrap() error { return e.Err }

// CatalogOperationError indicates an existence check or DDL against the
// external engine failed. Effects of earlier completed steps persist.
type CatalogOperationError struct {
	Object string
	Op     string
	Err    error
}

func (e *CatalogOperationError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Object, e.Err)
}

func (e *CatalogOperationError) Unwrap() error { return e.Err }

// SyncError is the single top-level error surfaced for a failed sync run.
// It carries the table name and the original cause.
type SyncError struct {
	Table string
	Err   error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync hudi table %q: %v", e.Table, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// NewUnreadableTableError wraps err as an UnreadableTableError.
func NewUnreadableTableError(basePath string, err error) *UnreadableTableError {
	return &UnreadableTableError{BasePath: basePath, Err: err}
}

// NewUnsupportedTableTypeError creates an UnsupportedTableTypeError.
func NewUnsupportedTableTypeError(t TableType) *UnsupportedTableTypeError {
	return &UnsupportedTableTypeError{Type: t}
}

// NewManifestWriteError wraps err as a ManifestWriteError.
func NewManifestWriteError(location string, err error) *ManifestWriteError {
	return &ManifestWriteError{Location: location, Err: err}
}

// NewCatalogOperationError wraps err as a CatalogOperationError.
func NewCatalogOperationError(op, object string, err error) *CatalogOperationError {
	return &CatalogOperationError{Object: object, Op: op, Err: err}
}

// NewSyncError wraps err as a SyncError for the given table.
func NewSyncError(table string, err error) *SyncError {
	return &SyncError{Table: table, Err: err}
}

package domain

import "context"

// CatalogClient is the capability interface one external engine implements.
// The orchestrator is written against this interface only, so it stays
// engine-agnostic.
//
// Ensure methods are create-if-absent: they return created=false and do
// nothing when the object already exists by name. An existing object is
// never re-validated or redefined, so a raw file catalog created by an
// earlier run keeps its original definition even if the configuration has
// since changed.
type CatalogClient interface {
	// ObjectExists reports whether an object with the given name exists in
	// the target catalog/schema.
	ObjectExists(ctx context.Context, name string) (bool, error)

	// EnsureRawFileCatalog creates the {table}_versions object scanning all
	// physical files under the table base path, with partition columns
	// derived by the table's partition extraction expression.
	EnsureRawFileCatalog(ctx context.Context, table Table) (created bool, err error)

	// EnsureSnapshotView creates the snapshot view joining the raw file
	// catalog and the manifest at manifestLocation on file path. The view
	// references the manifest by location, not by contents, so later
	// manifest overwrites are picked up without redefining the view.
	EnsureSnapshotView(ctx context.Context, table Table, manifestLocation string) (created bool, err error)
}

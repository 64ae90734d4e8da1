// Package sync sequences one snapshot synchronization run:
// detect variant, build manifest, ensure raw file catalog, ensure snapshot
// view. Reconciliation is best-effort forward-only — a failed step aborts
// the run without rolling back earlier steps, and rerunning is the recovery
// mechanism, relying on the create-if-absent existence checks.
package sync

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vingov/hudi/internal/domain"
	"github.com/vingov/hudi/internal/manifest"
	"github.com/vingov/hudi/internal/storage"
	"github.com/vingov/hudi/internal/timeline"
)

// Orchestrator runs sync passes for one table's storage against one engine.
// Steps within a run execute strictly sequentially. Running two sync
// processes against the same table concurrently is not safe; callers must
// serialize runs externally.
type Orchestrator struct {
	store  storage.Storage
	client domain.CatalogClient
	logger *slog.Logger
}

// New creates an Orchestrator.
func New(store storage.Storage, client domain.CatalogClient, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{store: store, client: client, logger: logger}
}

// Sync performs one synchronization run. Any failure is wrapped into a
// SyncError carrying the table name.
func (o *Orchestrator) Sync(ctx context.Context, table domain.Table) error {
	logger := o.logger.With("table", table.Name, "run_id", uuid.NewString())
	if err := o.run(ctx, table, logger); err != nil {
		return domain.NewSyncError(table.Name, err)
	}
	logger.Info("sync complete", "view", table.SnapshotViewName())
	return nil
}

func (o *Orchestrator) run(ctx context.Context, table domain.Table, logger *slog.Logger) error {
	tl, err := timeline.Load(ctx, o.store)
	if err != nil {
		return err
	}

	// Pre-flight variant check. Unsupported tables fail here, before the
	// manifest or any engine object is touched.
	switch tl.TableType {
	case domain.TableTypeCopyOnWrite:
	case domain.TableTypeMergeOnRead:
		return domain.NewUnsupportedTableTypeError(tl.TableType)
	default:
		return domain.NewUnsupportedTableTypeError(tl.TableType)
	}

	if tl.TableName != "" && tl.TableName != table.Name {
		logger.Warn("configured table name differs from hoodie.properties",
			"hoodie_table_name", tl.TableName)
	}

	files := tl.ValidFiles()
	commit, ok := tl.LatestCommit()
	if !ok {
		logger.Info("no completed commits yet, publishing empty manifest")
	} else {
		logger.Info("building manifest", "commit", commit, "valid_files", len(files))
	}

	location, err := manifest.Write(ctx, o.store, files)
	if err != nil {
		return err
	}
	logger.Info("manifest written", "location", location)

	created, err := o.client.EnsureRawFileCatalog(ctx, table)
	if err != nil {
		return err
	}
	logger.Info("raw file catalog reconciled", "object", table.VersionsName(), "created", created)

	created, err = o.client.EnsureSnapshotView(ctx, table, location)
	if err != nil {
		return err
	}
	logger.Info("snapshot view reconciled", "object", table.SnapshotViewName(), "created", created)

	return nil
}

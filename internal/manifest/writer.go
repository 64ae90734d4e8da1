// Package manifest publishes the snapshot manifest artifact.
//
// The manifest is a plain newline-separated listing of the base-relative
// paths of every data file valid as of one commit. It lives at a fixed
// location under the table's metadata directory, so the external engine can
// address it by name alone and each sync run overwrites the same artifact.
package manifest

import (
	"context"
	"strings"

	"github.com/vingov/hudi/internal/domain"
	"github.com/vingov/hudi/internal/storage"
	"github.com/vingov/hudi/internal/timeline"
)

// RelPath is the manifest location relative to the table base path.
const RelPath = timeline.MetaDir + "/manifest/latest-snapshot.csv"

// Write fully overwrites the manifest with the given file set and returns
// the engine-addressable manifest location. The overwrite is atomic from a
// reader's perspective: the storage layer publishes the new contents in a
// single step, so no partial manifest is ever visible. An empty file set
// produces an empty manifest.
func Write(ctx context.Context, store storage.Storage, files []domain.DataFile) (string, error) {
	var b strings.Builder
	for _, f := range files {
		b.WriteString(f.RelPath())
		b.WriteByte('\n')
	}

	location := store.URI(RelPath)
	if err := store.WriteFileAtomic(ctx, RelPath, []byte(b.String())); err != nil {
		return "", domain.NewManifestWriteError(location, err)
	}
	return location, nil
}

// Read parses a manifest back into its listing of relative paths.
// Used by reconciliation diagnostics and tests.
func Read(ctx context.Context, store storage.Storage) ([]string, error) {
	data, err := store.ReadFile(ctx, RelPath)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paths = append(paths, line)
		}
	}
	return paths, nil
}

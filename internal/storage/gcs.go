package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCS implements Storage over a Google Cloud Storage bucket prefix.
//
// A GCS object write only becomes visible when the writer is closed, and it
// replaces the object in one step, so WriteFileAtomic maps onto a single
// writer lifecycle.
type GCS struct {
	client *gcs.Client
	bucket string
	prefix string
}

// NewGCS creates a GCS storage over bucket/prefix. prefix has no leading or
// trailing slash and may be empty.
func NewGCS(client *gcs.Client, bucket, prefix string) *GCS {
	return &GCS{client: client, bucket: bucket, prefix: prefix}
}

var _ Storage = (*GCS)(nil)

func (g *GCS) object(relPath string) string {
	if g.prefix == "" {
		return relPath
	}
	return g.prefix + "/" + relPath
}

// List iterates every object under the prefix.
func (g *GCS) List(ctx context.Context) ([]FileInfo, error) {
	query := &gcs.Query{}
	if g.prefix != "" {
		query.Prefix = g.prefix + "/"
	}

	var files []FileInfo
	it := g.client.Bucket(g.bucket).Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list gs://%s/%s: %w", g.bucket, g.prefix, err)
		}
		rel := attrs.Name
		if g.prefix != "" {
			rel = strings.TrimPrefix(attrs.Name, g.prefix+"/")
		}
		if rel == "" || strings.HasSuffix(rel, "/") {
			continue
		}
		files = append(files, FileInfo{Path: rel, Size: attrs.Size})
	}
	return files, nil
}

// ReadFile fetches the object at relPath.
func (g *GCS) ReadFile(ctx context.Context, relPath string) ([]byte, error) {
	r, err := g.client.Bucket(g.bucket).Object(g.object(relPath)).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", g.URI(relPath), err)
	}
	defer r.Close() //nolint:errcheck
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", g.URI(relPath), err)
	}
	return data, nil
}

// WriteFileAtomic replaces the object at relPath. The new contents become
// visible only when Close succeeds.
func (g *GCS) WriteFileAtomic(ctx context.Context, relPath string, data []byte) error {
	w := g.client.Bucket(g.bucket).Object(g.object(relPath)).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write %s: %w", g.URI(relPath), err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("commit %s: %w", g.URI(relPath), err)
	}
	return nil
}

// URI returns the gs:// URI of relPath.
func (g *GCS) URI(relPath string) string {
	return "gs://" + g.bucket + "/" + g.object(relPath)
}

// BaseURI returns the gs:// URI of the base path.
func (g *GCS) BaseURI() string {
	if g.prefix == "" {
		return "gs://" + g.bucket
	}
	return "gs://" + g.bucket + "/" + g.prefix
}

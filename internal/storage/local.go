package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Local implements Storage over a billy filesystem rooted at the base path.
// Production uses osfs; tests inject memfs.
type Local struct {
	fs       billy.Filesystem
	basePath string
}

// NewLocal creates a Local storage over fs. basePath is only used to build
// engine-addressable URIs; fs is already rooted there.
func NewLocal(fs billy.Filesystem, basePath string) *Local {
	return &Local{fs: fs, basePath: strings.TrimRight(basePath, "/")}
}

var _ Storage = (*Local)(nil)

// List walks the filesystem and returns every regular file.
func (l *Local) List(ctx context.Context) ([]FileInfo, error) {
	var files []FileInfo
	err := util.Walk(l.fs, "/", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if info.IsDir() {
			return nil
		}
		files = append(files, FileInfo{
			Path: strings.TrimPrefix(filepath.ToSlash(p), "/"),
			Size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", l.basePath, err)
	}
	return files, nil
}

// ReadFile returns the contents of the file at relPath.
func (l *Local) ReadFile(_ context.Context, relPath string) ([]byte, error) {
	data, err := util.ReadFile(l.fs, relPath)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", relPath, err)
	}
	return data, nil
}

// WriteFileAtomic writes data to a temporary file in the target directory
// and renames it over relPath. Rename within one directory is atomic, so a
// concurrent reader never observes a partially written file.
func (l *Local) WriteFileAtomic(_ context.Context, relPath string, data []byte) error {
	dir := path.Dir(relPath)
	if err := l.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %q: %w", dir, err)
	}

	tmp, err := util.TempFile(l.fs, dir, path.Base(relPath)+".tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %q: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = l.fs.Remove(tmpName)
		return fmt.Errorf("write temp file %q: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = l.fs.Remove(tmpName)
		return fmt.Errorf("close temp file %q: %w", tmpName, err)
	}

	if err := l.fs.Rename(tmpName, relPath); err != nil {
		_ = l.fs.Remove(tmpName)
		return fmt.Errorf("rename %q to %q: %w", tmpName, relPath, err)
	}
	return nil
}

// URI returns the absolute local path of relPath.
func (l *Local) URI(relPath string) string {
	return l.basePath + "/" + relPath
}

// BaseURI returns the base path.
func (l *Local) BaseURI() string { return l.basePath }

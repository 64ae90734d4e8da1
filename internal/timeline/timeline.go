// Package timeline reads a hudi table's commit timeline and file layout.
//
// A hudi table keeps its metadata under {base}/.hoodie: a hoodie.properties
// file describing the table, and one marker file per timeline instant named
// {instant}.{action}[.{state}]. A data commit is complete when its marker
// has no state suffix; .inflight and .requested markers belong to commits
// still in progress. Data files are named {fileID}_{writeToken}_{instant}.{ext};
// each commit writes whole new file versions (copy-on-write), so within a
// file group only the newest version written by a completed commit is valid.
package timeline

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/vingov/hudi/internal/domain"
	"github.com/vingov/hudi/internal/storage"
)

// Well-known metadata locations under the table base path.
const (
	MetaDir        = ".hoodie"
	PropertiesPath = MetaDir + "/hoodie.properties"
)

// hoodie.properties keys.
const (
	propTableName = "hoodie.table.name"
	propTableType = "hoodie.table.type"
)

// Timeline holds a point-in-time read of the table's metadata and file
// listing. It is loaded once per sync run and has no side effects.
type Timeline struct {
	TableName string
	TableType domain.TableType

	listing   []storage.FileInfo
	completed map[string]bool
	latest    string
}

// Load reads hoodie.properties and the timeline instants from the table's
// storage. Any read failure is an UnreadableTableError.
func Load(ctx context.Context, store storage.Storage) (*Timeline, error) {
	data, err := store.ReadFile(ctx, PropertiesPath)
	if err != nil {
		return nil, domain.NewUnreadableTableError(store.BaseURI(), err)
	}
	props := parseProperties(string(data))
	tableType, ok := props[propTableType]
	if !ok {
		return nil, domain.NewUnreadableTableError(store.BaseURI(),
			fmt.Errorf("%s is missing %s", PropertiesPath, propTableType))
	}

	listing, err := store.List(ctx)
	if err != nil {
		return nil, domain.NewUnreadableTableError(store.BaseURI(), err)
	}

	t := &Timeline{
		TableName: props[propTableName],
		TableType: domain.ParseTableType(tableType),
		listing:   listing,
		completed: make(map[string]bool),
	}
	for _, f := range listing {
		instant, ok := parseCompletedCommit(f.Path)
		if !ok {
			continue
		}
		t.completed[instant] = true
		if instant > t.latest {
			t.latest = instant
		}
	}
	return t, nil
}

// LatestCommit returns the newest completed commit instant, if any.
func (t *Timeline) LatestCommit() (string, bool) {
	return t.latest, t.latest != ""
}

// ValidFiles returns the data files valid as of the latest completed
// commit, sorted by relative path. Files written by in-progress commits and
// file versions superseded by a later completed commit are excluded. An
// empty table yields an empty set.
func (t *Timeline) ValidFiles() []domain.DataFile {
	type version struct {
		instant string
		file    domain.DataFile
	}
	best := make(map[string]version)

	for _, f := range t.listing {
		if f.Path == MetaDir || strings.HasPrefix(f.Path, MetaDir+"/") {
			continue
		}
		dir, name := path.Split(f.Path)
		if strings.HasPrefix(name, ".") {
			// partition metadata markers and hidden files
			continue
		}
		fileID, instant, ok := parseDataFileName(name)
		if !ok {
			continue
		}
		if !t.completed[instant] {
			// written by an in-progress or rolled-back commit
			continue
		}
		file := domain.DataFile{
			PartitionPath: strings.Trim(dir, "/"),
			FileName:      name,
		}
		key := file.PartitionPath + "\x00" + fileID
		if cur, seen := best[key]; !seen || instant > cur.instant {
			best[key] = version{instant: instant, file: file}
		}
	}

	files := make([]domain.DataFile, 0, len(best))
	for _, v := range best {
		files = append(files, v.file)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].RelPath() < files[j].RelPath()
	})
	return files
}

// parseCompletedCommit reports whether relPath is a completed data-commit
// marker directly under .hoodie, returning its instant.
// Completed markers are {instant}.commit or {instant}.replacecommit; any
// extra suffix (.inflight, .requested) means the commit is in progress.
func parseCompletedCommit(relPath string) (string, bool) {
	name, ok := strings.CutPrefix(relPath, MetaDir+"/")
	if !ok || strings.Contains(name, "/") {
		return "", false
	}
	instant, action, ok := strings.Cut(name, ".")
	if !ok || !allDigits(instant) {
		return "", false
	}
	if action != "commit" && action != "replacecommit" {
		return "", false
	}
	return instant, true
}

// dataFileExts are the extensions recognized as hudi base files.
var dataFileExts = map[string]bool{".parquet": true, ".orc": true}

// parseDataFileName splits {fileID}_{writeToken}_{instant}.{ext}.
// The fileID may itself contain underscores; the write token and instant
// are always the last two segments.
func parseDataFileName(name string) (fileID, instant string, ok bool) {
	ext := path.Ext(name)
	if !dataFileExts[ext] {
		return "", "", false
	}
	stem := strings.TrimSuffix(name, ext)
	parts := strings.Split(stem, "_")
	if len(parts) < 3 {
		return "", "", false
	}
	instant = parts[len(parts)-1]
	if !allDigits(instant) {
		return "", "", false
	}
	fileID = strings.Join(parts[:len(parts)-2], "_")
	return fileID, instant, fileID != ""
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseProperties reads java-properties style key=value lines.
// Blank lines and lines starting with # or ! are skipped.
func parseProperties(s string) map[string]string {
	props := make(map[string]string)
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		props[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return props
}

package timeline

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vingov/hudi/internal/domain"
	"github.com/vingov/hudi/internal/storage"
)

const cowProperties = "hoodie.table.name=stock_ticks\nhoodie.table.type=COPY_ON_WRITE\n"

func newTableFS(t *testing.T, properties string, files ...string) storage.Storage {
	t.Helper()
	fs := memfs.New()
	writeFile(t, fs, PropertiesPath, properties)
	for _, f := range files {
		writeFile(t, fs, f, "data")
	}
	return storage.NewLocal(fs, "/tables/stock_ticks")
}

func writeFile(t *testing.T, fs billy.Filesystem, path, content string) {
	t.Helper()
	require.NoError(t, util.WriteFile(fs, path, []byte(content), 0o644))
}

func relPaths(files []domain.DataFile) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.RelPath()
	}
	return paths
}

func TestLoadReadsProperties(t *testing.T) {
	store := newTableFS(t, cowProperties, ".hoodie/20200101120000.commit")

	tl, err := Load(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, "stock_ticks", tl.TableName)
	assert.Equal(t, domain.TableTypeCopyOnWrite, tl.TableType)

	latest, ok := tl.LatestCommit()
	require.True(t, ok)
	assert.Equal(t, "20200101120000", latest)
}

func TestLoadMissingProperties(t *testing.T) {
	store := storage.NewLocal(memfs.New(), "/tables/empty")

	_, err := Load(context.Background(), store)
	require.Error(t, err)
	var unreadable *domain.UnreadableTableError
	assert.ErrorAs(t, err, &unreadable)
}

func TestLoadMissingTableType(t *testing.T) {
	store := newTableFS(t, "hoodie.table.name=stock_ticks\n")

	_, err := Load(context.Background(), store)
	require.Error(t, err)
	var unreadable *domain.UnreadableTableError
	require.ErrorAs(t, err, &unreadable)
	assert.Contains(t, err.Error(), "hoodie.table.type")
}

func TestLoadMergeOnRead(t *testing.T) {
	store := newTableFS(t, "hoodie.table.name=t\nhoodie.table.type=MERGE_ON_READ\n")

	tl, err := Load(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, domain.TableTypeMergeOnRead, tl.TableType)
}

func TestValidFilesLatestCommitWins(t *testing.T) {
	// Commit 2 rewrote file group f1 and added f2. The old f1 version is
	// superseded but still physically present.
	store := newTableFS(t, cowProperties,
		".hoodie/20200101120000.commit",
		".hoodie/20200102120000.commit",
		"date=2020-01-01/f1-0_1-0-1_20200101120000.parquet",
		"date=2020-01-01/f1-0_1-0-1_20200102120000.parquet",
		"date=2020-01-01/f2-0_1-0-1_20200102120000.parquet",
	)

	tl, err := Load(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"date=2020-01-01/f1-0_1-0-1_20200102120000.parquet",
		"date=2020-01-01/f2-0_1-0-1_20200102120000.parquet",
	}, relPaths(tl.ValidFiles()))
}

func TestValidFilesExcludesInProgressCommits(t *testing.T) {
	store := newTableFS(t, cowProperties,
		".hoodie/20200101120000.commit",
		".hoodie/20200102120000.commit.requested",
		".hoodie/20200102120000.commit.inflight",
		// written by the in-progress commit: must never enter the manifest
		"date=2020-01-01/f1-0_1-0-1_20200102120000.parquet",
		"date=2020-01-01/f1-0_1-0-1_20200101120000.parquet",
	)

	tl, err := Load(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"date=2020-01-01/f1-0_1-0-1_20200101120000.parquet",
	}, relPaths(tl.ValidFiles()))
}

func TestValidFilesExcludesRolledBackFiles(t *testing.T) {
	// A data file whose instant has no completed marker at all (rolled
	// back, or the commit never finished) is excluded.
	store := newTableFS(t, cowProperties,
		".hoodie/20200101120000.commit",
		"date=2020-01-01/f1-0_1-0-1_20200103120000.parquet",
	)

	tl, err := Load(context.Background(), store)
	require.NoError(t, err)
	assert.Empty(t, tl.ValidFiles())
}

func TestValidFilesSkipsMetadataAndForeignFiles(t *testing.T) {
	store := newTableFS(t, cowProperties,
		".hoodie/20200101120000.commit",
		"date=2020-01-01/.hoodie_partition_metadata",
		"date=2020-01-01/not-a-hudi-file.parquet",
		"date=2020-01-01/readme.txt",
		"date=2020-01-01/f1-0_1-0-1_20200101120000.parquet",
	)

	tl, err := Load(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"date=2020-01-01/f1-0_1-0-1_20200101120000.parquet",
	}, relPaths(tl.ValidFiles()))
}

func TestValidFilesUnpartitioned(t *testing.T) {
	store := newTableFS(t, cowProperties,
		".hoodie/20200101120000.commit",
		"f1-0_1-0-1_20200101120000.parquet",
	)

	tl, err := Load(context.Background(), store)
	require.NoError(t, err)
	files := tl.ValidFiles()
	require.Len(t, files, 1)
	assert.Equal(t, "", files[0].PartitionPath)
	assert.Equal(t, "f1-0_1-0-1_20200101120000.parquet", files[0].RelPath())
}

func TestValidFilesEmptyTable(t *testing.T) {
	store := newTableFS(t, cowProperties)

	tl, err := Load(context.Background(), store)
	require.NoError(t, err)
	_, ok := tl.LatestCommit()
	assert.False(t, ok)
	assert.Empty(t, tl.ValidFiles())
}

func TestParseDataFileName(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantFileID  string
		wantInstant string
		wantOK      bool
	}{
		{
			name:        "standard",
			input:       "2f1c1f3e-0_1-0-1_20200101120000.parquet",
			wantFileID:  "2f1c1f3e-0",
			wantInstant: "20200101120000",
			wantOK:      true,
		},
		{
			name:        "underscore_in_file_id",
			input:       "abc_def-0_1-0-1_20200101120000.parquet",
			wantFileID:  "abc_def-0",
			wantInstant: "20200101120000",
			wantOK:      true,
		},
		{
			name:        "orc",
			input:       "f1-0_1-0-1_20200101120000.orc",
			wantFileID:  "f1-0",
			wantInstant: "20200101120000",
			wantOK:      true,
		},
		{name: "wrong_extension", input: "f1-0_1-0-1_20200101120000.csv"},
		{name: "too_few_segments", input: "f1_20200101120000.parquet"},
		{name: "non_numeric_instant", input: "f1-0_1-0-1_latest.parquet"},
		{name: "plain_name", input: "data.parquet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileID, instant, ok := parseDataFileName(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantFileID, fileID)
				assert.Equal(t, tt.wantInstant, instant)
			}
		})
	}
}

func TestParseCompletedCommit(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		wantInstant string
		wantOK      bool
	}{
		{name: "commit", path: ".hoodie/20200101120000.commit", wantInstant: "20200101120000", wantOK: true},
		{name: "replacecommit", path: ".hoodie/20200101120000.replacecommit", wantInstant: "20200101120000", wantOK: true},
		{name: "inflight", path: ".hoodie/20200101120000.commit.inflight"},
		{name: "requested", path: ".hoodie/20200101120000.commit.requested"},
		{name: "clean", path: ".hoodie/20200101120000.clean"},
		{name: "properties", path: ".hoodie/hoodie.properties"},
		{name: "nested", path: ".hoodie/archived/20200101120000.commit"},
		{name: "data_file", path: "date=2020-01-01/f1-0_1-0-1_20200101120000.parquet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instant, ok := parseCompletedCommit(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantInstant, instant)
			}
		})
	}
}

func TestParseProperties(t *testing.T) {
	props := parseProperties("# header\n!legacy comment\n\nhoodie.table.name = t\nhoodie.table.type=COPY_ON_WRITE\nbroken line\n")
	assert.Equal(t, "t", props["hoodie.table.name"])
	assert.Equal(t, "COPY_ON_WRITE", props["hoodie.table.type"])
	assert.NotContains(t, props, "broken line")
}

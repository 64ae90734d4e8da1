package domain

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncErrorUnwrapsToCause(t *testing.T) {
	cause := NewUnsupportedTableTypeError(TableTypeMergeOnRead)
	err := NewSyncError("stock_ticks", cause)

	assert.Contains(t, err.Error(), `sync hudi table "stock_ticks"`)
	assert.Contains(t, err.Error(), "MERGE_ON_READ")

	var unsupported *UnsupportedTableTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, TableTypeMergeOnRead, unsupported.Type)
}

func TestErrorChainsReachRootCause(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{
			name: "unreadable_table",
			err: NewSyncError("t",
				NewUnreadableTableError("/tables/t", fs.ErrNotExist)),
		},
		{
			name: "manifest_write",
			err: NewSyncError("t",
				NewManifestWriteError("/tables/t/.hoodie/manifest/latest-snapshot.csv", fs.ErrNotExist)),
		},
		{
			name: "catalog_operation",
			err: NewSyncError("t",
				NewCatalogOperationError("create view", "t_versions", fs.ErrNotExist)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, fs.ErrNotExist)

			var syncErr *SyncError
			require.ErrorAs(t, tt.err, &syncErr)
			assert.Equal(t, "t", syncErr.Table)
		})
	}
}

func TestCatalogOperationErrorMessage(t *testing.T) {
	err := NewCatalogOperationError("create view", "stock_ticks_versions", errors.New("boom"))
	assert.Equal(t, `create view "stock_ticks_versions": boom`, err.Error())
}

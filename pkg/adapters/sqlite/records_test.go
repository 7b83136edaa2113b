package sqlite_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/candidhq/candid/pkg/adapters/sqlite"
	"github.com/candidhq/candid/pkg/ports"
)

func TestSQLiteRecordStore_Contract(t *testing.T) {
	store, err := sqlite.NewRecordStore(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ports.RunRecordStoreContract(t, store)
}

func TestSQLiteRecordStore_ReopensExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")

	store, err := sqlite.NewRecordStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// A second open must not fail on the already migrated schema.
	store, err = sqlite.NewRecordStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

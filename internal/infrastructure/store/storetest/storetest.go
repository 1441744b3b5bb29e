// Package storetest 提供測試用的暫存 SQLite 資料庫
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"pantry-cookbook/internal/infrastructure/store"

	"github.com/stretchr/testify/require"
)

// New 在 t.TempDir() 建立已遷移的資料庫，測試結束時關閉
func New(t testing.TB) *store.SQLiteStore {
	t.Helper()
	db, err := store.NewSQLite(filepath.Join(t.TempDir(), "pantry.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

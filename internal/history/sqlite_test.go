package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donhulam/trolyvanban/internal/models"
)

func openTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLiteRepository(db)
}

func TestSQLiteRoundTrip(t *testing.T) {
	repo := openTestRepo(t)

	docs := []models.SavedDocument{
		{ID: "1", Title: "Báo cáo quý III", Content: "# Báo cáo\nNội dung...", Timestamp: 1700000000000},
		{ID: "2", Title: "Văn bản chưa có tiêu đề", Content: "...", Timestamp: 1700000001000},
	}
	require.NoError(t, repo.SaveAll(docs))

	got, err := repo.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, docs, got)
}

func TestSQLiteSaveAllReplacesWholesale(t *testing.T) {
	repo := openTestRepo(t)

	require.NoError(t, repo.SaveAll([]models.SavedDocument{{ID: "old"}}))
	require.NoError(t, repo.SaveAll([]models.SavedDocument{{ID: "new-1"}, {ID: "new-2"}}))

	got, err := repo.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"new-1", "new-2"}, ids(got))
}

func TestSQLiteEmptyDatabase(t *testing.T) {
	repo := openTestRepo(t)
	got, err := repo.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeSlotLegacyArray(t *testing.T) {
	// The browser version stored a bare JSON array; hydration still
	// accepts it.
	got, err := decodeSlot([]byte(`[{"id":"x","title":"T","content":"C","timestamp":5}]`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].ID)
	assert.Equal(t, int64(5), got[0].Timestamp)
}

func TestDecodeSlotEnvelope(t *testing.T) {
	got, err := decodeSlot([]byte(`{"version":1,"documents":[{"id":"y"}]}`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "y", got[0].ID)
}

func TestDecodeSlotCorrupt(t *testing.T) {
	_, err := decodeSlot([]byte(`{{{not json`))
	assert.Error(t, err)
}

package history

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donhulam/trolyvanban/internal/models"
)

// memRepository records SaveAll calls for assertions.
type memRepository struct {
	docs    []models.SavedDocument
	saves   int
	loadErr error
	saveErr error
}

func (r *memRepository) LoadAll() ([]models.SavedDocument, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return append([]models.SavedDocument(nil), r.docs...), nil
}

func (r *memRepository) SaveAll(docs []models.SavedDocument) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.docs = append([]models.SavedDocument(nil), docs...)
	r.saves++
	return nil
}

func doc(id string) models.SavedDocument {
	return models.SavedDocument{ID: id, Title: "t-" + id, Content: "c-" + id, Timestamp: 1}
}

func ids(docs []models.SavedDocument) []string {
	var out []string
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

func TestAddPrepends(t *testing.T) {
	repo := &memRepository{}
	store := NewStore(repo)

	store.Add(doc("a"))
	store.Add(doc("b"))

	assert.Equal(t, []string{"b", "a"}, ids(store.List()))
	assert.Equal(t, 2, repo.saves, "every mutation persists")
	assert.Equal(t, []string{"b", "a"}, ids(repo.docs))
}

func TestRemove(t *testing.T) {
	repo := &memRepository{docs: []models.SavedDocument{doc("a"), doc("b"), doc("c")}}
	store := NewStore(repo)

	store.Remove("b")
	assert.Equal(t, []string{"a", "c"}, ids(store.List()))

	saves := repo.saves
	store.Remove("missing")
	assert.Equal(t, []string{"a", "c"}, ids(store.List()))
	assert.Equal(t, saves, repo.saves, "absent id does not rewrite storage")
}

func TestUpdateContentAndResurface(t *testing.T) {
	repo := &memRepository{docs: []models.SavedDocument{doc("a"), doc("b"), doc("c")}}
	store := NewStore(repo)
	store.now = func() time.Time { return time.UnixMilli(42000) }

	ok := store.UpdateContentAndResurface("c", "new content")
	require.True(t, ok)
	assert.Equal(t, []string{"c", "a", "b"}, ids(store.List()))

	got, found := store.Get("c")
	require.True(t, found)
	assert.Equal(t, "new content", got.Content)
	assert.Equal(t, int64(42000), got.Timestamp)
}

func TestUpdateContentAndResurfaceIdempotentAtFront(t *testing.T) {
	repo := &memRepository{docs: []models.SavedDocument{doc("a"), doc("b")}}
	store := NewStore(repo)

	require.True(t, store.UpdateContentAndResurface("a", "x"))
	require.True(t, store.UpdateContentAndResurface("a", "y"))
	require.True(t, store.UpdateContentAndResurface("a", "z"))

	assert.Equal(t, []string{"a", "b"}, ids(store.List()))
	got, _ := store.Get("a")
	assert.Equal(t, "z", got.Content)
}

func TestUpdateContentAndResurfaceUnknownID(t *testing.T) {
	repo := &memRepository{docs: []models.SavedDocument{doc("a"), doc("b")}}
	store := NewStore(repo)
	before := store.List()
	saves := repo.saves

	ok := store.UpdateContentAndResurface("ghost", "x")
	assert.False(t, ok)
	assert.Equal(t, before, store.List(), "no phantom entries, order unchanged")
	assert.Equal(t, saves, repo.saves)
}

func TestLoadFailureDegradesToEmpty(t *testing.T) {
	repo := &memRepository{loadErr: errors.New("corrupt blob")}
	store := NewStore(repo)
	assert.Empty(t, store.List())
}

func TestSaveFailureIsSwallowed(t *testing.T) {
	repo := &memRepository{saveErr: errors.New("disk full")}
	store := NewStore(repo)

	// Mutations still apply in memory; persistence errors never surface.
	store.Add(doc("a"))
	assert.Equal(t, []string{"a"}, ids(store.List()))
}

func TestListReturnsCopy(t *testing.T) {
	repo := &memRepository{docs: []models.SavedDocument{doc("a")}}
	store := NewStore(repo)

	list := store.List()
	list[0].Content = "mutated"

	got, _ := store.Get("a")
	assert.Equal(t, "c-a", got.Content)
}

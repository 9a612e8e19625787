// Package history keeps the ordered list of saved documents and writes it
// through a repository after every mutation.
package history

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/donhulam/trolyvanban/internal/models"
)

// Repository persists the full ordered sequence. Implementations must treat
// SaveAll as a wholesale replacement of whatever was stored before.
type Repository interface {
	LoadAll() ([]models.SavedDocument, error)
	SaveAll(docs []models.SavedDocument) error
}

// Store is the single source of truth for saved documents, newest first.
// Persistence failures are logged and swallowed: losing history must never
// block drafting.
type Store struct {
	mu   sync.Mutex
	repo Repository
	docs []models.SavedDocument
	now  func() time.Time
}

// NewStore hydrates the store from the repository. A load failure degrades to
// an empty history.
func NewStore(repo Repository) *Store {
	s := &Store{repo: repo, now: time.Now}
	docs, err := repo.LoadAll()
	if err != nil {
		log.Warn("loading saved documents, starting empty", "err", err)
		docs = nil
	}
	s.docs = docs
	return s
}

// Add prepends a freshly minted document.
func (s *Store) Add(doc models.SavedDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append([]models.SavedDocument{doc}, s.docs...)
	s.persist()
}

// Remove deletes the document with the given id; absent ids are a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.docs[:0:0]
	for _, doc := range s.docs {
		if doc.ID != id {
			kept = append(kept, doc)
		}
	}
	if len(kept) == len(s.docs) {
		return
	}
	s.docs = kept
	s.persist()
}

// UpdateContentAndResurface replaces the document's content, stamps it with
// the current time, and moves it to the front unless it is already there.
// Unknown ids are strictly a no-op. Reports whether an update happened.
func (s *Store) UpdateContentAndResurface(id, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, doc := range s.docs {
		if doc.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	doc := s.docs[idx]
	doc.Content = content
	doc.Timestamp = s.now().UnixMilli()
	if idx > 0 {
		s.docs = append(s.docs[:idx], s.docs[idx+1:]...)
		s.docs = append([]models.SavedDocument{doc}, s.docs...)
	} else {
		s.docs[0] = doc
	}
	s.persist()
	return true
}

// Get returns the document with the given id.
func (s *Store) Get(id string) (models.SavedDocument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range s.docs {
		if doc.ID == id {
			return doc, true
		}
	}
	return models.SavedDocument{}, false
}

// List returns a copy of the sequence, newest first.
func (s *Store) List() []models.SavedDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SavedDocument(nil), s.docs...)
}

func (s *Store) persist() {
	if err := s.repo.SaveAll(s.docs); err != nil {
		log.Error("saving document history", "err", err)
	}
}

// Package session owns the lifecycle of one drafting session: form values,
// attachment lists, the live draft, and the active document identity.
package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/donhulam/trolyvanban/internal/attach"
	"github.com/donhulam/trolyvanban/internal/gemini"
	"github.com/donhulam/trolyvanban/internal/history"
	"github.com/donhulam/trolyvanban/internal/models"
)

// ErrBusy is returned when a generation or refinement stream is already open.
// Only one stream may be active per session.
var ErrBusy = errors.New("một yêu cầu khác đang được xử lý")

const genericErrMsg = "Đã có lỗi xảy ra"

// Status is the drafting lifecycle state.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusGenerating Status = "generating"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

// Tab selects the visible result pane.
type Tab string

const (
	TabResult Tab = "result"
	TabSaved  Tab = "saved"
)

// ChunkSink receives each streamed fragment together with the accumulated
// draft so far. Calls are strictly sequential in emission order.
type ChunkSink func(chunk, total string)

// State is a copy of the visible session state for the transport layer.
type State struct {
	Fields           models.DraftFields
	Status           Status
	Draft            string
	Error            string
	ActiveTab        Tab
	ActiveDocumentID string
	ChatSessionID    string
	ContextFiles     []string
	KeyPointFiles    []string
}

// Session is the orchestration core. Exactly one exists per server process.
type Session struct {
	client gemini.Client
	store  *history.Store

	mu            sync.Mutex
	fields        models.DraftFields
	contextFiles  []string
	keyPointFiles []string
	draft         string
	status        Status
	errMsg        string
	activeTab     Tab
	activeDocID   string
	chatScopeID   string
	busy          bool

	// onDocumentChange resets the refinement scope; invoked on every
	// transition that changes the active document identity.
	onDocumentChange func(docID string)

	now   func() time.Time
	newID func() string
}

func New(client gemini.Client, store *history.Store) *Session {
	return &Session{
		client:    client,
		store:     store,
		fields:    models.DefaultFields(),
		status:    StatusIdle,
		activeTab: TabResult,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// OnDocumentChange registers the refinement-scope reset hook.
func (s *Session) OnDocumentChange(fn func(docID string)) {
	s.onDocumentChange = fn
}

// Begin claims the session's single stream slot. End releases it.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	return nil
}

func (s *Session) End() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// Generate runs one full drafting attempt: encode attachments, stream the
// draft through sink with an append-only fold, then title and save the
// completed document. On failure the partial draft stays visible and the
// error message replaces the result pane.
func (s *Session) Generate(ctx context.Context, fields models.DraftFields, contextFiles, keyPointFiles []attach.File, sink ChunkSink) (models.SavedDocument, error) {
	if err := s.Begin(); err != nil {
		return models.SavedDocument{}, err
	}
	defer s.End()

	s.mu.Lock()
	s.fields = fields
	s.contextFiles = fileNames(contextFiles)
	s.keyPointFiles = fileNames(keyPointFiles)
	s.draft = ""
	s.errMsg = ""
	s.status = StatusGenerating
	s.activeTab = TabResult
	s.mu.Unlock()

	doc, err := s.generate(ctx, fields, contextFiles, keyPointFiles, sink)
	if err != nil {
		s.mu.Lock()
		s.status = StatusFailed
		s.errMsg = errorMessage(err)
		s.mu.Unlock()
		return models.SavedDocument{}, err
	}
	return doc, nil
}

func (s *Session) generate(ctx context.Context, fields models.DraftFields, contextFiles, keyPointFiles []attach.File, sink ChunkSink) (models.SavedDocument, error) {
	// Ineligible files stay visible in the session but are excluded from
	// the request payload.
	contextAtts, err := attach.EncodeAll(ctx, attach.Filter(contextFiles))
	if err != nil {
		return models.SavedDocument{}, err
	}
	keyPointAtts, err := attach.EncodeAll(ctx, attach.Filter(keyPointFiles))
	if err != nil {
		return models.SavedDocument{}, err
	}

	stream, err := s.client.StreamDraft(ctx, gemini.DraftRequest{
		Fields:              fields,
		ContextAttachments:  contextAtts,
		KeyPointAttachments: keyPointAtts,
	})
	if err != nil {
		return models.SavedDocument{}, err
	}

	total, err := s.consume(stream, sink)
	if err != nil {
		return models.SavedDocument{}, err
	}

	if total == "" {
		s.mu.Lock()
		s.status = StatusIdle
		s.mu.Unlock()
		return models.SavedDocument{}, nil
	}

	title := s.client.SummarizeTitle(ctx, total)
	doc := models.SavedDocument{
		ID:        s.newID(),
		Title:     title,
		Content:   total,
		Timestamp: s.now().UnixMilli(),
	}
	s.store.Add(doc)

	s.mu.Lock()
	s.status = StatusReady
	s.activeDocID = doc.ID
	s.chatScopeID = s.newID()
	s.mu.Unlock()
	s.notifyDocumentChange(doc.ID)

	return doc, nil
}

// consume folds the stream into the live draft, append-only and in emission
// order. The partial accumulation survives a mid-stream failure.
func (s *Session) consume(stream gemini.Stream, sink ChunkSink) (string, error) {
	for {
		chunk, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		s.mu.Lock()
		s.draft += chunk
		total := s.draft
		s.mu.Unlock()
		if sink != nil {
			sink(chunk, total)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft, nil
}

// Clear resets the session to Idle: default form values, no attachments, no
// draft, no error, no active document.
func (s *Session) Clear() {
	s.mu.Lock()
	s.fields = models.DefaultFields()
	s.contextFiles = nil
	s.keyPointFiles = nil
	s.draft = ""
	s.errMsg = ""
	s.status = StatusIdle
	s.activeDocID = ""
	s.chatScopeID = ""
	s.mu.Unlock()
	s.notifyDocumentChange("")
}

// LoadSaved switches the session to a saved document: draft pre-filled,
// fresh chat scope, form fields untouched. Unknown ids are a no-op.
func (s *Session) LoadSaved(id string) (models.SavedDocument, bool) {
	doc, ok := s.store.Get(id)
	if !ok {
		return models.SavedDocument{}, false
	}
	s.mu.Lock()
	s.draft = doc.Content
	s.errMsg = ""
	s.status = StatusReady
	s.activeTab = TabResult
	s.activeDocID = doc.ID
	s.chatScopeID = s.newID()
	s.mu.Unlock()
	s.notifyDocumentChange(doc.ID)
	return doc, true
}

// DeleteSaved removes a document from history. The active document reference
// and the live draft are left untouched, even when deleting the active one.
func (s *Session) DeleteSaved(id string) {
	s.store.Remove(id)
}

// SetDraft replaces the live draft wholesale; used by refinement turns.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	s.draft = text
	s.mu.Unlock()
}

func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

func (s *Session) ActiveDocumentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeDocID
}

func (s *Session) SetActiveTab(tab Tab) {
	s.mu.Lock()
	s.activeTab = tab
	s.mu.Unlock()
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Fields:           s.fields,
		Status:           s.status,
		Draft:            s.draft,
		Error:            s.errMsg,
		ActiveTab:        s.activeTab,
		ActiveDocumentID: s.activeDocID,
		ChatSessionID:    s.chatScopeID,
		ContextFiles:     append([]string(nil), s.contextFiles...),
		KeyPointFiles:    append([]string(nil), s.keyPointFiles...),
	}
}

func (s *Session) notifyDocumentChange(docID string) {
	if s.onDocumentChange != nil {
		s.onDocumentChange(docID)
	}
}

func fileNames(files []attach.File) []string {
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	return names
}

func errorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return genericErrMsg
	}
	return err.Error()
}

// Package chat runs the conversational refinement loop: each user turn asks
// the backend for a full rewrite of the current draft and reconciles the
// transcript, the live draft, and the saved document.
package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/donhulam/trolyvanban/internal/gemini"
	"github.com/donhulam/trolyvanban/internal/history"
	"github.com/donhulam/trolyvanban/internal/models"
	"github.com/donhulam/trolyvanban/internal/session"
)

// ErrEmptyMessage rejects blank user input before a turn starts.
var ErrEmptyMessage = errors.New("empty chat message")

// Fixed transcript copy, kept verbatim from the product.
const (
	greeting   = "Xin chào! Bạn muốn chỉnh sửa hay cải thiện điều gì trong văn bản này không?"
	apologyMsg = "Rất tiếc, đã có lỗi xảy ra. Vui lòng thử lại."
)

// Refiner holds one refinement scope: a transcript bound to a single active
// document. Reset discards it entirely whenever the document changes.
type Refiner struct {
	client  gemini.Client
	session *session.Session
	store   *history.Store

	mu       sync.Mutex
	scopeID  string
	messages []models.ChatMessage
	expanded bool
}

func NewRefiner(client gemini.Client, sess *session.Session, store *history.Store) *Refiner {
	return &Refiner{client: client, session: sess, store: store}
}

// Reset hard-resets the refinement scope for a new active document. When a
// draft exists the transcript is seeded with the greeting and the panel
// expands; otherwise it goes blank and collapses.
func (r *Refiner) Reset(docID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scopeID = docID
	if docID != "" && r.session.Draft() != "" {
		r.messages = []models.ChatMessage{{Role: models.RoleModel, Text: greeting}}
		r.expanded = true
	} else {
		r.messages = nil
		r.expanded = false
	}
}

// Messages returns a copy of the transcript.
func (r *Refiner) Messages() []models.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.ChatMessage(nil), r.messages...)
}

// Expanded reports whether the refinement panel is open.
func (r *Refiner) Expanded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.expanded
}

// Send runs one refinement turn. The assistant placeholder grows chunk by
// chunk while the same text is pushed into the live draft as a non-final
// update; completion performs the final draft update and resurfaces the
// active document in history. A mid-stream failure replaces the placeholder
// with the apology text and leaves history untouched.
func (r *Refiner) Send(ctx context.Context, userText string, sink session.ChunkSink) error {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return ErrEmptyMessage
	}
	if err := r.session.Begin(); err != nil {
		return err
	}
	defer r.session.End()

	r.mu.Lock()
	r.messages = append(r.messages, models.ChatMessage{Role: models.RoleUser, Text: userText})
	transcript := append([]models.ChatMessage(nil), r.messages...)
	r.mu.Unlock()

	stream, err := r.client.StreamChatTurn(ctx, transcript, r.session.Draft())
	if err != nil {
		r.failTurn()
		return err
	}

	r.mu.Lock()
	r.messages = append(r.messages, models.ChatMessage{Role: models.RoleModel, Text: ""})
	r.mu.Unlock()

	var total string
	for {
		chunk, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Partial text already pushed into the live draft is
			// retained; only the transcript shows the failure.
			r.failTurn()
			return err
		}
		total += chunk
		r.mu.Lock()
		r.messages[len(r.messages)-1].Text = total
		r.mu.Unlock()
		r.session.SetDraft(total)
		if sink != nil {
			sink(chunk, total)
		}
	}

	trimmed := strings.TrimSpace(total)
	if trimmed == "" {
		return nil
	}
	r.session.SetDraft(trimmed)
	if id := r.session.ActiveDocumentID(); id != "" {
		r.store.UpdateContentAndResurface(id, trimmed)
	}
	return nil
}

// failTurn makes the transcript end with the apology message, replacing the
// assistant placeholder when one exists.
func (r *Refiner) failTurn() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.messages); n > 0 && r.messages[n-1].Role == models.RoleModel {
		r.messages[n-1].Text = apologyMsg
		return
	}
	r.messages = append(r.messages, models.ChatMessage{Role: models.RoleModel, Text: apologyMsg})
}

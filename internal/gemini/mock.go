package gemini

import (
	"context"
	"io"
	"sync"

	"github.com/donhulam/trolyvanban/internal/models"
)

// ScriptedClient is an in-memory Client for tests and local debugging. Each
// call replays the next configured script instead of reaching the network.
type ScriptedClient struct {
	mu sync.Mutex

	// DraftScripts and ChatScripts are consumed in order; the last one
	// repeats when the list runs out.
	DraftScripts []Script
	ChatScripts  []Script
	Title        string
	draftCalls   int
	chatCalls    int

	// Recorded inputs for assertions.
	DraftRequests []DraftRequest
	ChatHistories [][]models.ChatMessage
}

// Script describes one scripted stream: chunks delivered in order, then an
// optional terminal error. StartErr aborts before the first chunk.
type Script struct {
	StartErr error
	Chunks   []string
	Err      error
}

func (c *ScriptedClient) StreamDraft(_ context.Context, req DraftRequest) (Stream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DraftRequests = append(c.DraftRequests, req)
	script := pick(c.DraftScripts, c.draftCalls)
	c.draftCalls++
	if script.StartErr != nil {
		return nil, script.StartErr
	}
	return &scriptStream{chunks: script.Chunks, err: script.Err}, nil
}

func (c *ScriptedClient) SummarizeTitle(context.Context, string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Title == "" {
		return FallbackTitle
	}
	return c.Title
}

func (c *ScriptedClient) StreamChatTurn(_ context.Context, history []models.ChatMessage, currentDraft string) (Stream, error) {
	if currentDraft == "" {
		return nil, ErrNoDraft
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ChatHistories = append(c.ChatHistories, append([]models.ChatMessage(nil), history...))
	script := pick(c.ChatScripts, c.chatCalls)
	c.chatCalls++
	if script.StartErr != nil {
		return nil, script.StartErr
	}
	return &scriptStream{chunks: script.Chunks, err: script.Err}, nil
}

func pick(scripts []Script, call int) Script {
	if len(scripts) == 0 {
		return Script{}
	}
	if call >= len(scripts) {
		return scripts[len(scripts)-1]
	}
	return scripts[call]
}

type scriptStream struct {
	chunks []string
	err    error
	pos    int
}

func (s *scriptStream) Next() (string, error) {
	if s.pos < len(s.chunks) {
		chunk := s.chunks[s.pos]
		s.pos++
		return chunk, nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

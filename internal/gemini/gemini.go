// Package gemini adapts the Google generative-language API to the three
// operations the drafting core needs: stream a draft, summarize a title, and
// stream a refinement turn.
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"google.golang.org/genai"

	"github.com/donhulam/trolyvanban/internal/models"
)

// ErrNoDraft is returned when a refinement turn is attempted without an
// existing draft as anchor context.
var ErrNoDraft = errors.New("refinement requires an existing draft")

// User-facing Vietnamese errors, kept verbatim from the product copy.
const (
	draftFailedMsg = "Không thể tạo nội dung. Vui lòng thử lại."
	chatFailedMsg  = "Không thể tạo phản hồi. Vui lòng thử lại."

	// FallbackTitle is used whenever title summarization fails; losing a
	// title must never block saving a completed draft.
	FallbackTitle = "Văn bản chưa có tiêu đề"
)

// DraftRequest is the structured input for one generation.
type DraftRequest struct {
	Fields              models.DraftFields
	ContextAttachments  []models.EncodedAttachment
	KeyPointAttachments []models.EncodedAttachment
}

// Stream yields text fragments in emission order. Next returns io.EOF after
// the final fragment; any other error means the stream aborted mid-flight and
// fragments already delivered stay with the caller.
type Stream interface {
	Next() (string, error)
}

// Client is the generation backend boundary consumed by the orchestrator.
type Client interface {
	StreamDraft(ctx context.Context, req DraftRequest) (Stream, error)
	// SummarizeTitle never fails; it falls back to FallbackTitle.
	SummarizeTitle(ctx context.Context, content string) string
	StreamChatTurn(ctx context.Context, history []models.ChatMessage, currentDraft string) (Stream, error)
}

// GoogleClient implements Client against the Gemini API.
type GoogleClient struct {
	client     *genai.Client
	model      string
	titleModel string
}

// NewGoogleClient builds a client for the given API key. Model names default
// to gemini-2.5-flash when empty.
func NewGoogleClient(ctx context.Context, apiKey, model, titleModel string) (*GoogleClient, error) {
	if apiKey == "" {
		return nil, errors.New("missing Gemini API key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if titleModel == "" {
		titleModel = model
	}
	return &GoogleClient{client: client, model: model, titleModel: titleModel}, nil
}

func (c *GoogleClient) StreamDraft(ctx context.Context, req DraftRequest) (Stream, error) {
	parts, err := buildDraftParts(req)
	if err != nil {
		return nil, fmt.Errorf("%s (%w)", draftFailedMsg, err)
	}

	contents := []*genai.Content{{Role: string(models.RoleUser), Parts: parts}}
	it := c.client.Models.GenerateContentStream(ctx, c.model, contents, nil)
	return newGenaiStream(it, draftFailedMsg), nil
}

func (c *GoogleClient) SummarizeTitle(ctx context.Context, content string) string {
	contents := []*genai.Content{{
		Role:  string(models.RoleUser),
		Parts: []*genai.Part{{Text: titlePrompt(content)}},
	}}
	resp, err := c.client.Models.GenerateContent(ctx, c.titleModel, contents, nil)
	if err != nil {
		return FallbackTitle
	}
	title := strings.TrimSpace(responseText(resp))
	title = strings.Trim(title, `"`)
	if title == "" {
		return FallbackTitle
	}
	return title
}

func (c *GoogleClient) StreamChatTurn(ctx context.Context, history []models.ChatMessage, currentDraft string) (Stream, error) {
	if currentDraft == "" {
		return nil, ErrNoDraft
	}

	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		contents = append(contents, &genai.Content{
			Role:  string(msg.Role),
			Parts: []*genai.Part{{Text: msg.Text}},
		})
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: refineSystemInstruction(currentDraft)}},
		},
	}
	it := c.client.Models.GenerateContentStream(ctx, c.model, contents, config)
	return newGenaiStream(it, chatFailedMsg), nil
}

// genaiStream adapts the SDK's push iterator to the pull-based Stream. Each
// response may carry several parts; they are queued and drained in order.
type genaiStream struct {
	next     func() (*genai.GenerateContentResponse, error, bool)
	stop     func()
	pending  []string
	started  bool
	startMsg string
}

func newGenaiStream(it iter.Seq2[*genai.GenerateContentResponse, error], startMsg string) *genaiStream {
	next, stop := iter.Pull2(it)
	return &genaiStream{next: next, stop: stop, startMsg: startMsg}
}

func (s *genaiStream) Next() (string, error) {
	for {
		if len(s.pending) > 0 {
			text := s.pending[0]
			s.pending = s.pending[1:]
			return text, nil
		}
		resp, err, ok := s.next()
		if !ok {
			s.stop()
			return "", io.EOF
		}
		if err != nil {
			s.stop()
			if !s.started {
				return "", fmt.Errorf("%s (%w)", s.startMsg, err)
			}
			return "", err
		}
		s.started = true
		for _, text := range responseTexts(resp) {
			if text != "" {
				s.pending = append(s.pending, text)
			}
		}
	}
}

func responseTexts(resp *genai.GenerateContentResponse) []string {
	var texts []string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				texts = append(texts, part.Text)
			}
		}
	}
	return texts
}

func responseText(resp *genai.GenerateContentResponse) string {
	return strings.Join(responseTexts(resp), "")
}

func inlinePart(att models.EncodedAttachment) (*genai.Part, error) {
	data, err := base64.StdEncoding.DecodeString(att.Payload)
	if err != nil {
		return nil, fmt.Errorf("decoding attachment payload: %w", err)
	}
	return &genai.Part{InlineData: &genai.Blob{MIMEType: att.MediaType, Data: data}}, nil
}

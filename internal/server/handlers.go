package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/donhulam/trolyvanban/internal/attach"
	"github.com/donhulam/trolyvanban/internal/chat"
	"github.com/donhulam/trolyvanban/internal/models"
	"github.com/donhulam/trolyvanban/internal/session"
)

const maxUploadBytes = 32 << 20

type indexData struct {
	Schema    []models.FieldSpec
	State     session.State
	Documents []models.SavedDocument
	DraftHTML any
	Messages  []models.ChatMessage
	Expanded  bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	state := s.sess.Snapshot()
	s.renderPage(w, "index.html", indexData{
		Schema:    models.FormSchema,
		State:     state,
		Documents: s.store.List(),
		DraftHTML: renderMarkdown(state.Draft),
		Messages:  s.refiner.Messages(),
		Expanded:  s.refiner.Expanded(),
	})
}

type stateResponse struct {
	State     session.State          `json:"state"`
	Documents []models.SavedDocument `json:"documents"`
	DraftHTML string                 `json:"draft_html"`
	Messages  []models.ChatMessage   `json:"messages"`
	Expanded  bool                   `json:"expanded"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	state := s.sess.Snapshot()
	writeJSON(w, http.StatusOK, stateResponse{
		State:     state,
		Documents: s.store.List(),
		DraftHTML: string(renderMarkdown(state.Draft)),
		Messages:  s.refiner.Messages(),
		Expanded:  s.refiner.Expanded(),
	})
}

// handleGenerate runs one drafting attempt and streams the result as SSE:
// "chunk" events while text arrives, then "done" with the saved document, or
// "error" with the user-facing message.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var fields models.DraftFields
	for _, spec := range models.FormSchema {
		fields.Set(spec.Name, r.FormValue(spec.Name))
	}
	contextFiles := formFiles(r, "context_files")
	keyPointFiles := formFiles(r, "keypoint_files")

	sse, err := newSSEWriter(w)
	if err != nil {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	doc, err := s.sess.Generate(r.Context(), fields, contextFiles, keyPointFiles, func(chunk, total string) {
		sse.write("chunk", map[string]string{"text": chunk})
	})
	if err != nil {
		if errors.Is(err, session.ErrBusy) {
			log.Warn("generate rejected, stream already open")
		} else {
			log.Error("generating document", "err", err)
		}
		sse.write("error", map[string]string{"message": err.Error()})
		return
	}

	sse.write("done", map[string]any{
		"document":   doc,
		"draft_html": string(renderMarkdown(s.sess.Draft())),
		"messages":   s.refiner.Messages(),
	})
}

// handleChat streams one refinement turn. Errors stay scoped to the chat
// transcript; the draft pane keeps whatever it holds.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	message := r.FormValue("message")

	sse, err := newSSEWriter(w)
	if err != nil {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	err = s.refiner.Send(r.Context(), message, func(chunk, total string) {
		sse.write("chunk", map[string]string{"text": chunk})
	})
	if err != nil {
		if !errors.Is(err, chat.ErrEmptyMessage) && !errors.Is(err, session.ErrBusy) {
			log.Error("refinement turn", "err", err)
		}
		sse.write("error", map[string]any{
			"message":  err.Error(),
			"messages": s.refiner.Messages(),
		})
		return
	}

	sse.write("done", map[string]any{
		"draft_html": string(renderMarkdown(s.sess.Draft())),
		"messages":   s.refiner.Messages(),
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.sess.Clear()
	s.handleState(w, r)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": s.store.List(),
		"active":    s.sess.ActiveDocumentID(),
	})
}

func (s *Server) handleOpenDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.sess.LoadSaved(r.PathValue("id"))
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document":   doc,
		"draft_html": string(renderMarkdown(doc.Content)),
		"messages":   s.refiner.Messages(),
	})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	s.sess.DeleteSaved(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func formFiles(r *http.Request, field string) []attach.File {
	if r.MultipartForm == nil {
		return nil
	}
	var files []attach.File
	for _, fh := range r.MultipartForm.File[field] {
		files = append(files, attach.File{
			Name:      fh.Filename,
			MediaType: fh.Header.Get("Content-Type"),
			Open:      openHeader(fh),
		})
	}
	return files
}

func openHeader(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) { return fh.Open() }
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("encoding response", "err", err)
	}
}

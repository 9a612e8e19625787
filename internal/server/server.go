// Package server exposes the drafting session over a loopback HTTP server
// with an embedded browser UI. Streaming responses use server-sent events.
package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/donhulam/trolyvanban/internal/chat"
	"github.com/donhulam/trolyvanban/internal/history"
	"github.com/donhulam/trolyvanban/internal/session"
)

//go:embed templates
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

type Server struct {
	sess    *session.Session
	refiner *chat.Refiner
	store   *history.Store
	pages   map[string]*template.Template
	httpSrv *http.Server
	ln      net.Listener
	addr    string
}

func New(sess *session.Session, refiner *chat.Refiner, store *history.Store) (*Server, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	s := &Server{
		sess:    sess,
		refiner: refiner,
		store:   store,
		pages:   pages,
	}

	mux := http.NewServeMux()

	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("getting static subfs: %w", err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/clear", s.handleClear)
	mux.HandleFunc("GET /api/documents", s.handleListDocuments)
	mux.HandleFunc("POST /api/documents/{id}/open", s.handleOpenDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", s.handleDeleteDocument)

	s.httpSrv = &http.Server{Handler: mux}
	return s, nil
}

func parsePages() (map[string]*template.Template, error) {
	tmplFS, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("getting templates subfs: %w", err)
	}

	pageNames := []string{"index.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(tmplFS, name)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// Listen binds the server. Call Serve to start handling requests.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding port: %w", err)
	}
	s.ln = ln
	s.addr = ln.Addr().String()
	return nil
}

// Serve handles HTTP requests until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.httpSrv.Shutdown(context.Background())
	}()

	log.Info("trợ lý văn bản running", "url", "http://"+s.addr)

	if err := s.httpSrv.Serve(s.ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving: %w", err)
	}
	log.Info("shutting down")
	return nil
}

func (s *Server) Addr() string {
	return s.addr
}

func (s *Server) renderPage(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Error("template not found", "name", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		log.Error("render error", "name", name, "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

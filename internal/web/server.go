// Package web serves the assistant as a server-rendered web application.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/basel-ax/archaeo/internal/config"
	"github.com/basel-ax/archaeo/internal/imageloader"
	"github.com/basel-ax/archaeo/internal/logger"
	"github.com/basel-ax/archaeo/internal/module"
)

//go:embed static
var staticFS embed.FS

// maxFormMemory is the part of a multipart upload kept in memory
const maxFormMemory = 32 << 20

// Deps are the collaborators of the web server
type Deps struct {
	Config    *config.Config
	Processor module.Processor
	Loader    *imageloader.Loader
	// Fetcher loads images by URL; nil disables the image_url field
	Fetcher *imageloader.Fetcher
	Log     *logrus.Entry
}

// Server is the HTTP front end
type Server struct {
	cfg      *config.Config
	loader   *imageloader.Loader
	fetcher  *imageloader.Fetcher
	sessions *Sessions
	markdown *Markdown
	tmpl     *template.Template
	log      *logrus.Entry
	router   chi.Router
}

// NewServer builds the router and parses the embedded templates
func NewServer(deps Deps) (*Server, error) {
	log := deps.Log
	if log == nil {
		log = logger.Discard()
	}
	cfg := deps.Config
	s := &Server{
		cfg:      cfg,
		loader:   deps.Loader,
		fetcher:  deps.Fetcher,
		sessions: NewSessions(deps.Processor, cfg.Gemini.APIKey, cfg.Gemini.RequireCredential, cfg.SessionIdle, cfg.MaxSessions, log),
		markdown: NewMarkdown(),
		log:      log,
	}
	if err := s.parseTemplates(); err != nil {
		return nil, err
	}

	assets, err := s.assets()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/assets/*", http.StripPrefix("/assets", http.FileServer(http.FS(assets))))

	r.Get("/", s.handleShell)
	r.Post("/lang", s.handleToggleLanguage)
	r.Get("/key", s.handleKeyForm)
	r.Post("/key", s.handleConnectKey)
	r.Route("/modules/{id}", func(r chi.Router) {
		r.Post("/", s.handleSelectModule)
		r.Post("/image", s.handleSelectImage)
		r.Post("/run", s.handleRun)
		r.Post("/reauth", s.handleReauth)
		r.Post("/dismiss", s.handleDismiss)
		r.Get("/result", s.handleDownload)
	})
	s.router = r
	return s, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions returns the session store, for periodic sweeping
func (s *Server) Sessions() *Sessions {
	return s.sessions
}

// Close ends every session
func (s *Server) Close() {
	s.sessions.Close()
}

// assets layers the configured assets directory, where slider.wasm and
// wasm_exec.js are built, over the embedded stylesheet and loader
func (s *Server) assets() (fs.FS, error) {
	embedded, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	if s.cfg.AssetsDir == "" {
		return embedded, nil
	}
	if info, err := os.Stat(s.cfg.AssetsDir); err != nil || !info.IsDir() {
		s.log.WithField("dir", s.cfg.AssetsDir).Debug("assets directory not found, serving embedded assets only")
		return embedded, nil
	}
	return layeredFS{os.DirFS(s.cfg.AssetsDir), embedded}, nil
}

// layeredFS opens a name from the first layer that has it
type layeredFS []fs.FS

func (l layeredFS) Open(name string) (fs.File, error) {
	var firstErr error
	for _, layer := range l {
		f, err := layer.Open(name)
		if err == nil {
			return f, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

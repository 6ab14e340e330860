// Package site serves the portfolio, the resume builder and the PDF
// downloads over HTTP.
package site

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gompdf/folio/internal/contact"
	"github.com/gompdf/folio/internal/export"
	"github.com/gompdf/folio/internal/profile"
	"github.com/gompdf/folio/internal/templates"
)

//go:embed pages/*.html
var pages embed.FS

// Options configures a Server
type Options struct {
	// DefaultTemplate is preselected in the resume builder
	DefaultTemplate string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
}

// Server renders the portfolio for one profile
type Server struct {
	profile   *profile.Profile
	templates templates.Registry
	exporter  *export.Exporter
	sender    contact.Sender
	opts      Options
	logger    *log.Logger

	index  *template.Template
	resume *template.Template
	now    func() time.Time
}

// New creates a Server
func New(p *profile.Profile, r templates.Registry, e *export.Exporter, s contact.Sender, opts Options, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	if s == nil {
		s = contact.LogSender{Logger: logger}
	}
	srv := &Server{
		profile:   p,
		templates: r,
		exporter:  e,
		sender:    s,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}

	var err error
	if srv.index, err = parsePage("index.html"); err != nil {
		return nil, err
	}
	if srv.resume, err = parsePage("resume.html"); err != nil {
		return nil, err
	}
	return srv, nil
}

func parsePage(name string) (*template.Template, error) {
	return template.New(name).Funcs(template.FuncMap{
		"markdown": templates.Markdown,
		"years": func(v float64) string {
			return strconv.FormatFloat(v, 'f', -1, 64)
		},
	}).ParseFS(pages, "pages/layout.html", "pages/"+name)
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Route("/resume", func(r chi.Router) {
		r.Get("/", s.handleBuilder)
		r.Get("/{template}", s.handlePreview)
		r.Get("/{template}/download", s.handleDownload)
	})
	r.Post("/api/contact", s.handleContact)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Code: "NOT_FOUND", Message: "page not found"})
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return hs.Shutdown(shutdownCtx)
}

// Package server exposes form rendering over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lvillar/formlayout/doctpl"
	"github.com/lvillar/formlayout/manifest"
	"github.com/lvillar/formlayout/mcp"
	"github.com/lvillar/formlayout/pdfwriter"
	"github.com/lvillar/formlayout/template"
)

// Config holds listener settings.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server serves the variants of one form description.
type Server struct {
	cfg        Config
	doc        *doctpl.Document
	assets     template.AssetSource
	writer     []pdfwriter.Option
	logger     *zap.Logger
	router     chi.Router
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithAssets sets the logo source.
func WithAssets(src template.AssetSource) Option { return func(s *Server) { s.assets = src } }

// WithWriterOptions sets the PDF writer options.
func WithWriterOptions(opts ...pdfwriter.Option) Option {
	return func(s *Server) { s.writer = opts }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a server for doc.
func New(cfg Config, doc *doctpl.Document, opts ...Option) (*Server, error) {
	if _, err := doc.Template(); err != nil {
		return nil, err
	}
	s := &Server{cfg: cfg, doc: doc, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/variants", s.handleVariants)
	r.Get("/fields", s.handleFields)
	r.Get("/forms/{variant}.pdf", s.handleForm)
	s.router = r
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	s.logger.Info("starting HTTP server", zap.String("addr", s.cfg.Addr), zap.String("template", s.doc.Name))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

func (s *Server) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVariants(w http.ResponseWriter, _ *http.Request) {
	type variant struct {
		Name       string `json:"name"`
		Label      string `json:"label"`
		DocumentID string `json:"documentId"`
		URL        string `json:"url"`
	}
	tpl, err := s.doc.Template()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]variant, 0, len(tpl.Variants))
	for _, v := range tpl.Variants {
		out = append(out, variant{
			Name:       v.Name,
			Label:      v.Label,
			DocumentID: template.DocumentID(tpl.Name, v.Name),
			URL:        "/forms/" + v.Name + ".pdf",
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"template": tpl.Name, "variants": out})
}

// withTheme returns the document, or a copy with the theme query applied.
func (s *Server) withTheme(r *http.Request) *doctpl.Document {
	th := r.URL.Query().Get("theme")
	if th == "" {
		return s.doc
	}
	d := *s.doc
	d.Theme = th
	return &d
}

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	format := manifest.FormatJSON
	if f := r.URL.Query().Get("format"); f != "" {
		var err error
		if format, err = manifest.FormatOf(f); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	m, err := mcp.Manifest(r.Context(), s.withTheme(r), s.assets)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	var buf bytes.Buffer
	if err := m.Write(&buf, format); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if format == manifest.FormatXLSX {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.doc.Name+"-fields.xlsx"))
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "variant")
	doc := s.withTheme(r)
	tpl, err := doc.Template()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if _, ok := tpl.Variant(name); !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown variant %q", name))
		return
	}

	opts := []doctpl.RenderOption{
		doctpl.WithLogger(s.logger),
		doctpl.WithWriterOptions(s.writer...),
	}
	if s.assets != nil {
		opts = append(opts, doctpl.WithAssets(s.assets))
	}
	var buf bytes.Buffer
	if err := doctpl.RenderDocument(r.Context(), &buf, doc, name, opts...); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name+".pdf"))
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

package server

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"subreel/internal/catalog"
	"subreel/internal/logging"
)

//go:embed index.html
var defaultIndex string

// OptionsPlaceholder is replaced with the catalog's <option> elements when the
// index page is rendered.
const OptionsPlaceholder = "{{VIDEO_OPTIONS}}"

// Options configures the catalog server.
type Options struct {
	Records []catalog.Record
	// PublicDir is served for any path without a dedicated route. Empty
	// disables static files.
	PublicDir string
	// IndexTemplate is the index page source. Empty uses the built-in page.
	IndexTemplate string
	AssJSPath     string
	Logger        *slog.Logger
}

// Server exposes a loaded catalog over HTTP.
type Server struct {
	records   []catalog.Record
	bySlug    map[string]catalog.Record
	index     string
	publicDir string
	assJSPath string
	logger    *slog.Logger
	router    chi.Router
}

// New builds the server and its routes. The catalog is fixed for the
// lifetime of the server.
func New(opts Options) *Server {
	index := opts.IndexTemplate
	if strings.TrimSpace(index) == "" {
		index = defaultIndex
	}
	s := &Server{
		records:   append([]catalog.Record(nil), opts.Records...),
		bySlug:    catalog.Index(opts.Records),
		index:     index,
		publicDir: opts.PublicDir,
		assJSPath: opts.AssJSPath,
		logger:    logging.NewComponentLogger(opts.Logger, "server"),
	}
	s.router = s.routes()
	return s
}

// LoadIndexTemplate reads a custom index template from disk. An empty path
// returns the built-in page.
func LoadIndexTemplate(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return defaultIndex, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read index template: %w", err)
	}
	return string(data), nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(CORS())
	r.Use(s.requestLogger)

	r.Get("/", s.handleIndex)
	r.Get("/lib/ass.min.js", s.handleAssJS)
	r.Get("/video/{slug}", s.handleVideo)
	r.Get("/subtitles/{slug}", s.handleSubtitles)
	r.Get("/api/videos", s.handleCatalog)

	if s.publicDir != "" {
		r.NotFound(http.FileServer(http.Dir(s.publicDir)).ServeHTTP)
	}
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on bind until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, bind string) error {
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("listen %s: %w", bind, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Video responses stream for as long as the client plays them.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	s.logger.Info("catalog server listening",
		logging.String("address", listener.Addr().String()),
		logging.Int("videos", len(s.records)),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// RenderOptions renders the catalog as HTML <option> elements in catalog order.
func RenderOptions(records []catalog.Record) string {
	var b strings.Builder
	for _, rec := range records {
		b.WriteString(`<option value="`)
		b.WriteString(html.EscapeString(rec.Slug))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(rec.Name))
		b.WriteString(`</option>`)
	}
	return b.String()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.Int("bytes", ww.BytesWritten()),
			logging.Duration("duration", time.Since(start)),
			logging.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

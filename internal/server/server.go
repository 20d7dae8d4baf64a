// Package server serves the page and the Wasm module to a browser.
package server

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/woxQAQ/wasmadd/internal/config"
)

// IndexFile is served for "/".
const IndexFile = "index.html"

const shutdownTimeout = 5 * time.Second

// Server is a static file server rooted at a directory.
type Server struct {
	root        string
	addr        string
	maxRequests int64
	logger      *zap.Logger

	requests atomic.Int64
	served   atomic.Int64
	stopOnce sync.Once
	stopped  chan struct{}
}

// New creates a server from the serve section of the configuration.
func New(cfg config.ServeConfig, logger *zap.Logger) (*Server, error) {
	root := cfg.Root
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root '%s': %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open root '%s': %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root '%s' is not a directory", abs)
	}

	return &Server{
		root:        abs,
		addr:        cfg.Addr,
		maxRequests: cfg.MaxRequests,
		logger:      logger.With(zap.String("component", "server")),
		stopped:     make(chan struct{}),
	}, nil
}

// Handler returns the request handler.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handle)
}

// Served returns the number of requests answered so far.
func (s *Server) Served() int64 {
	return s.served.Load()
}

// Done is closed once the request limit is reached.
func (s *Server) Done() <-chan struct{} {
	return s.stopped
}

// ListenAndServe listens on the configured address and serves until ctx
// is cancelled or the request limit is reached.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled or the request limit is reached.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Serving files",
		zap.String("addr", ln.Addr().String()),
		zap.String("root", s.root),
		zap.Int64("max_requests", s.maxRequests),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-s.stopped:
			s.logger.Info("Request limit reached", zap.Int64("served", s.Served()))
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	s.logger.Info("Server stopped", zap.Int64("served", s.Served()))
	return err
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	id := s.requests.Inc()
	logger := s.logger.With(zap.Int64("request_id", id))

	if s.maxRequests > 0 && id > s.maxRequests {
		s.respond(w, r, logger, http.StatusServiceUnavailable, "text/html; charset=utf-8", []byte(unavailablePage))
		return
	}
	defer func() {
		if n := s.served.Inc(); s.maxRequests > 0 && n >= s.maxRequests {
			s.stopOnce.Do(func() { close(s.stopped) })
		}
	}()

	logger.Info("Request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("proto", r.Proto),
		zap.String("remote", r.RemoteAddr),
	)

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		s.respond(w, r, logger, http.StatusMethodNotAllowed, "text/html; charset=utf-8", []byte(methodNotAllowedPage))
		return
	}

	name, ok := s.resolve(r.URL.Path)
	if !ok {
		s.respond(w, r, logger, http.StatusBadRequest, "text/html; charset=utf-8", []byte(badRequestPage))
		return
	}

	data, err := os.ReadFile(name)
	if err != nil {
		logger.Debug("File not readable", zap.String("file", name), zap.Error(err))
		s.respond(w, r, logger, http.StatusNotFound, "text/html; charset=utf-8", []byte(notFoundPage))
		return
	}

	s.respond(w, r, logger, http.StatusOK, contentType(name), data)
}

// resolve maps a URL path to a file under the root. Paths with ".."
// segments are rejected.
func (s *Server) resolve(urlPath string) (string, bool) {
	if urlPath == "" || urlPath[0] != '/' {
		return "", false
	}
	for _, seg := range strings.Split(urlPath, "/") {
		if seg == ".." {
			return "", false
		}
	}

	clean := path.Clean(urlPath)
	if clean == "/" {
		clean = "/" + IndexFile
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), true
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, logger *zap.Logger, status int, ctype string, body []byte) {
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		if _, err := w.Write(body); err != nil {
			logger.Warn("Failed to write response", zap.Error(err))
		}
	}

	logger.Info("Response",
		zap.Int("status", status),
		zap.String("content_type", ctype),
		zap.Int("content_length", len(body)),
	)
}

func contentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".wasm" {
		return "application/wasm"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

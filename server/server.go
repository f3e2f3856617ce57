package server

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/cyp0633/librecur/recurrence"
)

const (
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	headerAllow       = "Allow"

	allowedMethods = "OPTIONS, GET, POST"

	// DefaultPath is where the service answers unless WithPath says otherwise
	DefaultPath = "/occurrences"

	defaultMaxBodyBytes = 1 << 20
)

// Expander computes the occurrences of a rule. *recurrence.Engine satisfies it.
type Expander interface {
	Occurrences(rule recurrence.Rule, window recurrence.Window) ([]string, error)
}

// Server is a stateless HTTP service that expands recurrence rules
type Server struct {
	expander     Expander
	logger       *slog.Logger
	path         string
	maxBodyBytes int64
	handlers     map[string]http.HandlerFunc
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server's logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPath sets the URL path the service answers on
func WithPath(path string) Option {
	return func(s *Server) {
		s.path = path
	}
}

// WithMaxBodyBytes limits the size of POST bodies
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// New creates an occurrence service backed by expander
func New(expander Expander, opts ...Option) (*Server, error) {
	if expander == nil {
		return nil, fmt.Errorf("expander is required")
	}

	s := &Server{
		expander:     expander,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		path:         DefaultPath,
		maxBodyBytes: defaultMaxBodyBytes,
		handlers:     make(map[string]http.HandlerFunc),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Register method handlers
	s.handlers[http.MethodOptions] = s.handleOptions
	s.handlers[http.MethodGet] = s.handleGet
	s.handlers[http.MethodPost] = s.handlePost

	return s, nil
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("received request",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	if r.URL.Path != s.path {
		s.sendError(w, r, &HTTPError{Status: http.StatusNotFound, Message: "not found"})
		return
	}

	handler, ok := s.handlers[r.Method]
	if !ok {
		w.Header().Set(headerAllow, allowedMethods)
		s.sendError(w, r, ErrMethodNotAllowed)
		return
	}

	handler(w, r)
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(headerAllow, allowedMethods)
	w.WriteHeader(http.StatusOK)
}

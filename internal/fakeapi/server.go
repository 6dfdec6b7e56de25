// Package fakeapi is an in-memory implementation of the analysis service's
// HTTP API. It answers with the same shapes and error bodies as the real
// service and is used for local development and end-to-end tests.
package fakeapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Server struct {
	mux      *http.ServeMux
	routes   []string
	prefix   string
	logger   zerolog.Logger
	db       *memoryDB
	tokens   *tokenIssuer
	analyzer Analyzer
	nowTime  func() time.Time
}

// ServerOption defines a function type to modify the Server instance.
type ServerOption func(*Server)

// WithPrefix mounts every route under prefix instead of /api/v1.
func WithPrefix(prefix string) ServerOption {
	return func(s *Server) {
		s.prefix = strings.TrimRight(prefix, "/")
	}
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = l
	}
}

// WithAnalyzer replaces the page fetcher used by the analyze endpoint.
func WithAnalyzer(a Analyzer) ServerOption {
	return func(s *Server) {
		s.analyzer = a
	}
}

// WithSigningKey sets the HMAC key used for access tokens.
func WithSigningKey(key []byte) ServerOption {
	return func(s *Server) {
		s.tokens.key = key
	}
}

// WithAccessTokenTTL sets how long issued access tokens claim to be valid.
func WithAccessTokenTTL(ttl time.Duration) ServerOption {
	return func(s *Server) {
		s.tokens.ttl = ttl
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServerOption {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

func New(options ...ServerOption) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		prefix:   "/api/v1",
		logger:   zerolog.Nop(),
		db:       newMemoryDB(),
		tokens:   newTokenIssuer(),
		analyzer: NewHTTPAnalyzer(nil, 5),
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	s.tokens.now = func() time.Time { return s.nowTime() }
	s.initRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes lists the registered route patterns.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

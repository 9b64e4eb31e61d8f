// Package api exposes the activity registry over HTTP.
package api

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"sync/atomic"
	"time"

	apperrors "mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/observability"
	"mergington-activities/internal/notify"
	"mergington-activities/internal/registry"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Roster is the registry surface the handlers depend on.
type Roster interface {
	List() registry.Snapshot
	Enroll(name, email string) (*registry.Confirmation, error)
	Withdraw(name, email string) (*registry.Confirmation, error)
}

type Config struct {
	// IndexPath is where GET / redirects to.
	IndexPath      string
	MetricsEnabled bool
	MetricsPath    string
	Version        string
}

type Dependencies struct {
	Registry      Roster
	Notifier      notify.Notifier
	Observability *observability.Observability
	Static        fs.FS
	Logger        logger.Logger
}

type Server struct {
	config     *Config
	registry   Roster
	notifier   notify.Notifier
	obs        *observability.Observability
	static     fs.FS
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
	ready      atomic.Bool
	handler    http.Handler
}

func NewServer(config *Config, deps Dependencies) *Server {
	if config.IndexPath == "" {
		config.IndexPath = "/static/index.html"
	}
	if config.MetricsPath == "" {
		config.MetricsPath = "/metrics"
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.NopNotifier{}
	}
	if deps.Observability == nil {
		deps.Observability = &observability.Observability{}
	}

	log := deps.Logger.WithFields(map[string]interface{}{"component": "api"})
	s := &Server{
		config:     config,
		registry:   deps.Registry,
		notifier:   deps.Notifier,
		obs:        deps.Observability,
		static:     deps.Static,
		logger:     log,
		errHandler: apperrors.NewErrorHandler(log),
	}

	mux := http.NewServeMux()
	s.registerActivityRoutes(mux)
	s.registerSystemRoutes(mux)
	if s.static != nil {
		mux.Handle("GET /static/", http.StripPrefix("/static/", s.staticHandler()))
	}
	if config.MetricsEnabled {
		mux.Handle("GET "+config.MetricsPath, promhttp.Handler())
	}

	s.handler = s.withRequestID(s.withAccessLog(mux))
	s.ready.Store(true)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// SetReady flips the readiness probe; the server binary clears it when
// shutdown begins.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// staticHandler serves the asset tree. http.FileServer redirects any
// ".../index.html" request to its directory, so index files are written
// directly to keep /static/index.html addressable.
func (s *Server) staticHandler() http.Handler {
	files := http.FileServer(http.FS(s.static))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if path.Base(name) != "index.html" {
			files.ServeHTTP(w, r)
			return
		}
		data, err := fs.ReadFile(s.static, name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeContent(w, r, "index.html", time.Time{}, bytes.NewReader(data))
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package api

import (
	"net/http"
	"time"
)

type routeBinding struct {
	pattern string
	handler http.HandlerFunc
}

func (s *Server) registerRoutes(mux *http.ServeMux, routes []routeBinding) {
	for _, route := range routes {
		mux.HandleFunc(route.pattern, s.wrap(route.pattern, route.handler))
	}
}

func (s *Server) registerActivityRoutes(mux *http.ServeMux) {
	s.registerRoutes(mux, []routeBinding{
		{pattern: "GET /activities", handler: s.listActivities},
		{pattern: "POST /activities/{name}/signup", handler: s.signup},
		{pattern: "DELETE /activities/{name}/unregister", handler: s.unregister},
	})
}

func (s *Server) registerSystemRoutes(mux *http.ServeMux) {
	s.registerRoutes(mux, []routeBinding{
		{pattern: "GET /{$}", handler: s.root},
		{pattern: "GET /health", handler: s.health},
		{pattern: "GET /ready", handler: s.readiness},
	})
}

// wrap records request metrics against the route pattern rather than the
// raw path, keeping label cardinality bounded.
func (s *Server) wrap(pattern string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.obs.RecordRequest(r.Context(), pattern, rec.status, time.Since(start))
	}
}

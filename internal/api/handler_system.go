package api

import "net/http"

type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.config.IndexPath, http.StatusTemporaryRedirect)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok", Version: s.config.Version})
}

func (s *Server) readiness(w http.ResponseWriter, _ *http.Request) {
	if !s.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: "shutting down"})
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ready"})
}

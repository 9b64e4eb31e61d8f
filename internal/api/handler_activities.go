package api

import (
	"net/http"

	apperrors "mergington-activities/internal/common/errors"
)

type MessageResponse struct {
	Message string `json:"message"`
}

func (s *Server) listActivities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.List())
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	email, err := requireEmail(r)
	if err != nil {
		s.errHandler.HandleHTTPError(w, r, err)
		return
	}

	conf, err := s.registry.Enroll(name, email)
	if err != nil {
		s.errHandler.HandleHTTPError(w, r, err)
		return
	}

	s.notifier.Enrolled(r.Context(), name, email)
	writeJSON(w, http.StatusOK, MessageResponse{Message: conf.Message})
}

func (s *Server) unregister(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	email, err := requireEmail(r)
	if err != nil {
		s.errHandler.HandleHTTPError(w, r, err)
		return
	}

	conf, err := s.registry.Withdraw(name, email)
	if err != nil {
		s.errHandler.HandleHTTPError(w, r, err)
		return
	}

	s.notifier.Withdrawn(r.Context(), name, email)
	writeJSON(w, http.StatusOK, MessageResponse{Message: conf.Message})
}

// requireEmail reads the mandatory email query parameter. Any non-empty
// value is accepted and stored exactly as sent.
func requireEmail(r *http.Request) (string, error) {
	email := r.URL.Query().Get("email")
	if email == "" {
		return "", apperrors.NewInvalidInputError("email query parameter is required")
	}
	return email, nil
}

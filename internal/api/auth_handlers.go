package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/pagemarkapp/pagemark-server/internal/http/response"
	"github.com/pagemarkapp/pagemark-server/internal/service"
)

// handleRegister creates a new sync account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}

	user, err := s.authService.Register(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, map[string]string{"username": user.Username}, s.logger)
}

// handleAuthCheck confirms the presented credentials. requireAuth has
// already done the work by the time this runs.
func (s *Server) handleAuthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{"authorized": "OK"}, s.logger)
}

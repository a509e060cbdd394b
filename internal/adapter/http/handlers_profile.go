package adapthttp

import (
	"net/http"

	"eatwise/internal/app"
)

func (s *Server) handleProfileMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, callerFrom(r.Context()))
}

func (s *Server) handleSendInvite(w http.ResponseWriter, r *http.Request) {
	var req app.InviteRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	inv, err := s.invites.SendInvite(r.Context(), callerFrom(r.Context()), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (s *Server) handleListInvites(w http.ResponseWriter, r *http.Request) {
	items, err := s.invites.ListInvites(r.Context(), callerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

package adapthttp

import "net/http"

func (s *Server) handleAdminReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.admin.AdminReport(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleWeeklyComparison(w http.ResponseWriter, r *http.Request) {
	report, err := s.admin.WeeklyComparison(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleUserAverages(w http.ResponseWriter, r *http.Request) {
	averages, err := s.admin.UserAverages(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, averages)
}

func (s *Server) handleMovingAverage(w http.ResponseWriter, r *http.Request) {
	window, err := intQuery(r, "window", 7)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	chunks, err := intQuery(r, "chunks", 4)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	counts, err := s.reports.MovingAverage(r.Context(), window, chunks)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"window": window, "chunks": chunks, "days": counts})
}

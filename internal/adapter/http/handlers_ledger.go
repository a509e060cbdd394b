package adapthttp

import (
	"errors"
	"net/http"

	"eatwise/internal/app"
	"eatwise/internal/domain"
)

func (s *Server) handleListEntries(adminScope bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := s.ledger.ListEntries(r.Context(), callerFrom(r.Context()), adminScope)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

func (s *Server) handleCreateEntry(adminScope bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req app.LedgerEntryRequest
		if err := parseJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		e, err := s.ledger.CreateEntry(r.Context(), callerFrom(r.Context()), req, adminScope)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, e)
	}
}

func (s *Server) handleUpdateEntry(adminScope bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		var req app.LedgerEntryRequest
		if err := parseJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		e, err := s.ledger.UpdateEntry(r.Context(), callerFrom(r.Context()), id, req, adminScope)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func (s *Server) handleDeleteEntry(adminScope bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.ledger.DeleteEntry(r.Context(), callerFrom(r.Context()), id, adminScope); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleEntriesByDay always returns at least today's bucket so clients have
// something to render.
func (s *Server) handleEntriesByDay(adminScope bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := s.ledger.ListEntries(r.Context(), callerFrom(r.Context()), adminScope)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		days := s.reports.GroupByDay(entries)
		if len(days) == 0 {
			days = []app.DayBucket{{Day: s.reports.Today(), Entries: []domain.LedgerEntry{}}}
		}
		writeJSON(w, http.StatusOK, map[string]any{"days": days})
	}
}

func (s *Server) handleTotalsByDay(adminScope bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		unit := r.URL.Query().Get("unit")
		if unit == "" {
			unit = "kcal"
		}
		if unit != "kcal" && unit != "kj" {
			writeError(w, http.StatusBadRequest, errors.New(`unit must be "kcal" or "kj"`))
			return
		}
		entries, err := s.ledger.ListEntries(r.Context(), callerFrom(r.Context()), adminScope)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		totals := s.reports.TotalCaloriesByDay(entries)
		if len(totals) == 0 {
			totals = []app.DayTotal{{Day: s.reports.Today()}}
		}
		for i := range totals {
			totals[i].Calories = domain.ConvertEnergy(totals[i].Calories, "kcal", unit)
		}
		writeJSON(w, http.StatusOK, map[string]any{"unit": unit, "days": totals})
	}
}

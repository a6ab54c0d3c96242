package http

import (
	"context"
	"net/http"
	"strings"

	"fintrack/internal/core"
)

// createHandler decodes one record, passes it through the service that fills
// its derived fields, and answers 201 with the stored record.
func createHandler[T any](s *Server, create func(context.Context, T) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec T
		if err := decodeJSON(w, r, &rec); err != nil {
			writeError(w, r, err)
			return
		}
		saved, err := create(r.Context(), rec)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	}
}

// viewHandler lists a user's records evaluated as of the request date.
func viewHandler[T any](s *Server, list func(context.Context, string, core.Date) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := userID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		asOf, err := s.asOf(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		items, err := list(r.Context(), user, asOf)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var b core.Budget
	if err := decodeJSON(w, r, &b); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.records.SetBudget(r.Context(), b); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	asOf, err := s.asOf(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := s.dashboard.Build(r.Context(), user, asOf)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type exportResponse struct {
	LoanID string `json:"loan_id"`
	Sheet  string `json:"sheet"`
}

func (s *Server) handleExportSchedule(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	loanID := strings.TrimSpace(r.PathValue("id"))
	sheet, err := s.records.ExportLoanSchedule(r.Context(), user, loanID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exportResponse{LoanID: loanID, Sheet: sheet})
}

package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type BorrowRequestRequest struct {
	BookID string `json:"bookId"`
}

func (s *Server) RequestBorrow(w http.ResponseWriter, r *http.Request) {
	var req BorrowRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.BookID) == "" {
		WriteError(w, http.StatusBadRequest, "Field bookId is required")
		return
	}
	session, _ := CurrentSession(r)
	request, err := s.Borrows.Request(r.Context(), session.UserID, req.BookID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusCreated, "Borrow request submitted", request)
}

func (s *Server) CancelRequest(w http.ResponseWriter, r *http.Request) {
	session, _ := CurrentSession(r)
	if err := s.Borrows.Cancel(r.Context(), session, chi.URLParam(r, "requestId")); err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "Request cancelled", nil)
}

func (s *Server) ReturnLoan(w http.ResponseWriter, r *http.Request) {
	session, _ := CurrentSession(r)
	rec, err := s.Borrows.Return(r.Context(), session, CurrentRole(r), chi.URLParam(r, "recordId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "Book returned", rec)
}

func (s *Server) MyRequests(w http.ResponseWriter, r *http.Request) {
	session, _ := CurrentSession(r)
	entries, err := s.Borrows.StudentRequests(r.Context(), session.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "OK", entries)
}

func (s *Server) MyLoans(w http.ResponseWriter, r *http.Request) {
	session, _ := CurrentSession(r)
	activeOnly := r.URL.Query().Get("active") == "true"
	entries, err := s.Borrows.StudentLoans(r.Context(), session.UserID, activeOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "OK", entries)
}

func (s *Server) ListRequests(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Borrows.Requests(r.Context(), strings.TrimSpace(r.URL.Query().Get("status")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "OK", entries)
}

func (s *Server) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Borrows.Approve(r.Context(), chi.URLParam(r, "requestId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "Request approved", rec)
}

func (s *Server) RejectRequest(w http.ResponseWriter, r *http.Request) {
	if err := s.Borrows.Reject(r.Context(), chi.URLParam(r, "requestId")); err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "Request rejected", nil)
}

func (s *Server) ListLoans(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	entries, err := s.Borrows.Loans(r.Context(), activeOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "OK", entries)
}

func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	counts, err := s.Stats.DashboardCounts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "OK", counts)
}

package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"digilib-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.Accounts.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "OK", users)
}

func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in services.AccountInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	user, err := s.Accounts.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusCreated, "User created", services.Public(user))
}

func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var in services.AccountInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	user, err := s.Accounts.Update(r.Context(), chi.URLParam(r, "userId"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "User updated", services.Public(user))
}

func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	session, _ := CurrentSession(r)
	if err := s.Accounts.Delete(r.Context(), session.UserID, chi.URLParam(r, "userId")); err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "User deleted", nil)
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

func (s *Server) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := s.Accounts.ResetPassword(r.Context(), chi.URLParam(r, "userId"), req.Password); err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "Password updated", nil)
}

func (s *Server) ServerStatus(w http.ResponseWriter, r *http.Request) {
	WriteData(w, http.StatusOK, "OK", services.CaptureStatus(s.Config.MediaStoragePath))
}

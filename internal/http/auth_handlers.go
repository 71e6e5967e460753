package httpapi

import (
	"encoding/json"
	"net/http"

	"digilib-backend-go/internal/services"
)

type RegisterRequest struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Department string `json:"department"`
	Age        int    `json:"age"`
	Sex        string `json:"sex"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string              `json:"token"`
	User  services.PublicUser `json:"user"`
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	user, err := s.Auth.Register(r.Context(), services.Registration{
		FullName:   req.FullName,
		Email:      req.Email,
		Password:   req.Password,
		Department: req.Department,
		Age:        req.Age,
		Sex:        req.Sex,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusCreated, "Registration successful", services.Public(user))
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	session, user, err := s.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	token, err := s.Tokens.Sign(session.ID, user.ID)
	if err != nil {
		writeServiceError(w, services.ErrStorage(err))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	WriteData(w, http.StatusOK, "Login successful", LoginResponse{Token: token, User: services.Public(user)})
}

// Logout destroys the server-side session and clears the cookie. A missing
// or stale token is not an error.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if session, ok := CurrentSession(r); ok {
		s.Auth.Logout(session.ID)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	WriteData(w, http.StatusOK, "Logged out", nil)
}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	session, _ := CurrentSession(r)
	user, err := s.Auth.CurrentUser(r.Context(), session)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "OK", services.Public(user))
}

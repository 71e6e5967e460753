package httpapi

import (
	"net/http"

	"digilib-backend-go/internal/services"

	"github.com/gorilla/websocket"
)

// EventsSocket streams borrow lifecycle events to staff dashboards. Browsers
// cannot set headers on websocket upgrades, so the token rides the query
// string.
func (s *Server) EventsSocket(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	sessionID, err := s.Tokens.SessionID(tokenStr)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	session, ok := s.Sessions.Get(sessionID)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	user, err := s.Users.GetUserByID(r.Context(), session.UserID)
	if err != nil || !services.IsStaff(user.Role) {
		WriteError(w, http.StatusForbidden, "Not allowed")
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.Hub.Add(conn)
	defer func() {
		s.Hub.Remove(conn)
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

package services

import (
	"sync"
	"time"

	"digilib-backend-go/internal/models"

	"github.com/google/uuid"
)

// SessionManager is the process-owned registry of live sessions. Sessions are
// created on login, destroyed on logout (or when their user is deleted) and
// vanish with the process; they are never persisted. There is no automatic
// expiry.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: map[string]models.Session{}}
}

// Create registers a new session populated from the user row.
func (m *SessionManager) Create(user *models.User) models.Session {
	session := models.Session{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		Email:      user.Email,
		FullName:   user.FullName,
		Role:       user.Role,
		Department: user.Department,
		CreatedAt:  time.Now().UTC(),
	}
	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()
	return session
}

func (m *SessionManager) Get(id string) (models.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	return session, ok
}

// Delete is idempotent; deleting an absent session is not an error.
func (m *SessionManager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// DeleteByUser drops every session belonging to userID, used when an admin
// deletes the account.
func (m *SessionManager) DeleteByUser(userID string) {
	m.mu.Lock()
	for id, session := range m.sessions {
		if session.UserID == userID {
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()
}

// Refresh re-caches identity fields after the user row changed. The cached
// role is display-only; privileged checks re-derive it from the store.
func (m *SessionManager) Refresh(user *models.User) {
	m.mu.Lock()
	for id, session := range m.sessions {
		if session.UserID == user.ID {
			session.Email = user.Email
			session.FullName = user.FullName
			session.Role = user.Role
			session.Department = user.Department
			m.sessions[id] = session
		}
	}
	m.mu.Unlock()
}

package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"digilib-backend-go/internal/models"
	"digilib-backend-go/internal/store"

	"github.com/google/uuid"
)

type AuthService struct {
	users    store.Users
	sessions *SessionManager
	hasher   PasswordHasher
}

func NewAuthService(users store.Users, sessions *SessionManager) *AuthService {
	return &AuthService{users: users, sessions: sessions}
}

type Registration struct {
	FullName   string
	Email      string
	Password   string
	Department string
	Age        int
	Sex        string
}

// PublicUser is the projection returned to callers; it never carries the
// password hash.
type PublicUser struct {
	ID         string `json:"id"`
	StudentID  string `json:"studId"`
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Age        int    `json:"age,omitempty"`
	Sex        string `json:"sex,omitempty"`
}

func Public(user *models.User) PublicUser {
	return PublicUser{
		ID:         user.ID,
		StudentID:  user.StudentID,
		FullName:   user.FullName,
		Email:      user.Email,
		Role:       user.Role,
		Department: user.Department,
		Age:        user.Age,
		Sex:        user.Sex,
	}
}

// Register creates a student account. The role is always student here; staff
// accounts are created by an admin through the account service.
func (s *AuthService) Register(ctx context.Context, reg Registration) (*models.User, error) {
	fields := map[string]string{
		"full_name":  reg.FullName,
		"email":      reg.Email,
		"password":   reg.Password,
		"department": reg.Department,
		"sex":        reg.Sex,
	}
	for _, name := range []string{"full_name", "email", "password", "department", "sex"} {
		if strings.TrimSpace(fields[name]) == "" {
			return nil, ErrValidation(fmt.Sprintf("Field %s is required", name))
		}
	}
	if reg.Age <= 0 {
		return nil, ErrValidation("Field age is required")
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return nil, ErrStorage(err)
	}
	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		StudentID:    NewStudentID(),
		FullName:     strings.TrimSpace(reg.FullName),
		Age:          reg.Age,
		Sex:          strings.TrimSpace(reg.Sex),
		Department:   strings.TrimSpace(reg.Department),
		Email:        strings.ToLower(strings.TrimSpace(reg.Email)),
		PasswordHash: hash,
		Role:         models.RoleStudent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.InsertUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail()
		}
		return nil, ErrStorage(err)
	}
	return user, nil
}

// Login verifies the credentials and establishes a fresh session.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.Session, *models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return models.Session{}, nil, ErrValidation("Email and password are required")
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Session{}, nil, ErrInvalidCredentials()
		}
		return models.Session{}, nil, ErrStorage(err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return models.Session{}, nil, ErrInvalidCredentials()
	}
	return s.sessions.Create(user), user, nil
}

// Logout destroys the session unconditionally; absent sessions are fine.
func (s *AuthService) Logout(sessionID string) {
	s.sessions.Delete(sessionID)
}

// CurrentUser re-fetches the session's user from the store so role or profile
// edits made by an admin take effect on the next lookup. A vanished user row
// invalidates the session.
func (s *AuthService) CurrentUser(ctx context.Context, session models.Session) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.sessions.Delete(session.ID)
			return nil, ErrNotAuthenticated()
		}
		return nil, ErrStorage(err)
	}
	return user, nil
}

// NewStudentID mints the display identifier students see on their profile.
// The bounded random range means collisions are possible; the value is not a
// key anywhere.
func NewStudentID() string {
	return fmt.Sprintf("STU%04d", rand.IntN(9999)+1)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"digilib-backend-go/internal/models"
	"digilib-backend-go/internal/store"

	"github.com/google/uuid"
)

// AccountService is the admin-side user management: create with a chosen
// role, edit, delete and reset passwords.
type AccountService struct {
	users    store.Users
	sessions *SessionManager
	hasher   PasswordHasher
}

func NewAccountService(users store.Users, sessions *SessionManager) *AccountService {
	return &AccountService{users: users, sessions: sessions}
}

type AccountInput struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Password   string `json:"password,omitempty"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Age        int    `json:"age"`
	Sex        string `json:"sex"`
}

func validRole(role string) bool {
	switch role {
	case models.RoleStudent, models.RoleLibrarian, models.RoleAdmin:
		return true
	}
	return false
}

func (s *AccountService) List(ctx context.Context, search string) ([]PublicUser, error) {
	users, err := s.users.ListUsers(ctx, search)
	if err != nil {
		return nil, ErrStorage(err)
	}
	public := make([]PublicUser, 0, len(users))
	for i := range users {
		public = append(public, Public(&users[i]))
	}
	return public, nil
}

func (s *AccountService) Create(ctx context.Context, in AccountInput) (*models.User, error) {
	if strings.TrimSpace(in.FullName) == "" {
		return nil, ErrValidation("Field full_name is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return nil, ErrValidation("Field email is required")
	}
	if in.Password == "" {
		return nil, ErrValidation("Field password is required")
	}
	if !validRole(in.Role) {
		return nil, ErrValidation(fmt.Sprintf("Unknown role %q", in.Role))
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, ErrStorage(err)
	}
	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		StudentID:    NewStudentID(),
		FullName:     strings.TrimSpace(in.FullName),
		Age:          in.Age,
		Sex:          strings.TrimSpace(in.Sex),
		Department:   strings.TrimSpace(in.Department),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		Role:         in.Role,
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

func (s *AccountService) Update(ctx context.Context, id string, in AccountInput) (*models.User, error) {
	if !validRole(in.Role) {
		return nil, ErrValidation(fmt.Sprintf("Unknown role %q", in.Role))
	}
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, wrapStore(err, "User not found")
	}
	if strings.TrimSpace(in.FullName) != "" {
		user.FullName = strings.TrimSpace(in.FullName)
	}
	if strings.TrimSpace(in.Email) != "" {
		user.Email = strings.ToLower(strings.TrimSpace(in.Email))
	}
	user.Role = in.Role
	user.Department = strings.TrimSpace(in.Department)
	user.Age = in.Age
	user.Sex = strings.TrimSpace(in.Sex)
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, wrapStore(err, "User not found")
	}
	s.sessions.Refresh(user)
	return user, nil
}

// Delete removes the account and kills any live sessions it holds. Admins
// cannot delete themselves.
func (s *AccountService) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return ErrValidation("You cannot delete your own account")
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return wrapStore(err, "User not found")
	}
	s.sessions.DeleteByUser(id)
	return nil
}

func (s *AccountService) ResetPassword(ctx context.Context, id, newPassword string) error {
	if newPassword == "" {
		return ErrValidation("Field password is required")
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return ErrStorage(err)
	}
	return wrapStore(s.users.SetUserPassword(ctx, id, hash), "User not found")
}

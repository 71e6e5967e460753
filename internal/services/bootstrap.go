package services

import (
	"context"
	"errors"
	"time"

	"digilib-backend-go/internal/models"
	"digilib-backend-go/internal/store"

	"github.com/google/uuid"
)

// EnsureAdminUser creates the bootstrap admin account on first start so the
// portal is manageable before any registration happens. Idempotent: an
// existing row with the same email wins.
func EnsureAdminUser(ctx context.Context, users store.Users, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	if _, err := users.GetUserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	var hasher PasswordHasher
	hash, err := hasher.Hash(password)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	err = users.InsertUser(ctx, &models.User{
		ID:           uuid.NewString(),
		StudentID:    NewStudentID(),
		FullName:     "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, store.ErrDuplicateEmail) {
		return nil
	}
	return err
}

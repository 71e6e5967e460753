package services_test

import (
	"context"
	"testing"

	"digilib-backend-go/internal/models"
	"digilib-backend-go/internal/services"
	"digilib-backend-go/internal/store/memory"
)

func TestAccountCreateRejectsUnknownRole(t *testing.T) {
	db := memory.New()
	svc := services.NewAccountService(db, services.NewSessionManager())
	_, err := svc.Create(context.Background(), services.AccountInput{
		FullName: "X",
		Email:    "x@example.com",
		Password: "pw1",
		Role:     "superuser",
	})
	svcErr, ok := services.AsServiceError(err)
	if !ok || svcErr.Code != services.CodeValidation {
		t.Fatalf("err = %v, want validation failure", err)
	}
}

func TestAccountSelfDeleteRefused(t *testing.T) {
	db := memory.New()
	sessions := services.NewSessionManager()
	svc := services.NewAccountService(db, sessions)
	ctx := context.Background()
	admin := seedUser(t, db, models.RoleAdmin)

	err := svc.Delete(ctx, admin.ID, admin.ID)
	svcErr, ok := services.AsServiceError(err)
	if !ok || svcErr.Code != services.CodeValidation {
		t.Fatalf("err = %v, want validation failure", err)
	}
	if _, err := db.GetUserByID(ctx, admin.ID); err != nil {
		t.Fatal("admin account deleted despite refusal")
	}
}

func TestAccountDeleteKillsSessions(t *testing.T) {
	db := memory.New()
	sessions := services.NewSessionManager()
	svc := services.NewAccountService(db, sessions)
	ctx := context.Background()
	admin := seedUser(t, db, models.RoleAdmin)
	victim := seedUser(t, db, models.RoleStudent)
	session := sessions.Create(victim)

	if err := svc.Delete(ctx, admin.ID, victim.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := sessions.Get(session.ID); ok {
		t.Fatal("victim session survived account deletion")
	}
}

func TestAccountUpdateRefreshesSessionRole(t *testing.T) {
	db := memory.New()
	sessions := services.NewSessionManager()
	svc := services.NewAccountService(db, sessions)
	ctx := context.Background()
	user := seedUser(t, db, models.RoleStudent)
	session := sessions.Create(user)

	if _, err := svc.Update(ctx, user.ID, services.AccountInput{Role: models.RoleLibrarian}); err != nil {
		t.Fatalf("update: %v", err)
	}
	refreshed, ok := sessions.Get(session.ID)
	if !ok || refreshed.Role != models.RoleLibrarian {
		t.Fatalf("session role = %q, want librarian", refreshed.Role)
	}
	stored, _ := db.GetUserByID(ctx, user.ID)
	if stored.Role != models.RoleLibrarian {
		t.Fatalf("stored role = %q, want librarian", stored.Role)
	}
}

func TestResetPassword(t *testing.T) {
	db := memory.New()
	sessions := services.NewSessionManager()
	svc := services.NewAccountService(db, sessions)
	auth := services.NewAuthService(db, sessions)
	ctx := context.Background()

	user, err := auth.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.ResetPassword(ctx, user.ID, "new-pw"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, _, err := auth.Login(ctx, user.Email, "pw1"); err == nil {
		t.Fatal("old password still accepted")
	}
	if _, _, err := auth.Login(ctx, user.Email, "new-pw"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"digilib-backend-go/internal/config"
	httpapi "digilib-backend-go/internal/http"
	"digilib-backend-go/internal/models"
	"digilib-backend-go/internal/services"
	"digilib-backend-go/internal/store"
	"digilib-backend-go/internal/store/memory"

	"github.com/google/uuid"
)

func newTestServer(t *testing.T) (http.Handler, *memory.DB) {
	t.Helper()
	cfg := config.Config{
		SessionSecret:    "test-secret",
		SessionIssuer:    "digilib",
		MediaStoragePath: t.TempDir(),
	}
	db := memory.New()
	server := httpapi.NewServer(cfg, db, services.NewEventHub())
	return server.Router(), db
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	var env envelope
	_ = json.Unmarshal(recorder.Body.Bytes(), &env)
	return recorder, env
}

func registerAndLogin(t *testing.T, handler http.Handler, email string) string {
	t.Helper()
	rec, _ := doJSON(t, handler, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"fullName":   "Alice Example",
		"email":      email,
		"password":   "pw1",
		"department": "Physics",
		"age":        21,
		"sex":        "F",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body.String())
	}
	return login(t, handler, email, "pw1")
}

func login(t *testing.T, handler http.Handler, email, password string) string {
	t.Helper()
	rec, env := doJSON(t, handler, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil || payload.Token == "" {
		t.Fatalf("login response missing token: %s", env.Data)
	}
	return payload.Token
}

func seedStaff(t *testing.T, db *memory.DB, role string) string {
	t.Helper()
	var hasher services.PasswordHasher
	hash, err := hasher.Hash("staffpw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	email := uuid.NewString() + "@example.com"
	now := time.Now().UTC()
	err = db.InsertUser(context.Background(), &models.User{
		ID:           uuid.NewString(),
		StudentID:    services.NewStudentID(),
		FullName:     "Staff Member",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("insert staff: %v", err)
	}
	return email
}

func seedBook(t *testing.T, db *memory.DB, title string) *models.Book {
	t.Helper()
	now := time.Now().UTC()
	book := &models.Book{
		ID:        uuid.NewString(),
		Title:     title,
		Author:    "Author",
		Status:    models.BookAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.InsertBook(context.Background(), book); err != nil {
		t.Fatalf("insert book: %v", err)
	}
	return book
}

func TestBorrowRequestRequiresSession(t *testing.T) {
	handler, db := newTestServer(t)
	book := seedBook(t, db, "Unauthorized Target")

	rec, env := doJSON(t, handler, http.MethodPost, "/api/borrow/requests", "", map[string]string{"bookId": book.ID})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if env.Success {
		t.Fatal("envelope reports success on auth failure")
	}
	requests, _ := db.ListRequests(context.Background(), store.RequestFilter{})
	if len(requests) != 0 {
		t.Fatalf("requests persisted without a session: %d", len(requests))
	}
}

func TestGarbageTokenIsAnonymous(t *testing.T) {
	handler, _ := newTestServer(t)
	rec, _ := doJSON(t, handler, http.MethodGet, "/api/auth/me", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestGuestCanBrowseCatalog(t *testing.T) {
	handler, db := newTestServer(t)
	seedBook(t, db, "Open Access")

	rec, env := doJSON(t, handler, http.MethodGet, "/api/books", "", nil)
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("guest list status = %d", rec.Code)
	}
	var books []models.Book
	if err := json.Unmarshal(env.Data, &books); err != nil || len(books) != 1 {
		t.Fatalf("books payload: %s", env.Data)
	}
}

func TestStudentCannotReachStaffOrAdmin(t *testing.T) {
	handler, _ := newTestServer(t)
	token := registerAndLogin(t, handler, "student@example.com")

	for _, path := range []string{"/api/staff/dashboard", "/api/staff/requests"} {
		rec, _ := doJSON(t, handler, http.MethodGet, path, token, nil)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("GET %s status = %d, want 403", path, rec.Code)
		}
	}
	rec, _ := doJSON(t, handler, http.MethodGet, "/api/admin/users", token, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("admin listing status = %d, want 403", rec.Code)
	}
}

func TestLibrarianCannotReachAdmin(t *testing.T) {
	handler, db := newTestServer(t)
	email := seedStaff(t, db, models.RoleLibrarian)
	token := login(t, handler, email, "staffpw")

	rec, _ := doJSON(t, handler, http.MethodGet, "/api/admin/users", token, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	rec, _ = doJSON(t, handler, http.MethodGet, "/api/staff/dashboard", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d, want 200", rec.Code)
	}
}

func TestBorrowLifecycleOverHTTP(t *testing.T) {
	handler, db := newTestServer(t)
	studentToken := registerAndLogin(t, handler, "borrower@example.com")
	librarianEmail := seedStaff(t, db, models.RoleLibrarian)
	staffToken := login(t, handler, librarianEmail, "staffpw")
	book := seedBook(t, db, "The Go Programming Language")

	rec, env := doJSON(t, handler, http.MethodPost, "/api/borrow/requests", studentToken, map[string]string{"bookId": book.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("request status = %d: %s", rec.Code, rec.Body.String())
	}
	var request models.BorrowRequest
	if err := json.Unmarshal(env.Data, &request); err != nil {
		t.Fatalf("request payload: %v", err)
	}

	rec, _ = doJSON(t, handler, http.MethodPost, "/api/borrow/requests", studentToken, map[string]string{"bookId": book.ID})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate request status = %d, want 409", rec.Code)
	}

	rec, env = doJSON(t, handler, http.MethodPost, "/api/staff/requests/"+request.ID+"/approve", staffToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d: %s", rec.Code, rec.Body.String())
	}
	var record models.BorrowRecord
	if err := json.Unmarshal(env.Data, &record); err != nil {
		t.Fatalf("record payload: %v", err)
	}
	if got := record.DueAt.Sub(record.BorrowedAt); got != models.LoanPeriod {
		t.Fatalf("loan period = %s", got)
	}

	rec, env = doJSON(t, handler, http.MethodGet, "/api/me/loans?active=true", studentToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("my loans status = %d", rec.Code)
	}
	var loans []json.RawMessage
	if err := json.Unmarshal(env.Data, &loans); err != nil || len(loans) != 1 {
		t.Fatalf("loans payload: %s", env.Data)
	}

	rec, _ = doJSON(t, handler, http.MethodPost, "/api/borrow/loans/"+record.ID+"/return", studentToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("return status = %d: %s", rec.Code, rec.Body.String())
	}
	gotBook, _ := db.GetBookByID(context.Background(), book.ID)
	if gotBook.Status != models.BookAvailable {
		t.Fatalf("book status after return = %q", gotBook.Status)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	handler, _ := newTestServer(t)
	token := registerAndLogin(t, handler, "leaver@example.com")

	rec, _ := doJSON(t, handler, http.MethodGet, "/api/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me before logout status = %d", rec.Code)
	}
	rec, _ = doJSON(t, handler, http.MethodPost, "/api/auth/logout", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}
	// The JWT is still well formed but its session is gone.
	rec, _ = doJSON(t, handler, http.MethodGet, "/api/auth/me", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout status = %d, want 401", rec.Code)
	}
}

func TestAdminUserManagement(t *testing.T) {
	handler, db := newTestServer(t)
	adminEmail := seedStaff(t, db, models.RoleAdmin)
	adminToken := login(t, handler, adminEmail, "staffpw")

	rec, env := doJSON(t, handler, http.MethodPost, "/api/admin/users", adminToken, map[string]interface{}{
		"fullName": "New Librarian",
		"email":    "librarian@example.com",
		"password": "pw1",
		"role":     models.RoleLibrarian,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user status = %d: %s", rec.Code, rec.Body.String())
	}
	var created services.PublicUser
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("created payload: %v", err)
	}
	if created.Role != models.RoleLibrarian {
		t.Fatalf("created role = %q", created.Role)
	}

	rec, _ = doJSON(t, handler, http.MethodDelete, "/api/admin/users/"+created.ID, adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete user status = %d", rec.Code)
	}

	// Self-deletion is refused.
	admin, err := db.GetUserByEmail(context.Background(), adminEmail)
	if err != nil {
		t.Fatalf("lookup admin: %v", err)
	}
	rec, _ = doJSON(t, handler, http.MethodDelete, "/api/admin/users/"+admin.ID, adminToken, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("self delete status = %d, want 400", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	handler, _ := newTestServer(t)
	rec, env := doJSON(t, handler, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}

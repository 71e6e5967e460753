package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"digilib-backend-go/internal/models"
	"digilib-backend-go/internal/store"
)

func pendingRequest(student, book string) *models.BorrowRequest {
	return &models.BorrowRequest{
		ID:          student + "/" + book,
		BookID:      book,
		StudentID:   student,
		Status:      models.RequestPending,
		RequestedAt: time.Now().UTC(),
	}
}

func availableBook(id string) *models.Book {
	return &models.Book{ID: id, Title: "T", Author: "A", Status: models.BookAvailable}
}

func TestInsertUserDuplicateEmailCaseInsensitive(t *testing.T) {
	db := New()
	ctx := context.Background()
	if err := db.InsertUser(ctx, &models.User{ID: "u1", Email: "Dup@Example.com"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	err := db.InsertUser(ctx, &models.User{ID: "u2", Email: "dup@example.COM"})
	if !errors.Is(err, store.ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestOnePendingRequestPerPair(t *testing.T) {
	db := New()
	ctx := context.Background()
	if err := db.InsertBook(ctx, availableBook("b1")); err != nil {
		t.Fatalf("insert book: %v", err)
	}
	if err := db.InsertRequest(ctx, pendingRequest("s1", "b1")); err != nil {
		t.Fatalf("first request: %v", err)
	}
	second := pendingRequest("s1", "b1")
	second.ID = "other-id"
	if err := db.InsertRequest(ctx, second); !errors.Is(err, store.ErrDuplicatePending) {
		t.Fatalf("err = %v, want ErrDuplicatePending", err)
	}
	// A different student may file for the same book.
	if err := db.InsertRequest(ctx, pendingRequest("s2", "b1")); err != nil {
		t.Fatalf("second student: %v", err)
	}
}

func TestApproveEnforcesOneActiveLoan(t *testing.T) {
	db := New()
	ctx := context.Background()
	if err := db.InsertBook(ctx, availableBook("b1")); err != nil {
		t.Fatalf("insert book: %v", err)
	}
	first := pendingRequest("s1", "b1")
	second := pendingRequest("s2", "b1")
	for _, req := range []*models.BorrowRequest{first, second} {
		if err := db.InsertRequest(ctx, req); err != nil {
			t.Fatalf("insert request: %v", err)
		}
	}

	now := time.Now().UTC()
	rec := &models.BorrowRecord{ID: "r1", BorrowedAt: now, DueAt: now.Add(models.LoanPeriod)}
	if err := db.Approve(ctx, first.ID, rec); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if rec.BookID != "b1" || rec.StudentID != "s1" {
		t.Fatalf("record not filled from request: %+v", rec)
	}
	book, _ := db.GetBookByID(ctx, "b1")
	if book.Status != models.BookBorrowed {
		t.Fatalf("book status = %q", book.Status)
	}

	other := &models.BorrowRecord{ID: "r2", BorrowedAt: now, DueAt: now.Add(models.LoanPeriod)}
	if err := db.Approve(ctx, second.ID, other); !errors.Is(err, store.ErrBookUnavailable) {
		t.Fatalf("err = %v, want ErrBookUnavailable", err)
	}
	req, _ := db.GetRequest(ctx, second.ID)
	if req.Status != models.RequestPending {
		t.Fatalf("losing request = %q, want pending", req.Status)
	}
}

func TestApproveNonPending(t *testing.T) {
	db := New()
	ctx := context.Background()
	if err := db.InsertBook(ctx, availableBook("b1")); err != nil {
		t.Fatalf("insert book: %v", err)
	}
	req := pendingRequest("s1", "b1")
	if err := db.InsertRequest(ctx, req); err != nil {
		t.Fatalf("insert request: %v", err)
	}
	if err := db.Reject(ctx, req.ID, time.Now().UTC()); err != nil {
		t.Fatalf("reject: %v", err)
	}
	rec := &models.BorrowRecord{ID: "r1"}
	if err := db.Approve(ctx, req.ID, rec); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("approve rejected request err = %v, want ErrNotFound", err)
	}
	book, _ := db.GetBookByID(ctx, "b1")
	if book.Status != models.BookAvailable {
		t.Fatal("rejected approval changed book state")
	}
}

func TestReturnRestoresAvailability(t *testing.T) {
	db := New()
	ctx := context.Background()
	if err := db.InsertBook(ctx, availableBook("b1")); err != nil {
		t.Fatalf("insert book: %v", err)
	}
	req := pendingRequest("s1", "b1")
	if err := db.InsertRequest(ctx, req); err != nil {
		t.Fatalf("insert request: %v", err)
	}
	now := time.Now().UTC()
	rec := &models.BorrowRecord{ID: "r1", BorrowedAt: now, DueAt: now.Add(models.LoanPeriod)}
	if err := db.Approve(ctx, req.ID, rec); err != nil {
		t.Fatalf("approve: %v", err)
	}

	returned, err := db.Return(ctx, "r1", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if returned.ReturnedAt == nil {
		t.Fatal("returned record missing timestamp")
	}
	book, _ := db.GetBookByID(ctx, "b1")
	if book.Status != models.BookAvailable {
		t.Fatalf("book status = %q, want available", book.Status)
	}
	if _, err := db.Return(ctx, "r1", now); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("double return err = %v, want ErrNotFound", err)
	}
	if _, err := db.ActiveRecord(ctx, "s1", "b1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatal("active record survived return")
	}
}

func TestDashboardCounts(t *testing.T) {
	db := New()
	ctx := context.Background()
	if err := db.InsertUser(ctx, &models.User{ID: "u1", Email: "a@example.com"}); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if err := db.InsertBook(ctx, availableBook("b1")); err != nil {
		t.Fatalf("insert book: %v", err)
	}
	if err := db.InsertBook(ctx, availableBook("b2")); err != nil {
		t.Fatalf("insert book: %v", err)
	}
	req := pendingRequest("u1", "b1")
	if err := db.InsertRequest(ctx, req); err != nil {
		t.Fatalf("insert request: %v", err)
	}
	now := time.Now().UTC()
	if err := db.Approve(ctx, req.ID, &models.BorrowRecord{ID: "r1", BorrowedAt: now, DueAt: now.Add(models.LoanPeriod)}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := db.InsertRequest(ctx, pendingRequest("u1", "b2")); err != nil {
		t.Fatalf("insert pending: %v", err)
	}

	counts, err := db.DashboardCounts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	want := store.DashboardCounts{Books: 2, Available: 1, Borrowed: 1, PendingRequests: 1, Users: 1}
	if counts != want {
		t.Fatalf("counts = %+v, want %+v", counts, want)
	}
}

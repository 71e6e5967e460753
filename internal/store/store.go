// Package store defines the persistence ports consumed by the services, plus
// the row shapes returned by joined queries. Implementations live in the
// postgres and memory subpackages.
package store

import (
	"context"
	"errors"
	"time"

	"digilib-backend-go/internal/models"
)

var (
	// ErrNotFound covers missing rows and state-gated updates: approving or
	// rejecting a request that is not pending reports ErrNotFound, matching
	// the lookup that found nothing to transition.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicateEmail is returned when inserting a user whose email is taken.
	ErrDuplicateEmail = errors.New("store: email already registered")
	// ErrDuplicatePending is returned when a second pending request for the
	// same (student, book) pair would be created.
	ErrDuplicatePending = errors.New("store: pending request already exists")
	// ErrBookUnavailable is returned by Approve when the book already has an
	// active loan.
	ErrBookUnavailable = errors.New("store: book already borrowed")
)

// BookFilter narrows List results. Empty fields match everything.
type BookFilter struct {
	Query      string
	Department string
	Status     string
}

// RequestFilter narrows ListRequests results.
type RequestFilter struct {
	Status    string
	StudentID string
}

// DownloadEntry is a download log row joined with its book.
type DownloadEntry struct {
	models.DownloadRecord
	Title     string  `db:"title" json:"title"`
	Author    string  `db:"author" json:"author"`
	CoverPath *string `db:"cover_path" json:"coverPath"`
}

// RequestEntry is a borrow request joined with book and student display data.
type RequestEntry struct {
	models.BorrowRequest
	BookTitle   string `db:"book_title" json:"bookTitle"`
	BookAuthor  string `db:"book_author" json:"bookAuthor"`
	StudentName string `db:"student_name" json:"studentName"`
}

// LoanEntry is a borrow record joined with book and student display data.
type LoanEntry struct {
	models.BorrowRecord
	BookTitle   string `db:"book_title" json:"bookTitle"`
	BookAuthor  string `db:"book_author" json:"bookAuthor"`
	StudentName string `db:"student_name" json:"studentName"`
}

// DashboardCounts backs the staff dashboard summary.
type DashboardCounts struct {
	Books           int `db:"books" json:"books"`
	Available       int `db:"available" json:"available"`
	Borrowed        int `db:"borrowed" json:"borrowed"`
	PendingRequests int `db:"pending_requests" json:"pendingRequests"`
	Users           int `db:"users" json:"users"`
}

type Users interface {
	InsertUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context, search string) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	SetUserPassword(ctx context.Context, id, passwordHash string) error
	DeleteUser(ctx context.Context, id string) error
}

type Books interface {
	InsertBook(ctx context.Context, book *models.Book) error
	GetBookByID(ctx context.Context, id string) (*models.Book, error)
	ListBooks(ctx context.Context, filter BookFilter) ([]models.Book, error)
	UpdateBook(ctx context.Context, book *models.Book) error
	DeleteBook(ctx context.Context, id string) error
}

type Downloads interface {
	// RecordDownload appends a download log row and bumps the book's
	// materialized downloads counter in the same unit.
	RecordDownload(ctx context.Context, rec *models.DownloadRecord) error
	ListDownloadsByStudent(ctx context.Context, studentID string) ([]DownloadEntry, error)
}

// Borrows owns the check-then-act sequences of the borrow lifecycle. The
// multi-row transitions (Approve, Return) are atomic in every implementation,
// and the one-pending-per-pair / one-active-loan-per-book invariants are
// enforced here rather than by callers.
type Borrows interface {
	InsertRequest(ctx context.Context, req *models.BorrowRequest) error
	GetRequest(ctx context.Context, id string) (*models.BorrowRequest, error)
	DeleteRequest(ctx context.Context, id string) error
	ListRequests(ctx context.Context, filter RequestFilter) ([]RequestEntry, error)

	// Approve transitions a pending request to approved, creates rec as the
	// active loan and marks the book borrowed. ErrNotFound when the request
	// is absent or not pending; ErrBookUnavailable when the book already has
	// an active loan (the request stays pending).
	Approve(ctx context.Context, requestID string, rec *models.BorrowRecord) error
	// Reject transitions a pending request to rejected. ErrNotFound when the
	// request is absent or not pending.
	Reject(ctx context.Context, requestID string, at time.Time) error

	GetRecord(ctx context.Context, id string) (*models.BorrowRecord, error)
	ActiveRecord(ctx context.Context, studentID, bookID string) (*models.BorrowRecord, error)
	// Return closes an active loan and marks the book available again.
	// ErrNotFound when no active record matches id.
	Return(ctx context.Context, recordID string, at time.Time) (*models.BorrowRecord, error)
	ListLoans(ctx context.Context, studentID string, activeOnly bool) ([]LoanEntry, error)
}

type Stats interface {
	DashboardCounts(ctx context.Context) (DashboardCounts, error)
}

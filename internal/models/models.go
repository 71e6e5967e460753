package models

import "time"

// Role codes stored on users.role. The store is the source of truth for a
// user's role; sessions only cache it for display.
const (
	RoleStudent   = "student"
	RoleLibrarian = "librarian"
	RoleAdmin     = "admin"
)

// Book status values. status = borrowed iff an active borrow record exists.
const (
	BookAvailable = "available"
	BookBorrowed  = "borrowed"
)

// Borrow request states.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// LoanPeriod is the fixed loan length applied when a request is approved.
const LoanPeriod = 14 * 24 * time.Hour

type User struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"stud_id" json:"studId"`
	FullName     string    `db:"full_name" json:"fullName"`
	Age          int       `db:"age" json:"age"`
	Sex          string    `db:"sex" json:"sex"`
	Department   string    `db:"department" json:"department"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

type Book struct {
	ID         string    `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	Author     string    `db:"author" json:"author"`
	ISBN       string    `db:"isbn" json:"isbn"`
	Edition    string    `db:"edition" json:"edition"`
	Department string    `db:"department" json:"department"`
	CoverPath  *string   `db:"cover_path" json:"coverPath"`
	PDFPath    *string   `db:"pdf_path" json:"pdfPath"`
	Status     string    `db:"status" json:"status"`
	Downloads  int       `db:"downloads" json:"downloads"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// DownloadRecord is an append-only log entry; rows are never mutated.
type DownloadRecord struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"studentId"`
	BookID       string    `db:"book_id" json:"bookId"`
	DownloadedAt time.Time `db:"downloaded_at" json:"downloadedAt"`
}

type BorrowRequest struct {
	ID          string     `db:"id" json:"id"`
	BookID      string     `db:"book_id" json:"bookId"`
	StudentID   string     `db:"student_id" json:"studentId"`
	Status      string     `db:"status" json:"status"`
	RequestedAt time.Time  `db:"requested_at" json:"requestedAt"`
	DecidedAt   *time.Time `db:"decided_at" json:"decidedAt"`
}

// BorrowRecord is the active loan; returned_at IS NULL marks it active and
// backs Book.Status = borrowed.
type BorrowRecord struct {
	ID         string     `db:"id" json:"id"`
	BookID     string     `db:"book_id" json:"bookId"`
	StudentID  string     `db:"student_id" json:"studentId"`
	BorrowedAt time.Time  `db:"borrowed_at" json:"borrowedAt"`
	DueAt      time.Time  `db:"due_at" json:"dueAt"`
	ReturnedAt *time.Time `db:"returned_at" json:"returnedAt"`
}

// Session is the ephemeral per-connection identity record. It lives only in
// the process session registry and is never the source of truth for Role.
type Session struct {
	ID         string
	UserID     string
	Email      string
	FullName   string
	Role       string
	Department string
	CreatedAt  time.Time
}

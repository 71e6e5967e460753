// Package memory implements the store ports in memory for tests and local
// development. It enforces the same uniqueness invariants as the SQL schema:
// one pending request per (student, book) pair and one active loan per book.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"digilib-backend-go/internal/models"
	"digilib-backend-go/internal/store"
)

type DB struct {
	mu        sync.Mutex
	users     map[string]*models.User
	books     map[string]*models.Book
	downloads []models.DownloadRecord
	requests  map[string]*models.BorrowRequest
	records   map[string]*models.BorrowRecord
}

func New() *DB {
	return &DB{
		users:    map[string]*models.User{},
		books:    map[string]*models.Book{},
		requests: map[string]*models.BorrowRequest{},
		records:  map[string]*models.BorrowRecord{},
	}
}

var (
	_ store.Users     = (*DB)(nil)
	_ store.Books     = (*DB)(nil)
	_ store.Downloads = (*DB)(nil)
	_ store.Borrows   = (*DB)(nil)
	_ store.Stats     = (*DB)(nil)
)

// --- Users ---

func (d *DB) InsertUser(ctx context.Context, user *models.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	email := strings.ToLower(user.Email)
	for _, existing := range d.users {
		if strings.ToLower(existing.Email) == email {
			return store.ErrDuplicateEmail
		}
	}
	clone := *user
	clone.Email = email
	d.users[user.ID] = &clone
	return nil
}

func (d *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, user := range d.users {
		if strings.ToLower(user.Email) == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (d *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	user, ok := d.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (d *DB) ListUsers(ctx context.Context, search string) ([]models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	search = strings.ToLower(strings.TrimSpace(search))
	users := make([]models.User, 0, len(d.users))
	for _, user := range d.users {
		if search != "" &&
			!strings.Contains(strings.ToLower(user.FullName), search) &&
			!strings.Contains(strings.ToLower(user.Email), search) {
			continue
		}
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (d *DB) UpdateUser(ctx context.Context, user *models.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	existing, ok := d.users[user.ID]
	if !ok {
		return store.ErrNotFound
	}
	email := strings.ToLower(user.Email)
	for id, other := range d.users {
		if id != user.ID && strings.ToLower(other.Email) == email {
			return store.ErrDuplicateEmail
		}
	}
	existing.FullName = user.FullName
	existing.Age = user.Age
	existing.Sex = user.Sex
	existing.Department = user.Department
	existing.Email = email
	existing.Role = user.Role
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

func (d *DB) SetUserPassword(ctx context.Context, id, passwordHash string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	user, ok := d.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (d *DB) DeleteUser(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(d.users, id)
	return nil
}

// --- Books ---

func (d *DB) InsertBook(ctx context.Context, book *models.Book) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	clone := *book
	d.books[book.ID] = &clone
	return nil
}

func (d *DB) GetBookByID(ctx context.Context, id string) (*models.Book, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	book, ok := d.books[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *book
	return &clone, nil
}

func (d *DB) ListBooks(ctx context.Context, filter store.BookFilter) ([]models.Book, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	books := make([]models.Book, 0, len(d.books))
	for _, book := range d.books {
		if query != "" &&
			!strings.Contains(strings.ToLower(book.Title), query) &&
			!strings.Contains(strings.ToLower(book.Author), query) &&
			!strings.Contains(strings.ToLower(book.ISBN), query) {
			continue
		}
		if filter.Department != "" && book.Department != filter.Department {
			continue
		}
		if filter.Status != "" && book.Status != filter.Status {
			continue
		}
		books = append(books, *book)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].Title < books[j].Title })
	return books, nil
}

func (d *DB) UpdateBook(ctx context.Context, book *models.Book) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	existing, ok := d.books[book.ID]
	if !ok {
		return store.ErrNotFound
	}
	existing.Title = book.Title
	existing.Author = book.Author
	existing.ISBN = book.ISBN
	existing.Edition = book.Edition
	existing.Department = book.Department
	existing.CoverPath = book.CoverPath
	existing.PDFPath = book.PDFPath
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

func (d *DB) DeleteBook(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.books[id]; !ok {
		return store.ErrNotFound
	}
	delete(d.books, id)
	return nil
}

// --- Downloads ---

func (d *DB) RecordDownload(ctx context.Context, rec *models.DownloadRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	book, ok := d.books[rec.BookID]
	if !ok {
		return store.ErrNotFound
	}
	d.downloads = append(d.downloads, *rec)
	book.Downloads++
	return nil
}

func (d *DB) ListDownloadsByStudent(ctx context.Context, studentID string) ([]store.DownloadEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entries := []store.DownloadEntry{}
	for _, rec := range d.downloads {
		if rec.StudentID != studentID {
			continue
		}
		entry := store.DownloadEntry{DownloadRecord: rec}
		if book, ok := d.books[rec.BookID]; ok {
			entry.Title = book.Title
			entry.Author = book.Author
			entry.CoverPath = book.CoverPath
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].DownloadedAt.After(entries[j].DownloadedAt)
	})
	return entries, nil
}

// --- Borrows ---

func (d *DB) InsertRequest(ctx context.Context, req *models.BorrowRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, existing := range d.requests {
		if existing.StudentID == req.StudentID && existing.BookID == req.BookID &&
			existing.Status == models.RequestPending {
			return store.ErrDuplicatePending
		}
	}
	clone := *req
	d.requests[req.ID] = &clone
	return nil
}

func (d *DB) GetRequest(ctx context.Context, id string) (*models.BorrowRequest, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	req, ok := d.requests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *req
	return &clone, nil
}

func (d *DB) DeleteRequest(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.requests[id]; !ok {
		return store.ErrNotFound
	}
	delete(d.requests, id)
	return nil
}

func (d *DB) ListRequests(ctx context.Context, filter store.RequestFilter) ([]store.RequestEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entries := []store.RequestEntry{}
	for _, req := range d.requests {
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.StudentID != "" && req.StudentID != filter.StudentID {
			continue
		}
		entry := store.RequestEntry{BorrowRequest: *req}
		if book, ok := d.books[req.BookID]; ok {
			entry.BookTitle = book.Title
			entry.BookAuthor = book.Author
		}
		if user, ok := d.users[req.StudentID]; ok {
			entry.StudentName = user.FullName
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RequestedAt.After(entries[j].RequestedAt)
	})
	return entries, nil
}

func (d *DB) Approve(ctx context.Context, requestID string, rec *models.BorrowRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	req, ok := d.requests[requestID]
	if !ok || req.Status != models.RequestPending {
		return store.ErrNotFound
	}
	book, ok := d.books[req.BookID]
	if !ok {
		return store.ErrNotFound
	}
	if book.Status == models.BookBorrowed || d.activeRecordForBook(req.BookID) != nil {
		return store.ErrBookUnavailable
	}
	rec.BookID = req.BookID
	rec.StudentID = req.StudentID
	clone := *rec
	d.records[rec.ID] = &clone
	req.Status = models.RequestApproved
	decided := rec.BorrowedAt
	req.DecidedAt = &decided
	book.Status = models.BookBorrowed
	return nil
}

func (d *DB) Reject(ctx context.Context, requestID string, at time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	req, ok := d.requests[requestID]
	if !ok || req.Status != models.RequestPending {
		return store.ErrNotFound
	}
	req.Status = models.RequestRejected
	req.DecidedAt = &at
	return nil
}

func (d *DB) GetRecord(ctx context.Context, id string) (*models.BorrowRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

func (d *DB) ActiveRecord(ctx context.Context, studentID, bookID string) (*models.BorrowRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, rec := range d.records {
		if rec.StudentID == studentID && rec.BookID == bookID && rec.ReturnedAt == nil {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (d *DB) Return(ctx context.Context, recordID string, at time.Time) (*models.BorrowRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.records[recordID]
	if !ok || rec.ReturnedAt != nil {
		return nil, store.ErrNotFound
	}
	returned := at
	rec.ReturnedAt = &returned
	if book, ok := d.books[rec.BookID]; ok {
		book.Status = models.BookAvailable
	}
	clone := *rec
	return &clone, nil
}

func (d *DB) ListLoans(ctx context.Context, studentID string, activeOnly bool) ([]store.LoanEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entries := []store.LoanEntry{}
	for _, rec := range d.records {
		if studentID != "" && rec.StudentID != studentID {
			continue
		}
		if activeOnly && rec.ReturnedAt != nil {
			continue
		}
		entry := store.LoanEntry{BorrowRecord: *rec}
		if book, ok := d.books[rec.BookID]; ok {
			entry.BookTitle = book.Title
			entry.BookAuthor = book.Author
		}
		if user, ok := d.users[rec.StudentID]; ok {
			entry.StudentName = user.FullName
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].BorrowedAt.After(entries[j].BorrowedAt)
	})
	return entries, nil
}

func (d *DB) activeRecordForBook(bookID string) *models.BorrowRecord {
	for _, rec := range d.records {
		if rec.BookID == bookID && rec.ReturnedAt == nil {
			return rec
		}
	}
	return nil
}

// --- Stats ---

func (d *DB) DashboardCounts(ctx context.Context) (store.DashboardCounts, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	counts := store.DashboardCounts{Books: len(d.books), Users: len(d.users)}
	for _, book := range d.books {
		if book.Status == models.BookBorrowed {
			counts.Borrowed++
		} else {
			counts.Available++
		}
	}
	for _, req := range d.requests {
		if req.Status == models.RequestPending {
			counts.PendingRequests++
		}
	}
	return counts, nil
}

package services

import (
	"context"
	"errors"
	"time"

	"digilib-backend-go/internal/models"
	"digilib-backend-go/internal/store"

	"github.com/google/uuid"
)

// IsStaff reports whether role may manage the catalog and decide requests.
func IsStaff(role string) bool {
	return role == models.RoleLibrarian || role == models.RoleAdmin
}

// BorrowService drives the request → approve/reject → return lifecycle. The
// duplicate-pending and one-active-loan invariants are enforced by the store;
// this layer sequences the transitions, applies ownership rules and computes
// due dates.
type BorrowService struct {
	borrows store.Borrows
	books   store.Books
	events  *EventHub
}

func NewBorrowService(borrows store.Borrows, books store.Books, events *EventHub) *BorrowService {
	return &BorrowService{borrows: borrows, books: books, events: events}
}

// Request files a pending borrow request. The book keeps its status; nothing
// changes on the shelf until a librarian approves.
func (s *BorrowService) Request(ctx context.Context, studentID, bookID string) (*models.BorrowRequest, error) {
	book, err := s.books.GetBookByID(ctx, bookID)
	if err != nil {
		return nil, wrapStore(err, "Book not found")
	}
	if _, err := s.borrows.ActiveRecord(ctx, studentID, bookID); err == nil {
		return nil, ErrAlreadyBorrowed("You have already borrowed this book")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, ErrStorage(err)
	}
	req := &models.BorrowRequest{
		ID:          uuid.NewString(),
		BookID:      book.ID,
		StudentID:   studentID,
		Status:      models.RequestPending,
		RequestedAt: time.Now().UTC(),
	}
	if err := s.borrows.InsertRequest(ctx, req); err != nil {
		if errors.Is(err, store.ErrDuplicatePending) {
			return nil, ErrDuplicateRequest()
		}
		return nil, ErrStorage(err)
	}
	s.events.Broadcast(Event{
		Type:      EventRequestCreated,
		RequestID: req.ID,
		BookID:    req.BookID,
		StudentID: req.StudentID,
		At:        req.RequestedAt,
	})
	return req, nil
}

// Cancel removes a pending request. Only the requester may cancel; staff
// reject instead.
func (s *BorrowService) Cancel(ctx context.Context, session models.Session, requestID string) error {
	req, err := s.borrows.GetRequest(ctx, requestID)
	if err != nil {
		return wrapStore(err, "Request not found")
	}
	if req.StudentID != session.UserID {
		return ErrForbidden("Not your request")
	}
	if req.Status != models.RequestPending {
		return ErrNotFound("Request is no longer pending")
	}
	if err := s.borrows.DeleteRequest(ctx, requestID); err != nil {
		return wrapStore(err, "Request not found")
	}
	s.events.Broadcast(Event{
		Type:      EventRequestCancelled,
		RequestID: req.ID,
		BookID:    req.BookID,
		StudentID: req.StudentID,
		At:        time.Now().UTC(),
	})
	return nil
}

// Approve turns a pending request into an active loan due in two weeks.
// When the book is already out, the approval fails and the request stays
// pending for the operator to reject explicitly; siblings are never
// auto-rejected.
func (s *BorrowService) Approve(ctx context.Context, requestID string) (*models.BorrowRecord, error) {
	now := time.Now().UTC()
	rec := &models.BorrowRecord{
		ID:         uuid.NewString(),
		BorrowedAt: now,
		DueAt:      now.Add(models.LoanPeriod),
	}
	if err := s.borrows.Approve(ctx, requestID, rec); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrNotFound("Request not found or not pending")
		case errors.Is(err, store.ErrBookUnavailable):
			return nil, ErrAlreadyBorrowed("Book is already borrowed")
		default:
			return nil, ErrStorage(err)
		}
	}
	s.events.Broadcast(Event{
		Type:      EventRequestApproved,
		RequestID: requestID,
		RecordID:  rec.ID,
		BookID:    rec.BookID,
		StudentID: rec.StudentID,
		At:        now,
	})
	return rec, nil
}

func (s *BorrowService) Reject(ctx context.Context, requestID string) error {
	now := time.Now().UTC()
	if err := s.borrows.Reject(ctx, requestID, now); err != nil {
		return wrapStore(err, "Request not found or not pending")
	}
	s.events.Broadcast(Event{
		Type:      EventRequestRejected,
		RequestID: requestID,
		At:        now,
	})
	return nil
}

// Return closes an active loan: the student returning their own book, or
// staff on their behalf.
func (s *BorrowService) Return(ctx context.Context, session models.Session, role string, recordID string) (*models.BorrowRecord, error) {
	rec, err := s.borrows.GetRecord(ctx, recordID)
	if err != nil {
		return nil, wrapStore(err, "Loan not found")
	}
	if rec.StudentID != session.UserID && !IsStaff(role) {
		return nil, ErrForbidden("Not your loan")
	}
	now := time.Now().UTC()
	rec, err = s.borrows.Return(ctx, recordID, now)
	if err != nil {
		return nil, wrapStore(err, "No active loan matches")
	}
	s.events.Broadcast(Event{
		Type:      EventLoanReturned,
		RecordID:  rec.ID,
		BookID:    rec.BookID,
		StudentID: rec.StudentID,
		At:        now,
	})
	return rec, nil
}

func (s *BorrowService) StudentRequests(ctx context.Context, studentID string) ([]store.RequestEntry, error) {
	entries, err := s.borrows.ListRequests(ctx, store.RequestFilter{StudentID: studentID})
	if err != nil {
		return nil, ErrStorage(err)
	}
	return entries, nil
}

func (s *BorrowService) StudentLoans(ctx context.Context, studentID string, activeOnly bool) ([]store.LoanEntry, error) {
	entries, err := s.borrows.ListLoans(ctx, studentID, activeOnly)
	if err != nil {
		return nil, ErrStorage(err)
	}
	return entries, nil
}

func (s *BorrowService) Requests(ctx context.Context, status string) ([]store.RequestEntry, error) {
	entries, err := s.borrows.ListRequests(ctx, store.RequestFilter{Status: status})
	if err != nil {
		return nil, ErrStorage(err)
	}
	return entries, nil
}

func (s *BorrowService) Loans(ctx context.Context, activeOnly bool) ([]store.LoanEntry, error) {
	entries, err := s.borrows.ListLoans(ctx, "", activeOnly)
	if err != nil {
		return nil, ErrStorage(err)
	}
	return entries, nil
}

package postgres

import (
	"context"
	"time"

	"digilib-backend-go/internal/models"
	"digilib-backend-go/internal/store"
)

func (d *DB) InsertRequest(ctx context.Context, req *models.BorrowRequest) error {
	_, err := d.db.ExecContext(ctx, `
INSERT INTO borrow_requests (id, book_id, student_id, status, requested_at)
VALUES ($1,$2,$3,$4,$5)
`, req.ID, req.BookID, req.StudentID, req.Status, req.RequestedAt)
	if isUniqueViolation(err, "uq_borrow_requests_pending") {
		return store.ErrDuplicatePending
	}
	return err
}

func (d *DB) GetRequest(ctx context.Context, id string) (*models.BorrowRequest, error) {
	var req models.BorrowRequest
	err := d.db.GetContext(ctx, &req, `
SELECT id, book_id, student_id, status, requested_at, decided_at
FROM borrow_requests
WHERE id = $1
`, id)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &req, nil
}

func (d *DB) DeleteRequest(ctx context.Context, id string) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM borrow_requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *DB) ListRequests(ctx context.Context, filter store.RequestFilter) ([]store.RequestEntry, error) {
	query := `
SELECT br.id, br.book_id, br.student_id, br.status, br.requested_at, br.decided_at,
       bk.title AS book_title, bk.author AS book_author, u.full_name AS student_name
FROM borrow_requests br
JOIN books bk ON bk.id = br.book_id
JOIN users u ON u.id = br.student_id
`
	conds := []string{}
	args := []interface{}{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, "br.status = $1")
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		if len(args) == 1 {
			conds = append(conds, "br.student_id = $1")
		} else {
			conds = append(conds, "br.student_id = $2")
		}
	}
	if len(conds) > 0 {
		query += "WHERE " + conds[0]
		if len(conds) > 1 {
			query += " AND " + conds[1]
		}
		query += "\n"
	}
	query += "ORDER BY br.requested_at DESC"
	entries := []store.RequestEntry{}
	if err := d.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, err
	}
	return entries, nil
}

// Approve runs the three-way transition (request status, new loan row, book
// status) in a single transaction; the request and book rows are locked for
// the duration so concurrent approvals serialize, and the partial unique
// index on active loans backs the one-loan-per-book invariant.
func (d *DB) Approve(ctx context.Context, requestID string, rec *models.BorrowRecord) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var req models.BorrowRequest
	err = tx.GetContext(ctx, &req, `
SELECT id, book_id, student_id, status, requested_at, decided_at
FROM borrow_requests
WHERE id = $1
FOR UPDATE
`, requestID)
	if err != nil {
		return mapNoRows(err)
	}
	if req.Status != models.RequestPending {
		return store.ErrNotFound
	}

	var bookStatus string
	err = tx.GetContext(ctx, &bookStatus, `SELECT status FROM books WHERE id = $1 FOR UPDATE`, req.BookID)
	if err != nil {
		return mapNoRows(err)
	}
	if bookStatus == models.BookBorrowed {
		return store.ErrBookUnavailable
	}

	rec.BookID = req.BookID
	rec.StudentID = req.StudentID
	if _, err := tx.ExecContext(ctx, `
INSERT INTO borrow_records (id, book_id, student_id, borrowed_at, due_at)
VALUES ($1,$2,$3,$4,$5)
`, rec.ID, rec.BookID, rec.StudentID, rec.BorrowedAt, rec.DueAt); err != nil {
		if isUniqueViolation(err, "uq_borrow_records_active") {
			return store.ErrBookUnavailable
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, `
UPDATE borrow_requests SET status = $2, decided_at = $3 WHERE id = $1
`, requestID, models.RequestApproved, rec.BorrowedAt); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
UPDATE books SET status = $2, updated_at = $3 WHERE id = $1
`, req.BookID, models.BookBorrowed, rec.BorrowedAt); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) Reject(ctx context.Context, requestID string, at time.Time) error {
	result, err := d.db.ExecContext(ctx, `
UPDATE borrow_requests
SET status = $2, decided_at = $3
WHERE id = $1 AND status = $4
`, requestID, models.RequestRejected, at, models.RequestPending)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *DB) GetRecord(ctx context.Context, id string) (*models.BorrowRecord, error) {
	var rec models.BorrowRecord
	err := d.db.GetContext(ctx, &rec, `
SELECT id, book_id, student_id, borrowed_at, due_at, returned_at
FROM borrow_records
WHERE id = $1
`, id)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &rec, nil
}

func (d *DB) ActiveRecord(ctx context.Context, studentID, bookID string) (*models.BorrowRecord, error) {
	var rec models.BorrowRecord
	err := d.db.GetContext(ctx, &rec, `
SELECT id, book_id, student_id, borrowed_at, due_at, returned_at
FROM borrow_records
WHERE student_id = $1 AND book_id = $2 AND returned_at IS NULL
`, studentID, bookID)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &rec, nil
}

func (d *DB) Return(ctx context.Context, recordID string, at time.Time) (*models.BorrowRecord, error) {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var rec models.BorrowRecord
	err = tx.GetContext(ctx, &rec, `
UPDATE borrow_records
SET returned_at = $2
WHERE id = $1 AND returned_at IS NULL
RETURNING id, book_id, student_id, borrowed_at, due_at, returned_at
`, recordID, at)
	if err != nil {
		return nil, mapNoRows(err)
	}
	if _, err := tx.ExecContext(ctx, `
UPDATE books SET status = $2, updated_at = $3 WHERE id = $1
`, rec.BookID, models.BookAvailable, at); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (d *DB) ListLoans(ctx context.Context, studentID string, activeOnly bool) ([]store.LoanEntry, error) {
	query := `
SELECT br.id, br.book_id, br.student_id, br.borrowed_at, br.due_at, br.returned_at,
       bk.title AS book_title, bk.author AS book_author, u.full_name AS student_name
FROM borrow_records br
JOIN books bk ON bk.id = br.book_id
JOIN users u ON u.id = br.student_id
`
	conds := []string{}
	args := []interface{}{}
	if studentID != "" {
		args = append(args, studentID)
		conds = append(conds, "br.student_id = $1")
	}
	if activeOnly {
		conds = append(conds, "br.returned_at IS NULL")
	}
	if len(conds) > 0 {
		query += "WHERE " + conds[0]
		if len(conds) > 1 {
			query += " AND " + conds[1]
		}
		query += "\n"
	}
	query += "ORDER BY br.borrowed_at DESC"
	entries := []store.LoanEntry{}
	if err := d.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, err
	}
	return entries, nil
}

package postgres

import (
	"context"

	"digilib-backend-go/internal/store"
)

func (d *DB) DashboardCounts(ctx context.Context) (store.DashboardCounts, error) {
	var counts store.DashboardCounts
	err := d.db.GetContext(ctx, &counts, `
SELECT
  (SELECT count(*) FROM books)                                          AS books,
  (SELECT count(*) FROM books WHERE status = 'available')               AS available,
  (SELECT count(*) FROM books WHERE status = 'borrowed')                AS borrowed,
  (SELECT count(*) FROM borrow_requests WHERE status = 'pending')       AS pending_requests,
  (SELECT count(*) FROM users)                                          AS users
`)
	return counts, err
}

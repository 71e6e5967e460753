package postgres

import (
	"context"

	"digilib-backend-go/internal/models"
	"digilib-backend-go/internal/store"
)

func (d *DB) RecordDownload(ctx context.Context, rec *models.DownloadRecord) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO download_history (id, student_id, book_id, downloaded_at)
VALUES ($1,$2,$3,$4)
`, rec.ID, rec.StudentID, rec.BookID, rec.DownloadedAt); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `
UPDATE books SET downloads = downloads + 1 WHERE id = $1
`, rec.BookID)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return store.ErrNotFound
	}
	return tx.Commit()
}

func (d *DB) ListDownloadsByStudent(ctx context.Context, studentID string) ([]store.DownloadEntry, error) {
	entries := []store.DownloadEntry{}
	err := d.db.SelectContext(ctx, &entries, `
SELECT dh.id, dh.student_id, dh.book_id, dh.downloaded_at,
       bk.title, bk.author, bk.cover_path
FROM download_history dh
JOIN books bk ON bk.id = dh.book_id
WHERE dh.student_id = $1
ORDER BY dh.downloaded_at DESC
`, studentID)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

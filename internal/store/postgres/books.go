package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"digilib-backend-go/internal/models"
	"digilib-backend-go/internal/store"
)

const bookColumns = `id, title, author, isbn, edition, department, cover_path, pdf_path, status, downloads, created_at, updated_at`

func (d *DB) InsertBook(ctx context.Context, book *models.Book) error {
	_, err := d.db.ExecContext(ctx, `
INSERT INTO books (id, title, author, isbn, edition, department, cover_path, pdf_path, status, downloads, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,0,$10,$10)
`, book.ID, book.Title, book.Author, book.ISBN, book.Edition, book.Department,
		book.CoverPath, book.PDFPath, book.Status, book.CreatedAt)
	return err
}

func (d *DB) GetBookByID(ctx context.Context, id string) (*models.Book, error) {
	var book models.Book
	err := d.db.GetContext(ctx, &book, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &book, nil
}

func (d *DB) ListBooks(ctx context.Context, filter store.BookFilter) ([]models.Book, error) {
	conds := []string{}
	args := []interface{}{}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+strings.ToLower(q)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(lower(title) LIKE $%d OR lower(author) LIKE $%d OR lower(isbn) LIKE $%d)", n, n, n))
	}
	if filter.Department != "" {
		args = append(args, filter.Department)
		conds = append(conds, fmt.Sprintf("department = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	query := `SELECT ` + bookColumns + ` FROM books`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY title ASC"
	books := []models.Book{}
	if err := d.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, err
	}
	return books, nil
}

func (d *DB) UpdateBook(ctx context.Context, book *models.Book) error {
	result, err := d.db.ExecContext(ctx, `
UPDATE books
SET title = $2, author = $3, isbn = $4, edition = $5, department = $6,
    cover_path = $7, pdf_path = $8, updated_at = $9
WHERE id = $1
`, book.ID, book.Title, book.Author, book.ISBN, book.Edition, book.Department,
		book.CoverPath, book.PDFPath, time.Now().UTC())
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *DB) DeleteBook(ctx context.Context, id string) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

package services

import (
	"context"
	"os"
	"time"

	"digilib-backend-go/internal/models"
	"digilib-backend-go/internal/store"

	"github.com/google/uuid"
)

type DownloadService struct {
	books     store.Books
	downloads store.Downloads
	media     MediaStore
}

func NewDownloadService(books store.Books, downloads store.Downloads, media MediaStore) *DownloadService {
	return &DownloadService{books: books, downloads: downloads, media: media}
}

// Record appends a download log entry and returns the book snapshot. The
// book's downloads counter is materialized by the store in the same unit.
func (s *DownloadService) Record(ctx context.Context, bookID, studentID string) (*models.Book, error) {
	book, err := s.books.GetBookByID(ctx, bookID)
	if err != nil {
		return nil, wrapStore(err, "Book not found")
	}
	rec := &models.DownloadRecord{
		ID:           uuid.NewString(),
		StudentID:    studentID,
		BookID:       book.ID,
		DownloadedAt: time.Now().UTC(),
	}
	if err := s.downloads.RecordDownload(ctx, rec); err != nil {
		return nil, wrapStore(err, "Book not found")
	}
	book.Downloads++
	return book, nil
}

func (s *DownloadService) History(ctx context.Context, userID string) ([]store.DownloadEntry, error) {
	entries, err := s.downloads.ListDownloadsByStudent(ctx, userID)
	if err != nil {
		return nil, ErrStorage(err)
	}
	return entries, nil
}

// Open records the download and then opens the PDF blob for streaming. The
// log entry is persisted even when the blob turns out to be missing; the
// download log is deliberately at-least-once, not transactional with the
// blob store.
func (s *DownloadService) Open(ctx context.Context, bookID, studentID string) (*models.Book, *os.File, os.FileInfo, error) {
	book, err := s.Record(ctx, bookID, studentID)
	if err != nil {
		return nil, nil, nil, err
	}
	if book.PDFPath == nil || *book.PDFPath == "" {
		return nil, nil, nil, ErrFileNotFound("No PDF is attached to this book")
	}
	file, info, err := s.media.Open(*book.PDFPath)
	if err != nil {
		return nil, nil, nil, ErrFileNotFound("Book file not found")
	}
	return book, file, info, nil
}

package services

import (
	"context"
	"io"
	"strings"
	"time"

	"digilib-backend-go/internal/models"
	"digilib-backend-go/internal/store"

	"github.com/google/uuid"
)

type CatalogService struct {
	books store.Books
	media MediaStore
}

func NewCatalogService(books store.Books, media MediaStore) *CatalogService {
	return &CatalogService{books: books, media: media}
}

type BookInput struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	ISBN       string `json:"isbn"`
	Edition    string `json:"edition"`
	Department string `json:"department"`
}

func (in BookInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrValidation("Field title is required")
	}
	if strings.TrimSpace(in.Author) == "" {
		return ErrValidation("Field author is required")
	}
	return nil
}

func (s *CatalogService) List(ctx context.Context, filter store.BookFilter) ([]models.Book, error) {
	books, err := s.books.ListBooks(ctx, filter)
	if err != nil {
		return nil, ErrStorage(err)
	}
	return books, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*models.Book, error) {
	book, err := s.books.GetBookByID(ctx, id)
	if err != nil {
		return nil, wrapStore(err, "Book not found")
	}
	return book, nil
}

func (s *CatalogService) Create(ctx context.Context, in BookInput) (*models.Book, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	book := &models.Book{
		ID:         uuid.NewString(),
		Title:      strings.TrimSpace(in.Title),
		Author:     strings.TrimSpace(in.Author),
		ISBN:       strings.TrimSpace(in.ISBN),
		Edition:    strings.TrimSpace(in.Edition),
		Department: strings.TrimSpace(in.Department),
		Status:     models.BookAvailable,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.books.InsertBook(ctx, book); err != nil {
		return nil, ErrStorage(err)
	}
	return book, nil
}

func (s *CatalogService) Update(ctx context.Context, id string, in BookInput) (*models.Book, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	book, err := s.books.GetBookByID(ctx, id)
	if err != nil {
		return nil, wrapStore(err, "Book not found")
	}
	book.Title = strings.TrimSpace(in.Title)
	book.Author = strings.TrimSpace(in.Author)
	book.ISBN = strings.TrimSpace(in.ISBN)
	book.Edition = strings.TrimSpace(in.Edition)
	book.Department = strings.TrimSpace(in.Department)
	if err := s.books.UpdateBook(ctx, book); err != nil {
		return nil, wrapStore(err, "Book not found")
	}
	return book, nil
}

// Delete removes the catalog row and any stored blobs.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	book, err := s.books.GetBookByID(ctx, id)
	if err != nil {
		return wrapStore(err, "Book not found")
	}
	if err := s.books.DeleteBook(ctx, id); err != nil {
		return wrapStore(err, "Book not found")
	}
	if book.CoverPath != nil {
		s.media.Remove(*book.CoverPath)
	}
	if book.PDFPath != nil {
		s.media.Remove(*book.PDFPath)
	}
	return nil
}

// AttachCover stores a new cover image and swaps the book's cover path,
// removing the previous blob.
func (s *CatalogService) AttachCover(ctx context.Context, bookID, filename string, body io.Reader) (*models.Book, error) {
	return s.attach(ctx, bookID, BucketCovers, filename, body)
}

// AttachPDF stores a new PDF payload and swaps the book's pdf path.
func (s *CatalogService) AttachPDF(ctx context.Context, bookID, filename string, body io.Reader) (*models.Book, error) {
	return s.attach(ctx, bookID, BucketPDFs, filename, body)
}

func (s *CatalogService) attach(ctx context.Context, bookID, bucket, filename string, body io.Reader) (*models.Book, error) {
	book, err := s.books.GetBookByID(ctx, bookID)
	if err != nil {
		return nil, wrapStore(err, "Book not found")
	}
	relPath, err := s.media.Save(bucket, filename, body)
	if err != nil {
		if _, ok := AsServiceError(err); ok {
			return nil, err
		}
		return nil, ErrStorage(err)
	}
	var previous *string
	switch bucket {
	case BucketCovers:
		previous = book.CoverPath
		book.CoverPath = &relPath
	case BucketPDFs:
		previous = book.PDFPath
		book.PDFPath = &relPath
	}
	if err := s.books.UpdateBook(ctx, book); err != nil {
		s.media.Remove(relPath)
		return nil, wrapStore(err, "Book not found")
	}
	if previous != nil {
		s.media.Remove(*previous)
	}
	return book, nil
}

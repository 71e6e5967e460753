package httpapi

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"digilib-backend-go/internal/services"
	"digilib-backend-go/internal/store"

	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 64 << 20

func (s *Server) ListBooks(w http.ResponseWriter, r *http.Request) {
	filter := store.BookFilter{
		Query:      strings.TrimSpace(r.URL.Query().Get("q")),
		Department: strings.TrimSpace(r.URL.Query().Get("department")),
		Status:     strings.TrimSpace(r.URL.Query().Get("status")),
	}
	books, err := s.Catalog.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "OK", books)
}

func (s *Server) GetBook(w http.ResponseWriter, r *http.Request) {
	book, err := s.Catalog.Get(r.Context(), chi.URLParam(r, "bookId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "OK", book)
}

func (s *Server) CreateBook(w http.ResponseWriter, r *http.Request) {
	var in services.BookInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	book, err := s.Catalog.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusCreated, "Book created", book)
}

func (s *Server) UpdateBook(w http.ResponseWriter, r *http.Request) {
	var in services.BookInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	book, err := s.Catalog.Update(r.Context(), chi.URLParam(r, "bookId"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "Book updated", book)
}

func (s *Server) DeleteBook(w http.ResponseWriter, r *http.Request) {
	if err := s.Catalog.Delete(r.Context(), chi.URLParam(r, "bookId")); err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "Book deleted", nil)
}

func (s *Server) UploadCover(w http.ResponseWriter, r *http.Request) {
	s.uploadBookFile(w, r, services.BucketCovers)
}

func (s *Server) UploadPDF(w http.ResponseWriter, r *http.Request) {
	s.uploadBookFile(w, r, services.BucketPDFs)
}

func (s *Server) uploadBookFile(w http.ResponseWriter, r *http.Request, bucket string) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Missing file")
		return
	}
	defer file.Close()

	bookID := chi.URLParam(r, "bookId")
	var book interface{}
	switch bucket {
	case services.BucketCovers:
		book, err = s.Catalog.AttachCover(r.Context(), bookID, header.Filename, file)
	default:
		book, err = s.Catalog.AttachPDF(r.Context(), bookID, header.Filename, file)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "File uploaded", book)
}

// MediaContent streams stored blobs. Covers need no session so catalog pages
// can embed them directly; PDFs only leave through the download endpoint.
func (s *Server) MediaContent(w http.ResponseWriter, r *http.Request) {
	relPath := chi.URLParam(r, "*")
	if !strings.HasPrefix(relPath, services.BucketCovers+"/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	file, info, err := s.Media.Open(relPath)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	defer file.Close()
	http.ServeContent(w, r, filepath.Base(relPath), info.ModTime(), file)
}

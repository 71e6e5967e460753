package httpapi

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

// DownloadBook appends a download log entry and streams the PDF. The entry
// stays on the log even when the blob is missing.
func (s *Server) DownloadBook(w http.ResponseWriter, r *http.Request) {
	session, _ := CurrentSession(r)
	book, file, info, err := s.Downloads.Open(r.Context(), chi.URLParam(r, "bookId"), session.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	defer file.Close()
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", book.Title+".pdf"))
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeContent(w, r, filepath.Base(*book.PDFPath), info.ModTime(), file)
}

func (s *Server) MyDownloads(w http.ResponseWriter, r *http.Request) {
	session, _ := CurrentSession(r)
	entries, err := s.Downloads.History(r.Context(), session.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "OK", entries)
}

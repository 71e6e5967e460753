package services

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	BucketCovers = "covers"
	BucketPDFs   = "pdfs"
)

// MediaStore is the path-addressed blob store for book cover images and PDF
// payloads, rooted at a configured base directory.
type MediaStore struct {
	Base string
}

// Save streams body into base/bucket/<uuid><ext> and returns the path
// relative to the base, which is what gets persisted on the book row.
func (m MediaStore) Save(bucket, filename string, body io.Reader) (string, error) {
	dir := filepath.Join(m.Base, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	key := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	targetPath := filepath.Join(dir, key)

	file, err := os.Create(targetPath)
	if err != nil {
		return "", err
	}
	size, err := io.Copy(file, body)
	_ = file.Close()
	if err != nil {
		_ = os.Remove(targetPath)
		return "", err
	}
	if size == 0 {
		_ = os.Remove(targetPath)
		return "", ErrValidation("Uploaded file is empty")
	}
	return filepath.Join(bucket, key), nil
}

// Open resolves a stored relative path and opens it for streaming. Paths are
// confined to the base directory.
func (m MediaStore) Open(relPath string) (*os.File, os.FileInfo, error) {
	cleaned := filepath.Clean(relPath)
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return nil, nil, os.ErrNotExist
	}
	file, err := os.Open(filepath.Join(m.Base, cleaned))
	if err != nil {
		return nil, nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}
	return file, info, nil
}

// Remove deletes a stored blob; missing files are not an error.
func (m MediaStore) Remove(relPath string) {
	if relPath == "" {
		return
	}
	cleaned := filepath.Clean(relPath)
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return
	}
	_ = os.Remove(filepath.Join(m.Base, cleaned))
}

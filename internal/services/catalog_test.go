package services_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"digilib-backend-go/internal/services"
	"digilib-backend-go/internal/store"
	"digilib-backend-go/internal/store/memory"
)

func newCatalog(t *testing.T, db *memory.DB) (*services.CatalogService, services.MediaStore) {
	t.Helper()
	media := services.MediaStore{Base: t.TempDir()}
	return services.NewCatalogService(db, media), media
}

func TestCatalogCreateValidates(t *testing.T) {
	db := memory.New()
	svc, _ := newCatalog(t, db)
	ctx := context.Background()

	for _, in := range []services.BookInput{
		{Author: "A"},
		{Title: "T"},
	} {
		_, err := svc.Create(ctx, in)
		svcErr, ok := services.AsServiceError(err)
		if !ok || svcErr.Code != services.CodeValidation {
			t.Fatalf("Create(%+v) err = %v, want validation failure", in, err)
		}
	}

	book, err := svc.Create(ctx, services.BookInput{Title: "  Clean Title  ", Author: "Author"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if book.Title != "Clean Title" {
		t.Fatalf("title = %q, want trimmed", book.Title)
	}
	if book.Status != "available" {
		t.Fatalf("status = %q, want available", book.Status)
	}
}

func TestCatalogSearchFilters(t *testing.T) {
	db := memory.New()
	svc, _ := newCatalog(t, db)
	ctx := context.Background()
	if _, err := svc.Create(ctx, services.BookInput{Title: "Operating Systems", Author: "Tanenbaum", Department: "CS"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, services.BookInput{Title: "Linear Algebra", Author: "Strang", Department: "Math"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	books, err := svc.List(ctx, store.BookFilter{Query: "operating"})
	if err != nil || len(books) != 1 || books[0].Title != "Operating Systems" {
		t.Fatalf("query filter: %v %d", err, len(books))
	}
	books, err = svc.List(ctx, store.BookFilter{Department: "Math"})
	if err != nil || len(books) != 1 || books[0].Title != "Linear Algebra" {
		t.Fatalf("department filter: %v %d", err, len(books))
	}
	books, err = svc.List(ctx, store.BookFilter{})
	if err != nil || len(books) != 2 {
		t.Fatalf("unfiltered: %v %d", err, len(books))
	}
}

func TestAttachPDFSwapsBlob(t *testing.T) {
	db := memory.New()
	svc, media := newCatalog(t, db)
	ctx := context.Background()
	book, err := svc.Create(ctx, services.BookInput{Title: "T", Author: "A"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := svc.AttachPDF(ctx, book.ID, "v1.pdf", strings.NewReader("first"))
	if err != nil {
		t.Fatalf("first attach: %v", err)
	}
	firstPath := *first.PDFPath

	second, err := svc.AttachPDF(ctx, book.ID, "v2.pdf", strings.NewReader("second"))
	if err != nil {
		t.Fatalf("second attach: %v", err)
	}
	if *second.PDFPath == firstPath {
		t.Fatal("pdf path not swapped")
	}
	if _, err := os.Stat(filepath.Join(media.Base, firstPath)); !os.IsNotExist(err) {
		t.Fatal("previous blob not removed")
	}
	if _, _, err := media.Open(*second.PDFPath); err != nil {
		t.Fatalf("new blob unreadable: %v", err)
	}
}

func TestCatalogDeleteRemovesBlobs(t *testing.T) {
	db := memory.New()
	svc, media := newCatalog(t, db)
	ctx := context.Background()
	book, err := svc.Create(ctx, services.BookInput{Title: "T", Author: "A"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	withPDF, err := svc.AttachPDF(ctx, book.ID, "b.pdf", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	pdfPath := *withPDF.PDFPath

	if err := svc.Delete(ctx, book.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, book.ID); err == nil {
		t.Fatal("book still readable after delete")
	}
	if _, err := os.Stat(filepath.Join(media.Base, pdfPath)); !os.IsNotExist(err) {
		t.Fatal("pdf blob left behind")
	}
}

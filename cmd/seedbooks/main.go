// Command seedbooks imports a CSV catalog into the books table. Expected
// columns: title, author, isbn, edition, department. A header row is skipped
// when present.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"
	"strings"

	"digilib-backend-go/internal/config"
	"digilib-backend-go/internal/db"
	"digilib-backend-go/internal/services"
	"digilib-backend-go/internal/store/postgres"

	"github.com/joho/godotenv"
)

func main() {
	path := flag.String("file", "books.csv", "path to the CSV catalog")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	st := postgres.New(database)
	catalog := services.NewCatalogService(st, services.MediaStore{Base: cfg.MediaStoragePath})

	file, err := os.Open(*path)
	if err != nil {
		log.Fatalf("open %s: %v", *path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	ctx := context.Background()
	imported, skipped := 0, 0
	for line := 1; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("line %d: %v", line, err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "title") {
			continue
		}
		in := services.BookInput{Title: field(row, 0), Author: field(row, 1), ISBN: field(row, 2), Edition: field(row, 3), Department: field(row, 4)}
		if _, err := catalog.Create(ctx, in); err != nil {
			log.Printf("line %d skipped: %v", line, err)
			skipped++
			continue
		}
		imported++
	}
	log.Printf("imported %d books, skipped %d", imported, skipped)
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

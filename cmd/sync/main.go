// Package main provides a bulk import tool for reading events.
//
// It reads reading facts from a JSON file, finds or creates the matching book
// by exact title and author, and appends the event to the log. It can also
// print the owner's aggregates.
//
// Usage:
//
//	go run ./cmd/sync sync events.json
//	go run ./cmd/sync stats
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"encoding/json/v2"

	"github.com/readingkg/readingkg-server/internal/domain"
	"github.com/readingkg/readingkg-server/internal/id"
	"github.com/readingkg/readingkg-server/internal/store/sqlite"
)

var (
	storePath = flag.String("store", "", "Store path (default: STORE_PATH or ~/ReadingKG/readingkg.db)")
	ownerID   = flag.String("owner", "owner-local", "Owner ID to import as")
)

// importRecord is one reading fact in the input file.
type importRecord struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	EventType  string `json:"event_type"`  // finished | ended, default finished
	Completion *int   `json:"completion"`  // default 100 for finished, 50 for ended
	OccurredAt string `json:"occurred_at"` // RFC 3339, default now
}

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: sync [flags] <command>")
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  sync <json_file>  - Import events from JSON file")
		fmt.Fprintln(os.Stderr, "  stats             - Show owner statistics")
		os.Exit(1)
	}

	path := *storePath
	if path == "" {
		path = os.Getenv("STORE_PATH")
	}
	if path == "" {
		path = os.ExpandEnv("$HOME/ReadingKG/readingkg.db")
	}

	s, err := sqlite.Open(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	switch flag.Arg(0) {
	case "sync":
		if flag.NArg() < 2 {
			log.Fatal("Usage: sync sync <json_file>")
		}
		runImport(ctx, s, flag.Arg(1))
	case "stats":
		runStats(ctx, s)
	default:
		log.Fatalf("Unknown command: %s", flag.Arg(0))
	}
}

func runImport(ctx context.Context, s *sqlite.Store, filepath string) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", filepath, err)
	}

	var records []importRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Fatalf("Failed to parse %s: %v", filepath, err)
	}

	booksCreated := 0
	eventsCreated := 0
	var errors []string

	for i, rec := range records {
		if rec.Title == "" {
			errors = append(errors, fmt.Sprintf("record %d: missing title", i))
			continue
		}

		eventType := domain.EventType(rec.EventType)
		if eventType == "" {
			eventType = domain.EventFinished
		}
		if eventType != domain.EventFinished && eventType != domain.EventEnded {
			errors = append(errors, fmt.Sprintf("record %d: bad event_type %q", i, rec.EventType))
			continue
		}

		completion := 100
		if eventType == domain.EventEnded {
			completion = 50
		}
		if rec.Completion != nil {
			completion = *rec.Completion
		}
		if completion < 0 || completion > 100 {
			errors = append(errors, fmt.Sprintf("record %d: completion %d out of range", i, completion))
			continue
		}

		book, created, err := findOrCreateBook(ctx, s, rec.Title, rec.Author)
		if err != nil {
			errors = append(errors, fmt.Sprintf("record %d: book %q: %v", i, rec.Title, err))
			continue
		}
		if created {
			booksCreated++
		}

		event := domain.NewReadingEvent(id.MustGenerate("evt"), *ownerID, book.ID, eventType, completion)
		if rec.OccurredAt != "" {
			occurred, err := time.Parse(time.RFC3339, rec.OccurredAt)
			if err != nil {
				errors = append(errors, fmt.Sprintf("record %d: bad occurred_at %q: %v", i, rec.OccurredAt, err))
				continue
			}
			event.OccurredAt = occurred.UTC()
		}

		if _, err := s.AppendEvent(ctx, event); err != nil {
			errors = append(errors, fmt.Sprintf("record %d: append event for %q: %v", i, rec.Title, err))
			continue
		}
		eventsCreated++
		fmt.Printf("Imported '%s' (%s, %d%%)\n", rec.Title, eventType, completion)
	}

	fmt.Println("\nImport complete:")
	fmt.Printf("  Books created:  %d\n", booksCreated)
	fmt.Printf("  Events created: %d\n", eventsCreated)
	if len(errors) > 0 {
		fmt.Printf("  Errors: %d\n", len(errors))
		for _, e := range errors {
			fmt.Printf("    - %s\n", e)
		}
		os.Exit(1)
	}
}

// findOrCreateBook matches on exact title and author. FindBooks matches
// substrings, so the results are re-checked before falling back to creation.
func findOrCreateBook(ctx context.Context, s *sqlite.Store, title, author string) (*domain.Book, bool, error) {
	matches, err := s.FindBooks(ctx, *ownerID, title)
	if err != nil {
		return nil, false, err
	}
	for _, b := range matches {
		if b.Title == title && (author == "" || b.Author == author) {
			return b, false, nil
		}
	}

	now := time.Now().UTC()
	book := &domain.Book{
		ID:        id.MustGenerate("book"),
		OwnerID:   *ownerID,
		Title:     title,
		Author:    author,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.CreateBook(ctx, book); err != nil {
		return nil, false, err
	}
	return book, true, nil
}

func runStats(ctx context.Context, s *sqlite.Store) {
	books, err := s.CountBooks(ctx, *ownerID)
	if err != nil {
		log.Fatalf("Failed to count books: %v", err)
	}
	events, err := s.ValidEvents(ctx, *ownerID, "")
	if err != nil {
		log.Fatalf("Failed to list events: %v", err)
	}

	finished, ended := 0, 0
	for _, e := range events {
		switch e.EventType {
		case domain.EventFinished:
			finished++
		case domain.EventEnded:
			ended++
		}
	}

	fmt.Printf("Statistics for %s:\n", *ownerID)
	fmt.Printf("  Total books:  %d\n", books)
	fmt.Printf("  Valid events: %d\n", len(events))
	fmt.Printf("  Finished:     %d\n", finished)
	fmt.Printf("  Ended:        %d\n", ended)
}

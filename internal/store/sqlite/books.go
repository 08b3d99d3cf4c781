package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/readingkg/readingkg-server/internal/domain"
	apperrors "github.com/readingkg/readingkg-server/internal/errors"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, owner_id, title, author, publisher, publish_year,
	language, region_hint, isbn10, isbn13, cover_url, merged_into,
	created_at, updated_at`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		author     sql.NullString
		publisher  sql.NullString
		publishYr  sql.NullString
		language   sql.NullString
		regionHint sql.NullString
		isbn10     sql.NullString
		isbn13     sql.NullString
		coverURL   sql.NullString
		mergedInto sql.NullString
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&b.ID,
		&b.OwnerID,
		&b.Title,
		&author,
		&publisher,
		&publishYr,
		&language,
		&regionHint,
		&isbn10,
		&isbn13,
		&coverURL,
		&mergedInto,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Author = stringOrEmpty(author)
	b.Publisher = stringOrEmpty(publisher)
	b.PublishYear = stringOrEmpty(publishYr)
	b.Language = stringOrEmpty(language)
	b.RegionHint = domain.Region(stringOrEmpty(regionHint))
	b.ISBN10 = stringOrEmpty(isbn10)
	b.ISBN13 = stringOrEmpty(isbn13)
	b.CoverURL = stringOrEmpty(coverURL)
	b.MergedInto = stringOrEmpty(mergedInto)

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// CreateBook inserts a new book row.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	now := time.Now().UTC()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	if book.UpdatedAt.IsZero() {
		book.UpdatedAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (id, owner_id, title, author, publisher, publish_year,
			language, region_hint, isbn10, isbn13, cover_url, merged_into,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID, book.OwnerID, book.Title,
		nullString(book.Author), nullString(book.Publisher), nullString(book.PublishYear),
		nullString(book.Language), nullString(string(book.RegionHint)),
		nullString(book.ISBN10), nullString(book.ISBN13), nullString(book.CoverURL),
		nullString(book.MergedInto),
		formatTime(book.CreatedAt), formatTime(book.UpdatedAt),
	)
	if err != nil {
		return classifyErr(err, "create book")
	}

	s.logger.Debug("created book", "book_id", book.ID, "title", book.Title)
	return nil
}

// GetBook returns a book by ID scoped to the owner. Merged books resolve too;
// callers decide whether to follow the merged_into edge.
func (s *Store) GetBook(ctx context.Context, ownerID, bookID string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ? AND owner_id = ?`,
		bookID, ownerID)

	book, err := scanBook(row)
	if err != nil {
		return nil, classifyErr(err, "book "+bookID+" not found")
	}
	return book, nil
}

// UpdateBook applies a partial update and returns the updated book.
func (s *Store) UpdateBook(ctx context.Context, ownerID, bookID string, update domain.BookUpdate) (*domain.Book, error) {
	book, err := s.GetBook(ctx, ownerID, bookID)
	if err != nil {
		return nil, err
	}

	update.Apply(book)

	_, err = s.db.ExecContext(ctx, `
		UPDATE books SET title = ?, author = ?, publisher = ?, publish_year = ?,
			language = ?, region_hint = ?, isbn10 = ?, isbn13 = ?, cover_url = ?,
			updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		book.Title, nullString(book.Author), nullString(book.Publisher),
		nullString(book.PublishYear), nullString(book.Language),
		nullString(string(book.RegionHint)), nullString(book.ISBN10),
		nullString(book.ISBN13), nullString(book.CoverURL),
		formatTime(book.UpdatedAt),
		bookID, ownerID,
	)
	if err != nil {
		return nil, classifyErr(err, "update book")
	}

	return book, nil
}

// SetMergedInto records the merged_into edge for a book.
func (s *Store) SetMergedInto(ctx context.Context, ownerID, bookID, intoID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE books SET merged_into = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		nullString(intoID), formatTime(time.Now()), bookID, ownerID)
	if err != nil {
		return classifyErr(err, "merge book")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return classifyErr(err, "merge book")
	}
	if affected == 0 {
		return apperrors.NotFoundf("book %s not found", bookID)
	}
	return nil
}

// ListBooks returns canonical books ordered by most recently updated.
func (s *Store) ListBooks(ctx context.Context, ownerID string, limit int) ([]*domain.Book, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+bookColumns+` FROM books
		WHERE owner_id = ? AND merged_into IS NULL
		ORDER BY updated_at DESC
		LIMIT ?`, ownerID, limit)
	if err != nil {
		return nil, classifyErr(err, "list books")
	}
	defer rows.Close()

	return collectBooks(rows)
}

// FindBooks matches canonical books by case-insensitive substring against
// title, author, and both ISBN fields, most recently updated first.
func (s *Store) FindBooks(ctx context.Context, ownerID, query string) ([]*domain.Book, error) {
	pattern := "%" + escapeLike(query) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+bookColumns+` FROM books
		WHERE owner_id = ? AND merged_into IS NULL
		  AND (title LIKE ? ESCAPE '\'
		    OR author LIKE ? ESCAPE '\'
		    OR isbn10 LIKE ? ESCAPE '\'
		    OR isbn13 LIKE ? ESCAPE '\')
		ORDER BY updated_at DESC`,
		ownerID, pattern, pattern, pattern, pattern)
	if err != nil {
		return nil, classifyErr(err, "find books")
	}
	defer rows.Close()

	return collectBooks(rows)
}

// CountBooks counts the owner's canonical books.
func (s *Store) CountBooks(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books WHERE owner_id = ? AND merged_into IS NULL`,
		ownerID).Scan(&count)
	if err != nil {
		return 0, classifyErr(err, "count books")
	}
	return count, nil
}

func collectBooks(rows *sql.Rows) ([]*domain.Book, error) {
	var books []*domain.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, classifyErr(err, "scan book")
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyErr(err, "iterate books")
	}
	return books, nil
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/openshelf/openshelf-server/internal/domain"
	"github.com/openshelf/openshelf-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, created_at, updated_at, title, isbn, author_id, total_copies, available_copies`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
		&b.Title,
		&b.ISBN,
		&b.AuthorID,
		&b.TotalCopies,
		&b.AvailableCopies,
	)
	if err != nil {
		return nil, err
	}

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

// CreateBook inserts a new book into the database.
// Returns store.ErrISBNExists if the ISBN is already taken.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (id, created_at, updated_at, title, isbn, author_id, total_copies, available_copies)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
		book.Title,
		book.ISBN,
		book.AuthorID,
		book.TotalCopies,
		book.AvailableCopies,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrISBNExists
		}
		return err
	}
	return nil
}

// GetBook retrieves a book by ID.
// Returns store.ErrBookNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBooks returns all books joined with their author's name in a single
// query, ordered by title.
func (s *Store) ListBooks(ctx context.Context) ([]*store.BookWithAuthor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.created_at, b.updated_at, b.title, b.isbn, b.author_id,
			b.total_copies, b.available_copies,
			a.first_name, a.last_name
		FROM books b
		JOIN authors a ON a.id = b.author_id
		ORDER BY b.title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*store.BookWithAuthor
	for rows.Next() {
		var (
			bwa       store.BookWithAuthor
			createdAt string
			updatedAt string
			firstName string
			lastName  string
		)

		err := rows.Scan(
			&bwa.ID,
			&createdAt,
			&updatedAt,
			&bwa.Title,
			&bwa.ISBN,
			&bwa.AuthorID,
			&bwa.TotalCopies,
			&bwa.AvailableCopies,
			&firstName,
			&lastName,
		)
		if err != nil {
			return nil, err
		}

		bwa.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		bwa.UpdatedAt, err = parseTime(updatedAt)
		if err != nil {
			return nil, err
		}

		author := domain.Author{FirstName: firstName, LastName: lastName}
		bwa.AuthorName = author.FullName()

		books = append(books, &bwa)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

// UpdateBook performs a full update on an existing book.
// Returns store.ErrBookNotFound if the book does not exist and
// store.ErrISBNExists on an ISBN collision.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE books SET
			updated_at = ?,
			title = ?,
			isbn = ?,
			author_id = ?,
			total_copies = ?,
			available_copies = ?
		WHERE id = ?`,
		formatTime(book.UpdatedAt),
		book.Title,
		book.ISBN,
		book.AuthorID,
		book.TotalCopies,
		book.AvailableCopies,
		book.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrISBNExists
		}
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrBookNotFound
	}
	return nil
}

// DeleteBook removes a book.
// Returns store.ErrBookNotFound if the book does not exist.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrBookNotFound
	}
	return nil
}

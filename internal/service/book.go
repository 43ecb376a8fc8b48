package service

import (
	"context"
	"fmt"

	"github.com/openshelf/openshelf-server/internal/domain"
	domainerrors "github.com/openshelf/openshelf-server/internal/errors"
	"github.com/openshelf/openshelf-server/internal/id"
	"github.com/openshelf/openshelf-server/internal/logger"
	"github.com/openshelf/openshelf-server/internal/store"
)

// BookService manages the book catalog.
type BookService struct {
	store  store.Store
	logger *logger.Logger
}

// NewBookService creates a new book service.
func NewBookService(store store.Store, logger *logger.Logger) *BookService {
	return &BookService{
		store:  store,
		logger: logger,
	}
}

// CreateBookRequest contains the data for a new book.
type CreateBookRequest struct {
	Title       string `json:"title" validate:"required,max=300"`
	ISBN        string `json:"isbn" validate:"required,max=32"`
	AuthorID    string `json:"author_id" validate:"required"`
	TotalCopies int    `json:"total_copies" validate:"required,min=1"`
}

// UpdateBookRequest contains a full book update.
type UpdateBookRequest struct {
	Title       string `json:"title" validate:"required,max=300"`
	ISBN        string `json:"isbn" validate:"required,max=32"`
	AuthorID    string `json:"author_id" validate:"required"`
	TotalCopies int    `json:"total_copies" validate:"required,min=1"`
}

// Create adds a new book to the catalog. All copies start available.
func (s *BookService) Create(ctx context.Context, req CreateBookRequest) (*domain.Book, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	if _, err := s.store.GetAuthor(ctx, req.AuthorID); err != nil {
		if domainerrors.Is(err, store.ErrAuthorNotFound) {
			return nil, domainerrors.NotFoundf("author %s not found", req.AuthorID)
		}
		return nil, fmt.Errorf("get author: %w", err)
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		Entity:          domain.Entity{ID: bookID},
		Title:           req.Title,
		ISBN:            req.ISBN,
		AuthorID:        req.AuthorID,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.TotalCopies,
	}
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		if domainerrors.Is(err, store.ErrISBNExists) {
			return nil, domainerrors.Conflict("a book with this ISBN already exists")
		}
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.logger.Info("book created", "book_id", book.ID, "title", book.Title)
	return book, nil
}

// Get retrieves a book by ID.
func (s *BookService) Get(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if domainerrors.Is(err, store.ErrBookNotFound) {
		return nil, domainerrors.NotFoundf("book %s not found", bookID)
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// List returns all books with their author names.
func (s *BookService) List(ctx context.Context) ([]*store.BookWithAuthor, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// Update applies a full update to a book. Changing the total copy count
// shifts the available counter by the same delta, so copies out on loan
// stay accounted for.
func (s *BookService) Update(ctx context.Context, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	book, err := s.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}

	delta := req.TotalCopies - book.TotalCopies
	if book.AvailableCopies+delta < 0 {
		return nil, domainerrors.Validationf(
			"cannot reduce total copies to %d: %d copies are on loan",
			req.TotalCopies, book.TotalCopies-book.AvailableCopies,
		)
	}

	book.Title = req.Title
	book.ISBN = req.ISBN
	book.AuthorID = req.AuthorID
	book.TotalCopies = req.TotalCopies
	book.AvailableCopies += delta
	book.Touch()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		if domainerrors.Is(err, store.ErrISBNExists) {
			return nil, domainerrors.Conflict("a book with this ISBN already exists")
		}
		if domainerrors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFoundf("book %s not found", bookID)
		}
		return nil, fmt.Errorf("update book: %w", err)
	}
	return book, nil
}

// Delete removes a book from the catalog.
func (s *BookService) Delete(ctx context.Context, bookID string) error {
	err := s.store.DeleteBook(ctx, bookID)
	if domainerrors.Is(err, store.ErrBookNotFound) {
		return domainerrors.NotFoundf("book %s not found", bookID)
	}
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	s.logger.Info("book deleted", "book_id", bookID)
	return nil
}

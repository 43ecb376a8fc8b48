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

// AuthorService manages the author catalog.
type AuthorService struct {
	store  store.Store
	logger *logger.Logger
}

// NewAuthorService creates a new author service.
func NewAuthorService(store store.Store, logger *logger.Logger) *AuthorService {
	return &AuthorService{
		store:  store,
		logger: logger,
	}
}

// CreateAuthorRequest contains the data for a new author.
type CreateAuthorRequest struct {
	FirstName string `json:"first_name" validate:"required,max=120"`
	LastName  string `json:"last_name" validate:"required,max=120"`
}

// UpdateAuthorRequest contains a full author update.
type UpdateAuthorRequest struct {
	FirstName string `json:"first_name" validate:"required,max=120"`
	LastName  string `json:"last_name" validate:"required,max=120"`
}

// Create adds a new author to the catalog.
func (s *AuthorService) Create(ctx context.Context, req CreateAuthorRequest) (*domain.Author, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	authorID, err := id.Generate("author")
	if err != nil {
		return nil, fmt.Errorf("generate author ID: %w", err)
	}

	author := &domain.Author{
		Entity:    domain.Entity{ID: authorID},
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	author.InitTimestamps()

	if err := s.store.CreateAuthor(ctx, author); err != nil {
		return nil, fmt.Errorf("create author: %w", err)
	}

	s.logger.Info("author created", "author_id", author.ID)
	return author, nil
}

// Get retrieves an author by ID.
func (s *AuthorService) Get(ctx context.Context, authorID string) (*domain.Author, error) {
	author, err := s.store.GetAuthor(ctx, authorID)
	if domainerrors.Is(err, store.ErrAuthorNotFound) {
		return nil, domainerrors.NotFoundf("author %s not found", authorID)
	}
	if err != nil {
		return nil, fmt.Errorf("get author: %w", err)
	}
	return author, nil
}

// List returns all authors.
func (s *AuthorService) List(ctx context.Context) ([]*domain.Author, error) {
	authors, err := s.store.ListAuthors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	return authors, nil
}

// Update applies a full update to an author.
func (s *AuthorService) Update(ctx context.Context, authorID string, req UpdateAuthorRequest) (*domain.Author, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	author, err := s.Get(ctx, authorID)
	if err != nil {
		return nil, err
	}

	author.FirstName = req.FirstName
	author.LastName = req.LastName
	author.Touch()

	if err := s.store.UpdateAuthor(ctx, author); err != nil {
		if domainerrors.Is(err, store.ErrAuthorNotFound) {
			return nil, domainerrors.NotFoundf("author %s not found", authorID)
		}
		return nil, fmt.Errorf("update author: %w", err)
	}
	return author, nil
}

// Delete removes an author from the catalog.
func (s *AuthorService) Delete(ctx context.Context, authorID string) error {
	err := s.store.DeleteAuthor(ctx, authorID)
	if domainerrors.Is(err, store.ErrAuthorNotFound) {
		return domainerrors.NotFoundf("author %s not found", authorID)
	}
	if err != nil {
		return fmt.Errorf("delete author: %w", err)
	}

	s.logger.Info("author deleted", "author_id", authorID)
	return nil
}

package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/openshelf/openshelf-server/internal/domain"
	"github.com/openshelf/openshelf-server/internal/service"
)

func (s *Server) registerAuthorRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listAuthors",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors",
		Summary:     "List authors",
		Tags:        []string{"Authors"},
	}, s.handleListAuthors)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createAuthor",
		Method:        http.MethodPost,
		Path:          "/api/v1/authors",
		Summary:       "Create author",
		Tags:          []string{"Authors"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAuthor",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors/{id}",
		Summary:     "Get author",
		Tags:        []string{"Authors"},
	}, s.handleGetAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateAuthor",
		Method:      http.MethodPut,
		Path:        "/api/v1/authors/{id}",
		Summary:     "Update author",
		Tags:        []string{"Authors"},
	}, s.handleUpdateAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteAuthor",
		Method:        http.MethodDelete,
		Path:          "/api/v1/authors/{id}",
		Summary:       "Delete author",
		Tags:          []string{"Authors"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteAuthor)
}

// AuthorBody carries author fields in create and update requests.
type AuthorBody struct {
	FirstName string `json:"first_name" doc:"Author's first name"`
	LastName  string `json:"last_name" doc:"Author's last name"`
}

// CreateAuthorInput is the request for creating an author.
type CreateAuthorInput struct {
	Body AuthorBody
}

// UpdateAuthorInput is the request for updating an author.
type UpdateAuthorInput struct {
	ID   string `path:"id" doc:"Author ID"`
	Body AuthorBody
}

// AuthorIDInput identifies an author by path parameter.
type AuthorIDInput struct {
	ID string `path:"id" doc:"Author ID"`
}

// AuthorOutput wraps a single author response.
type AuthorOutput struct {
	Body *domain.Author
}

// ListAuthorsOutput wraps the author list response.
type ListAuthorsOutput struct {
	Body struct {
		Authors []*domain.Author `json:"authors"`
	}
}

func (s *Server) handleListAuthors(ctx context.Context, _ *struct{}) (*ListAuthorsOutput, error) {
	authors, err := s.services.Author.List(ctx)
	if err != nil {
		return nil, err
	}

	out := &ListAuthorsOutput{}
	out.Body.Authors = authors
	return out, nil
}

func (s *Server) handleCreateAuthor(ctx context.Context, input *CreateAuthorInput) (*AuthorOutput, error) {
	author, err := s.services.Author.Create(ctx, service.CreateAuthorRequest{
		FirstName: input.Body.FirstName,
		LastName:  input.Body.LastName,
	})
	if err != nil {
		return nil, err
	}
	return &AuthorOutput{Body: author}, nil
}

func (s *Server) handleGetAuthor(ctx context.Context, input *AuthorIDInput) (*AuthorOutput, error) {
	author, err := s.services.Author.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &AuthorOutput{Body: author}, nil
}

func (s *Server) handleUpdateAuthor(ctx context.Context, input *UpdateAuthorInput) (*AuthorOutput, error) {
	author, err := s.services.Author.Update(ctx, input.ID, service.UpdateAuthorRequest{
		FirstName: input.Body.FirstName,
		LastName:  input.Body.LastName,
	})
	if err != nil {
		return nil, err
	}
	return &AuthorOutput{Body: author}, nil
}

func (s *Server) handleDeleteAuthor(ctx context.Context, input *AuthorIDInput) (*struct{}, error) {
	if err := s.services.Author.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

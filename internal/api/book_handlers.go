package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/openshelf/openshelf-server/internal/domain"
	"github.com/openshelf/openshelf-server/internal/service"
	"github.com/openshelf/openshelf-server/internal/store"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns all books with author names",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Create book",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Tags:        []string{"Books"},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteBook",
		Method:        http.MethodDelete,
		Path:          "/api/v1/books/{id}",
		Summary:       "Delete book",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "loanBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books/{id}/loan",
		Summary:       "Loan book",
		Description:   "Issues the book to a member and schedules a confirmation email",
		Tags:          []string{"Books", "Loans"},
		DefaultStatus: http.StatusCreated,
	}, s.handleLoanBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "returnBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/return",
		Summary:     "Return book",
		Description: "Closes the member's active loan for the book",
		Tags:        []string{"Books", "Loans"},
	}, s.handleReturnBook)
}

// BookBody carries book fields in create and update requests.
type BookBody struct {
	Title       string `json:"title" doc:"Book title"`
	ISBN        string `json:"isbn" doc:"Unique ISBN"`
	AuthorID    string `json:"author_id" doc:"Author ID"`
	TotalCopies int    `json:"total_copies" doc:"Total physical copies"`
}

// CreateBookInput is the request for creating a book.
type CreateBookInput struct {
	Body BookBody
}

// UpdateBookInput is the request for updating a book.
type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body BookBody
}

// BookIDInput identifies a book by path parameter.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// MemberRefBody identifies the member in loan and return requests.
type MemberRefBody struct {
	MemberID string `json:"member_id" doc:"Member ID"`
}

// LoanBookInput is the request for loaning a book to a member.
type LoanBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body MemberRefBody
}

// ReturnBookInput is the request for returning a book.
type ReturnBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body MemberRefBody
}

// BookOutput wraps a single book response.
type BookOutput struct {
	Body *domain.Book
}

// ListBooksOutput wraps the book list response.
type ListBooksOutput struct {
	Body struct {
		Books []*store.BookWithAuthor `json:"books"`
	}
}

// LoanOutput wraps a single loan response.
type LoanOutput struct {
	Body *domain.Loan
}

func (s *Server) handleListBooks(ctx context.Context, _ *struct{}) (*ListBooksOutput, error) {
	books, err := s.services.Book.List(ctx)
	if err != nil {
		return nil, err
	}

	out := &ListBooksOutput{}
	out.Body.Books = books
	return out, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	book, err := s.services.Book.Create(ctx, service.CreateBookRequest{
		Title:       input.Body.Title,
		ISBN:        input.Body.ISBN,
		AuthorID:    input.Body.AuthorID,
		TotalCopies: input.Body.TotalCopies,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	book, err := s.services.Book.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	book, err := s.services.Book.Update(ctx, input.ID, service.UpdateBookRequest{
		Title:       input.Body.Title,
		ISBN:        input.Body.ISBN,
		AuthorID:    input.Body.AuthorID,
		TotalCopies: input.Body.TotalCopies,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*struct{}, error) {
	if err := s.services.Book.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

func (s *Server) handleLoanBook(ctx context.Context, input *LoanBookInput) (*LoanOutput, error) {
	loan, err := s.services.Loan.Issue(ctx, input.ID, service.IssueRequest{
		MemberID: input.Body.MemberID,
	})
	if err != nil {
		return nil, err
	}
	return &LoanOutput{Body: loan}, nil
}

func (s *Server) handleReturnBook(ctx context.Context, input *ReturnBookInput) (*LoanOutput, error) {
	loan, err := s.services.Loan.Return(ctx, input.ID, service.ReturnRequest{
		MemberID: input.Body.MemberID,
	})
	if err != nil {
		return nil, err
	}
	return &LoanOutput{Body: loan}, nil
}

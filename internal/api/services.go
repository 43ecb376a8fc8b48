package api

import (
	"github.com/openshelf/openshelf-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Author *service.AuthorService
	Book   *service.BookService
	Member *service.MemberService
	Loan   *service.LoanService
}

// Package store defines the persistence interface for the OpenShelf catalog.
package store

import (
	"context"
	"time"

	"github.com/openshelf/openshelf-server/internal/domain"
)

// BookWithAuthor is a book joined with its author's display name.
// List queries return it in one round trip to avoid per-book author lookups.
type BookWithAuthor struct {
	domain.Book
	AuthorName string `json:"author_name"`
}

// LoanDetails is a loan joined with book and member display data.
// Notification paths fetch it in a single query.
type LoanDetails struct {
	domain.Loan
	BookTitle   string `json:"book_title"`
	MemberName  string `json:"member_name"`
	MemberEmail string `json:"member_email"`
}

// MemberActivity is a member with their count of currently-active loans
// (unreturned and not yet due).
type MemberActivity struct {
	domain.Member
	ActiveLoans int `json:"active_loans"`
}

// Store is the persistence boundary for authors, books, members, and loans.
//
// Implementations must apply loan/book mutations transactionally: the
// copies counter and the paired loan write commit atomically or not at all.
type Store interface {
	// Authors.
	CreateAuthor(ctx context.Context, author *domain.Author) error
	GetAuthor(ctx context.Context, id string) (*domain.Author, error)
	ListAuthors(ctx context.Context) ([]*domain.Author, error)
	UpdateAuthor(ctx context.Context, author *domain.Author) error
	DeleteAuthor(ctx context.Context, id string) error

	// Books.
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	ListBooks(ctx context.Context) ([]*BookWithAuthor, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, id string) error

	// Members.
	CreateMember(ctx context.Context, member *domain.Member) error
	GetMember(ctx context.Context, id string) (*domain.Member, error)
	ListMembers(ctx context.Context) ([]*domain.Member, error)
	UpdateMember(ctx context.Context, member *domain.Member) error
	DeleteMember(ctx context.Context, id string) error

	// TopActiveMembers returns up to limit members ordered by their count
	// of active loans (unreturned, due on or after the date of now)
	// descending, ties broken by member ID. Single aggregation query.
	TopActiveMembers(ctx context.Context, now time.Time, limit int) ([]*MemberActivity, error)

	// Loans.

	// IssueLoan inserts the loan and decrements the book's available
	// copies in one transaction. Returns ErrNoCopiesAvailable if the book
	// has no free copies, ErrBookNotFound if the book does not exist.
	IssueLoan(ctx context.Context, loan *domain.Loan) error

	// ReturnLoan marks the oldest unreturned loan for the (book, member)
	// pair as returned and increments the book's available copies in one
	// transaction. Returns ErrNoActiveLoan if no such loan exists.
	ReturnLoan(ctx context.Context, bookID, memberID string, now time.Time) (*domain.Loan, error)

	// ExtendLoanDueDate updates only the loan's due date.
	ExtendLoanDueDate(ctx context.Context, loanID string, dueDate time.Time) error

	GetLoan(ctx context.Context, id string) (*domain.Loan, error)
	ListLoans(ctx context.Context) ([]*LoanDetails, error)

	// GetLoanDetails fetches a loan joined with book title and member
	// contact data in a single query. Returns ErrLoanNotFound if the loan
	// no longer exists.
	GetLoanDetails(ctx context.Context, id string) (*LoanDetails, error)

	// ListOverdueLoans returns all unreturned loans whose due date is
	// before the date of now, joined with book and member data, in a
	// single query regardless of result size.
	ListOverdueLoans(ctx context.Context, now time.Time) ([]*LoanDetails, error)

	Close() error
}

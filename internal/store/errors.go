package store

import "errors"

// Sentinel errors returned by Store implementations. Services translate
// these into coded domain errors; handlers never see them directly.
var (
	ErrAuthorNotFound = errors.New("author not found")
	ErrBookNotFound   = errors.New("book not found")
	ErrMemberNotFound = errors.New("member not found")
	ErrLoanNotFound   = errors.New("loan not found")

	ErrISBNExists  = errors.New("book with this ISBN already exists")
	ErrEmailExists = errors.New("member with this email already exists")

	// ErrNoCopiesAvailable is returned by IssueLoan when the book has no
	// free copies at commit time. The check runs inside the issue
	// transaction so concurrent issues on the last copy serialize.
	ErrNoCopiesAvailable = errors.New("no available copies")

	// ErrNoActiveLoan is returned by ReturnLoan when no unreturned loan
	// exists for the (book, member) pair, including repeat returns.
	ErrNoActiveLoan = errors.New("no active loan for book and member")
)

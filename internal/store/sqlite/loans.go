package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/openshelf/openshelf-server/internal/domain"
	"github.com/openshelf/openshelf-server/internal/store"
)

// loanColumns is the ordered list of columns selected in loan queries.
// Must match the scan order in scanLoan.
const loanColumns = `id, created_at, updated_at, book_id, member_id, due_date, return_date, is_returned`

// scanLoan scans a sql.Row (or sql.Rows via its Scan method) into a domain.Loan.
func scanLoan(scanner interface{ Scan(dest ...any) error }) (*domain.Loan, error) {
	var l domain.Loan

	var (
		createdAt  string
		updatedAt  string
		dueDate    string
		returnDate sql.NullString
	)

	err := scanner.Scan(
		&l.ID,
		&createdAt,
		&updatedAt,
		&l.BookID,
		&l.MemberID,
		&dueDate,
		&returnDate,
		&l.IsReturned,
	)
	if err != nil {
		return nil, err
	}

	l.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	l.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	l.DueDate, err = parseTime(dueDate)
	if err != nil {
		return nil, err
	}
	l.ReturnDate, err = parseNullableTime(returnDate)
	if err != nil {
		return nil, err
	}

	return &l, nil
}

// IssueLoan inserts the loan and decrements the book's available copies in
// one transaction. The decrement is guarded by available_copies >= 1, so
// concurrent issues on the last copy serialize at the engine and exactly
// one of them wins.
//
// Returns store.ErrNoCopiesAvailable if the book has no free copies and
// store.ErrBookNotFound if the book does not exist.
func (s *Store) IssueLoan(ctx context.Context, loan *domain.Loan) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE books SET
			available_copies = available_copies - 1,
			updated_at = ?
		WHERE id = ? AND available_copies >= 1`,
		formatTime(time.Now().UTC()),
		loan.BookID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish a missing book from an exhausted one.
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM books WHERE id = ?`, loan.BookID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrBookNotFound
		}
		if err != nil {
			return err
		}
		return store.ErrNoCopiesAvailable
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO loans (id, created_at, updated_at, book_id, member_id, due_date, return_date, is_returned)
		VALUES (?, ?, ?, ?, ?, ?, NULL, 0)`,
		loan.ID,
		formatTime(loan.CreatedAt),
		formatTime(loan.UpdatedAt),
		loan.BookID,
		loan.MemberID,
		formatDate(loan.DueDate),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// ReturnLoan marks the oldest unreturned loan for the (book, member) pair
// as returned and increments the book's available copies, atomically.
//
// Returns store.ErrNoActiveLoan if no unreturned loan exists for the pair,
// including when the loan has already been returned, so a repeat return
// can never double-increment the counter.
func (s *Store) ReturnLoan(ctx context.Context, bookID, memberID string, now time.Time) (*domain.Loan, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+loanColumns+` FROM loans
		WHERE book_id = ? AND member_id = ? AND is_returned = 0
		ORDER BY created_at
		LIMIT 1`,
		bookID, memberID,
	)

	loan, err := scanLoan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNoActiveLoan
	}
	if err != nil {
		return nil, err
	}

	returnDate := domain.DateOf(now)
	loan.IsReturned = true
	loan.ReturnDate = &returnDate
	loan.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
		UPDATE loans SET
			is_returned = 1,
			return_date = ?,
			updated_at = ?
		WHERE id = ?`,
		formatDate(returnDate),
		formatTime(now),
		loan.ID,
	)
	if err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE books SET
			available_copies = available_copies + 1,
			updated_at = ?
		WHERE id = ? AND available_copies < total_copies`,
		formatTime(now),
		bookID,
	)
	if err != nil {
		return nil, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// An unreturned loan with a fully-stocked book means the copies
		// counter is out of sync. Abort rather than break the invariant.
		return nil, fmt.Errorf("book %s: copies counter out of sync with loans", bookID)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return loan, nil
}

// ExtendLoanDueDate updates only the loan's due date.
// Returns store.ErrLoanNotFound if the loan does not exist.
func (s *Store) ExtendLoanDueDate(ctx context.Context, loanID string, dueDate time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE loans SET
			due_date = ?,
			updated_at = ?
		WHERE id = ?`,
		formatDate(dueDate),
		formatTime(time.Now().UTC()),
		loanID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrLoanNotFound
	}
	return nil
}

// GetLoan retrieves a loan by ID.
// Returns store.ErrLoanNotFound if the loan does not exist.
func (s *Store) GetLoan(ctx context.Context, id string) (*domain.Loan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE id = ?`, id)

	l, err := scanLoan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrLoanNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// loanDetailsQuery selects loans joined with book title and member
// name/email. One round trip covers everything notification paths need.
const loanDetailsQuery = `
	SELECT l.id, l.created_at, l.updated_at, l.book_id, l.member_id,
		l.due_date, l.return_date, l.is_returned,
		b.title, m.name, m.email
	FROM loans l
	JOIN books b ON b.id = l.book_id
	JOIN members m ON m.id = l.member_id`

// scanLoanDetails scans a joined loan row into a store.LoanDetails.
func scanLoanDetails(scanner interface{ Scan(dest ...any) error }) (*store.LoanDetails, error) {
	var ld store.LoanDetails

	var (
		createdAt  string
		updatedAt  string
		dueDate    string
		returnDate sql.NullString
	)

	err := scanner.Scan(
		&ld.ID,
		&createdAt,
		&updatedAt,
		&ld.BookID,
		&ld.MemberID,
		&dueDate,
		&returnDate,
		&ld.IsReturned,
		&ld.BookTitle,
		&ld.MemberName,
		&ld.MemberEmail,
	)
	if err != nil {
		return nil, err
	}

	ld.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	ld.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	ld.DueDate, err = parseTime(dueDate)
	if err != nil {
		return nil, err
	}
	ld.ReturnDate, err = parseNullableTime(returnDate)
	if err != nil {
		return nil, err
	}

	return &ld, nil
}

// ListLoans returns all loans joined with book and member display data,
// newest first.
func (s *Store) ListLoans(ctx context.Context) ([]*store.LoanDetails, error) {
	rows, err := s.db.QueryContext(ctx, loanDetailsQuery+` ORDER BY l.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []*store.LoanDetails
	for rows.Next() {
		ld, err := scanLoanDetails(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, ld)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return loans, nil
}

// GetLoanDetails fetches a loan joined with book and member data in a
// single query. Returns store.ErrLoanNotFound if the loan no longer exists.
func (s *Store) GetLoanDetails(ctx context.Context, id string) (*store.LoanDetails, error) {
	row := s.db.QueryRowContext(ctx, loanDetailsQuery+` WHERE l.id = ?`, id)

	ld, err := scanLoanDetails(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrLoanNotFound
	}
	if err != nil {
		return nil, err
	}
	return ld, nil
}

// ListOverdueLoans returns all unreturned loans due before the date of
// now, joined with book and member data. The join keeps the overdue scan
// at exactly one query regardless of how many loans are overdue.
func (s *Store) ListOverdueLoans(ctx context.Context, now time.Time) ([]*store.LoanDetails, error) {
	rows, err := s.db.QueryContext(ctx,
		loanDetailsQuery+`
		WHERE l.is_returned = 0 AND l.due_date < ?
		ORDER BY l.due_date`,
		formatDate(now),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []*store.LoanDetails
	for rows.Next() {
		ld, err := scanLoanDetails(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, ld)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return loans, nil
}

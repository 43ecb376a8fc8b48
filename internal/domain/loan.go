package domain

import "time"

// LoanStatus is the lifecycle state of a loan.
//
// Overdue is never stored: it is derived from the due date and the current
// time so stored state cannot drift from the wall clock.
type LoanStatus string

// Loan lifecycle states.
const (
	LoanActive   LoanStatus = "active"
	LoanOverdue  LoanStatus = "overdue"
	LoanReturned LoanStatus = "returned"
)

// Loan records one book borrowed by one member.
//
// ReturnDate is set if and only if IsReturned is true. Loans are created
// by issuance and mutated by extension (due date only) and return; they
// are never deleted by lifecycle operations.
type Loan struct {
	Entity
	BookID     string     `json:"book_id"`
	MemberID   string     `json:"member_id"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	IsReturned bool       `json:"is_returned"`
}

// Status derives the lifecycle state at the given instant.
func (l *Loan) Status(now time.Time) LoanStatus {
	if l.IsReturned {
		return LoanReturned
	}
	if l.IsOverdue(now) {
		return LoanOverdue
	}
	return LoanActive
}

// IsOverdue reports whether the loan is unreturned with a due date in the past.
// Comparison happens at date precision: a loan due today is not overdue.
func (l *Loan) IsOverdue(now time.Time) bool {
	return !l.IsReturned && DateOf(l.DueDate).Before(DateOf(now))
}

// IsActive reports whether the loan is unreturned and not yet overdue.
func (l *Loan) IsActive(now time.Time) bool {
	return !l.IsReturned && !l.IsOverdue(now)
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/openshelf/openshelf-server/internal/config"
	"github.com/openshelf/openshelf-server/internal/domain"
	domainerrors "github.com/openshelf/openshelf-server/internal/errors"
	"github.com/openshelf/openshelf-server/internal/id"
	"github.com/openshelf/openshelf-server/internal/logger"
	"github.com/openshelf/openshelf-server/internal/mail"
	"github.com/openshelf/openshelf-server/internal/store"
)

// LoanNotifier schedules asynchronous loan notifications. Scheduling never
// blocks and never fails from the caller's point of view.
type LoanNotifier interface {
	EnqueueLoanConfirmation(loanID string)
}

// LoanService executes the loan lifecycle: issue, return, due date
// extension, and the overdue scan.
type LoanService struct {
	store    store.Store
	notifier LoanNotifier
	mailer   mail.Mailer
	cfg      config.LoanConfig
	logger   *logger.Logger
}

// NewLoanService creates a new loan service.
func NewLoanService(
	store store.Store,
	notifier LoanNotifier,
	mailer mail.Mailer,
	cfg config.LoanConfig,
	logger *logger.Logger,
) *LoanService {
	return &LoanService{
		store:    store,
		notifier: notifier,
		mailer:   mailer,
		cfg:      cfg,
		logger:   logger,
	}
}

// IssueRequest identifies the member borrowing a book.
type IssueRequest struct {
	MemberID string `json:"member_id" validate:"required"`
}

// ReturnRequest identifies the member returning a book.
type ReturnRequest struct {
	MemberID string `json:"member_id" validate:"required"`
}

// ExtendRequest asks for more time on a loan.
type ExtendRequest struct {
	AdditionalDays int `json:"additional_days"`
}

// Issue loans a book to a member. The due date defaults to today plus the
// configured loan period. On success a confirmation email is scheduled
// asynchronously; scheduling never affects the outcome of the issue.
func (s *LoanService) Issue(ctx context.Context, bookID string, req IssueRequest) (*domain.Loan, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	if _, err := s.store.GetMember(ctx, req.MemberID); err != nil {
		if domainerrors.Is(err, store.ErrMemberNotFound) {
			return nil, domainerrors.MemberNotFound("Member does not exist.")
		}
		return nil, fmt.Errorf("get member: %w", err)
	}

	loanID, err := id.Generate("loan")
	if err != nil {
		return nil, fmt.Errorf("generate loan ID: %w", err)
	}

	now := time.Now()
	loan := &domain.Loan{
		Entity:   domain.Entity{ID: loanID},
		BookID:   bookID,
		MemberID: req.MemberID,
		DueDate:  domain.DateOf(now).AddDate(0, 0, s.cfg.DefaultDueDays),
	}
	loan.InitTimestamps()

	if err := s.store.IssueLoan(ctx, loan); err != nil {
		switch {
		case domainerrors.Is(err, store.ErrBookNotFound):
			return nil, domainerrors.NotFoundf("book %s not found", bookID)
		case domainerrors.Is(err, store.ErrNoCopiesAvailable):
			return nil, domainerrors.NoCopiesAvailable("No available copies.")
		default:
			return nil, fmt.Errorf("issue loan: %w", err)
		}
	}

	s.logger.Info("loan issued",
		"loan_id", loan.ID,
		"book_id", bookID,
		"member_id", req.MemberID,
		"due_date", loan.DueDate.Format("2006-01-02"),
	)

	s.notifier.EnqueueLoanConfirmation(loan.ID)
	return loan, nil
}

// Return closes the member's unreturned loan for the book and frees a copy.
// A repeat return fails because the loan is no longer unreturned, so the
// copies counter can never be incremented twice for one loan.
func (s *LoanService) Return(ctx context.Context, bookID string, req ReturnRequest) (*domain.Loan, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	loan, err := s.store.ReturnLoan(ctx, bookID, req.MemberID, time.Now())
	if domainerrors.Is(err, store.ErrNoActiveLoan) {
		return nil, domainerrors.NoActiveLoan("Active loan does not exist.")
	}
	if err != nil {
		return nil, fmt.Errorf("return loan: %w", err)
	}

	s.logger.Info("loan returned",
		"loan_id", loan.ID,
		"book_id", bookID,
		"member_id", req.MemberID,
	)
	return loan, nil
}

// ExtendDueDate pushes a loan's due date out by additionalDays. Only loans
// that are still active qualify: an overdue or returned loan cannot be
// extended, and the day count must be at least one.
func (s *LoanService) ExtendDueDate(ctx context.Context, loanID string, req ExtendRequest) (*domain.Loan, error) {
	if req.AdditionalDays < 1 {
		return nil, domainerrors.InvalidDayCount("additional_days must be at least 1")
	}

	loan, err := s.store.GetLoan(ctx, loanID)
	if domainerrors.Is(err, store.ErrLoanNotFound) {
		return nil, domainerrors.NotFoundf("loan %s not found", loanID)
	}
	if err != nil {
		return nil, fmt.Errorf("get loan: %w", err)
	}

	now := time.Now()
	switch loan.Status(now) {
	case domain.LoanOverdue:
		return nil, domainerrors.InvalidExtension("Loan is already overdue")
	case domain.LoanReturned:
		return nil, domainerrors.InvalidExtension("Loan is already returned")
	}

	loan.DueDate = domain.DateOf(loan.DueDate).AddDate(0, 0, req.AdditionalDays)
	loan.Touch()

	if err := s.store.ExtendLoanDueDate(ctx, loanID, loan.DueDate); err != nil {
		if domainerrors.Is(err, store.ErrLoanNotFound) {
			return nil, domainerrors.NotFoundf("loan %s not found", loanID)
		}
		return nil, fmt.Errorf("extend loan due date: %w", err)
	}

	s.logger.Info("loan extended",
		"loan_id", loanID,
		"additional_days", req.AdditionalDays,
		"due_date", loan.DueDate.Format("2006-01-02"),
	)
	return loan, nil
}

// Get retrieves a loan by ID.
func (s *LoanService) Get(ctx context.Context, loanID string) (*domain.Loan, error) {
	loan, err := s.store.GetLoan(ctx, loanID)
	if domainerrors.Is(err, store.ErrLoanNotFound) {
		return nil, domainerrors.NotFoundf("loan %s not found", loanID)
	}
	if err != nil {
		return nil, fmt.Errorf("get loan: %w", err)
	}
	return loan, nil
}

// List returns all loans with book and member display data.
func (s *LoanService) List(ctx context.Context) ([]*store.LoanDetails, error) {
	loans, err := s.store.ListLoans(ctx)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	return loans, nil
}

// RunOverdueScan fetches every unreturned loan past its due date in one
// query and sends one overdue notice per loan. Sends are independent: a
// failure is logged and the scan moves on, so one bad address cannot
// starve the rest. Returns the number of notices sent.
func (s *LoanService) RunOverdueScan(ctx context.Context) (int, error) {
	now := time.Now()

	overdue, err := s.store.ListOverdueLoans(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list overdue loans: %w", err)
	}

	sent := 0
	for _, loan := range overdue {
		msg := mail.Message{
			To:      loan.MemberEmail,
			Subject: "Overdue Book Loan Notice",
			Body: fmt.Sprintf(
				"Hello %s,\n\nYou have an overdue book loan %q, due on %s.\nPlease return it as soon as possible.",
				loan.MemberName,
				loan.BookTitle,
				loan.DueDate.Format("2006-01-02"),
			),
		}
		if err := s.mailer.Send(ctx, msg); err != nil {
			s.logger.WithError(err).Error("send overdue notice",
				"loan_id", loan.ID,
				"member_id", loan.MemberID,
			)
			continue
		}
		sent++
	}

	s.logger.Info("overdue scan complete", "overdue", len(overdue), "sent", sent)
	return sent, nil
}

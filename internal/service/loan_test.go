package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf-server/internal/config"
	"github.com/openshelf/openshelf-server/internal/domain"
	domainerrors "github.com/openshelf/openshelf-server/internal/errors"
	"github.com/openshelf/openshelf-server/internal/logger"
	"github.com/openshelf/openshelf-server/internal/mail"
	"github.com/openshelf/openshelf-server/internal/store"
	"github.com/openshelf/openshelf-server/internal/store/sqlite"
)

// capturingMailer records sent messages and can fail selected recipients.
type capturingMailer struct {
	mu      sync.Mutex
	sent    []mail.Message
	failFor map[string]error
}

func (m *capturingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failFor[msg.To]; ok {
		return err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *capturingMailer) messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

// capturingNotifier records scheduled confirmation loan IDs.
type capturingNotifier struct {
	mu      sync.Mutex
	loanIDs []string
}

func (n *capturingNotifier) EnqueueLoanConfirmation(loanID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.loanIDs = append(n.loanIDs, loanID)
}

func (n *capturingNotifier) scheduled() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.loanIDs...)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Writer: io.Discard, Format: "json"})
}

// setupLoanTest creates a loan service backed by a temporary SQLite store.
func setupLoanTest(t *testing.T) (*LoanService, store.Store, *capturingMailer, *capturingNotifier) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := sqlite.Open(dbPath, testLogger().Logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	mailer := &capturingMailer{}
	notifier := &capturingNotifier{}
	cfg := config.LoanConfig{DefaultDueDays: 14, OverdueScanInterval: time.Hour}

	svc := NewLoanService(s, notifier, mailer, cfg, testLogger())
	return svc, s, mailer, notifier
}

// seedCatalog creates an author, a book with the given copy counts, and a
// member, returning the book and member IDs.
func seedCatalog(t *testing.T, s store.Store, total, available int) (bookID, memberID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	author := &domain.Author{
		Entity:    domain.Entity{ID: "author-1", CreatedAt: now, UpdatedAt: now},
		FirstName: "Chinua",
		LastName:  "Achebe",
	}
	require.NoError(t, s.CreateAuthor(ctx, author))

	book := &domain.Book{
		Entity:          domain.Entity{ID: "book-1", CreatedAt: now, UpdatedAt: now},
		Title:           "Things Fall Apart",
		ISBN:            "978-0-385-47454-2",
		AuthorID:        author.ID,
		TotalCopies:     total,
		AvailableCopies: available,
	}
	require.NoError(t, s.CreateBook(ctx, book))

	member := &domain.Member{
		Entity: domain.Entity{ID: "member-1", CreatedAt: now, UpdatedAt: now},
		Name:   "Obi Okonkwo",
		Email:  "obi@example.com",
	}
	require.NoError(t, s.CreateMember(ctx, member))

	return book.ID, member.ID
}

// backdateLoan rewrites a loan's due date, bypassing extension rules, so
// tests can manufacture overdue loans.
func backdateLoan(t *testing.T, s store.Store, loanID string, dueDate time.Time) {
	t.Helper()
	require.NoError(t, s.ExtendLoanDueDate(context.Background(), loanID, dueDate))
}

func TestIssueLoan(t *testing.T) {
	svc, s, _, notifier := setupLoanTest(t)
	ctx := context.Background()
	bookID, memberID := seedCatalog(t, s, 3, 3)

	loan, err := svc.Issue(ctx, bookID, IssueRequest{MemberID: memberID})
	require.NoError(t, err)

	assert.Equal(t, bookID, loan.BookID)
	assert.Equal(t, memberID, loan.MemberID)
	assert.False(t, loan.IsReturned)

	wantDue := domain.DateOf(time.Now()).AddDate(0, 0, 14)
	assert.Equal(t, wantDue, loan.DueDate)

	book, err := s.GetBook(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 2, book.AvailableCopies)

	assert.Equal(t, []string{loan.ID}, notifier.scheduled())
}

func TestIssueLoan_NoCopiesAvailable(t *testing.T) {
	svc, s, _, notifier := setupLoanTest(t)
	ctx := context.Background()
	bookID, memberID := seedCatalog(t, s, 2, 0)

	_, err := svc.Issue(ctx, bookID, IssueRequest{MemberID: memberID})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrNoCopiesAvailable)

	// No loan was created and the book is untouched.
	loans, err := s.ListLoans(ctx)
	require.NoError(t, err)
	assert.Empty(t, loans)

	book, err := s.GetBook(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 0, book.AvailableCopies)

	assert.Empty(t, notifier.scheduled())
}

func TestIssueLoan_LastCopy(t *testing.T) {
	svc, s, _, _ := setupLoanTest(t)
	ctx := context.Background()
	bookID, memberID := seedCatalog(t, s, 1, 1)

	_, err := svc.Issue(ctx, bookID, IssueRequest{MemberID: memberID})
	require.NoError(t, err)

	_, err = svc.Issue(ctx, bookID, IssueRequest{MemberID: memberID})
	assert.ErrorIs(t, err, domainerrors.ErrNoCopiesAvailable)
}

func TestIssueLoan_MemberNotFound(t *testing.T) {
	svc, s, _, notifier := setupLoanTest(t)
	ctx := context.Background()
	bookID, _ := seedCatalog(t, s, 1, 1)

	_, err := svc.Issue(ctx, bookID, IssueRequest{MemberID: "member-ghost"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrMemberNotFound)
	assert.Empty(t, notifier.scheduled())
}

func TestIssueLoan_BookNotFound(t *testing.T) {
	svc, s, _, _ := setupLoanTest(t)
	ctx := context.Background()
	_, memberID := seedCatalog(t, s, 1, 1)

	_, err := svc.Issue(ctx, "book-ghost", IssueRequest{MemberID: memberID})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestReturnLoan(t *testing.T) {
	svc, s, _, _ := setupLoanTest(t)
	ctx := context.Background()
	bookID, memberID := seedCatalog(t, s, 2, 2)

	issued, err := svc.Issue(ctx, bookID, IssueRequest{MemberID: memberID})
	require.NoError(t, err)

	returned, err := svc.Return(ctx, bookID, ReturnRequest{MemberID: memberID})
	require.NoError(t, err)

	assert.Equal(t, issued.ID, returned.ID)
	assert.True(t, returned.IsReturned)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, domain.DateOf(time.Now()), *returned.ReturnDate)

	book, err := s.GetBook(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 2, book.AvailableCopies)
}

func TestReturnLoan_NoActiveLoan(t *testing.T) {
	svc, s, _, _ := setupLoanTest(t)
	ctx := context.Background()
	bookID, memberID := seedCatalog(t, s, 2, 2)

	_, err := svc.Return(ctx, bookID, ReturnRequest{MemberID: memberID})
	assert.ErrorIs(t, err, domainerrors.ErrNoActiveLoan)
}

func TestReturnLoan_RepeatReturn(t *testing.T) {
	svc, s, _, _ := setupLoanTest(t)
	ctx := context.Background()
	bookID, memberID := seedCatalog(t, s, 2, 2)

	_, err := svc.Issue(ctx, bookID, IssueRequest{MemberID: memberID})
	require.NoError(t, err)

	_, err = svc.Return(ctx, bookID, ReturnRequest{MemberID: memberID})
	require.NoError(t, err)

	_, err = svc.Return(ctx, bookID, ReturnRequest{MemberID: memberID})
	assert.ErrorIs(t, err, domainerrors.ErrNoActiveLoan)

	// The counter was not incremented twice.
	book, err := s.GetBook(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 2, book.AvailableCopies)
}

func TestExtendDueDate(t *testing.T) {
	svc, s, _, _ := setupLoanTest(t)
	ctx := context.Background()
	bookID, memberID := seedCatalog(t, s, 1, 1)

	issued, err := svc.Issue(ctx, bookID, IssueRequest{MemberID: memberID})
	require.NoError(t, err)

	extended, err := svc.ExtendDueDate(ctx, issued.ID, ExtendRequest{AdditionalDays: 5})
	require.NoError(t, err)

	assert.Equal(t, issued.DueDate.AddDate(0, 0, 5), extended.DueDate)
	assert.False(t, extended.IsReturned)

	// The new due date is persisted.
	stored, err := s.GetLoan(ctx, issued.ID)
	require.NoError(t, err)
	assert.Equal(t, extended.DueDate, stored.DueDate)
}

func TestExtendDueDate_InvalidDayCount(t *testing.T) {
	svc, s, _, _ := setupLoanTest(t)
	ctx := context.Background()
	bookID, memberID := seedCatalog(t, s, 1, 1)

	issued, err := svc.Issue(ctx, bookID, IssueRequest{MemberID: memberID})
	require.NoError(t, err)

	for _, days := range []int{0, -3} {
		_, err := svc.ExtendDueDate(ctx, issued.ID, ExtendRequest{AdditionalDays: days})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidDayCount, "days=%d", days)
	}

	// The due date did not move.
	stored, err := s.GetLoan(ctx, issued.ID)
	require.NoError(t, err)
	assert.Equal(t, issued.DueDate, stored.DueDate)
}

func TestExtendDueDate_Overdue(t *testing.T) {
	svc, s, _, _ := setupLoanTest(t)
	ctx := context.Background()
	bookID, memberID := seedCatalog(t, s, 1, 1)

	issued, err := svc.Issue(ctx, bookID, IssueRequest{MemberID: memberID})
	require.NoError(t, err)
	backdateLoan(t, s, issued.ID, time.Now().AddDate(0, 0, -1))

	_, err = svc.ExtendDueDate(ctx, issued.ID, ExtendRequest{AdditionalDays: 5})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidExtension)
	assert.Contains(t, err.Error(), "Loan is already overdue")
}

func TestExtendDueDate_Returned(t *testing.T) {
	svc, s, _, _ := setupLoanTest(t)
	ctx := context.Background()
	bookID, memberID := seedCatalog(t, s, 1, 1)

	issued, err := svc.Issue(ctx, bookID, IssueRequest{MemberID: memberID})
	require.NoError(t, err)
	_, err = svc.Return(ctx, bookID, ReturnRequest{MemberID: memberID})
	require.NoError(t, err)

	_, err = svc.ExtendDueDate(ctx, issued.ID, ExtendRequest{AdditionalDays: 5})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidExtension)
}

func TestExtendDueDate_LoanNotFound(t *testing.T) {
	svc, _, _, _ := setupLoanTest(t)

	_, err := svc.ExtendDueDate(context.Background(), "loan-ghost", ExtendRequest{AdditionalDays: 5})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestRunOverdueScan(t *testing.T) {
	svc, s, mailer, _ := setupLoanTest(t)
	ctx := context.Background()
	bookID, memberID := seedCatalog(t, s, 10, 10)

	// Two overdue loans and one still active.
	for i := 0; i < 3; i++ {
		loan, err := svc.Issue(ctx, bookID, IssueRequest{MemberID: memberID})
		require.NoError(t, err)
		if i < 2 {
			backdateLoan(t, s, loan.ID, time.Now().AddDate(0, 0, -(i+1)))
		}
	}

	sent, err := svc.RunOverdueScan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	messages := mailer.messages()
	require.Len(t, messages, 2)
	for _, msg := range messages {
		assert.Equal(t, "obi@example.com", msg.To)
		assert.Equal(t, "Overdue Book Loan Notice", msg.Subject)
		assert.Contains(t, msg.Body, "Things Fall Apart")
	}
}

func TestRunOverdueScan_NoOverdueLoans(t *testing.T) {
	svc, s, mailer, _ := setupLoanTest(t)
	ctx := context.Background()
	bookID, memberID := seedCatalog(t, s, 1, 1)

	_, err := svc.Issue(ctx, bookID, IssueRequest{MemberID: memberID})
	require.NoError(t, err)

	sent, err := svc.RunOverdueScan(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, mailer.messages())
}

func TestRunOverdueScan_ContinuesAfterSendFailure(t *testing.T) {
	svc, s, mailer, _ := setupLoanTest(t)
	ctx := context.Background()
	now := time.Now()
	bookID, _ := seedCatalog(t, s, 10, 10)

	// A second member whose mail delivery fails.
	broken := &domain.Member{
		Entity: domain.Entity{ID: "member-2", CreatedAt: now, UpdatedAt: now},
		Name:   "Broken Mailbox",
		Email:  "broken@example.com",
	}
	require.NoError(t, s.CreateMember(ctx, broken))
	mailer.failFor = map[string]error{"broken@example.com": fmt.Errorf("smtp unavailable")}

	for _, memberID := range []string{"member-2", "member-1"} {
		loan, err := svc.Issue(ctx, bookID, IssueRequest{MemberID: memberID})
		require.NoError(t, err)
		backdateLoan(t, s, loan.ID, now.AddDate(0, 0, -2))
	}

	sent, err := svc.RunOverdueScan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	messages := mailer.messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "obi@example.com", messages[0].To)
}

func TestRunOverdueScan_RepeatedScansRepeatNotices(t *testing.T) {
	svc, s, mailer, _ := setupLoanTest(t)
	ctx := context.Background()
	bookID, memberID := seedCatalog(t, s, 1, 1)

	loan, err := svc.Issue(ctx, bookID, IssueRequest{MemberID: memberID})
	require.NoError(t, err)
	backdateLoan(t, s, loan.ID, time.Now().AddDate(0, 0, -1))

	for i := 0; i < 3; i++ {
		sent, err := svc.RunOverdueScan(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
	}
	assert.Len(t, mailer.messages(), 3)
}

// countingLoanStore serves overdue loans from memory and counts store calls.
// Any other store method hits the embedded nil interface and panics.
type countingLoanStore struct {
	store.Store
	calls   int
	overdue []*store.LoanDetails
}

func (s *countingLoanStore) ListOverdueLoans(_ context.Context, _ time.Time) ([]*store.LoanDetails, error) {
	s.calls++
	return s.overdue, nil
}

func TestRunOverdueScan_SingleStoreQuery(t *testing.T) {
	overdue := make([]*store.LoanDetails, 0, 50)
	for i := 0; i < 50; i++ {
		overdue = append(overdue, &store.LoanDetails{
			Loan: domain.Loan{
				Entity:   domain.Entity{ID: fmt.Sprintf("loan-%d", i)},
				BookID:   "book-1",
				MemberID: fmt.Sprintf("member-%d", i),
				DueDate:  time.Now().AddDate(0, 0, -3),
			},
			BookTitle:   "Things Fall Apart",
			MemberName:  fmt.Sprintf("Member %d", i),
			MemberEmail: fmt.Sprintf("member-%d@example.com", i),
		})
	}

	s := &countingLoanStore{overdue: overdue}
	mailer := &capturingMailer{}
	cfg := config.LoanConfig{DefaultDueDays: 14, OverdueScanInterval: time.Hour}
	svc := NewLoanService(s, &capturingNotifier{}, mailer, cfg, testLogger())

	sent, err := svc.RunOverdueScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, sent)
	assert.Len(t, mailer.messages(), 50)
	assert.Equal(t, 1, s.calls, "one store round trip regardless of overdue count")
}

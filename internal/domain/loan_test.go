package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoan_Status(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		dueDate    time.Time
		isReturned bool
		want       LoanStatus
	}{
		{"due tomorrow", now.AddDate(0, 0, 1), false, LoanActive},
		{"due today is still active", now, false, LoanActive},
		{"due today earlier hour", DateOf(now), false, LoanActive},
		{"due yesterday", now.AddDate(0, 0, -1), false, LoanOverdue},
		{"due last week", now.AddDate(0, 0, -7), false, LoanOverdue},
		{"returned before due", now.AddDate(0, 0, 1), true, LoanReturned},
		{"returned after due", now.AddDate(0, 0, -1), true, LoanReturned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := &Loan{DueDate: tt.dueDate, IsReturned: tt.isReturned}
			assert.Equal(t, tt.want, loan.Status(now))
		})
	}
}

func TestLoan_IsOverdue_DatePrecision(t *testing.T) {
	// Due "yesterday 23:59" is overdue even one second after midnight.
	now := time.Date(2026, 3, 10, 0, 0, 1, 0, time.UTC)
	loan := &Loan{DueDate: time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC)}

	assert.True(t, loan.IsOverdue(now))
	assert.False(t, loan.IsActive(now))
}

func TestLoan_ReturnedNeverOverdue(t *testing.T) {
	now := time.Now()
	loan := &Loan{DueDate: now.AddDate(0, 0, -30), IsReturned: true}

	assert.False(t, loan.IsOverdue(now))
	assert.False(t, loan.IsActive(now))
	assert.Equal(t, LoanReturned, loan.Status(now))
}

func TestDateOf(t *testing.T) {
	ts := time.Date(2026, 3, 10, 18, 45, 12, 999, time.FixedZone("UTC+5", 5*3600))
	got := DateOf(ts)

	// 18:45 UTC+5 is 13:45 UTC, so the UTC date is still March 10.
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestAuthor_FullName(t *testing.T) {
	a := &Author{FirstName: "Buchi", LastName: "Emecheta"}
	assert.Equal(t, "Buchi Emecheta", a.FullName())

	single := &Author{LastName: "Homer"}
	assert.Equal(t, "Homer", single.FullName())
}

func TestBook_HasAvailableCopies(t *testing.T) {
	b := &Book{TotalCopies: 3, AvailableCopies: 1}
	assert.True(t, b.HasAvailableCopies())

	b.AvailableCopies = 0
	assert.False(t, b.HasAvailableCopies())
}

// Package notify delivers loan emails off the request path.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/openshelf/openshelf-server/internal/logger"
	"github.com/openshelf/openshelf-server/internal/mail"
	"github.com/openshelf/openshelf-server/internal/store"
)

const (
	defaultQueueSize   = 256
	defaultWorkerCount = 4
	sendTimeout        = 30 * time.Second
)

// LoanReader fetches the loan details a notification needs.
type LoanReader interface {
	GetLoanDetails(ctx context.Context, id string) (*store.LoanDetails, error)
}

// Dispatcher sends loan confirmation emails asynchronously. Requests enqueue
// a loan ID and return immediately; workers re-fetch the loan and send. A
// loan that has vanished by the time a worker picks it up is skipped without
// error, since the caller has long since moved on.
type Dispatcher struct {
	loans  LoanReader
	mailer mail.Mailer
	log    *logger.Logger

	queue  chan string
	wg     sync.WaitGroup
	cancel context.CancelFunc

	mu      sync.Mutex
	stopped bool

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewDispatcher creates a dispatcher with the default queue size.
func NewDispatcher(loans LoanReader, mailer mail.Mailer, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		loans:  loans,
		mailer: mailer,
		log:    log,
		queue:  make(chan string, defaultQueueSize),
	}
}

// Start launches the worker pool. Safe to call once.
func (d *Dispatcher) Start() {
	d.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		d.cancel = cancel

		for i := 0; i < defaultWorkerCount; i++ {
			d.wg.Add(1)
			go d.worker(ctx)
		}
		d.log.Info("notification dispatcher started", "workers", defaultWorkerCount)
	})
}

// Stop drains in-flight work and shuts the pool down. Enqueues after Stop
// are dropped.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.stopped = true
		close(d.queue)
		d.mu.Unlock()
		d.wg.Wait()
		if d.cancel != nil {
			d.cancel()
		}
		d.log.Info("notification dispatcher stopped")
	})
}

// EnqueueLoanConfirmation schedules a confirmation email for a freshly
// issued loan. Never blocks and never panics: if the queue is full or the
// dispatcher has stopped, the notification is dropped with a warning, since
// loan issuance must not wait on email.
func (d *Dispatcher) EnqueueLoanConfirmation(loanID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		d.log.Warn("dispatcher stopped, dropping loan confirmation", "loan_id", loanID)
		return
	}

	select {
	case d.queue <- loanID:
	default:
		d.log.Warn("notification queue full, dropping loan confirmation", "loan_id", loanID)
	}
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()

	for loanID := range d.queue {
		if err := d.sendConfirmation(ctx, loanID); err != nil {
			d.log.WithError(err).Error("send loan confirmation", "loan_id", loanID)
		}
	}
}

func (d *Dispatcher) sendConfirmation(ctx context.Context, loanID string) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	details, err := d.loans.GetLoanDetails(ctx, loanID)
	if errors.Is(err, store.ErrLoanNotFound) {
		// The loan was deleted between issue and pickup. Nothing to notify.
		d.log.Debug("loan gone before confirmation, skipping", "loan_id", loanID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch loan %s: %w", loanID, err)
	}

	msg := mail.Message{
		To:      details.MemberEmail,
		Subject: "Book Loaned Successfully",
		Body: fmt.Sprintf(
			"Hello %s,\n\nYou have successfully loaned %q.\nPlease return it by %s.\n\nThank you.",
			details.MemberName,
			details.BookTitle,
			details.DueDate.Format("2006-01-02"),
		),
	}
	return d.mailer.Send(ctx, msg)
}

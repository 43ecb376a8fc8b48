package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/openshelf/openshelf-server/internal/config"
	"github.com/openshelf/openshelf-server/internal/logger"
	"github.com/openshelf/openshelf-server/internal/service"
)

// OverdueScanJob runs the periodic overdue loan scan.
type OverdueScanJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *OverdueScanJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideOverdueScanJob provides the periodic overdue scan job. Each tick
// runs one scan; a failed scan is logged and retried on the next tick.
func ProvideOverdueScanJob(i do.Injector) (*OverdueScanJob, error) {
	cfg := do.MustInvoke[*config.Config](i)
	loanService := do.MustInvoke[*service.LoanService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(cfg.Loans.OverdueScanInterval)
		defer ticker.Stop()

		// Initial scan on startup
		if sent, err := loanService.RunOverdueScan(ctx); err != nil {
			log.Warn("Initial overdue scan failed", "error", err)
		} else if sent > 0 {
			log.Info("Initial overdue scan completed", "notices_sent", sent)
		}

		for {
			select {
			case <-ticker.C:
				if sent, err := loanService.RunOverdueScan(ctx); err != nil {
					log.Warn("Overdue scan failed", "error", err)
				} else if sent > 0 {
					log.Info("Overdue scan completed", "notices_sent", sent)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Overdue scan job started", "interval", cfg.Loans.OverdueScanInterval)

	return &OverdueScanJob{cancel: cancel}, nil
}

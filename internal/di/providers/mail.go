package providers

import (
	"github.com/samber/do/v2"

	"github.com/openshelf/openshelf-server/internal/config"
	"github.com/openshelf/openshelf-server/internal/logger"
	"github.com/openshelf/openshelf-server/internal/mail"
	"github.com/openshelf/openshelf-server/internal/notify"
)

// ProvideMailer provides the outgoing mail transport. Without an SMTP host
// configured, messages are logged instead of sent.
func ProvideMailer(i do.Injector) (mail.Mailer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Mail.Enabled {
		log.Info("SMTP not configured, mail delivery disabled")
		return mail.NewLogMailer(log), nil
	}

	mailer, err := mail.NewSMTPMailer(cfg.Mail, log)
	if err != nil {
		return nil, err
	}

	log.Info("SMTP mailer configured", "host", cfg.Mail.SMTPHost, "from", cfg.Mail.From)
	return mailer, nil
}

// DispatcherHandle wraps the notification dispatcher with shutdown capability.
type DispatcherHandle struct {
	*notify.Dispatcher
}

// Shutdown implements do.Shutdownable.
func (h *DispatcherHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideDispatcher provides the async loan notification dispatcher.
func ProvideDispatcher(i do.Injector) (*DispatcherHandle, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	mailer := do.MustInvoke[mail.Mailer](i)
	log := do.MustInvoke[*logger.Logger](i)

	d := notify.NewDispatcher(storeHandle.Store, mailer, log)
	d.Start()

	return &DispatcherHandle{Dispatcher: d}, nil
}

package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/villagemarket/village-market/config"
	"github.com/villagemarket/village-market/pkg/helpers"
	"github.com/villagemarket/village-market/pkg/mailer"
)

// Notifier enqueues templated emails for the email worker. A nil Notifier
// or publisher drops messages silently.
type Notifier struct {
	Pub    helpers.Publisher
	Cfg    *config.Config
	Logger *logrus.Logger
}

func NewNotifier(pub helpers.Publisher, cfg *config.Config, logger *logrus.Logger) *Notifier {
	return &Notifier{Pub: pub, Cfg: cfg, Logger: logger}
}

func (n *Notifier) Config() *config.Config {
	if n == nil {
		return nil
	}
	return n.Cfg
}

// Send publishes one email job. Failures are logged; email is never on the
// critical path of a request.
func (n *Notifier) Send(ctx context.Context, to, template string, data map[string]any) {
	if n == nil || n.Pub == nil || to == "" {
		return
	}
	if n.Cfg != nil && !n.Cfg.MailSendEnabled {
		return
	}

	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	job := mailer.EmailJob{To: to, Template: template, Data: data}
	if err := n.Pub.PublishJSON(c, job); err != nil && n.Logger != nil {
		n.Logger.WithError(err).WithFields(logrus.Fields{"template": template, "to": to}).Warn("failed to publish email job")
	}
}

package notify

import (
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/example/smartblinds/internal/config"
	"github.com/example/smartblinds/internal/datamodels/order"
)

// Result is the outcome of a send attempt. Skipped means the mail
// transport is not configured — a supported configuration, never an
// error to callers.
type Result string

const (
	ResultSent    Result = "sent"
	ResultSkipped Result = "skipped"
	ResultFailed  Result = "failed"
)

// sender is the transport seam; satisfied by *gomail.Dialer.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer renders and sends transactional order email. Constructed at
// bootstrap and injected; there is no package-level transporter.
type Mailer struct {
	send sender
	from string
	log  *zap.Logger
}

// NewMailer builds a Mailer over SMTP. With incomplete SMTP config the
// Mailer stays usable and every send reports ResultSkipped.
func NewMailer(cfg *config.SMTPConfig, log *zap.Logger) *Mailer {
	m := &Mailer{from: cfg.From, log: log}
	if m.from == "" {
		m.from = cfg.Username
	}
	if cfg.Enabled() {
		m.send = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	} else {
		log.Info("smtp not configured, order emails will be skipped")
	}
	return m
}

// newMailerWithSender is the test constructor.
func newMailerWithSender(s sender, from string, log *zap.Logger) *Mailer {
	return &Mailer{send: s, from: from, log: log}
}

// SendOrderReceived sends the initial confirmation email.
func (m *Mailer) SendOrderReceived(o *order.Order) Result {
	subject, body, err := renderOrderReceived(o)
	if err != nil {
		m.log.Warn("render order-received email failed",
			zap.String("order_ref", o.OrderRef), zap.Error(err))
		return ResultFailed
	}
	return m.deliver(o, subject, body)
}

// SendStatusChanged sends the status-transition email.
func (m *Mailer) SendStatusChanged(o *order.Order, previous, current order.Status) Result {
	subject, body, err := renderStatusChanged(o, previous, current)
	if err != nil {
		m.log.Warn("render status-changed email failed",
			zap.String("order_ref", o.OrderRef), zap.Error(err))
		return ResultFailed
	}
	return m.deliver(o, subject, body)
}

func (m *Mailer) deliver(o *order.Order, subject, body string) Result {
	if m.send == nil {
		m.log.Info("email skipped, transport not configured",
			zap.String("order_ref", o.OrderRef), zap.String("subject", subject))
		return ResultSkipped
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", o.CustomerEmail)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.send.DialAndSend(msg); err != nil {
		m.log.Warn("email send failed",
			zap.String("order_ref", o.OrderRef),
			zap.String("to", o.CustomerEmail),
			zap.Error(err))
		return ResultFailed
	}
	m.log.Info("email sent",
		zap.String("order_ref", o.OrderRef),
		zap.String("subject", subject))
	return ResultSent
}

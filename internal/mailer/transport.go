package mailer

import (
	"context"
	"crypto/tls"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"contactrelay/internal/model"
	"contactrelay/pkg/config"
	"contactrelay/pkg/metrics"
)

// Transport delivers a single message.
type Transport interface {
	Send(ctx context.Context, msg *model.MailMessage) error
	Host() string
}

// SMTPTransport sends through an SMTP server with gomail. A new dialer and
// connection are used for every message.
type SMTPTransport struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

func NewSMTPTransport(cfg config.MailConfig, logger *zap.Logger) *SMTPTransport {
	logger.Info("Initializing SMTP transport",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("user", cfg.Username),
		zap.Bool("insecure_skip_verify", cfg.InsecureSkipVerify),
	)
	return &SMTPTransport{cfg: cfg, logger: logger}
}

func (t *SMTPTransport) Host() string {
	return t.cfg.Host
}

func (t *SMTPTransport) dialer() *gomail.Dialer {
	d := gomail.NewDialer(t.cfg.Host, t.cfg.Port, t.cfg.Username, t.cfg.Password)
	if t.cfg.InsecureSkipVerify {
		d.TLSConfig = &tls.Config{ServerName: t.cfg.Host, InsecureSkipVerify: true}
	}
	return d
}

// Send dials, authenticates when a username is configured, and delivers msg.
// gomail has no context support; ctx is only checked before dialing.
func (t *SMTPTransport) Send(ctx context.Context, msg *model.MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := t.dialer().DialAndSend(m); err != nil {
		metrics.IncrementMailSend(t.Host(), "failed")
		return err
	}

	metrics.IncrementMailSend(t.Host(), "success")
	t.logger.Debug("Mail handed to SMTP server",
		zap.String("host", t.cfg.Host),
		zap.String("to", msg.To),
	)
	return nil
}

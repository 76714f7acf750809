package mailer

import (
	"fmt"

	"contactrelay/internal/model"
	"contactrelay/pkg/config"
)

// BuildMessage derives the outgoing email from a submission. The submitter's
// address is used as From; when it is empty the configured sender address is
// used instead so the transport still gets a deliverable message.
func BuildMessage(cfg config.MailConfig, s model.ContactSubmission) *model.MailMessage {
	from := s.Email
	if from == "" {
		from = cfg.SenderAddress
	}

	return &model.MailMessage{
		From:    from,
		ReplyTo: s.Email,
		To:      cfg.Recipient,
		Subject: fmt.Sprintf("New message from %s", s.Name),
		Body:    fmt.Sprintf("You have received a new message from %s (%s):\n\n%s", s.Name, s.Email, s.Message),
	}
}

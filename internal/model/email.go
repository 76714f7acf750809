package model

// MailMessage is the outgoing email built from one ContactSubmission.
type MailMessage struct {
	From    string
	ReplyTo string
	To      string
	Subject string
	Body    string
}

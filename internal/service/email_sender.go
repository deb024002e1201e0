package service

// EmailSender dispatches one message. Implementations return the delivery
// error so callers can decide whether to log or surface it; the reset flow
// only ever logs.
type EmailSender interface {
	Send(to, subject, htmlBody string) error
}

// Package mailer delivers rendered greeting images by email. It is a thin
// transport boundary: the pipeline treats any Sender implementation the
// same and records per-recipient outcomes itself.
package mailer

import (
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/gomail.v2"

	"github.com/tartampluch/go-greetings/internal/config"
)

// Sender is the delivery contract consumed by the pipeline. Each call is a
// single recipient; failures must be returned, never panicked, so one bad
// address cannot affect the rest of the batch.
type Sender interface {
	Send(to, subject, body, imageName string, image []byte) error
}

// SMTPSettings carries the connection parameters, typically read from the
// environment by the caller.
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Validate reports whether the settings are complete enough to dial.
func (s SMTPSettings) Validate() error {
	if s.Host == "" || s.From == "" {
		return fmt.Errorf("%s", config.ErrSMTPConfig)
	}
	return nil
}

// SMTPSender implements Sender over SMTP.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	log    *slog.Logger
}

// NewSMTPSender creates a sender from validated settings.
func NewSMTPSender(settings SMTPSettings, log *slog.Logger) *SMTPSender {
	port := settings.Port
	if port == 0 {
		port = config.DefaultSMTPPort
	}
	return &SMTPSender{
		dialer: gomail.NewDialer(settings.Host, port, settings.Username, settings.Password),
		from:   settings.From,
		log:    log.With(config.LogKeyComponent, config.CompMailer),
	}
}

// Send delivers one greeting with the rendered image attached. An empty
// imageName sends a plain text-only mail, which carries the run report.
func (s *SMTPSender) Send(to, subject, body, imageName string, image []byte) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	if imageName != "" {
		m.Attach(imageName,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(image)
				return err
			}),
			gomail.SetHeader(map[string][]string{
				config.HeaderContentType: {config.MimeImageJPEG},
			}),
		)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("%s: %w", config.ErrSendFailed, err)
	}

	s.log.Info(config.MsgEmailSent, config.LogKeyEmail, to)
	return nil
}

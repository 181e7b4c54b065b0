// Package mailer delivers outbound email over SMTP.
package mailer

import (
	"context"
	"errors"
	"strings"

	"gopkg.in/gomail.v2"
)

// Message is a single outbound email.
type Message struct {
	To      []string
	Cc      []string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends mail through a gomail dialer.
type SMTPMailer struct {
	dialer sender
	from   string
}

// NewSMTPMailer builds an SMTPMailer from cfg.
func NewSMTPMailer(cfg Config) *SMTPMailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &SMTPMailer{dialer: d, from: cfg.From}
}

// Send implements Mailer. gomail has no context support, so ctx is only
// checked before dialing.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gm, err := m.build(msg)
	if err != nil {
		return err
	}
	return m.dialer.DialAndSend(gm)
}

func (m *SMTPMailer) build(msg Message) (*gomail.Message, error) {
	to := compact(msg.To)
	if len(to) == 0 {
		return nil, errors.New("mailer: no recipients")
	}
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", to...)
	if cc := compact(msg.Cc); len(cc) > 0 {
		gm.SetHeader("Cc", cc...)
	}
	gm.SetHeader("Subject", msg.Subject)
	switch {
	case msg.Text != "" && msg.HTML != "":
		gm.SetBody("text/plain", msg.Text)
		gm.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		gm.SetBody("text/html", msg.HTML)
	default:
		gm.SetBody("text/plain", msg.Text)
	}
	return gm, nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Mailer delivers email. Callers treat delivery as best-effort.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	cb     *gobreaker.CircuitBreaker
	log    *zap.Logger
}

func NewSMTPMailer(host string, port int, user, pass, from string, log *zap.Logger) *SMTPMailer {
	if from == "" {
		from = user
	}
	st := gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Info("circuit breaker state", zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
		cb:     gobreaker.NewCircuitBreaker(st),
		log:    log,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, e Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	from := e.From
	if from == "" {
		from = m.from
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", e.To...)
	msg.SetHeader("Subject", e.Subject)
	msg.SetBody("text/plain", e.Body)

	_, err := m.cb.Execute(func() (interface{}, error) {
		return nil, m.dialer.DialAndSend(msg)
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// LogMailer writes emails to the log instead of sending them. Used when no
// SMTP host is configured.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, e Email) error {
	m.log.Info("email not sent, SMTP disabled",
		zap.Strings("to", e.To),
		zap.String("subject", e.Subject),
		zap.String("body", e.Body),
	)
	return nil
}

// VerificationEmail builds the OTP message sent after registration.
func VerificationEmail(to, code string) Email {
	return Email{
		To:      []string{to},
		Subject: "HomeService Email Verification Code",
		Body: fmt.Sprintf("Hello,\n\nYour HomeService verification code is: %s\n\n"+
			"Enter this code to verify your email address.\n\n"+
			"If you did not create an account, you can ignore this email.\n\nHomeService", code),
	}
}

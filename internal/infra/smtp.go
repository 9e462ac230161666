package infra

import (
	"fmt"
	"net/smtp"

	"github.com/raw-dani/pos-only/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends receipt emails through the configured SMTP relay. Every send
// goes through a circuit breaker so a dead relay fails fast.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
	breaker  *CircuitBreaker
}

func NewMailer(cfg *config.Config, breaker *CircuitBreaker) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		breaker:  breaker,
	}
}

// Enabled reports whether an SMTP host is configured.
func (m *Mailer) Enabled() bool { return m.host != "" }

// Breaker exposes the breaker for health reporting.
func (m *Mailer) Breaker() *CircuitBreaker { return m.breaker }

// SendReceipt mails the PDF at pdfPath to the customer.
func (m *Mailer) SendReceipt(to, subject, body, pdfPath string) error {
	if !m.Enabled() {
		return fmt.Errorf("mailer: SMTP_HOST not configured")
	}

	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return m.breaker.Execute(func() error {
		return e.Send(m.addr, auth)
	})
}

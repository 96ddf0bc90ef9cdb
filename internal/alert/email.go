package alert

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPConfig holds the outbound mail settings.
type SMTPConfig struct {
	Server   string `yaml:"server"`
	Port     int    `yaml:"port"`
	Sender   string `yaml:"sender"`
	Password string `yaml:"password"`
}

// EmailNotifier sends price alerts over SMTP with STARTTLS.
type EmailNotifier struct {
	cfg SMTPConfig

	// send is swapped in tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailNotifier creates a notifier from SMTP settings.
func NewEmailNotifier(cfg SMTPConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, send: smtp.SendMail}
}

// SendAlert emails a price alert to the recipient.
func (n *EmailNotifier) SendAlert(ctx context.Context, symbol string, currentPrice, targetPrice float64, recipient string) error {
	subject := "Price Alert - " + symbol
	var b strings.Builder
	fmt.Fprintf(&b, "Price Alert for %s:\r\n", symbol)
	fmt.Fprintf(&b, "Current Price: %.2f USDT\r\n", currentPrice)
	fmt.Fprintf(&b, "Target Price: %.2f USDT\r\n\r\n", targetPrice)
	b.WriteString("This alert was generated because the price fell below your target price.\r\n")
	if err := n.SendReport(ctx, subject, b.String(), recipient); err != nil {
		return fmt.Errorf("send price alert: %w", err)
	}
	return nil
}

// SendReport emails an arbitrary plain-text report.
func (n *EmailNotifier) SendReport(_ context.Context, subject, body, recipient string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.cfg.Sender)
	fmt.Fprintf(&b, "To: %s\r\n", recipient)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(body)

	addr := fmt.Sprintf("%s:%d", n.cfg.Server, n.cfg.Port)
	auth := smtp.PlainAuth("", n.cfg.Sender, n.cfg.Password, n.cfg.Server)
	return n.send(addr, auth, n.cfg.Sender, []string{recipient}, []byte(b.String()))
}

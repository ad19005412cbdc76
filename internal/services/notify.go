package services

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/roomloop/roomloop/internal/config"
	"github.com/roomloop/roomloop/internal/logging"
)

// Email represents an email to be sent.
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// EmailProvider is the interface for sending emails.
type EmailProvider interface {
	Send(ctx context.Context, email *Email) error
}

// Notifier implements NotificationDispatcher. Email goes through the
// configured provider; WhatsApp messages are handed to the gateway log in
// development (delivery through a real gateway is an operational concern,
// not a protocol one). Callers treat every failure as non-fatal.
type Notifier struct {
	provider    EmailProvider
	fromAddress string
	fromName    string
}

func NewNotifier(cfg *config.NotifyConfig) *Notifier {
	var provider EmailProvider

	switch cfg.Provider {
	case "resend":
		provider = NewResendProvider(cfg.ResendAPIKey, cfg.FromName, cfg.FromAddress)
	case "smtp":
		provider = NewSMTPProvider(cfg.SMTPHost, cfg.SMTPPort, cfg.FromName, cfg.FromAddress)
	default:
		provider = NewConsoleProvider()
	}

	return &Notifier{
		provider:    provider,
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
	}
}

func (n *Notifier) Send(ctx context.Context, note InviteNotification) error {
	subject, html, text := renderInvite(note)

	switch note.Channel {
	case "whatsapp":
		logging.Info("WhatsApp invite queued", map[string]interface{}{
			"to":    note.Recipient,
			"group": note.GroupName,
		})
		fmt.Printf("\n=== WHATSAPP ===\nTo: %s\n---\n%s\n================\n\n", note.Recipient, text)
		return nil
	case "email":
		return n.provider.Send(ctx, &Email{
			To:      note.Recipient,
			Subject: subject,
			HTML:    html,
			Text:    text,
		})
	default:
		// Link-only invites have nothing to deliver.
		return nil
	}
}

func renderInvite(note InviteNotification) (subject, html, text string) {
	subject = fmt.Sprintf("%s invited you to join %s on RoomLoop", note.InviterName, note.GroupName)

	intro := fmt.Sprintf("%s invited you to join the household group %s.", note.InviterName, note.GroupName)
	custom := strings.TrimSpace(note.Message)

	var textBuf bytes.Buffer
	textBuf.WriteString(intro)
	textBuf.WriteString("\n\n")
	if custom != "" {
		textBuf.WriteString(fmt.Sprintf("\"%s\"\n\n", custom))
	}
	textBuf.WriteString(fmt.Sprintf("Join here: %s\n\nThe link expires, so don't wait too long.\n\n--\nRoomLoop\nroomloop.app\n", note.InviteURL))
	text = textBuf.String()

	customHTML := ""
	if custom != "" {
		customHTML = fmt.Sprintf(`<blockquote style="color: #555; border-left: 3px solid #ddd; margin: 12px 0; padding-left: 12px;">%s</blockquote>`, htmlEscape(custom))
	}

	html = fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #333; font-size: 24px;">RoomLoop</h1>

  <p style="font-size: 16px;">%s</p>
  %s
  <p>
    <a href="%s" style="display: inline-block; background: #4F46E5; color: white; padding: 10px 18px; text-decoration: none; border-radius: 6px; margin: 12px 0;">
      Join %s
    </a>
  </p>

  <p style="color: #666; font-size: 14px;">The link expires, so don't wait too long.</p>

  <hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">
  <p style="color: #999; font-size: 12px;">RoomLoop - roomloop.app</p>
</body>
</html>`,
		htmlEscape(intro),
		customHTML,
		note.InviteURL,
		htmlEscape(note.GroupName),
	)

	return subject, html, text
}

func htmlEscape(value string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(value)
}

// ResendProvider sends emails using the Resend API.
type ResendProvider struct {
	client *resend.Client
	from   string
}

func NewResendProvider(apiKey, fromName, fromAddress string) *ResendProvider {
	return &ResendProvider{
		client: resend.NewClient(apiKey),
		from:   fmt.Sprintf("%s <%s>", fromName, fromAddress),
	}
}

func (p *ResendProvider) Send(ctx context.Context, email *Email) error {
	params := &resend.SendEmailRequest{
		From:    p.from,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
	}

	_, err := p.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("sending email via Resend: %w", err)
	}

	logging.Info("Email sent via Resend", map[string]interface{}{"to": email.To, "subject": email.Subject})
	return nil
}

// SMTPProvider sends emails via SMTP (for Mailpit in local dev).
type SMTPProvider struct {
	host string
	port int
	from string
	addr string
}

func NewSMTPProvider(host string, port int, fromName, fromAddress string) *SMTPProvider {
	return &SMTPProvider{
		host: host,
		port: port,
		from: fmt.Sprintf("%s <%s>", fromName, fromAddress),
		addr: fromAddress,
	}
}

func (p *SMTPProvider) Send(ctx context.Context, email *Email) error {
	addr := fmt.Sprintf("%s:%d", p.host, p.port)

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", p.from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", email.To))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(email.HTML)

	err := smtp.SendMail(addr, nil, p.addr, []string{email.To}, buf.Bytes())
	if err != nil {
		return fmt.Errorf("sending email via SMTP: %w", err)
	}

	logging.Info("Email sent via SMTP", map[string]interface{}{"to": email.To, "subject": email.Subject})
	return nil
}

// ConsoleProvider logs emails to console (for development).
type ConsoleProvider struct{}

func NewConsoleProvider() *ConsoleProvider {
	return &ConsoleProvider{}
}

func (p *ConsoleProvider) Send(ctx context.Context, email *Email) error {
	logging.Info("=== EMAIL (Console Provider) ===", map[string]interface{}{"to": email.To, "subject": email.Subject})
	fmt.Printf("\n=== EMAIL ===\n")
	fmt.Printf("To: %s\n", email.To)
	fmt.Printf("Subject: %s\n", email.Subject)
	fmt.Printf("---\n")
	fmt.Printf("%s\n", email.Text)
	fmt.Printf("=============\n\n")
	return nil
}

package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"time"

	"pricewatch/config"
)

// Notifier delivers pricing-change alerts over email and chat webhooks.
// Both channels are best-effort: a delivery failure never affects the check
// that triggered it.
type Notifier struct {
	cfg    config.AlertConfig
	client *http.Client
}

func New(cfg config.AlertConfig) *Notifier {
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// SendEmail sends an HTML alert email. recipientOverride takes precedence
// over the configured recipient; with neither set the alert is skipped.
func (n *Notifier) SendEmail(subject, htmlBody, recipientOverride string) error {
	to := recipientOverride
	if to == "" {
		to = n.cfg.ToEmail
	}
	if to == "" || n.cfg.SMTPHost == "" {
		return nil
	}

	msg := bytes.Buffer{}
	fmt.Fprintf(&msg, "From: %s\r\n", n.cfg.FromEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	addr := n.cfg.SMTPHost + ":" + n.cfg.SMTPPort
	var auth smtp.Auth
	if n.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", n.cfg.SMTPUser, n.cfg.SMTPPassword, n.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, n.cfg.FromEmail, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send alert email: %v", err)
	}
	return nil
}

// SendChatWebhook posts a text alert to a chat webhook. webhookOverride
// takes precedence over the configured URL; with neither set the alert is
// skipped.
func (n *Notifier) SendChatWebhook(text, webhookOverride string) error {
	url := webhookOverride
	if url == "" {
		url = n.cfg.ChatWebhookURL
	}
	if url == "" {
		return nil
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %v", err)
	}

	resp, err := n.client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to post chat webhook: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("chat webhook returned status %d", resp.StatusCode)
	}
	return nil
}

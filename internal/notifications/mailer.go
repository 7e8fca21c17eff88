package notifications

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	texttemplate "text/template"
	"time"

	mail "gopkg.in/mail.v2"

	"github.com/angelmondragon/placeshare-backend/pkg/config"
	"github.com/angelmondragon/placeshare-backend/pkg/logger"
)

const (
	fromName            = "PlaceShare"
	maxSendAttempts     = 3
	signupPendingLayout = "templates/signup_pending.tmpl"
)

//go:embed templates
var templatesFS embed.FS

type sender interface {
	DialAndSend(m ...*mail.Message) error
}

// Mailer sends notices to the admin mailbox over SMTP.
type Mailer struct {
	sender  sender
	from    string
	adminTo string
	logg    *logger.Logger
	backoff time.Duration
}

// NewMailer builds an SMTP notifier from cfg.
func NewMailer(cfg config.MailConfig, logg *logger.Logger) (*Mailer, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("mail host and admin email required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	dialer := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.Timeout = cfg.Timeout
	return &Mailer{
		sender:  dialer,
		from:    cfg.From,
		adminTo: cfg.AdminEmail,
		logg:    logg,
		backoff: time.Second,
	}, nil
}

// NewNotifier returns an SMTP mailer when mail is configured, otherwise Noop.
func NewNotifier(cfg config.MailConfig, logg *logger.Logger) (Notifier, error) {
	if !cfg.Enabled() {
		return Noop{}, nil
	}
	return NewMailer(cfg, logg)
}

func (m *Mailer) NotifySignup(ctx context.Context, notice SignupNotice) error {
	msg, err := m.render(signupPendingLayout, notice)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		if lastErr = m.sender.DialAndSend(msg); lastErr == nil {
			m.logg.Info(m.logg.WithField(ctx, "user_id", notice.UserID.String()), "signup notice sent")
			return nil
		}
		m.logg.Warn(m.logg.WithFields(ctx, map[string]any{
			"attempt": attempt,
			"error":   lastErr.Error(),
		}), "signup notice attempt failed")

		if attempt == maxSendAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * m.backoff):
		}
	}
	return fmt.Errorf("send signup notice after %d attempts: %w", maxSendAttempts, lastErr)
}

func (m *Mailer) render(layout string, data any) (*mail.Message, error) {
	subject, err := executeText(layout, "subject", data)
	if err != nil {
		return nil, err
	}
	plain, err := executeText(layout, "plainBody", data)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.ParseFS(templatesFS, layout)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", layout, err)
	}
	var html bytes.Buffer
	if err := tmpl.ExecuteTemplate(&html, "htmlBody", data); err != nil {
		return nil, fmt.Errorf("render html body: %w", err)
	}

	msg := mail.NewMessage()
	msg.SetAddressHeader("From", m.from, fromName)
	msg.SetHeader("To", m.adminTo)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", plain)
	msg.AddAlternative("text/html", html.String())
	return msg, nil
}

func executeText(layout, name string, data any) (string, error) {
	tmpl, err := texttemplate.ParseFS(templatesFS, layout)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", layout, err)
	}
	var out bytes.Buffer
	if err := tmpl.ExecuteTemplate(&out, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return out.String(), nil
}

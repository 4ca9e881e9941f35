// Package notify emails HR accounts about approval decisions.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"trujobs-api/config"
	"trujobs-api/internal/domain"
)

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends HR status emails over SMTP.
type Mailer struct {
	from   string
	sender sender
	tmpl   *template.Template
}

type statusEmailData struct {
	Name        string
	CompanyName string
	Approved    bool
}

const statusEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0f766e; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{if .Approved}}Your HR account is approved{{else}}Your HR account was not approved{{end}}</h1>
        </div>
        <div class="content">
            <p>Hi {{.Name}},</p>
            {{if .Approved}}
            <p>{{.CompanyName}} can now post jobs on TruJobs.</p>
            {{else}}
            <p>We could not verify {{.CompanyName}} at this time. Reply to this email if you think this is a mistake.</p>
            {{end}}
        </div>
    </div>
</body>
</html>`

func NewMailer(cfg *config.Config) *Mailer {
	return newMailer(cfg.SMTPFrom, gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword))
}

func newMailer(from string, s sender) *Mailer {
	return &Mailer{
		from:   from,
		sender: s,
		tmpl:   template.Must(template.New("hr-status").Parse(statusEmailTemplate)),
	}
}

// HRStatusChanged is a no-op for accounts without an email or still pending.
func (m *Mailer) HRStatusChanged(_ context.Context, hr *domain.HRAccount) error {
	if hr == nil || hr.Email == "" || hr.Status == domain.HRStatusPending {
		return nil
	}

	data := statusEmailData{
		Name:        hr.Name,
		CompanyName: hr.CompanyName,
		Approved:    hr.Status == domain.HRStatusApproved,
	}
	var body bytes.Buffer
	if err := m.tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	subject := "Your TruJobs HR account was not approved"
	if data.Approved {
		subject = "Your TruJobs HR account is approved"
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", hr.Email)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// Noop is used when SMTP is not configured.
type Noop struct{}

func (Noop) HRStatusChanged(context.Context, *domain.HRAccount) error { return nil }

// New returns a Mailer when SMTP is configured and Noop otherwise.
func New(cfg *config.Config) domain.HRNotifier {
	if !cfg.SMTPConfigured() {
		return Noop{}
	}
	return NewMailer(cfg)
}

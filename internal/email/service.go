package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"github.com/Adnan2001Bin/task-management-application/internal/logging"
)

// Service sends transactional email over SMTP.
type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	senderEmail  string
	appName      string
	codeTTL      time.Duration
}

// NewService builds the sender. codeTTL is the same value the registration
// flow uses for verificationCodeExpires; the expiry stated in the email body
// is rendered from it, so the two cannot drift.
func NewService(smtpHost, smtpPort, smtpUser, smtpPassword, senderEmail, appName string, codeTTL time.Duration) *Service {
	return &Service{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		senderEmail:  senderEmail,
		appName:      appName,
		codeTTL:      codeTTL,
	}
}

// SendVerificationEmail renders and dispatches the verification code email.
func (s *Service) SendVerificationEmail(ctx context.Context, toEmail, name, code string) error {
	logger := logging.GetLoggerFromContext(ctx)

	subject := "Verify Your Email"
	body, err := s.renderVerificationEmail(name, code)
	if err != nil {
		logger.Error("failed to render email template", "error", err.Error())
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, subject, body); err != nil {
		logger.Error("failed to send verification email", "email", toEmail, "error", err.Error())
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("verification email sent", "email", toEmail)
	return nil
}

func (s *Service) sendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)

	msg := []byte(fmt.Sprintf(
		"From: %q <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.appName, s.senderEmail, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	return smtp.SendMail(addr, auth, s.senderEmail, []string{to}, msg)
}

var verificationTemplate = template.Must(template.New("verification").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #4a90e2; color: white; padding: 10px; text-align: center; }
        .content { padding: 20px; background-color: #f9f9f9; }
        .code { font-size: 24px; font-weight: bold; color: #4a90e2; }
        .footer { margin-top: 20px; font-size: 12px; color: #777; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h2>Welcome to {{.AppName}}, {{.Name}}!</h2>
        </div>
        <div class="content">
            <p>Please verify your email address by using the code below:</p>
            <p class="code">{{.Code}}</p>
            <p>This code will expire in {{.ExpiryMinutes}} minutes.</p>
            <p>If you didn&rsquo;t request this, please ignore this email.</p>
        </div>
        <div class="footer">
            <p>&copy; {{.Year}} {{.AppName}}. All rights reserved.</p>
        </div>
    </div>
</body>
</html>
`))

func (s *Service) renderVerificationEmail(name, code string) (string, error) {
	var buf bytes.Buffer
	data := struct {
		AppName       string
		Name          string
		Code          string
		ExpiryMinutes int
		Year          int
	}{
		AppName:       s.appName,
		Name:          name,
		Code:          code,
		ExpiryMinutes: int(s.codeTTL.Minutes()),
		Year:          time.Now().Year(),
	}

	if err := verificationTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}

package notifications

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"zinema/internal/shared/config"
)

// EmailService sends notification emails
type EmailService interface {
	SendNotification(ctx context.Context, notification *EmailNotification) error
	SendHTML(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// SMTPConfig holds SMTP configuration
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
	Timeout   time.Duration
}

// SMTPConfigFromApp builds SMTP config from application config
func SMTPConfigFromApp(cfg *config.Config) *SMTPConfig {
	return &SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
		UseTLS:    true,
		Timeout:   30 * time.Second,
	}
}

// SMTPEmailService delivers emails over SMTP with STARTTLS
type SMTPEmailService struct {
	config    *SMTPConfig
	templates map[string]*template.Template
}

// NewSMTPEmailService creates a new SMTP email service
func NewSMTPEmailService(config *SMTPConfig) (*SMTPEmailService, error) {
	if err := validateSMTPConfig(config); err != nil {
		return nil, fmt.Errorf("invalid SMTP configuration: %w", err)
	}

	service := &SMTPEmailService{
		config:    config,
		templates: make(map[string]*template.Template),
	}
	service.loadDefaultTemplates()

	return service, nil
}

func validateSMTPConfig(config *SMTPConfig) error {
	if config == nil {
		return fmt.Errorf("SMTP config is nil")
	}
	if config.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("SMTP port must be between 1 and 65535")
	}
	if config.Username == "" {
		return fmt.Errorf("SMTP username is required")
	}
	if config.Password == "" {
		return fmt.Errorf("SMTP password is required")
	}
	if config.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

// SendNotification renders the notification's template and sends it
func (s *SMTPEmailService) SendNotification(ctx context.Context, notification *EmailNotification) error {
	htmlBody, textBody, err := s.generateContent(notification)
	if err != nil {
		return fmt.Errorf("failed to generate email content: %w", err)
	}

	return s.SendHTML(ctx, notification.RecipientEmail, notification.Subject, htmlBody, textBody)
}

// SendHTML sends a multipart HTML email
func (s *SMTPEmailService) SendHTML(ctx context.Context, to, subject, htmlBody, textBody string) error {
	message := s.buildMessage(to, subject, htmlBody, textBody)

	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var err error
	if s.config.UseTLS {
		err = s.sendWithSTARTTLS(addr, auth, to, message)
	} else {
		err = smtp.SendMail(addr, auth, s.config.FromEmail, []string{to}, message)
	}

	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *SMTPEmailService) generateContent(notification *EmailNotification) (string, string, error) {
	templateName := strings.ToLower(string(notification.Type))

	tmpl, exists := s.templates[templateName]
	if !exists {
		// Fall back to a plain rendering of the template data
		var b strings.Builder
		for k, v := range notification.TemplateData {
			fmt.Fprintf(&b, "%s: %v\n", k, v)
		}
		return "<pre>" + template.HTMLEscapeString(b.String()) + "</pre>", b.String(), nil
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&htmlBuf, "html", notification.TemplateData); err != nil {
		return "", "", fmt.Errorf("failed to execute HTML template: %w", err)
	}
	if err := tmpl.ExecuteTemplate(&textBuf, "text", notification.TemplateData); err != nil {
		textBuf.Reset()
		textBuf.WriteString("Please view this email in HTML format.")
	}

	return htmlBuf.String(), textBuf.String(), nil
}

// sendWithSTARTTLS upgrades the connection before authenticating
func (s *SMTPEmailService) sendWithSTARTTLS(addr string, auth smtp.Auth, to string, message []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Quit()

	tlsconfig := &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         s.config.Host,
	}

	if err = client.StartTLS(tlsconfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return w.Close()
}

func (s *SMTPEmailService) buildMessage(to, subject, htmlBody, textBody string) []byte {
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Date"] = time.Now().Format(time.RFC1123Z)

	boundary := "boundary_" + strconv.FormatInt(time.Now().UnixNano(), 10)
	headers["Content-Type"] = fmt.Sprintf("multipart/alternative; boundary=%s", boundary)

	var message strings.Builder
	for k, v := range headers {
		fmt.Fprintf(&message, "%s: %s\r\n", k, v)
	}
	message.WriteString("\r\n")

	if textBody != "" {
		fmt.Fprintf(&message, "--%s\r\n", boundary)
		message.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		message.WriteString(textBody + "\r\n")
	}

	fmt.Fprintf(&message, "--%s\r\n", boundary)
	message.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	message.WriteString(htmlBody + "\r\n")
	fmt.Fprintf(&message, "--%s--\r\n", boundary)

	return []byte(message.String())
}

func (s *SMTPEmailService) loadDefaultTemplates() {
	bookingConfirmed := template.Must(template.New("booking_confirmed").Parse(`
{{define "html"}}
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>Your booking is confirmed 🎬</h2>
  <p>Booking reference: <strong>{{.BookingRef}}</strong></p>
  <p>Seats: <strong>{{range $i, $s := .Seats}}{{if $i}}, {{end}}{{$s}}{{end}}</strong></p>
  <p>Total paid: <strong>{{.Amount}}</strong></p>
  <p>Show this reference at the entrance. Enjoy the movie!</p>
</body>
</html>
{{end}}
{{define "text"}}
Your booking is confirmed.
Booking reference: {{.BookingRef}}
Seats: {{range $i, $s := .Seats}}{{if $i}}, {{end}}{{$s}}{{end}}
Total paid: {{.Amount}}
{{end}}`))

	s.templates[strings.ToLower(string(NotificationTypeBookingConfirmed))] = bookingConfirmed
}

// LogEmailService is a development fallback that logs instead of sending
type LogEmailService struct{}

func NewLogEmailService() *LogEmailService { return &LogEmailService{} }

func (l *LogEmailService) SendNotification(ctx context.Context, notification *EmailNotification) error {
	log.Printf("📧 [log] would send %s email to %s: %s",
		notification.Type, notification.RecipientEmail, notification.Subject)
	return nil
}

func (l *LogEmailService) SendHTML(ctx context.Context, to, subject, htmlBody, textBody string) error {
	log.Printf("📧 [log] would send email to %s: %s", to, subject)
	return nil
}

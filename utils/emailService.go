package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"readiq/config"
)

// Mailer sends transactional emails over SMTP. A Mailer with no configured
// sender silently drops messages so local setups work without credentials.
type Mailer struct {
	Host     string
	Port     string
	Sender   string
	Password string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		Host:     "smtp.gmail.com",
		Port:     "587",
		Sender:   cfg.EmailSender,
		Password: cfg.EmailPassword,
	}
}

// Send sends a generic HTML email
func (m *Mailer) Send(to []string, subject string, htmlBody string) error {
	if m.Sender == "" {
		log.Printf("Mailer disabled, skipping email to %v", to)
		return nil
	}

	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: ReadIQ <%s>\r\n", m.Sender)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", m.Sender, m.Password, m.Host)

	if err := smtp.SendMail(m.Host+":"+m.Port, auth, m.Sender, to, []byte(msg)); err != nil {
		log.Printf("Error sending email to %v: %v", to, err)
		return err
	}
	return nil
}

// SendEnrollmentConfirmation notifies a user that course access is active.
// Fire-and-forget: enrollment must never fail because email did.
func (m *Mailer) SendEnrollmentConfirmation(email, name, courseTitle string) {
	subject := "تم تفعيل اشتراكك في الدورة"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html dir="rtl" lang="ar">
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.8; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h2 style="color: #2563eb;">مرحباً %s،</h2>
		<p>تم تفعيل اشتراكك في دورة <strong>%s</strong> بنجاح.</p>
		<p>يمكنك الآن الوصول إلى جميع محتويات الدورة من حسابك.</p>
		<hr style="border: 1px solid #eee; margin: 20px 0;">
		<p style="font-size: 12px; color: #666;">هذه رسالة آلية من منصة ReadIQ.</p>
	</div>
</body>
</html>`, name, courseTitle)

	go m.Send([]string{email}, subject, body)
}

package utils

import (
	"codecash/config"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// SendEmail sends an HTML email through the configured SMTP account.
func SendEmail(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	if from == "" || password == "" {
		return fmt.Errorf("email sender is not configured")
	}

	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: CODECASH <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	if err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg)); err != nil {
		log.Printf("Error sending email: %v", err)
		return err
	}
	return nil
}

// SendPasswordResetEmail delivers the one-time reset token. The token is
// also logged so sandbox setups without SMTP can still complete the flow.
func SendPasswordResetEmail(email, token string) error {
	log.Printf("[AUTH] password reset token for %s: %s", email, token)

	body := fmt.Sprintf(`
	<html>
		<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
			<div style="max-width: 500px; margin: auto; background-color: #ffffff; border-radius: 8px; padding: 30px;">
				<h2>Password Reset</h2>
				<p>Use the code below to reset your CODECASH password. It expires in 15 minutes.</p>
				<p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">%s</p>
				<p>If you did not request this, you can ignore this email.</p>
			</div>
		</body>
	</html>`, token)

	return SendEmail([]string{email}, "CODECASH Password Reset Code", body)
}

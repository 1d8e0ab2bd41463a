package utils

import (
	"fmt"
	"net/smtp"
	"strings"

	"lms/config"
)

// SendEmail sends an HTML email over SMTP. Returns without sending when no
// sender is configured (local and test environments).
func SendEmail(to []string, subject string, htmlBody string) error {
	if config.AppConfig == nil || config.AppConfig.EmailSender == "" {
		return nil
	}

	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	// MIME basics
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: Course Marketplace <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	return smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg))
}

// SendPurchaseReceipt mails an enrollment confirmation after a completed
// payment. Amount is in minor currency units.
func SendPurchaseReceipt(email, name string, courseTitles []string, amount int64) error {
	items := ""
	for _, title := range courseTitles {
		items += fmt.Sprintf("<li>%s</li>", title)
	}

	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your payment of <strong>₹%.2f</strong> was successful. You are now enrolled in:</p>
		<ul>%s</ul>
		<p>Happy learning!</p>`,
		name, float64(amount)/100, items)

	return SendEmail([]string{email}, "Your course enrollment is confirmed", getEmailTemplate("Enrollment Confirmed", body))
}

// getEmailTemplate wraps body content in the standard mail layout
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #00004D; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #00004D; line-height: 1.6; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>%s</h1></div>
			<div class="content">%s</div>
		</div>
	</body>
	</html>`, title, bodyContent)
}

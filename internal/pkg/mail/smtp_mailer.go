package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/bodhiverse/bodhika/internal/pkg/env"
)

// SendMail sends an email via SMTP
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
	}
	return err
}

// SendWebinarReminder notifies a registered user shortly before a webinar
// begins. Fired by the reminder scheduler; failures are logged, not retried.
func SendWebinarReminder(to, webinarTitle, startsAt string) error {
	subject := fmt.Sprintf("Starting soon: %s", webinarTitle)
	body := fmt.Sprintf(
		"<p>Namaste,</p><p>The webinar <strong>%s</strong> begins at %s. "+
			"The session page unlocks automatically at the start time.</p>",
		webinarTitle, startsAt,
	)
	return SendMail(to, subject, body)
}

// SendPaymentReceipt confirms a successful payment. Sending is best-effort
// and never blocks the payment confirmation response.
func SendPaymentReceipt(to, planName, amount, paymentID string) error {
	subject := "Your payment receipt"
	body := fmt.Sprintf(
		"<p>Namaste,</p><p>We received your payment of <strong>%s</strong> for the %s plan.</p>"+
			"<p>Payment reference: %s</p>",
		amount, planName, paymentID,
	)
	return SendMail(to, subject, body)
}

package internal

import (
	"fmt"
	"os"

	"github.com/wneessen/go-mail"
)

// SendWelcomeEmail greets a freshly registered user. Callers treat failures
// as best-effort: the welcome job already logged the signup.
func SendWelcomeEmail(toEmail string) error {
	var subject = "Welcome to FileDrive"
	var body = "Your account is ready. Sign in and start uploading."
	var fromEmail = os.Getenv("EMAIL_ADDRESS")

	// Create email object
	msg := mail.NewMsg()
	if err := msg.From(fromEmail); err != nil {
		return fmt.Errorf("invalid from email address '%s': %s", fromEmail, err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("invalid to email address '%s': %s", toEmail, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	// Send email
	if err := msg.WriteToSendmail(); err != nil {
		return fmt.Errorf("sendmail err: %s", err)
	}

	return nil
}

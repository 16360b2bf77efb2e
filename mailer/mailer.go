package mailer

import (
	"fmt"
	"log"
	"os"

	"github.com/matcornic/hermes/v2"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends the transactional emails of the account lifecycle. Failures
// are reported but never block the flow that triggered the email.
type Mailer interface {
	SendVerification(toEmail, username, token string) error
	SendPasswordReset(toEmail, username, token string) error
	SendWelcome(toEmail, username string) error
}

// SendGrid delivers mail through the SendGrid API with bodies rendered by
// hermes. A missing API key degrades it to a logger so local runs work
// without credentials.
type SendGrid struct {
	apiKey    string
	fromEmail string
	fromName  string
	appURL    string
	product   hermes.Hermes
}

func NewFromEnv() *SendGrid {
	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:8080"
	}
	return &SendGrid{
		apiKey:    os.Getenv("SENDGRID_API_KEY"),
		fromEmail: os.Getenv("MAIL_FROM"),
		fromName:  os.Getenv("MAIL_FROM_NAME"),
		appURL:    appURL,
		product: hermes.Hermes{
			Product: hermes.Product{
				Name: "TFG",
				Link: appURL,
			},
		},
	}
}

func (m *SendGrid) SendVerification(toEmail, username, token string) error {
	body := hermes.Email{
		Body: hermes.Body{
			Name: username,
			Intros: []string{
				"Welcome! Please confirm your email address to activate your account.",
			},
			Actions: []hermes.Action{{
				Instructions: "Click the button below to verify your account:",
				Button: hermes.Button{
					Text: "Verify account",
					Link: fmt.Sprintf("%s/api/auth/verify?token=%s", m.appURL, token),
				},
			}},
			Outros: []string{"If you did not sign up, you can ignore this email."},
		},
	}
	return m.send(toEmail, username, "Verify your account", body)
}

func (m *SendGrid) SendPasswordReset(toEmail, username, token string) error {
	body := hermes.Email{
		Body: hermes.Body{
			Name: username,
			Intros: []string{
				"You requested a password reset. The link expires in one hour.",
			},
			Actions: []hermes.Action{{
				Instructions: "Click the button below to choose a new password:",
				Button: hermes.Button{
					Text: "Reset password",
					Link: fmt.Sprintf("%s/reset-password?token=%s", m.appURL, token),
				},
			}},
			Outros: []string{"If you did not request this, your password is unchanged."},
		},
	}
	return m.send(toEmail, username, "Reset your password", body)
}

func (m *SendGrid) SendWelcome(toEmail, username string) error {
	body := hermes.Email{
		Body: hermes.Body{
			Name:   username,
			Intros: []string{"Your account is verified. Time to review some restaurants!"},
		},
	}
	return m.send(toEmail, username, "Welcome", body)
}

func (m *SendGrid) send(toEmail, toName, subject string, email hermes.Email) error {
	htmlBody, err := m.product.GenerateHTML(email)
	if err != nil {
		return err
	}
	plainBody, err := m.product.GeneratePlainText(email)
	if err != nil {
		return err
	}

	if m.apiKey == "" {
		log.Printf("mailer: no SENDGRID_API_KEY set, skipping %q to %s", subject, toEmail)
		return nil
	}

	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainBody, htmlBody)

	response, err := sendgrid.NewSendClient(m.apiKey).Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", response.StatusCode)
	}
	return nil
}

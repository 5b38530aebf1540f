package contact

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Message is one submission of the contact form.
type Message struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

type Mailer interface {
	Send(msg Message) error
}

// SMTPMailer relays contact messages to the site owner's inbox.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	to       string
}

func NewSMTPMailer(host string, port int, username, password, to string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		to:       to,
	}
}

func (m *SMTPMailer) Send(msg Message) error {
	mail := gomail.NewMessage()
	mail.SetHeader("From", m.username)
	mail.SetHeader("To", m.to)
	mail.SetHeader("Subject", "New contact form message")
	mail.SetBody("text/plain", fmt.Sprintf(
		"Name: %s\nEmail: %s\nPhone: %s\nMessage:\n%s\n",
		msg.Name, msg.Email, msg.Phone, msg.Message,
	))

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)
	if err := dialer.DialAndSend(mail); err != nil {
		return fmt.Errorf("send contact mail: %w", err)
	}
	return nil
}

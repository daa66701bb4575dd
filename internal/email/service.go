package email

import (
	"fmt"
	"net/smtp"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/shopspring/decimal"
)

// Sender delivers one message. SMTPSender is the production implementation.
type Sender interface {
	Send(from string, to []string, msg []byte) error
}

// SMTPSender sends mail through an unauthenticated SMTP relay
type SMTPSender struct {
	Addr string
}

func (s SMTPSender) Send(from string, to []string, msg []byte) error {
	return smtp.SendMail(s.Addr, nil, from, to, msg)
}

// Service handles email sending
type Service struct {
	sender Sender
	from   string
}

// NewService creates an email service that relays through host:port
func NewService(host, port, from string) *Service {
	return NewServiceWithSender(SMTPSender{Addr: fmt.Sprintf("%s:%s", host, port)}, from)
}

func NewServiceWithSender(sender Sender, from string) *Service {
	return &Service{sender: sender, from: from}
}

// SendOrderConfirmation sends an order confirmation email
func (s *Service) SendOrderConfirmation(to, orderID string, total decimal.Decimal, items []cart.Item) error {
	subject := fmt.Sprintf("Order confirmation #%s", shortID(orderID))
	body := BuildOrderConfirmationBody(orderID, total, items)
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	if err := s.sender.Send(s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

func shortID(orderID string) string {
	if len(orderID) > 8 {
		return orderID[:8]
	}
	return orderID
}

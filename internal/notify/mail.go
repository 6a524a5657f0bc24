package notify

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/models"
)

// Mail sends the welcome and order confirmation emails.
type Mail struct {
	Nop
	From   string
	Sender gomail.Sender
}

// NewSMTPMail dials the SMTP server for every message.
func NewSMTPMail(host string, port int, user, password, from string) *Mail {
	d := gomail.NewDialer(host, port, user, password)
	return &Mail{
		From: from,
		Sender: gomail.SendFunc(func(from string, to []string, msg io.WriterTo) error {
			s, err := d.Dial()
			if err != nil {
				return err
			}
			defer s.Close()
			return s.Send(from, to, msg)
		}),
	}
}

func (m *Mail) send(ctx context.Context, to, subject, body string) {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := gomail.Send(m.Sender, msg); err != nil {
		logging.FromContext(ctx).Error("mail_send_error", "to", to, "subject", subject, "error", err)
	}
}

func (m *Mail) UserRegistered(ctx context.Context, user models.User) {
	m.send(ctx, user.Email, "Welcome to the marketplace",
		fmt.Sprintf("Hello %s,\n\nyour account has been created.\n", user.Name))
}

func (m *Mail) OrderPlaced(ctx context.Context, buyer models.User, order models.Order) {
	if buyer.Email == "" {
		return
	}
	m.send(ctx, buyer.Email, "Order "+order.Reference+" confirmed", orderSummary(buyer, order))
}

func orderSummary(buyer models.User, order models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nthank you for your order %s.\n\n", buyer.Name, order.Reference)
	for _, it := range order.Items {
		fmt.Fprintf(&b, "- %s x%d at %s\n", it.Title, it.Quantity, it.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", order.TotalPrice.StringFixed(2))
	return b.String()
}

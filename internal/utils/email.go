package utils

import (
	"context"
	"fmt"
	"html"
	"strings"

	"fiveheart_storefront/internal/config"
	"fiveheart_storefront/internal/models"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// CurrencySymbol est la devise affichée par la boutique
const CurrencySymbol = "₹"

// Mailer envoie l'e-mail de confirmation après une commande loggée
type Mailer struct {
	from string
	send func(ctx context.Context, msg *mail.Msg) error
	log  *zap.Logger
}

func NewMailer(cfg config.SMTP, log *zap.Logger) (*Mailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return newMailer(cfg.From, func(ctx context.Context, msg *mail.Msg) error {
		return client.DialAndSendWithContext(ctx, msg)
	}, log), nil
}

func newMailer(from string, send func(context.Context, *mail.Msg) error, log *zap.Logger) *Mailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mailer{from: from, send: send, log: log}
}

// OrderConfirmed satisfait checkout.Notifier
func (m *Mailer) OrderConfirmed(ctx context.Context, order models.Order) error {
	msg, err := m.confirmationMessage(order)
	if err != nil {
		return err
	}
	m.log.Info("📤 Envoi de l'e-mail de confirmation", zap.String("to", order.UserEmail))
	return m.send(ctx, msg)
}

func (m *Mailer) confirmationMessage(order models.Order) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, err
	}
	if err := msg.To(order.UserEmail); err != nil {
		return nil, err
	}
	msg.Subject("Your FiveHeart order confirmation")
	msg.SetBodyString(mail.TypeTextHTML, GenerateOrderConfirmationHTML(order))
	return msg, nil
}

// GenerateOrderConfirmationHTML génère le HTML de confirmation de commande
func GenerateOrderConfirmationHTML(order models.Order) string {
	var rows strings.Builder
	for _, course := range order.PurchasedCourses {
		fmt.Fprintf(&rows, `
			<tr>
				<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%s%.2f</td>
			</tr>`, html.EscapeString(course.Title), CurrencySymbol, course.Price)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Order confirmation</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Thank you for your order!</h2>
		<p>Hello %s,</p>
		<p>Your order has been placed successfully.</p>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Course</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Price</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
			<tfoot>
				<tr>
					<td style="padding: 10px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 10px; font-weight: bold;">%s%.2f</td>
				</tr>
			</tfoot>
		</table>

		<p style="margin-top: 30px; color: #555;">
			Best regards,<br>
			<strong>The FiveHeart team</strong>
		</p>
	</div>
</body>
</html>`, html.EscapeString(order.BillingName), rows.String(), CurrencySymbol, order.TotalAmount)
}

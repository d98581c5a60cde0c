package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tavolaworks/tavola/internal/domain"
	"github.com/tavolaworks/tavola/internal/telemetry"
)

// Service composes and sends customer notifications. Sending is best-effort:
// callers log failures and carry on, a lost email never fails an order.
type Service struct {
	sender Sender
	logger *slog.Logger
}

// NewService creates a notification service on top of a Sender.
func NewService(sender Sender, logger *slog.Logger) *Service {
	return &Service{sender: sender, logger: logger}
}

// SendOrderConfirmation emails the customer a summary of a freshly placed order.
func (s *Service) SendOrderConfirmation(ctx context.Context, order *domain.Order) error {
	if order.CustomerEmail == "" {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Thanks for your order!\n\nOrder %s\n\n", order.OrderNumber)
	for _, line := range order.Lines {
		fmt.Fprintf(&b, "%d x %s: %s\n", line.Quantity, line.DishName, line.LineTotalCents)
		for _, c := range line.Customizations {
			switch {
			case c.ReplacementItemName != "":
				fmt.Fprintf(&b, "    %s instead of %s (%s)\n", c.ReplacementItemName, c.ElementName, c.AdjustmentCents)
			case c.Included:
				fmt.Fprintf(&b, "    added %s (%s)\n", c.ElementName, c.AdjustmentCents)
			default:
				fmt.Fprintf(&b, "    no %s\n", c.ElementName)
			}
		}
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\n", order.SubtotalCents)
	if order.DeliveryFeeCents > 0 {
		fmt.Fprintf(&b, "Delivery: %s\n", order.DeliveryFeeCents)
	}
	fmt.Fprintf(&b, "Total: %s\n\nWe'll let you know once your payment is confirmed.\n", order.TotalCents)

	return s.send(ctx, "order_confirmation", &Email{
		To:       []string{order.CustomerEmail},
		Subject:  fmt.Sprintf("Order %s received", order.OrderNumber),
		TextBody: b.String(),
	})
}

// SendPaymentResult emails the customer the outcome of a payment review.
func (s *Service) SendPaymentResult(ctx context.Context, order *domain.Order, approved bool, note string) error {
	if order.CustomerEmail == "" {
		return nil
	}

	var subject, body string
	if approved {
		subject = fmt.Sprintf("Payment confirmed for order %s", order.OrderNumber)
		body = fmt.Sprintf("Your payment of %s for order %s has been verified. The kitchen is on it.\n", order.TotalCents, order.OrderNumber)
	} else {
		subject = fmt.Sprintf("Payment issue with order %s", order.OrderNumber)
		body = fmt.Sprintf("We could not verify your payment for order %s.\n", order.OrderNumber)
		if note != "" {
			body += fmt.Sprintf("Reason: %s\n", note)
		}
		body += "Please submit a new proof of payment from your orders page.\n"
	}

	return s.send(ctx, "payment_result", &Email{
		To:       []string{order.CustomerEmail},
		Subject:  subject,
		TextBody: body,
	})
}

// send delivers one email and records the outcome.
func (s *Service) send(ctx context.Context, kind string, msg *Email) error {
	_, err := s.sender.Send(ctx, msg)
	if err != nil {
		if telemetry.Business != nil {
			telemetry.Business.EmailFailed.WithLabelValues(kind).Inc()
		}
		s.logger.Warn("email send failed", "kind", kind, "error", err)
		return err
	}
	if telemetry.Business != nil {
		telemetry.Business.EmailSent.WithLabelValues(kind).Inc()
	}
	return nil
}

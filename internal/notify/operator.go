// Package notify turns order events into messages for the shop operator.
package notify

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-esim-storefront/internal/orders"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TextSender delivers a plain message to a chat.
type TextSender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// Operator forwards the events that need a human to the operator's chat.
// It doubles as an in-process orders.Publisher when no broker is configured.
type Operator struct {
	sender  TextSender
	adminID int64
	log     *zap.Logger
}

var _ orders.Publisher = (*Operator)(nil)

func NewOperator(sender TextSender, adminID int64, log *zap.Logger) *Operator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Operator{sender: sender, adminID: adminID, log: log.With(zap.String("component", "operator_notify"))}
}

// Publish handles ev synchronously. Delivery errors are logged, not
// returned, so a failed alert never fails the workflow step that raised it.
func (o *Operator) Publish(ctx context.Context, ev orders.Envelope) error {
	if err := o.Handle(ctx, ev); err != nil {
		o.log.Warn("operator_alert_failed",
			zap.String("event", ev.EventType),
			zap.String("order_id", ev.CorrelationID),
			zap.Error(err),
		)
	}
	return nil
}

// Handle sends the alert for ev, if it has one. Returning an error lets a
// broker consumer retry.
func (o *Operator) Handle(ctx context.Context, ev orders.Envelope) error {
	text, err := render(ev)
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	if err := o.sender.SendText(ctx, o.adminID, text); err != nil {
		return fmt.Errorf("notify: send %s alert: %w", ev.EventType, err)
	}
	o.log.Info("operator_alert_sent",
		zap.String("event", ev.EventType),
		zap.String("order_id", ev.CorrelationID),
	)
	return nil
}

// esc escapes a dynamic field for the legacy Markdown the channel sends in.
// SKUs such as MX_ATT_56_100 would otherwise open an italic run that never closes.
func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func render(ev orders.Envelope) (string, error) {
	switch ev.EventType {
	case orders.EventStockShortage:
		p, err := orders.DecodePayload[orders.StockShortagePayload](ev)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("⚠️ *Sin stock*\nSKU: %s\nOrden: %s\nPago: %s\nCliente: %d",
			esc(p.SKU), esc(p.OrderID), esc(p.PaymentID), p.ChatID), nil
	case orders.EventDeliveryFailed:
		p, err := orders.DecodePayload[orders.DeliveryFailedPayload](ev)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("❌ *Entrega fallida* (%s)\nSKU: %s\nOrden: %s\nArchivo: %s\nCliente: %d\nError: %s",
			esc(p.Step), esc(p.SKU), esc(p.OrderID), esc(p.ItemFile), p.ChatID, esc(p.Error)), nil
	case orders.EventPaymentApproved:
		p, err := orders.DecodePayload[orders.PaymentApprovedPayload](ev)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("💰 Pago aprobado: %s ($%s)\nOrden: %s\nCliente: %d",
			esc(p.SKU), esc(p.Price), esc(p.OrderID), p.ChatID), nil
	}
	return "", nil
}

package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderCreated    = "OrderCreated"
	EventPaymentApproved = "PaymentApproved"
	EventStockShortage   = "StockShortage"
	EventOrderDelivered  = "OrderDelivered"
	EventDeliveryFailed  = "DeliveryFailed"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

// Publisher ships envelopes to whoever follows order activity.
type Publisher interface {
	Publish(ctx context.Context, ev Envelope) error
}

type OrderCreatedPayload struct {
	OrderID string `json:"order_id"`
	ChatID  int64  `json:"chat_id"`
	SKU     string `json:"sku"`
	Price   string `json:"price"`
}

type PaymentApprovedPayload struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	ChatID    int64  `json:"chat_id"`
	SKU       string `json:"sku"`
	Price     string `json:"price"`
}

type StockShortagePayload struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	ChatID    int64  `json:"chat_id"`
	SKU       string `json:"sku"`
}

type OrderDeliveredPayload struct {
	OrderID  string `json:"order_id"`
	ChatID   int64  `json:"chat_id"`
	SKU      string `json:"sku"`
	ItemFile string `json:"item_file"`
}

type DeliveryFailedPayload struct {
	OrderID  string `json:"order_id"`
	ChatID   int64  `json:"chat_id"`
	SKU      string `json:"sku"`
	ItemFile string `json:"item_file"`
	Step     string `json:"step"`
	Error    string `json:"error"`
}

// NewEnvelope wraps payload in a v1 envelope correlated by orderID.
func NewEnvelope(producer, eventType, orderID string, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: orderID,
		Payload:       b,
	}, nil
}

// DecodePayload unwraps the payload of ev into T.
func DecodePayload[T any](ev Envelope) (T, error) {
	var t T
	if err := json.Unmarshal(ev.Payload, &t); err != nil {
		return t, fmt.Errorf("decode %s payload: %w", ev.EventType, err)
	}
	return t, nil
}

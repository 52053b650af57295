package orders

import "context"

const PaymentStatusApproved = "approved"

// Payment is what the storefront needs to know about a provider payment.
type Payment struct {
	ID                string
	Status            string
	ExternalReference string // order id
}

func (p Payment) Approved() bool { return p.Status == PaymentStatusApproved }

// Gateway is the payment provider as seen by the order workflow.
type Gateway interface {
	CreateLink(ctx context.Context, o *Order, notificationURL string) (string, error)
	GetPayment(ctx context.Context, paymentID string) (Payment, error)
}

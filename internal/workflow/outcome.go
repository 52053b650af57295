package workflow

// Outcome is the terminal classification of one payment notification.
type Outcome string

const (
	OutcomeNoPaymentID       Outcome = "no_payment_id"
	OutcomeDuplicate         Outcome = "duplicate"
	OutcomeGatewayError      Outcome = "gateway_error"
	OutcomeNoReference       Outcome = "no_reference"
	OutcomeNotApproved       Outcome = "not_approved"
	OutcomeOrderNotFound     Outcome = "order_not_found"
	OutcomeAlreadyApproved   Outcome = "already_approved"
	OutcomeInvalidTransition Outcome = "invalid_transition"
	OutcomeDelivered         Outcome = "delivered"
	OutcomeOutOfStock        Outcome = "out_of_stock"
	OutcomeDeliveryFailed    Outcome = "delivery_failed"
	OutcomeInternalError     Outcome = "internal_error"
)

// settled reports whether the payment's approval has been applied to its
// order, so later notifications for the same payment can be skipped.
func (o Outcome) settled() bool {
	switch o {
	case OutcomeAlreadyApproved, OutcomeDelivered, OutcomeOutOfStock, OutcomeDeliveryFailed:
		return true
	}
	return false
}

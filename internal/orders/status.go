package orders

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

// failed and refunded are reserved; nothing in the storefront produces them yet.
var validNext = map[Status]map[Status]bool{
	StatusPending:  {StatusApproved: true, StatusFailed: true},
	StatusApproved: {StatusRefunded: true},
	StatusFailed:   {},
	StatusRefunded: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

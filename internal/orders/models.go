package orders

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("order not found")
	ErrOutOfStock   = errors.New("out of stock")
	ErrInvalidPrice = errors.New("price must be positive")
)

// StockItem is one deliverable unit. File is relative to the asset directory.
type StockItem struct {
	File string `json:"file"`
}

type Order struct {
	ID        string          `json:"orderId"`
	ChatID    int64           `json:"chatId"`
	SKU       string          `json:"sku"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Status    Status          `json:"status"`
	CreatedAt int64           `json:"createdAt"` // unix millis
	PaymentID string          `json:"paymentId,omitempty"`
	ItemFile  string          `json:"itemFile,omitempty"`
}

type NewOrder struct {
	ChatID int64
	SKU    string
	Title  string
	Price  decimal.Decimal
}

func (n NewOrder) Validate() error {
	if !n.Price.IsPositive() {
		return ErrInvalidPrice
	}
	return nil
}

// Patch lists the fields Update may change. Zero values leave a field untouched.
type Patch struct {
	Status    Status
	PaymentID string
	ItemFile  string
}

// Apply merges p into o.
func (p Patch) Apply(o *Order) {
	if p.Status != "" {
		o.Status = p.Status
	}
	if p.PaymentID != "" {
		o.PaymentID = p.PaymentID
	}
	if p.ItemFile != "" {
		o.ItemFile = p.ItemFile
	}
}

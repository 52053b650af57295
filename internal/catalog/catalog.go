// Package catalog holds the fixed product list the bot sells.
package catalog

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
)

var ErrInvalidSKU = errors.New("invalid sku")

type Product struct {
	SKU   string
	Title string
	Price decimal.Decimal
}

type Catalog struct {
	bySKU map[string]Product
}

func New(products ...Product) *Catalog {
	c := &Catalog{bySKU: make(map[string]Product, len(products))}
	for _, p := range products {
		c.bySKU[p.SKU] = p
	}
	return c
}

// Default is the storefront's product list.
func Default() *Catalog {
	return New(
		Product{SKU: "MX_ATT_56_100", Title: "eSIM AT&T México CDMX (56) $100", Price: decimal.NewFromInt(100)},
		Product{SKU: "MX_ATT_OTHER_150", Title: "eSIM AT&T México Otras LADAS $150", Price: decimal.NewFromInt(150)},
		Product{SKU: "USA_ATT_200", Title: "eSIM AT&T USA $200", Price: decimal.NewFromInt(200)},
		Product{SKU: "USA_TMO_200", Title: "eSIM T-Mobile $200", Price: decimal.NewFromInt(200)},
	)
}

func (c *Catalog) Lookup(sku string) (Product, error) {
	p, ok := c.bySKU[sku]
	if !ok {
		return Product{}, ErrInvalidSKU
	}
	return p, nil
}

func (c *Catalog) SKUs() []string {
	out := make([]string, 0, len(c.bySKU))
	for k := range c.bySKU {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

package domain

import (
	"slices"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Product struct {
	ID     int64           `json:"id"`
	Title  string          `json:"title"`
	Price  decimal.Decimal `json:"price"`
	Image  string          `json:"image,omitempty"`
	Amount int             `json:"amount"`
}

// Subtotal is price times amount.
func (p Product) Subtotal() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Amount)))
}

type Stock struct {
	ProductID int64 `json:"id"`
	Amount    int   `json:"amount"`
}

// Cart is an ordered snapshot of entries, unique by product ID.
// Mutating helpers return a new Cart and never touch the receiver's backing array.
type Cart struct {
	Items []Product
}

// Find reports the entry for productID, if present.
func (c Cart) Find(productID int64) (Product, bool) {
	i := c.index(productID)
	if i < 0 {
		return Product{}, false
	}
	return c.Items[i], true
}

// Size is the number of distinct products.
func (c Cart) Size() int {
	return len(c.Items)
}

func (c Cart) Clone() Cart {
	if c.Items == nil {
		return Cart{Items: []Product{}}
	}
	return Cart{Items: slices.Clone(c.Items)}
}

// Append adds a new entry at the end.
func (c Cart) Append(p Product) Cart {
	next := c.Clone()
	next.Items = append(next.Items, p)
	return next
}

// WithAmount replaces the amount of the entry for productID. A missing entry yields an unchanged copy.
func (c Cart) WithAmount(productID int64, amount int) Cart {
	next := c.Clone()
	if i := next.index(productID); i >= 0 {
		next.Items[i].Amount = amount
	}
	return next
}

// Without drops the entry for productID, keeping the relative order of the rest.
func (c Cart) Without(productID int64) Cart {
	next := c.Clone()
	next.Items = slices.DeleteFunc(next.Items, func(p Product) bool {
		return p.ID == productID
	})
	return next
}

func (c Cart) Subtotal(productID int64) (decimal.Decimal, bool) {
	p, ok := c.Find(productID)
	if !ok {
		return decimal.Zero, false
	}
	return p.Subtotal(), true
}

func (c Cart) Total(unit currency.Unit) Money {
	total := decimal.Zero
	for _, p := range c.Items {
		total = total.Add(p.Subtotal())
	}
	return Money{Amount: total, Currency: unit}
}

func (c Cart) index(productID int64) int {
	return slices.IndexFunc(c.Items, func(p Product) bool {
		return p.ID == productID
	})
}

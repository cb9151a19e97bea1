package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func NewMoney(amount decimal.Decimal, unit currency.Unit) Money {
	return Money{Amount: amount, Currency: unit}
}

// FormatPrice renders m with the currency symbol and the number conventions of tag.
func FormatPrice(m Money, tag language.Tag) string {
	f, _ := m.Amount.Round(2).Float64()

	p := message.NewPrinter(tag)
	return p.Sprint(currency.Symbol(m.Currency.Amount(f)))
}

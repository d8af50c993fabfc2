package models

import (
	"strings"

	"github.com/diewo77/gst-invoices/internal/money"
	"github.com/shopspring/decimal"
)

// DefaultUnit is the unit label of a freshly added row.
const DefaultUnit = "Pcs."

// DefaultDeclaration is printed when the declaration field is left empty.
const DefaultDeclaration = "We declare that this invoice shows the actual price of the goods described and that all particulars are true and correct."

// LineItem represents a line item on an invoice.
// Quantity and Rate keep the raw text typed by the user; Amount is derived
// from them and never set directly.
type LineItem struct {
	ID          uint64          `json:"id"`
	Description string          `json:"description"`
	HSN         string          `json:"hsn"`
	Quantity    string          `json:"quantity"`
	Unit        string          `json:"unit"`
	Rate        string          `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// QuantityValue returns the parsed quantity (0 when blank or invalid).
func (item *LineItem) QuantityValue() decimal.Decimal {
	return money.Parse(item.Quantity)
}

// RateValue returns the parsed rate (0 when blank or invalid).
func (item *LineItem) RateValue() decimal.Decimal {
	return money.Parse(item.Rate)
}

// Recompute refreshes Amount from Quantity and Rate.
func (item *LineItem) Recompute() {
	item.Amount = item.QuantityValue().Mul(item.RateValue())
}

// IsValid reports whether the item is shown as a filled row: it has a
// description or a positive amount.
func (item *LineItem) IsValid() bool {
	return strings.TrimSpace(item.Description) != "" || item.Amount.IsPositive()
}

// ItemInput is one row as read from an invoice file.
type ItemInput struct {
	Description string    `yaml:"description" json:"description"`
	HSN         string    `yaml:"hsn" json:"hsn"`
	Quantity    RawNumber `yaml:"quantity" json:"quantity"`
	Unit        string    `yaml:"unit" json:"unit"`
	Rate        RawNumber `yaml:"rate" json:"rate"`
}

// TaxRates holds the three GST rates in percent.
type TaxRates struct {
	CGST decimal.Decimal
	SGST decimal.Decimal
	IGST decimal.Decimal
}

// Totals is the computed totals record of an invoice. It is derived on every
// render and never stored.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	CGSTRate      decimal.Decimal `json:"cgst_rate"`
	CGST          decimal.Decimal `json:"cgst"`
	SGSTRate      decimal.Decimal `json:"sgst_rate"`
	SGST          decimal.Decimal `json:"sgst"`
	IGSTRate      decimal.Decimal `json:"igst_rate"`
	IGST          decimal.Decimal `json:"igst"`
	Rounded       bool            `json:"rounded"`
	RoundOff      decimal.Decimal `json:"round_off"`
	Total         decimal.Decimal `json:"total"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
}

// TaxTotal returns CGST + SGST + IGST.
func (t Totals) TaxTotal() decimal.Decimal {
	return t.CGST.Add(t.SGST).Add(t.IGST)
}

// Unrounded returns the total before the round-off adjustment.
func (t Totals) Unrounded() decimal.Decimal {
	return t.Total.Sub(t.RoundOff)
}

// ShowRoundOff reports whether a round-off line belongs on the document.
func (t Totals) ShowRoundOff() bool {
	return t.Rounded && !t.RoundOff.IsZero()
}

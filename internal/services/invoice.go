package services

import (
	"github.com/diewo77/gst-invoices/internal/models"
	"github.com/diewo77/gst-invoices/internal/money"
	"github.com/shopspring/decimal"
)

// ComputeTotals calculates subtotal, GST components, round-off and grand
// total over all stored items, including blank rows (they add zero).
// Rates are in percent. When rounding is enabled the total is rounded to
// the nearest rupee, half away from zero.
func ComputeTotals(items []models.LineItem, rates models.TaxRates, rounding bool) models.Totals {
	subtotal := decimal.Zero
	quantity := decimal.Zero
	for i := range items {
		subtotal = subtotal.Add(items[i].Amount)
		quantity = quantity.Add(items[i].QuantityValue())
	}

	t := models.Totals{
		Subtotal:      subtotal,
		CGSTRate:      rates.CGST,
		CGST:          money.Percent(subtotal, rates.CGST),
		SGSTRate:      rates.SGST,
		SGST:          money.Percent(subtotal, rates.SGST),
		IGSTRate:      rates.IGST,
		IGST:          money.Percent(subtotal, rates.IGST),
		RoundOff:      decimal.Zero,
		TotalQuantity: quantity,
	}
	total := subtotal.Add(t.TaxTotal())
	if rounding {
		rounded := total.Round(0)
		t.Rounded = true
		t.RoundOff = rounded.Sub(total)
		total = rounded
	}
	t.Total = total
	return t
}
